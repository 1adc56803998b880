// Package scheduler runs the periodic integrity jobs: monthly XP
// reconciliation and level resynchronization.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job is a unit of periodic work.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job. The context is cancelled when the scheduler
	// stops and carries the per-run timeout.
	Run(ctx context.Context) error
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Scheduler runs registered jobs at fixed intervals. Each job gets its own
// goroutine and ticker; a failing run is logged and the next tick proceeds.
type Scheduler struct {
	mu         sync.Mutex
	jobs       []scheduledJob
	jobTimeout time.Duration
	log        *logger.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	running    bool
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// New creates a Scheduler. jobTimeout bounds each run; non-positive means
// no per-run timeout.
func New(jobTimeout time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{jobTimeout: jobTimeout, log: log}
}

// Register adds a job to run every interval. Must be called before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	if job == nil {
		return fmt.Errorf("scheduler: job cannot be nil")
	}
	if interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive for job %q", job.Name())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler: cannot register %q while running", job.Name())
	}
	s.jobs = append(s.jobs, scheduledJob{job: job, interval: interval})
	return nil
}

// Start launches all job loops. The first run of each job happens after one
// full interval, not immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.loop(runCtx, sj)
	}

	s.log.Info("scheduler started", logger.Int("jobs", len(s.jobs)))
}

func (s *Scheduler) loop(ctx context.Context, sj scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, sj.job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	runCtx := ctx
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := job.Run(runCtx)
	elapsed := time.Since(start)

	if err != nil {
		s.log.Error("scheduled job failed",
			logger.String("job", job.Name()),
			logger.Duration("duration", elapsed),
			logger.Err(err),
		)
		return
	}
	s.log.Info("scheduled job completed",
		logger.String("job", job.Name()),
		logger.Duration("duration", elapsed),
	)
}

// Stop cancels all job loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}
