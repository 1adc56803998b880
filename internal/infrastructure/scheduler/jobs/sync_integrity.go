package jobs

import (
	"context"

	"github.com/orbita-hub/orbita-learning-hub/internal/application/command"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE INTEGRITY JOB
// ══════════════════════════════════════════════════════════════════════════════

// SyncIntegrityJob heals the two denormalized invariants that can drift
// between reconciliations: level must match the threshold table for the
// stored xp, and xp_mensal must never exceed xp.
type SyncIntegrityJob struct {
	levels   *command.SyncLevelHandler
	ceilings *command.SyncMonthlyCeilingHandler
	log      *logger.Logger
}

// NewSyncIntegrityJob creates the job.
func NewSyncIntegrityJob(
	levels *command.SyncLevelHandler,
	ceilings *command.SyncMonthlyCeilingHandler,
	log *logger.Logger,
) *SyncIntegrityJob {
	if log == nil {
		log = logger.Default()
	}
	return &SyncIntegrityJob{levels: levels, ceilings: ceilings, log: log}
}

// Name implements scheduler.Job.
func (j *SyncIntegrityJob) Name() string { return "sync_aggregate_integrity" }

// Run sweeps every aggregate, fixing drifted levels first and then clamping
// ceiling violations. A failure in the level pass does not stop the ceiling
// pass.
func (j *SyncIntegrityJob) Run(ctx context.Context) error {
	levelResult, levelErr := j.levels.HandleAll(ctx)
	if levelErr != nil {
		j.log.Error("level sync failed", logger.Err(levelErr))
	} else {
		j.log.Info("level sync finished",
			logger.Int("checked_users", levelResult.CheckedUsers),
			logger.Int("fixed_users", len(levelResult.Fixes)),
			logger.Int("failed_users", len(levelResult.Errors)),
		)
	}

	ceilingResult, ceilingErr := j.ceilings.HandleAll(ctx)
	if ceilingErr != nil {
		j.log.Error("ceiling sync failed", logger.Err(ceilingErr))
		if levelErr != nil {
			return levelErr
		}
		return ceilingErr
	}
	j.log.Info("ceiling sync finished",
		logger.Int("checked_users", ceilingResult.CheckedUsers),
		logger.Int("clamped_users", len(ceilingResult.Fixes)),
		logger.Int("failed_users", len(ceilingResult.Errors)),
	)

	return levelErr
}
