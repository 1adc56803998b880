// Package jobs contains the scheduled integrity jobs.
package jobs

import (
	"context"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/application/command"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
	"github.com/orbita-hub/orbita-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MONTHLY RECONCILIATION JOB
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileMonthlyJob recomputes every user's xp_mensal from the ledger for
// the current UTC month. Running it just after a month boundary also
// performs the rollover: the new month has no events yet, so drifted values
// reconcile to zero.
type ReconcileMonthlyJob struct {
	handler *command.ReconcileMonthlyXPHandler
	log     *logger.Logger
	now     func() time.Time
}

// NewReconcileMonthlyJob creates the job.
func NewReconcileMonthlyJob(handler *command.ReconcileMonthlyXPHandler, log *logger.Logger) *ReconcileMonthlyJob {
	if log == nil {
		log = logger.Default()
	}
	return &ReconcileMonthlyJob{handler: handler, log: log, now: time.Now}
}

// Name implements scheduler.Job.
func (j *ReconcileMonthlyJob) Name() string { return "reconcile_monthly_xp" }

// Run reconciles all users for the current UTC month.
func (j *ReconcileMonthlyJob) Run(ctx context.Context) error {
	year, month := timeutil.CurrentMonth(j.now())

	result, err := j.handler.HandleAll(ctx, month, year, false)
	if err != nil {
		return err
	}

	j.log.Info("monthly reconciliation finished",
		logger.Int("year", year),
		logger.String("month", month.String()),
		logger.Int("total_users", result.TotalUsers),
		logger.Int("drifted_users", result.DriftedUsers),
		logger.Int("applied_users", result.AppliedUsers),
		logger.Int("failed_users", len(result.Errors)),
	)

	for userID, userErr := range result.Errors {
		j.log.Warn("reconciliation skipped user",
			logger.String("user_id", userID),
			logger.Err(userErr),
		)
	}
	return nil
}
