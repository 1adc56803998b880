package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/shared"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILE MONTHLY XP
// Recomputes xp_mensal for a user by replaying the ledger. The ledger is
// the sole source of truth: a full recompute is the only repair that
// detects both missing and double-counted increments.
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileMonthlyXPCommand selects the user and the calendar-month window.
type ReconcileMonthlyXPCommand struct {
	// UserID is the user to reconcile.
	UserID string

	// Month and Year select the UTC calendar month.
	Month time.Month
	Year  int

	// DryRun computes the diff without writing.
	DryRun bool
}

// Validate validates the command.
func (c ReconcileMonthlyXPCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("reconcile_monthly: %w", xp.ErrInvalidUserID)
	}
	if c.Month < time.January || c.Month > time.December {
		return fmt.Errorf("reconcile_monthly: invalid month %d", c.Month)
	}
	if c.Year < 2000 {
		return fmt.Errorf("reconcile_monthly: invalid year %d", c.Year)
	}
	return nil
}

// ReconcileMonthlyXPResult is the before/after diff for operator review.
type ReconcileMonthlyXPResult struct {
	UserID string

	// PreviousXPMonthly is the stored value before the pass.
	PreviousXPMonthly int

	// NewXPMonthly is the recomputed ledger sum for the window.
	NewXPMonthly int

	// CountedEvents are the ledger entries inside the window.
	CountedEvents []xp.Event

	// Applied is false for dry runs and for runs where the stored value
	// already matched.
	Applied bool
}

// Drifted reports whether the stored value disagreed with the ledger.
func (r *ReconcileMonthlyXPResult) Drifted() bool {
	return r.PreviousXPMonthly != r.NewXPMonthly
}

// ReconcileMonthlyXPHandler handles ReconcileMonthlyXPCommand.
type ReconcileMonthlyXPHandler struct {
	ledger     xp.LedgerRepository
	aggregates xp.AggregateRepository
	publisher  shared.EventPublisher
	log        *logger.Logger
}

// NewReconcileMonthlyXPHandler creates a new handler.
func NewReconcileMonthlyXPHandler(
	ledger xp.LedgerRepository,
	aggregates xp.AggregateRepository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *ReconcileMonthlyXPHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ReconcileMonthlyXPHandler{
		ledger:     ledger,
		aggregates: aggregates,
		publisher:  publisher,
		log:        log,
	}
}

// Handle recomputes xp_mensal from the ledger and, unless dry-run,
// overwrites the stored value (full replace, not increment). Running it
// twice with no new ledger events is a no-op the second time.
func (h *ReconcileMonthlyXPHandler) Handle(ctx context.Context, cmd ReconcileMonthlyXPCommand) (*ReconcileMonthlyXPResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	aggregate, err := h.aggregates.Get(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, xp.ErrUserNotFound) {
			return nil, fmt.Errorf("reconcile_monthly: %w: %s", xp.ErrUserNotFound, cmd.UserID)
		}
		return nil, fmt.Errorf("reconcile_monthly: failed to load aggregate: %w", err)
	}

	// Fetch everything and window in application code; no server-side
	// date filter is assumed reliable here.
	events, err := h.ledger.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("reconcile_monthly: failed to list ledger events: %w", err)
	}

	counted := xp.FilterByMonth(events, cmd.Year, cmd.Month)
	sum := xp.SumAmounts(counted)

	result := &ReconcileMonthlyXPResult{
		UserID:            cmd.UserID,
		PreviousXPMonthly: aggregate.XPMonthly,
		NewXPMonthly:      sum,
		CountedEvents:     counted,
	}

	if cmd.DryRun || !result.Drifted() {
		return result, nil
	}

	if err := h.aggregates.SetMonthlyXP(ctx, cmd.UserID, sum); err != nil {
		return nil, fmt.Errorf("reconcile_monthly: failed to write xp_mensal: %w", err)
	}
	result.Applied = true

	h.log.Info("reconciled monthly xp",
		logger.String("user_id", cmd.UserID),
		logger.Int("previous", result.PreviousXPMonthly),
		logger.Int("new", result.NewXPMonthly),
		logger.Int("counted_events", len(counted)),
	)

	if h.publisher != nil {
		h.publisher.Publish(shared.NewAggregateReconciledEvent(
			cmd.UserID, "xp_mensal", result.PreviousXPMonthly, result.NewXPMonthly,
		))
	}

	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BATCH RECONCILIATION
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileAllResult aggregates a batch run over every user.
type ReconcileAllResult struct {
	TotalUsers   int
	DriftedUsers int
	AppliedUsers int
	Results      []*ReconcileMonthlyXPResult

	// Errors maps user id to the failure for that user. One bad row never
	// aborts the batch.
	Errors map[string]error
}

// HandleAll reconciles every user for the given month. Per-user failures
// are isolated: logged, collected, and the loop continues.
func (h *ReconcileMonthlyXPHandler) HandleAll(ctx context.Context, month time.Month, year int, dryRun bool) (*ReconcileAllResult, error) {
	userIDs, err := h.aggregates.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile_monthly: failed to list users: %w", err)
	}

	result := &ReconcileAllResult{
		TotalUsers: len(userIDs),
		Results:    make([]*ReconcileMonthlyXPResult, 0, len(userIDs)),
		Errors:     make(map[string]error),
	}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		userResult, err := h.Handle(ctx, ReconcileMonthlyXPCommand{
			UserID: userID,
			Month:  month,
			Year:   year,
			DryRun: dryRun,
		})
		if err != nil {
			h.log.Error("reconciliation failed for user",
				logger.String("user_id", userID),
				logger.Err(err),
			)
			result.Errors[userID] = err
			continue
		}

		if userResult.Drifted() {
			result.DriftedUsers++
		}
		if userResult.Applied {
			result.AppliedUsers++
		}
		result.Results = append(result.Results, userResult)
	}

	return result, nil
}
