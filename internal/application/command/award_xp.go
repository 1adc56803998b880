// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/shared"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD XP COMMAND
// Appends one ledger event and updates the user's aggregate. Invoked once
// per qualifying action (lesson, quiz, challenge, community vote, manual
// bonus) by callers that have already verified eligibility.
// ══════════════════════════════════════════════════════════════════════════════

// AwardXPCommand contains the data to award XP to a user.
type AwardXPCommand struct {
	// UserID is the receiving user.
	UserID string

	// Source is the kind of action that granted the XP.
	Source xp.Source

	// SourceID identifies the originating object. Empty for bonuses.
	SourceID string

	// Amount is the number of points. Must be positive.
	Amount int

	// Description is an optional annotation (bonus reason).
	Description string
}

// Validate validates the command. No writes happen on failure.
func (c AwardXPCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("award_xp: %w", xp.ErrInvalidUserID)
	}
	if !c.Source.IsValid() {
		return fmt.Errorf("award_xp: %w: %q", xp.ErrInvalidSource, c.Source)
	}
	if c.Amount <= 0 {
		return fmt.Errorf("award_xp: %w", xp.ErrInvalidAmount)
	}
	return nil
}

// AwardXPResult contains the outcome of an award.
type AwardXPResult struct {
	// Event is the appended ledger entry. Present even on partial
	// failure: the ledger is append-only and the entry is durable.
	Event *xp.Event

	// XP, XPMonthly and Level are the aggregate values after the update.
	// Zero when the aggregate update failed.
	XP        int
	XPMonthly int
	Level     xp.Level

	// PartialFailure is true when the ledger append succeeded but the
	// aggregate update did not. Reconciliation absorbs the drift.
	PartialFailure bool
}

// AwardXPHandler handles AwardXPCommand.
//
// The engine performs no idempotency check against (user, source, sourceId):
// callers are responsible for not awarding the same logical action twice,
// and manual bonuses intentionally repeat.
type AwardXPHandler struct {
	ledger     xp.LedgerRepository
	aggregates xp.AggregateRepository
	publisher  shared.EventPublisher
	log        *logger.Logger
}

// NewAwardXPHandler creates a new AwardXPHandler.
func NewAwardXPHandler(
	ledger xp.LedgerRepository,
	aggregates xp.AggregateRepository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *AwardXPHandler {
	if log == nil {
		log = logger.Default()
	}
	return &AwardXPHandler{
		ledger:     ledger,
		aggregates: aggregates,
		publisher:  publisher,
		log:        log,
	}
}

// Handle executes the award.
//
// The ledger append and the aggregate increment are two independent writes,
// not a multi-statement transaction. The increment is a single atomic
// statement at the storage layer, so concurrent awards for the same user do
// not lose updates; if the increment still fails after the append succeeded,
// the mismatch is surfaced as ErrAggregateUpdateFailed and left for the
// reconciliation job to repair.
func (h *AwardXPHandler) Handle(ctx context.Context, cmd AwardXPCommand) (*AwardXPResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	// Reject unknown users before any write.
	if _, err := h.aggregates.Get(ctx, cmd.UserID); err != nil {
		if errors.Is(err, xp.ErrUserNotFound) {
			return nil, fmt.Errorf("award_xp: %w: %s", xp.ErrUserNotFound, cmd.UserID)
		}
		return nil, fmt.Errorf("award_xp: failed to load aggregate: %w", err)
	}

	event, err := xp.NewEvent(
		uuid.New().String(),
		cmd.UserID,
		cmd.Source,
		cmd.SourceID,
		cmd.Amount,
		cmd.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	if err := h.ledger.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("award_xp: failed to append ledger event: %w", err)
	}

	updated, err := h.aggregates.Increment(ctx, cmd.UserID, cmd.Amount)
	if err != nil {
		// Ledger entry is durable on purpose; report, don't hide.
		h.log.Error("aggregate update failed after ledger append",
			logger.String("user_id", cmd.UserID),
			logger.String("event_id", event.ID),
			logger.Err(err),
		)
		return &AwardXPResult{Event: event, PartialFailure: true},
			fmt.Errorf("award_xp: %w: %v", xp.ErrAggregateUpdateFailed, err)
	}

	// Keep level == LevelFor(xp). Separate statement; SyncLevel heals any
	// window where this write is lost.
	level := xp.LevelFor(updated.XP)
	if level != updated.Level {
		if err := h.aggregates.SetLevel(ctx, cmd.UserID, level); err != nil {
			h.log.Warn("level update failed, SyncLevel will repair",
				logger.String("user_id", cmd.UserID),
				logger.Err(err),
			)
		} else {
			updated.Level = level
		}
	}

	if h.publisher != nil {
		h.publisher.Publish(shared.NewXPAwardedEvent(
			cmd.UserID, cmd.Source, cmd.SourceID, cmd.Amount, updated.XP, updated.Level,
		))
	}

	return &AwardXPResult{
		Event:     event,
		XP:        updated.XP,
		XPMonthly: updated.XPMonthly,
		Level:     updated.Level,
	}, nil
}
