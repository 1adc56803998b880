package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// Single-user read surface: the aggregate row plus recent ledger entries.
// Always serves best-known numbers; aggregate drift never turns a profile
// read into an error.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileQuery selects the user.
type GetProfileQuery struct {
	UserID string

	// RecentLimit caps the recent-event list (default 10).
	RecentLimit int
}

// GetProfileResult is the profile view.
type GetProfileResult struct {
	UserID    string
	Name      string
	Avatar    string
	XP        int
	XPMonthly int
	Level     xp.Level

	// NextLevelAt is the lifetime XP needed for the next level, 0 at the
	// table's top.
	NextLevelAt int

	// RecentEvents are the newest ledger entries, newest first.
	RecentEvents []xp.Event
}

// GetProfileHandler handles GetProfileQuery.
type GetProfileHandler struct {
	aggregates xp.AggregateRepository
	ledger     xp.LedgerRepository
}

// NewGetProfileHandler creates a new GetProfileHandler.
func NewGetProfileHandler(aggregates xp.AggregateRepository, ledger xp.LedgerRepository) *GetProfileHandler {
	return &GetProfileHandler{aggregates: aggregates, ledger: ledger}
}

// Handle loads the profile view.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*GetProfileResult, error) {
	if q.UserID == "" {
		return nil, fmt.Errorf("get_profile: %w", xp.ErrInvalidUserID)
	}

	limit := q.RecentLimit
	if limit <= 0 {
		limit = 10
	}

	aggregate, err := h.aggregates.Get(ctx, q.UserID)
	if err != nil {
		if errors.Is(err, xp.ErrUserNotFound) {
			return nil, fmt.Errorf("get_profile: %w: %s", xp.ErrUserNotFound, q.UserID)
		}
		return nil, fmt.Errorf("get_profile: failed to load aggregate: %w", err)
	}

	recent, err := h.ledger.ListRecentByUser(ctx, q.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("get_profile: failed to list recent events: %w", err)
	}

	return &GetProfileResult{
		UserID:       aggregate.UserID,
		Name:         aggregate.Name,
		Avatar:       aggregate.Avatar,
		XP:           aggregate.XP,
		XPMonthly:    aggregate.XPMonthly,
		Level:        aggregate.Level,
		NextLevelAt:  xp.ThresholdFor(aggregate.Level + 1),
		RecentEvents: recent,
	}, nil
}
