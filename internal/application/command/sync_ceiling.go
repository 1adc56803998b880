package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC MONTHLY CEILING
// xp_mensal must never exceed lifetime xp. Drift can violate that bound;
// this pass clamps the monthly total down to the lifetime total.
// ══════════════════════════════════════════════════════════════════════════════

// CeilingFix records one clamped user.
type CeilingFix struct {
	UserID            string `json:"user_id"`
	XP                int    `json:"xp"`
	PreviousXPMonthly int    `json:"previous_xp_mensal"`
	NewXPMonthly      int    `json:"new_xp_mensal"`
}

// SyncCeilingResult reports a clamp pass.
type SyncCeilingResult struct {
	CheckedUsers int
	Fixes        []CeilingFix
	Errors       map[string]error
}

// SyncMonthlyCeilingHandler clamps xp_mensal to xp wherever the bound is
// violated.
type SyncMonthlyCeilingHandler struct {
	aggregates xp.AggregateRepository
	log        *logger.Logger
}

// NewSyncMonthlyCeilingHandler creates a new handler.
func NewSyncMonthlyCeilingHandler(aggregates xp.AggregateRepository, log *logger.Logger) *SyncMonthlyCeilingHandler {
	if log == nil {
		log = logger.Default()
	}
	return &SyncMonthlyCeilingHandler{aggregates: aggregates, log: log}
}

// HandleUser clamps a single user.
func (h *SyncMonthlyCeilingHandler) HandleUser(ctx context.Context, userID string) (*SyncCeilingResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("sync_ceiling: %w", xp.ErrInvalidUserID)
	}

	aggregate, err := h.aggregates.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, xp.ErrUserNotFound) {
			return nil, fmt.Errorf("sync_ceiling: %w: %s", xp.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("sync_ceiling: failed to load aggregate: %w", err)
	}

	result := &SyncCeilingResult{CheckedUsers: 1, Errors: make(map[string]error)}
	fix, err := h.clampOne(ctx, aggregate)
	if err != nil {
		return nil, err
	}
	if fix != nil {
		result.Fixes = append(result.Fixes, *fix)
	}
	return result, nil
}

// HandleAll clamps every violating user, isolating per-user failures.
func (h *SyncMonthlyCeilingHandler) HandleAll(ctx context.Context) (*SyncCeilingResult, error) {
	aggregates, err := h.aggregates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync_ceiling: failed to list aggregates: %w", err)
	}

	result := &SyncCeilingResult{
		CheckedUsers: len(aggregates),
		Errors:       make(map[string]error),
	}

	for i := range aggregates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fix, err := h.clampOne(ctx, &aggregates[i])
		if err != nil {
			h.log.Error("ceiling sync failed for user",
				logger.String("user_id", aggregates[i].UserID),
				logger.Err(err),
			)
			result.Errors[aggregates[i].UserID] = err
			continue
		}
		if fix != nil {
			result.Fixes = append(result.Fixes, *fix)
		}
	}

	return result, nil
}

func (h *SyncMonthlyCeilingHandler) clampOne(ctx context.Context, aggregate *xp.Aggregate) (*CeilingFix, error) {
	if !aggregate.CeilingViolated() {
		return nil, nil
	}

	if err := h.aggregates.SetMonthlyXP(ctx, aggregate.UserID, aggregate.XP); err != nil {
		return nil, fmt.Errorf("sync_ceiling: failed to clamp xp_mensal: %w", err)
	}

	h.log.Info("clamped monthly xp to lifetime total",
		logger.String("user_id", aggregate.UserID),
		logger.Int("previous_xp_mensal", aggregate.XPMonthly),
		logger.Int("xp", aggregate.XP),
	)

	return &CeilingFix{
		UserID:            aggregate.UserID,
		XP:                aggregate.XP,
		PreviousXPMonthly: aggregate.XPMonthly,
		NewXPMonthly:      aggregate.XP,
	}, nil
}
