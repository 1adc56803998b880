package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC LEVEL
// Repairs level drift: level must always equal LevelFor(xp), computed from
// the one shared threshold table.
// ══════════════════════════════════════════════════════════════════════════════

// LevelFix records one repaired user.
type LevelFix struct {
	UserID        string   `json:"user_id"`
	XP            int      `json:"xp"`
	PreviousLevel xp.Level `json:"previous_level"`
	NewLevel      xp.Level `json:"new_level"`
}

// SyncLevelResult reports a sync pass.
type SyncLevelResult struct {
	CheckedUsers int
	Fixes        []LevelFix
	Errors       map[string]error
}

// SyncLevelHandler recomputes level = LevelFor(xp) and persists only on
// mismatch.
type SyncLevelHandler struct {
	aggregates xp.AggregateRepository
	log        *logger.Logger
}

// NewSyncLevelHandler creates a new SyncLevelHandler.
func NewSyncLevelHandler(aggregates xp.AggregateRepository, log *logger.Logger) *SyncLevelHandler {
	if log == nil {
		log = logger.Default()
	}
	return &SyncLevelHandler{aggregates: aggregates, log: log}
}

// HandleUser syncs a single user's level.
func (h *SyncLevelHandler) HandleUser(ctx context.Context, userID string) (*SyncLevelResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("sync_level: %w", xp.ErrInvalidUserID)
	}

	aggregate, err := h.aggregates.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, xp.ErrUserNotFound) {
			return nil, fmt.Errorf("sync_level: %w: %s", xp.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("sync_level: failed to load aggregate: %w", err)
	}

	result := &SyncLevelResult{CheckedUsers: 1, Errors: make(map[string]error)}
	fix, err := h.syncOne(ctx, aggregate)
	if err != nil {
		return nil, err
	}
	if fix != nil {
		result.Fixes = append(result.Fixes, *fix)
	}
	return result, nil
}

// HandleAll syncs every user, isolating per-user failures.
func (h *SyncLevelHandler) HandleAll(ctx context.Context) (*SyncLevelResult, error) {
	aggregates, err := h.aggregates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync_level: failed to list aggregates: %w", err)
	}

	result := &SyncLevelResult{
		CheckedUsers: len(aggregates),
		Errors:       make(map[string]error),
	}

	for i := range aggregates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fix, err := h.syncOne(ctx, &aggregates[i])
		if err != nil {
			h.log.Error("level sync failed for user",
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

func (h *SyncLevelHandler) syncOne(ctx context.Context, aggregate *xp.Aggregate) (*LevelFix, error) {
	expected := xp.LevelFor(aggregate.XP)
	if aggregate.Level == expected {
		return nil, nil
	}

	if err := h.aggregates.SetLevel(ctx, aggregate.UserID, expected); err != nil {
		return nil, fmt.Errorf("sync_level: failed to write level: %w", err)
	}

	h.log.Info("repaired level drift",
		logger.String("user_id", aggregate.UserID),
		logger.Int("xp", aggregate.XP),
		logger.Int("previous_level", int(aggregate.Level)),
		logger.Int("new_level", int(expected)),
	)

	return &LevelFix{
		UserID:        aggregate.UserID,
		XP:            aggregate.XP,
		PreviousLevel: aggregate.Level,
		NewLevel:      expected,
	}, nil
}
