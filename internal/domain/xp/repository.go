package xp

import (
	"context"
	"time"
)

// LedgerRepository is the port for the append-only XP event store.
// Implementations never expose update or delete operations.
type LedgerRepository interface {
	// Append inserts one event. The event is immutable afterwards.
	Append(ctx context.Context, event *Event) error

	// ListByUser returns every event for a user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]Event, error)

	// ListByUserInRange returns the user's events with CreatedAt in
	// [from, to), oldest first.
	ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]Event, error)

	// ListRecentByUser returns the user's newest events, newest first,
	// truncated to limit.
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]Event, error)
}

// AggregateRepository is the port for the per-user totals row.
type AggregateRepository interface {
	// Get returns the aggregate for a user, or ErrUserNotFound.
	Get(ctx context.Context, userID string) (*Aggregate, error)

	// Increment atomically adds amount to both xp and xp_mensal in a
	// single statement and returns the updated row. This is the only
	// incremental write path; it avoids the read-modify-write lost-update
	// race between concurrent awards.
	Increment(ctx context.Context, userID string, amount int) (*Aggregate, error)

	// SetLevel persists a recomputed level.
	SetLevel(ctx context.Context, userID string, level Level) error

	// SetMonthlyXP overwrites xp_mensal with an absolute value (full
	// replace, used by reconciliation and the ceiling clamp).
	SetMonthlyXP(ctx context.Context, userID string, value int) error

	// List returns all aggregates.
	List(ctx context.Context) ([]Aggregate, error)

	// ListUserIDs returns all user ids, for bounded batch jobs.
	ListUserIDs(ctx context.Context) ([]string, error)
}
