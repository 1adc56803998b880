// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LedgerRepository implements xp.LedgerRepository on the xp_events table.
// The table is append-only: this type deliberately has no update or delete
// methods.
type LedgerRepository struct {
	conn *Connection
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(conn *Connection) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

// Append inserts one event.
func (r *LedgerRepository) Append(ctx context.Context, event *xp.Event) error {
	_, err := r.conn.Pool().Exec(ctx, `
		INSERT INTO xp_events (id, user_id, source, source_id, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		event.ID,
		event.UserID,
		string(event.Source),
		event.SourceID,
		event.Amount,
		event.Description,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append xp event: %w", err)
	}
	return nil
}

// ListByUser returns every event for a user, oldest first.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID string) ([]xp.Event, error) {
	return r.list(ctx, `
		SELECT id, user_id, source, source_id, amount, description, created_at
		FROM xp_events
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
}

// ListByUserInRange returns events with created_at in [from, to), oldest first.
func (r *LedgerRepository) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]xp.Event, error) {
	return r.list(ctx, `
		SELECT id, user_id, source, source_id, amount, description, created_at
		FROM xp_events
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC, id ASC
	`, userID, from, to)
}

// ListRecentByUser returns the newest events first, truncated to limit.
func (r *LedgerRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]xp.Event, error) {
	if limit <= 0 {
		return []xp.Event{}, nil
	}
	return r.list(ctx, `
		SELECT id, user_id, source, source_id, amount, description, created_at
		FROM xp_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
}

func (r *LedgerRepository) list(ctx context.Context, query string, args ...any) ([]xp.Event, error) {
	rows, err := r.conn.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query xp events: %w", err)
	}
	defer rows.Close()

	events := make([]xp.Event, 0)
	for rows.Next() {
		var e xp.Event
		var source string
		if err := rows.Scan(&e.ID, &e.UserID, &source, &e.SourceID, &e.Amount, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan xp event: %w", err)
		}
		e.Source = xp.Source(source)
		e.CreatedAt = e.CreatedAt.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate xp events: %w", err)
	}
	return events, nil
}
