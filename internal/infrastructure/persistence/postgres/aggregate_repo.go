// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"fmt"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AggregateRepository implements xp.AggregateRepository on the
// user_aggregates table.
type AggregateRepository struct {
	conn *Connection
}

// NewAggregateRepository creates a new AggregateRepository.
func NewAggregateRepository(conn *Connection) *AggregateRepository {
	return &AggregateRepository{conn: conn}
}

const aggregateColumns = `user_id, name, avatar, xp, xp_mensal, level, updated_at`

// Get returns the aggregate for a user, or xp.ErrUserNotFound.
func (r *AggregateRepository) Get(ctx context.Context, userID string) (*xp.Aggregate, error) {
	row := r.conn.Pool().QueryRow(ctx, `
		SELECT `+aggregateColumns+`
		FROM user_aggregates
		WHERE user_id = $1
	`, userID)

	agg, err := scanAggregate(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, xp.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get aggregate: %w", err)
	}
	return agg, nil
}

// Increment adds amount to both xp and xp_mensal in one statement and
// returns the updated row. Concurrent awards serialize on the row lock, so
// no increment is ever lost.
func (r *AggregateRepository) Increment(ctx context.Context, userID string, amount int) (*xp.Aggregate, error) {
	row := r.conn.Pool().QueryRow(ctx, `
		UPDATE user_aggregates
		SET xp = xp + $2,
		    xp_mensal = xp_mensal + $2,
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+aggregateColumns+`
	`, userID, amount)

	agg, err := scanAggregate(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, xp.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to increment aggregate: %w", err)
	}
	return agg, nil
}

// SetLevel persists a recomputed level.
func (r *AggregateRepository) SetLevel(ctx context.Context, userID string, level xp.Level) error {
	tag, err := r.conn.Pool().Exec(ctx, `
		UPDATE user_aggregates
		SET level = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, int(level))
	if err != nil {
		return fmt.Errorf("failed to set level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xp.ErrUserNotFound
	}
	return nil
}

// SetMonthlyXP overwrites xp_mensal with an absolute value.
func (r *AggregateRepository) SetMonthlyXP(ctx context.Context, userID string, value int) error {
	tag, err := r.conn.Pool().Exec(ctx, `
		UPDATE user_aggregates
		SET xp_mensal = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, value)
	if err != nil {
		return fmt.Errorf("failed to set monthly xp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xp.ErrUserNotFound
	}
	return nil
}

// List returns all aggregates.
func (r *AggregateRepository) List(ctx context.Context) ([]xp.Aggregate, error) {
	rows, err := r.conn.Pool().Query(ctx, `
		SELECT `+aggregateColumns+`
		FROM user_aggregates
		ORDER BY user_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list aggregates: %w", err)
	}
	defer rows.Close()

	aggregates := make([]xp.Aggregate, 0)
	for rows.Next() {
		agg, err := scanAggregate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		aggregates = append(aggregates, *agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aggregates: %w", err)
	}
	return aggregates, nil
}

// ListUserIDs returns all user ids, for bounded batch jobs.
func (r *AggregateRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Pool().Query(ctx, `
		SELECT user_id FROM user_aggregates ORDER BY user_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user ids: %w", err)
	}
	return ids, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// scanning
// ──────────────────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAggregate(row rowScanner) (*xp.Aggregate, error) {
	var agg xp.Aggregate
	var level int
	if err := row.Scan(&agg.UserID, &agg.Name, &agg.Avatar, &agg.XP, &agg.XPMonthly, &level, &agg.UpdatedAt); err != nil {
		return nil, err
	}
	agg.Level = xp.Level(level)
	agg.UpdatedAt = agg.UpdatedAt.UTC()
	return &agg, nil
}
