// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: XP LEDGER AND AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

const migration001 = `
-- Migration: XP event ledger and denormalized user aggregates
-- Version: 001

-- Append-only ledger of XP awards. Rows are never updated or deleted;
-- aggregates are recomputed from this table during reconciliation.
CREATE TABLE IF NOT EXISTS xp_events (
    id UUID PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL,
    source VARCHAR(20) NOT NULL,
    source_id VARCHAR(128) NOT NULL DEFAULT '',
    amount INTEGER NOT NULL,
    description VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_source CHECK (source IN ('lesson', 'quiz', 'challenge', 'community', 'bonus')),
    CONSTRAINT positive_amount CHECK (amount > 0)
);

CREATE INDEX IF NOT EXISTS idx_xp_events_user_id ON xp_events(user_id);
CREATE INDEX IF NOT EXISTS idx_xp_events_user_created ON xp_events(user_id, created_at DESC);
-- Audit lookup for duplicate award investigations. Deliberately NOT unique.
CREATE INDEX IF NOT EXISTS idx_xp_events_source ON xp_events(user_id, source, source_id);

-- Denormalized per-user totals. xp and xp_mensal are incremented on award
-- and healed from the ledger by the reconciliation jobs.
CREATE TABLE IF NOT EXISTS user_aggregates (
    user_id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(100) NOT NULL DEFAULT '',
    avatar VARCHAR(255) NOT NULL DEFAULT '',
    xp INTEGER NOT NULL DEFAULT 0,
    xp_mensal INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_xp CHECK (xp >= 0),
    CONSTRAINT valid_level CHECK (level >= 1)
);

CREATE INDEX IF NOT EXISTS idx_user_aggregates_xp ON user_aggregates(xp DESC);
CREATE INDEX IF NOT EXISTS idx_user_aggregates_xp_mensal ON user_aggregates(xp_mensal DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: COMMUNITY QUESTIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration002 = `
-- Migration: Community questions and votes for the top-member badge
-- Version: 002

CREATE TABLE IF NOT EXISTS questions (
    id UUID PRIMARY KEY,
    author_id VARCHAR(64) NOT NULL,
    title VARCHAR(255) NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_questions_author_id ON questions(author_id);

CREATE TABLE IF NOT EXISTS question_votes (
    question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    voter_id VARCHAR(64) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (question_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_question_votes_question ON question_votes(question_id);
`

// ──────────────────────────────────────────────────────────────────────────────
// RUNNER
// ──────────────────────────────────────────────────────────────────────────────

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{version: 1, name: "xp_ledger_and_aggregates", sql: migration001},
	{version: 2, name: "community_questions", sql: migration002},
}

// Migrate applies all pending migrations in order. Applied versions are
// tracked in schema_migrations so the runner is idempotent.
func (c *Connection) Migrate(ctx context.Context) error {
	pool := c.Pool()

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: failed to create schema_migrations: %v", ErrMigrationFailed, err)
	}

	for _, m := range migrations {
		var applied bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("%w: failed to check version %d: %v", ErrMigrationFailed, m.version, err)
		}
		if applied {
			continue
		}

		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("%w: migration %03d (%s): %v", ErrMigrationFailed, m.version, m.name, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name,
		); err != nil {
			return fmt.Errorf("%w: failed to record version %d: %v", ErrMigrationFailed, m.version, err)
		}
	}

	return nil
}
