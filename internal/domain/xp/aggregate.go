package xp

import (
	"time"
)

// Aggregate is the denormalized per-user XP totals row. It is a cached
// derived value: XP SHOULD equal the sum of the user's ledger events, but
// can drift, and XPMonthly <= XP is a sanity bound repaired by a sync pass
// rather than a hard constraint. The ledger stays the source of truth.
//
// Only two writers exist: the award engine (incremental) and the
// reconciliation/sync jobs (absolute recompute).
type Aggregate struct {
	// UserID is 1:1 with a user.
	UserID string

	// Name and Avatar are denormalized profile fields carried for ranking
	// display; they are owned by the user record outside this core.
	Name   string
	Avatar string

	// XP is the lifetime total.
	XP int

	// XPMonthly is the total restricted to events in the current UTC
	// calendar month.
	XPMonthly int

	// Level must satisfy Level == LevelFor(XP); any deviation is a bug
	// that SyncLevel repairs.
	Level Level

	// UpdatedAt is the last mutation time.
	UpdatedAt time.Time
}

// NewAggregate creates a zero-valued aggregate for a new user.
func NewAggregate(userID, name, avatar string) (*Aggregate, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	return &Aggregate{
		UserID:    userID,
		Name:      name,
		Avatar:    avatar,
		XP:        0,
		XPMonthly: 0,
		Level:     1,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Apply increments both totals by a positive amount and recomputes the
// level from the shared table. In-memory counterpart of the storage-layer
// atomic increment; used by tests and dry-run projections.
func (a *Aggregate) Apply(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	a.XP += amount
	a.XPMonthly += amount
	a.Level = LevelFor(a.XP)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// CeilingViolated reports whether the monthly total exceeds the lifetime
// total, the drift signature the ceiling sync clamps.
func (a *Aggregate) CeilingViolated() bool {
	return a.XPMonthly > a.XP
}

// LevelDrifted reports whether the stored level disagrees with the table.
func (a *Aggregate) LevelDrifted() bool {
	return a.Level != LevelFor(a.XP)
}

// Clone returns a copy of the aggregate.
func (a *Aggregate) Clone() *Aggregate {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
