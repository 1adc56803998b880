// Package ranking contains the derived ranking view over user aggregates:
// entry shape, sort order, and the cache port that bounds read staleness.
// Pure domain layer, no external dependencies.
package ranking

import (
	"errors"
	"sort"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// Domain errors for the ranking package.
var (
	ErrInvalidType  = errors.New("ranking: unknown ranking type")
	ErrInvalidLimit = errors.New("ranking: limit must be positive")
)

// Type selects which XP field a ranking is sorted by.
type Type string

const (
	// TypeMonthly ranks by the current-month total.
	TypeMonthly Type = "monthly"

	// TypeOverall ranks by the lifetime total.
	TypeOverall Type = "overall"
)

// IsValid reports whether the type is known.
func (t Type) IsValid() bool {
	return t == TypeMonthly || t == TypeOverall
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// Types lists every ranking type, for cache invalidation sweeps.
func Types() []Type {
	return []Type{TypeMonthly, TypeOverall}
}

// Entry is one row of a computed ranking. Derived, never persisted.
type Entry struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"name"`
	Avatar    string   `json:"avatar,omitempty"`
	Level     xp.Level `json:"level"`
	XP        int      `json:"xp"`
	XPMonthly int      `json:"xp_mensal"`
	Position  int      `json:"position"`
}

// score returns the XP field the given ranking type sorts by.
func (e Entry) score(t Type) int {
	if t == TypeMonthly {
		return e.XPMonthly
	}
	return e.XP
}

// FromAggregates builds unsorted entries from aggregate rows.
func FromAggregates(aggregates []xp.Aggregate) []Entry {
	entries := make([]Entry, 0, len(aggregates))
	for _, a := range aggregates {
		entries = append(entries, Entry{
			UserID:    a.UserID,
			Name:      a.Name,
			Avatar:    a.Avatar,
			Level:     a.Level,
			XP:        a.XP,
			XPMonthly: a.XPMonthly,
		})
	}
	return entries
}

// Sort orders entries descending by the relevant XP field and assigns
// 1-based positions. Ties break by ascending user id: deterministic order
// instead of whatever the store happened to return.
func Sort(entries []Entry, t Type) {
	sort.SliceStable(entries, func(i, j int) bool {
		si, sj := entries[i].score(t), entries[j].score(t)
		if si != sj {
			return si > sj
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
}

// Truncate returns at most limit entries. A non-positive limit returns the
// full slice.
func Truncate(entries []Entry, limit int) []Entry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}
