// Package xp contains the experience-points domain: the append-only event
// ledger, the per-user denormalized aggregate, and the level table.
// This is a pure domain layer with zero external dependencies.
package xp

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain errors for the xp package.
var (
	ErrUserNotFound          = errors.New("xp: user not found")
	ErrInvalidUserID         = errors.New("xp: invalid user id")
	ErrInvalidAmount         = errors.New("xp: amount must be a positive integer")
	ErrInvalidSource         = errors.New("xp: unknown event source")
	ErrEventNotFound         = errors.New("xp: event not found")
	ErrAggregateUpdateFailed = errors.New("xp: aggregate update failed after ledger append")
)

// Source identifies the kind of action that granted XP.
type Source string

const (
	// SourceLesson - a lesson was completed.
	SourceLesson Source = "lesson"

	// SourceQuiz - a quiz was passed.
	SourceQuiz Source = "quiz"

	// SourceChallenge - a challenge submission was approved.
	SourceChallenge Source = "challenge"

	// SourceCommunity - community participation (e.g. an upvoted answer).
	SourceCommunity Source = "community"

	// SourceBonus - a manual bonus granted by an administrator.
	SourceBonus Source = "bonus"
)

// IsValid reports whether the source is one of the known kinds.
func (s Source) IsValid() bool {
	switch s {
	case SourceLesson, SourceQuiz, SourceChallenge, SourceCommunity, SourceBonus:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source.
func (s Source) String() string {
	return string(s)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER EVENT
// ══════════════════════════════════════════════════════════════════════════════

// Event is a single entry in the XP ledger. Events are immutable once
// written: the ledger is the source of truth that reconciliation replays,
// so no code path updates or deletes an existing event.
type Event struct {
	// ID is the unique event identifier, assigned at creation.
	ID string

	// UserID is the owning user.
	UserID string

	// Source is the kind of action that granted the XP.
	Source Source

	// SourceID identifies the originating object (lesson id, quiz id, ...).
	// Empty for manual bonuses.
	SourceID string

	// Amount is the number of points granted. Always positive; corrections
	// happen through reconciliation, not negative events.
	Amount int

	// Description is an optional free-text annotation (bonus reason).
	Description string

	// CreatedAt is the server-assigned timestamp, stored in UTC. It is the
	// sole temporal key for monthly windowing.
	CreatedAt time.Time
}

// NewEvent creates a validated ledger event with a server-assigned UTC
// timestamp.
func NewEvent(id, userID string, source Source, sourceID string, amount int, description string) (*Event, error) {
	if id == "" {
		return nil, errors.New("xp: event id is required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	return &Event{
		ID:          id,
		UserID:      userID,
		Source:      source,
		SourceID:    sourceID,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// InMonth reports whether the event falls inside the given UTC calendar
// month.
func (e *Event) InMonth(year int, month time.Month) bool {
	t := e.CreatedAt.UTC()
	return t.Year() == year && t.Month() == month
}

// String returns a short representation for logging.
func (e *Event) String() string {
	return fmt.Sprintf("Event{ID: %s, User: %s, Source: %s, Amount: %d}", e.ID, e.UserID, e.Source, e.Amount)
}

// SumAmounts sums the amounts of a slice of events. Order-independent.
func SumAmounts(events []Event) int {
	total := 0
	for _, e := range events {
		total += e.Amount
	}
	return total
}

// FilterByMonth returns the events whose CreatedAt falls in the given UTC
// calendar month. Filtering happens in application code on purpose: the
// ledger fetch does not rely on a server-side date filter.
func FilterByMonth(events []Event, year int, month time.Month) []Event {
	filtered := make([]Event, 0, len(events))
	for _, e := range events {
		if e.InMonth(year, month) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
