package shared

import (
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// EventType identifies a domain event kind.
type EventType string

const (
	// EventTypeXPAwarded - an XP event was appended and the aggregate
	// incremented.
	EventTypeXPAwarded EventType = "xp.awarded"

	// EventTypeAggregateReconciled - a reconciliation pass overwrote an
	// aggregate field.
	EventTypeAggregateReconciled EventType = "xp.aggregate_reconciled"
)

// Event is a domain event published on the in-process bus.
type Event interface {
	// Type returns the event kind.
	Type() EventType

	// OccurredAt returns when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the fields every event shares.
type BaseEvent struct {
	EventType EventType
	At        time.Time
}

// Type implements Event.
func (e BaseEvent) Type() EventType { return e.EventType }

// OccurredAt implements Event.
func (e BaseEvent) OccurredAt() time.Time { return e.At }

func newBaseEvent(t EventType) BaseEvent {
	return BaseEvent{EventType: t, At: time.Now().UTC()}
}

// XPAwardedEvent is published after a successful award. Subscribers use it
// for best-effort side effects (ranking cache invalidation); the award
// itself never depends on them.
type XPAwardedEvent struct {
	BaseEvent

	UserID   string
	Source   xp.Source
	SourceID string
	Amount   int
	NewXP    int
	NewLevel xp.Level
}

// NewXPAwardedEvent creates an XPAwardedEvent.
func NewXPAwardedEvent(userID string, source xp.Source, sourceID string, amount, newXP int, newLevel xp.Level) XPAwardedEvent {
	return XPAwardedEvent{
		BaseEvent: newBaseEvent(EventTypeXPAwarded),
		UserID:    userID,
		Source:    source,
		SourceID:  sourceID,
		Amount:    amount,
		NewXP:     newXP,
		NewLevel:  newLevel,
	}
}

// AggregateReconciledEvent is published after a reconciliation write.
type AggregateReconciledEvent struct {
	BaseEvent

	UserID   string
	Field    string // "xp_mensal" or "level"
	Previous int
	Current  int
}

// NewAggregateReconciledEvent creates an AggregateReconciledEvent.
func NewAggregateReconciledEvent(userID, field string, previous, current int) AggregateReconciledEvent {
	return AggregateReconciledEvent{
		BaseEvent: newBaseEvent(EventTypeAggregateReconciled),
		UserID:    userID,
		Field:     field,
		Previous:  previous,
		Current:   current,
	}
}

// EventHandler processes a published event.
type EventHandler func(event Event)

// EventPublisher is the port commands use to publish events.
type EventPublisher interface {
	Publish(event Event)
}
