// Package messaging implements the in-process event bus that decouples
// command handlers from side effects such as cache invalidation.
package messaging

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/shared"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ErrBusClosed is returned when publishing or subscribing after Close.
var ErrBusClosed = errors.New("messaging: event bus closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// EventBus is a synchronous in-memory publisher. Handlers run in the
// publishing goroutine; a panicking handler is recovered and logged so one
// subscriber cannot break the command path.
type EventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	log         *logger.Logger
	closed      bool
}

// NewEventBus creates an empty bus.
func NewEventBus(log *logger.Logger) *EventBus {
	if log == nil {
		log = logger.Default()
	}
	return &EventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		log:      log,
	}
}

// Subscribe registers a handler for one event type.
func (b *EventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler for every event.
func (b *EventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish delivers event to all matching handlers. It never returns an error
// to the caller; delivery failures are a subscriber concern.
func (b *EventBus) Publish(event shared.Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	targets := make([]shared.EventHandler, 0, len(b.handlers[event.Type()])+len(b.allHandlers))
	targets = append(targets, b.handlers[event.Type()]...)
	targets = append(targets, b.allHandlers...)
	b.mu.RUnlock()

	for _, h := range targets {
		b.deliver(h, event)
	}
}

func (b *EventBus) deliver(h shared.EventHandler, event shared.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				logger.String("event_type", string(event.Type())),
				logger.Err(fmt.Errorf("panic: %v", r)),
				logger.String("stack", string(debug.Stack())),
			)
		}
	}()
	h(event)
}

// Close stops the bus. Further publishes are dropped.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
