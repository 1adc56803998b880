// Package eventhandler contains subscribers wired to the in-process event
// bus. Handlers here run best-effort side effects: they log their failures
// and never fail the command that published the event.
package eventhandler

import (
	"context"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/ranking"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/shared"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// OnXPAwarded invalidates the ranking cache after an award so subsequent
// reads observe the new totals within the TTL window. Invalidation is
// best-effort: if it fails, staleness is still bounded by the TTL.
type OnXPAwarded struct {
	cache   ranking.Cache
	log     *logger.Logger
	timeout time.Duration
}

// NewOnXPAwarded creates the subscriber.
func NewOnXPAwarded(cache ranking.Cache, log *logger.Logger) *OnXPAwarded {
	if log == nil {
		log = logger.Default()
	}
	return &OnXPAwarded{cache: cache, log: log, timeout: 2 * time.Second}
}

// Handle processes an event from the bus.
func (h *OnXPAwarded) Handle(event shared.Event) {
	awarded, ok := event.(shared.XPAwardedEvent)
	if !ok {
		return
	}
	if h.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.cache.InvalidateAll(ctx); err != nil {
		h.log.Warn("ranking cache invalidation failed, TTL bounds staleness",
			logger.String("user_id", awarded.UserID),
			logger.Err(err),
		)
	}
}
