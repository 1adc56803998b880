// Package query contains read operations following CQRS pattern.
// Queries never modify state beyond cache population.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/ranking"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/shared"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RANKING QUERY
// Read-through cached view over the aggregate store. Staleness is bounded
// by the cache TTL; cache failures degrade to direct store reads so the
// ranking surface never hard-fails because of the cache.
// ══════════════════════════════════════════════════════════════════════════════

// GetRankingQuery selects the ranking type and size.
type GetRankingQuery struct {
	// Type is "monthly" or "overall".
	Type ranking.Type

	// Limit truncates the result. Non-positive means DefaultRankingLimit.
	Limit int
}

// DefaultRankingLimit caps rankings when the caller does not say.
const DefaultRankingLimit = 50

// Validate validates the query.
func (q GetRankingQuery) Validate() error {
	if !q.Type.IsValid() {
		return fmt.Errorf("get_ranking: %w: %q", ranking.ErrInvalidType, q.Type)
	}
	return nil
}

// GetRankingResult contains the sorted entries and cache provenance.
type GetRankingResult struct {
	Type    ranking.Type
	Entries []ranking.Entry

	// FromCache is true when the entries were served from the cache.
	FromCache bool

	// CachedAt is when the served entries were computed (zero for a
	// fresh recompute).
	CachedAt time.Time
}

// GetRankingHandler handles GetRankingQuery.
type GetRankingHandler struct {
	aggregates xp.AggregateRepository
	cache      ranking.Cache
	log        *logger.Logger
}

// NewGetRankingHandler creates a new GetRankingHandler.
func NewGetRankingHandler(aggregates xp.AggregateRepository, cache ranking.Cache, log *logger.Logger) *GetRankingHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetRankingHandler{aggregates: aggregates, cache: cache, log: log}
}

// Handle serves the ranking, populating the cache on a miss. Concurrent
// misses may recompute redundantly; the recompute is idempotent, so no
// locking is needed and all racers converge on the same value.
func (h *GetRankingHandler) Handle(ctx context.Context, q GetRankingQuery) (*GetRankingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultRankingLimit
	}

	if h.cache != nil {
		entries, cachedAt, ok, err := h.cache.Get(ctx, q.Type)
		if err != nil {
			h.log.Warn("ranking cache read failed, falling back to store",
				logger.String("type", q.Type.String()),
				logger.Err(err),
			)
		} else if ok {
			return &GetRankingResult{
				Type:      q.Type,
				Entries:   ranking.Truncate(entries, limit),
				FromCache: true,
				CachedAt:  cachedAt,
			}, nil
		}
	}

	aggregates, err := h.aggregates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_ranking: failed to list aggregates: %w", err)
	}

	entries := ranking.FromAggregates(aggregates)
	ranking.Sort(entries, q.Type)

	if h.cache != nil {
		if err := h.cache.Set(ctx, q.Type, entries); err != nil {
			// Best-effort; the next read recomputes.
			h.log.Warn("ranking cache write failed",
				logger.String("type", q.Type.String()),
				logger.Err(err),
			)
		}
	}

	return &GetRankingResult{
		Type:    q.Type,
		Entries: ranking.Truncate(entries, limit),
	}, nil
}
