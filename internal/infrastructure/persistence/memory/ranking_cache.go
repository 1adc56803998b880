// Package memory provides in-process cache implementations used by
// single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/ranking"
)

// RankingCache is a process-local implementation of ranking.Cache. One slot
// per ranking type, guarded by a mutex. Entries expire after the TTL; an
// expired slot reads as a miss and is lazily overwritten by the next Set.
type RankingCache struct {
	mu    sync.RWMutex
	slots map[ranking.Type]slot
	ttl   time.Duration
	now   func() time.Time
}

type slot struct {
	entries  []ranking.Entry
	cachedAt time.Time
}

// NewRankingCache creates a cache with the given TTL. A non-positive ttl
// falls back to ranking.DefaultTTL.
func NewRankingCache(ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = ranking.DefaultTTL
	}
	return &RankingCache{
		slots: make(map[ranking.Type]slot, 2),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached entries for t if the slot is fresh.
func (c *RankingCache) Get(_ context.Context, t ranking.Type) ([]ranking.Entry, time.Time, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, found := c.slots[t]
	if !found || c.now().Sub(s.cachedAt) >= c.ttl {
		return nil, time.Time{}, false, nil
	}

	// Copy out so callers cannot mutate the cached slice.
	entries := make([]ranking.Entry, len(s.entries))
	copy(entries, s.entries)
	return entries, s.cachedAt, true, nil
}

// Set stores entries for t, stamping the cache time.
func (c *RankingCache) Set(_ context.Context, t ranking.Type, entries []ranking.Entry) error {
	stored := make([]ranking.Entry, len(entries))
	copy(stored, entries)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[t] = slot{entries: stored, cachedAt: c.now()}
	return nil
}

// InvalidateAll drops every slot.
func (c *RankingCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = make(map[ranking.Type]slot, 2)
	return nil
}
