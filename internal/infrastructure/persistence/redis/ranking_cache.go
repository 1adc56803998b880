package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/ranking"
	"github.com/orbita-hub/orbita-learning-hub/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE
// ══════════════════════════════════════════════════════════════════════════════

const rankingKeyPrefix = "ranking:"

// RankingCache implements ranking.Cache on Redis. TTL is enforced by Redis
// key expiry. Calls are guarded by a circuit breaker so a down Redis turns
// into fast cache misses instead of per-request timeouts; the query handler
// already treats cache errors as misses.
type RankingCache struct {
	client  *Client
	ttl     time.Duration
	breaker *circuitbreaker.Breaker
}

type cachePayload struct {
	Entries  []ranking.Entry `json:"entries"`
	CachedAt time.Time       `json:"cached_at"`
}

// NewRankingCache creates a cache with the given TTL. A non-positive ttl
// falls back to ranking.DefaultTTL.
func NewRankingCache(client *Client, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = ranking.DefaultTTL
	}
	return &RankingCache{
		client:  client,
		ttl:     ttl,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
	}
}

func rankingKey(t ranking.Type) string {
	return rankingKeyPrefix + string(t)
}

// Get returns the cached entries for t, or a miss if the key is absent,
// expired, or the breaker is open.
func (c *RankingCache) Get(ctx context.Context, t ranking.Type) ([]ranking.Entry, time.Time, bool, error) {
	var raw string
	err := c.breaker.Execute(func() error {
		var getErr error
		raw, getErr = c.client.Raw().Get(ctx, rankingKey(t)).Result()
		if errors.Is(getErr, goredis.Nil) {
			raw = ""
			return nil
		}
		return getErr
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, fmt.Errorf("redis: failed to get ranking: %w", err)
	}
	if raw == "" {
		return nil, time.Time{}, false, nil
	}

	var payload cachePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		// Corrupt payload reads as a miss; the next Set overwrites it.
		return nil, time.Time{}, false, nil
	}
	return payload.Entries, payload.CachedAt, true, nil
}

// Set stores entries for t with the cache TTL as key expiry.
func (c *RankingCache) Set(ctx context.Context, t ranking.Type, entries []ranking.Entry) error {
	payload := cachePayload{Entries: entries, CachedAt: time.Now().UTC()}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal ranking: %w", err)
	}

	err = c.breaker.Execute(func() error {
		return c.client.Raw().Set(ctx, rankingKey(t), data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis: failed to set ranking: %w", err)
	}
	return nil
}

// InvalidateAll deletes the slot for every ranking type.
func (c *RankingCache) InvalidateAll(ctx context.Context) error {
	keys := make([]string, 0, 2)
	for _, t := range ranking.Types() {
		keys = append(keys, rankingKey(t))
	}

	err := c.breaker.Execute(func() error {
		return c.client.Raw().Del(ctx, keys...).Err()
	})
	if err != nil {
		return fmt.Errorf("redis: failed to invalidate ranking: %w", err)
	}
	return nil
}
