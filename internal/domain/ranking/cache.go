package ranking

import (
	"context"
	"time"
)

// DefaultTTL is the fixed time-to-live for cached rankings. Readers within
// the window may observe results up to this much older than the aggregate
// store; that staleness is documented behavior, not an error.
const DefaultTTL = 30 * time.Second

// Cache is the port for the time-windowed ranking cache.
//
// The contract is read-through: Get returning ok==false means the caller
// recomputes from the aggregate store and repopulates with Set. Concurrent
// misses may redundantly recompute the same value; the recompute is
// idempotent, so no locking is required. Write-side invalidation (after an
// award) is best-effort - if it fails or is skipped, staleness is still
// bounded by the TTL.
type Cache interface {
	// Get returns the cached entries for a ranking type, with ok==false
	// on a miss or expired entry.
	Get(ctx context.Context, t Type) (entries []Entry, cachedAt time.Time, ok bool, err error)

	// Set stores entries for a ranking type with the cache's fixed TTL.
	Set(ctx context.Context, t Type, entries []Entry) error

	// InvalidateAll drops every ranking type.
	InvalidateAll(ctx context.Context) error
}
