package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kiranascan/backend/internal/domain"
)

// SnapshotCache is a thread-safe single-entry cache for the catalog
// snapshot used by receipt matching. Entries are copied on both Set and
// Get so callers can never mutate the cached slice in place.
type SnapshotCache struct {
	mutex      sync.RWMutex
	entries    []domain.CatalogEntry
	expiration time.Time
	ttl        time.Duration
	now        func() time.Time
}

// NewSnapshotCache creates a snapshot cache with the given TTL.
// A non-positive TTL disables caching entirely: Get always misses.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached snapshot, or false when the cache is empty,
// expired, or disabled.
func (c *SnapshotCache) Get(ctx context.Context) ([]domain.CatalogEntry, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.entries == nil || c.now().After(c.expiration) {
		return nil, false
	}

	out := make([]domain.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out, true
}

// Set stores a snapshot, replacing any previous one.
func (c *SnapshotCache) Set(ctx context.Context, entries []domain.CatalogEntry) {
	if c.ttl <= 0 {
		return
	}

	stored := make([]domain.CatalogEntry, len(entries))
	copy(stored, entries)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = stored
	c.expiration = c.now().Add(c.ttl)
}

// Invalidate drops the cached snapshot. Called after any catalog write
// so the next receipt sees fresh inventory.
func (c *SnapshotCache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = nil
	c.expiration = time.Time{}
}
