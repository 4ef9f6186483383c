package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shoptag/backend/internal/domain/catalog"
)

// InMemoryCollectionCache is a process-local CollectionCache.
// Suitable for single-instance deployments and testing.
type InMemoryCollectionCache struct {
	mu          sync.RWMutex
	collections []catalog.Collection
	expiresAt   time.Time
	ttl         time.Duration

	// now is swappable for tests
	now func() time.Time
}

// NewInMemoryCollectionCache creates a new in-memory collection cache
func NewInMemoryCollectionCache(ttl time.Duration) *InMemoryCollectionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryCollectionCache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached collections if present and not expired
func (c *InMemoryCollectionCache) Get(_ context.Context) ([]catalog.Collection, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.collections == nil || c.now().After(c.expiresAt) {
		return nil, false, nil
	}

	// Copy to keep callers from mutating the cached slice
	out := make([]catalog.Collection, len(c.collections))
	copy(out, c.collections)
	return out, true, nil
}

// Set stores the collections with the configured TTL
func (c *InMemoryCollectionCache) Set(_ context.Context, collections []catalog.Collection) error {
	stored := make([]catalog.Collection, len(collections))
	copy(stored, collections)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections = stored
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate drops the cached value
func (c *InMemoryCollectionCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections = nil
	c.expiresAt = time.Time{}
	return nil
}

var _ CollectionCache = (*InMemoryCollectionCache)(nil)
