package cache

import (
	"context"
	"time"

	"github.com/shoptag/backend/internal/domain/catalog"
)

// CollectionCache caches the shop's collection listing. Collections change
// rarely but cost a paginated API walk to fetch, so reads go through here.
type CollectionCache interface {
	// Get returns the cached collections and whether the cache held a value
	Get(ctx context.Context) ([]catalog.Collection, bool, error)
	// Set stores the collections with the configured TTL
	Set(ctx context.Context, collections []catalog.Collection) error
	// Invalidate drops the cached value
	Invalidate(ctx context.Context) error
}

// DefaultTTL is used when no TTL is configured
const DefaultTTL = 5 * time.Minute
