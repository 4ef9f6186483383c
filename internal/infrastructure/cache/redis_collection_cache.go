package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shoptag/backend/internal/domain/catalog"
)

const collectionCacheKey = "shoptag:collections"

// RedisCollectionCache implements CollectionCache using Redis.
// Suitable for deployments with multiple instances sharing one cache.
type RedisCollectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCollectionCache creates a Redis-backed collection cache
func NewRedisCollectionCache(cfg RedisConfig, ttl time.Duration) (*RedisCollectionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisCollectionCache{client: client, ttl: ttl}, nil
}

// NewRedisCollectionCacheWithClient creates a cache with an existing Redis
// client, useful for testing or sharing a client across components
func NewRedisCollectionCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCollectionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCollectionCache{client: client, ttl: ttl}
}

// Get returns the cached collections if present
func (c *RedisCollectionCache) Get(ctx context.Context) ([]catalog.Collection, bool, error) {
	payload, err := c.client.Get(ctx, collectionCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read collection cache: %w", err)
	}

	var collections []catalog.Collection
	if err := json.Unmarshal(payload, &collections); err != nil {
		return nil, false, fmt.Errorf("failed to decode collection cache: %w", err)
	}

	return collections, true, nil
}

// Set stores the collections with the configured TTL
func (c *RedisCollectionCache) Set(ctx context.Context, collections []catalog.Collection) error {
	payload, err := json.Marshal(collections)
	if err != nil {
		return fmt.Errorf("failed to encode collections: %w", err)
	}

	if err := c.client.Set(ctx, collectionCacheKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write collection cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached value
func (c *RedisCollectionCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, collectionCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate collection cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCollectionCache) Close() error {
	return c.client.Close()
}

var _ CollectionCache = (*RedisCollectionCache)(nil)
