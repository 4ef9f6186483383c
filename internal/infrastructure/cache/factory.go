package cache

import (
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/infrastructure/config"
)

// CollectionCacheFactory creates collection caches based on configuration
type CollectionCacheFactory struct {
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// NewCollectionCacheFactory creates a new factory
func NewCollectionCacheFactory(cfg config.RedisConfig, logger *zap.Logger) *CollectionCacheFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionCacheFactory{redisConfig: cfg, logger: logger}
}

// CreateCache creates a Redis-backed cache when Redis is enabled, falling
// back to the in-memory cache when Redis is disabled or unreachable.
func (f *CollectionCacheFactory) CreateCache() CollectionCache {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory collection cache")
		return NewInMemoryCollectionCache(f.redisConfig.CacheTTL)
	}

	redisCache, err := NewRedisCollectionCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.redisConfig.CacheTTL)
	if err != nil {
		f.logger.Warn("Redis unavailable, falling back to in-memory collection cache",
			zap.Error(err))
		return NewInMemoryCollectionCache(f.redisConfig.CacheTTL)
	}

	f.logger.Info("using Redis collection cache")
	return redisCache
}
