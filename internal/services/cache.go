package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheService caches extracted corporation records. Redis is used
// when reachable; otherwise an in-memory map takes over so the service
// keeps working on a single node.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger

	memCache map[string]cacheItem
	memMutex sync.RWMutex
}

type cacheItem struct {
	value     string
	expiresAt time.Time
}

// NewCacheService creates a cache backed by the given Redis client,
// which may be nil for memory-only operation.
func NewCacheService(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *CacheService {
	return &CacheService{
		client:   client,
		ttl:      ttl,
		logger:   logger,
		memCache: make(map[string]cacheItem),
	}
}

// Get retrieves a value, preferring Redis over the memory fallback.
func (c *CacheService) Get(ctx context.Context, key string) (string, error) {
	if c.client != nil {
		val, err := c.client.Get(ctx, key).Result()
		if err == nil {
			c.logger.WithField("key", key).Debug("Cache hit (Redis)")
			return val, nil
		}
		if err != redis.Nil {
			c.logger.WithField("key", key).WithError(err).Warn("Redis get error, falling back to memory cache")
		}
	}

	c.memMutex.RLock()
	item, exists := c.memCache[key]
	c.memMutex.RUnlock()

	if !exists {
		return "", ErrCacheMiss
	}
	if time.Now().After(item.expiresAt) {
		c.memMutex.Lock()
		delete(c.memCache, key)
		c.memMutex.Unlock()
		return "", ErrCacheMiss
	}

	c.logger.WithField("key", key).Debug("Cache hit (memory)")
	return item.value, nil
}

// Set stores a value with the service TTL.
func (c *CacheService) Set(ctx context.Context, key, value string) error {
	if c.client != nil {
		if err := c.client.Set(ctx, key, value, c.ttl).Err(); err == nil {
			c.logger.WithField("key", key).Debug("Cache set (Redis)")
			return nil
		} else {
			c.logger.WithField("key", key).WithError(err).Warn("Redis set error, falling back to memory cache")
		}
	}

	c.memMutex.Lock()
	c.memCache[key] = cacheItem{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.memMutex.Unlock()

	c.logger.WithField("key", key).Debug("Cache set (memory)")
	return nil
}

// Delete removes a key from both tiers.
func (c *CacheService) Delete(ctx context.Context, key string) error {
	if c.client != nil {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.logger.WithField("key", key).WithError(err).Warn("Redis delete error")
		}
	}

	c.memMutex.Lock()
	delete(c.memCache, key)
	c.memMutex.Unlock()
	return nil
}

// Health reports the state of both cache tiers.
func (c *CacheService) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.client.Ping(ctx).Err(); err != nil {
			health["redis"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		} else {
			health["redis"] = map[string]interface{}{"status": "healthy"}
		}
	} else {
		health["redis"] = map[string]interface{}{"status": "disabled"}
	}

	health["memory"] = map[string]interface{}{"status": "healthy"}
	return health
}

// StartCleanupRoutine periodically drops expired memory entries.
func (c *CacheService) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			c.memMutex.Lock()
			now := time.Now()
			for key, item := range c.memCache {
				if now.After(item.expiresAt) {
					delete(c.memCache, key)
				}
			}
			c.memMutex.Unlock()
		}
	}()
}
