package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/config"
)

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client

	CacheService     *CacheService
	PortalService    PortalServiceInterface
	DirectoryService DirectoryServiceInterface
	RelayService     RelayServiceInterface
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	container.initRedis()

	container.CacheService = NewCacheService(container.redisClient, cfg.Registry.CacheTTL, logger)
	container.CacheService.StartCleanupRoutine()

	container.PortalService = NewPortalService(cfg, logger)

	directory := NewDirectoryService(cfg.Registry, container.CacheService, logger)
	container.DirectoryService = directory
	container.RelayService = NewRelayService(cfg.Registry, directory, logger)

	return container, nil
}

// initRedis connects to Redis, degrading to memory-only caching when
// it is unreachable.
func (c *Container) initRedis() {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	ctx := context.Background()
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.Warn("Redis connection failed, running without cache")
		c.redisClient = nil
	} else {
		c.logger.Info("Redis connection established")
	}
}

// Close closes all service connections
func (c *Container) Close() error {
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.CacheService != nil {
		health["cache"] = c.CacheService.Health()
	}

	health["portal"] = map[string]interface{}{
		"status": "healthy",
	}

	return health
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logrus.Logger {
	return c.logger
}
