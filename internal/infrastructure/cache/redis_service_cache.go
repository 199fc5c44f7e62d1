package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hms/backend/internal/domain/catalog"
)

const serviceKeyPrefix = "catalog:service:"

// RedisServiceCache implements ServiceCache using Redis. Suitable for
// distributed deployments where multiple instances share the catalog
// working set.
type RedisServiceCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisServiceCache creates a Redis-based service definition cache
// and verifies the connection
func NewRedisServiceCache(cfg RedisConfig, ttl time.Duration) (*RedisServiceCache, error) {
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
		ttl = defaultServiceTTL
	}

	return &RedisServiceCache{
		client:     client,
		ownsClient: true,
		ttl:        ttl,
	}, nil
}

// NewRedisServiceCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisServiceCacheWithClient(client *redis.Client, ttl time.Duration) *RedisServiceCache {
	if ttl <= 0 {
		ttl = defaultServiceTTL
	}
	return &RedisServiceCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached service definition. A nil result with nil error
// means a cache miss.
func (c *RedisServiceCache) Get(ctx context.Context, key string) (*catalog.ServiceDefinition, error) {
	data, err := c.client.Get(ctx, serviceKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service from cache: %w", err)
	}

	var svc catalog.ServiceDefinition
	if err := json.Unmarshal(data, &svc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached service: %w", err)
	}
	return &svc, nil
}

// Set stores a service definition with the configured TTL
func (c *RedisServiceCache) Set(ctx context.Context, key string, svc *catalog.ServiceDefinition) error {
	data, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("failed to marshal service for cache: %w", err)
	}
	if err := c.client.Set(ctx, serviceKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set service in cache: %w", err)
	}
	return nil
}

// Close closes the Redis client if this cache owns it
func (c *RedisServiceCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisServiceCache implements ServiceCache
var _ ServiceCache = (*RedisServiceCache)(nil)
