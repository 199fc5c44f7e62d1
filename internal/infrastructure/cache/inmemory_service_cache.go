package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hms/backend/internal/domain/catalog"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
	defaultServiceTTL      = 5 * time.Minute
)

// InMemoryServiceCache implements ServiceCache using in-process storage.
// It is the fallback when Redis is not configured and works for a single
// instance deployment.
type InMemoryServiceCache struct {
	entries sync.Map // map[string]*cacheEntry
	ttl     time.Duration
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// cacheEntry wraps a cached service definition with its expiration time
type cacheEntry struct {
	value     *catalog.ServiceDefinition
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// NewInMemoryServiceCache creates a new in-memory service definition cache
func NewInMemoryServiceCache(ttl time.Duration) *InMemoryServiceCache {
	if ttl <= 0 {
		ttl = defaultServiceTTL
	}
	c := &InMemoryServiceCache{
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go c.cleanupExpired()

	return c
}

// Get retrieves a cached service definition. A nil result with nil error
// means a cache miss.
func (c *InMemoryServiceCache) Get(ctx context.Context, key string) (*catalog.ServiceDefinition, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.value, nil
		}
		c.entries.Delete(key)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores a service definition with the configured TTL
func (c *InMemoryServiceCache) Set(ctx context.Context, key string, svc *catalog.ServiceDefinition) error {
	c.entries.Store(key, &cacheEntry{
		value:     svc,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryServiceCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the background cleanup goroutine
func (c *InMemoryServiceCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// cleanupExpired periodically removes expired entries so the map does not
// grow unbounded on a large catalog
func (c *InMemoryServiceCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if value.(*cacheEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryServiceCache implements ServiceCache
var _ ServiceCache = (*InMemoryServiceCache)(nil)
