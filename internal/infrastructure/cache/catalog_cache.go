package cache

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/config"
)

// ServiceCache stores service definitions by key. A nil definition with a
// nil error signals a cache miss.
type ServiceCache interface {
	Get(ctx context.Context, key string) (*catalog.ServiceDefinition, error)
	Set(ctx context.Context, key string, svc *catalog.ServiceDefinition) error
	io.Closer
}

// CachedServiceRepository is a read-through decorator over
// catalog.ServiceRepository. Service definitions are looked up on every
// bill creation, so single-record reads go through the cache; List always
// hits the database because result sets depend on filters.
type CachedServiceRepository struct {
	source catalog.ServiceRepository
	cache  ServiceCache
	logger *zap.Logger
}

// NewCachedServiceRepository wraps a service repository with a cache
func NewCachedServiceRepository(source catalog.ServiceRepository, serviceCache ServiceCache, logger *zap.Logger) *CachedServiceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedServiceRepository{
		source: source,
		cache:  serviceCache,
		logger: logger,
	}
}

// NewServiceCache builds the cache backend from configuration, falling
// back to the in-memory cache when Redis is disabled or unreachable.
func NewServiceCache(redisCfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) ServiceCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !redisCfg.Enabled {
		logger.Info("redis disabled, using in-memory catalog cache",
			zap.Duration("ttl", ttl))
		return NewInMemoryServiceCache(ttl)
	}

	redisCache, err := NewRedisServiceCache(RedisConfig{
		Host:     redisCfg.Host,
		Port:     redisCfg.Port,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}, ttl)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory catalog cache",
			zap.Error(err))
		return NewInMemoryServiceCache(ttl)
	}

	logger.Info("using redis catalog cache",
		zap.String("host", redisCfg.Host),
		zap.Duration("ttl", ttl))
	return redisCache
}

// FindByID returns a service definition, serving from cache when possible.
// Cache failures degrade to a direct repository read.
func (r *CachedServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ServiceDefinition, error) {
	key := "id:" + id.String()

	cached, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	svc, err := r.source.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, svc); err != nil {
		r.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return svc, nil
}

// FindByCode returns a service definition by hospital and code, serving
// from cache when possible
func (r *CachedServiceRepository) FindByCode(ctx context.Context, hospitalID uuid.UUID, serviceCode string) (*catalog.ServiceDefinition, error) {
	key := "code:" + hospitalID.String() + ":" + serviceCode

	cached, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	svc, err := r.source.FindByCode(ctx, hospitalID, serviceCode)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, svc); err != nil {
		r.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return svc, nil
}

// List delegates straight to the source repository
func (r *CachedServiceRepository) List(ctx context.Context, filter catalog.ServiceFilter) (shared.Paginated[*catalog.ServiceDefinition], error) {
	return r.source.List(ctx, filter)
}

// Ensure CachedServiceRepository implements catalog.ServiceRepository
var _ catalog.ServiceRepository = (*CachedServiceRepository)(nil)
