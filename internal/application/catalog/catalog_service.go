package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/shared"
)

// CatalogService exposes read-only access to the service catalog.
// Catalog management lives in a separate system; billing only needs
// lookups for pricing and for the browse endpoints.
type CatalogService struct {
	serviceRepo catalog.ServiceRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(serviceRepo catalog.ServiceRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// GetService returns a single service definition by ID
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*catalog.ServiceDefinition, error) {
	svc, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// GetServiceByCode returns a single service definition by hospital and code
func (s *CatalogService) GetServiceByCode(ctx context.Context, hospitalID uuid.UUID, serviceCode string) (*catalog.ServiceDefinition, error) {
	svc, err := s.serviceRepo.FindByCode(ctx, hospitalID, serviceCode)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// ListServices returns service definitions matching the filter
func (s *CatalogService) ListServices(ctx context.Context, filter catalog.ServiceFilter) (shared.Paginated[*catalog.ServiceDefinition], error) {
	return s.serviceRepo.List(ctx, filter)
}
