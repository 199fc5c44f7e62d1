package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/backend/internal/domain/shared"
)

// ServiceFilter holds query options for listing catalog services
type ServiceFilter struct {
	shared.Filter
	HospitalID  *uuid.UUID
	ServiceType *ServiceType
	ActiveOnly  bool
}

// ServiceRepository provides read access to the hospital service catalog.
// The billing engine treats the catalog as an upstream collaborator: it
// never writes to it.
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceDefinition, error)
	FindByCode(ctx context.Context, hospitalID uuid.UUID, serviceCode string) (*ServiceDefinition, error)
	List(ctx context.Context, filter ServiceFilter) (shared.Paginated[*ServiceDefinition], error)
}
