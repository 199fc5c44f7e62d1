package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/shared"
)

// GormServiceRepository implements catalog.ServiceRepository using GORM.
// The catalog is read-only to this system; management writes happen
// elsewhere.
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID finds a service definition by its ID
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ServiceDefinition, error) {
	var svc catalog.ServiceDefinition
	if err := r.db.WithContext(ctx).
		First(&svc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// FindByCode finds a service definition by its code within a hospital
func (r *GormServiceRepository) FindByCode(ctx context.Context, hospitalID uuid.UUID, serviceCode string) (*catalog.ServiceDefinition, error) {
	var svc catalog.ServiceDefinition
	if err := r.db.WithContext(ctx).
		Where("hospital_id = ? AND service_code = ?", hospitalID, serviceCode).
		First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// List returns service definitions matching the filter with pagination
func (r *GormServiceRepository) List(ctx context.Context, filter catalog.ServiceFilter) (shared.Paginated[*catalog.ServiceDefinition], error) {
	var count int64
	if err := r.applyServiceFilter(r.db.WithContext(ctx).Model(&catalog.ServiceDefinition{}), filter).
		Count(&count).Error; err != nil {
		return shared.Paginated[*catalog.ServiceDefinition]{}, err
	}

	var services []*catalog.ServiceDefinition
	query := r.applyServiceFilter(r.db.WithContext(ctx).Model(&catalog.ServiceDefinition{}), filter)
	query = applyPagination(query, filter.Filter, ServiceSortFields)
	if err := query.Find(&services).Error; err != nil {
		return shared.Paginated[*catalog.ServiceDefinition]{}, err
	}

	return shared.NewPaginated(services, count, filter.Page, filter.PageSize), nil
}

func (r *GormServiceRepository) applyServiceFilter(query *gorm.DB, filter catalog.ServiceFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("service_code ILIKE ? OR service_name ILIKE ?", pattern, pattern)
	}
	if filter.HospitalID != nil {
		query = query.Where("hospital_id = ?", *filter.HospitalID)
	}
	if filter.ServiceType != nil {
		query = query.Where("service_type = ?", *filter.ServiceType)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

// Ensure GormServiceRepository implements catalog.ServiceRepository
var _ catalog.ServiceRepository = (*GormServiceRepository)(nil)
