package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hms/backend/internal/domain/directory"
	"github.com/hms/backend/internal/domain/shared"
)

// GormPatientRepository implements directory.PatientRepository using GORM
type GormPatientRepository struct {
	db *gorm.DB
}

// NewGormPatientRepository creates a new GormPatientRepository
func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

// FindByID finds a patient reference record by its ID
func (r *GormPatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Patient, error) {
	var patient directory.Patient
	if err := r.db.WithContext(ctx).
		First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &patient, nil
}

// Exists checks whether a patient with the given ID exists
func (r *GormPatientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&directory.Patient{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormHospitalRepository implements directory.HospitalRepository using GORM
type GormHospitalRepository struct {
	db *gorm.DB
}

// NewGormHospitalRepository creates a new GormHospitalRepository
func NewGormHospitalRepository(db *gorm.DB) *GormHospitalRepository {
	return &GormHospitalRepository{db: db}
}

// FindByID finds a hospital reference record by its ID
func (r *GormHospitalRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Hospital, error) {
	var hospital directory.Hospital
	if err := r.db.WithContext(ctx).
		First(&hospital, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &hospital, nil
}

// Exists checks whether a hospital with the given ID exists
func (r *GormHospitalRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&directory.Hospital{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure implementations satisfy the directory interfaces
var (
	_ directory.PatientRepository  = (*GormPatientRepository)(nil)
	_ directory.HospitalRepository = (*GormHospitalRepository)(nil)
)
