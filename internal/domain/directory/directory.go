package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/backend/internal/domain/shared"
)

// Patient is the reference record billing needs about a patient.
// Registration and clinical data live in other systems.
type Patient struct {
	shared.BaseEntity
	FullName   string    `gorm:"type:varchar(200);not null"`
	Phone      string    `gorm:"type:varchar(20)"`
	Email      string    `gorm:"type:varchar(200)"`
	HospitalID uuid.UUID `gorm:"type:uuid;not null;index"`
	IsActive   bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Patient) TableName() string {
	return "patients"
}

// Hospital is the reference record for a billing facility
type Hospital struct {
	shared.BaseEntity
	Name     string `gorm:"type:varchar(200);not null"`
	Address  string `gorm:"type:text"`
	Phone    string `gorm:"type:varchar(20)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Hospital) TableName() string {
	return "hospitals"
}

// PatientRepository provides read access to patient reference records
type PatientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// HospitalRepository provides read access to hospital reference records
type HospitalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
