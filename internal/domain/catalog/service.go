package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// ServiceType classifies a billable hospital service
type ServiceType string

const (
	ServiceTypeConsultation ServiceType = "CONSULTATION"
	ServiceTypeLabTest      ServiceType = "LAB_TEST"
	ServiceTypePharmacy     ServiceType = "PHARMACY"
	ServiceTypeProcedure    ServiceType = "PROCEDURE"
	ServiceTypeRoomCharges  ServiceType = "ROOM_CHARGES"
	ServiceTypeDiagnostic   ServiceType = "DIAGNOSTIC"
	ServiceTypeTherapy      ServiceType = "THERAPY"
	ServiceTypeOther        ServiceType = "OTHER"
)

// ValidServiceTypes lists all recognized service types
var ValidServiceTypes = []ServiceType{
	ServiceTypeConsultation,
	ServiceTypeLabTest,
	ServiceTypePharmacy,
	ServiceTypeProcedure,
	ServiceTypeRoomCharges,
	ServiceTypeDiagnostic,
	ServiceTypeTherapy,
	ServiceTypeOther,
}

// IsValid returns true if the service type is a recognized value
func (t ServiceType) IsValid() bool {
	for _, v := range ValidServiceTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ServiceDefinition is a billable service in the hospital's price list.
// It is the aggregate root for catalog operations. Unit price and tax
// percentage are the authoritative pricing inputs for bill line items.
type ServiceDefinition struct {
	shared.BaseAggregateRoot
	ServiceCode       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_service_hospital_code,priority:2"`
	ServiceName       string          `gorm:"type:varchar(200);not null"`
	ServiceType       ServiceType     `gorm:"type:varchar(30);not null"`
	Category          string          `gorm:"type:varchar(100)"`
	Description       string          `gorm:"type:text"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxPercentage     decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	IsActive          bool            `gorm:"not null;default:true"`
	HospitalID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_service_hospital_code,priority:1"`
}

// TableName returns the table name for GORM
func (ServiceDefinition) TableName() string {
	return "service_definitions"
}

// NewServiceDefinition creates a new catalog entry
func NewServiceDefinition(
	hospitalID uuid.UUID,
	serviceCode, serviceName string,
	serviceType ServiceType,
	unitPrice, taxPercentage decimal.Decimal,
) (*ServiceDefinition, error) {
	if err := validateServiceCode(serviceCode); err != nil {
		return nil, err
	}
	if err := validateServiceName(serviceName); err != nil {
		return nil, err
	}
	if !serviceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", "Unknown service type")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxPercentage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Tax percentage cannot be negative")
	}

	return &ServiceDefinition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ServiceCode:       strings.ToUpper(serviceCode),
		ServiceName:       serviceName,
		ServiceType:       serviceType,
		UnitPrice:         unitPrice,
		TaxPercentage:     taxPercentage,
		DiscountPercentage: decimal.Zero,
		IsActive:          true,
		HospitalID:        hospitalID,
	}, nil
}

// SetDiscount sets the default discount percentage for this service
func (s *ServiceDefinition) SetDiscount(discountPercentage decimal.Decimal) error {
	if discountPercentage.IsNegative() || discountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_PRICE", "Discount percentage must be between 0 and 100")
	}
	s.DiscountPercentage = discountPercentage
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Deactivate removes the service from the active price list
func (s *ServiceDefinition) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// UnitPriceMoney returns the unit price as a Money value object
func (s *ServiceDefinition) UnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyINR(s.UnitPrice)
}

func validateServiceCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Service code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Service code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Service code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateServiceName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Service name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Service name cannot exceed 200 characters")
	}
	return nil
}
