package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/billing"
)

// BillModel is the persistence model for the Bill aggregate root. Line
// items and the payment ledger are stored as JSONB columns on the bill
// row so a bill mutation commits as one atomic write.
type BillModel struct {
	AggregateModel
	BillNumber     string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	PatientID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	PatientName    string             `gorm:"type:varchar(200);not null"`
	HospitalID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	HospitalName   string             `gorm:"type:varchar(200);not null"`
	BillDate       time.Time          `gorm:"not null;index"`
	DueDate        time.Time          `gorm:"not null;index"`
	Items          billing.BillItems  `gorm:"type:jsonb;not null;default:'[]'"`
	Payments       billing.Payments   `gorm:"type:jsonb;not null;default:'[]'"`
	SubTotal       decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	BalanceAmount  decimal.Decimal    `gorm:"type:decimal(18,4);not null;index"`
	Status         billing.BillStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notes          string             `gorm:"type:text"`
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill aggregate
func (m *BillModel) ToDomain() *billing.Bill {
	bill := &billing.Bill{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BillNumber:        m.BillNumber,
		PatientID:         m.PatientID,
		PatientName:       m.PatientName,
		HospitalID:        m.HospitalID,
		HospitalName:      m.HospitalName,
		BillDate:          m.BillDate,
		DueDate:           m.DueDate,
		Items:             m.Items,
		Payments:          m.Payments,
		SubTotal:          m.SubTotal,
		DiscountAmount:    m.DiscountAmount,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		BalanceAmount:     m.BalanceAmount,
		Status:            m.Status,
		Notes:             m.Notes,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
	bill.RestoreState()
	return bill
}

// FromDomain populates the persistence model from a domain Bill aggregate
func (m *BillModel) FromDomain(bill *billing.Bill) {
	m.FromDomainAggregateRoot(bill.BaseAggregateRoot)
	m.BillNumber = bill.BillNumber
	m.PatientID = bill.PatientID
	m.PatientName = bill.PatientName
	m.HospitalID = bill.HospitalID
	m.HospitalName = bill.HospitalName
	m.BillDate = bill.BillDate
	m.DueDate = bill.DueDate
	m.Items = bill.Items
	m.Payments = bill.Payments
	m.SubTotal = bill.SubTotal
	m.DiscountAmount = bill.DiscountAmount
	m.TaxAmount = bill.TaxAmount
	m.TotalAmount = bill.TotalAmount
	m.PaidAmount = bill.PaidAmount
	m.BalanceAmount = bill.BalanceAmount
	m.Status = bill.Status
	m.Notes = bill.Notes
	m.PaidAt = bill.PaidAt
	m.CancelledAt = bill.CancelledAt
	m.CancelReason = bill.CancelReason
}

// BillModelFromDomain creates a new persistence model from a domain Bill
func BillModelFromDomain(bill *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(bill)
	return m
}
