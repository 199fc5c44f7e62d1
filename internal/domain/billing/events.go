package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
)

// Event type constants
const (
	EventBillCreated     = "billing.bill.created"
	EventPaymentRecorded = "billing.payment.recorded"
	EventBillPaid        = "billing.bill.paid"
	EventBillCancelled   = "billing.bill.cancelled"
	EventBillOverdue     = "billing.bill.overdue"
)

const aggregateTypeBill = "Bill"

// BillCreatedEvent is raised when a new bill is created
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	BillNumber  string          `json:"bill_number"`
	PatientID   uuid.UUID       `json:"patient_id"`
	HospitalID  uuid.UUID       `json:"hospital_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DueDate     time.Time       `json:"due_date"`
}

// NewBillCreatedEvent creates a new bill created event
func NewBillCreatedEvent(bill *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBillCreated, aggregateTypeBill, bill.ID),
		BillNumber:      bill.BillNumber,
		PatientID:       bill.PatientID,
		HospitalID:      bill.HospitalID,
		TotalAmount:     bill.TotalAmount,
		DueDate:         bill.DueDate,
	}
}

// PaymentRecordedEvent is raised when a payment is appended to the ledger
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	BillNumber    string          `json:"bill_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Status        BillStatus      `json:"status"`
}

// NewPaymentRecordedEvent creates a new payment recorded event
func NewPaymentRecordedEvent(bill *Bill, payment Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentRecorded, aggregateTypeBill, bill.ID),
		BillNumber:      bill.BillNumber,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		Method:          payment.Method,
		BalanceAmount:   bill.BalanceAmount,
		Status:          bill.Status,
	}
}

// BillPaidEvent is raised when the outstanding balance reaches zero
type BillPaidEvent struct {
	shared.BaseDomainEvent
	BillNumber  string          `json:"bill_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewBillPaidEvent creates a new bill paid event
func NewBillPaidEvent(bill *Bill) *BillPaidEvent {
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBillPaid, aggregateTypeBill, bill.ID),
		BillNumber:      bill.BillNumber,
		TotalAmount:     bill.TotalAmount,
	}
}

// BillCancelledEvent is raised on administrative cancellation
type BillCancelledEvent struct {
	shared.BaseDomainEvent
	BillNumber string `json:"bill_number"`
	Reason     string `json:"reason"`
}

// NewBillCancelledEvent creates a new bill cancelled event
func NewBillCancelledEvent(bill *Bill, reason string) *BillCancelledEvent {
	return &BillCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBillCancelled, aggregateTypeBill, bill.ID),
		BillNumber:      bill.BillNumber,
		Reason:          reason,
	}
}

// BillOverdueEvent is raised when a bill is first resolved as overdue
type BillOverdueEvent struct {
	shared.BaseDomainEvent
	BillNumber    string          `json:"bill_number"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	DueDate       time.Time       `json:"due_date"`
}

// NewBillOverdueEvent creates a new bill overdue event
func NewBillOverdueEvent(bill *Bill) *BillOverdueEvent {
	return &BillOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBillOverdue, aggregateTypeBill, bill.ID),
		BillNumber:      bill.BillNumber,
		BalanceAmount:   bill.BalanceAmount,
		DueDate:         bill.DueDate,
	}
}
