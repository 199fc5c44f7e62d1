package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

// Bill aggregates priced service line items and the payment ledger for
// one patient encounter. It is the aggregate root: every mutation goes
// through its methods, re-derives the totals and the status, and bumps
// the version for optimistic concurrency.
type Bill struct {
	shared.BaseAggregateRoot
	BillNumber     string
	PatientID      uuid.UUID
	PatientName    string
	HospitalID     uuid.UUID
	HospitalName   string
	BillDate       time.Time
	DueDate        time.Time
	Items          BillItems
	Payments       Payments
	SubTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	BalanceAmount  decimal.Decimal
	Status         BillStatus
	Notes          string
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CancelReason   string
	cancelled      bool
}

// NewBill creates a bill from already-priced line items. The bill number
// is assigned by the caller (repositories generate it). Status starts at
// PENDING; the ledger starts empty with the full total outstanding.
func NewBill(
	billNumber string,
	patientID uuid.UUID,
	patientName string,
	hospitalID uuid.UUID,
	hospitalName string,
	billDate, dueDate time.Time,
	items []BillItem,
	notes string,
) (*Bill, error) {
	if billNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bill number cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_BILL", "Bill must contain at least one line item")
	}
	if !dueDate.After(billDate) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Due date must be after bill date")
	}

	totals := AggregateItems(items)

	bill := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        billNumber,
		PatientID:         patientID,
		PatientName:       patientName,
		HospitalID:        hospitalID,
		HospitalName:      hospitalName,
		BillDate:          billDate,
		DueDate:           dueDate,
		Items:             BillItems(items),
		Payments:          make(Payments, 0),
		SubTotal:          totals.SubTotal,
		DiscountAmount:    totals.DiscountAmount,
		TaxAmount:         totals.TaxAmount,
		TotalAmount:       totals.TotalAmount,
		PaidAmount:        decimal.Zero,
		BalanceAmount:     totals.TotalAmount,
		Status:            BillStatusPending,
		Notes:             notes,
	}

	bill.AddDomainEvent(NewBillCreatedEvent(bill))

	return bill, nil
}

// recalculateTotals re-derives every aggregated field from the item list
// and the payment ledger. Stored totals are never trusted across
// mutations.
func (b *Bill) recalculateTotals() {
	totals := AggregateItems(b.Items)
	b.SubTotal = totals.SubTotal
	b.DiscountAmount = totals.DiscountAmount
	b.TaxAmount = totals.TaxAmount
	b.TotalAmount = totals.TotalAmount

	paid := decimal.Zero
	for _, p := range b.Payments {
		paid = paid.Add(p.Amount)
	}
	b.PaidAmount = paid
	b.BalanceAmount = b.TotalAmount.Sub(paid)
}

// ApplyPayment validates and appends a payment to the ledger, then
// recomputes the balance and re-resolves the status as of now.
//
// A duplicate submission (same non-empty reference, amount and payment
// date as a recorded entry) is accepted silently without a second ledger
// entry or a version bump, so client retries are harmless. The duplicate
// scan runs before the settled-bill guard: a retry of the payment that
// settled the bill must succeed, not bounce off the PAID status it
// produced. Cancelled bills reject everything, duplicates included.
func (b *Bill) ApplyPayment(
	amount valueobject.Money,
	paymentDate time.Time,
	method PaymentMethod,
	reference, notes string,
	now time.Time,
) error {
	if b.cancelled {
		return shared.NewDomainError("BILL_CLOSED", "No payments accepted on a cancelled bill")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unknown payment method")
	}
	if method.RequiresReference() && reference == "" {
		return shared.NewDomainError("MISSING_REFERENCE", "Reference is required for non-cash payments")
	}

	candidate := Payment{
		Amount:      amount.Amount(),
		PaymentDate: paymentDate,
		Reference:   reference,
	}
	for _, existing := range b.Payments {
		if candidate.IsDuplicateOf(existing) {
			return nil
		}
	}

	if b.Status.IsTerminal() {
		return shared.NewDomainError("BILL_CLOSED", "No payments accepted on a paid or cancelled bill")
	}
	if amount.Amount().GreaterThan(b.BalanceAmount) {
		return shared.NewDomainError("OVERPAYMENT", "Payment amount exceeds outstanding balance")
	}

	payment := Payment{
		ID:          uuid.New(),
		Amount:      amount.Amount(),
		PaymentDate: paymentDate,
		Method:      method,
		Reference:   reference,
		Notes:       notes,
		RecordedAt:  now,
	}
	b.Payments = append(b.Payments, payment)
	b.recalculateTotals()

	b.Status = ResolveStatus(b.BalanceAmount, b.TotalAmount, b.DueDate, now, b.cancelled)
	if b.Status == BillStatusPaid && b.PaidAt == nil {
		paidAt := now
		b.PaidAt = &paidAt
		b.AddDomainEvent(NewBillPaidEvent(b))
	}

	b.UpdatedAt = now
	b.IncrementVersion()
	b.AddDomainEvent(NewPaymentRecordedEvent(b, payment))

	return nil
}

// Cancel performs the administrative cancellation override. Allowed only
// from PENDING, PARTIALLY_PAID or OVERDUE; a paid bill cannot be
// cancelled through this path.
func (b *Bill) Cancel(reason string, now time.Time) error {
	if !b.Status.CanBeCancelled() {
		return shared.NewDomainError("INVALID_TRANSITION", "Bill cannot be cancelled from status "+string(b.Status))
	}

	b.cancelled = true
	cancelledAt := now
	b.CancelledAt = &cancelledAt
	b.CancelReason = reason
	b.Status = ResolveStatus(b.BalanceAmount, b.TotalAmount, b.DueDate, now, b.cancelled)
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewBillCancelledEvent(b, reason))

	return nil
}

// RefreshStatus re-resolves the status as of now and reports whether it
// changed. Used for lazy OVERDUE detection on reads; it does not bump the
// version, so a pure read never produces a write conflict.
func (b *Bill) RefreshStatus(now time.Time) bool {
	resolved := ResolveStatus(b.BalanceAmount, b.TotalAmount, b.DueDate, now, b.cancelled)
	if resolved == b.Status {
		return false
	}

	b.Status = resolved
	if resolved == BillStatusOverdue {
		b.AddDomainEvent(NewBillOverdueEvent(b))
	}
	return true
}

// IsCancelled returns true if the bill has been cancelled
func (b *Bill) IsCancelled() bool {
	return b.cancelled
}

// IsOverdue returns true if the bill has an open balance past its due date
func (b *Bill) IsOverdue(now time.Time) bool {
	return !b.cancelled && b.BalanceAmount.IsPositive() && now.After(b.DueDate)
}

// RestoreState rehydrates persistence-only state after loading from
// storage. The cancelled flag is derived rather than stored separately.
func (b *Bill) RestoreState() {
	b.cancelled = b.Status == BillStatusCancelled
}
