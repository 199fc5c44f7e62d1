package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus represents the lifecycle status of a bill
type BillStatus string

const (
	BillStatusPending       BillStatus = "PENDING"
	BillStatusPartiallyPaid BillStatus = "PARTIALLY_PAID"
	BillStatusPaid          BillStatus = "PAID"
	BillStatusOverdue       BillStatus = "OVERDUE"
	BillStatusCancelled     BillStatus = "CANCELLED"
)

// IsValid returns true if the status is a recognized value
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPartiallyPaid, BillStatusPaid,
		BillStatusOverdue, BillStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if no further payments are accepted in this status
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusPaid || s == BillStatusCancelled
}

// CanBeCancelled returns true if an administrative cancellation is allowed
// from this status. A paid bill cannot be cancelled; refunds are handled
// outside this engine.
func (s BillStatus) CanBeCancelled() bool {
	switch s {
	case BillStatusPending, BillStatusPartiallyPaid, BillStatusOverdue:
		return true
	}
	return false
}

// ResolveStatus derives the bill status from the current balance, total,
// due date and cancellation flag. Status is never assigned from anywhere
// else; every mutation re-derives it through this function.
//
// Cancellation wins over everything. A zero balance means PAID regardless
// of the due date. An open balance past the due date is OVERDUE whether or
// not partial payments were recorded.
func ResolveStatus(balance, total decimal.Decimal, dueDate, now time.Time, cancelled bool) BillStatus {
	switch {
	case cancelled:
		return BillStatusCancelled
	case balance.IsZero():
		return BillStatusPaid
	case now.After(dueDate):
		return BillStatusOverdue
	case balance.LessThan(total):
		return BillStatusPartiallyPaid
	default:
		return BillStatusPending
	}
}
