package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func inr(amount string) valueobject.Money {
	return valueobject.NewMoneyINR(decimal.RequireFromString(amount))
}

func newTestBill(t *testing.T, dueDate time.Time) *Bill {
	t.Helper()
	item := mustItem(t, "500", 1, "18", "0")
	bill, err := NewBill(
		"BILL-20260315-00001",
		uuid.New(), "Asha Rao",
		uuid.New(), "City General",
		testNow.Add(-48*time.Hour), dueDate,
		[]BillItem{item},
		"",
	)
	require.NoError(t, err)
	return bill
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestNewBill(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))

	assert.Equal(t, BillStatusPending, bill.Status)
	assert.Equal(t, "590.00", bill.TotalAmount.StringFixed(2))
	assert.Equal(t, "590.00", bill.BalanceAmount.StringFixed(2))
	assert.True(t, bill.PaidAmount.IsZero())
	assert.Equal(t, 1, bill.Version)
	require.Len(t, bill.GetDomainEvents(), 1)
	assert.Equal(t, EventBillCreated, bill.GetDomainEvents()[0].EventType())
}

func TestNewBill_Validation(t *testing.T) {
	item := mustItem(t, "500", 1, "18", "0")
	billDate := testNow
	patientID, hospitalID := uuid.New(), uuid.New()

	_, err := NewBill("BILL-20260315-00001", patientID, "P", hospitalID, "H", billDate, billDate.Add(24*time.Hour), nil, "")
	assertDomainCode(t, err, "EMPTY_BILL")

	_, err = NewBill("BILL-20260315-00001", patientID, "P", hospitalID, "H", billDate, billDate, []BillItem{item}, "")
	assertDomainCode(t, err, "INVALID_INPUT")

	_, err = NewBill("", patientID, "P", hospitalID, "H", billDate, billDate.Add(24*time.Hour), []BillItem{item}, "")
	assertDomainCode(t, err, "INVALID_INPUT")
}

func TestBill_ApplyPayment_FullSettlement(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))

	require.NoError(t, bill.ApplyPayment(inr("300.00"), testNow, PaymentMethodCash, "", "", testNow))
	assert.Equal(t, BillStatusPartiallyPaid, bill.Status)
	assert.Equal(t, "290.00", bill.BalanceAmount.StringFixed(2))
	assert.Equal(t, 2, bill.Version)

	require.NoError(t, bill.ApplyPayment(inr("290.00"), testNow, PaymentMethodUPI, "UPI-777", "", testNow))
	assert.Equal(t, BillStatusPaid, bill.Status)
	assert.Equal(t, "590.00", bill.PaidAmount.StringFixed(2))
	assert.True(t, bill.BalanceAmount.IsZero())
	assert.Equal(t, 3, bill.Version)
	require.NotNil(t, bill.PaidAt)
	assert.Len(t, bill.Payments, 2)
}

func TestBill_ApplyPayment_Overpayment(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))

	err := bill.ApplyPayment(inr("590.01"), testNow, PaymentMethodCash, "", "", testNow)
	assertDomainCode(t, err, "OVERPAYMENT")

	// balance untouched, no ledger entry, no version bump
	assert.Equal(t, "590.00", bill.BalanceAmount.StringFixed(2))
	assert.Empty(t, bill.Payments)
	assert.Equal(t, 1, bill.Version)
}

func TestBill_ApplyPayment_ExactBalanceBoundary(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))

	require.NoError(t, bill.ApplyPayment(inr("590.00"), testNow, PaymentMethodCash, "", "", testNow))
	assert.Equal(t, BillStatusPaid, bill.Status)
}

func TestBill_ApplyPayment_ClosedBill(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))
	require.NoError(t, bill.Cancel("duplicate entry", testNow))

	err := bill.ApplyPayment(inr("100.00"), testNow, PaymentMethodCash, "", "", testNow)
	assertDomainCode(t, err, "BILL_CLOSED")

	paid := newTestBill(t, testNow.Add(24*time.Hour))
	require.NoError(t, paid.ApplyPayment(inr("590.00"), testNow, PaymentMethodCash, "", "", testNow))
	err = paid.ApplyPayment(inr("1.00"), testNow, PaymentMethodCash, "", "", testNow)
	assertDomainCode(t, err, "BILL_CLOSED")
}

func TestBill_ApplyPayment_Validation(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))

	err := bill.ApplyPayment(inr("0"), testNow, PaymentMethodCash, "", "", testNow)
	assertDomainCode(t, err, "INVALID_AMOUNT")

	err = bill.ApplyPayment(inr("-5"), testNow, PaymentMethodCash, "", "", testNow)
	assertDomainCode(t, err, "INVALID_AMOUNT")

	err = bill.ApplyPayment(inr("100"), testNow, PaymentMethodCreditCard, "", "", testNow)
	assertDomainCode(t, err, "MISSING_REFERENCE")

	err = bill.ApplyPayment(inr("100"), testNow, PaymentMethod("CHEQUE"), "", "", testNow)
	assertDomainCode(t, err, "INVALID_INPUT")

	// cash needs no reference
	require.NoError(t, bill.ApplyPayment(inr("100"), testNow, PaymentMethodCash, "", "", testNow))
}

func TestBill_ApplyPayment_DuplicateSubmission(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))
	amount := inr("300.00")

	require.NoError(t, bill.ApplyPayment(amount, testNow, PaymentMethodUPI, "UPI-123", "", testNow))
	versionAfterFirst := bill.Version

	// identical retry is swallowed without a second ledger entry
	require.NoError(t, bill.ApplyPayment(amount, testNow, PaymentMethodUPI, "UPI-123", "", testNow))
	assert.Len(t, bill.Payments, 1)
	assert.Equal(t, "290.00", bill.BalanceAmount.StringFixed(2))
	assert.Equal(t, versionAfterFirst, bill.Version)

	// same reference with a different amount is a new payment
	require.NoError(t, bill.ApplyPayment(inr("100.00"), testNow, PaymentMethodUPI, "UPI-123", "", testNow))
	assert.Len(t, bill.Payments, 2)
}

func TestBill_ApplyPayment_DuplicateAfterSettlement(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))
	amount := inr("590.00")

	require.NoError(t, bill.ApplyPayment(amount, testNow, PaymentMethodUPI, "UPI-1", "", testNow))
	require.Equal(t, BillStatusPaid, bill.Status)
	versionAfterSettlement := bill.Version

	// a retry of the settling payment lands on a PAID bill and must
	// still be accepted idempotently, not bounced as closed
	require.NoError(t, bill.ApplyPayment(amount, testNow, PaymentMethodUPI, "UPI-1", "", testNow))
	assert.Len(t, bill.Payments, 1)
	assert.Equal(t, BillStatusPaid, bill.Status)
	assert.True(t, bill.BalanceAmount.IsZero())
	assert.Equal(t, versionAfterSettlement, bill.Version)

	// a genuinely new payment on the settled bill still bounces
	err := bill.ApplyPayment(inr("1.00"), testNow, PaymentMethodCash, "", "", testNow)
	assertDomainCode(t, err, "BILL_CLOSED")

	// cancellation rejects even exact duplicates
	cancelled := newTestBill(t, testNow.Add(24*time.Hour))
	require.NoError(t, cancelled.ApplyPayment(inr("100.00"), testNow, PaymentMethodUPI, "UPI-2", "", testNow))
	require.NoError(t, cancelled.Cancel("entered in error", testNow))
	err = cancelled.ApplyPayment(inr("100.00"), testNow, PaymentMethodUPI, "UPI-2", "", testNow)
	assertDomainCode(t, err, "BILL_CLOSED")
}

func TestBill_Cancel(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))

	require.NoError(t, bill.Cancel("entered in error", testNow))
	assert.Equal(t, BillStatusCancelled, bill.Status)
	assert.True(t, bill.IsCancelled())
	require.NotNil(t, bill.CancelledAt)
	assert.Equal(t, "entered in error", bill.CancelReason)

	// already cancelled
	err := bill.Cancel("again", testNow)
	assertDomainCode(t, err, "INVALID_TRANSITION")
}

func TestBill_Cancel_PaidBillRejected(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))
	require.NoError(t, bill.ApplyPayment(inr("590.00"), testNow, PaymentMethodCash, "", "", testNow))

	err := bill.Cancel("refund requested", testNow)
	assertDomainCode(t, err, "INVALID_TRANSITION")
	assert.Equal(t, BillStatusPaid, bill.Status)
}

func TestBill_Cancel_FromPartiallyPaidAndOverdue(t *testing.T) {
	partial := newTestBill(t, testNow.Add(24*time.Hour))
	require.NoError(t, partial.ApplyPayment(inr("100.00"), testNow, PaymentMethodCash, "", "", testNow))
	require.NoError(t, partial.Cancel("", testNow))

	overdue := newTestBill(t, testNow.Add(-24*time.Hour))
	require.True(t, overdue.RefreshStatus(testNow))
	require.Equal(t, BillStatusOverdue, overdue.Status)
	require.NoError(t, overdue.Cancel("", testNow))
}

func TestBill_RefreshStatus_LazyOverdue(t *testing.T) {
	bill := newTestBill(t, testNow.Add(-24*time.Hour))
	require.Equal(t, BillStatusPending, bill.Status)
	versionBefore := bill.Version
	bill.ClearDomainEvents()

	changed := bill.RefreshStatus(testNow)
	assert.True(t, changed)
	assert.Equal(t, BillStatusOverdue, bill.Status)
	// refresh is a read-side concern, never a version bump
	assert.Equal(t, versionBefore, bill.Version)
	require.Len(t, bill.GetDomainEvents(), 1)
	assert.Equal(t, EventBillOverdue, bill.GetDomainEvents()[0].EventType())

	assert.False(t, bill.RefreshStatus(testNow))
}

func TestBill_PaymentOnOverdueBill(t *testing.T) {
	bill := newTestBill(t, testNow.Add(-24*time.Hour))
	bill.RefreshStatus(testNow)
	require.Equal(t, BillStatusOverdue, bill.Status)

	// overdue bills still accept payments; settling one makes it PAID
	require.NoError(t, bill.ApplyPayment(inr("590.00"), testNow, PaymentMethodCash, "", "", testNow))
	assert.Equal(t, BillStatusPaid, bill.Status)
}

func TestBill_RestoreState(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))
	require.NoError(t, bill.Cancel("", testNow))

	rehydrated := &Bill{Status: bill.Status}
	rehydrated.RestoreState()
	assert.True(t, rehydrated.IsCancelled())
}

func TestBill_InvariantsAfterMutations(t *testing.T) {
	bill := newTestBill(t, testNow.Add(24*time.Hour))
	payments := []string{"100.00", "250.00", "240.00"}

	for _, amt := range payments {
		require.NoError(t, bill.ApplyPayment(inr(amt), testNow, PaymentMethodCash, "", "", testNow))

		derived := bill.SubTotal.Sub(bill.DiscountAmount).Add(bill.TaxAmount)
		assert.True(t, bill.TotalAmount.Equal(derived))
		assert.False(t, bill.BalanceAmount.IsNegative())

		ledger := decimal.Zero
		for _, p := range bill.Payments {
			ledger = ledger.Add(p.Amount)
		}
		assert.True(t, bill.PaidAmount.Equal(ledger))
	}

	assert.Equal(t, BillStatusPaid, bill.Status)
}
