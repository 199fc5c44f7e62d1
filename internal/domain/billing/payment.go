package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodInsurance    PaymentMethod = "INSURANCE"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid returns true if the payment method is a recognized value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodInsurance, PaymentMethodUPI, PaymentMethodBankTransfer,
		PaymentMethodOther:
		return true
	}
	return false
}

// RequiresReference returns true if payments with this method must carry
// an external transaction reference. Only cash is exempt.
func (m PaymentMethod) RequiresReference() bool {
	return m != PaymentMethodCash
}

// Payment is one ledger entry recorded against a bill. Entries are
// append-only: corrections are compensating entries, never edits.
type Payment struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      PaymentMethod   `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// IsDuplicateOf reports whether this payment is a duplicate submission of
// an already-recorded entry: same non-empty reference, same amount and
// same payment date. Guards against client retries on flaky networks.
func (p Payment) IsDuplicateOf(existing Payment) bool {
	return p.Reference != "" &&
		p.Reference == existing.Reference &&
		p.Amount.Equal(existing.Amount) &&
		p.PaymentDate.Equal(existing.PaymentDate)
}
