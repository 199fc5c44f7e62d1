package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
)

var hundred = decimal.NewFromInt(100)

// BillItem is one priced service line within a bill. All derived amounts
// are computed once at pricing time and rounded half-up to two decimals
// at the line level; aggregation sums the rounded values.
type BillItem struct {
	ServiceID          uuid.UUID           `json:"service_id"`
	ServiceName        string              `json:"service_name"`
	ServiceType        catalog.ServiceType `json:"service_type"`
	Quantity           int64               `json:"quantity"`
	UnitPrice          decimal.Decimal     `json:"unit_price"`
	TaxPercentage      decimal.Decimal     `json:"tax_percentage"`
	DiscountPercentage decimal.Decimal     `json:"discount_percentage"`
	LineSubtotal       decimal.Decimal     `json:"line_subtotal"`
	DiscountAmount     decimal.Decimal     `json:"discount_amount"`
	TaxableAmount      decimal.Decimal     `json:"taxable_amount"`
	TaxAmount          decimal.Decimal     `json:"tax_amount"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
}

// NewBillItem prices a line item from catalog pricing inputs.
//
// The computation order is fixed: discount applies to the pre-tax line
// subtotal, tax applies to the discounted amount. Reversing the order
// changes the total.
func NewBillItem(
	serviceID uuid.UUID,
	serviceName string,
	serviceType catalog.ServiceType,
	unitPrice valueobject.Money,
	quantity int64,
	taxPercentage decimal.Decimal,
	discountPercentage decimal.Decimal,
) (BillItem, error) {
	if quantity < 1 {
		return BillItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return BillItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxPercentage.IsNegative() || taxPercentage.GreaterThan(hundred) {
		return BillItem{}, shared.NewDomainError("INVALID_RATE", "Tax percentage must be between 0 and 100")
	}
	if discountPercentage.IsNegative() || discountPercentage.GreaterThan(hundred) {
		return BillItem{}, shared.NewDomainError("INVALID_RATE", "Discount percentage must be between 0 and 100")
	}

	lineSubtotal := unitPrice.MultiplyByInt(quantity).RoundHalfUp()
	discountAmount := lineSubtotal.CalculatePercentage(discountPercentage).RoundHalfUp()
	taxableAmount := lineSubtotal.MustSubtract(discountAmount)
	taxAmount := taxableAmount.CalculatePercentage(taxPercentage).RoundHalfUp()
	totalAmount := taxableAmount.MustAdd(taxAmount)

	return BillItem{
		ServiceID:          serviceID,
		ServiceName:        serviceName,
		ServiceType:        serviceType,
		Quantity:           quantity,
		UnitPrice:          unitPrice.Amount(),
		TaxPercentage:      taxPercentage,
		DiscountPercentage: discountPercentage,
		LineSubtotal:       lineSubtotal.Amount(),
		DiscountAmount:     discountAmount.Amount(),
		TaxableAmount:      taxableAmount.Amount(),
		TaxAmount:          taxAmount.Amount(),
		TotalAmount:        totalAmount.Amount(),
	}, nil
}

// BillTotals holds the aggregated monetary fields of a bill
type BillTotals struct {
	SubTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// AggregateItems folds the item list into bill totals. It sums the
// already-rounded per-line values rather than re-rounding the sums, so
// repeated aggregation never drifts. Pure function; callers re-invoke it
// on every item change instead of trusting a cached total.
func AggregateItems(items []BillItem) BillTotals {
	totals := BillTotals{
		SubTotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		TotalAmount:    decimal.Zero,
	}
	for _, item := range items {
		totals.SubTotal = totals.SubTotal.Add(item.LineSubtotal)
		totals.DiscountAmount = totals.DiscountAmount.Add(item.DiscountAmount)
		totals.TaxAmount = totals.TaxAmount.Add(item.TaxAmount)
		totals.TotalAmount = totals.TotalAmount.Add(item.TotalAmount)
	}
	return totals
}
