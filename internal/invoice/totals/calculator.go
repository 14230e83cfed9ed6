// Package totals computes the monetary breakdown of an invoice.
package totals

import (
	"fmt"

	"github.com/guidebooker/invoice-service/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Compute derives the totals summary for the given line items and
// invoice-level adjustments.
//
// This function is PURE:
// - No side effects
// - No I/O
// - Fully deterministic
//
// The transport layer has already checked field presence; value ranges are
// re-validated here so the calculator stays safe on its own boundary.
// Arithmetic is exact decimal throughout; rounding is deferred to display
// formatting.
func Compute(items []domain.LineItem, discount, taxRate decimal.Decimal) (domain.TotalsSummary, error) {
	if len(items) == 0 {
		return domain.TotalsSummary{}, &domain.InvalidAmountError{
			Field:  "items",
			Value:  "[]",
			Reason: "at least one line item is required",
		}
	}
	if discount.IsNegative() {
		return domain.TotalsSummary{}, &domain.InvalidAmountError{
			Field:  "discount",
			Value:  discount.String(),
			Reason: "discount must not be negative",
		}
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return domain.TotalsSummary{}, &domain.InvalidAmountError{
			Field:  "tax_rate",
			Value:  taxRate.String(),
			Reason: "tax rate must be between 0 and 100",
		}
	}

	subtotal := decimal.Zero
	for i, item := range items {
		if item.Quantity <= 0 {
			return domain.TotalsSummary{}, &domain.InvalidAmountError{
				Field:  fmt.Sprintf("items[%d].quantity", i),
				Value:  fmt.Sprintf("%d", item.Quantity),
				Reason: "quantity must be a positive integer",
			}
		}
		if item.UnitPrice.IsNegative() {
			return domain.TotalsSummary{}, &domain.InvalidAmountError{
				Field:  fmt.Sprintf("items[%d].unit_price", i),
				Value:  item.UnitPrice.String(),
				Reason: "unit price must not be negative",
			}
		}
		subtotal = subtotal.Add(item.Total())
	}

	// A discount larger than the subtotal floors the taxable base at zero
	// instead of driving the invoice negative.
	discountAmount := discount
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	taxableBase := subtotal.Sub(discountAmount)
	taxAmount := taxableBase.Mul(taxRate).Div(hundred)

	return domain.TotalsSummary{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxableBase:    taxableBase,
		TaxAmount:      taxAmount,
		GrandTotal:     taxableBase.Add(taxAmount),
	}, nil
}
