// Package billing holds the pure invoice arithmetic: totals and numbering.
package billing

import (
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the single fixed VAT rate (5%).
var DefaultTaxRate = decimal.NewFromFloat(0.05)

var hundred = decimal.NewFromInt(100)

// Calculate derives invoice totals from items at the given tax rate.
//
// Rounding order: the subtotal is summed exactly and rounded half-up to cents,
// tax is computed from the rounded subtotal and rounded half-up to cents, and
// the total is the sum of the two rounded values. Total therefore always equals
// Subtotal+TaxAmount to the cent.
//
// Items are assumed validated; negative inputs are not checked here.
func Calculate(items []domain.LineItem, rate decimal.Decimal) domain.Totals {
	sum := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitPrice))
		sum = sum.Add(line)
	}

	subtotal := sum.Round(2)
	tax := subtotal.Mul(rate).Round(2)
	total := subtotal.Add(tax)

	return domain.Totals{
		Subtotal:       subtotal.InexactFloat64(),
		TaxAmount:      tax.InexactFloat64(),
		TaxRatePercent: rate.Mul(hundred).Round(2).InexactFloat64(),
		Total:          total.InexactFloat64(),
	}
}

// LineAmount returns quantity*price rounded to cents, for display
func LineAmount(item domain.LineItem) float64 {
	return decimal.NewFromFloat(item.Quantity).
		Mul(decimal.NewFromFloat(item.UnitPrice)).
		Round(2).
		InexactFloat64()
}

// Recalculate replaces inv's totals with values derived from its items
func Recalculate(inv *domain.Invoice, rate decimal.Decimal) {
	inv.Totals = Calculate(inv.Items, rate)
}

// Sum adds amounts exactly and rounds the result to cents
func Sum(amounts []float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}
