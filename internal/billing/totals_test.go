package billing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/shopspring/decimal"
)

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func TestCalculate_RoundTrip(t *testing.T) {
	items := []domain.LineItem{
		{ID: 1, Description: "Widget", Quantity: 2, UnitPrice: 100},
		{ID: 2, Description: "Gadget", Quantity: 1, UnitPrice: 50},
	}

	got := Calculate(items, DefaultTaxRate)

	if got.Subtotal != 250 {
		t.Fatalf("expected subtotal 250.00, got %v", got.Subtotal)
	}
	if got.TaxAmount != 12.5 {
		t.Fatalf("expected tax 12.50, got %v", got.TaxAmount)
	}
	if got.Total != 262.5 {
		t.Fatalf("expected total 262.50, got %v", got.Total)
	}
	if got.TaxRatePercent != 5 {
		t.Fatalf("expected tax rate 5%%, got %v", got.TaxRatePercent)
	}
}

func TestCalculate_Empty(t *testing.T) {
	got := Calculate(nil, DefaultTaxRate)
	if got.Subtotal != 0 || got.TaxAmount != 0 || got.Total != 0 {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestCalculate_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		name      string
		items     []domain.LineItem
		wantSub   int64
		wantTax   int64
		wantTotal int64
	}{
		{
			name:      "tax of half a cent rounds up",
			items:     []domain.LineItem{{ID: 1, Description: "a", Quantity: 1, UnitPrice: 0.10}},
			wantSub:   10,
			wantTax:   1,
			wantTotal: 11,
		},
		{
			name:      "float noise in the sum is absorbed",
			items:     []domain.LineItem{{ID: 1, Description: "a", Quantity: 1, UnitPrice: 0.1}, {ID: 2, Description: "b", Quantity: 1, UnitPrice: 0.2}},
			wantSub:   30,
			wantTax:   2,
			wantTotal: 32,
		},
		{
			name:      "fractional quantity",
			items:     []domain.LineItem{{ID: 1, Description: "hours", Quantity: 1.5, UnitPrice: 33.33}},
			wantSub:   5000, // 49.995 -> 50.00
			wantTax:   250,
			wantTotal: 5250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.items, DefaultTaxRate)
			if cents(got.Subtotal) != tt.wantSub {
				t.Errorf("subtotal = %v, want %d cents", got.Subtotal, tt.wantSub)
			}
			if cents(got.TaxAmount) != tt.wantTax {
				t.Errorf("tax = %v, want %d cents", got.TaxAmount, tt.wantTax)
			}
			if cents(got.Total) != tt.wantTotal {
				t.Errorf("total = %v, want %d cents", got.Total, tt.wantTotal)
			}
		})
	}
}

func TestCalculate_TotalIsSubtotalPlusTax(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rate := decimal.NewFromFloat(0.05)

	for run := 0; run < 500; run++ {
		n := 1 + rng.Intn(8)
		items := make([]domain.LineItem, n)
		var wantSubCents int64
		for i := range items {
			qty := int64(1 + rng.Intn(20))
			priceCents := int64(1 + rng.Intn(100000))
			items[i] = domain.LineItem{
				ID:          i + 1,
				Description: "item",
				Quantity:    float64(qty),
				UnitPrice:   float64(priceCents) / 100,
			}
			wantSubCents += qty * priceCents
		}

		got := Calculate(items, rate)

		if cents(got.Subtotal) != wantSubCents {
			t.Fatalf("run %d: subtotal = %v, want %d cents", run, got.Subtotal, wantSubCents)
		}
		if cents(got.Subtotal)+cents(got.TaxAmount) != cents(got.Total) {
			t.Fatalf("run %d: %v + %v != %v", run, got.Subtotal, got.TaxAmount, got.Total)
		}
		wantTax := decimal.New(wantSubCents, -2).Mul(rate).Round(2)
		if cents(got.TaxAmount) != wantTax.Shift(2).IntPart() {
			t.Fatalf("run %d: tax = %v, want %s", run, got.TaxAmount, wantTax)
		}
	}
}

func TestSum(t *testing.T) {
	if got := Sum([]float64{0.1, 0.2}); got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}
	if got := Sum(nil); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
