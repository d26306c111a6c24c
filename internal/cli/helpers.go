package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
)

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// parseDate parses a date string in various formats
func parseDate(s string) (time.Time, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch s {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	default:
		t, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t, nil
	}
}

// optionalDate parses s unless it is empty
func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseItem parses "description;quantity;price[;unit]"
func parseItem(s string) (service.ItemInput, error) {
	parts := strings.Split(s, ";")
	if len(parts) < 3 || len(parts) > 4 {
		return service.ItemInput{}, fmt.Errorf("invalid item %q: expected description;quantity;price[;unit]", s)
	}

	qty, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return service.ItemInput{}, fmt.Errorf("invalid quantity in %q: %w", s, err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return service.ItemInput{}, fmt.Errorf("invalid price in %q: %w", s, err)
	}

	item := service.ItemInput{
		Description: strings.TrimSpace(parts[0]),
		Quantity:    qty,
		UnitPrice:   price,
	}
	if len(parts) == 4 {
		item.Unit = strings.TrimSpace(parts[3])
	}
	return item, nil
}

// resolveInvoice finds an invoice by id or number
func resolveInvoice(ctx context.Context, ref string) (*domain.Invoice, error) {
	inv, err := appInstance.InvoiceService.Resolve(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("invoice %q: %w", ref, err)
	}
	return inv, nil
}

func printTotals(t domain.Totals) {
	fmt.Printf("  Subtotal: $%.2f\n", t.Subtotal)
	fmt.Printf("  VAT (%s%%): $%.2f\n", strconv.FormatFloat(t.TaxRatePercent, 'f', -1, 64), t.TaxAmount)
	fmt.Printf("  Total: $%.2f\n", t.Total)
}

func formatDue(d *time.Time) string {
	if d == nil {
		return "-"
	}
	return d.Format("2006-01-02")
}
