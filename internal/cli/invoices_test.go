package cli

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/render"
)

func TestPreviewDocument(t *testing.T) {
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	doc := &render.Document{
		Accent:    color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF},
		Number:    "INV-0042",
		IssueDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		DueDate:   &due,
		Status:    domain.InvoiceStatusPending,
		Seller:    domain.Seller{Name: "Studio North"},
		Client:    domain.Party{Name: "Acme Ltd", Address: "1 Main St"},
		Lines: []render.Line{
			{Description: "Consulting", Quantity: 1.5, Unit: "hour", UnitPrice: 100, Amount: 150},
		},
		Totals:  domain.Totals{Subtotal: 150, TaxAmount: 7.5, TaxRatePercent: 5, Total: 157.5},
		Payment: &domain.BankDetails{IBAN: "GB00TEST"},
	}

	out := previewDocument(doc)
	for _, want := range []string{"INV-0042", "Studio North", "Acme Ltd", "1 Main St", "2024-02-01", "Consulting", "1.5", "VAT (5%)", "157.50", "GB00TEST"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected preview to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Notes") {
		t.Error("expected no notes section for an invoice without notes")
	}
}

func newEditCmd(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "edit"}
	addInvoiceEditFlags(cmd)
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("failed to set --%s: %v", name, err)
		}
	}
	return cmd
}

func TestInvoiceUpdateFromFlags(t *testing.T) {
	current := domain.Party{Name: "Acme Ltd", Address: "1 Main St", Email: "ap@acme.test"}

	update, err := invoiceUpdateFromFlags(newEditCmd(t, nil), current, current)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Number != nil || update.Client != nil || update.IssueDate != nil || update.DueDate != nil || update.ClearDueDate {
		t.Fatalf("expected an empty update without flags, got %+v", update)
	}

	update, err = invoiceUpdateFromFlags(newEditCmd(t, map[string]string{
		"client-address": "12 High St",
		"number":         "INV-2024-012",
		"due":            "2024-03-15",
	}), current, current)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Number == nil || *update.Number != "INV-2024-012" {
		t.Errorf("expected number change, got %v", update.Number)
	}
	if update.Client == nil || update.Client.Address != "12 High St" || update.Client.Name != "Acme Ltd" || update.Client.Email != "ap@acme.test" {
		t.Errorf("expected address merged into current client, got %+v", update.Client)
	}
	if update.DueDate == nil || update.DueDate.Day() != 15 || update.IssueDate != nil {
		t.Errorf("expected only the due date to change, got due=%v issue=%v", update.DueDate, update.IssueDate)
	}

	saved := domain.Party{CustomerID: "c-1", Name: "Initech"}
	update, err = invoiceUpdateFromFlags(newEditCmd(t, nil), current, saved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Client == nil || update.Client.CustomerID != "c-1" {
		t.Errorf("expected saved customer to replace the client, got %+v", update.Client)
	}

	update, err = invoiceUpdateFromFlags(newEditCmd(t, map[string]string{"no-due": "true"}), current, current)
	if err != nil || !update.ClearDueDate {
		t.Errorf("expected due date to be cleared, got %+v err=%v", update, err)
	}

	if _, err := invoiceUpdateFromFlags(newEditCmd(t, map[string]string{"no-due": "true", "due": "2024-03-15"}), current, current); err == nil {
		t.Error("expected --due with --no-due to be rejected")
	}
	if _, err := invoiceUpdateFromFlags(newEditCmd(t, map[string]string{"date": "soon"}), current, current); err == nil {
		t.Error("expected an invalid date to be rejected")
	}
}
