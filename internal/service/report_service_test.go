package service

import (
	"context"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/store"
)

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	invoices := repository.NewInvoiceRepo(s)
	expenses := repository.NewExpenseRepo(s)

	mk := func(id, number string, status domain.InvoiceStatus, total float64, created time.Time) {
		inv := domain.NewInvoice(id, number, domain.Party{Name: "Globex"}, domain.Seller{}, day(2024, 3, 1))
		inv.Items = []domain.LineItem{{ID: 1, Description: "Work", Quantity: 1, UnitPrice: total}}
		inv.Total = total
		inv.Status = status
		inv.CreatedAt = created
		if err := invoices.Create(ctx, inv); err != nil {
			t.Fatalf("failed to create invoice: %v", err)
		}
	}
	mk("a", "INV-000001", domain.InvoiceStatusPaid, 100.10, day(2024, 3, 1))
	mk("b", "INV-000002", domain.InvoiceStatusPaid, 200.20, day(2024, 3, 2))
	mk("c", "INV-000003", domain.InvoiceStatusPending, 50, day(2024, 3, 3))

	for _, e := range []*domain.Expense{
		{ID: "e1", Date: day(2024, 3, 10), Amount: 30, Category: "Rent", Description: "desk"},
		{ID: "e2", Date: day(2024, 2, 10), Amount: 20, Category: "Rent", Description: "desk"},
	} {
		if err := expenses.Create(ctx, e); err != nil {
			t.Fatalf("failed to create expense: %v", err)
		}
	}

	svc := NewReportService(invoices, expenses).(*reportService)
	svc.now = func() time.Time { return day(2024, 3, 15) }

	d, err := svc.GetDashboard(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TotalInvoices != 3 || d.PaidCount != 2 || d.UnpaidCount != 1 {
		t.Errorf("unexpected counts %d/%d/%d", d.TotalInvoices, d.PaidCount, d.UnpaidCount)
	}
	if d.Revenue != 300.3 || d.Outstanding != 50 {
		t.Errorf("expected revenue 300.3 and outstanding 50, got %v and %v", d.Revenue, d.Outstanding)
	}
	if d.ExpensesTotal != 50 || d.ExpensesThisMonth != 30 || d.Net != 250.3 {
		t.Errorf("unexpected expense figures %v/%v/%v", d.ExpensesTotal, d.ExpensesThisMonth, d.Net)
	}
	if len(d.Recent) != 2 || d.Recent[0].ID != "c" {
		t.Errorf("expected 2 recent invoices newest first, got %d", len(d.Recent))
	}

	byMonth, err := svc.GetRevenueByMonth(ctx, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byMonth[time.March] != 300.3 || byMonth[time.January] != 0 {
		t.Errorf("unexpected monthly revenue %v", byMonth)
	}

	byCategory, err := svc.GetExpensesByCategory(ctx, ExpenseFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byCategory["Rent"] != 50 {
		t.Errorf("expected 50 on rent, got %v", byCategory["Rent"])
	}
}
