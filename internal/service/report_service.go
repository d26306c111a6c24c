package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/repository"
)

// Dashboard summarizes invoices and expenses
type Dashboard struct {
	TotalInvoices int
	PaidCount     int
	UnpaidCount   int

	Revenue     float64 // paid invoice totals
	Outstanding float64 // draft and pending invoice totals

	ExpensesTotal     float64
	ExpensesThisMonth float64
	Net               float64 // revenue less all expenses

	Recent []*domain.Invoice // newest first
}

// ReportService provides aggregations for the dashboard
type ReportService interface {
	GetDashboard(ctx context.Context, recent int) (*Dashboard, error)
	GetOutstandingTotal(ctx context.Context) (float64, error)

	// GetRevenueByMonth sums paid invoices by issue month
	GetRevenueByMonth(ctx context.Context, year int) (map[time.Month]float64, error)
	GetExpensesByCategory(ctx context.Context, filter ExpenseFilter) (map[string]float64, error)
}

type reportService struct {
	invoiceRepo repository.InvoiceRepository
	expenseRepo repository.ExpenseRepository
	now         func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	invoiceRepo repository.InvoiceRepository,
	expenseRepo repository.ExpenseRepository,
) ReportService {
	return &reportService{
		invoiceRepo: invoiceRepo,
		expenseRepo: expenseRepo,
		now:         time.Now,
	}
}

func (s *reportService) GetDashboard(ctx context.Context, recent int) (*Dashboard, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{TotalInvoices: len(invoices)}
	revenue, outstanding := decimal.Zero, decimal.Zero
	for _, inv := range invoices {
		total := decimal.NewFromFloat(inv.Total)
		if inv.Status == domain.InvoiceStatusPaid {
			d.PaidCount++
			revenue = revenue.Add(total)
		} else {
			outstanding = outstanding.Add(total)
		}
	}
	d.UnpaidCount = d.TotalInvoices - d.PaidCount

	now := s.now()
	spent, thisMonth := decimal.Zero, decimal.Zero
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		spent = spent.Add(amount)
		if e.Date.Year() == now.Year() && e.Date.Month() == now.Month() {
			thisMonth = thisMonth.Add(amount)
		}
	}

	d.Revenue = revenue.Round(2).InexactFloat64()
	d.Outstanding = outstanding.Round(2).InexactFloat64()
	d.ExpensesTotal = spent.Round(2).InexactFloat64()
	d.ExpensesThisMonth = thisMonth.Round(2).InexactFloat64()
	d.Net = revenue.Sub(spent).Round(2).InexactFloat64()

	sorted := make([]*domain.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if recent >= 0 && len(sorted) > recent {
		sorted = sorted[:recent]
	}
	d.Recent = sorted

	return d, nil
}

func (s *reportService) GetOutstandingTotal(ctx context.Context) (float64, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status != domain.InvoiceStatusPaid {
			total = total.Add(decimal.NewFromFloat(inv.Total))
		}
	}
	return total.Round(2).InexactFloat64(), nil
}

func (s *reportService) GetRevenueByMonth(ctx context.Context, year int) (map[time.Month]float64, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	sums := make(map[time.Month]decimal.Decimal)
	for _, inv := range invoices {
		if inv.Status != domain.InvoiceStatusPaid || inv.IssueDate.Year() != year {
			continue
		}
		m := inv.IssueDate.Month()
		sums[m] = sums[m].Add(decimal.NewFromFloat(inv.Total))
	}

	revenue := make(map[time.Month]float64)
	for m := time.January; m <= time.December; m++ {
		revenue[m] = sums[m].Round(2).InexactFloat64()
	}
	return revenue, nil
}

func (s *reportService) GetExpensesByCategory(ctx context.Context, filter ExpenseFilter) (map[string]float64, error) {
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if filter.matches(e) {
			sums[e.Category] = sums[e.Category].Add(decimal.NewFromFloat(e.Amount))
		}
	}

	out := make(map[string]float64, len(sums))
	for c, v := range sums {
		out[c] = v.Round(2).InexactFloat64()
	}
	return out, nil
}
