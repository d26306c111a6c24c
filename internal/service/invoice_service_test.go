package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/store"
)

type testDeps struct {
	invoices  *repository.InvoiceRepo
	customers *repository.CustomerRepo
	products  *repository.ProductRepo
	company   *repository.CompanyRepo
	svc       *invoiceService
}

func newTestInvoiceService(t *testing.T) *testDeps {
	t.Helper()
	s := store.NewMemoryStore()
	d := &testDeps{
		invoices:  repository.NewInvoiceRepo(s),
		customers: repository.NewCustomerRepo(s),
		products:  repository.NewProductRepo(s),
		company:   repository.NewCompanyRepo(s),
	}
	svc := NewInvoiceService(d.invoices, d.customers, d.products, d.company, InvoiceSettings{
		NumberPrefix:   "INV",
		NumberWidth:    6,
		TaxRate:        decimal.NewFromFloat(0.05),
		DefaultDueDays: 30,
	}, nil)
	d.svc = svc.(*invoiceService)
	d.svc.now = func() time.Time { return time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC) }
	return d
}

func sampleInput() CreateInvoiceInput {
	return CreateInvoiceInput{
		Client: domain.Party{Name: "Globex", Email: "ap@globex.test"},
		Items: []ItemInput{
			{Description: "Design", Quantity: 2, UnitPrice: 100, Unit: "hour"},
			{Description: "Hosting", Quantity: 1, UnitPrice: 50, Unit: "month"},
		},
	}
}

func TestCreate_ComputesTotalsAndNumber(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)
	if err := d.company.Save(ctx, domain.CompanyProfile{Name: "ACME", TaxID: "100-200"}); err != nil {
		t.Fatalf("failed to save company: %v", err)
	}

	inv, err := d.svc.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv.Number != "INV-000001" {
		t.Errorf("expected INV-000001, got %s", inv.Number)
	}
	if inv.Subtotal != 250 || inv.TaxAmount != 12.5 || inv.Total != 262.5 {
		t.Errorf("expected 250/12.5/262.5, got %v/%v/%v", inv.Subtotal, inv.TaxAmount, inv.Total)
	}
	if inv.TaxRatePercent != 5 {
		t.Errorf("expected 5%% rate, got %v", inv.TaxRatePercent)
	}
	if inv.Status != domain.InvoiceStatusDraft {
		t.Errorf("expected draft, got %s", inv.Status)
	}
	if inv.Seller.Name != "ACME" || inv.Seller.TRN != "100-200" {
		t.Errorf("expected seller from company profile, got %+v", inv.Seller)
	}
	wantDue := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if inv.DueDate == nil || !inv.DueDate.Equal(wantDue) {
		t.Errorf("expected due date %v, got %v", wantDue, inv.DueDate)
	}
	if inv.Items[0].ID != 1 || inv.Items[1].ID != 2 {
		t.Errorf("expected item ids 1 and 2, got %d and %d", inv.Items[0].ID, inv.Items[1].ID)
	}

	second, err := d.svc.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Number != "INV-000002" {
		t.Errorf("expected INV-000002, got %s", second.Number)
	}
}

func TestCreate_AutoSavesReferenceData(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	first, err := d.svc.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := d.svc.Create(ctx, sampleInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	customers, _ := d.customers.List(ctx)
	if len(customers) != 1 {
		t.Fatalf("expected one saved customer, got %d", len(customers))
	}
	if first.Client.CustomerID != customers[0].ID {
		t.Errorf("expected invoice to reference saved customer")
	}

	products, _ := d.products.List(ctx)
	if len(products) != 2 {
		t.Fatalf("expected two saved products, got %d", len(products))
	}
	if first.Items[0].ProductID == "" {
		t.Errorf("expected item to be linked to a product")
	}
}

func TestCreate_FromCustomerID(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	c := &domain.Customer{ID: "c-1", Name: "Initech", Address: "4120 Freidrich Ln"}
	if err := d.customers.Create(ctx, c); err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}

	in := sampleInput()
	in.Client = domain.Party{}
	in.CustomerID = "c-1"
	inv, err := d.svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Client.Name != "Initech" || inv.Client.Address != "4120 Freidrich Ln" {
		t.Errorf("expected denormalized customer, got %+v", inv.Client)
	}

	in.CustomerID = "missing"
	if _, err := d.svc.Create(ctx, in); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown customer, got %v", err)
	}
}

func TestCreate_NumberOverride(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	in := sampleInput()
	in.Number = "INV-000100"
	if _, err := d.svc.Create(ctx, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next, err := d.svc.NextNumber(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != "INV-000101" {
		t.Errorf("expected manual number to advance the sequence, got %s", next)
	}

	if _, err := d.svc.Create(ctx, in); !errors.Is(err, repository.ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}
}

func TestCreate_RejectsInvalidItems(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	tests := []struct {
		name  string
		items []ItemInput
		field string
	}{
		{"zero price", []ItemInput{{Description: "x", Quantity: 1, UnitPrice: 0}}, "price"},
		{"negative quantity", []ItemInput{{Description: "x", Quantity: -1, UnitPrice: 5}}, "quantity"},
		{"no description", []ItemInput{{Quantity: 1, UnitPrice: 5}}, "description"},
		{"no items", nil, "items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			in.Items = tt.items
			_, err := d.svc.Create(ctx, in)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}

	customers, _ := d.customers.List(ctx)
	if len(customers) != 0 {
		t.Errorf("expected no customers saved for rejected invoices, got %d", len(customers))
	}
}

func TestCreate_RejectedInvoiceSavesNoReferenceData(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	existing := sampleInput()
	existing.Number = "INV-000100"
	if _, err := d.svc.Create(ctx, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issue := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	backwards := CreateInvoiceInput{
		Client:    domain.Party{Name: "Umbrella"},
		IssueDate: issue,
		DueDate:   &due,
		Items:     []ItemInput{{Description: "Audit", Quantity: 1, UnitPrice: 900}},
	}
	_, err := d.svc.Create(ctx, backwards)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "dueDate" {
		t.Fatalf("expected dueDate validation error, got %v", err)
	}

	taken := backwards
	taken.DueDate = nil
	taken.Number = "INV-000100"
	if _, err := d.svc.Create(ctx, taken); !errors.Is(err, repository.ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}

	customers, _ := d.customers.List(ctx)
	if len(customers) != 1 {
		t.Errorf("expected only the first invoice's customer, got %d", len(customers))
	}
	products, _ := d.products.List(ctx)
	if len(products) != 2 {
		t.Errorf("expected only the first invoice's products, got %d", len(products))
	}
}

type failingInvoiceRepo struct {
	repository.InvoiceRepository
	err error
}

func (f failingInvoiceRepo) Create(context.Context, *domain.Invoice) error { return f.err }

func TestCreate_RollsBackReferenceDataWhenInvoiceWriteFails(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	boom := errors.New("disk full")
	d.svc.invoiceRepo = failingInvoiceRepo{InvoiceRepository: d.invoices, err: boom}

	if _, err := d.svc.Create(ctx, sampleInput()); !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}

	customers, _ := d.customers.List(ctx)
	products, _ := d.products.List(ctx)
	if len(customers) != 0 || len(products) != 0 {
		t.Fatalf("expected reference data rolled back, got %d customers %d products", len(customers), len(products))
	}
}

func TestUpdate_EditsHeader(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	inv, err := d.svc.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := d.svc.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	number := "INV-2024-A"
	client := domain.Party{Name: "Initech", Address: "4120 Freidrich Ln"}
	issue := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)
	due := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	updated, err := d.svc.Update(ctx, inv.ID, InvoiceUpdate{Number: &number, Client: &client, IssueDate: &issue, DueDate: &due})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Number != number || updated.Client.Name != "Initech" {
		t.Errorf("expected header changes, got %s %s", updated.Number, updated.Client.Name)
	}
	if !updated.IssueDate.Equal(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected issue date truncated to the day, got %v", updated.IssueDate)
	}
	if updated.Total != inv.Total || len(updated.Items) != len(inv.Items) {
		t.Errorf("expected items and totals untouched")
	}

	stored, _ := d.svc.Resolve(ctx, number)
	if stored == nil || stored.ID != inv.ID {
		t.Fatalf("expected invoice to resolve by its new number")
	}

	// keeping its own number is not a conflict
	if _, err := d.svc.Update(ctx, inv.ID, InvoiceUpdate{Number: &number}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := d.svc.Update(ctx, other.ID, InvoiceUpdate{Number: &number}); !errors.Is(err, repository.ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}

	early := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = d.svc.Update(ctx, inv.ID, InvoiceUpdate{DueDate: &early})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "dueDate" {
		t.Fatalf("expected dueDate validation error, got %v", err)
	}
	stored, _ = d.svc.Get(ctx, inv.ID)
	if stored.DueDate == nil || !stored.DueDate.Equal(due) {
		t.Errorf("expected rejected update to leave due date %v, got %v", due, stored.DueDate)
	}

	cleared, err := d.svc.Update(ctx, inv.ID, InvoiceUpdate{ClearDueDate: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared.DueDate != nil {
		t.Errorf("expected due date cleared")
	}

	if _, err := d.svc.Update(ctx, "missing", InvoiceUpdate{Number: &number}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestItemEditing_RecomputesTotals(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	inv, err := d.svc.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inv, err = d.svc.AddItem(ctx, inv.ID, ItemInput{Description: "Support", Quantity: 3, UnitPrice: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Subtotal != 280 || inv.Total != 294 {
		t.Errorf("expected 280/294 after add, got %v/%v", inv.Subtotal, inv.Total)
	}
	if inv.Items[2].ID != 3 {
		t.Errorf("expected new item id 3, got %d", inv.Items[2].ID)
	}

	inv, err = d.svc.UpdateItem(ctx, inv.ID, 1, ItemInput{Description: "Design", Quantity: 1, UnitPrice: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Subtotal != 180 {
		t.Errorf("expected 180 after update, got %v", inv.Subtotal)
	}

	inv, err = d.svc.RemoveItem(ctx, inv.ID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Subtotal != 130 || inv.TaxAmount != 6.5 || inv.Total != 136.5 {
		t.Errorf("expected 130/6.5/136.5 after remove, got %v/%v/%v", inv.Subtotal, inv.TaxAmount, inv.Total)
	}

	// ids are never reused after removal
	inv, err = d.svc.AddItem(ctx, inv.ID, ItemInput{Description: "Extra", Quantity: 1, UnitPrice: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := inv.Items[len(inv.Items)-1].ID; got != 4 {
		t.Errorf("expected item id 4, got %d", got)
	}

	stored, _ := d.svc.Get(ctx, inv.ID)
	if stored.Total != inv.Total {
		t.Errorf("expected persisted totals %v, got %v", inv.Total, stored.Total)
	}

	if _, err := d.svc.RemoveItem(ctx, inv.ID, 99); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestSetStatus_Transitions(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	inv, err := d.svc.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := d.svc.SetStatus(ctx, inv.ID, domain.InvoiceStatusPaid, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := d.svc.SetStatus(ctx, inv.ID, domain.InvoiceStatusDraft, false); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	got, err := d.svc.SetStatus(ctx, inv.ID, domain.InvoiceStatusPending, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.InvoiceStatusPending {
		t.Errorf("expected forced pending, got %s", got.Status)
	}
}

func TestResolveListDelete(t *testing.T) {
	ctx := context.Background()
	d := newTestInvoiceService(t)

	inv, err := d.svc.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := sampleInput()
	other.Client = domain.Party{Name: "Initech"}
	if _, err := d.svc.Create(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byNumber, err := d.svc.Resolve(ctx, inv.Number)
	if err != nil || byNumber.ID != inv.ID {
		t.Fatalf("expected to resolve by number, got %v", err)
	}

	list, err := d.svc.List(ctx, InvoiceFilter{Client: "glob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != inv.ID {
		t.Fatalf("expected client filter to match one invoice, got %d", len(list))
	}

	if err := d.svc.Delete(ctx, inv.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := d.svc.Resolve(ctx, inv.Number); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	next, _ := d.svc.NextNumber(ctx)
	if next != "INV-000003" {
		t.Errorf("expected numbering to follow remaining invoices, got %s", next)
	}
}
