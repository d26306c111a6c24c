package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/store"
)

func newTestInvoice(id, number string) *domain.Invoice {
	inv := domain.NewInvoice(id, number, domain.Party{Name: "Globex"}, domain.Seller{Name: "ACME"},
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	inv.Items = []domain.LineItem{{ID: 1, Description: "Design", Quantity: 2, UnitPrice: 100}}
	return inv
}

func TestInvoiceRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepo(store.NewMemoryStore())

	if err := repo.Create(ctx, newTestInvoice("a", "INV-000001")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number != "INV-000001" {
		t.Errorf("expected number INV-000001, got %s", got.Number)
	}
	if len(got.Items) != 1 || got.Items[0].Description != "Design" {
		t.Errorf("expected items to round-trip, got %+v", got.Items)
	}

	byNumber, err := repo.GetByNumber(ctx, "INV-000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byNumber.ID != "a" {
		t.Errorf("expected id a, got %s", byNumber.ID)
	}
}

func TestInvoiceRepo_RejectsDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepo(store.NewMemoryStore())

	if err := repo.Create(ctx, newTestInvoice("a", "INV-000001")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := repo.Create(ctx, newTestInvoice("b", "INV-000001"))
	if !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}

	if err := repo.Create(ctx, newTestInvoice("b", "INV-000002")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	renamed := newTestInvoice("b", "INV-000001")
	if err := repo.Update(ctx, renamed); !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber on update, got %v", err)
	}
}

func TestInvoiceRepo_RejectsInvalid(t *testing.T) {
	repo := NewInvoiceRepo(store.NewMemoryStore())

	inv := newTestInvoice("a", "INV-000001")
	inv.Items = nil
	err := repo.Create(context.Background(), inv)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInvoiceRepo_DeleteRemovesAggregate(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepo(store.NewMemoryStore())

	for _, inv := range []*domain.Invoice{newTestInvoice("a", "INV-000001"), newTestInvoice("b", "INV-000002")} {
		if err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.GetByID(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 || all[0].ID != "b" {
		t.Fatalf("expected only invoice b to remain, got %d invoices", len(all))
	}
}

func TestInvoiceRepo_UpdateMissing(t *testing.T) {
	repo := NewInvoiceRepo(store.NewMemoryStore())

	err := repo.Update(context.Background(), newTestInvoice("missing", "INV-000009"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
