package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/store"
)

func TestExpenseRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewExpenseRepo(store.NewMemoryStore())

	exp := &domain.Expense{
		ID:          "e1",
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount:      42.5,
		Category:    "Rent",
		Description: "January rent",
	}
	if err := repo.Create(ctx, exp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp.Amount = 50
	if err := repo.Update(ctx, exp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Amount != 50 {
		t.Errorf("expected amount 50, got %v", got.Amount)
	}

	if err := repo.Delete(ctx, "e1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, _ := repo.List(ctx)
	if len(all) != 0 {
		t.Fatalf("expected no expenses, got %d", len(all))
	}
}

func TestExpenseRepo_RejectsNonPositiveAmount(t *testing.T) {
	repo := NewExpenseRepo(store.NewMemoryStore())

	err := repo.Create(context.Background(), &domain.Expense{
		ID: "e1", Date: time.Now(), Amount: 0, Category: "Rent", Description: "x",
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "amount" {
		t.Fatalf("expected amount validation error, got %v", err)
	}
}

func TestCustomerRepo_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepo(store.NewMemoryStore())

	c := &domain.Customer{ID: "c1", Name: "Globex"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Create(ctx, c); err == nil {
		t.Fatalf("expected duplicate id to be rejected")
	}
}

func TestProductRepo_ListPreservesOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(store.NewMemoryStore())

	for _, name := range []string{"Design", "Hosting", "Support"} {
		if err := repo.Create(ctx, &domain.Product{ID: name, Name: name, Price: 10}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Design" || all[2].Name != "Support" {
		t.Fatalf("unexpected product order: %+v", all)
	}
}

func TestCompanyRepo_EmptyProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepo(store.NewMemoryStore())

	profile, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Name != "" {
		t.Fatalf("expected empty profile, got %+v", profile)
	}

	profile.Name = "ACME"
	profile.Bank.IBAN = "AE070331234567890123456"
	if err := repo.Save(ctx, profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "ACME" || got.Bank.IBAN != profile.Bank.IBAN {
		t.Fatalf("expected saved profile, got %+v", got)
	}
}
