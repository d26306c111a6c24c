package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedExpenses(t *testing.T, svc ExpenseService) {
	t.Helper()
	inputs := []ExpenseInput{
		{Date: day(2024, 1, 5), Amount: 1200, Category: "Rent", Description: "January office rent"},
		{Date: day(2024, 1, 20), Amount: 45.10, Category: "Software", Description: "Design tool subscription"},
		{Date: day(2024, 2, 2), Amount: 0.20, Category: "Software", Description: "API usage"},
		{Date: day(2024, 2, 14), Amount: 80, Category: "Client dinners", Description: "Dinner with Globex"},
	}
	for _, in := range inputs {
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("failed to seed expense: %v", err)
		}
	}
}

func TestExpenseService_FiltersAndTotal(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(repository.NewExpenseRepo(store.NewMemoryStore()), nil)
	seedExpenses(t, svc)

	all, err := svc.List(ctx, ExpenseFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 || !all[0].Date.Equal(day(2024, 2, 14)) {
		t.Fatalf("expected 4 expenses newest first, got %d", len(all))
	}

	software, _ := svc.List(ctx, ExpenseFilter{Category: "Software"})
	if len(software) != 2 {
		t.Errorf("expected 2 software expenses, got %d", len(software))
	}

	from, to := day(2024, 1, 20), day(2024, 2, 2)
	ranged, _ := svc.List(ctx, ExpenseFilter{From: &from, To: &to})
	if len(ranged) != 2 {
		t.Errorf("expected inclusive date range to match 2 expenses, got %d", len(ranged))
	}

	searched, _ := svc.List(ctx, ExpenseFilter{Search: "GLOBEX"})
	if len(searched) != 1 {
		t.Errorf("expected search to match 1 expense, got %d", len(searched))
	}

	total, err := svc.Total(ctx, ExpenseFilter{Category: "Software"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 45.3 {
		t.Errorf("expected exact cent total 45.3, got %v", total)
	}
}

func TestExpenseService_Categories(t *testing.T) {
	svc := NewExpenseService(repository.NewExpenseRepo(store.NewMemoryStore()), nil)
	seedExpenses(t, svc)

	cats, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Client dinners", "Rent", "Software"}
	if len(cats) != len(want) {
		t.Fatalf("expected %v, got %v", want, cats)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("expected %v, got %v", want, cats)
		}
	}
}

func TestExpenseService_UpdateValidates(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(repository.NewExpenseRepo(store.NewMemoryStore()), nil)

	e, err := svc.Create(ctx, ExpenseInput{Date: day(2024, 1, 1), Amount: 10, Category: "Travel", Description: "Taxi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Update(ctx, e.ID, ExpenseInput{Date: day(2024, 1, 1), Amount: -5, Category: "Travel", Description: "Taxi"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	updated, err := svc.Update(ctx, e.ID, ExpenseInput{Date: day(2024, 1, 2), Amount: 12, Category: "Travel", Description: "Taxi home"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Amount != 12 || updated.Description != "Taxi home" {
		t.Errorf("unexpected update result %+v", updated)
	}

	if err := svc.Delete(ctx, e.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
