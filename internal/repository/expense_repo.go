package repository

import (
	"context"
	"fmt"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/store"
)

// ExpenseRepo keeps expenses as one collection in the record store
type ExpenseRepo struct {
	expenses *collection[domain.Expense]
}

// NewExpenseRepo creates a new ExpenseRepo
func NewExpenseRepo(s store.Store) *ExpenseRepo {
	return &ExpenseRepo{
		expenses: newCollection(s, store.KeyExpenses, func(e *domain.Expense) string { return e.ID }),
	}
}

func (r *ExpenseRepo) Create(ctx context.Context, expense *domain.Expense) error {
	if err := expense.Validate(); err != nil {
		return fmt.Errorf("invalid expense: %w", err)
	}
	return r.expenses.create(ctx, expense)
}

func (r *ExpenseRepo) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	return r.expenses.get(ctx, id)
}

func (r *ExpenseRepo) List(ctx context.Context) ([]*domain.Expense, error) {
	return r.expenses.list(ctx)
}

func (r *ExpenseRepo) Update(ctx context.Context, expense *domain.Expense) error {
	if err := expense.Validate(); err != nil {
		return fmt.Errorf("invalid expense: %w", err)
	}
	return r.expenses.update(ctx, expense)
}

func (r *ExpenseRepo) Delete(ctx context.Context, id string) error {
	return r.expenses.delete(ctx, id)
}
