package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/billing"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/repository"
)

// ExpenseInput holds the editable expense fields
type ExpenseInput struct {
	Date          time.Time
	Amount        float64
	Category      string
	Description   string
	Notes         string
	PaymentMethod string
	Receipt       string
}

// ExpenseFilter narrows List and Total. Zero values match everything.
type ExpenseFilter struct {
	Search   string // case-insensitive match on description or category
	Category string
	From     *time.Time // inclusive
	To       *time.Time // inclusive, whole day
}

// ExpenseService manages expense records
type ExpenseService interface {
	Create(ctx context.Context, in ExpenseInput) (*domain.Expense, error)
	Update(ctx context.Context, id string, in ExpenseInput) (*domain.Expense, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Expense, error)

	// List returns matching expenses, newest first
	List(ctx context.Context, filter ExpenseFilter) ([]*domain.Expense, error)
	Total(ctx context.Context, filter ExpenseFilter) (float64, error)

	// Categories returns the distinct categories in use, sorted
	Categories(ctx context.Context) ([]string, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenseRepo repository.ExpenseRepository, logger *zap.Logger) ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &expenseService{expenseRepo: expenseRepo, logger: logger, now: time.Now}
}

func (s *expenseService) Create(ctx context.Context, in ExpenseInput) (*domain.Expense, error) {
	e := &domain.Expense{ID: uuid.NewString(), CreatedAt: s.now()}
	in.applyTo(e)

	if err := s.expenseRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	s.logger.Info("expense created", zap.String("id", e.ID), zap.Float64("amount", e.Amount), zap.String("category", e.Category))
	return e, nil
}

func (s *expenseService) Update(ctx context.Context, id string, in ExpenseInput) (*domain.Expense, error) {
	e, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(e)

	if err := s.expenseRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return e, nil
}

func (s *expenseService) Delete(ctx context.Context, id string) error {
	return s.expenseRepo.Delete(ctx, id)
}

func (s *expenseService) Get(ctx context.Context, id string) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(ctx, id)
}

func (s *expenseService) List(ctx context.Context, filter ExpenseFilter) ([]*domain.Expense, error) {
	all, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	out := make([]*domain.Expense, 0, len(all))
	for _, e := range all {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *expenseService) Total(ctx context.Context, filter ExpenseFilter) (float64, error) {
	expenses, err := s.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	amounts := make([]float64, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.Amount
	}
	return billing.Sum(amounts), nil
}

func (s *expenseService) Categories(ctx context.Context) ([]string, error) {
	all, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	seen := make(map[string]bool)
	var out []string
	for _, e := range all {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (in ExpenseInput) applyTo(e *domain.Expense) {
	e.Date = in.Date
	e.Amount = in.Amount
	e.Category = strings.TrimSpace(in.Category)
	e.Description = strings.TrimSpace(in.Description)
	e.Notes = in.Notes
	e.PaymentMethod = in.PaymentMethod
	e.Receipt = in.Receipt
}

func (f ExpenseFilter) matches(e *domain.Expense) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(e.Description), term) &&
			!strings.Contains(strings.ToLower(e.Category), term) {
			return false
		}
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.Date.Before(truncateDay(*f.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}
