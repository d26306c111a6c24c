package repository

import (
	"context"

	"github.com/andy/invoicedesk/internal/domain"
)

// InvoiceRepository manages invoice persistence
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	List(ctx context.Context) ([]*domain.Invoice, error)
	Update(ctx context.Context, invoice *domain.Invoice) error
	// Delete removes the invoice together with its items
	Delete(ctx context.Context, id string) error
}

// ExpenseRepository manages expense persistence
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	List(ctx context.Context) ([]*domain.Expense, error)
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
}

// CustomerRepository manages customer reference data
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository manages product reference data
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// CompanyRepository manages the single company profile
type CompanyRepository interface {
	Get(ctx context.Context) (domain.CompanyProfile, error)
	Save(ctx context.Context, profile domain.CompanyProfile) error
}
