package repository

import (
	"context"
	"fmt"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/store"
)

// CustomerRepo stores customers in the record store
type CustomerRepo struct {
	customers *collection[domain.Customer]
}

// NewCustomerRepo creates a new CustomerRepo
func NewCustomerRepo(s store.Store) *CustomerRepo {
	return &CustomerRepo{
		customers: newCollection(s, store.KeyCustomers, func(c *domain.Customer) string { return c.ID }),
	}
}

func (r *CustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	if err := customer.Validate(); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}
	return r.customers.create(ctx, customer)
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.customers.get(ctx, id)
}

func (r *CustomerRepo) List(ctx context.Context) ([]*domain.Customer, error) {
	return r.customers.list(ctx)
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	return r.customers.delete(ctx, id)
}

// ProductRepo stores products in the record store
type ProductRepo struct {
	products *collection[domain.Product]
}

// NewProductRepo creates a new ProductRepo
func NewProductRepo(s store.Store) *ProductRepo {
	return &ProductRepo{
		products: newCollection(s, store.KeyProducts, func(p *domain.Product) string { return p.ID }),
	}
}

func (r *ProductRepo) Create(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	return r.products.create(ctx, product)
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.products.get(ctx, id)
}

func (r *ProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	return r.products.list(ctx)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.products.delete(ctx, id)
}

// CompanyRepo stores the company profile under a single key
type CompanyRepo struct {
	store store.Store
}

// NewCompanyRepo creates a new CompanyRepo
func NewCompanyRepo(s store.Store) *CompanyRepo {
	return &CompanyRepo{store: s}
}

// Get returns the saved profile, or an empty profile if none was saved yet
func (r *CompanyRepo) Get(ctx context.Context) (domain.CompanyProfile, error) {
	var profile domain.CompanyProfile
	if _, err := store.GetJSON(ctx, r.store, store.KeyCompany, &profile); err != nil {
		return domain.CompanyProfile{}, err
	}
	return profile, nil
}

func (r *CompanyRepo) Save(ctx context.Context, profile domain.CompanyProfile) error {
	return store.SetJSON(ctx, r.store, store.KeyCompany, profile)
}
