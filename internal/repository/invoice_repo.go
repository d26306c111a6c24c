package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/store"
)

// InvoiceRepo keeps all invoices as one collection in the record store
type InvoiceRepo struct {
	invoices *collection[domain.Invoice]
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(s store.Store) *InvoiceRepo {
	return &InvoiceRepo{
		invoices: newCollection(s, store.KeyInvoices, func(i *domain.Invoice) string { return i.ID }),
	}
}

// Create appends a new invoice. Invoice numbers must be unique.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	return r.invoices.mutate(ctx, func(all []*domain.Invoice) ([]*domain.Invoice, error) {
		for _, existing := range all {
			if existing.ID == invoice.ID {
				return nil, fmt.Errorf("invoice %s already exists", invoice.ID)
			}
			if existing.Number == invoice.Number {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateNumber, invoice.Number)
			}
		}
		return append(all, invoice), nil
	})
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.invoices.get(ctx, id)
}

// GetByNumber retrieves an invoice by invoice number
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.invoices.find(ctx, func(i *domain.Invoice) bool { return i.Number == number })
}

// List returns invoices in creation order
func (r *InvoiceRepo) List(ctx context.Context) ([]*domain.Invoice, error) {
	return r.invoices.list(ctx)
}

// Update replaces an existing invoice
func (r *InvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}
	invoice.UpdatedAt = time.Now()

	return r.invoices.mutate(ctx, func(all []*domain.Invoice) ([]*domain.Invoice, error) {
		idx := -1
		for i, existing := range all {
			if existing.ID == invoice.ID {
				idx = i
				continue
			}
			if existing.Number == invoice.Number {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateNumber, invoice.Number)
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("invoice %s: %w", invoice.ID, domain.ErrNotFound)
		}
		all[idx] = invoice
		return all, nil
	})
}

// Delete removes an invoice and its items
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	return r.invoices.delete(ctx, id)
}
