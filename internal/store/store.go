// Package store is the record store adapter: a string-keyed map of JSON values.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys used by the application.
const (
	KeyInvoices         = "invoices"
	KeyExpenses         = "expenses"
	KeyCustomers        = "customers"
	KeyProducts         = "products"
	KeyTemplates        = "invoiceTemplates"
	KeyActiveTemplateID = "activeTemplateId"
	KeyCompany          = "companyDetails"
	KeyUser             = "user"
)

// Store persists JSON values by key. A missing key is reported as ok=false, not an error.
type Store interface {
	Get(ctx context.Context, key string) (value json.RawMessage, ok bool, err error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Remove(ctx context.Context, key string) error

	// SetMany writes all values atomically: either every key is updated or none is.
	SetMany(ctx context.Context, values map[string]json.RawMessage) error

	Close() error
}

// GetJSON decodes the value at key into v. It returns false if the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Batch collects encoded values for a single SetMany call.
type Batch struct {
	values map[string]json.RawMessage
	err    error
}

// NewBatch creates an empty batch
func NewBatch() *Batch {
	return &Batch{values: make(map[string]json.RawMessage)}
}

// Put encodes v under key. The first encoding error is kept and returned by Commit.
func (b *Batch) Put(key string, v any) *Batch {
	if b.err != nil {
		return b
	}
	raw, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("failed to encode %s: %w", key, err)
		return b
	}
	b.values[key] = raw
	return b
}

// Commit writes every value in the batch atomically
func (b *Batch) Commit(ctx context.Context, s Store) error {
	if b.err != nil {
		return b.err
	}
	if err := s.SetMany(ctx, b.values); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}
