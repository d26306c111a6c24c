package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/store"
)

// collection stores a whole slice of records under one key.
// Every write replaces the full slice, so readers never see a partial update.
type collection[T any] struct {
	mu    sync.Mutex
	store store.Store
	key   string
	id    func(*T) string
}

func newCollection[T any](s store.Store, key string, id func(*T) string) *collection[T] {
	return &collection[T]{store: s, key: key, id: id}
}

func (c *collection[T]) load(ctx context.Context) ([]*T, error) {
	records := make([]*T, 0)
	if _, err := store.GetJSON(ctx, c.store, c.key, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *collection[T]) list(ctx context.Context) ([]*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *collection[T]) find(ctx context.Context, match func(*T) bool) (*T, error) {
	records, err := c.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if match(r) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", c.key, domain.ErrNotFound)
}

func (c *collection[T]) get(ctx context.Context, id string) (*T, error) {
	return c.find(ctx, func(r *T) bool { return c.id(r) == id })
}

// mutate loads the collection, applies fn and writes the result back
func (c *collection[T]) mutate(ctx context.Context, fn func([]*T) ([]*T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return store.SetJSON(ctx, c.store, c.key, updated)
}

func (c *collection[T]) create(ctx context.Context, record *T) error {
	return c.mutate(ctx, func(records []*T) ([]*T, error) {
		for _, r := range records {
			if c.id(r) == c.id(record) {
				return nil, fmt.Errorf("%s: duplicate id %s", c.key, c.id(record))
			}
		}
		return append(records, record), nil
	})
}

func (c *collection[T]) update(ctx context.Context, record *T) error {
	return c.mutate(ctx, func(records []*T) ([]*T, error) {
		for i, r := range records {
			if c.id(r) == c.id(record) {
				records[i] = record
				return records, nil
			}
		}
		return nil, fmt.Errorf("%s %s: %w", c.key, c.id(record), domain.ErrNotFound)
	})
}

func (c *collection[T]) delete(ctx context.Context, id string) error {
	return c.mutate(ctx, func(records []*T) ([]*T, error) {
		for i, r := range records {
			if c.id(r) == id {
				return append(records[:i], records[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%s %s: %w", c.key, id, domain.ErrNotFound)
	})
}
