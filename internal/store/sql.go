package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andy/invoicedesk/internal/db"
)

// SQLStore keeps records in the encrypted SQLite database.
type SQLStore struct {
	db *db.DB
}

// NewSQLStore creates a SQLStore over an opened and migrated database
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

func (s *SQLStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get record: %w", err)
	}
	return json.RawMessage(value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, upsertRecord, key, string(value), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set record: %w", err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove record: %w", err)
	}
	return nil
}

func (s *SQLStore) SetMany(ctx context.Context, values map[string]json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Format(time.RFC3339)
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, upsertRecord, key, string(value), now); err != nil {
			return fmt.Errorf("failed to set record %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

const upsertRecord = `
	INSERT INTO records (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`
