package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/andy/invoicedesk/internal/db"
)

func newTestSQLStore(t *testing.T) (*SQLStore, *db.DB) {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "invoicedesk.db"), "test-key")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.RunMigrations(); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	s := NewSQLStore(database)
	t.Cleanup(func() { s.Close() })
	return s, database
}

func TestSQLStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSQLStore(t)

	if _, ok, err := s.Get(ctx, KeyInvoices); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, KeyInvoices, json.RawMessage(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Set(ctx, KeyInvoices, json.RawMessage(`[{"id":"b"}]`)); err != nil {
		t.Fatalf("unexpected error on overwrite: %v", err)
	}
	got, ok, err := s.Get(ctx, KeyInvoices)
	if err != nil || !ok {
		t.Fatalf("expected stored value, got ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"id":"b"}]` {
		t.Errorf("expected latest value, got %s", got)
	}

	if err := s.Remove(ctx, KeyInvoices); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyInvoices); ok {
		t.Error("expected key removed")
	}
}

func TestSQLStore_SetManyWritesAllKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSQLStore(t)

	err := s.SetMany(ctx, map[string]json.RawMessage{
		KeyTemplates:        json.RawMessage(`[{"id":"classic"}]`),
		KeyActiveTemplateID: json.RawMessage(`"classic"`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for key, want := range map[string]string{KeyTemplates: `[{"id":"classic"}]`, KeyActiveTemplateID: `"classic"`} {
		got, ok, err := s.Get(ctx, key)
		if err != nil || !ok || string(got) != want {
			t.Errorf("%s: expected %s, got %s ok=%v err=%v", key, want, got, ok, err)
		}
	}
}

func TestSQLStore_SetManyRollsBack(t *testing.T) {
	ctx := context.Background()
	s, database := newTestSQLStore(t)

	if err := s.Set(ctx, KeyActiveTemplateID, json.RawMessage(`"classic"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// any write to this key aborts the statement, and with it the transaction
	_, err := database.Exec(`
		CREATE TRIGGER reject_poison BEFORE INSERT ON records
		WHEN NEW.key = 'poison'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	if err != nil {
		t.Fatalf("failed to create trigger: %v", err)
	}

	err = s.SetMany(ctx, map[string]json.RawMessage{
		KeyTemplates:        json.RawMessage(`[{"id":"mine"}]`),
		KeyActiveTemplateID: json.RawMessage(`"mine"`),
		"poison":            json.RawMessage(`{}`),
	})
	if err == nil {
		t.Fatal("expected SetMany to fail")
	}

	if _, ok, _ := s.Get(ctx, KeyTemplates); ok {
		t.Error("expected templates not to be written")
	}
	got, _, _ := s.Get(ctx, KeyActiveTemplateID)
	if string(got) != `"classic"` {
		t.Errorf("expected active id unchanged, got %s", got)
	}
}
