package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/andy/invoicedesk/internal/config"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
)

func TestNewWithConfig_MemoryStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory
	cfg.Invoice.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Log.Level = "error"

	a, err := NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	active, err := a.Templates.GetActive()
	if err != nil || active.ID != "classic" {
		t.Fatalf("expected seeded classic template, got %s err=%v", active.ID, err)
	}

	inv, err := a.InvoiceService.Create(ctx, service.CreateInvoiceInput{
		Client: domain.Party{Name: "Globex"},
		Items:  []service.ItemInput{{Description: "Design", Quantity: 2, UnitPrice: 100}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := a.Exporter.Export(ctx, inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pages < 1 || len(res.Data) == 0 {
		t.Fatalf("expected a PDF with pages, got %d pages", res.Pages)
	}
}

func TestNewWithConfig_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = "etcd"

	if _, err := NewWithConfig(context.Background(), cfg); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}
