package render

import (
	"image/color"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
)

func testInvoice() *domain.Invoice {
	inv := domain.NewInvoice("id-1", "INV-000001",
		domain.Party{Name: "Globex", Address: "1 Main St"},
		domain.Seller{Name: "ACME", Logo: "logo.png", Signature: "sig.png",
			Bank: domain.BankDetails{BankName: "First Bank", IBAN: "AE07"}},
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	inv.Items = []domain.LineItem{
		{ID: 1, Description: "Design", Quantity: 2, UnitPrice: 100},
		{ID: 2, Description: "Hosting", Quantity: 1, UnitPrice: 50},
	}
	inv.Notes = "Thanks!"
	return inv
}

func TestRender_SectionsFollowFlags(t *testing.T) {
	r := NewRenderer()
	inv := testInvoice()

	all := domain.Template{ID: "modern", Settings: domain.TemplateSettings{
		PrimaryColor: "#0EA5E9", FontFamily: "Poppins, sans-serif",
		ShowLogo: true, ShowPaymentDetails: true, ShowSignature: true, FooterText: "Payment due within 30 days",
	}}
	doc := r.Render(inv, all)
	if !doc.ShowLogo() || !doc.ShowSignature() || !doc.ShowPayment() {
		t.Fatalf("expected every section, got logo=%v sig=%v pay=%v", doc.ShowLogo(), doc.ShowSignature(), doc.ShowPayment())
	}
	if doc.Typeface != "Poppins" {
		t.Errorf("expected typeface Poppins, got %s", doc.Typeface)
	}
	if doc.Accent != (color.RGBA{R: 0x0E, G: 0xA5, B: 0xE9, A: 0xFF}) {
		t.Errorf("unexpected accent %v", doc.Accent)
	}
	if len(doc.Lines) != 2 || doc.Lines[0].Amount != 200 {
		t.Errorf("expected line amounts, got %+v", doc.Lines)
	}

	none := all
	none.Settings.ShowLogo = false
	none.Settings.ShowPaymentDetails = false
	none.Settings.ShowSignature = false
	doc = r.Render(inv, none)
	if doc.ShowLogo() || doc.ShowSignature() || doc.ShowPayment() {
		t.Fatal("expected disabled sections to be hidden")
	}
	if doc.Notes != "Thanks!" {
		t.Errorf("expected notes to be kept, got %q", doc.Notes)
	}
}

func TestRender_MissingDataOmitsSection(t *testing.T) {
	inv := testInvoice()
	inv.Seller.Logo = ""
	inv.Seller.Signature = " "
	inv.Seller.Bank = domain.BankDetails{}
	inv.Notes = ""

	tmpl := domain.Template{Settings: domain.TemplateSettings{ShowLogo: true, ShowPaymentDetails: true, ShowSignature: true}}
	doc := NewRenderer().Render(inv, tmpl)

	if doc.ShowLogo() || doc.ShowSignature() || doc.ShowPayment() || doc.Notes != "" {
		t.Fatalf("expected sections without data to be omitted: %+v", doc)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#4F46E5", color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}, true},
		{"374151", color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xFF}, true},
		{"#fff", color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, true},
		{"#12345", color.RGBA{}, false},
		{"blue", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseHexColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRender_BadColorFallsBack(t *testing.T) {
	tmpl := domain.Template{Settings: domain.TemplateSettings{PrimaryColor: "not-a-colour"}}
	doc := NewRenderer().Render(testInvoice(), tmpl)
	if doc.Accent != DefaultAccent {
		t.Errorf("expected default accent, got %v", doc.Accent)
	}
	if doc.Typeface != DefaultTypeface {
		t.Errorf("expected default typeface, got %s", doc.Typeface)
	}
}

func TestFirstFamily(t *testing.T) {
	tests := map[string]string{
		"Inter, sans-serif":          "Inter",
		`"Open Sans", Arial`:         "Open Sans",
		"  'Roboto Mono' ,monospace": "Roboto Mono",
		"":                           DefaultTypeface,
	}
	for in, want := range tests {
		if got := FirstFamily(in); got != want {
			t.Errorf("FirstFamily(%q) = %q, want %q", in, got, want)
		}
	}
}
