package render

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/andy/invoicedesk/internal/billing"
	"github.com/andy/invoicedesk/internal/domain"
)

// DefaultAccent is used when a template colour cannot be parsed (#4F46E5).
var DefaultAccent = color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}

// DefaultTypeface is used when a template names no font family.
const DefaultTypeface = "Inter"

// Renderer builds Documents. It holds no state and is safe for concurrent use.
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render applies tmpl to inv. The invoice is not modified.
func (r *Renderer) Render(inv *domain.Invoice, tmpl domain.Template) *Document {
	s := tmpl.Settings

	accent, ok := ParseHexColor(s.PrimaryColor)
	if !ok {
		accent = DefaultAccent
	}

	doc := &Document{
		TemplateID: tmpl.ID,
		Accent:     accent,
		Typeface:   FirstFamily(s.FontFamily),
		Number:     inv.Number,
		IssueDate:  inv.IssueDate,
		DueDate:    inv.DueDate,
		Status:     inv.Status,
		Seller:     inv.Seller,
		Client:     inv.Client,
		Totals:     inv.Totals,
		Notes:      strings.TrimSpace(inv.Notes),
		FooterText: strings.TrimSpace(s.FooterText),
	}

	doc.Lines = make([]Line, 0, len(inv.Items))
	for _, item := range inv.Items {
		doc.Lines = append(doc.Lines, Line{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Amount:      billing.LineAmount(item),
		})
	}

	if s.ShowLogo && strings.TrimSpace(inv.Seller.Logo) != "" {
		doc.LogoRef = inv.Seller.Logo
	}
	if s.ShowSignature && strings.TrimSpace(inv.Seller.Signature) != "" {
		doc.SignatureRef = inv.Seller.Signature
	}
	if s.ShowPaymentDetails && !inv.Seller.Bank.IsEmpty() {
		bank := inv.Seller.Bank
		doc.Payment = &bank
	}

	return doc
}

// ParseHexColor parses #RRGGBB or #RGB
func ParseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, true
}

// FirstFamily returns the first family of a CSS font-family list
func FirstFamily(list string) string {
	first, _, _ := strings.Cut(list, ",")
	first = strings.Trim(strings.TrimSpace(first), `"'`)
	if first == "" {
		return DefaultTypeface
	}
	return first
}
