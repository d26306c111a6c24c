// Package render maps an invoice and a template onto a layout descriptor and
// rasterizes that descriptor into a single tall image.
package render

import (
	"image/color"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
)

// Document is everything the rasterizer needs to draw one invoice. Optional
// sections are present only when both the template enables them and the
// invoice carries the data.
type Document struct {
	TemplateID string
	Accent     color.RGBA
	Typeface   string

	Number    string
	IssueDate time.Time
	DueDate   *time.Time
	Status    domain.InvoiceStatus

	Seller domain.Seller
	Client domain.Party
	Lines  []Line
	Totals domain.Totals

	// Empty when the section is hidden
	LogoRef      string
	SignatureRef string
	Notes        string
	FooterText   string

	// Nil when the section is hidden
	Payment *domain.BankDetails
}

// Line is one rendered row of the items table
type Line struct {
	Description string
	Quantity    float64
	Unit        string
	UnitPrice   float64
	Amount      float64
}

func (d *Document) ShowLogo() bool      { return d.LogoRef != "" }
func (d *Document) ShowSignature() bool { return d.SignatureRef != "" }
func (d *Document) ShowPayment() bool   { return d.Payment != nil }
