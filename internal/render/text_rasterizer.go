package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"github.com/andy/invoicedesk/internal/domain"
)

// Base layout size in pixels at scale 1 (A4 width at 96 dpi).
const (
	BaseWidth  = 794
	pageMargin = 48
)

var (
	white     = rgb(0xFF, 0xFF, 0xFF)
	ink       = rgb(0x11, 0x18, 0x27)
	muted     = rgb(0x6B, 0x72, 0x80)
	rule      = rgb(0xE5, 0xE7, 0xEB)
	rowShade  = rgb(0xF9, 0xFA, 0xFB)
	faceBody  font.Face = inconsolata.Regular8x16
	faceBold  font.Face = inconsolata.Bold8x16
	faceSmall font.Face = basicfont.Face7x13
)

// TextRasterizer draws a Document with bitmap faces. The available faces are
// monospace, so Document.Typeface does not change the output.
type TextRasterizer struct {
	images *ImageLoader
}

// NewTextRasterizer creates a rasterizer that loads images through loader
func NewTextRasterizer(loader *ImageLoader) *TextRasterizer {
	if loader == nil {
		loader = NewImageLoader(nil)
	}
	return &TextRasterizer{images: loader}
}

// Rasterize lays out doc top to bottom and returns the full-height capture
func (r *TextRasterizer) Rasterize(ctx context.Context, doc *Document, opts RasterOptions) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var logo, signature image.Image
	if doc.ShowLogo() {
		img, err := r.images.Load(ctx, doc.LogoRef, opts.CrossOriginImages)
		if err != nil {
			return nil, fmt.Errorf("failed to load logo: %w", err)
		}
		logo = img
	}
	if doc.ShowSignature() {
		img, err := r.images.Load(ctx, doc.SignatureRef, opts.CrossOriginImages)
		if err != nil {
			return nil, fmt.Errorf("failed to load signature: %w", err)
		}
		signature = img
	}

	c := layout(doc, logo, signature)

	base := image.NewRGBA(image.Rect(0, 0, c.width, c.y))
	xdraw.Draw(base, base.Bounds(), image.NewUniform(white), image.Point{}, xdraw.Src)
	for _, op := range c.ops {
		op(base)
	}

	scale := opts.Scale
	if scale <= 0 || scale == 1 {
		return base, nil
	}
	w := int(math.Round(float64(c.width) * scale))
	h := int(math.Round(float64(c.y) * scale))
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	return out, nil
}

// canvas records draw operations while tracking the running height
type canvas struct {
	width int
	y     int
	ops   []func(dst *image.RGBA)
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	c.ops = append(c.ops, func(dst *image.RGBA) {
		xdraw.Draw(dst, r, image.NewUniform(col), image.Point{}, xdraw.Src)
	})
}

// text draws s with its top edge at top and returns the next line's top
func (c *canvas) text(x, top int, s string, face font.Face, col color.Color) int {
	m := face.Metrics()
	baseline := top + m.Ascent.Ceil()
	c.ops = append(c.ops, func(dst *image.RGBA) {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face, Dot: fixed.P(x, baseline)}
		d.DrawString(s)
	})
	return top + m.Height.Ceil()
}

func (c *canvas) textRight(right, top int, s string, face font.Face, col color.Color) int {
	return c.text(right-font.MeasureString(face, s).Ceil(), top, s, face, col)
}

// image fits img inside box, keeping its aspect ratio, anchored top-left
func (c *canvas) image(img image.Image, box image.Rectangle) int {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return box.Min.Y
	}
	f := math.Min(float64(box.Dx())/float64(b.Dx()), float64(box.Dy())/float64(b.Dy()))
	dr := image.Rect(box.Min.X, box.Min.Y,
		box.Min.X+int(float64(b.Dx())*f), box.Min.Y+int(float64(b.Dy())*f))
	c.ops = append(c.ops, func(dst *image.RGBA) {
		xdraw.CatmullRom.Scale(dst, dr, img, b, xdraw.Over, nil)
	})
	return dr.Max.Y
}

func layout(doc *Document, logo, signature image.Image) *canvas {
	c := &canvas{width: BaseWidth, y: pageMargin}
	left, right := pageMargin, BaseWidth-pageMargin

	c.fill(image.Rect(0, 0, c.width, 8), doc.Accent)

	// header: title and dates on the left, logo on the right
	y := c.text(left, c.y, "INVOICE", faceBold, doc.Accent) + 4
	y = c.text(left, y, "No. "+orDash(doc.Number), faceBody, ink)
	issued := "-"
	if !doc.IssueDate.IsZero() {
		issued = doc.IssueDate.Format("2006-01-02")
	}
	y = c.text(left, y, "Date: "+issued, faceBody, ink)
	if doc.DueDate != nil {
		y = c.text(left, y, "Due:  "+doc.DueDate.Format("2006-01-02"), faceBody, ink)
	}
	y = c.text(left, y, "Status: "+strings.ToUpper(string(doc.Status)), faceBody, muted)
	if logo != nil {
		y = max(y, c.image(logo, image.Rect(right-160, c.y, right, c.y+64)))
	}
	c.y = y + 24

	// parties
	mid := c.width/2 + 8
	fromY := c.text(left, c.y, "FROM", faceSmall, muted)
	fromY = c.lines(left, fromY, sellerLines(doc), c.width/2-left-16)
	toY := c.text(mid, c.y, "BILL TO", faceSmall, muted)
	toY = c.lines(mid, toY, clientLines(doc), right-mid)
	c.y = max(fromY, toY) + 24

	c.items(doc)
	c.totals(doc)

	if doc.Payment != nil {
		c.y += 16
		y := c.text(left, c.y, "Payment Details", faceBold, doc.Accent)
		for _, l := range paymentLines(*doc.Payment) {
			y = c.text(left, y, l, faceBody, ink)
		}
		c.y = y
	}

	if doc.Notes != "" {
		c.y += 16
		y := c.text(left, c.y, "Notes", faceBold, doc.Accent)
		for _, l := range wrap(faceBody, doc.Notes, right-left) {
			y = c.text(left, y, l, faceBody, ink)
		}
		c.y = y
	}

	if signature != nil {
		c.y += 24
		bottom := c.image(signature, image.Rect(right-180, c.y, right, c.y+70))
		c.fill(image.Rect(right-180, bottom+4, right, bottom+5), ink)
		c.y = c.text(right-180, bottom+8, "Authorized Signature", faceSmall, muted)
	}

	if doc.FooterText != "" {
		c.y += 24
		c.fill(image.Rect(left, c.y, right, c.y+1), rule)
		c.y += 8
		w := font.MeasureString(faceSmall, doc.FooterText).Ceil()
		c.y = c.text((c.width-w)/2, c.y, doc.FooterText, faceSmall, muted)
	}

	c.y += pageMargin
	return c
}

// lines draws wrapped lines, the first in bold
func (c *canvas) lines(x, top int, lines []string, width int) int {
	y := top
	for i, l := range lines {
		face := faceBody
		if i == 0 {
			face = faceBold
		}
		for _, w := range wrap(face, l, width) {
			y = c.text(x, y, w, face, ink)
		}
	}
	return y
}

// Column right edges of the items table
const (
	colQtyRight    = 470
	colUnitLeft    = 486
	colPriceRight  = 640
	colAmountRight = BaseWidth - pageMargin - 8
)

func (c *canvas) items(doc *Document) {
	left, right := pageMargin, BaseWidth-pageMargin
	descX := left + 8
	descWidth := colQtyRight - 64 - descX

	c.fill(image.Rect(left, c.y, right, c.y+26), doc.Accent)
	top := c.y + 5
	c.text(descX, top, "Description", faceBold, white)
	c.textRight(colQtyRight, top, "Qty", faceBold, white)
	c.text(colUnitLeft, top, "Unit", faceBold, white)
	c.textRight(colPriceRight, top, "Price", faceBold, white)
	c.textRight(colAmountRight, top, "Amount", faceBold, white)
	c.y += 26

	for i, line := range doc.Lines {
		desc := wrap(faceBody, line.Description, descWidth)
		rowH := len(desc)*faceBody.Metrics().Height.Ceil() + 12
		if i%2 == 1 {
			c.fill(image.Rect(left, c.y, right, c.y+rowH), rowShade)
		}
		top := c.y + 6
		y := top
		for _, d := range desc {
			y = c.text(descX, y, d, faceBody, ink)
		}
		c.textRight(colQtyRight, top, formatQuantity(line.Quantity), faceBody, ink)
		c.text(colUnitLeft, top, line.Unit, faceBody, muted)
		c.textRight(colPriceRight, top, formatMoney(line.UnitPrice), faceBody, ink)
		c.textRight(colAmountRight, top, formatMoney(line.Amount), faceBody, ink)
		c.y += rowH
		c.fill(image.Rect(left, c.y, right, c.y+1), rule)
	}
	c.y += 12
}

func (c *canvas) totals(doc *Document) {
	labelX := colAmountRight - 260
	t := doc.Totals

	c.text(labelX, c.y, "Subtotal", faceBody, muted)
	c.y = c.textRight(colAmountRight, c.y, formatMoney(t.Subtotal), faceBody, ink)

	vat := fmt.Sprintf("VAT (%s%%)", strconv.FormatFloat(t.TaxRatePercent, 'f', -1, 64))
	c.text(labelX, c.y, vat, faceBody, muted)
	c.y = c.textRight(colAmountRight, c.y, formatMoney(t.TaxAmount), faceBody, ink)

	c.fill(image.Rect(labelX, c.y+2, colAmountRight, c.y+3), rule)
	c.y += 6
	c.text(labelX, c.y, "Total", faceBold, doc.Accent)
	c.y = c.textRight(colAmountRight, c.y, formatMoney(t.Total), faceBold, doc.Accent)
}

func sellerLines(doc *Document) []string {
	s := doc.Seller
	out := []string{orDash(s.Name)}
	out = append(out, splitLines(s.Address)...)
	out = appendNonEmpty(out, s.Email, s.Phone)
	if s.TRN != "" {
		out = append(out, "TRN: "+s.TRN)
	}
	return out
}

func clientLines(doc *Document) []string {
	p := doc.Client
	out := []string{orDash(p.Name)}
	out = append(out, splitLines(p.Address)...)
	out = appendNonEmpty(out, p.Email, p.Phone)
	if p.TRN != "" {
		out = append(out, "TRN: "+p.TRN)
	}
	return out
}

func paymentLines(b domain.BankDetails) []string {
	var out []string
	add := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			out = append(out, label+v)
		}
	}
	add("Bank: ", b.BankName)
	add("Account Name: ", b.AccountName)
	add("Account No: ", b.AccountNumber)
	add("IBAN: ", b.IBAN)
	add("SWIFT: ", b.SwiftCode)
	return out
}

// wrap breaks s into lines no wider than width. Words longer than width are kept whole.
func wrap(face font.Face, s string, width int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if font.MeasureString(face, line+" "+w).Ceil() > width {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func appendNonEmpty(out []string, values ...string) []string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
