package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"
	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/render"
)

// TemplateSource resolves the template to export with
type TemplateSource interface {
	GetActive() (domain.Template, error)
}

// Options configure page geometry and capture
type Options struct {
	Geometry PageGeometry
	Raster   render.RasterOptions
}

// Result is a fully assembled PDF held in memory
type Result struct {
	Filename   string
	TemplateID string
	Pages      int
	Data       []byte
}

// Exporter captures an invoice once and lays the capture out over PDF pages.
type Exporter struct {
	templates  TemplateSource
	renderer   *render.Renderer
	rasterizer render.Rasterizer
	opts       Options
	logger     *zap.Logger
	now        func() time.Time
}

// NewExporter creates an exporter. A nil logger discards output.
func NewExporter(templates TemplateSource, renderer *render.Renderer, rasterizer render.Rasterizer, opts Options, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		templates:  templates,
		renderer:   renderer,
		rasterizer: rasterizer,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// Export renders inv with the active template
func (e *Exporter) Export(ctx context.Context, inv *domain.Invoice) (*Result, error) {
	tmpl, err := e.templates.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve template: %w", err)
	}
	return e.ExportWithTemplate(ctx, inv, tmpl)
}

// ExportWithTemplate renders inv with tmpl regardless of the active template
func (e *Exporter) ExportWithTemplate(ctx context.Context, inv *domain.Invoice, tmpl domain.Template) (*Result, error) {
	start := e.now()
	doc := e.renderer.Render(inv, tmpl)

	capture, err := e.rasterizer.Rasterize(ctx, doc, e.opts.Raster)
	if err != nil {
		return nil, fmt.Errorf("failed to capture invoice: %w", err)
	}
	if capture == nil {
		return nil, ErrEmptyCapture
	}

	b := capture.Bounds()
	bands, err := PlanBands(b.Dx(), b.Dy(), e.opts.Geometry)
	if err != nil {
		return nil, err
	}

	data, err := e.assemble(ctx, inv, toRGBA(capture), bands)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Filename:   Filename(inv, start),
		TemplateID: tmpl.ID,
		Pages:      len(bands),
		Data:       data,
	}
	e.logger.Info("invoice exported",
		zap.String("number", inv.Number),
		zap.String("template", tmpl.ID),
		zap.Int("pages", res.Pages),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", e.now().Sub(start)),
	)
	return res, nil
}

func (e *Exporter) assemble(ctx context.Context, inv *domain.Invoice, capture *image.RGBA, bands []Band) ([]byte, error) {
	g := e.opts.Geometry
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: g.WidthMM, Ht: g.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.SetCreator("invoicedesk", true)
	pdf.SetCreationDate(e.now())

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, band := range bands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buf, err := encodeBand(capture, band)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}

		name := fmt.Sprintf("page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, buf)
		pdf.AddPage()
		pdf.ImageOptions(name, 0, g.MarginTopMM, g.WidthMM, band.HeightMM, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to build page %d: %w", i+1, err)
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return out.Bytes(), nil
}

// encodeBand cuts band out of capture as a PNG. Band rows are relative to the
// capture's top edge, which need not be at y=0.
func encodeBand(capture *image.RGBA, band Band) (*bytes.Buffer, error) {
	b := capture.Bounds()
	slice := capture.SubImage(image.Rect(b.Min.X, b.Min.Y+band.Top, b.Max.X, b.Min.Y+band.Bottom))
	var buf bytes.Buffer
	if err := png.Encode(&buf, slice); err != nil {
		return nil, err
	}
	return &buf, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	xdraw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return rgba
}

// SaveFile writes res into dir under res.Filename. The file appears complete
// or not at all.
func SaveFile(dir string, res *Result) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".invoice-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(res.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}

	path := filepath.Join(dir, res.Filename)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to save PDF: %w", err)
	}
	return path, nil
}
