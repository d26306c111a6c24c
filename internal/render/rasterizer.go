package render

import (
	"context"
	"image"
)

// RasterOptions control a capture
type RasterOptions struct {
	// Scale multiplies the base resolution. Values <= 0 mean 1.
	Scale float64

	// CrossOriginImages allows logo and signature references to be fetched over HTTP
	CrossOriginImages bool
}

// Rasterizer turns a Document into one image covering the whole document.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc *Document, opts RasterOptions) (image.Image, error)
}
