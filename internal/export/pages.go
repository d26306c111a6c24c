// Package export slices one full-height invoice capture into fixed-size PDF pages.
package export

import (
	"errors"
	"math"
)

var (
	// ErrEmptyCapture is returned when the rasterizer produced a zero-size image.
	ErrEmptyCapture = errors.New("capture has zero width or height")

	ErrInvalidGeometry = errors.New("page geometry leaves no usable height")
)

// PageGeometry is the output page in millimetres
type PageGeometry struct {
	WidthMM        float64
	HeightMM       float64
	MarginTopMM    float64
	MarginBottomMM float64
}

// A4 returns portrait A4 with no margins
func A4() PageGeometry {
	return PageGeometry{WidthMM: 210, HeightMM: 297}
}

// UsableMM is the printable height per page
func (g PageGeometry) UsableMM() float64 {
	return g.HeightMM - g.MarginTopMM - g.MarginBottomMM
}

// Band is a horizontal slice of the capture, in source pixels [Top, Bottom).
type Band struct {
	Top      int
	Bottom   int
	HeightMM float64 // placed height on the page
}

// PlanBands partitions a srcW x srcH capture into page bands.
//
// The capture is scaled so its width fills the page (s = WidthMM/srcW). Every
// page shows UsableMM of scaled height, so band k ends at floor(k*usable/s)
// source pixels, clamped to srcH. Each band starts where the previous one
// ended, so the bands cover [0, srcH) exactly once, and a document of scaled
// height Hs yields ceil(Hs/usable) bands. A pixel boundary never lands past a
// page edge, so a band overruns the usable height by less than one source
// pixel. Only the last band may be shorter than a full page.
func PlanBands(srcW, srcH int, g PageGeometry) ([]Band, error) {
	if srcW <= 0 || srcH <= 0 {
		return nil, ErrEmptyCapture
	}
	usable := g.UsableMM()
	if g.WidthMM <= 0 || usable <= 0 {
		return nil, ErrInvalidGeometry
	}

	s := g.WidthMM / float64(srcW)
	heightLeft := float64(srcH) * s

	var bands []Band
	top := 0
	for k := 1; heightLeft > 0; k++ {
		// epsilon absorbs k*usable/s landing a hair under an exact pixel edge
		bottom := int(math.Floor(float64(k)*usable*float64(srcW)/g.WidthMM + 1e-9))
		if bottom > srcH {
			bottom = srcH
		}
		if bottom <= top {
			break
		}
		bands = append(bands, Band{Top: top, Bottom: bottom, HeightMM: float64(bottom-top) * s})
		top = bottom
		heightLeft -= usable
	}

	// float drift in heightLeft can stop the loop short of the last pixels
	if top < srcH {
		bands = append(bands, Band{Top: top, Bottom: srcH, HeightMM: float64(srcH-top) * s})
	}
	return bands, nil
}
