package export

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestPlanBands_TallDocument(t *testing.T) {
	// s = 200/1000 = 0.2mm per px, 250mm usable = 1250px per page
	g := PageGeometry{WidthMM: 200, HeightMM: 270, MarginTopMM: 10, MarginBottomMM: 10}

	bands, err := PlanBands(1000, 4000, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bands) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(bands))
	}

	want := []Band{
		{Top: 0, Bottom: 1250},
		{Top: 1250, Bottom: 2500},
		{Top: 2500, Bottom: 3750},
		{Top: 3750, Bottom: 4000},
	}
	for i, w := range want {
		if bands[i].Top != w.Top || bands[i].Bottom != w.Bottom {
			t.Errorf("band %d: expected [%d,%d), got [%d,%d)", i, w.Top, w.Bottom, bands[i].Top, bands[i].Bottom)
		}
	}
	if math.Abs(bands[0].HeightMM-250) > 1e-9 {
		t.Errorf("expected full page height 250mm, got %v", bands[0].HeightMM)
	}
	if math.Abs(bands[3].HeightMM-50) > 1e-9 {
		t.Errorf("expected last page 50mm, got %v", bands[3].HeightMM)
	}
}

func TestPlanBands_ExactFit(t *testing.T) {
	bands, err := PlanBands(1000, 2500, PageGeometry{WidthMM: 200, HeightMM: 250})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bands) != 2 {
		t.Fatalf("expected 2 pages without an empty trailer, got %d", len(bands))
	}
}

func TestPlanBands_JustOverPageBoundary(t *testing.T) {
	// A4 at 1000px wide: s = 0.21mm, Hs = 594.09mm, just over two pages
	bands, err := PlanBands(1000, 2829, A4())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bands) != 3 {
		t.Fatalf("expected 3 pages, got %d: %+v", len(bands), bands)
	}
	for i, b := range bands {
		if b.HeightMM > 297 {
			t.Errorf("band %d is %.2fmm, taller than the page", i, b.HeightMM)
		}
	}
	if last := bands[2]; last.Top != 2828 || last.Bottom != 2829 {
		t.Errorf("expected the final pixel row on its own page, got %+v", last)
	}
}

func TestPlanBands_ShortDocument(t *testing.T) {
	bands, err := PlanBands(794, 600, A4())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bands) != 1 || bands[0].Top != 0 || bands[0].Bottom != 600 {
		t.Fatalf("expected one band covering the capture, got %+v", bands)
	}
}

func TestPlanBands_Partition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		w := 100 + rng.Intn(2000)
		h := 1 + rng.Intn(20000)
		g := PageGeometry{
			WidthMM:        100 + rng.Float64()*200,
			HeightMM:       150 + rng.Float64()*200,
			MarginTopMM:    rng.Float64() * 20,
			MarginBottomMM: rng.Float64() * 20,
		}

		bands, err := PlanBands(w, h, g)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		s := g.WidthMM / float64(w)
		want := int(math.Ceil(float64(h) * s / g.UsableMM()))
		if len(bands) != want {
			t.Fatalf("w=%d h=%d: expected %d bands, got %d", w, h, want, len(bands))
		}

		next := 0
		for j, b := range bands {
			if b.Top != next {
				t.Fatalf("w=%d h=%d: band %d starts at %d, want %d", w, h, j, b.Top, next)
			}
			if b.Bottom <= b.Top {
				t.Fatalf("w=%d h=%d: band %d is empty", w, h, j)
			}
			// pixel edges sit at or below the page edge, never a whole pixel past it
			if b.HeightMM >= g.UsableMM()+s {
				t.Fatalf("w=%d h=%d: band %d is %.3fmm, usable %.3fmm", w, h, j, b.HeightMM, g.UsableMM())
			}
			if b.Bottom < h && float64(b.Bottom)*s > float64(j+1)*g.UsableMM()+1e-6 {
				t.Fatalf("w=%d h=%d: band %d ends past page edge", w, h, j)
			}
			next = b.Bottom
		}
		if next != h {
			t.Fatalf("w=%d h=%d: bands end at %d", w, h, next)
		}
	}
}

func TestPlanBands_Errors(t *testing.T) {
	if _, err := PlanBands(0, 100, A4()); !errors.Is(err, ErrEmptyCapture) {
		t.Errorf("expected ErrEmptyCapture for zero width, got %v", err)
	}
	if _, err := PlanBands(100, 0, A4()); !errors.Is(err, ErrEmptyCapture) {
		t.Errorf("expected ErrEmptyCapture for zero height, got %v", err)
	}
	g := PageGeometry{WidthMM: 210, HeightMM: 297, MarginTopMM: 200, MarginBottomMM: 97}
	if _, err := PlanBands(100, 100, g); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}
