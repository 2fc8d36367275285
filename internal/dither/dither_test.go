package dither

import (
	"math"
	"testing"

	"github.com/Aikku93/tilequant/internal/colour"
)

func approxEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

// TestOrderedThresholdOrder1 checks the 2x2 Bayer matrix values against
// the reference implementation's bit-interleaving order: note that the
// values below are indexed (x,y), the transpose of the row-major (y,x)
// matrix "(0,2; 3,1)/4" a reader would normally draw by hand.
func TestOrderedThresholdOrder1(t *testing.T) {
	cases := []struct {
		x, y int
		want float64
	}{
		{0, 0, 0.0/4 - 0.5},
		{1, 0, 3.0/4 - 0.5},
		{0, 1, 2.0/4 - 0.5},
		{1, 1, 1.0/4 - 0.5},
	}
	for _, c := range cases {
		got := orderedThreshold(c.x, c.y, 1)
		if !approxEqual(got, c.want, 1e-9) {
			t.Errorf("orderedThreshold(%d,%d,1) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestOrderedThresholdRange(t *testing.T) {
	n := 2
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := orderedThreshold(x, y, n)
			if v < -0.5 || v >= 0.5 {
				t.Errorf("orderedThreshold(%d,%d,%d) = %v, out of [-0.5,0.5)", x, y, n, v)
			}
		}
	}
}

func TestFindPaletteEntryStartsAtReservedMinusOne(t *testing.T) {
	pal := []Vec4{
		{B: 0, G: 0, R: 0, A: 0}, // reserved
		{B: 0.9, G: 0.9, R: 0.9, A: 1},
		{B: 0.1, G: 0.1, R: 0.1, A: 1},
	}
	// A fully transparent pixel should snap back to the reserved slot
	// even though it is not in [reserved, palSize).
	idx := findPaletteEntry(Vec4{B: 0, G: 0, R: 0, A: 0}, pal, 1)
	if idx != 0 {
		t.Errorf("findPaletteEntry = %d, want 0 (reserved slot)", idx)
	}
}

func TestFindPaletteEntryPicksNearest(t *testing.T) {
	pal := []Vec4{
		{B: 0, G: 0, R: 0, A: 1},
		{B: 1, G: 1, R: 1, A: 1},
	}
	idx := findPaletteEntry(Vec4{B: 0.9, G: 0.9, R: 0.9, A: 1}, pal, 0)
	if idx != 1 {
		t.Errorf("findPaletteEntry = %d, want 1", idx)
	}
}

func TestRawNoneRoundsToRange(t *testing.T) {
	src := []Vec4{{B: 0.5, G: 0.5, R: 0.5, A: 1}}
	out, _ := Raw(src, RawOptions{
		Width: 1, Height: 1,
		BitRange: colour.Range{B: 31, G: 31, R: 31, A: 1},
		Mode:     ModeNone,
	})
	want := colour.ToFloat(colour.ToU8(src[0], colour.Range{B: 31, G: 31, R: 31, A: 1}), colour.Range{B: 31, G: 31, R: 31, A: 1})
	if out[0] != want {
		t.Errorf("Raw(none) = %+v, want %+v", out[0], want)
	}
}

func TestTileZeroRMSEWhenPaletteExact(t *testing.T) {
	c := Vec4{B: 0.25, G: 0.5, R: 0.75, A: 1}
	src := []Vec4{c, c, c, c}
	pal := []Vec4{c}
	index := make([]byte, 4)
	rmse := Tile(src, TileOptions{
		Width: 2, Height: 2,
		TileW: 2, TileH: 2,
		NPalettes: 1, PaletteSize: 1,
		TileMap: []int32{0},
		Palette: pal,
		Mode:    ModeNone,
	}, index)
	if rmse.B != 0 || rmse.G != 0 || rmse.R != 0 || rmse.A != 0 {
		t.Errorf("rmse = %+v, want all zero", rmse)
	}
	for _, idx := range index {
		if idx != 0 {
			t.Errorf("index = %v, want all zero", index)
		}
	}
}

func TestTileFloydSteinbergDiffusesError(t *testing.T) {
	// A 0..1 grey gradient snapped to a 2-entry black/white palette under
	// FS dithering should pick white for roughly half the pixels, i.e. the
	// mean index stays near the gradient's mean of 0.5.
	w, h := 16, 1
	src := make([]Vec4, w*h)
	for x := 0; x < w; x++ {
		v := float64(x) / float64(w-1)
		src[x] = Vec4{B: v, G: v, R: v, A: 1}
	}
	pal := []Vec4{{B: 0, G: 0, R: 0, A: 1}, {B: 1, G: 1, R: 1, A: 1}}
	tileMap := []int32{0}

	index := make([]byte, w*h)
	Tile(src, TileOptions{
		Width: w, Height: h, TileW: w, TileH: h,
		NPalettes: 1, PaletteSize: 2,
		TileMap: tileMap, Palette: pal,
		Mode: ModeFloydSteinberg, Level: 1.0,
	}, index)

	var sum float64
	for _, idx := range index {
		sum += float64(idx)
	}
	mean := sum / float64(w)
	if !(mean > 0.3 && mean < 0.7) {
		t.Errorf("dithered mean index fraction = %v, want near 0.5", mean)
	}
}

func TestOrderedDitherSpreadZeroWhenNoAlphaSet(t *testing.T) {
	pal := []Vec4{{B: 0, A: 0}, {B: 1, A: 1}}
	spreads := paletteSpreads(pal, 1, 2, 0, 1.0, true)
	if spreads[0].A != 0 {
		t.Errorf("spread alpha = %v, want 0 under NoAlpha", spreads[0].A)
	}
}

func TestDiffuseEdgeClipping(t *testing.T) {
	w := 3
	cur := make([]Vec4, w+2)[1:]
	next := make([]Vec4, w+2)[1:]
	diffuse(cur, next, 0, w, Vec4{B: 1})
	if math.Abs(next[0].B-weightS) > 1e-9 {
		t.Errorf("south diffusion at left edge = %v, want %v", next[0].B, weightS)
	}
	if math.Abs(cur[1].B-weightE) > 1e-9 {
		t.Errorf("east diffusion = %v, want %v", cur[1].B, weightE)
	}
}
