package palette

import (
	"math"
	"testing"

	"github.com/Aikku93/tilequant/internal/colour"
	"github.com/Aikku93/tilequant/internal/tiles"
)

// buildArena constructs a minimal Arena directly, bypassing tiles.Build,
// so palette assembly can be tested against known tile signatures and
// pixel data without involving the ditherer.
func buildArena(tilesX, tilesY, tileW, tileH int, pixels []colour.Vec4, sigs []colour.Vec4) *tiles.Arena {
	return &tiles.Arena{
		Width: tilesX * tileW, Height: tilesY * tileH,
		TileW: tileW, TileH: tileH,
		TilesX: tilesX, TilesY: tilesY,
		Pixels:     pixels,
		Signatures: sigs,
		TileMap:    make([]int32, tilesX*tilesY),
	}
}

func TestAssembleTwoTilesTwoGroups(t *testing.T) {
	red := colour.Vec4{B: 0, G: 0, R: 1, A: 1}
	blue := colour.Vec4{B: 1, G: 0, R: 0, A: 1}

	tileW, tileH := 2, 2
	pixels := make([]colour.Vec4, 2*tileW*tileH)
	// Arena.Pixels is row-major over the whole 4x2 image: the left tile
	// (x < tileW) is red, the right tile is blue.
	for i := range pixels {
		if i%(2*tileW) < tileW {
			pixels[i] = red
		} else {
			pixels[i] = blue
		}
	}
	sigs := []colour.Vec4{colour.AsYUV(red), colour.AsYUV(blue)}
	for i := range pixels {
		pixels[i] = colour.AsYUV(pixels[i])
	}

	a := buildArena(2, 1, tileW, tileH, pixels, sigs)
	out := Assemble(a, Options{NPalettes: 2, PaletteSize: 1, TileClusterPasses: 8, ColourClusterPasses: 8})

	if len(out) != 2 {
		t.Fatalf("got %d palette entries, want 2", len(out))
	}
	// Each group should resolve to one of the two source colours.
	matches := func(c, want colour.Vec4) bool {
		return math.Abs(c.B-want.B) < 1e-6 && math.Abs(c.R-want.R) < 1e-6
	}
	redYUV, blueYUV := colour.AsYUV(red), colour.AsYUV(blue)
	ok := (matches(out[0], redYUV) && matches(out[1], blueYUV)) ||
		(matches(out[0], blueYUV) && matches(out[1], redYUV))
	if !ok {
		t.Errorf("palette = %+v, want {red,blue} in some order", out)
	}
}

func TestAssembleReservedSlotsZeroed(t *testing.T) {
	c := colour.AsYUV(colour.Vec4{B: 0.3, G: 0.3, R: 0.3, A: 1})
	pixels := []colour.Vec4{c, c, c, c}
	sigs := []colour.Vec4{c}
	a := buildArena(1, 1, 2, 2, pixels, sigs)

	out := Assemble(a, Options{NPalettes: 1, PaletteSize: 4, Reserved: 2, TileClusterPasses: 4, ColourClusterPasses: 4})
	if len(out) != 4 {
		t.Fatalf("got %d entries, want 4", len(out))
	}
	if out[0] != (colour.Vec4{}) || out[1] != (colour.Vec4{}) {
		t.Errorf("reserved slots = %+v, %+v, want zero vectors", out[0], out[1])
	}
}

func TestAssembleSkipsTransparentPixelsWhenReserved(t *testing.T) {
	opaque := colour.AsYUV(colour.Vec4{B: 0.5, G: 0.5, R: 0.5, A: 1})
	transparent := colour.Vec4{B: 0, G: 0, R: 0, A: 0}
	pixels := []colour.Vec4{opaque, transparent, opaque, transparent}
	sigs := []colour.Vec4{opaque}
	a := buildArena(1, 1, 2, 2, pixels, sigs)

	out := Assemble(a, Options{NPalettes: 1, PaletteSize: 2, Reserved: 1, TileClusterPasses: 4, ColourClusterPasses: 4})
	if math.Abs(out[1].B-opaque.B) > 1e-6 {
		t.Errorf("resolved entry = %+v, want close to %+v (transparent pixels excluded)", out[1], opaque)
	}
}

func TestAssembleEmptyGroupLeavesZeroSlots(t *testing.T) {
	c := colour.AsYUV(colour.Vec4{B: 0.1, G: 0.1, R: 0.1, A: 1})
	pixels := []colour.Vec4{c, c, c, c}
	sigs := []colour.Vec4{c}
	a := buildArena(1, 1, 2, 2, pixels, sigs)

	// Two palette groups, but only one tile: group 1 never receives any
	// member pixels and its slots must remain zero.
	out := Assemble(a, Options{NPalettes: 2, PaletteSize: 2, TileClusterPasses: 4, ColourClusterPasses: 4})
	if len(out) != 4 {
		t.Fatalf("got %d entries, want 4", len(out))
	}
	for n := 2; n < 4; n++ {
		if out[n] != (colour.Vec4{}) {
			t.Errorf("group 1 entry %d = %+v, want zero vector", n, out[n])
		}
	}
}
