// Package tiles extracts the fixed-size tile grid from a source image and
// computes, for every pixel and every tile, the data the palette assembler
// needs: per-pixel YUV-space colour vectors, and a per-tile signature
// vector used to cluster tiles into palette groups.
//
// Grounded on original_source/src/tiles.c (TilesData_FromBitmap) and the
// older original_source/Qualetize.c revision's tile-signature loop.
package tiles

import (
	"math"

	"github.com/Aikku93/tilequant/internal/colour"
	"github.com/Aikku93/tilequant/internal/dither"
)

// Vec4 is a local alias so this package reads naturally against the
// reference's BGRAf_t.
type Vec4 = colour.Vec4

// Arena holds every buffer the palette assembler and ditherer need, sized
// once per pipeline invocation: the tile grid's dimensions, the working
// pixel buffer in YUV space, and one signature vector per tile.
//
// The reference allocates all of this as one 32-byte-aligned block
// (Bitmap.c's arena). Idiomatic Go has no equivalent of that allocation
// contract, so this is a plain struct of slices instead.
type Arena struct {
	Width, Height int
	TileW, TileH  int
	TilesX, TilesY int

	// Pixels holds every pixel of the (optionally pre-dithered) working
	// image, in YUV space, row-major, length Width*Height.
	Pixels []Vec4

	// Signatures holds one YUV-space signature vector per tile, row-major
	// over the tile grid, length TilesX*TilesY.
	Signatures []Vec4

	// TileMap holds each tile's resolved palette-group index, filled in by
	// the palette assembler. Length TilesX*TilesY.
	TileMap []int32
}

// Options configures tile extraction.
type Options struct {
	TileW, TileH int

	// PreDither selects the mode of the raw dither pass that range-reduces
	// the source pixels to BitRange before tile signatures are computed,
	// so that clustering sees perceptually refined colours rather than the
	// unreduced source. The pass always runs; under dither.ModeNone it is
	// a plain per-channel round.
	PreDither     dither.Mode
	PreDitherLevel float64
	BitRange      colour.Range
	NoAlpha       bool
}

// Build extracts the tile grid from src (row-major BGRA8, already
// normalized to [0,1] float but still in plain RGB space — not YUV —
// length width*height) and returns the populated Arena. width and height
// must each be divisible by opt.TileW/opt.TileH.
func Build(src []Vec4, width, height int, opt Options) *Arena {
	// The raw dither pass always runs ahead of tile extraction, even under
	// ModeNone: it range-reduces every pixel to BitRange before clustering
	// sees it, matching the reference's unconditional pre-pass.
	working, _ := dither.Raw(src, dither.RawOptions{
		Width:    width,
		Height:   height,
		BitRange: opt.BitRange,
		Mode:     opt.PreDither,
		Level:    opt.PreDitherLevel,
		NoAlpha:  opt.NoAlpha,
	})

	a := &Arena{
		Width:  width,
		Height: height,
		TileW:  opt.TileW,
		TileH:  opt.TileH,
		TilesX: width / opt.TileW,
		TilesY: height / opt.TileH,
	}
	a.Pixels = make([]Vec4, width*height)
	for i, px := range working {
		a.Pixels[i] = colour.AsYUV(px)
	}
	a.TileMap = make([]int32, a.TilesX*a.TilesY)
	a.Signatures = computeSignatures(a)
	return a
}

// computeSignatures derives one clustering signature per tile: the mean
// YUVA of the tile's pixels, with chroma rescaled so that clustering
// groups tiles by hue rather than by brightness. Grounded on the older
// Qualetize.c revision's per-tile accumulation loop.
func computeSignatures(a *Arena) []Vec4 {
	sigs := make([]Vec4, a.TilesX*a.TilesY)
	tilePixels := float64(a.TileW * a.TileH)

	for ty := 0; ty < a.TilesY; ty++ {
		for tx := 0; tx < a.TilesX; tx++ {
			var sum Vec4
			for py := 0; py < a.TileH; py++ {
				row := (ty*a.TileH+py)*a.Width + tx*a.TileW
				for px := 0; px < a.TileW; px++ {
					sum = colour.Add(sum, a.Pixels[row+px])
				}
			}
			mean := colour.Divs(sum, tilePixels)
			if mean.B > 0 { // mean.B is Y in YUV-space Vec4s
				scale := 0.1 / math.Sqrt(mean.B)
				mean.G *= scale // U
				mean.R *= scale // V
			}
			sigs[ty*a.TilesX+tx] = mean
		}
	}
	return sigs
}

// TileAt returns the flat tile index covering pixel (x,y).
func (a *Arena) TileAt(x, y int) int {
	return (y/a.TileH)*a.TilesX + (x / a.TileW)
}

// TileIndex returns the flat tile index (into Signatures and TileMap) for
// the given tile-grid coordinates; used by the palette assembler to gather
// a tile group's member pixels.
func (a *Arena) TileIndex(tx, ty int) int {
	return ty*a.TilesX + tx
}
