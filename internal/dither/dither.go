// Package dither maps floating-point pixels to either a reduced bit-depth
// (the "raw" path, used for the pipeline's pre-dither pass) or a tile's
// palette entry (the "tile" path, used to produce the final index buffer),
// under one of three dither strategies: none, Floyd-Steinberg error
// diffusion, or recursive ordered (Bayer) dithering.
//
// Grounded on original_source/src/dither.c (DitherImage); the palette
// spread computation is grounded on the same file's ordered-dithering
// setup block.
package dither

import (
	"math"

	"github.com/Aikku93/tilequant/internal/colour"
)

// Vec4 is a local alias so this package reads naturally against the
// reference's BGRAf_t.
type Vec4 = colour.Vec4

// Mode selects the dither strategy. Zero is "none", -1 is Floyd-Steinberg,
// and any n >= 1 selects recursive ordered (Bayer) dithering of order n
// (a 2^n x 2^n threshold matrix).
type Mode int

const (
	ModeNone           Mode = 0
	ModeFloydSteinberg Mode = -1
)

// floydWeights are the classic Floyd-Steinberg error-diffusion weights,
// over 16ths: E, SW, S, SE.
const (
	weightE  = 7.0 / 16
	weightSW = 3.0 / 16
	weightS  = 5.0 / 16
	weightSE = 1.0 / 16
)

// RawOptions configures the raw (non-palette) dither path used by the
// pipeline's optional pre-dither pass.
type RawOptions struct {
	Width, Height int
	BitRange      colour.Range
	Mode          Mode
	Level         float64
	// NoAlpha zeroes the alpha channel of the dither perturbation
	// (the DITHER_NO_ALPHA policy).
	NoAlpha bool
}

// Raw dithers src (row-major, Width*Height) and rounds every pixel to
// BitRange, returning the range-reduced pixel buffer and the per-channel
// RMSE against src. No palette is involved: this is used to produce
// perceptually refined pixels ahead of tile extraction, not final indices.
func Raw(src []Vec4, opt RawOptions) ([]Vec4, Vec4) {
	out := make([]Vec4, len(src))
	quantizeRaw := func(px Vec4) Vec4 {
		q := colour.ToU8(px, opt.BitRange)
		return colour.ToFloat(q, opt.BitRange)
	}
	spread := rawSpread(opt.BitRange, opt.Level, opt.NoAlpha)
	rmse := run(runOptions{
		width:  opt.Width,
		height: opt.Height,
		mode:   opt.Mode,
		level:  opt.Level,
		spreadAt: func(tilePalIdx int) Vec4 {
			return spread
		},
		quantize: func(px Vec4, _ int, _, _ int) (Vec4, int) {
			return quantizeRaw(px), 0
		},
	}, src, out, nil)
	return out, rmse
}

// TileOptions configures the tile-indexed dither path used to produce the
// final index buffer.
type TileOptions struct {
	Width, Height         int
	TileW, TileH          int
	NPalettes, PaletteSize int
	Reserved              int
	TileMap               []int32 // len (Width/TileW)*(Height/TileH)
	Palette               []Vec4  // len NPalettes*PaletteSize
	Mode                  Mode
	Level                 float64
	NoAlpha               bool
}

// Tile dithers src (row-major, Width*Height, already in the same colour
// space as Palette) against the tile-constrained palette table, writing
// each pixel's resolved `group*PaletteSize+entry` index into index (which
// must have length Width*Height) and returning the per-channel RMSE.
func Tile(src []Vec4, opt TileOptions, index []byte) Vec4 {
	if len(index) != opt.Width*opt.Height {
		panic("dither: index buffer length must equal Width*Height")
	}
	spreads := paletteSpreads(opt.Palette, opt.NPalettes, opt.PaletteSize, opt.Reserved, opt.Level, opt.NoAlpha)

	quantize := func(px Vec4, tilePalIdx int, _, _ int) (Vec4, int) {
		base := tilePalIdx * opt.PaletteSize
		entry := findPaletteEntry(px, opt.Palette[base:base+opt.PaletteSize], opt.Reserved)
		idx := tilePalIdx*opt.PaletteSize + entry
		return opt.Palette[base+entry], idx
	}

	rmse := run(runOptions{
		width:  opt.Width,
		height: opt.Height,
		mode:   opt.Mode,
		level:  opt.Level,
		tileW:  opt.TileW,
		tileH:  opt.TileH,
		tileMap: opt.TileMap,
		spreadAt: func(tilePalIdx int) Vec4 {
			return spreads[tilePalIdx]
		},
		quantize: quantize,
	}, src, nil, index)
	return rmse
}

// findPaletteEntry returns the index within pal (length PaletteSize) that
// minimizes weighted colour distance to px, searching from reserved-1
// (deliberately re-considering the last reserved slot, which lets
// fully-transparent pixels snap back to the zeroed reserved entry) through
// the end of the palette. Ties favour the lowest index.
func findPaletteEntry(px Vec4, pal []Vec4, reserved int) int {
	start := reserved - 1
	if start < 0 {
		start = 0
	}
	minIdx := start
	minDist := math.Inf(1)
	for i := start; i < len(pal); i++ {
		d := colour.WeightedDistance(px, pal[i])
		if d < minDist {
			minIdx, minDist = i, d
		}
	}
	return minIdx
}

// paletteSpreads computes the per-palette-group spread vector used to
// scale ordered-dither thresholds: for each group, the mean of its
// non-reserved centroids, then a sqrt-weighted mean absolute deviation
// from that mean, pre-multiplied by level.
func paletteSpreads(palette []Vec4, nPalettes, palSize, reserved int, level float64, noAlpha bool) []Vec4 {
	spreads := make([]Vec4, nPalettes)
	denom := float64(palSize - reserved)
	for i := 0; i < nPalettes; i++ {
		base := i * palSize
		var mean Vec4
		for n := reserved; n < palSize; n++ {
			mean = colour.Add(mean, palette[base+n])
		}
		mean = colour.Divs(mean, denom)

		var spread, spreadW Vec4
		for n := reserved; n < palSize; n++ {
			d := colour.Abs(colour.Sub(palette[base+n], mean))
			w := colour.Sqrt(d)
			d = colour.Mul(d, w)
			spread = colour.Add(spread, d)
			spreadW = colour.Add(spreadW, w)
		}
		spread = colour.DivSafe(spread, spreadW, Vec4{})
		if noAlpha {
			spread.A = 0
		}
		spreads[i] = colour.Muls(spread, level)
	}
	return spreads
}

// rawSpread is the "real" ordered-dithering spread used when there is no
// tile palette to derive one from: one least-significant-bit step in the
// target bit range, pre-multiplied by level.
func rawSpread(bitRange colour.Range, level float64, noAlpha bool) Vec4 {
	lsb := colour.ToFloat([4]int{1, 1, 1, 1}, bitRange)
	if noAlpha {
		lsb.A = 0
	}
	return colour.Muls(lsb, level)
}

// orderedThreshold computes the recursive Bayer threshold for position
// (x,y) at order n: interleave n bits each of (x^y) and x, most significant
// first, then scale to [-0.5, +0.5-4^-n].
func orderedThreshold(x, y, n int) float64 {
	xKey, yKey := x, x^y
	t := 0
	for i := 0; i < n; i++ {
		t = t*2 + (yKey & 1)
		yKey >>= 1
		t = t*2 + (xKey & 1)
		xKey >>= 1
	}
	scale := float64(int(1) << uint(2*n))
	return float64(t)/scale - 0.5
}

// runOptions is the shared per-pixel engine configuration used by both Raw
// and Tile.
type runOptions struct {
	width, height int
	mode          Mode
	level         float64

	tileW, tileH int
	tileMap      []int32

	// spreadAt returns the ordered-dither spread vector for a given tile
	// palette index (ignored in raw mode, which always passes 0).
	spreadAt func(tilePalIdx int) Vec4

	// quantize maps a (possibly perturbed) pixel to its resolved output
	// pixel and, for the tile path, its resolved index; x,y are the pixel
	// position (neither Raw's nor Tile's callback uses them).
	quantize func(px Vec4, tilePalIdx int, x, y int) (Vec4, int)
}

// run drives the shared dithering loop described in spec.md §4.5: per
// pixel, locate its tile's palette group (tile mode only), apply the
// configured dither perturbation, quantize, diffuse or accumulate the
// dithering state, and fold the squared error into the RMSE accumulator.
// Exactly one of rawOut or indexOut is non-nil, selecting which output the
// resolved pixel is written to.
func run(opt runOptions, src []Vec4, rawOut []Vec4, indexOut []byte) Vec4 {
	w, h := opt.width, opt.height
	tiled := opt.tileMap != nil

	// Floyd-Steinberg: two rolling scanlines with one pixel of padding on
	// each side, swapped after every row.
	var lineA, lineB []Vec4
	var curLine, nextLine []Vec4
	if opt.mode == ModeFloydSteinberg {
		lineA = make([]Vec4, w+2)
		lineB = make([]Vec4, w+2)
		curLine, nextLine = lineA[1:], lineB[1:] // curLine[x] is pixel x; index w is the right pad
	}

	var rmse Vec4
	tilesPerRow := 0
	if tiled {
		tilesPerRow = w / opt.tileW
	}

	for y := 0; y < h; y++ {
		tileRow := 0
		if tiled {
			tileRow = y / opt.tileH
		}
		for x := 0; x < w; x++ {
			tilePalIdx := 0
			if tiled {
				tileCol := x / opt.tileW
				tilePalIdx = int(opt.tileMap[tileRow*tilesPerRow+tileCol])
			}

			original := src[y*w+x]
			px := original

			switch {
			case opt.mode == ModeFloydSteinberg:
				px = colour.Add(px, curLine[x])
			case opt.mode != ModeNone:
				n := int(opt.mode)
				thres := orderedThreshold(x, y, n)
				spread := opt.spreadAt(tilePalIdx)
				px = colour.Add(px, colour.Muls(spread, thres))
			}

			quantized, idx := opt.quantize(px, tilePalIdx, x, y)
			if rawOut != nil {
				rawOut[y*w+x] = quantized
			}
			if indexOut != nil {
				indexOut[y*w+x] = byte(idx)
			}

			errv := colour.Sub(original, quantized)
			if opt.mode == ModeFloydSteinberg {
				diffuse(curLine, nextLine, x, w, colour.Muls(errv, opt.level))
			}

			sq := colour.Mul(errv, errv)
			rmse = colour.Add(rmse, sq)
		}

		if opt.mode == ModeFloydSteinberg {
			curLine, nextLine = nextLine, curLine
			for i := range nextLine {
				nextLine[i] = Vec4{}
			}
		}
	}

	n := float64(w * h)
	rmse = colour.Divs(rmse, n)
	return colour.Sqrt(rmse)
}

// diffuse distributes a Floyd-Steinberg error contribution with the
// classic 7/3/5/1-over-16 weights into the rolling scanline buffers,
// clipping against the image's left/right edges.
func diffuse(curLine, nextLine []Vec4, x, w int, errv Vec4) {
	if x+1 < w {
		curLine[x+1] = colour.Add(curLine[x+1], colour.Muls(errv, weightE))
		nextLine[x+1] = colour.Add(nextLine[x+1], colour.Muls(errv, weightSE))
	}
	if x > 0 {
		nextLine[x-1] = colour.Add(nextLine[x-1], colour.Muls(errv, weightSW))
	}
	nextLine[x] = colour.Add(nextLine[x], colour.Muls(errv, weightS))
}
