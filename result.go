package tilequant

import (
	"math"

	"github.com/Aikku93/tilequant/internal/colour"
)

// Result is the pipeline's output.
type Result struct {
	// Index holds Width*Height bytes; each value is
	// paletteGroup*PaletteSize + entry.
	Index []byte

	// Palette holds NPalettes*PaletteSize real entries followed by zero
	// padding out to 256 total entries, for 8-bit BMP compatibility. Each
	// entry is B, G, R, A (or B, G, R when Config.OutputPalette24BitRGB is
	// set, in which case every entry is 3 bytes). Channel values are on the
	// 0..255 scale: each is rounded to Config.BitRange and expanded back.
	Palette [][]byte

	// TileMap holds each tile's resolved palette-group index, row-major
	// over the tile grid, length (Width/TileW)*(Height/TileH).
	TileMap []int32

	// RMSE is the per-channel root-mean-square error against the original
	// image, measured in the pipeline's working colour space (YUV: Y, U,
	// V, A in the B, G, R, A fields, per this module's Vec4 convention).
	RMSE colour.Vec4
}

// PSNR returns the per-channel peak signal-to-noise ratio derived from
// RMSE, reported the way the CLI front-end prints it:
// -20*log10(rmse) dB per channel (RMSE is already normalized to [0,1],
// so no division by 255 is needed). A channel with zero error reports
// +Inf.
func (r *Result) PSNR() colour.Vec4 {
	db := func(v float64) float64 {
		if v == 0 {
			return math.Inf(1)
		}
		return -20 * math.Log10(v)
	}
	return colour.Vec4{
		B: db(r.RMSE.B),
		G: db(r.RMSE.G),
		R: db(r.RMSE.R),
		A: db(r.RMSE.A),
	}
}
