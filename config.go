package tilequant

import "github.com/Aikku93/tilequant/internal/dither"

// DitherMode selects the dithering strategy applied both ahead of tile
// extraction (the pre-dither pass) and during final index resolution.
// Zero is "none", -1 is Floyd-Steinberg, and any n >= 1 selects recursive
// ordered (Bayer) dithering of order n (a 2^n x 2^n threshold matrix).
type DitherMode int

const (
	DitherNone           DitherMode = 0
	DitherFloydSteinberg DitherMode = -1
)

func (m DitherMode) internal() dither.Mode { return dither.Mode(m) }

// Config configures one Run invocation.
type Config struct {
	// NPalettes is the number of palette groups (1-16 typical).
	NPalettes int
	// PaletteSize is the number of entries per group, reserved slots
	// inclusive.
	PaletteSize int
	// ReservedSlots is the count of leading per-group entries pinned to
	// (0,0,0,0). The last of them (index ReservedSlots-1) is still searched
	// during dithering; the earlier ones are not.
	ReservedSlots int

	// TileW, TileH are the tile dimensions; they must evenly divide the
	// image.
	TileW, TileH int

	// BitRange gives the per-channel output quantization maxima in B, G,
	// R, A order (e.g. {31,31,31,1} for 5-5-5-1 colour).
	BitRange [4]int

	// DitherMode and DitherLevel configure both the pre-dither pass and
	// the final index-resolution pass. Reference defaults: level 1.0 for
	// Floyd-Steinberg, 0.5 for ordered dithering.
	DitherMode  DitherMode
	DitherLevel float64

	// TileClusterPasses and ColourClusterPasses are the quantizer
	// refinement-pass counts for the tile-signature and per-group pixel
	// quantization stages, respectively. 0 substitutes the quantizer's
	// default (16).
	TileClusterPasses, ColourClusterPasses int

	// NoAlphaDither zeroes the alpha channel of every dither perturbation
	// (the reference's DITHER_NO_ALPHA policy).
	NoAlphaDither bool

	// OutputPalette24BitRGB packs the returned palette as 3 bytes per
	// entry (no alpha byte) instead of 4.
	OutputPalette24BitRGB bool
}

// SourceImage is the pipeline's input: either a direct BGRA8 pixel buffer
// (Pix) or an indexed 8-bit image (Index + Palette). Exactly one of Pix or
// Index must be set.
type SourceImage struct {
	Width, Height int

	// Pix holds Width*Height pixels, 4 bytes each in B, G, R, A order.
	// Nil when the image is indexed.
	Pix []byte

	// Index holds Width*Height palette-entry indices. Palette holds up to
	// 256 BGRA8 entries, indexed by Index's byte values. Both nil when
	// the image is a direct Pix buffer.
	Index   []byte
	Palette [][4]byte
}
