package tilequant

import (
	"fmt"

	"github.com/Aikku93/tilequant/internal/colour"
	"github.com/Aikku93/tilequant/internal/dither"
	"github.com/Aikku93/tilequant/internal/palette"
	"github.com/Aikku93/tilequant/internal/tiles"
)

// paletteEntries is the fixed palette table size BMP-8 compatibility
// requires: every 8-bit BMP carries a full 256-entry palette.
const paletteEntries = 256

// Run executes the full pipeline: tile extraction (preceded by a
// pre-dither pass that range-reduces every pixel to BitRange), two-stage
// palette assembly, and final index resolution.
func Run(img SourceImage, cfg Config) (*Result, error) {
	if err := validate(img, cfg); err != nil {
		return nil, err
	}

	raw, err := expand(img)
	if err != nil {
		return nil, err
	}

	bitRange := colour.Range{B: cfg.BitRange[0], G: cfg.BitRange[1], R: cfg.BitRange[2], A: cfg.BitRange[3]}

	arena := tiles.Build(raw, img.Width, img.Height, tiles.Options{
		TileW:          cfg.TileW,
		TileH:          cfg.TileH,
		PreDither:      cfg.DitherMode.internal(),
		PreDitherLevel: cfg.DitherLevel,
		BitRange:       bitRange,
		NoAlpha:        cfg.NoAlphaDither,
	})

	paletteYUV := palette.Assemble(arena, palette.Options{
		NPalettes:           cfg.NPalettes,
		PaletteSize:         cfg.PaletteSize,
		Reserved:            cfg.ReservedSlots,
		TileClusterPasses:   cfg.TileClusterPasses,
		ColourClusterPasses: cfg.ColourClusterPasses,
	})

	originalYUV := make([]colour.Vec4, len(raw))
	for i, px := range raw {
		originalYUV[i] = colour.AsYUV(px)
	}

	index := make([]byte, img.Width*img.Height)
	rmse := dither.Tile(originalYUV, dither.TileOptions{
		Width:       img.Width,
		Height:      img.Height,
		TileW:       cfg.TileW,
		TileH:       cfg.TileH,
		NPalettes:   cfg.NPalettes,
		PaletteSize: cfg.PaletteSize,
		Reserved:    cfg.ReservedSlots,
		TileMap:     arena.TileMap,
		Palette:     paletteYUV,
		Mode:        cfg.DitherMode.internal(),
		Level:       cfg.DitherLevel,
		NoAlpha:     cfg.NoAlphaDither,
	}, index)

	return &Result{
		Index:   index,
		Palette: packPalette(paletteYUV, bitRange, cfg.OutputPalette24BitRGB),
		TileMap: arena.TileMap,
		RMSE:    rmse,
	}, nil
}

// validate checks dimension and configuration invariants ahead of any
// allocation, matching the "Input rejected" error class: output buffers
// are never touched on failure.
func validate(img SourceImage, cfg Config) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: width=%d height=%d", ErrInvalidDimensions, img.Width, img.Height)
	}
	if cfg.TileW <= 0 || cfg.TileH <= 0 || img.Width%cfg.TileW != 0 || img.Height%cfg.TileH != 0 {
		return fmt.Errorf("%w: %dx%d not divisible by tile %dx%d", ErrInvalidDimensions, img.Width, img.Height, cfg.TileW, cfg.TileH)
	}
	if cfg.NPalettes < 1 || cfg.PaletteSize < 1 || cfg.ReservedSlots < 0 || cfg.ReservedSlots >= cfg.PaletteSize {
		return fmt.Errorf("%w: nPalettes=%d paletteSize=%d reserved=%d", ErrInvalidConfig, cfg.NPalettes, cfg.PaletteSize, cfg.ReservedSlots)
	}
	for _, v := range cfg.BitRange {
		if v < 1 {
			return fmt.Errorf("%w: bit range channel must be >= 1, got %v", ErrInvalidConfig, cfg.BitRange)
		}
	}
	if img.Pix == nil && img.Index == nil {
		return fmt.Errorf("%w: neither Pix nor Index is set", ErrInvalidSource)
	}
	if img.Pix != nil && len(img.Pix) != img.Width*img.Height*4 {
		return fmt.Errorf("%w: Pix length %d, want %d", ErrInvalidSource, len(img.Pix), img.Width*img.Height*4)
	}
	if img.Index != nil && len(img.Index) != img.Width*img.Height {
		return fmt.Errorf("%w: Index length %d, want %d", ErrInvalidSource, len(img.Index), img.Width*img.Height)
	}
	return nil
}

// expand converts a SourceImage into a plain (non-YUV) [0,1]-normalized
// float buffer, row-major, one Vec4 per pixel. Indexed images are
// resolved through their palette; out-of-range index bytes resolve to
// (0,0,0,0).
func expand(img SourceImage) ([]colour.Vec4, error) {
	n := img.Width * img.Height
	out := make([]colour.Vec4, n)
	full := colour.Range{B: 255, G: 255, R: 255, A: 255}

	if img.Pix != nil {
		for i := 0; i < n; i++ {
			p := img.Pix[i*4 : i*4+4]
			out[i] = colour.FromU8([4]int{int(p[0]), int(p[1]), int(p[2]), int(p[3])}, full)
		}
		return out, nil
	}

	for i, idx := range img.Index {
		if int(idx) >= len(img.Palette) {
			continue
		}
		p := img.Palette[idx]
		out[i] = colour.FromU8([4]int{int(p[0]), int(p[1]), int(p[2]), int(p[3])}, full)
	}
	return out, nil
}

// packPalette converts the resolved YUV-space palette back to RGB, rounds
// it to bitRange and expands each channel back to the 0..255 scale, padding
// the flattened table out to the fixed 256-entry BMP-8 size.
func packPalette(paletteYUV []colour.Vec4, bitRange colour.Range, rgbOnly bool) [][]byte {
	entrySize := 4
	if rgbOnly {
		entrySize = 3
	}
	out := make([][]byte, paletteEntries)
	for i := range out {
		out[i] = make([]byte, entrySize)
	}
	for i, yuv := range paletteYUV {
		if i >= paletteEntries {
			break
		}
		rgb := colour.FromYUV(yuv)
		q := colour.ToU8(rgb, bitRange)
		rng := [4]int{bitRange.B, bitRange.G, bitRange.R, bitRange.A}
		for c := range q {
			q[c] = (q[c]*255 + rng[c]/2) / rng[c]
		}
		out[i][0], out[i][1], out[i][2] = byte(q[0]), byte(q[1]), byte(q[2])
		if !rgbOnly {
			out[i][3] = byte(q[3])
		}
	}
	return out
}
