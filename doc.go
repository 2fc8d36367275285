// Package tilequant computes tile-constrained colour palettizations of a
// raster image for retro display hardware: given a source image and a
// palette budget (N palettes of M colours, W×H tiles, a per-channel bit
// depth), it assigns every tile to one palette group, resolves each
// group's representative colours, and maps every pixel to a final
// palette-entry index under an optional dithering strategy.
//
// The pipeline is a two-stage vector quantizer (internal/quant) coupled
// to a dithering stage (internal/dither): tiles are first clustered into
// palette groups by a chroma-normalized signature (internal/tiles), each
// group's member pixels are then quantized independently into that
// group's palette (internal/palette), and finally every source pixel is
// mapped to its resolved index (internal/dither).
//
// Basic usage:
//
//	result, err := tilequant.Run(img, tilequant.Config{
//		NPalettes:   16,
//		PaletteSize: 16,
//		TileW:       8,
//		TileH:       8,
//		BitRange:    [4]int{31, 31, 31, 1},
//		DitherMode:  tilequant.DitherFloydSteinberg,
//		DitherLevel: 1.0,
//	})
package tilequant
