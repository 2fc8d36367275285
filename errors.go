package tilequant

import "errors"

// Errors returned by Run. Per the error-handling design, Run never panics
// on malformed-but-reachable input; it returns one of these wrapped with
// additional detail via fmt.Errorf's %w.
var (
	// ErrInvalidDimensions is returned when the image width or height is
	// not evenly divisible by the configured tile size, or either is
	// non-positive.
	ErrInvalidDimensions = errors.New("tilequant: image dimensions not divisible by tile size")

	// ErrInvalidConfig is returned when NPalettes, PaletteSize, the
	// reserved-slot count, or a bit-range channel is out of range.
	ErrInvalidConfig = errors.New("tilequant: invalid configuration")

	// ErrInvalidSource is returned when a SourceImage's Pix/Index/Palette
	// fields are inconsistent with its declared dimensions.
	ErrInvalidSource = errors.New("tilequant: invalid source image")
)
