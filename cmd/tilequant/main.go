// Command tilequant converts a BMP image into a tile-constrained,
// palettized BMP suitable for retro display hardware.
//
// Usage:
//
//	tilequant input.bmp output.bmp [flags]
//
// Flags use the reference CLI's colon syntax (-flag:value) rather than
// the standard library flag package's space/equals syntax, since that is
// the external interface this front-end is specified against.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Aikku93/tilequant"
	"github.com/Aikku93/tilequant/bmp"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, inPath, outPath, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilequant: %v\n", err)
		return 1
	}

	in, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilequant: opening %s: %v\n", inPath, err)
		return -1
	}
	defer in.Close()

	img, err := bmp.Decode(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilequant: decoding %s: %v\n", inPath, err)
		return -1
	}

	result, err := tilequant.Run(img, opts.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilequant: %v\n", err)
		return -1
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilequant: creating %s: %v\n", outPath, err)
		return -1
	}
	defer out.Close()

	if err := bmp.EncodeResult(out, img.Width, img.Height, result); err != nil {
		fmt.Fprintf(os.Stderr, "tilequant: writing %s: %v\n", outPath, err)
		return -1
	}

	printPSNR(result)
	return 0
}

// options collects the parsed CLI flags into the pipeline's Config,
// substituting reference defaults for anything the user did not set.
type options struct {
	cfg tilequant.Config
}

func defaultOptions() options {
	return options{cfg: tilequant.Config{
		NPalettes:     16,
		PaletteSize:   16,
		TileW:         8,
		TileH:         8,
		BitRange:      [4]int{31, 31, 31, 1},
		DitherMode:    tilequant.DitherNone,
		DitherLevel:   1.0,
	}}
}

// parseArgs parses the reference CLI's colon-delimited flags
// (-np:N, -ps:N, -tw:N, -th:N, -bgra:XXXX, -dither:{none|floyd|ordN}[,level],
// -tilepasses:N, -colourpasses:N) plus the two positional file arguments.
func parseArgs(args []string) (options, string, string, error) {
	opts := defaultOptions()
	var positional []string

	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			continue
		}
		name, value, ok := strings.Cut(arg[1:], ":")
		if !ok {
			return opts, "", "", fmt.Errorf("malformed flag %q (want -name:value)", arg)
		}
		if err := applyFlag(&opts.cfg, name, value); err != nil {
			return opts, "", "", err
		}
	}

	if len(positional) != 2 {
		return opts, "", "", fmt.Errorf("usage: tilequant input.bmp output.bmp [flags]")
	}
	return opts, positional[0], positional[1], nil
}

func applyFlag(cfg *tilequant.Config, name, value string) error {
	atoi := func() (int, error) { return strconv.Atoi(value) }

	switch name {
	case "np":
		n, err := atoi()
		if err != nil {
			return fmt.Errorf("-np: %w", err)
		}
		cfg.NPalettes = n
	case "ps":
		n, err := atoi()
		if err != nil {
			return fmt.Errorf("-ps: %w", err)
		}
		cfg.PaletteSize = n
	case "tw":
		n, err := atoi()
		if err != nil {
			return fmt.Errorf("-tw: %w", err)
		}
		cfg.TileW = n
	case "th":
		n, err := atoi()
		if err != nil {
			return fmt.Errorf("-th: %w", err)
		}
		cfg.TileH = n
	case "bgra":
		r, err := parseBitRange(value)
		if err != nil {
			return fmt.Errorf("-bgra: %w", err)
		}
		cfg.BitRange = r
	case "dither":
		mode, level, err := parseDither(value)
		if err != nil {
			return fmt.Errorf("-dither: %w", err)
		}
		cfg.DitherMode = mode
		cfg.DitherLevel = level
	case "tilepasses":
		n, err := atoi()
		if err != nil {
			return fmt.Errorf("-tilepasses: %w", err)
		}
		cfg.TileClusterPasses = n
	case "colourpasses":
		n, err := atoi()
		if err != nil {
			return fmt.Errorf("-colourpasses: %w", err)
		}
		cfg.ColourClusterPasses = n
	default:
		return fmt.Errorf("unrecognized flag -%s", name)
	}
	return nil
}

// parseBitRange parses "-bgra:XXXX": four decimal digits, one bit depth
// per channel in fixed B,G,R,A order (e.g. "5551" -> {31,31,31,1}).
func parseBitRange(value string) ([4]int, error) {
	var r [4]int
	if len(value) != 4 {
		return r, fmt.Errorf("want four digits (e.g. 5551), got %q", value)
	}
	for i, ch := range value {
		if ch < '0' || ch > '9' {
			return r, fmt.Errorf("non-digit channel depth in %q", value)
		}
		bits := int(ch - '0')
		r[i] = (1 << bits) - 1
	}
	return r, nil
}

// parseDither parses "-dither:{none|floyd|ordN}[,level]".
func parseDither(value string) (tilequant.DitherMode, float64, error) {
	spec, levelStr, hasLevel := strings.Cut(value, ",")

	var mode tilequant.DitherMode
	var defaultLevel float64
	switch {
	case spec == "none":
		mode, defaultLevel = tilequant.DitherNone, 0
	case spec == "floyd":
		mode, defaultLevel = tilequant.DitherFloydSteinberg, 1.0
	case strings.HasPrefix(spec, "ord"):
		n, err := strconv.Atoi(strings.TrimPrefix(spec, "ord"))
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("bad ordered-dither order in %q", spec)
		}
		mode, defaultLevel = tilequant.DitherMode(n), 0.5
	default:
		return 0, 0, fmt.Errorf("unrecognized dither mode %q", spec)
	}

	level := defaultLevel
	if hasLevel {
		v, err := strconv.ParseFloat(levelStr, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("bad dither level in %q", value)
		}
		level = v
	}
	return mode, level, nil
}

// printPSNR reports per-channel PSNR the way the reference CLI does.
func printPSNR(r *tilequant.Result) {
	p := r.PSNR()
	fmt.Printf("PSNR = {%.3fdB, %.3fdB, %.3fdB, %.3fdB}\n", p.B, p.G, p.R, p.A)
}
