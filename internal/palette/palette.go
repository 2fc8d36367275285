// Package palette assembles the final tile-constrained palette table: it
// clusters tile signatures into palette groups, then clusters each group's
// member pixels independently to produce that group's palette entries.
//
// Grounded on original_source/src/tiles.c (TilesData_QuantizePalettes).
package palette

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Aikku93/tilequant/internal/colour"
	"github.com/Aikku93/tilequant/internal/pool"
	"github.com/Aikku93/tilequant/internal/quant"
	"github.com/Aikku93/tilequant/internal/tiles"
)

// Vec4 is a local alias so this package reads naturally against the
// reference's BGRAf_t.
type Vec4 = colour.Vec4

// Options configures palette assembly.
type Options struct {
	NPalettes, PaletteSize int
	// Reserved is the count of leading per-group palette entries left as
	// zero vectors and excluded from clustering input and output; used for
	// e.g. a transparent/background slot.
	Reserved int
	TileClusterPasses, ColourClusterPasses int
}

// Assemble clusters a.Signatures into opt.NPalettes groups (writing the
// result into a.TileMap), then clusters each group's member pixels
// independently into opt.PaletteSize-opt.Reserved centroids. It returns
// the flattened palette table, length NPalettes*PaletteSize, with each
// group's first Reserved entries zeroed.
//
// Groups are quantized concurrently via errgroup, since each writes to a
// disjoint slice of the output table and reads only its own gathered
// pixels.
func Assemble(a *tiles.Arena, opt Options) []Vec4 {
	quant.Quantize(a.Signatures, opt.NPalettes, opt.TileClusterPasses, a.TileMap)

	out := make([]Vec4, opt.NPalettes*opt.PaletteSize)
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < opt.NPalettes; i++ {
		i := i
		g.Go(func() error {
			assembleGroup(a, opt, i, out)
			return nil
		})
	}
	g.Wait()
	return out
}

// assembleGroup gathers group i's member pixels (skipping alpha=0 pixels
// when Reserved > 0, since those are handled by the reserved slot
// instead), quantizes them, and writes the resolved centroids into out at
// group i's slice.
func assembleGroup(a *tiles.Arena, opt Options, group int, out []Vec4) {
	base := group * opt.PaletteSize
	k := opt.PaletteSize - opt.Reserved
	if k < 1 {
		k = 1
	}

	pixels := gatherMembers(a, group, opt.Reserved != 0)
	if len(pixels) == 0 {
		return
	}

	assignments := pool.GetAssignments(len(pixels))
	defer pool.PutAssignments(assignments)
	centroids := quant.Quantize(pixels, k, opt.ColourClusterPasses, assignments)
	if len(centroids) == 0 {
		return
	}

	for n := 0; n < k; n++ {
		var c Vec4
		if n < len(centroids) {
			c = centroids[n]
		} else {
			c = centroids[len(centroids)-1]
		}
		out[base+opt.Reserved+n] = c
	}
}

// gatherMembers collects every pixel belonging to tiles assigned to group,
// in tile-then-pixel order, optionally skipping fully transparent pixels.
func gatherMembers(a *tiles.Arena, group int, skipTransparent bool) []Vec4 {
	var out []Vec4
	for ty := 0; ty < a.TilesY; ty++ {
		for tx := 0; tx < a.TilesX; tx++ {
			idx := a.TileIndex(tx, ty)
			if int(a.TileMap[idx]) != group {
				continue
			}
			for py := 0; py < a.TileH; py++ {
				row := (ty*a.TileH+py)*a.Width + tx*a.TileW
				for px := 0; px < a.TileW; px++ {
					p := a.Pixels[row+px]
					if skipTransparent && p.A == 0 {
						continue
					}
					out = append(out, p)
				}
			}
		}
	}
	return out
}
