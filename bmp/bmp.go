// Package bmp reads standard Windows BMP files into tilequant's
// SourceImage shape and writes tilequant.Result back out as an 8-bit
// palettized BMP.
//
// Decode wraps golang.org/x/image/bmp, which already yields an
// *image.Paletted (intact index array + palette) for 8-bit input — exactly
// the (index array, indexed palette) source shape the pipeline wants, with
// no extra copy needed. Encode is hand-rolled against
// original_source/Bitmap.c's BmpCtx_ToFile: a 14-byte BITMAPFILEHEADER, a
// 40-byte BITMAPINFOHEADER, a fixed 256-entry BGRA8 palette, and row-major
// index bytes with no padding or bottom-up flip — matching the reference
// writer's layout exactly rather than the general BMP specification's
// row-stride padding.
package bmp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"golang.org/x/image/bmp"

	"github.com/Aikku93/tilequant"
	"github.com/Aikku93/tilequant/internal/pool"
)

const paletteColours = 256

// fileHeaderSize and infoHeaderSize are the BITMAPFILEHEADER and
// BITMAPINFOHEADER sizes in bytes.
const (
	fileHeaderSize = 14
	infoHeaderSize = 40
)

// Decode reads a BMP file into a tilequant.SourceImage. 8-bit palettized
// input is passed through as an indexed image (no RGBA expansion); all
// other bit depths are expanded to a direct BGRA8 buffer.
func Decode(r io.Reader) (tilequant.SourceImage, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return tilequant.SourceImage{}, fmt.Errorf("bmp: decode: %w", err)
	}

	if p, ok := img.(*image.Paletted); ok {
		return fromPaletted(p), nil
	}
	return fromGeneric(img), nil
}

// fromPaletted converts an *image.Paletted directly: its Pix is already
// the index array, and its palette entries become BGRA8 rows.
func fromPaletted(p *image.Paletted) tilequant.SourceImage {
	b := p.Bounds()
	w, h := b.Dx(), b.Dy()

	index := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(index[y*w:(y+1)*w], p.Pix[(y+b.Min.Y)*p.Stride+b.Min.X:][:w])
	}

	pal := make([][4]byte, len(p.Palette))
	for i, c := range p.Palette {
		r, g, bch, a := c.RGBA()
		pal[i] = [4]byte{byte(bch >> 8), byte(g >> 8), byte(r >> 8), byte(a >> 8)}
	}

	return tilequant.SourceImage{Width: w, Height: h, Index: index, Palette: pal}
}

// fromGeneric expands any other image.Image into a direct BGRA8 buffer.
func fromGeneric(img image.Image) tilequant.SourceImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*4)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bch, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			pix[i+0] = byte(bch >> 8)
			pix[i+1] = byte(g >> 8)
			pix[i+2] = byte(r >> 8)
			pix[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return tilequant.SourceImage{Width: w, Height: h, Pix: pix}
}

// EncodeResult writes r as an 8-bit palettized BMP of the given
// dimensions, a thin convenience wrapper over Encode.
func EncodeResult(w io.Writer, width, height int, r *tilequant.Result) error {
	return Encode(w, width, height, r.Index, r.Palette)
}

// Encode writes an 8-bit palettized BMP from a pipeline result. pal must
// hold at most 256 4-byte (or 3-byte, for RGB-only output) BGR(A) entries;
// shorter tables are zero-padded to 256 on disk, matching
// original_source/Bitmap.c's fixed-size palette write.
func Encode(w io.Writer, width, height int, index []byte, pal [][]byte) error {
	if len(index) != width*height {
		return fmt.Errorf("bmp: index length %d, want %d", len(index), width*height)
	}
	entrySize := 4
	if len(pal) > 0 {
		entrySize = len(pal[0])
	}

	paletteBytes := paletteColours * 4 // on-disk palette entries are always BGRA8
	offset := fileHeaderSize + infoHeaderSize + paletteBytes
	fileSize := offset + len(index)

	bw := bufio.NewWriter(w)

	writeFileHeader(bw, fileSize, offset)
	writeInfoHeader(bw, width, height)
	writePalette(bw, pal, entrySize)

	row := pool.GetRow(width)
	defer pool.PutRow(row)
	for y := 0; y < height; y++ {
		copy(row, index[y*width:(y+1)*width])
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("bmp: writing pixel data: %w", err)
		}
	}

	return bw.Flush()
}

func writeFileHeader(w *bufio.Writer, fileSize, dataOffset int) {
	var hdr [fileHeaderSize]byte
	hdr[0], hdr[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(hdr[2:], uint32(fileSize))
	binary.LittleEndian.PutUint32(hdr[10:], uint32(dataOffset))
	w.Write(hdr[:])
}

func writeInfoHeader(w *bufio.Writer, width, height int) {
	var hdr [infoHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], infoHeaderSize)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(width))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(height))
	binary.LittleEndian.PutUint16(hdr[12:], 1) // planes
	binary.LittleEndian.PutUint16(hdr[14:], 8) // bit count
	w.Write(hdr[:])
}

func writePalette(w *bufio.Writer, pal [][]byte, entrySize int) {
	var entry [4]byte
	for i := 0; i < paletteColours; i++ {
		entry = [4]byte{}
		if i < len(pal) {
			copy(entry[:], pal[i])
			if entrySize == 3 {
				entry[3] = 0
			}
		}
		w.Write(entry[:])
	}
}
