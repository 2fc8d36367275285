// Package pool provides bucketed sync.Pool allocations for this module's
// two per-image scratch buffers: bmp.Encode's per-row pixel-index buffer
// and palette.assembleGroup's per-group cluster-assignment array. Both are
// taken once per Encode call or per palette group and returned when done;
// bucket sizes are tuned to those two call sites rather than a generic
// size ladder, since this is not a general-purpose allocator.
package pool

import "sync"

// Row buffers are one tilequant.SourceImage row wide (bmp.Encode writes
// index bytes one scanline at a time), so they rarely exceed a few
// hundred bytes for the small tile-grid images this pipeline targets.
// Assignment arrays are one int32 per member pixel of a palette group
// (palette.assembleGroup); a single dominant group can still own most of
// a large image, so that bucket ladder tops out much higher.
const (
	rowSmall = 256  // a narrow tile row
	rowWide  = 4096 // a wide scanline

	assignSmall = 4096    // a small or lightly populated palette group
	assignLarge = 1 << 20 // a group spanning most of a large image
)

var rowPools = [2]sync.Pool{
	{New: func() any { b := make([]byte, rowSmall); return &b }},
	{New: func() any { b := make([]byte, rowWide); return &b }},
}

var assignPools = [2]sync.Pool{
	{New: func() any { s := make([]int32, assignSmall); return &s }},
	{New: func() any { s := make([]int32, assignLarge); return &s }},
}

func rowBucket(size int) int {
	if size <= rowSmall {
		return 0
	}
	return 1
}

func assignBucket(length int) int {
	if length <= assignSmall {
		return 0
	}
	return 1
}

// GetRow returns a scratch byte slice of length width for bmp.Encode's
// per-row index write. The caller must call PutRow when done.
func GetRow(width int) []byte {
	idx := rowBucket(width)
	bp := rowPools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < width {
		b = make([]byte, width)
		*bp = b
		return b
	}
	return b[:width]
}

// PutRow returns a slice obtained from GetRow to the pool. Slices smaller
// than rowSmall are not pooled.
func PutRow(row []byte) {
	c := cap(row)
	if c < rowSmall {
		return
	}
	idx := rowBucket(c)
	rowPools[idx].Put(&row)
}

// GetAssignments returns a zeroed int32 slice of the given length for
// palette.assembleGroup's per-pixel cluster assignments. The caller must
// call PutAssignments when done.
func GetAssignments(length int) []int32 {
	idx := assignBucket(length)
	sp := assignPools[idx].Get().(*[]int32)
	s := *sp
	if cap(s) < length {
		s = make([]int32, length)
		*sp = s
		return s
	}
	s = s[:length]
	for i := range s {
		s[i] = 0
	}
	return s
}

// PutAssignments returns a slice obtained from GetAssignments to the
// pool. Slices smaller than assignSmall are not pooled.
func PutAssignments(s []int32) {
	c := cap(s)
	if c < assignSmall {
		return
	}
	idx := assignBucket(c)
	assignPools[idx].Put(&s)
}
