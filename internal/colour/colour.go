// Package colour implements the fixed-width BGRA colour vector arithmetic
// that the quantizer, tile builder, palette assembler, and ditherer all
// share. All channel ordering in this package and its callers is B, G, R, A
// — matching the byte layout of the BGRA8 pixel buffers the pipeline
// consumes.
package colour

import "math"

// Vec4 is a 4-component float colour vector in B, G, R, A channel order.
type Vec4 struct {
	B, G, R, A float64
}

// Add returns a+b.
func Add(a, b Vec4) Vec4 {
	return Vec4{a.B + b.B, a.G + b.G, a.R + b.R, a.A + b.A}
}

// Sub returns a-b.
func Sub(a, b Vec4) Vec4 {
	return Vec4{a.B - b.B, a.G - b.G, a.R - b.R, a.A - b.A}
}

// Mul returns the channelwise product a*b.
func Mul(a, b Vec4) Vec4 {
	return Vec4{a.B * b.B, a.G * b.G, a.R * b.R, a.A * b.A}
}

// Div returns the channelwise quotient a/b. Channels where b is exactly
// zero produce +Inf/-Inf/NaN per normal float division; use DivSafe when
// that is not acceptable.
func Div(a, b Vec4) Vec4 {
	return Vec4{a.B / b.B, a.G / b.G, a.R / b.R, a.A / b.A}
}

// DivSafe returns a/b channelwise, substituting the corresponding channel
// of fallback wherever b's channel is exactly zero.
func DivSafe(a, b, fallback Vec4) Vec4 {
	var out Vec4
	if b.B == 0 {
		out.B = fallback.B
	} else {
		out.B = a.B / b.B
	}
	if b.G == 0 {
		out.G = fallback.G
	} else {
		out.G = a.G / b.G
	}
	if b.R == 0 {
		out.R = fallback.R
	} else {
		out.R = a.R / b.R
	}
	if b.A == 0 {
		out.A = fallback.A
	} else {
		out.A = a.A / b.A
	}
	return out
}

// Adds returns a with scalar s added to every channel.
func Adds(a Vec4, s float64) Vec4 {
	return Vec4{a.B + s, a.G + s, a.R + s, a.A + s}
}

// Muls returns a scaled channelwise by s.
func Muls(a Vec4, s float64) Vec4 {
	return Vec4{a.B * s, a.G * s, a.R * s, a.A * s}
}

// Divs returns a divided channelwise by s.
func Divs(a Vec4, s float64) Vec4 {
	return Muls(a, 1/s)
}

// Abs returns the channelwise absolute value of x.
func Abs(x Vec4) Vec4 {
	return Vec4{math.Abs(x.B), math.Abs(x.G), math.Abs(x.R), math.Abs(x.A)}
}

// Sqrt returns the channelwise square root of x. Negative channels (which
// should not occur on well-formed inputs) produce NaN, matching sqrtf.
func Sqrt(x Vec4) Vec4 {
	return Vec4{math.Sqrt(x.B), math.Sqrt(x.G), math.Sqrt(x.R), math.Sqrt(x.A)}
}

// SignedSquare returns x*|x| channelwise, preserving sign.
func SignedSquare(x Vec4) Vec4 {
	return Vec4{
		x.B * math.Abs(x.B),
		x.G * math.Abs(x.G),
		x.R * math.Abs(x.R),
		x.A * math.Abs(x.A),
	}
}

// SignedSqrt returns sign(x)*sqrt(|x|) channelwise.
func SignedSqrt(x Vec4) Vec4 {
	ss := func(v float64) float64 {
		if v < 0 {
			return -math.Sqrt(-v)
		}
		return math.Sqrt(v)
	}
	return Vec4{ss(x.B), ss(x.G), ss(x.R), ss(x.A)}
}

// Dot returns the 4-component dot product of a and b.
func Dot(a, b Vec4) float64 {
	return a.B*b.B + a.G*b.G + a.R*b.R + a.A*b.A
}

// Len2 returns the squared length of x.
func Len2(x Vec4) float64 { return Dot(x, x) }

// Len returns the length of x.
func Len(x Vec4) float64 { return math.Sqrt(Len2(x)) }

// Sum returns the sum of x's channels (the L1 norm when x is already
// non-negative, e.g. the result of Abs).
func Sum(x Vec4) float64 { return x.B + x.G + x.R + x.A }

// Clip clamps every channel of x to [lo, hi].
func Clip(x Vec4, lo, hi float64) Vec4 {
	clip1 := func(v float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return Vec4{clip1(x.B), clip1(x.G), clip1(x.R), clip1(x.A)}
}

// Range holds the per-channel quantization maxima for BGRA8-style output,
// e.g. {31, 31, 31, 1} for 5-5-5-1 colour.
type Range struct {
	B, G, R, A int
}

// FromU8 converts a BGRA8-ish integer pixel (channel values already in
// [0, range]) to the [0,1]-normalized float representation.
func FromU8(px [4]int, r Range) Vec4 {
	return Vec4{
		B: float64(px[0]) / float64(r.B),
		G: float64(px[1]) / float64(r.G),
		R: float64(px[2]) / float64(r.R),
		A: float64(px[3]) / float64(r.A),
	}
}

// ToU8 converts a [0,1]-normalized float pixel to an integer pixel clipped
// to [0, range] per channel: q = clip(round(f*range), 0, range).
func ToU8(f Vec4, r Range) [4]int {
	round := func(v float64, max int) int {
		q := int(math.Round(v * float64(max)))
		if q < 0 {
			return 0
		}
		if q > max {
			return max
		}
		return q
	}
	return [4]int{round(f.B, r.B), round(f.G, r.G), round(f.R, r.R), round(f.A, r.A)}
}

// ToFloat converts an integer pixel already in the given range back to its
// [0,1]-normalized float representation: f = q/range. This is the inverse
// of the rounding half of ToU8 (information lost to rounding is not
// recovered).
func ToFloat(q [4]int, r Range) Vec4 {
	return Vec4{
		B: float64(q[0]) / float64(r.B),
		G: float64(q[1]) / float64(r.G),
		R: float64(q[2]) / float64(r.R),
		A: float64(q[3]) / float64(r.A),
	}
}

// YUV rotation coefficients (BT.709), matching the constants the quantizer,
// palette assembler, and ditherer must all agree on. RGB is the working
// colour in a Vec4's G,R,B-labelled fields reinterpreted as plain R,G,B —
// see AsYUV/FromYUV below for the actual field mapping used in this package:
// a Vec4 in YUV space stores Y in B, U in G, V in R, and passes A through.
const (
	yR, yG, yB = 0.2126, 0.7152, 0.0722
	uR, uG, uB = -0.1146, -0.3854, 0.5
	vR, vG, vB = 0.5, -0.4542, -0.0458
)

// AsYUV converts an RGBA colour (stored B,G,R,A per this package's
// convention) into YUV space, stored as Y,U,V,A in the same B,G,R,A fields
// so that downstream code can treat a Vec4 uniformly regardless of space.
func AsYUV(c Vec4) Vec4 {
	return Vec4{
		B: yR*c.R + yG*c.G + yB*c.B, // Y
		G: uR*c.R + uG*c.G + uB*c.B, // U
		R: vR*c.R + vG*c.G + vB*c.B, // V
		A: c.A,
	}
}

// FromYUV is the inverse of AsYUV: it expects Y,U,V,A in the B,G,R,A fields
// and returns R,G,B,A in the same fields. The matrix is the analytic
// inverse of AsYUV's forward matrix.
func FromYUV(c Vec4) Vec4 {
	y, u, v, a := c.B, c.G, c.R, c.A
	return Vec4{
		R: y + 1.5748*v,
		G: y - 0.1873*u - 0.4681*v,
		B: y + 1.8556*u,
		A: a,
	}
}

// Distance returns the squared Euclidean colour distance between a and b:
// d = a-b; return dot(d,d).
func Distance(a, b Vec4) float64 {
	d := Sub(a, b)
	return Len2(d)
}

// WeightedDistance returns the perceptually weighted squared colour
// distance used throughout the quantizer: the raw per-channel error is
// scaled by (1+|dY|)*(1+|dA|) before squaring. a and b are expected to
// already be in YUV space (Y in the B field, A untouched) so that dY/dA
// refer to luma and alpha specifically. The (1+|dY|)*(1+|dA|) factor is a
// pre-tuned perceptual weight from the reference implementation; it is not
// derived from first principles.
func WeightedDistance(a, b Vec4) float64 {
	d := Sub(a, b)
	w := (1 + math.Abs(d.B)) * (1 + math.Abs(d.A))
	d = Muls(d, w)
	return Dot(d, d)
}
