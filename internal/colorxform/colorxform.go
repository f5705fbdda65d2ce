// Package colorxform implements the colour transforms used by the
// codestream engine: the reversible YCoCg-R transform used ahead of
// Modular coding, and the XYB opsin transform used by VarDCT when
// configured for perceptually-tuned lossy coding.
package colorxform

import "math"

// ChromaOffset is added to Co/Cg so the signed transform output fits the
// unsigned u16 channel buffer described by the channel-plane data model.
const ChromaOffset = 32768

// ForwardRCT applies the reversible colour transform (YCoCg-R) in place.
// r, g, b must have equal length; on return r holds Y, g holds Co+offset,
// b holds Cg+offset.
func ForwardRCT(r, g, b []int32) {
	for i := range r {
		co := r[i] - b[i]
		t := b[i] + (co >> 1)
		cg := g[i] - t
		y := t + (cg >> 1)

		r[i] = y
		g[i] = co + ChromaOffset
		b[i] = cg + ChromaOffset
	}
}

// InverseRCT reverses ForwardRCT in place. y, co, cg are passed exactly
// as ForwardRCT left them (this function subtracts ChromaOffset from the
// chroma planes itself); on return y holds R, co holds G, cg holds B.
func InverseRCT(y, co, cg []int32) {
	for i := range y {
		cgv := cg[i] - ChromaOffset
		cov := co[i] - ChromaOffset
		t := y[i] - (cgv >> 1)
		g := cgv + t
		b := t - (cov >> 1)
		r := cov + b

		y[i] = r
		co[i] = g
		cg[i] = b
	}
}

// opsinAbsorbance is the fixed 3x3 absorbance matrix mapping linear RGB
// to the LMS-like opsin space, applied before the cube-root transfer.
var opsinAbsorbance = [3][3]float64{
	{0.30, 0.622, 0.078},
	{0.23, 0.692, 0.078},
	{0.24, 0.204, 0.556},
}

// opsinBias is added to each absorbance-space component before the
// cube-root transfer, keeping the argument strictly positive.
const opsinBias = 0.0037930734

// ForwardXYB converts a linear RGB triple in [0,1] to XYB.
func ForwardXYB(r, g, b float64) (x, y, bb float64) {
	l := opsinAbsorbance[0][0]*r + opsinAbsorbance[0][1]*g + opsinAbsorbance[0][2]*b + opsinBias
	m := opsinAbsorbance[1][0]*r + opsinAbsorbance[1][1]*g + opsinAbsorbance[1][2]*b + opsinBias
	s := opsinAbsorbance[2][0]*r + opsinAbsorbance[2][1]*g + opsinAbsorbance[2][2]*b + opsinBias

	lp := math.Cbrt(l)
	mp := math.Cbrt(m)
	sp := math.Cbrt(s)

	x = (lp - mp) / 2
	y = (lp + mp) / 2
	bb = sp
	return x, y, bb
}

// opsinAbsorbanceInverse is the matrix inverse of opsinAbsorbance,
// precomputed so InverseXYB avoids a runtime 3x3 solve per pixel.
var opsinAbsorbanceInverse = invert3x3(opsinAbsorbance)

// InverseXYB reverses ForwardXYB, returning a linear RGB triple in [0,1].
func InverseXYB(x, y, b float64) (r, g, bl float64) {
	lp := y + x
	mp := y - x
	sp := b

	l := lp*lp*lp - opsinBias
	m := mp*mp*mp - opsinBias
	s := sp*sp*sp - opsinBias

	inv := opsinAbsorbanceInverse
	r = inv[0][0]*l + inv[0][1]*m + inv[0][2]*s
	g = inv[1][0]*l + inv[1][1]*m + inv[1][2]*s
	bl = inv[2][0]*l + inv[2][1]*m + inv[2][2]*s
	return r, g, bl
}

// invert3x3 computes the matrix inverse via the adjugate/determinant
// method; opsinAbsorbance is fixed and well-conditioned so no pivoting
// is needed.
func invert3x3(m [3][3]float64) [3][3]float64 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])

	var inv [3][3]float64
	invDet := 1 / det
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet
	return inv
}

// ycbcr601Half centers Cb/Cr around zero for a float sample range of
// [0,1], matching how ForwardYCbCr601/InverseYCbCr601 operate on
// normalised linear samples rather than a fixed-precision integer range.
const ycbcr601Half = 0.5

// ForwardYCbCr601 converts an sRGB triple in [0,1] to ITU-R BT.601 YCbCr,
// the non-XYB colour path VarDCT falls back to when UseXYBColorSpace is
// not set.
func ForwardYCbCr601(r, g, b float64) (y, cb, cr float64) {
	y = 0.299*r + 0.587*g + 0.114*b
	cb = -0.168736*r - 0.331264*g + 0.5*b + ycbcr601Half
	cr = 0.5*r - 0.418688*g - 0.081312*b + ycbcr601Half
	return y, cb, cr
}

// InverseYCbCr601 reverses ForwardYCbCr601 with the BT.601-5 inverse
// matrix coefficients.
func InverseYCbCr601(y, cb, cr float64) (r, g, b float64) {
	cbv := cb - ycbcr601Half
	crv := cr - ycbcr601Half
	r = y + 1.402*crv
	g = y - 0.344136*cbv - 0.714136*crv
	b = y + 1.772*cbv
	return r, g, b
}

// ShouldApplyRCT reports whether the reversible colour transform applies
// to a channel count — 3 or 4 channels (the 4th being untouched alpha).
func ShouldApplyRCT(channels int) bool {
	return channels == 3 || channels == 4
}

// ClampInt32 clamps v to [lo, hi].
func ClampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
