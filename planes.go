package jxl

import (
	"math"

	"github.com/jxlgo/jxl/internal/colorxform"
	"github.com/jxlgo/jxl/internal/modular"
)

// colorScale maps a normalised [0,1] colour-transform output onto the
// sample magnitude VarDCT's distance/quantisation model is calibrated
// against (internal/vardct's own tests exercise samples in roughly a
// 0..255 range), so the same Distance value behaves consistently
// whether BitsPerSample is 8 or 16.
const colorScale = 255.0

// maxSampleValue returns the largest representable sample for a bit
// depth, e.g. 255 for 8 bits, 65535 for 16 bits.
func maxSampleValue(bits uint8) uint32 {
	if bits >= 32 {
		return math.MaxUint32
	}
	return uint32(1)<<bits - 1
}

// toModularPlanes converts a frame's u16 planes to the int32 planes
// Modular coding operates on.
func toModularPlanes(f ImageFrame) []modular.Plane {
	planes := make([]modular.Plane, len(f.Planes))
	for i, p := range f.Planes {
		samples := make([]int32, len(p))
		for j, v := range p {
			samples[j] = int32(v)
		}
		planes[i] = modular.Plane{Width: f.Width, Height: f.Height, Samples: samples}
	}
	return planes
}

// fromModularPlanes reverses toModularPlanes, clamping each sample back
// into [0, max] for the given bit depth, capped at 65535 (the u16 plane
// range).
func fromModularPlanes(planes []modular.Plane, bits uint8) [][]uint16 {
	max := int32(math.MaxUint16)
	if m := maxSampleValue(bits); m < math.MaxUint16 {
		max = int32(m)
	}
	out := make([][]uint16, len(planes))
	for i, p := range planes {
		samples := make([]uint16, len(p.Samples))
		for j, v := range p.Samples {
			samples[j] = uint16(clampInt32(v, 0, max))
		}
		out[i] = samples
	}
	return out
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// vdColorPlanes is the result of transforming a frame's colour channels
// (excluding alpha) into the float64 domain VarDCT's plane codec
// operates on, along with each plane's chroma flag for quantisation.
type vdColorPlanes struct {
	samples [][]float64
	chroma  []bool
}

// buildVarDCTColorPlanes converts a frame's colour planes (1 for
// grayscale, 3 for RGB) into the VarDCT sample domain, applying the XYB
// opsin transform when useXYB is set or BT.601 YCbCr otherwise. Alpha,
// if present, is handled separately by the caller.
func buildVarDCTColorPlanes(f ImageFrame, useXYB bool) vdColorPlanes {
	maxVal := float64(maxSampleValue(f.BitsPerSample))
	colorChannels := f.Channels()
	if f.HasAlpha {
		colorChannels--
	}

	if colorChannels == 1 {
		samples := make([]float64, len(f.Planes[0]))
		for i, v := range f.Planes[0] {
			samples[i] = float64(v) / maxVal * colorScale
		}
		return vdColorPlanes{samples: [][]float64{samples}, chroma: []bool{false}}
	}

	n := f.Width * f.Height
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	r, g, bl := f.Planes[0], f.Planes[1], f.Planes[2]
	for i := 0; i < n; i++ {
		rn := float64(r[i]) / maxVal
		gn := float64(g[i]) / maxVal
		bn := float64(bl[i]) / maxVal
		var p0, p1, p2 float64
		if useXYB {
			p0, p1, p2 = colorxform.ForwardXYB(rn, gn, bn)
		} else {
			p0, p1, p2 = colorxform.ForwardYCbCr601(rn, gn, bn)
		}
		a[i] = p0 * colorScale
		b[i] = p1 * colorScale
		c[i] = p2 * colorScale
	}
	return vdColorPlanes{samples: [][]float64{a, b, c}, chroma: []bool{false, true, true}}
}

// composeVarDCTColorPlanes reverses buildVarDCTColorPlanes, producing
// the u16 colour planes (1 for grayscale, 3 for RGB) at the given bit
// depth.
func composeVarDCTColorPlanes(samples [][]float64, useXYB bool, bits uint8) [][]uint16 {
	maxVal := float64(maxSampleValue(bits))

	if len(samples) == 1 {
		out := make([]uint16, len(samples[0]))
		for i, v := range samples[0] {
			out[i] = quantizeSample(v/colorScale, maxVal)
		}
		return [][]uint16{out}
	}

	n := len(samples[0])
	r := make([]uint16, n)
	g := make([]uint16, n)
	b := make([]uint16, n)
	for i := 0; i < n; i++ {
		p0 := samples[0][i] / colorScale
		p1 := samples[1][i] / colorScale
		p2 := samples[2][i] / colorScale
		var rn, gn, bn float64
		if useXYB {
			rn, gn, bn = colorxform.InverseXYB(p0, p1, p2)
		} else {
			rn, gn, bn = colorxform.InverseYCbCr601(p0, p1, p2)
		}
		r[i] = quantizeSample(rn, maxVal)
		g[i] = quantizeSample(gn, maxVal)
		b[i] = quantizeSample(bn, maxVal)
	}
	return [][]uint16{r, g, b}
}

func quantizeSample(normalized, maxVal float64) uint16 {
	v := math.Round(normalized * maxVal)
	if v < 0 {
		v = 0
	}
	if v > maxVal {
		v = maxVal
	}
	return uint16(v)
}
