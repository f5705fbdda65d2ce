// Package entropy implements the context-adaptive entropy coder used by
// both the Modular and VarDCT coding paths: unsigned ZigZag mapping,
// adaptive-k Rice coding, and the per-context running statistics that
// drive the Rice parameter. An Asymmetric Numeral Systems mode is
// accepted in configuration but not implemented (see UseANS).
package entropy

import (
	"math/bits"

	"github.com/jxlgo/jxl/internal/bio"
)

// ZigZagEncode maps a signed residual to the unsigned ZigZag domain:
// zz(0)=0, zz(-1)=1, zz(1)=2, zz(-2)=3, zz(2)=4, ...
func ZigZagEncode(v int32) uint32 {
	if v >= 0 {
		return uint32(v) * 2
	}
	return uint32(-v)*2 - 1
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(u uint32) int32 {
	if u&1 == 0 {
		return int32(u / 2)
	}
	return -int32((u + 1) / 2)
}

// ContextCount is the number of Modular entropy contexts: four magnitude
// buckets combined with one orientation bit.
const ContextCount = 8

// ContextModel tracks per-context running sum/count used to derive the
// adaptive Rice parameter.
type ContextModel struct {
	count []uint64
	sum   []uint64
}

// NewContextModel allocates a context model with n contexts.
func NewContextModel(n int) *ContextModel {
	return &ContextModel{count: make([]uint64, n), sum: make([]uint64, n)}
}

// Observe records that symbol u (already ZigZag-mapped) was emitted in
// context c, updating that context's running statistics.
func (m *ContextModel) Observe(c int, u uint32) {
	m.count[c]++
	m.sum[c] += uint64(u)
}

// K returns the current Rice parameter for context c:
// k = max(0, floor(log2(1+mean)) - 1), mean = sum/max(1,count).
// An empty or zero-mean context returns k=0.
func (m *ContextModel) K(c int) uint {
	count := m.count[c]
	if count == 0 {
		return 0
	}
	mean := m.sum[c] / count
	if mean == 0 {
		return 0
	}
	log2 := bits.Len64(mean + 1) - 1 // floor(log2(1+mean))
	if log2 < 1 {
		return 0
	}
	return uint(log2 - 1)
}

// MagnitudeBucket buckets an average absolute causal residual into one
// of the four Modular magnitude contexts: {0: avg<4, 1: avg<16,
// 2: avg<256, 3: else}.
func MagnitudeBucket(avgAbsResidual int32) int {
	switch {
	case avgAbsResidual < 4:
		return 0
	case avgAbsResidual < 16:
		return 1
	case avgAbsResidual < 256:
		return 2
	default:
		return 3
	}
}

// SelectContext combines a magnitude bucket with the orientation bit
// |resN| > |resW| into one of the 8 Modular contexts.
func SelectContext(resN, resW, resNW int32) int {
	avg := (absInt32(resN) + absInt32(resW) + absInt32(resNW)) / 3
	bucket := MagnitudeBucket(avg)
	orientation := 0
	if absInt32(resN) > absInt32(resW) {
		orientation = 1
	}
	return bucket*2 + orientation
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// WriteRice emits u (already ZigZag-mapped) using Rice coding with
// parameter k: (u>>k) unary-prefix bits (that many 1 bits then a
// terminating 0) followed by the low k bits.
func WriteRice(w *bio.Writer, u uint32, k uint) {
	q := u >> k
	for i := uint32(0); i < q; i++ {
		w.WriteBit(1)
	}
	w.WriteBit(0)
	if k > 0 {
		w.WriteBits(uint64(u), k)
	}
}

// ReadRice reads a value written by WriteRice with parameter k.
func ReadRice(r *bio.Reader, k uint) (uint32, error) {
	var q uint32
	for {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
		q++
	}
	var low uint64
	if k > 0 {
		v, err := r.ReadBits(k)
		if err != nil {
			return 0, err
		}
		low = v
	}
	return q<<k | uint32(low), nil
}

// Encoder bundles a context model with the bit writer and entropy-codes
// signed residuals context by context, using Rice coding. The Rice path
// is the mandatory baseline; UseANS selects the (unimplemented)
// Asymmetric Numeral Systems mode.
type Encoder struct {
	w       *bio.Writer
	model   *ContextModel
	UseANS  bool
	ansSeen bool // tracks whether UseANS was requested, for diagnostics
}

// NewEncoder creates an entropy encoder writing to w with n contexts.
func NewEncoder(w *bio.Writer, n int, useANS bool) *Encoder {
	return &Encoder{w: w, model: NewContextModel(n), UseANS: useANS}
}

// EncodeSigned ZigZag-maps v and Rice-codes it in context c, updating
// that context's statistics for subsequent symbols. ANS mode is not
// implemented; callers asking for it still get Rice output (see
// ANSRequested).
func (e *Encoder) EncodeSigned(c int, v int32) {
	if e.UseANS {
		e.ansSeen = true
	}
	u := ZigZagEncode(v)
	k := e.model.K(c)
	WriteRice(e.w, u, k)
	e.model.Observe(c, u)
}

// ANSRequested reports whether the encoder was asked to use ANS (even
// though it always falls back to Rice), once at least one symbol has been
// encoded.
func (e *Encoder) ANSRequested() bool {
	return e.ansSeen
}

// Decoder mirrors Encoder for the decode side.
type Decoder struct {
	r     *bio.Reader
	model *ContextModel
}

// NewDecoder creates an entropy decoder reading from r with n contexts.
func NewDecoder(r *bio.Reader, n int) *Decoder {
	return &Decoder{r: r, model: NewContextModel(n)}
}

// DecodeSigned reads one Rice-coded symbol in context c and returns the
// signed residual, updating that context's statistics.
func (d *Decoder) DecodeSigned(c int) (int32, error) {
	k := d.model.K(c)
	u, err := ReadRice(d.r, k)
	if err != nil {
		return 0, err
	}
	d.model.Observe(c, u)
	return ZigZagDecode(u), nil
}
