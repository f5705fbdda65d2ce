// Package vardct implements the lossy VarDCT coding path: the 8x8
// scalar DCT/IDCT, distance-driven quantisation, DC prediction across
// blocks, the canonical ZigZag scan, and the progressive pass splitter.
package vardct

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BlockSize is the VarDCT transform block edge length.
const BlockSize = 8

// basis is the 8x8 DCT-II basis matrix, built once: row u, column x is
// alpha(u) * cos((2x+1)u*pi/16), with the 1/sqrt(2) DC scaling folded
// into alpha(0).
var basis = buildBasis()

func buildBasis() *mat.Dense {
	b := mat.NewDense(BlockSize, BlockSize, nil)
	for u := 0; u < BlockSize; u++ {
		alpha := math.Sqrt(2.0 / float64(BlockSize))
		if u == 0 {
			alpha = math.Sqrt(1.0 / float64(BlockSize))
		}
		for x := 0; x < BlockSize; x++ {
			v := alpha * math.Cos(float64((2*x+1)*u)*math.Pi/(2*float64(BlockSize)))
			b.Set(u, x, v)
		}
	}
	return b
}

// basisT is the transpose of basis, cached for the inverse transform.
var basisT = func() *mat.Dense {
	var t mat.Dense
	t.CloneFrom(basis.T())
	return &t
}()

// Block is an 8x8 block of samples or coefficients in row-major order.
type Block [BlockSize * BlockSize]float64

// ForwardDCT applies the scalar 2-D DCT-II to block, returning the
// coefficient block: coeffs = basis * block * basis^T.
func ForwardDCT(block Block) Block {
	in := mat.NewDense(BlockSize, BlockSize, block[:])
	var tmp, out mat.Dense
	tmp.Mul(basis, in)
	out.Mul(&tmp, basisT)
	var result Block
	copy(result[:], out.RawMatrix().Data)
	return result
}

// InverseDCT applies the inverse transform: block = basis^T * coeffs * basis.
func InverseDCT(coeffs Block) Block {
	in := mat.NewDense(BlockSize, BlockSize, coeffs[:])
	var tmp, out mat.Dense
	tmp.Mul(basisT, in)
	out.Mul(&tmp, basis)
	var result Block
	copy(result[:], out.RawMatrix().Data)
	return result
}

// DistanceFromQuality converts a JPEG-style quality 1-100 into a VarDCT
// distance: lossless is represented by d=0; otherwise d=(100-q)/10,
// clamped to a minimum of 0.1.
func DistanceFromQuality(quality int) float64 {
	if quality >= 100 {
		return 0
	}
	d := float64(100-quality) / 10
	if d < 0.1 {
		d = 0.1
	}
	return d
}

// QuantMatrix builds the 8x8 quantisation step matrix for a distance d.
// Base step is max(1, d*8); AC steps scale as base*(1+0.2*i+0.2*j) for
// coefficient (i,j), excluding DC; chroma planes double AC steps.
func QuantMatrix(d float64, chroma bool) Block {
	base := d * 8
	if base < 1 {
		base = 1
	}
	var q Block
	for i := 0; i < BlockSize; i++ {
		for j := 0; j < BlockSize; j++ {
			if i == 0 && j == 0 {
				q[i*BlockSize+j] = 1 // DC is quantised via its own residual path
				continue
			}
			step := base * (1 + 0.2*float64(i) + 0.2*float64(j))
			if chroma {
				step *= 2
			}
			q[i*BlockSize+j] = step
		}
	}
	return q
}

// Quantize rounds coeff/qmatrix to the nearest integer per coefficient.
func Quantize(coeff, qmatrix Block) [BlockSize * BlockSize]int16 {
	var out [BlockSize * BlockSize]int16
	for i := range coeff {
		out[i] = int16(math.Round(coeff[i] / qmatrix[i]))
	}
	return out
}

// Dequantize reverses Quantize.
func Dequantize(q [BlockSize * BlockSize]int16, qmatrix Block) Block {
	var out Block
	for i := range q {
		out[i] = float64(q[i]) * qmatrix[i]
	}
	return out
}

// zigZagOrder is the canonical JPEG 8x8 ZigZag scan: index k gives the
// row-major offset of the k-th coefficient in scan order. Index 0 is DC,
// index 63 is the bottom-right AC coefficient.
var zigZagOrder = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// ZigZagScan linearises a row-major 8x8 block into canonical scan order.
func ZigZagScan(block [BlockSize * BlockSize]int16) [64]int16 {
	var out [64]int16
	for k, idx := range zigZagOrder {
		out[k] = block[idx]
	}
	return out
}

// ZigZagUnscan reverses ZigZagScan.
func ZigZagUnscan(scan [64]int16) [BlockSize * BlockSize]int16 {
	var out [BlockSize * BlockSize]int16
	for k, idx := range zigZagOrder {
		out[idx] = scan[k]
	}
	return out
}

// BlockGrid addresses quantised DC values for a grid of bw x bh blocks,
// used by PredictDC / dc prediction bookkeeping.
type BlockGrid struct {
	BlocksWide, BlocksHigh int
	DC                     []int32 // row-major, one entry per block
}

// PredictDC returns the predicted DC value for block (bx, by) per spec
// §4.7 step 5: 0 at (0,0), the left block's DC on the first row, the top
// block's DC on the first column, else the truncating average of left
// and top.
func (g *BlockGrid) PredictDC(bx, by int) int32 {
	idx := func(x, y int) int32 { return g.DC[y*g.BlocksWide+x] }
	switch {
	case bx == 0 && by == 0:
		return 0
	case by == 0:
		return idx(bx-1, by)
	case bx == 0:
		return idx(bx, by-1)
	default:
		return (idx(bx-1, by) + idx(bx, by-1)) / 2
	}
}
