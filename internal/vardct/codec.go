package vardct

import (
	"fmt"

	"github.com/jxlgo/jxl/internal/bio"
	"github.com/jxlgo/jxl/internal/entropy"
)

// Options configures one plane's VarDCT pipeline.
type Options struct {
	Distance float64
	Chroma   bool
}

// ExtractBlock reads an 8x8 block from a row-major plane at block
// coordinates (bx, by), padding edge blocks by repeating the last
// in-bounds row/column.
func ExtractBlock(samples []float64, width, height, bx, by int) Block {
	var b Block
	for i := 0; i < BlockSize; i++ {
		y := by*BlockSize + i
		if y >= height {
			y = height - 1
		}
		for j := 0; j < BlockSize; j++ {
			x := bx*BlockSize + j
			if x >= width {
				x = width - 1
			}
			b[i*BlockSize+j] = samples[y*width+x]
		}
	}
	return b
}

// StoreBlock writes an 8x8 block back into a row-major plane at block
// coordinates (bx, by), clipping any part that falls outside the plane
// (the padded edge samples are discarded).
func StoreBlock(samples []float64, width, height, bx, by int, b Block) {
	for i := 0; i < BlockSize; i++ {
		y := by*BlockSize + i
		if y >= height {
			continue
		}
		for j := 0; j < BlockSize; j++ {
			x := bx*BlockSize + j
			if x >= width {
				continue
			}
			samples[y*width+x] = b[i*BlockSize+j]
		}
	}
}

// blocksAcross returns the number of 8x8 blocks needed to cover n
// samples, rounding up.
func blocksAcross(n int) int {
	return (n + BlockSize - 1) / BlockSize
}

// dcContext buckets the predicted DC magnitude into one of the four
// entropy.MagnitudeBucket contexts. Both encoder and decoder know the
// predicted DC before a block's DC residual is coded, so this context is
// causally available on the decode side.
func dcContext(dcPred int32) int {
	return entropy.MagnitudeBucket(absInt32(dcPred))
}

// acContext buckets the just-decoded DC residual magnitude, giving the
// "DC magnitude" half of spec §4.7 step 7's context rule; both sides
// know dcResidual immediately after the DC symbol is coded, so every AC
// coefficient in the block shares this one context.
func acContext(dcResidual int32) int {
	return entropy.MagnitudeBucket(absInt32(dcResidual))*2 + 1
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// EncodePlane runs the forward DCT, quantisation, DC prediction, ZigZag
// scan, and entropy coding over every 8x8 block of samples, returning
// the coded bytes and the block grid of quantised DC values. The grid is
// not part of the coded bytes.
func EncodePlane(samples []float64, width, height int, opts Options) (coded []byte, grid *BlockGrid) {
	bw, bh := blocksAcross(width), blocksAcross(height)
	qmatrix := QuantMatrix(opts.Distance, opts.Chroma)
	grid = &BlockGrid{BlocksWide: bw, BlocksHigh: bh, DC: make([]int32, bw*bh)}

	w := bio.NewWriter()
	enc := entropy.NewEncoder(w, entropy.ContextCount, false)

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := ExtractBlock(samples, width, height, bx, by)
			coeffs := ForwardDCT(block)
			q := Quantize(coeffs, qmatrix)

			dcPred := grid.PredictDC(bx, by)
			dcActual := int32(q[0])
			dcResidual := dcActual - dcPred
			grid.DC[by*bw+bx] = dcActual

			enc.EncodeSigned(dcContext(dcPred), dcResidual)

			scan := ZigZagScan(q)
			var ac [63]int16
			copy(ac[:], scan[1:])
			ctx := acContext(dcResidual)
			for _, c := range ac {
				enc.EncodeSigned(ctx, int32(c))
			}
		}
	}
	return w.Bytes(), grid
}

// DecodePlane reverses EncodePlane, reconstructing width*height samples.
func DecodePlane(coded []byte, width, height int, opts Options) ([]float64, error) {
	bw, bh := blocksAcross(width), blocksAcross(height)
	qmatrix := QuantMatrix(opts.Distance, opts.Chroma)
	grid := &BlockGrid{BlocksWide: bw, BlocksHigh: bh, DC: make([]int32, bw*bh)}

	r := bio.NewReader(coded)
	dec := entropy.NewDecoder(r, entropy.ContextCount)

	samples := make([]float64, width*height)

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			dcPred := grid.PredictDC(bx, by)

			dcResidual, err := dec.DecodeSigned(dcContext(dcPred))
			if err != nil {
				return nil, fmt.Errorf("vardct: block (%d,%d) dc: %w", bx, by, err)
			}
			var ac [63]int16
			ctx := acContext(dcResidual)
			for i := range ac {
				v, err := dec.DecodeSigned(ctx)
				if err != nil {
					return nil, fmt.Errorf("vardct: block (%d,%d) ac %d: %w", bx, by, i, err)
				}
				ac[i] = int16(v)
			}

			dcActual := dcPred + dcResidual
			grid.DC[by*bw+bx] = dcActual

			var scan [64]int16
			scan[0] = int16(dcActual)
			copy(scan[1:], ac[:])
			q := ZigZagUnscan(scan)

			coeffs := Dequantize(q, qmatrix)
			block := InverseDCT(coeffs)
			StoreBlock(samples, width, height, bx, by, block)
		}
	}
	return samples, nil
}
