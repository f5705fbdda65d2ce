package vardct

// Pass identifies one of the three progressive VarDCT passes.
type Pass int

const (
	PassDC Pass = iota
	PassLowFrequencyAC
	PassHighFrequencyAC
)

// NumProgressivePasses is the fixed number of VarDCT progressive passes.
const NumProgressivePasses = 3

// lowFreqACCount is the number of low-frequency AC coefficients (in
// ZigZag order, immediately after DC) carried by PassLowFrequencyAC.
const lowFreqACCount = 10

// SplitCoefficients partitions a ZigZag-scanned 64-coefficient block
// into the three progressive passes: DC alone, the first 10 AC
// coefficients, and the remaining 53.
func SplitCoefficients(scan [64]int16) (dc int16, lowFreq [lowFreqACCount]int16, highFreq [64 - 1 - lowFreqACCount]int16) {
	dc = scan[0]
	copy(lowFreq[:], scan[1:1+lowFreqACCount])
	copy(highFreq[:], scan[1+lowFreqACCount:])
	return dc, lowFreq, highFreq
}

// MergeCoefficients reverses SplitCoefficients.
func MergeCoefficients(dc int16, lowFreq [lowFreqACCount]int16, highFreq [64 - 1 - lowFreqACCount]int16) [64]int16 {
	var scan [64]int16
	scan[0] = dc
	copy(scan[1:1+lowFreqACCount], lowFreq[:])
	copy(scan[1+lowFreqACCount:], highFreq[:])
	return scan
}

// EncodePlaneProgressive runs EncodePlane's pipeline but emits three
// independent coded byte streams, one per pass, so a decoder callback
// can reconstruct the frame incrementally as each pass arrives. For a
// lossless/Modular frame there is no VarDCT progressive split; callers
// of this function are always on the VarDCT branch.
func EncodePlaneProgressive(samples []float64, width, height int, opts Options) (passes [NumProgressivePasses][]byte, grid *BlockGrid) {
	bw, bh := blocksAcross(width), blocksAcross(height)
	qmatrix := QuantMatrix(opts.Distance, opts.Chroma)
	grid = &BlockGrid{BlocksWide: bw, BlocksHigh: bh, DC: make([]int32, bw*bh)}

	writers := newPassWriters()

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			block := ExtractBlock(samples, width, height, bx, by)
			coeffs := ForwardDCT(block)
			q := Quantize(coeffs, qmatrix)

			dcPred := grid.PredictDC(bx, by)
			dcActual := int32(q[0])
			dcResidual := dcActual - dcPred
			grid.DC[by*bw+bx] = dcActual

			scan := ZigZagScan(q)
			_, lowFreq, highFreq := SplitCoefficients(scan)

			writers.dc.EncodeSigned(dcContext(dcPred), dcResidual)
			ctx := acContext(dcResidual)
			for _, c := range lowFreq {
				writers.low.EncodeSigned(ctx, int32(c))
			}
			for _, c := range highFreq {
				writers.high.EncodeSigned(ctx, int32(c))
			}
		}
	}
	return [NumProgressivePasses][]byte{writers.dcBytes(), writers.lowBytes(), writers.highBytes()}, grid
}

// DecodePlaneProgressive reverses EncodePlaneProgressive. onPass, if
// non-nil, is invoked after each pass with the pass index and the
// frame reconstructed so far using the coefficients known up to that
// pass (remaining coefficients treated as zero).
func DecodePlaneProgressive(passes [NumProgressivePasses][]byte, width, height int, opts Options, onPass func(pass int, samples []float64)) ([]float64, error) {
	bw, bh := blocksAcross(width), blocksAcross(height)
	qmatrix := QuantMatrix(opts.Distance, opts.Chroma)
	grid := &BlockGrid{BlocksWide: bw, BlocksHigh: bh, DC: make([]int32, bw*bh)}

	readers := newPassReaders(passes)

	dcResiduals := make([]int32, bw*bh)
	lowFreqCoeffs := make([][lowFreqACCount]int16, bw*bh)
	highFreqCoeffs := make([][64 - 1 - lowFreqACCount]int16, bw*bh)

	samples := make([]float64, width*height)

	// Pass 0: DC only.
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			dcPred := grid.PredictDC(bx, by)
			dcResidual, err := readers.dc.DecodeSigned(dcContext(dcPred))
			if err != nil {
				return nil, err
			}
			dcResiduals[by*bw+bx] = dcResidual
			grid.DC[by*bw+bx] = dcPred + dcResidual
			reconstructBlock(samples, width, height, qmatrix, bx, by, grid.DC[by*bw+bx], nil, nil)
		}
	}
	if onPass != nil {
		onPass(int(PassDC), append([]float64(nil), samples...))
	}

	// Pass 1: low-frequency AC.
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			ctx := acContext(dcResiduals[by*bw+bx])
			var lf [lowFreqACCount]int16
			for i := range lf {
				v, err := readers.low.DecodeSigned(ctx)
				if err != nil {
					return nil, err
				}
				lf[i] = int16(v)
			}
			lowFreqCoeffs[by*bw+bx] = lf
			reconstructBlock(samples, width, height, qmatrix, bx, by, grid.DC[by*bw+bx], &lf, nil)
		}
	}
	if onPass != nil {
		onPass(int(PassLowFrequencyAC), append([]float64(nil), samples...))
	}

	// Pass 2: remaining high-frequency AC.
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			ctx := acContext(dcResiduals[by*bw+bx])
			var hf [64 - 1 - lowFreqACCount]int16
			for i := range hf {
				v, err := readers.high.DecodeSigned(ctx)
				if err != nil {
					return nil, err
				}
				hf[i] = int16(v)
			}
			highFreqCoeffs[by*bw+bx] = hf
			lf := lowFreqCoeffs[by*bw+bx]
			reconstructBlock(samples, width, height, qmatrix, bx, by, grid.DC[by*bw+bx], &lf, &hf)
		}
	}
	if onPass != nil {
		onPass(int(PassHighFrequencyAC), append([]float64(nil), samples...))
	}

	return samples, nil
}

// reconstructBlock dequantises and inverse-DCTs one block from whatever
// coefficients are known so far (lowFreq/highFreq nil means "not yet
// decoded, treat as zero"), storing the result into samples.
func reconstructBlock(samples []float64, width, height int, qmatrix Block, bx, by int, dc int32, lowFreq *[lowFreqACCount]int16, highFreq *[64 - 1 - lowFreqACCount]int16) {
	var lf [lowFreqACCount]int16
	var hf [64 - 1 - lowFreqACCount]int16
	if lowFreq != nil {
		lf = *lowFreq
	}
	if highFreq != nil {
		hf = *highFreq
	}
	scan := MergeCoefficients(int16(dc), lf, hf)
	q := ZigZagUnscan(scan)
	coeffs := Dequantize(q, qmatrix)
	block := InverseDCT(coeffs)
	StoreBlock(samples, width, height, bx, by, block)
}
