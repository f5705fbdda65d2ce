package vardct

import (
	"math"
	"math/rand"
	"testing"
)

func TestForwardInverseDCTRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var block Block
	for i := range block {
		block[i] = rng.Float64()*255 - 127.5
	}
	coeffs := ForwardDCT(block)
	back := InverseDCT(coeffs)
	for i := range block {
		if math.Abs(back[i]-block[i]) > 1e-4 {
			t.Fatalf("sample %d: got %v, want %v (diff %v)", i, back[i], block[i], back[i]-block[i])
		}
	}
}

func TestForwardDCTConstantBlockIsAllDC(t *testing.T) {
	var block Block
	for i := range block {
		block[i] = 100
	}
	coeffs := ForwardDCT(block)
	for i := 1; i < len(coeffs); i++ {
		if math.Abs(coeffs[i]) > 1e-6 {
			t.Errorf("AC coefficient %d = %v, want ~0 for constant block", i, coeffs[i])
		}
	}
	if coeffs[0] == 0 {
		t.Error("DC coefficient is zero for a nonzero constant block")
	}
}

func TestDistanceFromQuality(t *testing.T) {
	if d := DistanceFromQuality(100); d != 0 {
		t.Errorf("DistanceFromQuality(100) = %v, want 0", d)
	}
	if d := DistanceFromQuality(0); d < 9.9 || d > 10.1 {
		t.Errorf("DistanceFromQuality(0) = %v, want ~10", d)
	}
	if d := DistanceFromQuality(99); d < 0.1 {
		t.Errorf("DistanceFromQuality(99) = %v, want >= 0.1 floor", d)
	}
}

func TestQuantMatrixDCUnitStep(t *testing.T) {
	q := QuantMatrix(5, false)
	if q[0] != 1 {
		t.Errorf("DC quant step = %v, want 1", q[0])
	}
}

func TestQuantMatrixChromaDoublesACSteps(t *testing.T) {
	luma := QuantMatrix(5, false)
	chroma := QuantMatrix(5, true)
	for i := 1; i < len(luma); i++ {
		if math.Abs(chroma[i]-2*luma[i]) > 1e-9 {
			t.Fatalf("coefficient %d: chroma step %v, want 2x luma step %v", i, chroma[i], luma[i])
		}
	}
}

func TestQuantizeDequantizeApproximate(t *testing.T) {
	q := QuantMatrix(2, false)
	var coeffs Block
	for i := range coeffs {
		coeffs[i] = float64(i) * 3.3
	}
	quantized := Quantize(coeffs, q)
	back := Dequantize(quantized, q)
	for i := range coeffs {
		if math.Abs(back[i]-coeffs[i]) > q[i] {
			t.Errorf("coefficient %d: dequantized %v too far from original %v (step %v)", i, back[i], coeffs[i], q[i])
		}
	}
}

func TestZigZagScanUnscanRoundTrip(t *testing.T) {
	var block [64]int16
	for i := range block {
		block[i] = int16(i * 7 - 200)
	}
	scanned := ZigZagScan(block)
	back := ZigZagUnscan(scanned)
	if back != block {
		t.Fatalf("ZigZag round trip mismatch")
	}
}

func TestZigZagScanOrderDCFirst(t *testing.T) {
	var block [64]int16
	block[0] = 42
	scanned := ZigZagScan(block)
	if scanned[0] != 42 {
		t.Errorf("scanned[0] = %d, want 42 (DC first)", scanned[0])
	}
}

func TestPredictDCSpec(t *testing.T) {
	g := &BlockGrid{BlocksWide: 3, BlocksHigh: 2, DC: []int32{
		10, 20, 30,
		40, 50, 60,
	}}
	if got := g.PredictDC(0, 0); got != 0 {
		t.Errorf("PredictDC(0,0) = %d, want 0", got)
	}
	if got := g.PredictDC(2, 0); got != 20 { // first row: left block's DC
		t.Errorf("PredictDC(2,0) = %d, want 20", got)
	}
	if got := g.PredictDC(0, 1); got != 10 { // first column: top block's DC
		t.Errorf("PredictDC(0,1) = %d, want 10", got)
	}
	if got := g.PredictDC(1, 1); got != (40+20)/2 { // average of left and top
		t.Errorf("PredictDC(1,1) = %d, want %d", got, (40+20)/2)
	}
}

func TestExtractStoreBlockEdgePadding(t *testing.T) {
	width, height := 10, 10
	samples := make([]float64, width*height)
	for i := range samples {
		samples[i] = float64(i)
	}
	// Block (1,1) at offset 8..15 overruns both edges by 6 samples.
	block := ExtractBlock(samples, width, height, 1, 1)
	if block[0*BlockSize+0] != samples[8*width+8] {
		t.Errorf("top-left of padded block mismatch")
	}
	last := samples[(height-1)*width+(width-1)]
	if block[(BlockSize-1)*BlockSize+(BlockSize-1)] != last {
		t.Errorf("bottom-right padded sample = %v, want repeat of %v", block[63], last)
	}
}

func TestEncodeDecodePlaneRoundTripNearLossless(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	width, height := 16, 16
	samples := make([]float64, width*height)
	for i := range samples {
		samples[i] = rng.Float64()*255 - 127.5
	}
	opts := Options{Distance: 0.1, Chroma: false}
	coded, _ := EncodePlane(samples, width, height, opts)
	decoded, err := DecodePlane(coded, width, height, opts)
	if err != nil {
		t.Fatalf("DecodePlane() error: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded length %d, want %d", len(decoded), len(samples))
	}
	// Distance 0.1 is a near-lossless setting; require reconstruction
	// within a tolerance representative of one quantisation step.
	for i := range samples {
		if math.Abs(decoded[i]-samples[i]) > 2 {
			t.Fatalf("sample %d: got %v, want ~%v", i, decoded[i], samples[i])
		}
	}
}

func TestEncodeDecodePlaneNonMultipleOfBlockSize(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	width, height := 13, 9
	samples := make([]float64, width*height)
	for i := range samples {
		samples[i] = rng.Float64() * 100
	}
	opts := Options{Distance: 1, Chroma: false}
	coded, grid := EncodePlane(samples, width, height, opts)
	if grid.BlocksWide != 2 || grid.BlocksHigh != 2 {
		t.Fatalf("block grid = %dx%d, want 2x2", grid.BlocksWide, grid.BlocksHigh)
	}
	decoded, err := DecodePlane(coded, width, height, opts)
	if err != nil {
		t.Fatalf("DecodePlane() error: %v", err)
	}
	if len(decoded) != width*height {
		t.Fatalf("decoded length %d, want %d", len(decoded), width*height)
	}
}
