package jxl

import (
	"fmt"

	"github.com/jxlgo/jxl/internal/vardct"
)

// ResponsiveConfig configures the VarDCT responsive (quality-layered)
// emission: L re-encodings of the same plane at descending distances,
// per spec §4.10.
type ResponsiveConfig struct {
	// LayerCount is the number of quality layers L. Valid range is
	// 2..=8; out-of-range values are clamped by ClampLayerCount.
	LayerCount int

	// LayerDistances gives the L VarDCT distances to encode at, most
	// aggressive first (d_1 > d_2 > ... > d_L). If nil, DeriveDistances
	// fills it in from a base distance.
	LayerDistances []float64
}

// MinLayerCount and MaxLayerCount bound the responsive layer count.
const (
	MinLayerCount = 2
	MaxLayerCount = 8
)

// ClampLayerCount clamps n into [MinLayerCount, MaxLayerCount], per spec
// S10: layer_count=1 clamps to 2, layer_count=10 clamps to 8.
func ClampLayerCount(n int) int {
	if n < MinLayerCount {
		return MinLayerCount
	}
	if n > MaxLayerCount {
		return MaxLayerCount
	}
	return n
}

// DeriveDistances fills in L descending distances from a base distance
// when the caller does not supply explicit layer_distances: d_i =
// base_distance * 2^(L-i) for i = 1..L, so d_1 is the coarsest layer and
// d_L == base_distance.
func DeriveDistances(baseDistance float64, layerCount int) []float64 {
	distances := make([]float64, layerCount)
	for i := 0; i < layerCount; i++ {
		shift := layerCount - (i + 1)
		distances[i] = baseDistance * float64(uint64(1)<<uint(shift))
	}
	return distances
}

// ValidateDistances checks that distances is strictly descending, per
// spec S10 ("[3.0, 6.0, 1.0] returns EncodingFailed('descending order')").
func ValidateDistances(distances []float64) error {
	for i := 1; i < len(distances); i++ {
		if distances[i] >= distances[i-1] {
			return newError(KindEncodingFailed, fmt.Sprintf(
				"responsive layer distances must be strictly descending: layer %d (%.4f) >= layer %d (%.4f)",
				i, distances[i], i-1, distances[i-1]))
		}
	}
	return nil
}

// resolve returns the validated distance slice to encode at: explicit
// LayerDistances if given (validated directly against the spec's 2..=8
// bound), otherwise derived from baseDistance at the clamped LayerCount.
func (c ResponsiveConfig) resolve(baseDistance float64) ([]float64, error) {
	if len(c.LayerDistances) > 0 {
		if len(c.LayerDistances) < MinLayerCount || len(c.LayerDistances) > MaxLayerCount {
			return nil, newError(KindEncodingFailed, fmt.Sprintf(
				"layer_distances has %d entries, want %d..=%d", len(c.LayerDistances), MinLayerCount, MaxLayerCount))
		}
		if err := ValidateDistances(c.LayerDistances); err != nil {
			return nil, err
		}
		return c.LayerDistances, nil
	}
	layerCount := ClampLayerCount(c.LayerCount)
	return DeriveDistances(baseDistance, layerCount), nil
}

// ResponsiveLayer is one encoded quality layer: the VarDCT payload coded
// at Distance, plus the block grid of quantised DC values that
// vardct.EncodePlane returned for it.
type ResponsiveLayer struct {
	Distance float64
	Coded    []byte
	Grid     *vardct.BlockGrid
}

// EncodeResponsive runs the VarDCT codec once per layer distance,
// producing L independent re-encodings of the same plane at descending
// distances (coarsest first).
func EncodeResponsive(samples []float64, width, height int, chroma bool, cfg ResponsiveConfig) ([]ResponsiveLayer, error) {
	baseDistance := 1.0
	if len(cfg.LayerDistances) > 0 {
		baseDistance = cfg.LayerDistances[len(cfg.LayerDistances)-1]
	}
	distances, err := cfg.resolve(baseDistance)
	if err != nil {
		return nil, err
	}

	layers := make([]ResponsiveLayer, len(distances))
	for i, d := range distances {
		coded, grid := vardct.EncodePlane(samples, width, height, vardct.Options{Distance: d, Chroma: chroma})
		layers[i] = ResponsiveLayer{Distance: d, Coded: coded, Grid: grid}
	}
	return layers, nil
}

// DecodeResponsive reverses EncodeResponsive, returning one reconstructed
// plane per layer in the same coarsest-first order they were encoded.
// onLayer, if non-nil, is invoked after each layer with its index and
// the reconstruction at that point, so a caller can render progressively
// refining previews as quality layers arrive.
func DecodeResponsive(layers []ResponsiveLayer, width, height int, chroma bool, onLayer func(layer int, samples []float64)) ([][]float64, error) {
	results := make([][]float64, len(layers))
	for i, l := range layers {
		samples, err := vardct.DecodePlane(l.Coded, width, height, vardct.Options{Distance: l.Distance, Chroma: chroma})
		if err != nil {
			return nil, fmt.Errorf("responsive layer %d: %w", i, err)
		}
		results[i] = samples
		if onLayer != nil {
			onLayer(i, samples)
		}
	}
	return results, nil
}
