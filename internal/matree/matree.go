// Package matree implements the Meta-Adaptive predictor tree used by the
// Modular coding path: a small decision tree over causal neighbour
// properties that, for every pixel, selects a predictor and an entropy
// context.
package matree

import "fmt"

// Property identifies one of the causal-neighbour-derived values a
// decision node can branch on.
type Property uint8

const (
	PropertyChannelIndex Property = iota
	PropertyGradientH
	PropertyGradientV
	PropertyNorthValue
	PropertyWestValue
	PropertyNorthWestValue
	PropertyWestMinusNW
	PropertyNorthMinusNW
	PropertyNorthMinusNE
	PropertyMaxAbsResidual
)

// Predictor identifies one of the built-in prediction formulas a leaf
// node selects.
type Predictor uint8

const (
	PredictorZero Predictor = iota
	PredictorWest
	PredictorNorth
	PredictorAverageWN
	PredictorAverageWNW
	PredictorAverageNNW
	PredictorMed
	PredictorSelectGradient
)

// Node is one entry of the tree arena: either a decision (branches on a
// property against a threshold) or a leaf (returns a predictor and a
// context index). IsLeaf selects which half of the struct is valid.
type Node struct {
	IsLeaf bool

	// Decision fields.
	Property  Property
	Threshold int32
	Left      int
	Right     int

	// Leaf fields.
	Predictor  Predictor
	ContextIdx int
}

// Tree is an arena of Nodes addressed by index, root always at index 0.
type Tree struct {
	Nodes        []Node
	ContextCount int
}

// Neighbors holds the causal sample values and per-position residuals
// Evaluate needs, already resolved for edge fallback (see Neighborhood).
type Neighbors struct {
	Channel int
	N, W, NW, NE int32
	ResN, ResW, ResNW int32
}

// Neighborhood computes a Neighbors value from a channel's decoded
// sample grid at (x, y), applying the spec's edge fallback rules:
//   - y == 0: N falls back to W, NW falls back to W
//   - x == 0: W falls back to N, NW falls back to N
//   - x == 0 && y == 0: all causal values fall back to 0 (not 32768)
//   - x == width-1: NE falls back to N
//
// sample(x, y) and residual(x, y) are supplied by the caller since the
// underlying storage (planar u16 + parallel i32 residual) lives in the
// modular package, not here.
func Neighborhood(channel, x, y, width int, sample, residual func(x, y int) int32) Neighbors {
	at := func(xx, yy int) int32 {
		if xx < 0 || yy < 0 {
			return 0
		}
		return sample(xx, yy)
	}
	resAt := func(xx, yy int) int32 {
		if xx < 0 || yy < 0 {
			return 0
		}
		return residual(xx, yy)
	}

	var n, w, nw, ne Neighbors_raw
	switch {
	case x == 0 && y == 0:
		n = Neighbors_raw{}
		w = Neighbors_raw{}
		nw = Neighbors_raw{}
	case y == 0:
		// N and NW fall back to W.
		wv := at(x-1, y)
		w = Neighbors_raw{v: wv, r: resAt(x-1, y)}
		n = w
		nw = w
	case x == 0:
		// W and NW fall back to N.
		nv := at(x, y-1)
		n = Neighbors_raw{v: nv, r: resAt(x, y-1)}
		w = n
		nw = n
	default:
		n = Neighbors_raw{v: at(x, y-1), r: resAt(x, y-1)}
		w = Neighbors_raw{v: at(x-1, y), r: resAt(x-1, y)}
		nw = Neighbors_raw{v: at(x-1, y-1), r: resAt(x-1, y-1)}
	}

	if x == width-1 {
		ne = n
	} else {
		ne = Neighbors_raw{v: at(x+1, y-1), r: resAt(x+1, y-1)}
	}

	return Neighbors{
		Channel: channel,
		N: n.v, W: w.v, NW: nw.v, NE: ne.v,
		ResN: n.r, ResW: w.r, ResNW: nw.r,
	}
}

// Neighbors_raw is an internal helper pairing a sample value with its
// residual for edge-fallback bookkeeping.
type Neighbors_raw struct {
	v, r int32
}

// evalProperty computes the value of a single property for nb.
func evalProperty(p Property, nb Neighbors) int32 {
	switch p {
	case PropertyChannelIndex:
		return int32(nb.Channel)
	case PropertyGradientH:
		return absInt32(nb.W - nb.NW)
	case PropertyGradientV:
		return absInt32(nb.N - nb.NW)
	case PropertyNorthValue:
		return nb.N
	case PropertyWestValue:
		return nb.W
	case PropertyNorthWestValue:
		return nb.NW
	case PropertyWestMinusNW:
		return nb.W - nb.NW
	case PropertyNorthMinusNW:
		return nb.N - nb.NW
	case PropertyNorthMinusNE:
		return nb.N - nb.NE
	case PropertyMaxAbsResidual:
		return maxInt32(absInt32(nb.ResN), absInt32(nb.ResW), absInt32(nb.ResNW))
	default:
		return 0
	}
}

// Evaluate walks the tree from the root for nb, returning the leaf's
// predictor and context index.
func (t *Tree) Evaluate(nb Neighbors) (Predictor, int) {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.IsLeaf {
			return n.Predictor, n.ContextIdx
		}
		if evalProperty(n.Property, nb) <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

// Predict applies a predictor to a neighbourhood, returning the i32
// prediction. Only PredictorMed clamps (to [0, 65535]); every other
// predictor's value is returned as computed, and the Modular coder uses
// it without further clamping.
func Predict(p Predictor, nb Neighbors) int32 {
	switch p {
	case PredictorZero:
		return 0
	case PredictorWest:
		return nb.W
	case PredictorNorth:
		return nb.N
	case PredictorAverageWN:
		return (nb.W + nb.N) / 2
	case PredictorAverageWNW:
		return (nb.W + nb.NW) / 2
	case PredictorAverageNNW:
		return (nb.N + nb.NW) / 2
	case PredictorMed:
		return medPredict(nb.N, nb.W, nb.NW)
	case PredictorSelectGradient:
		if absInt32(nb.N-nb.NW) < absInt32(nb.W-nb.NW) {
			return nb.W
		}
		return nb.N
	default:
		return 0
	}
}

// maxU16Sample is the literal sample-range ceiling medPredict clamps
// against, per spec §4.5 ("clamp(N + W − NW, 0, max_u16)").
const maxU16Sample = 65535

// medPredict computes the MED (median edge detector) predictor as spec
// §4.5 defines it: N+W-NW, clamped to the full sample range [0,
// max_u16] — not to the range implied by N and W.
func medPredict(n, w, nw int32) int32 {
	raw := n + w - nw
	if raw < 0 {
		return 0
	}
	if raw > maxU16Sample {
		return maxU16Sample
	}
	return raw
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt32(vs ...int32) int32 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Validate checks the arena invariants: root present, every child index
// in bounds, every leaf context index within [0, ContextCount), and leaf
// contexts unique within the tree.
func (t *Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("matree: empty tree")
	}
	seen := make(map[int]bool)
	for i, n := range t.Nodes {
		if n.IsLeaf {
			if n.ContextIdx < 0 || n.ContextIdx >= t.ContextCount {
				return fmt.Errorf("matree: node %d context %d out of range [0,%d)", i, n.ContextIdx, t.ContextCount)
			}
			if seen[n.ContextIdx] {
				return fmt.Errorf("matree: duplicate leaf context %d", n.ContextIdx)
			}
			seen[n.ContextIdx] = true
			continue
		}
		if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
			return fmt.Errorf("matree: node %d has out-of-bounds child", i)
		}
	}
	return nil
}

// DefaultTree returns the built-in 7-node/4-context tree used by the
// lightning/falcon/cheetah efforts: MED in smooth regions, West on
// vertical edges, North on horizontal edges, and gradient-select in
// textured regions.
func DefaultTree() *Tree {
	return &Tree{
		ContextCount: 4,
		Nodes: []Node{
			{Property: PropertyGradientH, Threshold: 16, Left: 1, Right: 2},   // 0
			{Property: PropertyGradientV, Threshold: 16, Left: 3, Right: 4},   // 1: gradH small
			{Property: PropertyGradientV, Threshold: 16, Left: 5, Right: 6},   // 2: gradH large
			{IsLeaf: true, Predictor: PredictorMed, ContextIdx: 0},            // 3: smooth
			{IsLeaf: true, Predictor: PredictorWest, ContextIdx: 1},           // 4: vertical edge
			{IsLeaf: true, Predictor: PredictorNorth, ContextIdx: 2},          // 5: horizontal edge
			{IsLeaf: true, Predictor: PredictorSelectGradient, ContextIdx: 3}, // 6: textured
		},
	}
}

// ExtendedTree returns the built-in 15-node/8-context tree used by the
// hare/squirrel/kitten/wombat/tortoise efforts: the default tree's
// structure plus a second axis keyed on maxAbsResidual distinguishing
// smooth-but-noisy regions from high-frequency regions.
func ExtendedTree() *Tree {
	return &Tree{
		ContextCount: 8,
		Nodes: []Node{
			{Property: PropertyGradientH, Threshold: 16, Left: 1, Right: 8},   // 0
			{Property: PropertyGradientV, Threshold: 16, Left: 2, Right: 5},   // 1: gradH small
			{Property: PropertyMaxAbsResidual, Threshold: 8, Left: 3, Right: 4}, // 2: smooth
			{IsLeaf: true, Predictor: PredictorMed, ContextIdx: 0},            // 3: smooth, low noise
			{IsLeaf: true, Predictor: PredictorZero, ContextIdx: 1},           // 4: smooth, noisy
			{Property: PropertyMaxAbsResidual, Threshold: 8, Left: 6, Right: 7}, // 5: vertical edge
			{IsLeaf: true, Predictor: PredictorWest, ContextIdx: 2},           // 6
			{IsLeaf: true, Predictor: PredictorZero, ContextIdx: 3},           // 7
			{Property: PropertyGradientV, Threshold: 16, Left: 9, Right: 12},  // 8: gradH large
			{Property: PropertyMaxAbsResidual, Threshold: 8, Left: 10, Right: 11}, // 9: horizontal edge
			{IsLeaf: true, Predictor: PredictorNorth, ContextIdx: 4},          // 10
			{IsLeaf: true, Predictor: PredictorZero, ContextIdx: 5},           // 11
			{Property: PropertyMaxAbsResidual, Threshold: 8, Left: 13, Right: 14}, // 12: textured
			{IsLeaf: true, Predictor: PredictorSelectGradient, ContextIdx: 6}, // 13
			{IsLeaf: true, Predictor: PredictorZero, ContextIdx: 7},           // 14
		},
	}
}

// TreeType identifies which built-in tree a frame uses, stored as the
// global section's tree-type byte.
type TreeType uint8

const (
	TreeTypeDefault TreeType = iota
	TreeTypeExtended
)

// ForEffort selects TreeTypeDefault for lightning/falcon/cheetah and
// TreeTypeExtended for the remaining named efforts.
func ForEffort(effort string) TreeType {
	switch effort {
	case "lightning", "falcon", "cheetah":
		return TreeTypeDefault
	default:
		return TreeTypeExtended
	}
}

// Build returns the tree for a TreeType.
func Build(t TreeType) *Tree {
	if t == TreeTypeExtended {
		return ExtendedTree()
	}
	return DefaultTree()
}
