// Package modular implements the lossless Modular coding path: the
// per-frame pipeline of RCT, optional Squeeze decomposition, MA-tree
// prediction, and context-adaptive entropy coding, plus its symmetric
// decode.
package modular

import (
	"fmt"

	"github.com/jxlgo/jxl/internal/bio"
	"github.com/jxlgo/jxl/internal/colorxform"
	"github.com/jxlgo/jxl/internal/entropy"
	"github.com/jxlgo/jxl/internal/matree"
	"github.com/jxlgo/jxl/internal/squeeze"
)

// Options configures one frame's Modular pipeline.
type Options struct {
	UseSqueeze    bool
	SqueezeLevels int
	TreeType      matree.TreeType
	UseANS        bool
}

// DefaultOptions returns the baseline Modular configuration: squeeze
// enabled at DefaultLevels, the default (7-node/4-context) tree, Rice
// entropy coding.
func DefaultOptions() Options {
	return Options{
		UseSqueeze:    true,
		SqueezeLevels: squeeze.DefaultLevels,
		TreeType:      matree.TreeTypeDefault,
		UseANS:        false,
	}
}

// Plane is one channel's planar samples, row-major, width*height long.
type Plane struct {
	Width, Height int
	Samples       []int32
}

// EncodeGlobalSection writes the Modular global section: a byte-aligned
// mod/rct flag byte followed by channel count, tree type, and squeeze
// levels, per spec §4.9.
func EncodeGlobalSection(channelCount int, treeType matree.TreeType, squeezeLevels int, rct bool) []byte {
	w := bio.NewWriter()
	w.WriteBit(1) // modular flag
	w.WriteBit(boolBit(rct))
	w.FlushByte()
	w.WriteBits(uint64(channelCount), 8)
	w.WriteBits(uint64(treeType), 8)
	w.WriteBits(uint64(squeezeLevels), 8)
	return w.Bytes()
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GlobalSection is the parsed form of EncodeGlobalSection's output.
type GlobalSection struct {
	Modular       bool
	RCT           bool
	ChannelCount  int
	TreeType      matree.TreeType
	SqueezeLevels int
}

// DecodeGlobalSection parses a global section written by
// EncodeGlobalSection.
func DecodeGlobalSection(data []byte) (GlobalSection, error) {
	r := bio.NewReader(data)
	mod, err := r.ReadBit()
	if err != nil {
		return GlobalSection{}, fmt.Errorf("modular: global section: %w", err)
	}
	rct, err := r.ReadBit()
	if err != nil {
		return GlobalSection{}, fmt.Errorf("modular: global section: %w", err)
	}
	r.Align()
	channelCount, err := r.ReadBits(8)
	if err != nil {
		return GlobalSection{}, fmt.Errorf("modular: global section: %w", err)
	}
	treeType, err := r.ReadBits(8)
	if err != nil {
		return GlobalSection{}, fmt.Errorf("modular: global section: %w", err)
	}
	squeezeLevels, err := r.ReadBits(8)
	if err != nil {
		return GlobalSection{}, fmt.Errorf("modular: global section: %w", err)
	}
	return GlobalSection{
		Modular:       mod != 0,
		RCT:           rct != 0,
		ChannelCount:  int(channelCount),
		TreeType:      matree.TreeType(treeType),
		SqueezeLevels: int(squeezeLevels),
	}, nil
}

// ApplyRCT applies the reversible colour transform in place across the
// first 3 (or 4, alpha untouched) planes when channels qualify.
func ApplyRCT(planes []Plane) {
	if !colorxform.ShouldApplyRCT(len(planes)) {
		return
	}
	colorxform.ForwardRCT(planes[0].Samples, planes[1].Samples, planes[2].Samples)
}

// UnapplyRCT reverses ApplyRCT in place.
func UnapplyRCT(planes []Plane) {
	if !colorxform.ShouldApplyRCT(len(planes)) {
		return
	}
	colorxform.InverseRCT(planes[0].Samples, planes[1].Samples, planes[2].Samples)
}

// EncodeChannel runs MA-tree prediction and entropy coding over one
// channel's samples, returning the coded section bytes. channelIndex
// feeds the PropertyChannelIndex property.
func EncodeChannel(p Plane, tree *matree.Tree, channelIndex int, useANS bool) []byte {
	residual := make([]int32, len(p.Samples))
	w := bio.NewWriter()
	enc := entropy.NewEncoder(w, tree.ContextCount, useANS)

	sampleAt := func(x, y int) int32 { return p.Samples[y*p.Width+x] }
	residAt := func(x, y int) int32 { return residual[y*p.Width+x] }

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			nb := matree.Neighborhood(channelIndex, x, y, p.Width, sampleAt, residAt)
			predictor, ctx := tree.Evaluate(nb)
			pred := matree.Predict(predictor, nb)
			actual := p.Samples[y*p.Width+x]
			resid := actual - pred
			residual[y*p.Width+x] = resid
			enc.EncodeSigned(ctx, resid)
		}
	}
	return w.Bytes()
}

// DecodeChannel reverses EncodeChannel, reconstructing a width*height
// plane of samples from a coded section.
func DecodeChannel(data []byte, width, height int, tree *matree.Tree, channelIndex int) (Plane, error) {
	r := bio.NewReader(data)
	dec := entropy.NewDecoder(r, tree.ContextCount)

	samples := make([]int32, width*height)
	residual := make([]int32, width*height)

	sampleAt := func(x, y int) int32 { return samples[y*width+x] }
	residAt := func(x, y int) int32 { return residual[y*width+x] }

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			nb := matree.Neighborhood(channelIndex, x, y, width, sampleAt, residAt)
			predictor, ctx := tree.Evaluate(nb)
			pred := matree.Predict(predictor, nb)
			resid, err := dec.DecodeSigned(ctx)
			if err != nil {
				return Plane{}, fmt.Errorf("modular: channel %d pixel (%d,%d): %w", channelIndex, x, y, err)
			}
			residual[y*width+x] = resid
			samples[y*width+x] = pred + resid
		}
	}
	return Plane{Width: width, Height: height, Samples: samples}, nil
}

// EncodeFrame runs the full Modular pipeline over planes: RCT, Squeeze,
// then per-channel MA-tree prediction and entropy coding. It returns the
// global section bytes and one coded section per channel, in the order
// the Frame builder (C9) should place them.
func EncodeFrame(planes []Plane, opts Options) (global []byte, sections [][]byte, err error) {
	rct := colorxform.ShouldApplyRCT(len(planes))
	if rct {
		ApplyRCT(planes)
	}
	if opts.UseSqueeze {
		for _, p := range planes {
			squeeze.Forward(p.Samples, p.Width, p.Height, p.Width, opts.SqueezeLevels)
		}
	}

	tree := matree.Build(opts.TreeType)
	sections = make([][]byte, len(planes))
	for i, p := range planes {
		sections[i] = EncodeChannel(p, tree, i, opts.UseANS)
	}

	squeezeLevels := 0
	if opts.UseSqueeze {
		squeezeLevels = opts.SqueezeLevels
	}
	global = EncodeGlobalSection(len(planes), opts.TreeType, squeezeLevels, rct)
	return global, sections, nil
}

// DecodeFrame reverses EncodeFrame. width and height are shared by every
// channel; subsampled channels are not supported.
func DecodeFrame(global []byte, sections [][]byte, width, height int) ([]Plane, error) {
	gs, err := DecodeGlobalSection(global)
	if err != nil {
		return nil, err
	}
	if gs.ChannelCount != len(sections) {
		return nil, fmt.Errorf("modular: global section declares %d channels, got %d sections", gs.ChannelCount, len(sections))
	}
	tree := matree.Build(gs.TreeType)

	planes := make([]Plane, len(sections))
	for i, sec := range sections {
		p, err := DecodeChannel(sec, width, height, tree, i)
		if err != nil {
			return nil, err
		}
		planes[i] = p
	}

	if gs.SqueezeLevels > 0 {
		for i := range planes {
			squeeze.Inverse(planes[i].Samples, width, height, width, gs.SqueezeLevels)
		}
	}
	if gs.RCT {
		UnapplyRCT(planes)
	}
	return planes, nil
}
