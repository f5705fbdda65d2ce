package jxl

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jxlgo/jxl/internal/bio"
	"github.com/jxlgo/jxl/internal/codestream"
	"github.com/jxlgo/jxl/internal/diag"
	"github.com/jxlgo/jxl/internal/matree"
	"github.com/jxlgo/jxl/internal/modular"
	"github.com/jxlgo/jxl/internal/section"
	"github.com/jxlgo/jxl/internal/vardct"
)

// Encoder turns ImageFrame values into JXL codestream bytes, optionally
// wrapped in the ISOBMFF-style container.
type Encoder struct {
	opts   *Options
	logger *zap.Logger
}

// NewEncoder builds an Encoder from opts. A nil opts is equivalent to
// DefaultOptions().
func NewEncoder(opts *Options) *Encoder {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = diag.New(diag.FileConfig{Path: opts.LogFile})
	}
	return &Encoder{opts: opts, logger: logger}
}

// payloadMode selects how a VarDCT frame's colour-plane sections are
// laid out, stored as the payload's first byte.
type payloadMode byte

const (
	payloadPlain payloadMode = iota
	payloadProgressive
	payloadResponsive
)

// Encode encodes a single frame, returning the codestream bytes (wrapped
// in a container when opts carries EXIF/XMP/ICC/FrameIndex/Level) and
// encode-time Stats.
func (e *Encoder) Encode(frame ImageFrame) ([]byte, Stats, error) {
	start := time.Now()
	op := uuid.NewString()
	logger := diag.WithOp(e.logger, op)

	if err := frame.Validate(); err != nil {
		return nil, Stats{}, err
	}
	logger.Debug("encoding frame", zap.Int("width", frame.Width), zap.Int("height", frame.Height))

	data, err := e.EncodeFrames([]ImageFrame{frame})
	if err != nil {
		logger.Warn("encode failed", zap.Error(err))
		return nil, Stats{}, err
	}

	hasContainerMetadata := len(e.opts.EXIF) > 0 || len(e.opts.XMP) > 0 ||
		len(e.opts.ICCProfile) > 0 || len(e.opts.FrameIndex) > 0 || e.opts.Level != 0
	if hasContainerMetadata {
		data = BuildContainer(data, e.opts)
	}

	elapsed := time.Since(start)
	orig := originalSize(&frame)
	stats := Stats{
		OriginalSize:     orig,
		CompressedSize:   len(data),
		EncodingTimeNS:   elapsed.Nanoseconds(),
		CompressionRatio: compressionRatio(orig, len(data)),
	}
	return data, stats, nil
}

func compressionRatio(original, compressed int) float64 {
	if compressed == 0 {
		return 0
	}
	return float64(original) / float64(compressed)
}

// EncodeFrames encodes a sequence of frames sharing one ImageHeader (the
// first frame's dimensions/bit depth/colour space/alpha flag govern the
// whole stream; later frames must match). Returns the bare codestream,
// per spec §6 ("fails with EncodingFailed('empty frames') on empty
// input").
func (e *Encoder) EncodeFrames(frames []ImageFrame) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errEncodingFailed("empty frames")
	}
	for i := range frames {
		if err := frames[i].Validate(); err != nil {
			return nil, err
		}
		if i > 0 && !sameShape(frames[0], frames[i]) {
			return nil, errInvalidFrameHeader("frame shape differs from the stream's first frame")
		}
	}

	header := codestream.ImageHeader{
		Width:         uint32(frames[0].Width),
		Height:        uint32(frames[0].Height),
		BitsPerSample: frames[0].BitsPerSample,
		Channels:      uint8(frames[0].Channels()),
		ColorSpace:    codestream.ColorSpace(frames[0].ColorSpace),
		HasAlpha:      frames[0].HasAlpha,
	}

	w := bio.NewWriter()
	w.WriteBytes(header.Encode())
	w.WriteU32Var(uint32(len(frames)))

	for i, f := range frames {
		fh := e.buildFrameHeader(i, len(frames))
		fhw := bio.NewWriter()
		if err := fh.Encode(fhw); err != nil {
			return nil, errInvalidFrameHeader(err.Error())
		}
		fhBytes := fhw.Bytes()

		global, payload, err := e.encodeFramePayload(f, fh.Encoding)
		if err != nil {
			return nil, err
		}

		w.WriteU32Var(uint32(len(fhBytes)))
		w.WriteBytes(fhBytes)
		w.WriteU32Var(uint32(len(global)))
		w.WriteBytes(global)
		w.WriteU32Var(uint32(len(payload)))
		w.WriteBytes(payload)
	}
	return w.Bytes(), nil
}

func sameShape(a, b ImageFrame) bool {
	return a.Width == b.Width && a.Height == b.Height &&
		a.BitsPerSample == b.BitsPerSample && a.HasAlpha == b.HasAlpha &&
		a.Channels() == b.Channels()
}

// buildFrameHeader derives one frame's header from encoder options and
// its position in the stream.
func (e *Encoder) buildFrameHeader(index, total int) codestream.FrameHeader {
	fh := codestream.DefaultFrameHeader()
	fh.IsLast = index == total-1
	if e.lossless() {
		fh.Encoding = codestream.EncodingModular
	} else {
		fh.Encoding = codestream.EncodingVarDCT
	}
	if !e.lossless() && e.opts.Progressive && !e.opts.ResponsiveEncoding {
		fh.NumPasses = vardct.NumProgressivePasses
	}
	if index < len(e.opts.FrameDurations) {
		fh.Duration = uint32(e.opts.FrameDurations[index].Milliseconds())
	}
	return fh
}

func (e *Encoder) lossless() bool {
	return e.opts.ModularMode || e.opts.Mode == ModeLossless
}

func (e *Encoder) distance() float64 {
	switch e.opts.Mode {
	case ModeDistance:
		return e.opts.Distance
	default:
		return vardct.DistanceFromQuality(e.opts.Quality)
	}
}

// encodeFramePayload builds one frame's global section and coded
// payload, dispatching on encoding.
func (e *Encoder) encodeFramePayload(f ImageFrame, encoding codestream.Encoding) (global, payload []byte, err error) {
	if encoding == codestream.EncodingModular {
		return e.encodeModularFrame(f)
	}
	return e.encodeVarDCTFrame(f)
}

func (e *Encoder) encodeModularFrame(f ImageFrame) (global, payload []byte, err error) {
	planes := toModularPlanes(f)
	opts := modular.DefaultOptions()
	opts.TreeType = matree.ForEffort(string(e.opts.Effort))
	opts.UseANS = e.opts.UseANS

	global, sections, err := modular.EncodeFrame(planes, opts)
	if err != nil {
		return nil, nil, errEncodingFailed(err.Error())
	}
	return global, section.Encode(sections), nil
}

func (e *Encoder) encodeVarDCTFrame(f ImageFrame) (global, payload []byte, err error) {
	distance := e.distance()
	colorPlanes := buildVarDCTColorPlanes(f, e.opts.UseXYBColorSpace)
	channels := f.Channels()

	mode := payloadPlain
	switch {
	case e.opts.ResponsiveEncoding:
		mode = payloadResponsive
	case e.opts.Progressive:
		mode = payloadProgressive
	}

	sections := make([][]byte, channels)
	for i, samples := range colorPlanes.samples {
		vdOpts := vardct.Options{Distance: distance, Chroma: colorPlanes.chroma[i]}
		switch mode {
		case payloadProgressive:
			passes, _ := vardct.EncodePlaneProgressive(samples, f.Width, f.Height, vdOpts)
			sections[i] = section.Encode([][]byte{passes[0], passes[1], passes[2]})
		case payloadResponsive:
			layers, lerr := EncodeResponsive(samples, f.Width, f.Height, colorPlanes.chroma[i], e.opts.ResponsiveConfig)
			if lerr != nil {
				return nil, nil, lerr
			}
			sections[i] = encodeResponsiveLayers(layers)
		default:
			coded, _ := vardct.EncodePlane(samples, f.Width, f.Height, vdOpts)
			sections[i] = coded
		}
	}

	if f.HasAlpha {
		alphaIdx := channels - 1
		tree := matree.Build(matree.TreeTypeDefault)
		alphaPlane := modular.Plane{Width: f.Width, Height: f.Height, Samples: int32Samples(f.Planes[alphaIdx])}
		sections[alphaIdx] = modular.EncodeChannel(alphaPlane, tree, alphaIdx, false)
	}

	global = vardct.EncodeGlobalSection(vardct.GlobalSection{
		ChannelCount: channels,
		Progressive:  mode == payloadProgressive,
		UseXYB:       e.opts.UseXYBColorSpace,
		Distance:     distance,
	})
	payload = append([]byte{byte(mode)}, section.Encode(sections)...)
	return global, payload, nil
}

func int32Samples(p []uint16) []int32 {
	out := make([]int32, len(p))
	for i, v := range p {
		out[i] = int32(v)
	}
	return out
}

// responsiveDistanceScale fixes a responsive layer's distance to a
// 1/1000 unit when framed as a U32-var, matching
// internal/vardct.distanceScale's precision.
const responsiveDistanceScale = 1000

// encodeResponsiveLayers serialises the layers EncodeResponsive returns
// into one length-prefixed blob per layer.
func encodeResponsiveLayers(layers []ResponsiveLayer) []byte {
	w := bio.NewWriter()
	w.WriteU32Var(uint32(len(layers)))
	for _, l := range layers {
		w.WriteU32Var(uint32(l.Distance * responsiveDistanceScale))
		w.WriteU32Var(uint32(len(l.Coded)))
		w.WriteBytes(l.Coded)
	}
	return w.Bytes()
}
