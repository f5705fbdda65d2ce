package jxl

import (
	"go.uber.org/zap"

	"github.com/jxlgo/jxl/internal/bio"
	"github.com/jxlgo/jxl/internal/codestream"
	"github.com/jxlgo/jxl/internal/diag"
	"github.com/jxlgo/jxl/internal/matree"
	"github.com/jxlgo/jxl/internal/modular"
	"github.com/jxlgo/jxl/internal/section"
	"github.com/jxlgo/jxl/internal/vardct"
)

// Decoder parses JXL container/codestream bytes back into ImageFrame
// values.
type Decoder struct {
	cfg    *Config
	logger *zap.Logger
}

// NewDecoder builds a Decoder from cfg. A nil cfg is equivalent to
// DefaultConfig().
func NewDecoder(cfg *Config) *Decoder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = diag.New(diag.FileConfig{Path: cfg.LogFile})
	}
	return &Decoder{cfg: cfg, logger: logger}
}

// Decode parses data (bare codestream or container) and returns its
// first frame.
func (d *Decoder) Decode(data []byte) (ImageFrame, error) {
	frames, err := d.DecodeFrames(data)
	if err != nil {
		return ImageFrame{}, err
	}
	return frames[0], nil
}

// ExtractCodestream returns the bare codestream bytes, unwrapping a
// container if present.
func (d *Decoder) ExtractCodestream(data []byte) ([]byte, error) {
	if IsBareCodestream(data) {
		return data, nil
	}
	pc, err := ParseContainerBytes(data)
	if err != nil {
		return nil, err
	}
	return pc.Codestream, nil
}

// ParseContainer parses data's container boxes without decoding pixels.
func (d *Decoder) ParseContainer(data []byte) (*ParsedContainer, error) {
	if IsBareCodestream(data) {
		return &ParsedContainer{Codestream: data}, nil
	}
	return ParseContainerBytes(data)
}

// DecodeFrames parses every frame in data's codestream.
func (d *Decoder) DecodeFrames(data []byte) ([]ImageFrame, error) {
	codestreamBytes, err := d.ExtractCodestream(data)
	if err != nil {
		return nil, err
	}

	header, err := codestream.ParseImageHeader(codestreamBytes)
	if err != nil {
		return nil, wrapError(KindInvalidImageHeader, "image header", err)
	}
	d.logger.Debug("decoding codestream", zap.Uint32("width", header.Width), zap.Uint32("height", header.Height))

	r := bio.NewReader(codestreamBytes[header.HeaderSize:])
	frameCount, err := r.ReadU32Var()
	if err != nil {
		return nil, errTruncated("frame count")
	}
	if frameCount == 0 {
		return nil, errDecodingFailed("no frames present", nil)
	}

	frames := make([]ImageFrame, frameCount)
	for i := range frames {
		f, err := d.decodeOneFrame(r, *header)
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}
	return frames, nil
}

// decodeOneFrame reads one length-prefixed (frame header, global
// section, payload) triple from r and decodes it against header.
func (d *Decoder) decodeOneFrame(r *bio.Reader, header codestream.ImageHeader) (ImageFrame, error) {
	fhBytes, err := readLengthPrefixed(r)
	if err != nil {
		return ImageFrame{}, errTruncated("frame header")
	}
	fh, err := codestream.ParseFrameHeader(bio.NewReader(fhBytes))
	if err != nil {
		return ImageFrame{}, errInvalidFrameHeader(err.Error())
	}

	global, err := readLengthPrefixed(r)
	if err != nil {
		return ImageFrame{}, errTruncated("global section")
	}
	payload, err := readLengthPrefixed(r)
	if err != nil {
		return ImageFrame{}, errTruncated("frame payload")
	}

	return decodeFramePayload(header, fh, global, payload)
}

func readLengthPrefixed(r *bio.Reader) ([]byte, error) {
	n, err := r.ReadU32Var()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(n))
}

func decodeFramePayload(header codestream.ImageHeader, fh codestream.FrameHeader, global, payload []byte) (ImageFrame, error) {
	width, height := int(header.Width), int(header.Height)
	if fh.Encoding == codestream.EncodingModular {
		return decodeModularFrame(header, global, payload, width, height)
	}
	return decodeVarDCTFrame(header, global, payload, width, height)
}

func decodeModularFrame(header codestream.ImageHeader, global, payload []byte, width, height int) (ImageFrame, error) {
	sections, err := section.Decode(payload)
	if err != nil {
		return ImageFrame{}, errDecodingFailed("modular sections", err)
	}
	planes, err := modular.DecodeFrame(global, sections, width, height)
	if err != nil {
		return ImageFrame{}, errDecodingFailed("modular frame", err)
	}
	return ImageFrame{
		Width:         width,
		Height:        height,
		BitsPerSample: header.BitsPerSample,
		HasAlpha:      header.HasAlpha,
		ColorSpace:    ColorSpace(header.ColorSpace),
		Planes:        fromModularPlanes(planes, header.BitsPerSample),
	}, nil
}

func decodeVarDCTFrame(header codestream.ImageHeader, global, payload []byte, width, height int) (ImageFrame, error) {
	if len(payload) < 1 {
		return ImageFrame{}, errDecodingFailed("vardct payload", bio.ErrTruncated)
	}
	mode := payloadMode(payload[0])

	gs, err := vardct.DecodeGlobalSection(global)
	if err != nil {
		return ImageFrame{}, errDecodingFailed("vardct global section", err)
	}

	sections, err := section.Decode(payload[1:])
	if err != nil {
		return ImageFrame{}, errDecodingFailed("vardct sections", err)
	}

	colorChannels := gs.ChannelCount
	if header.HasAlpha {
		colorChannels--
	}

	colorSamples := make([][]float64, colorChannels)
	for i := 0; i < colorChannels; i++ {
		chroma := i > 0
		samples, err := decodeVarDCTPlane(sections[i], width, height, gs.Distance, chroma, mode)
		if err != nil {
			return ImageFrame{}, errDecodingFailed("vardct plane", err)
		}
		colorSamples[i] = samples
	}

	planes := composeVarDCTColorPlanes(colorSamples, gs.UseXYB, header.BitsPerSample)

	if header.HasAlpha {
		alphaIdx := gs.ChannelCount - 1
		tree := matree.Build(matree.TreeTypeDefault)
		alphaPlane, err := modular.DecodeChannel(sections[alphaIdx], width, height, tree, alphaIdx)
		if err != nil {
			return ImageFrame{}, errDecodingFailed("vardct alpha plane", err)
		}
		planes = append(planes, fromModularPlanes([]modular.Plane{alphaPlane}, header.BitsPerSample)[0])
	}

	return ImageFrame{
		Width:         width,
		Height:        height,
		BitsPerSample: header.BitsPerSample,
		HasAlpha:      header.HasAlpha,
		ColorSpace:    ColorSpace(header.ColorSpace),
		Planes:        planes,
	}, nil
}

func decodeVarDCTPlane(sec []byte, width, height int, distance float64, chroma bool, mode payloadMode) ([]float64, error) {
	opts := vardct.Options{Distance: distance, Chroma: chroma}
	switch mode {
	case payloadProgressive:
		passes, err := section.Decode(sec)
		if err != nil {
			return nil, err
		}
		var passArr [vardct.NumProgressivePasses][]byte
		copy(passArr[:], passes)
		return vardct.DecodePlaneProgressive(passArr, width, height, opts, nil)
	case payloadResponsive:
		layers, err := decodeResponsiveLayers(sec)
		if err != nil {
			return nil, err
		}
		results, err := DecodeResponsive(layers, width, height, chroma, nil)
		if err != nil {
			return nil, err
		}
		return results[len(results)-1], nil
	default:
		return vardct.DecodePlane(sec, width, height, opts)
	}
}

// decodeResponsiveLayers reverses encodeResponsiveLayers.
func decodeResponsiveLayers(data []byte) ([]ResponsiveLayer, error) {
	r := bio.NewReader(data)
	count, err := r.ReadU32Var()
	if err != nil {
		return nil, err
	}
	layers := make([]ResponsiveLayer, count)
	for i := range layers {
		scaled, err := r.ReadU32Var()
		if err != nil {
			return nil, err
		}
		coded, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}
		layers[i] = ResponsiveLayer{Distance: float64(scaled) / responsiveDistanceScale, Coded: coded}
	}
	return layers, nil
}

// DecodeProgressive decodes the first frame in data, invoking callback
// after each VarDCT progressive pass (exactly NumProgressivePasses
// times) or once at pass 0 for a Modular frame or a non-progressive
// VarDCT frame, per the layered-emission decode contract.
func (d *Decoder) DecodeProgressive(data []byte, callback func(frame ImageFrame, passIndex int)) error {
	codestreamBytes, err := d.ExtractCodestream(data)
	if err != nil {
		return err
	}
	header, err := codestream.ParseImageHeader(codestreamBytes)
	if err != nil {
		return wrapError(KindInvalidImageHeader, "image header", err)
	}
	r := bio.NewReader(codestreamBytes[header.HeaderSize:])
	if _, err := r.ReadU32Var(); err != nil {
		return errTruncated("frame count")
	}
	fhBytes, err := readLengthPrefixed(r)
	if err != nil {
		return errTruncated("frame header")
	}
	fh, err := codestream.ParseFrameHeader(bio.NewReader(fhBytes))
	if err != nil {
		return errInvalidFrameHeader(err.Error())
	}
	global, err := readLengthPrefixed(r)
	if err != nil {
		return errTruncated("global section")
	}
	payload, err := readLengthPrefixed(r)
	if err != nil {
		return errTruncated("frame payload")
	}

	width, height := int(header.Width), int(header.Height)

	if fh.Encoding == codestream.EncodingModular {
		frame, err := decodeModularFrame(*header, global, payload, width, height)
		if err != nil {
			return err
		}
		callback(frame, 0)
		return nil
	}

	if len(payload) < 1 || payloadMode(payload[0]) != payloadProgressive {
		frame, err := decodeVarDCTFrame(*header, global, payload, width, height)
		if err != nil {
			return err
		}
		callback(frame, 0)
		return nil
	}

	gs, err := vardct.DecodeGlobalSection(global)
	if err != nil {
		return errDecodingFailed("vardct global section", err)
	}
	sections, err := section.Decode(payload[1:])
	if err != nil {
		return errDecodingFailed("vardct sections", err)
	}

	colorChannels := gs.ChannelCount
	if header.HasAlpha {
		colorChannels--
	}

	// Decode every colour plane's three passes in lockstep so pass i of
	// every plane lands in the same callback invocation.
	passSets := make([][vardct.NumProgressivePasses][]byte, colorChannels)
	for i := 0; i < colorChannels; i++ {
		passes, err := section.Decode(sections[i])
		if err != nil {
			return errDecodingFailed("vardct progressive sections", err)
		}
		copy(passSets[i][:], passes)
	}

	accum := make([][]float64, colorChannels)
	for pass := 0; pass < vardct.NumProgressivePasses; pass++ {
		for i := 0; i < colorChannels; i++ {
			opts := vardct.Options{Distance: gs.Distance, Chroma: i > 0}
			var captured []float64
			_, err := vardct.DecodePlaneProgressive(passSets[i], width, height, opts, func(p int, samples []float64) {
				if p == pass {
					captured = samples
				}
			})
			if err != nil {
				return errDecodingFailed("vardct progressive plane", err)
			}
			accum[i] = captured
		}
		planes := composeVarDCTColorPlanes(accum, gs.UseXYB, header.BitsPerSample)
		frame := ImageFrame{
			Width: width, Height: height,
			BitsPerSample: header.BitsPerSample,
			HasAlpha:      false,
			ColorSpace:    ColorSpace(header.ColorSpace),
			Planes:        planes,
		}
		callback(frame, pass)
	}
	return nil
}
