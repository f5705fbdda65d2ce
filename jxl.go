// Package jxl is a pure, from-scratch implementation of a JPEG XL
// (ISO/IEC 18181) codestream and container encoder/decoder. It accepts a
// planar raster (ImageFrame) and emits a JXL codestream, optionally
// wrapped in an ISOBMFF-style container, and parses one back to pixels.
//
// Basic usage for encoding:
//
//	enc := jxl.NewEncoder(jxl.DefaultOptions())
//	data, stats, err := enc.Encode(frame)
//
// Basic usage for decoding:
//
//	dec := jxl.NewDecoder(jxl.DefaultConfig())
//	frame, err := dec.Decode(data)
package jxl

import "fmt"

// ImageFrame is a planar, row-major raster: one contiguous plane of
// samples per channel, each Width*Height values long, per spec §3.
type ImageFrame struct {
	Width, Height int
	BitsPerSample uint8 // one of 8, 10, 12, 16, 32
	HasAlpha      bool
	AlphaMode     AlphaMode
	ColorSpace    ColorSpace

	// Planes holds one row-major plane per channel, in channel order
	// (for colour frames: R/G/B or Y/Co/Cg, then alpha last if present).
	// Every plane is Width*Height long. Samples are stored as u16
	// regardless of BitsPerSample; callers scale to BitsPerSample range
	// themselves (this mirrors how the Modular channel plane is defined
	// in spec §3, which is always a u16 matrix).
	Planes [][]uint16
}

// Channels returns the number of channel planes.
func (f *ImageFrame) Channels() int {
	return len(f.Planes)
}

var validBitsPerSampleValues = map[uint8]bool{8: true, 10: true, 12: true, 16: true, 32: true}

// Validate checks the invariants spec §3 places on ImageFrame: positive
// dimensions, a legal channel count, channel count consistent with the
// colour-space family and the alpha flag, a legal bit depth, and planes
// sized to match Width*Height.
func (f *ImageFrame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return errInvalidDimensions(f.Width, f.Height)
	}
	channels := f.Channels()
	switch channels {
	case 1, 2, 3, 4:
	default:
		return errInvalidImageHeader(fmt.Sprintf("channel count %d not in {1,2,3,4}", channels))
	}
	if f.ColorSpace.isGray() && channels != 1 && channels != 2 {
		return errInvalidImageHeader("grayscale colour space requires 1 or 2 channels")
	}
	if !f.ColorSpace.isGray() && (channels == 1 || channels == 2) {
		return errInvalidImageHeader("non-grayscale colour space requires 3 or 4 channels")
	}
	wantAlpha := channels == 2 || channels == 4
	if f.HasAlpha != wantAlpha {
		return errInvalidImageHeader(fmt.Sprintf("HasAlpha=%v inconsistent with channel count %d", f.HasAlpha, channels))
	}
	if !validBitsPerSampleValues[f.BitsPerSample] {
		return errInvalidImageHeader(fmt.Sprintf("bits-per-sample %d not in {8,10,12,16,32}", f.BitsPerSample))
	}
	expected := f.Width * f.Height
	for i, p := range f.Planes {
		if len(p) != expected {
			return errInvalidImageHeader(fmt.Sprintf("plane %d has %d samples, want %d", i, len(p), expected))
		}
	}
	return nil
}

// Stats reports encode-time measurements, per spec §6's
// "stats carries original_size, compressed_size, compression_ratio,
// encoding_time_ns".
type Stats struct {
	OriginalSize     int
	CompressedSize   int
	CompressionRatio float64
	EncodingTimeNS   int64
}

// originalSize estimates the uncompressed size of a frame: one sample
// per plane entry, sized by the narrowest integer type that holds
// BitsPerSample (matching how a real in-memory raster would be sized).
func originalSize(f *ImageFrame) int {
	bytesPerSample := 1
	switch {
	case f.BitsPerSample > 16:
		bytesPerSample = 4
	case f.BitsPerSample > 8:
		bytesPerSample = 2
	}
	total := 0
	for _, p := range f.Planes {
		total += len(p) * bytesPerSample
	}
	return total
}
