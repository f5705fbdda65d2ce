// Package codestream implements the JPEG XL codestream header state
// machine: the bit-packed SizeHeader, the fixed-layout ImageHeader used by
// the top-level decoder, and the FrameHeader with its all-default
// shortcut.
package codestream

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jxlgo/jxl/internal/bio"
)

// ErrInvalidDimensions is returned when a width or height is zero.
var ErrInvalidDimensions = errors.New("codestream: invalid dimensions")

// Signature is the 2-byte marker that opens every bare JXL codestream.
var Signature = [2]byte{0xFF, 0x0A}

// dimensionSelectorBits maps a 2-bit selector to the bit width used to
// encode a dimension value, per spec §4.2's "14-bit/18-bit/22-bit/30-bit
// general dimension selector".
var dimensionSelectorBits = [4]uint{14, 18, 22, 30}

// writeDimension picks the narrowest selector that can hold v and writes
// the 2-bit selector followed by the value.
func writeDimension(w *bio.Writer, v uint32) {
	for sel, bits := range dimensionSelectorBits {
		if v < uint32(1)<<bits {
			w.WriteBits(uint64(sel), 2)
			w.WriteBits(uint64(v), bits)
			return
		}
	}
	// Unreachable from SizeHeader.Encode, which rejects dimensions of
	// 2^30 or more (ErrInvalidDimensions) since selector 3 holds only 30
	// bits.
	w.WriteBits(3, 2)
	w.WriteBits(uint64(v), 30)
}

func readDimension(r *bio.Reader) (uint32, error) {
	sel, err := r.ReadBits(2)
	if err != nil {
		return 0, err
	}
	bits := dimensionSelectorBits[sel]
	v, err := r.ReadBits(bits)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// commonRatios is the 8-bit shortcut table: index 0 means "no shortcut,
// encode height explicitly". A nonzero index derives height from width as
// width/numer*denom.
var commonRatios = []struct{ numer, denom uint32 }{
	{0, 0},  // unused: index 0 means "explicit height"
	{1, 1},  // 1:1
	{6, 5},  // 6:5
	{4, 3},  // 4:3
	{3, 2},  // 3:2
	{16, 9}, // 16:9
	{5, 4},  // 5:4
	{2, 1},  // 2:1
}

// SizeHeader encodes an image's width and height with the small-value
// ratio shortcut plus the general bit-packed dimension selector.
type SizeHeader struct {
	Width, Height uint32
}

// Encode writes the size header to w. Fails with ErrInvalidDimensions if
// either dimension is zero or does not fit the 30-bit dimension selector.
func (s SizeHeader) Encode(w *bio.Writer) error {
	if s.Width == 0 || s.Height == 0 {
		return ErrInvalidDimensions
	}
	if s.Width >= 1<<30 || s.Height >= 1<<30 {
		return ErrInvalidDimensions
	}
	for idx := 1; idx < len(commonRatios); idx++ {
		r := commonRatios[idx]
		if s.Width%r.numer == 0 && s.Width/r.numer*r.denom == s.Height {
			w.WriteBits(uint64(idx), 8)
			writeDimension(w, s.Width)
			return nil
		}
	}
	w.WriteBits(0, 8)
	writeDimension(w, s.Width)
	writeDimension(w, s.Height)
	return nil
}

// Decode reads a size header written by Encode.
func (s *SizeHeader) Decode(r *bio.Reader) error {
	ratio, err := r.ReadBits(8)
	if err != nil {
		return err
	}
	width, err := readDimension(r)
	if err != nil {
		return err
	}
	s.Width = width
	if ratio == 0 {
		height, err := readDimension(r)
		if err != nil {
			return err
		}
		s.Height = height
	} else {
		if int(ratio) >= len(commonRatios) {
			return fmt.Errorf("codestream: invalid ratio selector %d", ratio)
		}
		rt := commonRatios[ratio]
		s.Height = width / rt.numer * rt.denom
	}
	if s.Width == 0 || s.Height == 0 {
		return ErrInvalidDimensions
	}
	return nil
}

// ColorSpace is the colour-space family indicator carried by ImageHeader.
type ColorSpace uint8

const (
	ColorSpaceSRGB ColorSpace = iota
	ColorSpaceLinearRGB
	ColorSpaceGray
	ColorSpaceDisplayP3
	ColorSpaceRec2020PQ
	ColorSpaceCustom
)

// ImageHeaderSize is the fixed on-wire size of an ImageHeader.
const ImageHeaderSize = 14

// ImageHeader is the fixed 14-byte layout from spec §4.2: signature,
// width, height, bits-per-sample, channel count, colour space, alpha
// flag. This is the simplified layout the same-implementation round-trip
// contract targets (spec §9 Open Question #1); it is not the bit-packed
// ISO/IEC 18181-1 layout.
type ImageHeader struct {
	Width, Height uint32
	BitsPerSample uint8
	Channels      uint8
	ColorSpace    ColorSpace
	HasAlpha      bool
	HeaderSize    int // computed on Parse; always ImageHeaderSize
}

// Encode returns the 14-byte on-wire form.
func (h ImageHeader) Encode() []byte {
	buf := make([]byte, ImageHeaderSize)
	buf[0], buf[1] = Signature[0], Signature[1]
	binary.BigEndian.PutUint32(buf[2:6], h.Width)
	binary.BigEndian.PutUint32(buf[6:10], h.Height)
	buf[10] = h.BitsPerSample
	buf[11] = h.Channels
	buf[12] = uint8(h.ColorSpace)
	if h.HasAlpha {
		buf[13] = 1
	}
	return buf
}

// ParseImageHeader parses the 14-byte ImageHeader layout.
func ParseImageHeader(data []byte) (*ImageHeader, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("codestream: %w", bio.ErrTruncated)
	}
	if data[0] != Signature[0] || data[1] != Signature[1] {
		return nil, errors.New("codestream: signature mismatch")
	}
	if len(data) < ImageHeaderSize {
		return nil, fmt.Errorf("codestream: %w", bio.ErrTruncated)
	}
	h := &ImageHeader{
		Width:         binary.BigEndian.Uint32(data[2:6]),
		Height:        binary.BigEndian.Uint32(data[6:10]),
		BitsPerSample: data[10],
		Channels:      data[11],
		ColorSpace:    ColorSpace(data[12]),
		HasAlpha:      data[13] != 0,
		HeaderSize:    ImageHeaderSize,
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, ErrInvalidDimensions
	}
	return h, nil
}

// FrameType enumerates the frame-type field of FrameHeader.
type FrameType uint8

const (
	FrameRegular FrameType = iota
	FrameDCOnly
	FrameReferenceOnly
)

// Encoding selects the coding branch a frame uses.
type Encoding uint8

const (
	EncodingVarDCT Encoding = iota
	EncodingModular
)

// BlendMode selects how a frame composites onto the canvas.
type BlendMode uint8

const (
	BlendReplace BlendMode = iota
	BlendBlend
)

// FrameHeader carries the per-frame metadata of spec §3/§4.2, with an
// all-default shortcut bit that elides every other field when the
// defaults apply.
type FrameHeader struct {
	FrameType       FrameType
	Encoding        Encoding
	BlendMode       BlendMode
	IsLast          bool
	SaveAsReference uint8 // 0-3
	Duration        uint32
	NumPasses       uint32
	NumGroups       uint32
	Name            string
}

// DefaultFrameHeader returns the canonical all-default frame header.
func DefaultFrameHeader() FrameHeader {
	return FrameHeader{
		FrameType: FrameRegular,
		Encoding:  EncodingVarDCT,
		BlendMode: BlendReplace,
		IsLast:    true,
		Duration:  0,
		NumPasses: 1,
		NumGroups: 1,
		Name:      "",
	}
}

// isAllDefault reports whether h matches every default field, including
// SaveAsReference at its zero value (the shortcut does not special-case
// it).
func (h FrameHeader) isAllDefault() bool {
	d := DefaultFrameHeader()
	return h.FrameType == d.FrameType &&
		h.Encoding == d.Encoding &&
		h.BlendMode == d.BlendMode &&
		h.IsLast == d.IsLast &&
		h.SaveAsReference == 0 &&
		h.Duration == d.Duration &&
		h.NumPasses == d.NumPasses &&
		h.NumGroups == d.NumGroups &&
		h.Name == d.Name
}

// MaxNameLength is the spec-mandated cap on a frame name's UTF-8 length.
const MaxNameLength = 1071

// Encode serialises the frame header to w.
func (h FrameHeader) Encode(w *bio.Writer) error {
	if len(h.Name) > MaxNameLength {
		return fmt.Errorf("codestream: frame name exceeds %d bytes", MaxNameLength)
	}
	if h.isAllDefault() {
		w.WriteBit(1)
		return nil
	}
	w.WriteBit(0)
	w.WriteBits(uint64(h.FrameType), 2)
	w.WriteBits(uint64(h.Encoding), 1)
	w.WriteBits(uint64(h.BlendMode), 1)
	w.WriteBit(boolBit(h.IsLast))
	w.WriteBits(uint64(h.SaveAsReference), 2)
	w.WriteU32Var(h.Duration)
	w.WriteU32Var(h.NumPasses)
	w.WriteU32Var(h.NumGroups)
	nameBytes := []byte(h.Name)
	w.WriteU32Var(uint32(len(nameBytes)))
	w.WriteBytes(nameBytes)
	return nil
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ParseFrameHeader parses a frame header written by Encode.
func ParseFrameHeader(r *bio.Reader) (FrameHeader, error) {
	allDefault, err := r.ReadBit()
	if err != nil {
		return FrameHeader{}, err
	}
	if allDefault != 0 {
		return DefaultFrameHeader(), nil
	}
	var h FrameHeader
	frameType, err := r.ReadBits(2)
	if err != nil {
		return FrameHeader{}, err
	}
	if frameType > uint64(FrameReferenceOnly) {
		return FrameHeader{}, fmt.Errorf("codestream: invalid frame type tag %d", frameType)
	}
	h.FrameType = FrameType(frameType)

	encoding, err := r.ReadBits(1)
	if err != nil {
		return FrameHeader{}, err
	}
	h.Encoding = Encoding(encoding)

	blend, err := r.ReadBits(1)
	if err != nil {
		return FrameHeader{}, err
	}
	h.BlendMode = BlendMode(blend)

	isLast, err := r.ReadBit()
	if err != nil {
		return FrameHeader{}, err
	}
	h.IsLast = isLast != 0

	saveRef, err := r.ReadBits(2)
	if err != nil {
		return FrameHeader{}, err
	}
	h.SaveAsReference = uint8(saveRef)

	if h.Duration, err = r.ReadU32Var(); err != nil {
		return FrameHeader{}, err
	}
	if h.NumPasses, err = r.ReadU32Var(); err != nil {
		return FrameHeader{}, err
	}
	if h.NumGroups, err = r.ReadU32Var(); err != nil {
		return FrameHeader{}, err
	}
	nameLen, err := r.ReadU32Var()
	if err != nil {
		return FrameHeader{}, err
	}
	if nameLen > MaxNameLength {
		return FrameHeader{}, fmt.Errorf("codestream: frame name length %d exceeds maximum", nameLen)
	}
	nameBytes, err := r.ReadBytes(int(nameLen))
	if err != nil {
		return FrameHeader{}, err
	}
	h.Name = string(nameBytes)
	return h, nil
}
