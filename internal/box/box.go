// Package box implements ISOBMFF-style box parsing and generation for the
// JPEG XL container format.
//
// A JXL container is a sequence of boxes, each:
//   - 4-byte length (or 1 for an extended 64-bit length, or 0 for
//     box-extends-to-EOF)
//   - 4-byte type code
//   - optional 8-byte extended length (only when length field == 1)
//   - payload (length - header size bytes)
package box

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/jxlgo/jxl/internal/bio"
)

// Type is a 4-byte box type code.
type Type uint32

// String returns the 4-character type code.
func (t Type) String() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(t))
	return string(b)
}

// Box type codes used by the JXL container, per spec §4.3/§6.
const (
	TypeJXLSignature Type = 0x4A584C20 // "JXL "
	TypeFileType     Type = 0x66747970 // "ftyp"
	TypeLevel        Type = 0x6A786C6C // "jxll"
	TypeColor        Type = 0x636F6C72 // "colr"
	TypeFrameIndex   Type = 0x6A786C69 // "jxli"
	TypeExif         Type = 0x45786966 // "Exif"
	TypeXML          Type = 0x786D6C20 // "xml "
	TypeCodestream   Type = 0x6A786C63 // "jxlc"
	TypeBrotliRaw    Type = 0x6A627264 // "jbrd"
)

// SignaturePayload is the fixed 4-byte payload of the 12-byte JXL
// signature box.
var SignaturePayload = [4]byte{0x0D, 0x0A, 0x87, 0x0A}

// CodestreamSignature is the 2-byte signature that opens a bare codestream.
var CodestreamSignature = [2]byte{0xFF, 0x0A}

// Box is one parsed or to-be-written container box.
type Box struct {
	Type     Type
	Contents []byte
}

// length returns the total on-wire box length including its header.
func (b *Box) length() uint64 {
	return uint64(8 + len(b.Contents))
}

// Header returns the box header bytes (8, or 16 for an extended length).
func (b *Box) Header() []byte {
	l := b.length()
	if l <= 0xFFFFFFFF {
		header := make([]byte, 8)
		binary.BigEndian.PutUint32(header[0:4], uint32(l))
		binary.BigEndian.PutUint32(header[4:8], uint32(b.Type))
		return header
	}
	header := make([]byte, 16)
	binary.BigEndian.PutUint32(header[0:4], 1)
	binary.BigEndian.PutUint32(header[4:8], uint32(b.Type))
	binary.BigEndian.PutUint64(header[8:16], l)
	return header
}

// Bytes returns the complete box (header + payload).
func (b *Box) Bytes() []byte {
	header := b.Header()
	out := make([]byte, len(header)+len(b.Contents))
	copy(out, header)
	copy(out[len(header):], b.Contents)
	return out
}

// Reader walks a sequence of boxes in a byte slice.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a box reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBox reads the next box, or returns io.EOF once the input is
// exhausted at a box boundary.
func (r *Reader) ReadBox() (*Box, error) {
	if r.pos >= len(r.data) {
		return nil, io.EOF
	}
	if r.pos+8 > len(r.data) {
		return nil, fmt.Errorf("box: truncated header at offset %d", r.pos)
	}
	length := uint64(binary.BigEndian.Uint32(r.data[r.pos : r.pos+4]))
	typ := Type(binary.BigEndian.Uint32(r.data[r.pos+4 : r.pos+8]))
	headerLen := 8

	switch length {
	case 1:
		if r.pos+16 > len(r.data) {
			return nil, fmt.Errorf("box: truncated extended length at offset %d", r.pos)
		}
		length = binary.BigEndian.Uint64(r.data[r.pos+8 : r.pos+16])
		headerLen = 16
	case 0:
		length = uint64(len(r.data) - r.pos)
	}

	if length < uint64(headerLen) {
		return nil, fmt.Errorf("box: invalid box length %d", length)
	}
	contentLen := length - uint64(headerLen)
	if r.pos+headerLen+int(contentLen) > len(r.data) {
		return nil, fmt.Errorf("box: %q box extends past end of input", typ)
	}

	start := r.pos + headerLen
	end := start + int(contentLen)
	contents := make([]byte, contentLen)
	copy(contents, r.data[start:end])
	r.pos = end

	return &Box{Type: typ, Contents: contents}, nil
}

// Offset returns the current stream offset.
func (r *Reader) Offset() int {
	return r.pos
}

// WriteSignatureBox returns the JXL signature box (12 bytes total).
func WriteSignatureBox() *Box {
	return &Box{Type: TypeJXLSignature, Contents: SignaturePayload[:]}
}

// FileTypeBox is the "ftyp" box: a brand plus a compatible-brand list.
type FileTypeBox struct {
	Brand         Type
	MinorVersion  uint32
	Compatibility []Type
}

// Bytes returns the ftyp box payload.
func (b *FileTypeBox) Bytes() []byte {
	data := make([]byte, 8+4*len(b.Compatibility))
	binary.BigEndian.PutUint32(data[0:4], uint32(b.Brand))
	binary.BigEndian.PutUint32(data[4:8], b.MinorVersion)
	for i, c := range b.Compatibility {
		binary.BigEndian.PutUint32(data[8+i*4:], uint32(c))
	}
	return data
}

// ParseFileTypeBox parses an ftyp box payload.
func ParseFileTypeBox(data []byte) (*FileTypeBox, error) {
	if len(data) < 8 {
		return nil, errors.New("box: ftyp box too short")
	}
	b := &FileTypeBox{
		Brand:        Type(binary.BigEndian.Uint32(data[0:4])),
		MinorVersion: binary.BigEndian.Uint32(data[4:8]),
	}
	n := (len(data) - 8) / 4
	b.Compatibility = make([]Type, n)
	for i := 0; i < n; i++ {
		b.Compatibility[i] = Type(binary.BigEndian.Uint32(data[8+i*4:]))
	}
	return b, nil
}

// DefaultFileTypeBox returns the conventional ftyp box for a JXL file.
func DefaultFileTypeBox() *Box {
	ftyp := &FileTypeBox{
		Brand:         brandJXL,
		MinorVersion:  0,
		Compatibility: []Type{brandJXL},
	}
	return &Box{Type: TypeFileType, Contents: ftyp.Bytes()}
}

var brandJXL = Type(binary.BigEndian.Uint32([]byte("jxl ")))

// ExifBox returns an "Exif" box: a 4-byte big-endian TIFF offset (0 unless
// the caller pre-pads) followed by the raw TIFF-II blob.
func ExifBox(tiffOffset uint32, tiff []byte) *Box {
	payload := make([]byte, 4+len(tiff))
	binary.BigEndian.PutUint32(payload[0:4], tiffOffset)
	copy(payload[4:], tiff)
	return &Box{Type: TypeExif, Contents: payload}
}

// ParseExifBox splits an Exif box payload into its offset prefix and TIFF
// blob.
func ParseExifBox(data []byte) (offset uint32, tiff []byte, err error) {
	if len(data) < 4 {
		return 0, nil, errors.New("box: Exif box too short")
	}
	return binary.BigEndian.Uint32(data[0:4]), data[4:], nil
}

// XMLBox returns an "xml " box wrapping raw UTF-8 XML bytes.
func XMLBox(xml []byte) *Box {
	return &Box{Type: TypeXML, Contents: xml}
}

// LevelBox returns a "jxll" box carrying the level indicator (5 or 10).
func LevelBox(level uint8) *Box {
	return &Box{Type: TypeLevel, Contents: []byte{level}}
}

// ParseLevelBox parses a jxll box payload.
func ParseLevelBox(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, errors.New("box: jxll box too short")
	}
	return data[0], nil
}

// ColorBox returns a "colr" box wrapping an ICC profile blob.
func ColorBox(icc []byte) *Box {
	return &Box{Type: TypeColor, Contents: icc}
}

// CodestreamBox wraps a codestream blob in a "jxlc" box.
func CodestreamBox(codestream []byte) *Box {
	return &Box{Type: TypeCodestream, Contents: codestream}
}

// FrameIndexEntry is one entry of a "jxli" frame index.
type FrameIndexEntry struct {
	FrameNumber uint32
	ByteOffset  uint64
	Duration    uint32
}

// EncodeFrameIndex serialises frame index entries as
// count(U32-var) (frameNumber, byteOffset, duration)* and wraps the result
// in a "jxli" box.
func EncodeFrameIndex(entries []FrameIndexEntry) *Box {
	w := bio.NewWriter()
	w.WriteU32Var(uint32(len(entries)))
	for _, e := range entries {
		w.WriteU32Var(e.FrameNumber)
		w.WriteU64Var(e.ByteOffset)
		w.WriteU32Var(e.Duration)
	}
	return &Box{Type: TypeFrameIndex, Contents: w.Bytes()}
}

// DecodeFrameIndex parses frame index entries from a jxli box payload.
func DecodeFrameIndex(data []byte) ([]FrameIndexEntry, error) {
	r := bio.NewReader(data)
	count, err := r.ReadU32Var()
	if err != nil {
		return nil, fmt.Errorf("frame index count: %w", err)
	}
	entries := make([]FrameIndexEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		frameNumber, err := r.ReadU32Var()
		if err != nil {
			return nil, fmt.Errorf("frame index entry %d: %w", i, err)
		}
		byteOffset, err := r.ReadU64Var()
		if err != nil {
			return nil, fmt.Errorf("frame index entry %d: %w", i, err)
		}
		duration, err := r.ReadU32Var()
		if err != nil {
			return nil, fmt.Errorf("frame index entry %d: %w", i, err)
		}
		entries = append(entries, FrameIndexEntry{
			FrameNumber: frameNumber,
			ByteOffset:  byteOffset,
			Duration:    duration,
		})
	}
	return entries, nil
}
