package jxl

import (
	"bytes"
	"io"

	"github.com/rwcarlsen/goexif/tiff"

	"github.com/jxlgo/jxl/internal/box"
)

// ParsedContainer is a container's codestream plus whatever optional
// metadata boxes were present, per spec §3's Container data model.
type ParsedContainer struct {
	Codestream []byte

	EXIF     []byte
	ExifTIFF *tiff.Tiff // parsed form of EXIF, nil if EXIF is empty or fails to parse as TIFF-II

	XMP []byte

	ICCProfile []byte

	FrameIndex []box.FrameIndexEntry

	Level    uint8
	HasLevel bool
}

// IsBareCodestream reports whether data opens with the bare codestream
// signature rather than a container, per spec §4.3.
func IsBareCodestream(data []byte) bool {
	return len(data) >= 2 && data[0] == box.CodestreamSignature[0] && data[1] == box.CodestreamSignature[1]
}

// BuildContainer wraps codestream in the ISOBMFF-style container, in the
// fixed emission order from spec §4.3: signature, ftyp, optional jxll,
// optional colr, optional jxli, optional Exif, optional xml, then jxlc.
func BuildContainer(codestream []byte, opts *Options) []byte {
	var out []byte
	out = append(out, box.WriteSignatureBox().Bytes()...)
	out = append(out, box.DefaultFileTypeBox().Bytes()...)
	if opts.Level != 0 {
		out = append(out, box.LevelBox(opts.Level).Bytes()...)
	}
	if len(opts.ICCProfile) > 0 {
		out = append(out, box.ColorBox(opts.ICCProfile).Bytes()...)
	}
	if len(opts.FrameIndex) > 0 {
		out = append(out, box.EncodeFrameIndex(opts.FrameIndex).Bytes()...)
	}
	if opts.EXIF != nil {
		out = append(out, box.ExifBox(0, opts.EXIF).Bytes()...)
	}
	if opts.XMP != nil {
		out = append(out, box.XMLBox(opts.XMP).Bytes()...)
	}
	out = append(out, box.CodestreamBox(codestream).Bytes()...)
	return out
}

// ParseContainerBytes walks a container's boxes, per spec §4.3's linear
// walk: a box whose declared size exceeds the remaining bytes fails with
// InvalidContainer.
func ParseContainerBytes(data []byte) (*ParsedContainer, error) {
	r := box.NewReader(data)
	pc := &ParsedContainer{}
	for {
		b, err := r.ReadBox()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapError(KindInvalidContainer, "box walk", err)
		}
		switch b.Type {
		case box.TypeJXLSignature, box.TypeFileType:
			// Structural boxes, nothing to expose.
		case box.TypeLevel:
			level, err := box.ParseLevelBox(b.Contents)
			if err != nil {
				return nil, wrapError(KindInvalidContainer, "jxll box", err)
			}
			pc.Level = level
			pc.HasLevel = true
		case box.TypeColor:
			pc.ICCProfile = b.Contents
		case box.TypeFrameIndex:
			entries, err := box.DecodeFrameIndex(b.Contents)
			if err != nil {
				return nil, wrapError(KindInvalidContainer, "jxli box", err)
			}
			pc.FrameIndex = entries
		case box.TypeExif:
			_, tiffBytes, err := box.ParseExifBox(b.Contents)
			if err != nil {
				return nil, wrapError(KindInvalidContainer, "Exif box", err)
			}
			pc.EXIF = tiffBytes
			pc.ExifTIFF = parseExifTIFF(tiffBytes)
		case box.TypeXML:
			pc.XMP = b.Contents
		case box.TypeCodestream:
			pc.Codestream = b.Contents
		default:
			// Unknown boxes (e.g. jbrd) are skipped: spec §4.3 does not
			// require surfacing them through ParsedContainer.
		}
	}
	if pc.Codestream == nil {
		return nil, errInvalidContainer("no jxlc codestream box present")
	}
	return pc, nil
}

// parseExifTIFF attempts to parse an Exif box's TIFF-II payload,
// returning nil (not an error) on failure: the raw bytes are still
// returned via ParsedContainer.EXIF regardless, per SPEC_FULL's EXIF
// accessor supplement.
func parseExifTIFF(data []byte) *tiff.Tiff {
	t, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return t
}
