package jxl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jxlgo/jxl/internal/box"
)

func TestIsBareCodestream(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"bare signature", []byte{0xFF, 0x0A, 1, 2, 3}, true},
		{"container signature", box.WriteSignatureBox().Bytes(), false},
		{"too short", []byte{0xFF}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBareCodestream(tt.data); got != tt.want {
				t.Errorf("IsBareCodestream(%v) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestBuildContainerParseContainerBytesRoundTrip(t *testing.T) {
	codestream := []byte{0xFF, 0x0A, 9, 9, 9, 9}
	opts := DefaultOptions()
	opts.EXIF = []byte("fake-exif-payload")
	opts.XMP = []byte("<xmp/>")
	opts.ICCProfile = []byte("fake-icc")
	opts.Level = 10
	opts.FrameIndex = []box.FrameIndexEntry{
		{FrameNumber: 0, ByteOffset: 0, Duration: 100},
		{FrameNumber: 1, ByteOffset: 512, Duration: 100},
	}

	data := BuildContainer(codestream, opts)
	if IsBareCodestream(data) {
		t.Fatal("BuildContainer output must not look like a bare codestream")
	}

	pc, err := ParseContainerBytes(data)
	if err != nil {
		t.Fatalf("ParseContainerBytes: %v", err)
	}

	want := &ParsedContainer{
		Codestream: codestream,
		EXIF:       opts.EXIF,
		XMP:        opts.XMP,
		ICCProfile: opts.ICCProfile,
		FrameIndex: opts.FrameIndex,
		Level:      opts.Level,
		HasLevel:   true,
	}
	if diff := cmp.Diff(want, pc, cmpopts.IgnoreFields(ParsedContainer{}, "ExifTIFF")); diff != "" {
		t.Fatalf("ParseContainerBytes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildContainerMinimalOmitsOptionalBoxes(t *testing.T) {
	codestream := []byte{0xFF, 0x0A, 1}
	data := BuildContainer(codestream, DefaultOptions())

	pc, err := ParseContainerBytes(data)
	if err != nil {
		t.Fatalf("ParseContainerBytes: %v", err)
	}
	if pc.EXIF != nil || pc.XMP != nil || pc.ICCProfile != nil || pc.FrameIndex != nil || pc.HasLevel {
		t.Fatalf("expected no optional metadata, got %+v", pc)
	}
	if diff := cmp.Diff(codestream, pc.Codestream); diff != "" {
		t.Fatalf("codestream mismatch (-want +got):\n%s", diff)
	}
}

func TestParseContainerBytesRequiresCodestreamBox(t *testing.T) {
	var out []byte
	out = append(out, box.WriteSignatureBox().Bytes()...)
	out = append(out, box.DefaultFileTypeBox().Bytes()...)

	_, err := ParseContainerBytes(out)
	if err == nil {
		t.Fatal("expected an error when no jxlc box is present")
	}
	var jxlErr *Error
	if !errors.As(err, &jxlErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if jxlErr.Kind != KindInvalidContainer {
		t.Fatalf("got Kind %v, want KindInvalidContainer", jxlErr.Kind)
	}
}

func TestParseContainerBytesRejectsTruncatedBox(t *testing.T) {
	data := box.WriteSignatureBox().Bytes()
	truncated := data[:len(data)-2]
	_, err := ParseContainerBytes(truncated)
	if err == nil {
		t.Fatal("expected an error for a box claiming more bytes than present")
	}
}
