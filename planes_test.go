package jxl

import (
	"testing"

	"github.com/jxlgo/jxl/internal/modular"
)

func TestMaxSampleValue(t *testing.T) {
	tests := []struct {
		bits uint8
		want uint32
	}{
		{8, 255},
		{10, 1023},
		{12, 4095},
		{16, 65535},
	}
	for _, tt := range tests {
		if got := maxSampleValue(tt.bits); got != tt.want {
			t.Errorf("maxSampleValue(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

func TestClampInt32(t *testing.T) {
	if got := clampInt32(-5, 0, 255); got != 0 {
		t.Errorf("clampInt32(-5, 0, 255) = %d, want 0", got)
	}
	if got := clampInt32(300, 0, 255); got != 255 {
		t.Errorf("clampInt32(300, 0, 255) = %d, want 255", got)
	}
	if got := clampInt32(100, 0, 255); got != 100 {
		t.Errorf("clampInt32(100, 0, 255) = %d, want 100", got)
	}
}

func TestToModularPlanesFromModularPlanesRoundTrip(t *testing.T) {
	f := ImageFrame{
		Width: 2, Height: 2, BitsPerSample: 8,
		ColorSpace: ColorSpaceGray,
		Planes:     [][]uint16{{0, 1, 254, 255}},
	}
	planes := toModularPlanes(f)
	if len(planes) != 1 {
		t.Fatalf("len(planes) = %d, want 1", len(planes))
	}
	if planes[0].Width != 2 || planes[0].Height != 2 {
		t.Fatalf("plane shape = %dx%d, want 2x2", planes[0].Width, planes[0].Height)
	}

	back := fromModularPlanes(planes, 8)
	if len(back) != 1 || len(back[0]) != 4 {
		t.Fatalf("fromModularPlanes shape mismatch: %+v", back)
	}
	for i, want := range f.Planes[0] {
		if back[0][i] != want {
			t.Errorf("sample %d = %d, want %d", i, back[0][i], want)
		}
	}
}

func TestFromModularPlanesClampsOutOfRange(t *testing.T) {
	planes := []modular.Plane{{Width: 1, Height: 2, Samples: []int32{-10, 300}}}
	back := fromModularPlanes(planes, 8)
	if back[0][0] != 0 {
		t.Errorf("negative sample clamped to %d, want 0", back[0][0])
	}
	if back[0][1] != 255 {
		t.Errorf("overflow sample clamped to %d, want 255", back[0][1])
	}
}

func TestBuildVarDCTColorPlanesGrayscaleIsSingleChannel(t *testing.T) {
	f := ImageFrame{
		Width: 2, Height: 2, BitsPerSample: 8,
		ColorSpace: ColorSpaceGray,
		Planes:     [][]uint16{{0, 64, 128, 255}},
	}
	planes := buildVarDCTColorPlanes(f, false)
	if len(planes.samples) != 1 {
		t.Fatalf("len(samples) = %d, want 1", len(planes.samples))
	}
	if planes.chroma[0] {
		t.Error("grayscale plane must not be marked chroma")
	}
	if got := planes.samples[0][3]; got < colorScale-0.001 || got > colorScale+0.001 {
		t.Errorf("max sample scaled = %v, want ~%v", got, colorScale)
	}
}

func TestBuildComposeVarDCTColorPlanesYCbCr601RoundTrip(t *testing.T) {
	f := ImageFrame{
		Width: 2, Height: 2, BitsPerSample: 8,
		ColorSpace: ColorSpaceSRGB,
		Planes: [][]uint16{
			{0, 64, 128, 255},
			{10, 80, 140, 250},
			{20, 90, 150, 240},
		},
	}
	planes := buildVarDCTColorPlanes(f, false)
	if len(planes.samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(planes.samples))
	}
	if planes.chroma[0] || !planes.chroma[1] || !planes.chroma[2] {
		t.Errorf("chroma flags = %v, want [false true true]", planes.chroma)
	}

	back := composeVarDCTColorPlanes(planes.samples, false, 8)
	if len(back) != 3 {
		t.Fatalf("len(back) = %d, want 3", len(back))
	}
	for c := range f.Planes {
		for i, want := range f.Planes[c] {
			got := back[c][i]
			diff := int(got) - int(want)
			if diff < 0 {
				diff = -diff
			}
			if diff > 2 {
				t.Errorf("channel %d sample %d = %d, want ~%d (diff %d)", c, i, got, want, diff)
			}
		}
	}
}

func TestBuildComposeVarDCTColorPlanesXYBRoundTrip(t *testing.T) {
	f := ImageFrame{
		Width: 2, Height: 2, BitsPerSample: 8,
		ColorSpace: ColorSpaceSRGB,
		Planes: [][]uint16{
			{5, 64, 128, 255},
			{15, 80, 140, 250},
			{25, 90, 150, 240},
		},
	}
	planes := buildVarDCTColorPlanes(f, true)
	back := composeVarDCTColorPlanes(planes.samples, true, 8)
	for c := range f.Planes {
		for i, want := range f.Planes[c] {
			got := back[c][i]
			diff := int(got) - int(want)
			if diff < 0 {
				diff = -diff
			}
			if diff > 3 {
				t.Errorf("channel %d sample %d = %d, want ~%d (diff %d)", c, i, got, want, diff)
			}
		}
	}
}

func TestQuantizeSampleClamps(t *testing.T) {
	if got := quantizeSample(-1, 255); got != 0 {
		t.Errorf("quantizeSample(-1, 255) = %d, want 0", got)
	}
	if got := quantizeSample(2, 255); got != 255 {
		t.Errorf("quantizeSample(2, 255) = %d, want 255", got)
	}
	if got := quantizeSample(0.5, 255); got != 128 {
		t.Errorf("quantizeSample(0.5, 255) = %d, want 128", got)
	}
}
