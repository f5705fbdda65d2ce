package jxl

import "testing"

func TestColorSpaceString(t *testing.T) {
	tests := []struct {
		cs   ColorSpace
		want string
	}{
		{ColorSpaceSRGB, "sRGB"},
		{ColorSpaceLinearRGB, "linearRGB"},
		{ColorSpaceGray, "gray"},
		{ColorSpaceDisplayP3, "DisplayP3"},
		{ColorSpaceRec2020PQ, "Rec2020PQ"},
		{ColorSpaceCustom, "custom"},
		{ColorSpace(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.cs.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.cs, got, tt.want)
		}
	}
}

func TestColorSpaceIsGray(t *testing.T) {
	if !ColorSpaceGray.isGray() {
		t.Error("ColorSpaceGray.isGray() = false, want true")
	}
	if ColorSpaceSRGB.isGray() {
		t.Error("ColorSpaceSRGB.isGray() = true, want false")
	}
}
