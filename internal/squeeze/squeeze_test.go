package squeeze

import (
	"math/rand"
	"testing"
)

func TestSqueeze1DRoundTripEven(t *testing.T) {
	data := []int32{5, 2, -7, 13, 100, -100}
	out := make([]int32, len(data))
	squeeze1D(data, len(data), out)
	back := make([]int32, len(data))
	inverseSqueeze1D(out, len(data), back)
	for i := range data {
		if back[i] != data[i] {
			t.Fatalf("index %d: got %d, want %d", i, back[i], data[i])
		}
	}
}

func TestSqueeze1DRoundTripOdd(t *testing.T) {
	data := []int32{5, 2, -7, 13, 42}
	out := make([]int32, len(data))
	squeeze1D(data, len(data), out)
	back := make([]int32, len(data))
	inverseSqueeze1D(out, len(data), back)
	for i := range data {
		if back[i] != data[i] {
			t.Fatalf("index %d: got %d, want %d", i, back[i], data[i])
		}
	}
}

func TestSqueeze1DRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(30)
		data := make([]int32, n)
		for i := range data {
			data[i] = int32(rng.Intn(200001) - 100000)
		}
		orig := append([]int32(nil), data...)
		out := make([]int32, n)
		squeeze1D(data, n, out)
		back := make([]int32, n)
		inverseSqueeze1D(out, n, back)
		for i := range orig {
			if back[i] != orig[i] {
				t.Fatalf("trial %d index %d: got %d, want %d", trial, i, back[i], orig[i])
			}
		}
	}
}

func TestForwardInverseRegionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	dims := [][2]int{{8, 8}, {7, 5}, {1, 10}, {10, 1}, {3, 3}, {16, 9}}
	for _, d := range dims {
		w, h := d[0], d[1]
		stride := w
		data := make([]int32, w*h)
		for i := range data {
			data[i] = int32(rng.Intn(2001) - 1000)
		}
		orig := append([]int32(nil), data...)

		ForwardRegion(data, w, h, stride)
		InverseRegion(data, w, h, stride)

		for i := range orig {
			if data[i] != orig[i] {
				t.Fatalf("dims %v index %d: got %d, want %d", d, i, data[i], orig[i])
			}
		}
	}
}

func TestForwardInverseMultiLevelRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	w, h := 32, 24
	stride := w
	data := make([]int32, w*h)
	for i := range data {
		data[i] = int32(rng.Intn(65536) - 32768)
	}
	orig := append([]int32(nil), data...)

	Forward(data, w, h, stride, DefaultLevels)
	Inverse(data, w, h, stride, DefaultLevels)

	for i := range orig {
		if data[i] != orig[i] {
			t.Fatalf("index %d: got %d, want %d", i, data[i], orig[i])
		}
	}
}

func TestForwardStopsOnDegenerateDimensions(t *testing.T) {
	data := []int32{42}
	Forward(data, 1, 1, 1, DefaultLevels)
	if data[0] != 42 {
		t.Errorf("1x1 region modified: got %d, want 42", data[0])
	}
}
