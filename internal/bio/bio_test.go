package bio

import "testing"

func TestWriteReadBits(t *testing.T) {
	for n := uint(1); n <= 32; n++ {
		max := uint64(1)<<n - 1
		for _, v := range []uint64{0, 1, max, max / 2} {
			w := NewWriter()
			w.WriteBits(v, n)
			r := NewReader(w.Bytes())
			got, err := r.ReadBits(n)
			if err != nil {
				t.Fatalf("n=%d v=%d: unexpected error: %v", n, v, err)
			}
			if got != v {
				t.Errorf("n=%d v=%d: got %d", n, v, got)
			}
		}
	}
}

func TestWriteBitsSequence(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.WriteBits(0b1, 1)
	w.WriteBits(0b1111, 4)
	r := NewReader(w.Bytes())
	if v, _ := r.ReadBits(3); v != 0b101 {
		t.Fatalf("first field = %b", v)
	}
	if v, _ := r.ReadBits(1); v != 1 {
		t.Fatalf("second field = %b", v)
	}
	if v, _ := r.ReadBits(4); v != 0b1111 {
		t.Fatalf("third field = %b", v)
	}
}

func TestFlushByteIdempotent(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b11, 2)
	w.FlushByte()
	before := append([]byte(nil), w.Bytes()...)
	w.FlushByte()
	after := w.Bytes()
	if len(before) != len(after) {
		t.Fatalf("FlushByte not idempotent: %v vs %v", before, after)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.ReadBits(9); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestU32VarRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 16, 17, 272, 273, 1000, 1 << 16, 0xFFFFFFFF}
	for _, v := range values {
		w := NewWriter()
		w.WriteU32Var(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadU32Var()
		if err != nil {
			t.Fatalf("v=%d: unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("v=%d: got %d", v, got)
		}
	}
}

func TestU32VarSelectsNarrowestForm(t *testing.T) {
	cases := []struct {
		v        uint32
		maxBytes int
	}{
		{0, 1},
		{16, 1},
		{272, 2},
	}
	for _, c := range cases {
		w := NewWriter()
		w.WriteU32Var(c.v)
		if got := len(w.Bytes()); got > c.maxBytes {
			t.Errorf("v=%d: encoded to %d bytes, want <= %d", c.v, got, c.maxBytes)
		}
	}
}

func TestU64VarRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 1 << 20, 1 << 40, 1 << 63}
	for _, v := range values {
		w := NewWriter()
		w.WriteU64Var(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadU64Var()
		if err != nil {
			t.Fatalf("v=%d: unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("v=%d: got %d", v, got)
		}
	}
}

func TestSignedZigZagRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 1000, -1000, 1 << 30, -(1 << 30)}
	for _, v := range values {
		w := NewWriter()
		w.WriteSignedZigZag(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadSignedZigZag()
		if err != nil {
			t.Fatalf("v=%d: unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("v=%d: got %d", v, got)
		}
	}
}

func TestZigZagMapping(t *testing.T) {
	cases := []struct {
		v    int64
		want uint64
	}{
		{0, 0}, {-1, 1}, {1, 2}, {-2, 3}, {2, 4},
	}
	for _, c := range cases {
		if got := ZigZagEncode(c.v); got != c.want {
			t.Errorf("ZigZagEncode(%d) = %d, want %d", c.v, got, c.want)
		}
		if got := ZigZagDecode(c.want); got != c.v {
			t.Errorf("ZigZagDecode(%d) = %d, want %d", c.want, got, c.v)
		}
	}
}

func TestBytesAlignment(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.WriteBytes([]byte{0xAB, 0xCD})
	r := NewReader(w.Bytes())
	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0xAB || got[1] != 0xCD {
		t.Errorf("ReadBytes = %v", got)
	}
}

func TestReadBytesPastEnd(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadBytes(3); err == nil {
		t.Fatal("expected error reading past end")
	}
}
