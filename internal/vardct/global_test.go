package vardct

import "testing"

func TestGlobalSectionRoundTrip(t *testing.T) {
	cases := []GlobalSection{
		{ChannelCount: 3, Progressive: false, Distance: 1.0},
		{ChannelCount: 4, Progressive: true, Distance: 0.123},
		{ChannelCount: 1, Progressive: true, Distance: 0},
	}
	for _, gs := range cases {
		data := EncodeGlobalSection(gs)
		got, err := DecodeGlobalSection(data)
		if err != nil {
			t.Fatalf("DecodeGlobalSection() error: %v", err)
		}
		if got.ChannelCount != gs.ChannelCount || got.Progressive != gs.Progressive {
			t.Errorf("got %+v, want %+v", got, gs)
		}
		if d := got.Distance - gs.Distance; d > 1e-3 || d < -1e-3 {
			t.Errorf("distance = %v, want ~%v", got.Distance, gs.Distance)
		}
	}
}

func TestDecodeGlobalSectionRejectsModularFlag(t *testing.T) {
	w := encodeModularFlagSet()
	if _, err := DecodeGlobalSection(w); err == nil {
		t.Fatal("expected error when modular flag is set")
	}
}

func encodeModularFlagSet() []byte {
	// Hand-build a single byte with the modular flag (bit 0) set, the
	// shape DecodeGlobalSection should reject.
	return []byte{0x01}
}
