package vardct

import (
	"fmt"

	"github.com/jxlgo/jxl/internal/bio"
)

// GlobalSection is a VarDCT frame's global section: the same
// mod/pad-to-byte shape as the Modular global section (spec §4.9), but
// with the modular flag clear and VarDCT-specific fields (channel count,
// progressive flag, distance) in place of tree type / squeeze levels.
type GlobalSection struct {
	ChannelCount int
	Progressive  bool
	UseXYB       bool
	Distance     float64
}

// distanceScale fixes distance to a 1/1000 unit when serialised as a
// U32-var, giving three decimal digits of precision, enough for any
// distance value this codec computes.
const distanceScale = 1000

// EncodeGlobalSection serialises a VarDCT global section.
func EncodeGlobalSection(gs GlobalSection) []byte {
	w := bio.NewWriter()
	w.WriteBit(0) // modular flag clear: this is a VarDCT frame
	w.WriteBit(boolBit(gs.Progressive))
	w.WriteBit(boolBit(gs.UseXYB))
	w.FlushByte()
	w.WriteBits(uint64(gs.ChannelCount), 8)
	w.WriteU32Var(uint32(gs.Distance * distanceScale))
	return w.Bytes()
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DecodeGlobalSection parses a global section written by
// EncodeGlobalSection.
func DecodeGlobalSection(data []byte) (GlobalSection, error) {
	r := bio.NewReader(data)
	mod, err := r.ReadBit()
	if err != nil {
		return GlobalSection{}, fmt.Errorf("vardct: global section: %w", err)
	}
	if mod != 0 {
		return GlobalSection{}, fmt.Errorf("vardct: global section: modular flag set, not a VarDCT frame")
	}
	progressive, err := r.ReadBit()
	if err != nil {
		return GlobalSection{}, fmt.Errorf("vardct: global section: %w", err)
	}
	useXYB, err := r.ReadBit()
	if err != nil {
		return GlobalSection{}, fmt.Errorf("vardct: global section: %w", err)
	}
	r.Align()
	channelCount, err := r.ReadBits(8)
	if err != nil {
		return GlobalSection{}, fmt.Errorf("vardct: global section: %w", err)
	}
	scaledDistance, err := r.ReadU32Var()
	if err != nil {
		return GlobalSection{}, fmt.Errorf("vardct: global section: %w", err)
	}
	return GlobalSection{
		ChannelCount: int(channelCount),
		Progressive:  progressive != 0,
		UseXYB:       useXYB != 0,
		Distance:     float64(scaledDistance) / distanceScale,
	}, nil
}
