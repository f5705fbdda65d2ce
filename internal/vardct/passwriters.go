package vardct

import (
	"github.com/jxlgo/jxl/internal/bio"
	"github.com/jxlgo/jxl/internal/entropy"
)

// passWriters bundles one independent bitstream + entropy encoder per
// progressive pass, so each pass can be framed as its own section.
type passWriters struct {
	dcW, lowW, highW       *bio.Writer
	dc, low, high          *entropy.Encoder
}

func newPassWriters() *passWriters {
	dcW := bio.NewWriter()
	lowW := bio.NewWriter()
	highW := bio.NewWriter()
	return &passWriters{
		dcW: dcW, lowW: lowW, highW: highW,
		dc:   entropy.NewEncoder(dcW, entropy.ContextCount, false),
		low:  entropy.NewEncoder(lowW, entropy.ContextCount, false),
		high: entropy.NewEncoder(highW, entropy.ContextCount, false),
	}
}

func (p *passWriters) dcBytes() []byte   { return p.dcW.Bytes() }
func (p *passWriters) lowBytes() []byte  { return p.lowW.Bytes() }
func (p *passWriters) highBytes() []byte { return p.highW.Bytes() }

// passReaders mirrors passWriters for the decode side.
type passReaders struct {
	dc, low, high *entropy.Decoder
}

func newPassReaders(passes [NumProgressivePasses][]byte) *passReaders {
	return &passReaders{
		dc:   entropy.NewDecoder(bio.NewReader(passes[PassDC]), entropy.ContextCount),
		low:  entropy.NewDecoder(bio.NewReader(passes[PassLowFrequencyAC]), entropy.ContextCount),
		high: entropy.NewDecoder(bio.NewReader(passes[PassHighFrequencyAC]), entropy.ContextCount),
	}
}
