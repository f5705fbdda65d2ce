// Package section assembles and parses the framed section layout a
// Modular or VarDCT frame payload is built from: a Table of Contents of
// U32-var lengths followed by that many length-prefixed sections.
package section

import (
	"fmt"

	"github.com/jxlgo/jxl/internal/bio"
)

// Encode concatenates a Table of Contents (count, then one U32-var
// length per section) with the section bytes themselves.
func Encode(sections [][]byte) []byte {
	w := bio.NewWriter()
	w.WriteU32Var(uint32(len(sections)))
	for _, s := range sections {
		w.WriteU32Var(uint32(len(s)))
	}
	toc := w.Bytes()

	total := len(toc)
	for _, s := range sections {
		total += len(s)
	}
	out := make([]byte, 0, total)
	out = append(out, toc...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// Decode reverses Encode, splitting data back into its section slices.
func Decode(data []byte) ([][]byte, error) {
	r := bio.NewReader(data)
	count, err := r.ReadU32Var()
	if err != nil {
		return nil, fmt.Errorf("section: table of contents count: %w", err)
	}
	lengths := make([]uint32, count)
	for i := range lengths {
		l, err := r.ReadU32Var()
		if err != nil {
			return nil, fmt.Errorf("section: table of contents entry %d: %w", i, err)
		}
		lengths[i] = l
	}
	r.Align()
	sections := make([][]byte, count)
	for i, l := range lengths {
		b, err := r.ReadBytes(int(l))
		if err != nil {
			return nil, fmt.Errorf("section: section %d body: %w", i, err)
		}
		sections[i] = b
	}
	return sections, nil
}
