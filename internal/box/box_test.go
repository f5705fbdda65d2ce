package box

import (
	"bytes"
	"io"
	"testing"
)

func TestTypeString(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{TypeJXLSignature, "JXL "},
		{TypeFileType, "ftyp"},
		{TypeCodestream, "jxlc"},
		{TypeFrameIndex, "jxli"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Errorf("Type(%08X).String() = %q, want %q", uint32(c.typ), got, c.want)
		}
	}
}

func TestWriteSignatureBox(t *testing.T) {
	b := WriteSignatureBox()
	data := b.Bytes()
	want := []byte{0x00, 0x00, 0x00, 0x0C, 'J', 'X', 'L', ' ', 0x0D, 0x0A, 0x87, 0x0A}
	if !bytes.Equal(data, want) {
		t.Errorf("signature box = %v, want %v", data, want)
	}
}

func TestReadBoxRoundTrip(t *testing.T) {
	original := &Box{Type: TypeCodestream, Contents: []byte{1, 2, 3, 4, 5}}
	r := NewReader(original.Bytes())
	got, err := r.ReadBox()
	if err != nil {
		t.Fatalf("ReadBox() error: %v", err)
	}
	if got.Type != original.Type || !bytes.Equal(got.Contents, original.Contents) {
		t.Errorf("ReadBox() = %+v, want %+v", got, original)
	}
	if _, err := r.ReadBox(); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestReadBoxSequence(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(WriteSignatureBox().Bytes())
	buf.Write(DefaultFileTypeBox().Bytes())
	buf.Write(CodestreamBox([]byte{0xFF, 0x0A, 1, 2}).Bytes())

	r := NewReader(buf.Bytes())
	var types []Type
	for {
		b, err := r.ReadBox()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadBox() error: %v", err)
		}
		types = append(types, b.Type)
	}
	want := []Type{TypeJXLSignature, TypeFileType, TypeCodestream}
	if len(types) != len(want) {
		t.Fatalf("got %d boxes, want %d", len(types), len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("box %d type = %v, want %v", i, types[i], want[i])
		}
	}
}

func TestReadBoxTruncatedExtendsPastInput(t *testing.T) {
	b := &Box{Type: TypeXML, Contents: make([]byte, 20)}
	data := b.Bytes()
	data = data[:len(data)-5] // truncate the payload
	r := NewReader(data)
	if _, err := r.ReadBox(); err == nil {
		t.Fatal("expected error for box extending past input")
	}
}

func TestFileTypeBoxRoundTrip(t *testing.T) {
	b := DefaultFileTypeBox()
	ftyp, err := ParseFileTypeBox(b.Contents)
	if err != nil {
		t.Fatalf("ParseFileTypeBox() error: %v", err)
	}
	if ftyp.Brand != brandJXL {
		t.Errorf("Brand = %v, want %v", ftyp.Brand, brandJXL)
	}
	if len(ftyp.Compatibility) != 1 || ftyp.Compatibility[0] != brandJXL {
		t.Errorf("Compatibility = %v", ftyp.Compatibility)
	}
}

func TestExifBoxRoundTrip(t *testing.T) {
	tiff := []byte("II*\x00extra-tiff-bytes")
	b := ExifBox(0, tiff)
	offset, got, err := ParseExifBox(b.Contents)
	if err != nil {
		t.Fatalf("ParseExifBox() error: %v", err)
	}
	if offset != 0 {
		t.Errorf("offset = %d, want 0", offset)
	}
	if !bytes.Equal(got, tiff) {
		t.Errorf("tiff = %q, want %q", got, tiff)
	}
}

func TestLevelBoxRoundTrip(t *testing.T) {
	b := LevelBox(10)
	level, err := ParseLevelBox(b.Contents)
	if err != nil {
		t.Fatalf("ParseLevelBox() error: %v", err)
	}
	if level != 10 {
		t.Errorf("level = %d, want 10", level)
	}
}

func TestFrameIndexRoundTrip(t *testing.T) {
	entries := []FrameIndexEntry{
		{FrameNumber: 0, ByteOffset: 0, Duration: 100},
		{FrameNumber: 1, ByteOffset: 256, Duration: 200},
	}
	b := EncodeFrameIndex(entries)
	if b.Type != TypeFrameIndex {
		t.Fatalf("box type = %v, want jxli", b.Type)
	}
	got, err := DecodeFrameIndex(b.Contents)
	if err != nil {
		t.Fatalf("DecodeFrameIndex() error: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestFrameIndexEmpty(t *testing.T) {
	b := EncodeFrameIndex(nil)
	got, err := DecodeFrameIndex(b.Contents)
	if err != nil {
		t.Fatalf("DecodeFrameIndex() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d entries, want 0", len(got))
	}
}
