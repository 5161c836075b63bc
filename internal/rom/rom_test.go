package rom

import (
	"bytes"
	"errors"
	"testing"
)

func buildHeader(prgCount, chrCount, flags6, flags7 uint8) []byte {
	h := make([]byte, headerSize)
	copy(h[0:4], magic[:])
	h[4] = prgCount
	h[5] = chrCount
	h[6] = flags6
	h[7] = flags7
	return h
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := make([]byte, headerSize)
	_, err := Parse(data)
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestParseRejectsEmptyFile(t *testing.T) {
	_, err := Parse([]byte{0x4E, 0x45})
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestParseSingleBankPRG(t *testing.T) {
	header := buildHeader(1, 0, 0, 0)
	prg := bytes.Repeat([]byte{0xAB}, prgBankSize)
	data := append(header, prg...)

	img, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(img.PRGBank1) != prgBankSize {
		t.Fatalf("expected PRG bank 1 of size %d, got %d", prgBankSize, len(img.PRGBank1))
	}
	if img.PRGBank2 != nil {
		t.Fatalf("expected no PRG bank 2, got %d bytes", len(img.PRGBank2))
	}
	for i, b := range img.PRGBank1 {
		if b != 0xAB {
			t.Fatalf("PRG bank 1 byte %d = %#x, want 0xAB", i, b)
		}
	}
}

func TestParseTwoBankPRGAndCHR(t *testing.T) {
	header := buildHeader(2, 1, 0, 0)
	prg1 := bytes.Repeat([]byte{0x11}, prgBankSize)
	prg2 := bytes.Repeat([]byte{0x22}, prgBankSize)
	chr := bytes.Repeat([]byte{0x33}, chrBankSize)
	data := append(header, append(append(prg1, prg2...), chr...)...)

	img, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.PRGBank1[0] != 0x11 || img.PRGBank2[0] != 0x22 || img.CHRBank[0] != 0x33 {
		t.Fatalf("bank contents mismatched: %v", img)
	}
}

func TestParseUnsupportedMapperStillReturnsImage(t *testing.T) {
	// mapper 4 = high nibble of flags6 is 4
	header := buildHeader(1, 0, 0x40, 0)
	prg := bytes.Repeat([]byte{0x00}, prgBankSize)
	data := append(header, prg...)

	img, err := Parse(data)
	if img == nil {
		t.Fatalf("expected a parsed image even with an unsupported mapper")
	}
	var mapperErr *ErrUnsupportedMapper
	if !errors.As(err, &mapperErr) {
		t.Fatalf("expected *ErrUnsupportedMapper, got %v", err)
	}
	if mapperErr.MapperID != 4 {
		t.Fatalf("expected mapper id 4, got %d", mapperErr.MapperID)
	}
}

func TestParseMirroringBits(t *testing.T) {
	cases := []struct {
		flags6 uint8
		want   Mirroring
	}{
		{0x00, Horizontal},
		{0x01, Vertical},
		{0x08, FourScreen},
		{0x09, FourScreen},
	}
	for _, c := range cases {
		header := buildHeader(1, 0, c.flags6, 0)
		prg := make([]byte, prgBankSize)
		data := append(header, prg...)
		img, _ := Parse(data)
		if img.Mirroring != c.want {
			t.Errorf("flags6=%#x: got mirroring %v, want %v", c.flags6, img.Mirroring, c.want)
		}
	}
}
