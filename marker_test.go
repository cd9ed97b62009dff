package t42

import (
	"bytes"
	"math"
	"testing"

	"github.com/mrjoshuak/go-t42/internal/jpegio"
)

// g3fax assembles a G3FAX record payload for tests.
func g3fax(subtype G3FAXSubtype, body ...byte) []byte {
	data := append([]byte("G3FAX"), byte(subtype))
	return append(data, body...)
}

func TestApplyG3FAXPageHeader(t *testing.T) {
	p := NewLabParams()
	m := &Metadata{Palette: -1}

	itu := applyG3FAX(p, m, [][]byte{g3fax(G3FAXPage, 0x07, 0xCA, 0x00, 0xC8)})
	if !itu {
		t.Fatalf("page header not recognised")
	}
	if m.Version != 1994 {
		t.Errorf("Version = %d, want 1994", m.Version)
	}
	if m.Resolution != 200 {
		t.Errorf("Resolution = %d, want 200", m.Resolution)
	}
	if m.Palette != -1 {
		t.Errorf("Palette = %d, want -1", m.Palette)
	}
}

func TestApplyG3FAXGamut(t *testing.T) {
	p := NewLabParams()
	m := &Metadata{Palette: -1}

	body := []byte{0, 50, 0, 100, 0, 120, 0, 150, 0, 90, 0, 180}
	if !applyG3FAX(p, m, [][]byte{g3fax(G3FAXGamut, body...)}) {
		t.Fatalf("gamut record not recognised")
	}
	if p.offsetL != 50 || p.offsetA != 120 || p.offsetB != 90 {
		t.Errorf("offsets = (%v, %v, %v), want (50, 120, 90)", p.offsetL, p.offsetA, p.offsetB)
	}
	if math.Abs(p.rangeL-100.0/255) > 1e-9 ||
		math.Abs(p.rangeA-150.0/255) > 1e-9 ||
		math.Abs(p.rangeB-180.0/255) > 1e-9 {
		t.Errorf("ranges = (%v, %v, %v), want (100, 150, 180)/255", p.rangeL, p.rangeA, p.rangeB)
	}
}

func TestApplyG3FAXIlluminant(t *testing.T) {
	p := NewLabParams()
	m := &Metadata{Palette: -1}

	if !applyG3FAX(p, m, [][]byte{g3fax(G3FAXIlluminant, 0, 'D', '6', '5')}) {
		t.Fatalf("illuminant record not recognised")
	}
	xn, yn, zn := p.WhitePoint()
	if math.Abs(xn-0.95047) > 1e-9 || math.Abs(yn-1) > 1e-9 || math.Abs(zn-1.08883) > 1e-9 {
		t.Errorf("WhitePoint() = (%v, %v, %v), want D65", xn, yn, zn)
	}
}

func TestApplyG3FAXUnknownIlluminant(t *testing.T) {
	// An untabulated illuminant code still marks the stream as ITU
	// fax; the white point just stays at its default.
	p := NewLabParams()
	m := &Metadata{Palette: -1}
	xn0, yn0, zn0 := p.WhitePoint()

	if !applyG3FAX(p, m, [][]byte{g3fax(G3FAXIlluminant, 'Q', 'Q', 'Q', 'Q')}) {
		t.Fatalf("stream with an illuminant record not recognised")
	}
	xn, yn, zn := p.WhitePoint()
	if xn != xn0 || yn != yn0 || zn != zn0 {
		t.Errorf("WhitePoint() = (%v, %v, %v), want unchanged", xn, yn, zn)
	}
}

func TestApplyG3FAXPaletteOnly(t *testing.T) {
	// The palette record is informational: on its own it does not
	// identify the stream as ITU fax.
	p := NewLabParams()
	m := &Metadata{Palette: -1}

	if applyG3FAX(p, m, [][]byte{g3fax(G3FAXPalette, 0x00, 0x05)}) {
		t.Errorf("palette-only stream recognised as ITU fax")
	}
	if m.Palette != 5 {
		t.Errorf("Palette = %d, want 5", m.Palette)
	}
}

func TestApplyG3FAXSkipsMalformed(t *testing.T) {
	p := NewLabParams()
	m := &Metadata{Palette: -1}

	payloads := [][]byte{
		nil,
		[]byte("G3FA"),                     // truncated prefix
		[]byte("Exif\x00\x00II"),           // unrelated APP1 use
		g3fax(G3FAXPage),                   // no body
		g3fax(G3FAXPage, 0x07),             // short body
		g3fax(G3FAXGamut, 1, 2, 3),         // short gamut code
		g3fax(G3FAXIlluminant, 'D'),        // short illuminant code
		g3fax(G3FAXPalette, 0x01),          // short palette field
		g3fax(G3FAXSubtype(9), 0xAA, 0xBB), // unknown subtype
	}
	if applyG3FAX(p, m, payloads) {
		t.Errorf("malformed records recognised as ITU fax")
	}
	if m.Version != 0 || m.Resolution != 0 || m.Palette != -1 {
		t.Errorf("metadata = %+v, want untouched", m)
	}
}

func TestApplyG3FAXLastRecordWins(t *testing.T) {
	p := NewLabParams()
	m := &Metadata{Palette: -1}

	payloads := [][]byte{
		g3fax(G3FAXGamut, 0, 50, 0, 100, 0, 120, 0, 150, 0, 90, 0, 180),
		g3fax(G3FAXGamut, 0, 10, 0, 20, 0, 30, 0, 40, 0, 50, 0, 60),
	}
	if !applyG3FAX(p, m, payloads) {
		t.Fatalf("gamut records not recognised")
	}
	if p.offsetL != 10 || p.offsetA != 30 || p.offsetB != 50 {
		t.Errorf("offsets = (%v, %v, %v), want the later record (10, 30, 50)",
			p.offsetL, p.offsetA, p.offsetB)
	}
}

func TestApplyG3FAXAllRecords(t *testing.T) {
	p := NewLabParams()
	m := &Metadata{Palette: -1}

	payloads := [][]byte{
		g3fax(G3FAXPage, 0x07, 0xCA, 0x01, 0x2C),
		g3fax(G3FAXGamut, 0, 0, 0, 100, 0, 128, 0, 170, 0, 96, 0, 200),
		g3fax(G3FAXIlluminant, 0, 'D', '5', '0'),
		g3fax(G3FAXPalette, 0x00, 0x02),
	}
	if !applyG3FAX(p, m, payloads) {
		t.Fatalf("records not recognised")
	}
	if m.Version != 1994 || m.Resolution != 300 || m.Palette != 2 {
		t.Errorf("metadata = %+v, want version 1994, resolution 300, palette 2", m)
	}
	xn, _, _ := p.WhitePoint()
	if math.Abs(xn-0.96422) > 1e-9 {
		t.Errorf("xn = %v, want D50", xn)
	}
}

func TestG3FAXHeader(t *testing.T) {
	seg := g3faxHeader(200)
	if seg.Marker != jpegio.APP1 {
		t.Errorf("marker = %v, want APP1", seg.Marker)
	}
	want := []byte{'G', '3', 'F', 'A', 'X', 0x00, 0x07, 0xCA, 0x00, 0xC8}
	if !bytes.Equal(seg.Data, want) {
		t.Errorf("payload = % X, want % X", seg.Data, want)
	}

	seg = g3faxHeader(300)
	if seg.Data[8] != 0x01 || seg.Data[9] != 0x2C {
		t.Errorf("resolution bytes = % X, want 01 2C", seg.Data[8:10])
	}
}

func TestG3FAXSubtypeString(t *testing.T) {
	tests := []struct {
		subtype G3FAXSubtype
		want    string
	}{
		{G3FAXPage, "page header"},
		{G3FAXGamut, "gamut range"},
		{G3FAXIlluminant, "illuminant"},
		{G3FAXPalette, "colour palette"},
		{G3FAXSubtype(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.subtype.String(); got != tt.want {
			t.Errorf("G3FAXSubtype(%d).String() = %q, want %q", byte(tt.subtype), got, tt.want)
		}
	}
}
