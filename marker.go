package t42

import (
	"bytes"
	"encoding/binary"

	"github.com/mrjoshuak/go-t42/internal/jpegio"
)

// g3faxPrefix identifies a G3FAX application marker segment.
var g3faxPrefix = []byte("G3FAX")

// G3FAXSubtype identifies the record carried in a G3FAX APP1 marker
// segment, from byte 5 of the payload.
type G3FAXSubtype byte

const (
	// G3FAXPage is the page header record: coding standard edition and
	// spatial resolution.
	G3FAXPage G3FAXSubtype = 0
	// G3FAXGamut is the gamut range record: big-endian P and Q values
	// for each CIELAB channel.
	G3FAXGamut G3FAXSubtype = 1
	// G3FAXIlluminant is the illuminant record: a four-byte code or a
	// colour temperature.
	G3FAXIlluminant G3FAXSubtype = 2
	// G3FAXPalette is the colour palette table record.
	G3FAXPalette G3FAXSubtype = 3
)

// String returns the string representation of a subtype.
func (t G3FAXSubtype) String() string {
	switch t {
	case G3FAXPage:
		return "page header"
	case G3FAXGamut:
		return "gamut range"
	case G3FAXIlluminant:
		return "illuminant"
	case G3FAXPalette:
		return "colour palette"
	default:
		return "unknown"
	}
}

// applyG3FAX scans APP1 payloads for G3FAX records. Gamut and
// illuminant records are applied to p; page header and palette fields
// are recorded in m. Later records override earlier ones. It reports
// whether the stream declared itself as ITU fax.
//
// The palette record is informational and does not by itself mark the
// stream as ITU fax. Records too short for their subtype are skipped.
func applyG3FAX(p *LabParams, m *Metadata, payloads [][]byte) bool {
	itu := false
	for _, data := range payloads {
		if len(data) < 6 || !bytes.HasPrefix(data, g3faxPrefix) {
			continue
		}
		body := data[6:]
		switch G3FAXSubtype(data[5]) {
		case G3FAXPage:
			if len(body) < 4 {
				continue
			}
			m.Version = int(binary.BigEndian.Uint16(body[0:2]))
			m.Resolution = int(binary.BigEndian.Uint16(body[2:4]))
			itu = true
		case G3FAXGamut:
			if len(body) < 12 {
				continue
			}
			p.SetGamutFromCode([12]byte(body[:12]))
			itu = true
		case G3FAXIlluminant:
			if len(body) < 4 {
				continue
			}
			p.SetIlluminantFromCode([4]byte(body[:4]))
			itu = true
		case G3FAXPalette:
			if len(body) < 2 {
				continue
			}
			m.Palette = int(binary.BigEndian.Uint16(body[0:2]))
		}
	}
	return itu
}

// g3faxHeader builds the subtype 0 page header segment carrying the
// 1994 edition code and the spatial resolution in dots per inch.
func g3faxHeader(resolution int) jpegio.Segment {
	data := make([]byte, 10)
	copy(data, g3faxPrefix)
	data[5] = byte(G3FAXPage)
	binary.BigEndian.PutUint16(data[6:8], 1994)
	binary.BigEndian.PutUint16(data[8:10], uint16(resolution))
	return jpegio.Segment{Marker: jpegio.APP1, Data: data}
}
