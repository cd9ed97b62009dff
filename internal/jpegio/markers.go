// Package jpegio reads and splices baseline JPEG marker segments.
//
// The entropy-coded scan data is opaque to this package. Everything
// between SOI and the first SOS is handled at the segment level, so
// application markers can be inspected, inserted, or carried between
// streams without re-encoding the image.
package jpegio

import "fmt"

// Marker codes for JPEG interchange format streams.
// These are defined in ITU-T T.81 Table B.1. Each appears in the
// stream as 0xFF followed by the code byte.
const (
	// Standalone markers (no segment body)
	TEM Marker = 0x01 // Temporary private use
	SOI Marker = 0xD8 // Start of image
	EOI Marker = 0xD9 // End of image

	// Frame header markers
	SOF0 Marker = 0xC0 // Baseline DCT
	SOF1 Marker = 0xC1 // Extended sequential DCT
	SOF2 Marker = 0xC2 // Progressive DCT
	SOF3 Marker = 0xC3 // Lossless sequential

	// Table and parameter marker segments
	DHT Marker = 0xC4 // Define Huffman tables
	JPG Marker = 0xC8 // Reserved
	DAC Marker = 0xCC // Define arithmetic conditioning
	SOS Marker = 0xDA // Start of scan
	DQT Marker = 0xDB // Define quantization tables
	DNL Marker = 0xDC // Define number of lines
	DRI Marker = 0xDD // Define restart interval
	COM Marker = 0xFE // Comment

	// Restart markers
	RST0 Marker = 0xD0
	RST7 Marker = 0xD7

	// Application marker segments
	APP0  Marker = 0xE0 // JFIF header
	APP1  Marker = 0xE1 // Exif, G3FAX
	APP2  Marker = 0xE2 // ICC profile
	APP14 Marker = 0xEE // Adobe
	APP15 Marker = 0xEF
)

// Marker represents the code byte of a JPEG marker.
type Marker byte

// App returns the application marker APPn for n in [0, 15].
func App(n int) Marker {
	return APP0 + Marker(n&0x0F)
}

// String returns the string representation of a marker.
func (m Marker) String() string {
	switch m {
	case TEM:
		return "TEM"
	case SOI:
		return "SOI"
	case EOI:
		return "EOI"
	case SOF0:
		return "SOF0"
	case SOF1:
		return "SOF1"
	case SOF2:
		return "SOF2"
	case SOF3:
		return "SOF3"
	case DHT:
		return "DHT"
	case DAC:
		return "DAC"
	case SOS:
		return "SOS"
	case DQT:
		return "DQT"
	case DNL:
		return "DNL"
	case DRI:
		return "DRI"
	case COM:
		return "COM"
	}
	switch {
	case m >= RST0 && m <= RST7:
		return fmt.Sprintf("RST%d", m-RST0)
	case m.IsApp():
		return fmt.Sprintf("APP%d", m-APP0)
	case m.IsSOF():
		return fmt.Sprintf("SOF%d", m-SOF0)
	default:
		return "UNKNOWN"
	}
}

// HasLength returns true if this marker begins a segment with a
// two-byte length field.
func (m Marker) HasLength() bool {
	switch {
	case m == TEM, m == SOI, m == EOI:
		return false
	case m >= RST0 && m <= RST7:
		return false
	default:
		return true
	}
}

// IsApp returns true for the application markers APP0 through APP15.
func (m Marker) IsApp() bool {
	return m >= APP0 && m <= APP15
}

// IsSOF returns true for the frame header markers SOF0 through SOF15.
// DHT, JPG and DAC share the range but do not start a frame.
func (m Marker) IsSOF() bool {
	switch m {
	case DHT, JPG, DAC:
		return false
	}
	return m >= 0xC0 && m <= 0xCF
}

// A Segment is one marker segment: the marker code and its payload,
// excluding the two length bytes.
type Segment struct {
	Marker Marker
	Data   []byte
}
