package jpegio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Config holds the frame parameters read from the SOF segment.
type Config struct {
	Width       int
	Height      int
	Components  int
	Progressive bool
}

// Density is the pixel density declared in a JFIF APP0 segment.
type Density struct {
	Unit byte // 0 = aspect ratio only, 1 = dots/inch, 2 = dots/cm
	X    uint16
	Y    uint16
}

// scanner walks marker segments in a byte slice.
type scanner struct {
	data []byte
	pos  int
}

// Scan parses the stream header: every marker segment from SOI up to,
// not including, the first SOS. Segment payloads alias the input.
func Scan(data []byte) ([]Segment, error) {
	s := &scanner{data: data}
	if err := s.expectMarker(SOI); err != nil {
		return nil, fmt.Errorf("expected SOI marker: %w", err)
	}

	var segs []Segment
	for {
		marker, err := s.readMarker()
		if err != nil {
			return nil, fmt.Errorf("failed to read marker: %w", err)
		}

		switch {
		case marker == SOS, marker == EOI:
			// Header is complete
			return segs, nil
		case !marker.HasLength():
			segs = append(segs, Segment{Marker: marker})
		default:
			payload, err := s.readSegmentBody()
			if err != nil {
				return nil, fmt.Errorf("failed to read %v segment: %w", marker, err)
			}
			segs = append(segs, Segment{Marker: marker, Data: payload})
		}
	}
}

// expectMarker reads and verifies the next marker.
func (s *scanner) expectMarker(expected Marker) error {
	marker, err := s.readMarker()
	if err != nil {
		return err
	}
	if marker != expected {
		return fmt.Errorf("expected marker 0x%02X, got 0x%02X", byte(expected), byte(marker))
	}
	return nil
}

// readMarker reads the next marker, tolerating 0xFF fill bytes.
func (s *scanner) readMarker() (Marker, error) {
	if s.pos >= len(s.data) {
		return 0, io.ErrUnexpectedEOF
	}
	if s.data[s.pos] != 0xFF {
		return 0, fmt.Errorf("invalid marker byte 0x%02X at offset %d", s.data[s.pos], s.pos)
	}
	for s.pos < len(s.data) && s.data[s.pos] == 0xFF {
		s.pos++
	}
	if s.pos >= len(s.data) {
		return 0, io.ErrUnexpectedEOF
	}
	m := Marker(s.data[s.pos])
	s.pos++
	if m == 0 {
		return 0, fmt.Errorf("stuffed byte in stream header at offset %d", s.pos-2)
	}
	return m, nil
}

// readSegmentBody reads the length-prefixed payload of the current
// marker segment.
func (s *scanner) readSegmentBody() ([]byte, error) {
	length, err := s.readUint16()
	if err != nil {
		return nil, err
	}
	if length < 2 {
		return nil, fmt.Errorf("invalid marker segment length: %d", length)
	}
	n := int(length) - 2
	if s.pos+n > len(s.data) {
		return nil, io.ErrUnexpectedEOF
	}
	payload := s.data[s.pos : s.pos+n : s.pos+n]
	s.pos += n
	return payload, nil
}

// readUint16 reads a big-endian uint16.
func (s *scanner) readUint16() (uint16, error) {
	if s.pos+2 > len(s.data) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(s.data[s.pos:])
	s.pos += 2
	return v, nil
}

// AppPayloads returns the payloads of every APPn segment, in stream
// order.
func AppPayloads(segs []Segment, n int) [][]byte {
	marker := App(n)
	var payloads [][]byte
	for _, seg := range segs {
		if seg.Marker == marker {
			payloads = append(payloads, seg.Data)
		}
	}
	return payloads
}

// ParseConfig extracts the image dimensions and component count from
// the frame header.
func ParseConfig(segs []Segment) (Config, error) {
	for _, seg := range segs {
		if !seg.Marker.IsSOF() {
			continue
		}
		// Precision byte, then height and width as uint16
		if len(seg.Data) < 6 {
			return Config{}, fmt.Errorf("%v segment too short: %d bytes", seg.Marker, len(seg.Data))
		}
		return Config{
			Height:      int(binary.BigEndian.Uint16(seg.Data[1:3])),
			Width:       int(binary.BigEndian.Uint16(seg.Data[3:5])),
			Components:  int(seg.Data[5]),
			Progressive: seg.Marker == SOF2,
		}, nil
	}
	return Config{}, fmt.Errorf("no frame header before start of scan")
}

// ParseJFIF reads the density fields from a JFIF APP0 payload.
func ParseJFIF(payload []byte) (Density, bool) {
	if len(payload) < 12 || !bytes.HasPrefix(payload, jfifSignature) {
		return Density{}, false
	}
	return Density{
		Unit: payload[7],
		X:    binary.BigEndian.Uint16(payload[8:10]),
		Y:    binary.BigEndian.Uint16(payload[10:12]),
	}, true
}

// ICCProfile reassembles the ICC profile carried in APP2 segments.
// It returns nil if the stream carries no profile.
func ICCProfile(segs []Segment) ([]byte, error) {
	var chunks [][]byte
	count := 0
	for _, p := range AppPayloads(segs, 2) {
		if len(p) < len(iccSignature)+2 || !bytes.HasPrefix(p, iccSignature) {
			continue
		}
		num := int(p[12])
		total := int(p[13])
		if count == 0 {
			if total == 0 {
				return nil, fmt.Errorf("invalid ICC chunk count: 0")
			}
			count = total
			chunks = make([][]byte, count)
		} else if total != count {
			return nil, fmt.Errorf("inconsistent ICC chunk count: %d then %d", count, total)
		}
		if num < 1 || num > count {
			return nil, fmt.Errorf("ICC chunk index %d out of range 1..%d", num, count)
		}
		chunks[num-1] = p[14:]
	}
	if count == 0 {
		return nil, nil
	}

	var profile []byte
	for i, c := range chunks {
		if c == nil {
			return nil, fmt.Errorf("missing ICC chunk %d of %d", i+1, count)
		}
		profile = append(profile, c...)
	}
	return profile, nil
}
