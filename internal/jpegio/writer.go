package jpegio

import (
	"encoding/binary"
	"fmt"
)

// maxSegmentData is the payload capacity of one marker segment: the
// length field counts itself, so 65535 minus the two length bytes.
const maxSegmentData = 65533

// maxICCChunk is the profile data capacity of one APP2 segment after
// the ICC chunk header.
const maxICCChunk = maxSegmentData - 14

var (
	jfifSignature = []byte("JFIF\x00")
	iccSignature  = []byte("ICC_PROFILE\x00")
)

// Insert splices marker segments into a JPEG stream immediately after
// the SOI marker, in the order given.
func Insert(data []byte, segs ...Segment) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || Marker(data[1]) != SOI {
		return nil, fmt.Errorf("missing SOI marker")
	}

	extra := 0
	for _, seg := range segs {
		if len(seg.Data) > maxSegmentData {
			return nil, fmt.Errorf("%v segment too long: %d bytes", seg.Marker, len(seg.Data))
		}
		extra += 4 + len(seg.Data)
	}

	out := make([]byte, 0, len(data)+extra)
	out = append(out, data[:2]...)
	for _, seg := range segs {
		out = seg.appendTo(out)
	}
	return append(out, data[2:]...), nil
}

// appendTo appends the encoded marker segment to dst.
func (seg Segment) appendTo(dst []byte) []byte {
	dst = append(dst, 0xFF, byte(seg.Marker))
	if !seg.Marker.HasLength() {
		return dst
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(seg.Data)+2))
	return append(dst, seg.Data...)
}

// JFIF builds the APP0 segment declaring JFIF version 1.01 with the
// given pixel density and no thumbnail.
func JFIF(d Density) Segment {
	data := make([]byte, 14)
	copy(data, jfifSignature)
	data[5] = 1 // version 1.01
	data[6] = 1
	data[7] = d.Unit
	binary.BigEndian.PutUint16(data[8:10], d.X)
	binary.BigEndian.PutUint16(data[10:12], d.Y)
	return Segment{Marker: APP0, Data: data}
}

// ICCSegments chunks an ICC profile into APP2 segments. Each chunk
// carries its 1-based index and the total chunk count.
func ICCSegments(profile []byte) []Segment {
	count := (len(profile) + maxICCChunk - 1) / maxICCChunk
	if count == 0 {
		count = 1
	}

	segs := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		chunk := profile[i*maxICCChunk:]
		if len(chunk) > maxICCChunk {
			chunk = chunk[:maxICCChunk]
		}
		data := make([]byte, 0, 14+len(chunk))
		data = append(data, iccSignature...)
		data = append(data, byte(i+1), byte(count))
		data = append(data, chunk...)
		segs = append(segs, Segment{Marker: APP2, Data: data})
	}
	return segs
}
