package t42

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"seehuhn.de/go/icc"

	"github.com/mrjoshuak/go-t42/internal/jpegio"
)

// decoder reads one ITULab stream in two passes: a marker pass that
// fixes the coding parameters, then a pixel pass through the baseline
// codec.
type decoder struct {
	data   []byte
	params *LabParams
	meta   *Metadata
	segs   []jpegio.Segment
}

// newDecoder buffers the whole stream, since each pass needs to walk
// it from the start. A nil p selects the T.42 default parameters.
func newDecoder(r io.Reader, p *LabParams) (*decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}
	if p == nil {
		p = NewLabParams()
	}
	return &decoder{
		data:   data,
		params: p,
		meta:   &Metadata{Palette: -1},
	}, nil
}

// scanHeader parses the marker segments ahead of the scan data and
// applies every G3FAX record to the coding parameters.
func (d *decoder) scanHeader() error {
	segs, err := jpegio.Scan(d.data)
	if err != nil {
		return fmt.Errorf("parsing stream header: %w", err)
	}
	d.segs = segs

	cfg, err := jpegio.ParseConfig(segs)
	if err != nil {
		return err
	}
	d.meta.Width = cfg.Width
	d.meta.Height = cfg.Height

	d.meta.ITUFax = applyG3FAX(d.params, d.meta, jpegio.AppPayloads(segs, 1))

	profile, err := jpegio.ICCProfile(segs)
	if err != nil {
		return fmt.Errorf("reading ICC profile: %w", err)
	}
	d.meta.ICCProfile = profile
	return nil
}

// decodePlanes runs the baseline codec and hands back the raw
// component planes. The codec must not touch the samples, so only its
// native three-plane form is accepted.
func (d *decoder) decodePlanes() (*image.YCbCr, error) {
	img, err := jpeg.Decode(bytes.NewReader(d.data))
	if err != nil {
		return nil, fmt.Errorf("decoding scan data: %w", err)
	}
	planes, ok := img.(*image.YCbCr)
	if !ok {
		return nil, fmt.Errorf("stream does not hold 3 Lab components")
	}
	return planes, nil
}

// convertRows turns every decoded scanline from quantized Lab into
// packed sRGB.
func (d *decoder) convertRows(planes *image.YCbCr) []byte {
	width, height := d.meta.Width, d.meta.Height
	srgb := make([]byte, 3*width*height)
	row := make([]byte, 3*width)
	for y := 0; y < height; y++ {
		labRow(planes, y, row)
		d.params.LabToSRGB(srgb[3*width*y:], row, width)
	}
	return srgb
}

// decodeRGB decodes the stream into packed sRGB rows.
func (d *decoder) decodeRGB() ([]byte, error) {
	if err := d.scanHeader(); err != nil {
		return nil, err
	}
	planes, err := d.decodePlanes()
	if err != nil {
		return nil, err
	}
	return d.convertRows(planes), nil
}

// toJPEG re-encodes the stream as a displayable baseline JPEG,
// carrying the source pixel density over to the output.
func (d *decoder) toJPEG(w io.Writer, o *Options) error {
	if err := d.scanHeader(); err != nil {
		return err
	}
	if !d.meta.ITUFax {
		return ErrNotITUFax
	}
	planes, err := d.decodePlanes()
	if err != nil {
		return err
	}
	img := rgbImage(d.convertRows(planes), d.meta.Width, d.meta.Height)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: o.quality()}); err != nil {
		return fmt.Errorf("compressing: %w", err)
	}

	segs := []jpegio.Segment{jpegio.JFIF(sourceDensity(d.segs))}
	if o.embedICC() {
		segs = append(segs, jpegio.ICCSegments(icc.SRGBv2Profile)...)
	}
	out, err := jpegio.Insert(buf.Bytes(), segs...)
	if err != nil {
		return fmt.Errorf("writing markers: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// labRow gathers one scanline of L, a, b triples from the component
// planes, replicating chroma samples when the stream is subsampled.
func labRow(planes *image.YCbCr, y int, row []byte) {
	py := planes.Rect.Min.Y + y
	for x := 0; x < len(row)/3; x++ {
		px := planes.Rect.Min.X + x
		ci := planes.COffset(px, py)
		row[3*x] = planes.Y[planes.YOffset(px, py)]
		row[3*x+1] = planes.Cb[ci]
		row[3*x+2] = planes.Cr[ci]
	}
}

// rgbImage wraps packed sRGB rows in an image.RGBA.
func rgbImage(srgb []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := srgb[3*width*y:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			dst[4*x] = src[3*x]
			dst[4*x+1] = src[3*x+1]
			dst[4*x+2] = src[3*x+2]
			dst[4*x+3] = 0xFF
		}
	}
	return img
}

// sourceDensity returns the JFIF pixel density declared by a stream,
// or the codec default when it declares none.
func sourceDensity(segs []jpegio.Segment) jpegio.Density {
	for _, p := range jpegio.AppPayloads(segs, 0) {
		if d, ok := jpegio.ParseJFIF(p); ok {
			return d
		}
	}
	return jpegio.Density{Unit: 0, X: 1, Y: 1}
}
