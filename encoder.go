package t42

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"golang.org/x/image/draw"

	"github.com/mrjoshuak/go-t42/internal/jpegio"
)

// encoder writes one ITULab stream: Lab samples staged as full
// resolution planes, compressed by the baseline codec, then the JFIF
// and G3FAX headers spliced in after SOI.
type encoder struct {
	w       io.Writer
	options *Options
	params  *LabParams

	width   int
	height  int
	density jpegio.Density

	// planes hold the staged Lab samples. The codec carries the three
	// components through as if they were YCbCr.
	planes *image.YCbCr
}

// newEncoder creates an encoder on w.
func newEncoder(w io.Writer, o *Options) *encoder {
	return &encoder{
		w:       w,
		options: o,
		params:  o.labParams(),
		density: jpegio.Density{Unit: 0, X: 1, Y: 1},
	}
}

// stageLab allocates full-resolution Lab planes for a width by height
// page.
func (e *encoder) stageLab(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", width, height)
	}
	e.width = width
	e.height = height
	e.planes = image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio444)
	return nil
}

// setLabRow stores one scanline of Lab triples into the planes.
func (e *encoder) setLabRow(y int, lab []byte) {
	yi := y * e.planes.YStride
	ci := y * e.planes.CStride
	for x := 0; x < e.width; x++ {
		e.planes.Y[yi+x] = lab[3*x]
		e.planes.Cb[ci+x] = lab[3*x+1]
		e.planes.Cr[ci+x] = lab[3*x+2]
	}
}

// writeJPEG compresses the staged planes and splices the JFIF and
// G3FAX headers in after SOI.
func (e *encoder) writeJPEG() error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, e.planes, &jpeg.Options{Quality: e.options.quality()}); err != nil {
		return fmt.Errorf("compressing: %w", err)
	}
	out, err := jpegio.Insert(buf.Bytes(),
		jpegio.JFIF(e.density),
		g3faxHeader(e.options.resolution()))
	if err != nil {
		return fmt.Errorf("writing markers: %w", err)
	}
	_, err = e.w.Write(out)
	return err
}

// encodeRGB converts packed sRGB rows to quantized Lab and writes them
// out.
func (e *encoder) encodeRGB(srgb []byte, width, height int) error {
	if err := e.stageLab(width, height); err != nil {
		return err
	}
	if len(srgb) < 3*width*height {
		return fmt.Errorf("source buffer holds %d bytes, need %d", len(srgb), 3*width*height)
	}
	row := make([]byte, 3*width)
	for y := 0; y < height; y++ {
		e.params.SRGBToLab(row, srgb[3*width*y:], width)
		e.setLabRow(y, row)
	}
	return e.writeJPEG()
}

// encodeLab writes rows that are already in the ITULab byte encoding.
func (e *encoder) encodeLab(lab []byte, width, height int) error {
	if err := e.stageLab(width, height); err != nil {
		return err
	}
	if len(lab) < 3*width*height {
		return fmt.Errorf("source buffer holds %d bytes, need %d", len(lab), 3*width*height)
	}
	for y := 0; y < height; y++ {
		e.setLabRow(y, lab[3*width*y:])
	}
	return e.writeJPEG()
}

// encodeImage flattens img into sRGB rows and writes them out,
// rescaling first when a page width is set.
func (e *encoder) encodeImage(img image.Image) error {
	if w := e.options.fitWidth(); w > 0 {
		img = scaleToWidth(img, w)
	}
	bounds := img.Bounds()
	return e.encodeRGB(extractSRGB(img), bounds.Dx(), bounds.Dy())
}

// fromJPEG transcodes a baseline JPEG, keeping its pixel density.
func (e *encoder) fromJPEG(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}
	segs, err := jpegio.Scan(data)
	if err != nil {
		return fmt.Errorf("parsing stream header: %w", err)
	}
	e.density = sourceDensity(segs)

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding scan data: %w", err)
	}
	if w := e.options.fitWidth(); w > 0 {
		img = scaleToWidth(img, w)
	}
	bounds := img.Bounds()
	return e.encodeRGB(extractSRGB(img), bounds.Dx(), bounds.Dy())
}

// extractSRGB flattens an image into packed 8-bit sRGB rows.
func extractSRGB(img image.Image) []byte {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	srgb := make([]byte, 3*width*height)

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < height; y++ {
			out := srgb[3*width*y:]
			for x := 0; x < width; x++ {
				c := src.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				out[3*x] = c.R
				out[3*x+1] = c.G
				out[3*x+2] = c.B
			}
		}
	case *image.NRGBA:
		for y := 0; y < height; y++ {
			out := srgb[3*width*y:]
			for x := 0; x < width; x++ {
				c := src.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				out[3*x] = c.R
				out[3*x+1] = c.G
				out[3*x+2] = c.B
			}
		}
	case *image.YCbCr:
		for y := 0; y < height; y++ {
			out := srgb[3*width*y:]
			for x := 0; x < width; x++ {
				c := src.YCbCrAt(bounds.Min.X+x, bounds.Min.Y+y)
				r, g, b := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				out[3*x] = r
				out[3*x+1] = g
				out[3*x+2] = b
			}
		}
	case *image.Gray:
		for y := 0; y < height; y++ {
			out := srgb[3*width*y:]
			for x := 0; x < width; x++ {
				v := src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
				out[3*x] = v
				out[3*x+1] = v
				out[3*x+2] = v
			}
		}
	default:
		for y := 0; y < height; y++ {
			out := srgb[3*width*y:]
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				out[3*x] = uint8(r >> 8)
				out[3*x+1] = uint8(g >> 8)
				out[3*x+2] = uint8(b >> 8)
			}
		}
	}
	return srgb
}

// scaleToWidth rescales img to the given page width, preserving the
// aspect ratio.
func scaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == width || bounds.Dx() == 0 {
		return img
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
