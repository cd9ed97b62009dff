// Package t42 implements the ITULab colour image representation of
// ITU-T T.42 for continuous-tone colour fax.
//
// An ITULab image is a baseline JPEG whose three components carry
// CIELAB values quantized per ITU-T T.4 Annex E instead of YCbCr, and
// whose APP1 segments carry G3FAX records describing the page, the
// gamut and the illuminant. This package converts pixel buffers and
// ordinary baseline JPEG images to and from that representation.
//
// Basic usage for receiving a fax page:
//
//	img, err := t42.Decode(bytes.NewReader(page))
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Basic usage for sending one:
//
//	var page bytes.Buffer
//	err := t42.Encode(&page, img, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
package t42

import (
	"errors"
	"image"
	"image/color"
	"io"
)

// ErrNotITUFax reports that a stream carries no G3FAX application
// marker identifying it as an ITU colour fax image.
var ErrNotITUFax = errors.New("not an ITU fax image")

// Options holds the settings shared by the encode and transcode
// operations. A nil *Options is equivalent to DefaultOptions().
type Options struct {
	// Params supplies the CIELAB coding parameters. If nil, the T.42
	// defaults from NewLabParams are used. On the reading side, G3FAX
	// records found in the stream update these parameters before any
	// pixel is converted.
	Params *LabParams

	// Quality is the baseline JPEG quality, 1 to 100. 0 selects the
	// codec default of 75.
	Quality int

	// Resolution is the spatial resolution in dots per inch declared
	// in the emitted page header. 0 selects 200 dpi, the standard fax
	// resolution.
	Resolution int

	// FitWidth, when positive, rescales the source to this width
	// before colour conversion, preserving the aspect ratio.
	FitWidth int

	// EmbedICC embeds an sRGB profile in baseline JPEG output.
	EmbedICC bool
}

// DefaultOptions returns the default conversion options.
func DefaultOptions() *Options {
	return &Options{
		Quality:    75,
		Resolution: 200,
	}
}

func (o *Options) labParams() *LabParams {
	if o == nil || o.Params == nil {
		return NewLabParams()
	}
	return o.Params
}

func (o *Options) quality() int {
	if o == nil || o.Quality == 0 {
		return 75
	}
	return o.Quality
}

func (o *Options) resolution() int {
	if o == nil || o.Resolution == 0 {
		return 200
	}
	return o.Resolution
}

func (o *Options) fitWidth() int {
	if o == nil {
		return 0
	}
	return o.FitWidth
}

func (o *Options) embedICC() bool {
	return o != nil && o.EmbedICC
}

// Metadata describes the properties read from an ITULab stream header.
type Metadata struct {
	// Width is the image width in pixels.
	Width int

	// Height is the image height in pixels.
	Height int

	// ITUFax reports whether the stream carried a G3FAX marker
	// identifying it as an ITU colour fax image.
	ITUFax bool

	// Version is the coding standard edition from the page header.
	Version int

	// Resolution is the spatial resolution in dots per inch from the
	// page header.
	Resolution int

	// Palette is the colour palette table declared in the stream, or
	// -1 when it carries none.
	Palette int

	// ICCProfile is the embedded ICC profile, if any.
	ICCProfile []byte
}

// Decode reads an ITULab image from r and returns it as an
// image.Image. Streams without G3FAX markers are still decoded, using
// the default coding parameters; use DecodeMetadata to check for the
// markers first, or ToJPEG which insists on them.
func Decode(r io.Reader) (image.Image, error) {
	srgb, m, err := DecodeRGB(r, nil)
	if err != nil {
		return nil, err
	}
	return rgbImage(srgb, m.Width, m.Height), nil
}

// DecodeRGB reads an ITULab image from r and returns its pixels as
// packed 8-bit sRGB rows together with the stream metadata. G3FAX
// records found in the stream update p before any pixel is converted;
// a nil p uses fresh default parameters.
func DecodeRGB(r io.Reader, p *LabParams) ([]byte, *Metadata, error) {
	d, err := newDecoder(r, p)
	if err != nil {
		return nil, nil, err
	}
	srgb, err := d.decodeRGB()
	if err != nil {
		return nil, nil, err
	}
	return srgb, d.meta, nil
}

// DecodeConfig returns the dimensions and color model of an ITULab
// image without decoding the pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	d, err := newDecoder(r, nil)
	if err != nil {
		return image.Config{}, err
	}
	if err := d.scanHeader(); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      d.meta.Width,
		Height:     d.meta.Height,
	}, nil
}

// DecodeMetadata reads the stream header without decoding the pixels.
func DecodeMetadata(r io.Reader) (*Metadata, error) {
	d, err := newDecoder(r, nil)
	if err != nil {
		return nil, err
	}
	if err := d.scanHeader(); err != nil {
		return nil, err
	}
	return d.meta, nil
}

// ToJPEG converts an ITULab image from r into a displayable baseline
// JPEG on w. Unlike Decode, it refuses streams that carry no G3FAX
// marker, returning ErrNotITUFax.
func ToJPEG(w io.Writer, r io.Reader, o *Options) error {
	d, err := newDecoder(r, o.labParams())
	if err != nil {
		return err
	}
	return d.toJPEG(w, o)
}

// Encode writes img to w as an ITULab image.
func Encode(w io.Writer, img image.Image, o *Options) error {
	return newEncoder(w, o).encodeImage(img)
}

// EncodeRGB writes packed 8-bit sRGB rows to w as an ITULab image.
// The buffer must hold width*height pixels of 3 bytes each.
func EncodeRGB(w io.Writer, srgb []byte, width, height int, o *Options) error {
	return newEncoder(w, o).encodeRGB(srgb, width, height)
}

// EncodeLab writes rows already in the ITULab byte encoding to w as an
// ITULab image, with no colour conversion. The coding parameters in o
// are not consulted; the caller vouches that the samples match the
// advertised gamut.
func EncodeLab(w io.Writer, lab []byte, width, height int, o *Options) error {
	return newEncoder(w, o).encodeLab(lab, width, height)
}

// FromJPEG converts a baseline JPEG from r into an ITULab image on w.
// The source pixel density is carried over to the output.
func FromJPEG(w io.Writer, r io.Reader, o *Options) error {
	return newEncoder(w, o).fromJPEG(r)
}

func init() {
	// Native output leads with the JFIF APP0 and then the G3FAX APP1.
	image.RegisterFormat("itufax",
		"\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01?????\x00\x00\xff\xe1\x00\x0cG3FAX\x00",
		Decode, DecodeConfig)
	// Some writers place the G3FAX marker first.
	image.RegisterFormat("itufax",
		"\xff\xd8\xff\xe1??G3FAX",
		Decode, DecodeConfig)
}
