package t42

import "encoding/binary"

// LabParams holds the CIELAB coding parameters for an ITULab image:
// the reference white point and the per-channel range and offset of
// the byte encoding defined in ITU-T T.4 Annex E. The zero value has
// an empty gamut; use NewLabParams or the setters before converting
// pixels.
type LabParams struct {
	xn float64
	yn float64
	zn float64

	rangeL  float64
	rangeA  float64
	rangeB  float64
	offsetL float64
	offsetA float64
	offsetB float64

	abSigned bool
}

// NewLabParams returns parameters with the ITU-T T.42 defaults for
// colour fax: the D50 white point and the basic gamut L* [0, 100],
// a* [-85, 85], b* [-75, 125], with a* and b* coded unsigned.
func NewLabParams() *LabParams {
	p := &LabParams{}
	p.SetIlluminant(0.9638, 1.0, 0.8245)
	p.SetGamut(0, 100, -85, 85, -75, 125, false)
	return p
}

// SetIlluminant sets the reference white point. Values given on the
// 0..100 scale used by illuminant tables are rescaled to 0..1.
func (p *LabParams) SetIlluminant(xn, yn, zn float64) {
	if yn > 10 {
		xn /= 100
		yn /= 100
		zn /= 100
	}
	p.xn = xn
	p.yn = yn
	p.zn = zn
}

// WhitePoint returns the reference white point on the 0..1 scale.
func (p *LabParams) WhitePoint() (xn, yn, zn float64) {
	return p.xn, p.yn, p.zn
}

// SetGamut sets the coding ranges from channel bounds, per ITU-T T.4
// Annex E. The offsets are computed on the full 0..256 scale before
// the ranges shrink to the 255 coded steps. abSigned selects the
// signed byte encoding for a* and b*.
func (p *LabParams) SetGamut(lMin, lMax, aMin, aMax, bMin, bMax int, abSigned bool) {
	p.rangeL = float64(lMax - lMin)
	p.rangeA = float64(aMax - aMin)
	p.rangeB = float64(bMax - bMin)

	p.offsetL = -256 * float64(lMin) / p.rangeL
	p.offsetA = -256 * float64(aMin) / p.rangeA
	p.offsetB = -256 * float64(bMin) / p.rangeB

	p.rangeL /= 255
	p.rangeA /= 255
	p.rangeB /= 255

	p.abSigned = abSigned
}

// SetGamutPQ sets the coding ranges directly from the P and Q
// interchange values carried in a gamut range marker.
func (p *LabParams) SetGamutPQ(lP, lQ, aP, aQ, bP, bQ int) {
	p.rangeL = float64(lQ) / 255
	p.rangeA = float64(aQ) / 255
	p.rangeB = float64(bQ) / 255

	p.offsetL = float64(lP)
	p.offsetA = float64(aP)
	p.offsetB = float64(bP)

	p.abSigned = false
}

// SetGamutFromCode applies the six big-endian P/Q values from a G3FAX
// gamut range marker.
func (p *LabParams) SetGamutFromCode(code [12]byte) {
	var val [6]int
	for i := range val {
		val[i] = int(binary.BigEndian.Uint16(code[2*i:]))
	}
	p.SetGamutPQ(val[0], val[1], val[2], val[3], val[4], val[5])
}

// SetIlluminantFromCode applies a four-byte illuminant code from a
// G3FAX illuminant marker. A "CT" code carries a colour temperature in
// kelvin and leaves the white point unchanged. It reports whether the
// code was recognised.
func (p *LabParams) SetIlluminantFromCode(code [4]byte) bool {
	if code[0] == 'C' && code[1] == 'T' {
		// Colour temperature; no tabulated white point to apply
		return true
	}
	for _, ill := range illuminants {
		if ill.tag == code {
			p.SetIlluminant(ill.xn, ill.yn, ill.zn)
			return true
		}
	}
	return false
}

// illuminant is one row of the standard illuminant table: the T.42
// interchange code (zero for rows that have none) and the white point
// on the 0..100 scale.
type illuminant struct {
	tag [4]byte
	xn  float64
	yn  float64
	zn  float64
}

// Standard illuminants for the CIE 1931 2° and 1964 10° observers.
// Rows without an interchange code are transferred by colour
// temperature instead.
var illuminants = []illuminant{
	{[4]byte{0, 'D', '5', '0'}, 96.422, 100.000, 82.521},  // CIE D50/2°
	{[4]byte{}, 96.720, 100.000, 81.427},                  // CIE D50/10°
	{[4]byte{}, 95.682, 100.000, 92.149},                  // CIE D55/2°
	{[4]byte{}, 95.799, 100.000, 90.926},                  // CIE D55/10°
	{[4]byte{0, 'D', '6', '5'}, 95.047, 100.000, 108.883}, // CIE D65/2°
	{[4]byte{}, 94.811, 100.000, 107.304},                 // CIE D65/10°
	{[4]byte{0, 'D', '7', '5'}, 94.972, 100.000, 122.638}, // CIE D75/2°
	{[4]byte{}, 94.416, 100.000, 120.641},                 // CIE D75/10°
	{[4]byte{0, 0, 'F', '2'}, 99.186, 100.000, 67.393},    // F02/2°
	{[4]byte{}, 103.279, 100.000, 69.027},                 // F02/10°
	{[4]byte{0, 0, 'F', '7'}, 95.041, 100.000, 108.747},   // F07/2°
	{[4]byte{}, 95.792, 100.000, 107.686},                 // F07/10°
	{[4]byte{0, 'F', '1', '1'}, 100.962, 100.000, 64.350}, // F11/2°
	{[4]byte{}, 103.863, 100.000, 65.607},                 // F11/10°
	{[4]byte{0, 0, 'S', 'A'}, 109.850, 100.000, 35.585},   // A/2°
	{[4]byte{}, 111.144, 100.000, 35.200},                 // A/10°
	{[4]byte{0, 0, 'S', 'C'}, 98.074, 100.000, 118.232},   // C/2°
	{[4]byte{}, 97.285, 100.000, 116.145},                 // C/10°
}
