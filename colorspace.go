// Color space conversion between sRGB and the ITULab encoding.
//
// This file implements the pixel pipeline of ITU-T T.42: 8-bit sRGB
// samples are linearised, taken to CIE 1931 XYZ, normalised for the
// reference white, mapped to CIELAB, and quantized to bytes with the
// range/offset encoding of ITU-T T.4 Annex E.6.4. The reverse path
// undoes each stage in turn.
//
// # Lookup Tables
//
// Both directions are table accelerated. The forward table maps each
// of the 256 sRGB code values to linear light; the inverse table maps
// linear light, quantized to 4096 steps, straight to sRGB bytes. Both
// tables are built at package initialisation from the reference gamma
// functions at the bottom of this file.
//
// # References
//
//   - ITU-T T.42 - Continuous-tone colour representation for facsimile
//   - ITU-T T.4 Annex E.6.4 - CIELAB byte encoding
//   - IEC 61966-2-1 - sRGB color space

package t42

import "math"

// srgbToLinear maps an sRGB code value to its linear light value.
var srgbToLinear [256]float64

// linearToSRGB maps linear light, scaled to 4096 steps, to sRGB code
// values.
var linearToSRGB [4096]byte

func init() {
	for i := range srgbToLinear {
		srgbToLinear[i] = srgbInverseGamma(float64(i) / 255)
	}
	for i := range linearToSRGB {
		v := math.Floor(srgbGamma(float64(i)/4096) * 256)
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		linearToSRGB[i] = byte(v)
	}
}

// SRGBToLab converts pixels of packed 8-bit sRGB to the ITULab byte
// encoding. Both buffers hold three bytes per pixel; the caller must
// size them to at least 3*pixels.
func (p *LabParams) SRGBToLab(lab, srgb []byte, pixels int) {
	for i := 0; i < pixels; i++ {
		r := srgbToLinear[srgb[3*i]]
		g := srgbToLinear[srgb[3*i+1]]
		b := srgbToLinear[srgb[3*i+2]]

		// Linear RGB to XYZ
		x := 0.4124*r + 0.3576*g + 0.1805*b
		y := 0.2126*r + 0.7152*g + 0.0722*b
		z := 0.0193*r + 0.1192*g + 0.9505*b

		// Normalise for the illuminant
		x /= p.xn
		y /= p.yn
		z /= p.zn

		// XYZ to Lab
		fx := labF(x)
		fy := labF(y)
		fz := labF(z)

		cieL := 116*fy - 16
		cieA := 500 * (fx - fy)
		cieB := 200 * (fy - fz)

		p.labToITU(lab[3*i:3*i+3], cieL, cieA, cieB)
	}
}

// LabToSRGB converts pixels of the ITULab byte encoding to packed
// 8-bit sRGB. Both buffers hold three bytes per pixel; the caller must
// size them to at least 3*pixels.
func (p *LabParams) LabToSRGB(srgb, lab []byte, pixels int) {
	for i := 0; i < pixels; i++ {
		cieL, cieA, cieB := p.ituToLab(lab[3*i : 3*i+3])

		// Lab to XYZ
		fy := (cieL + 16) / 116
		fx := fy + cieA/500
		fz := fy - cieB/200

		x := p.xn * labInverseF(fx)
		y := p.yn * labInverseF(fy)
		z := p.zn * labInverseF(fz)

		// XYZ to linear RGB
		r := 3.2406*x - 1.5372*y - 0.4986*z
		g := -0.9689*x + 1.8758*y + 0.0415*z
		b := 0.0557*x - 0.2040*y + 1.0570*z

		srgb[3*i] = encodeSRGB(r)
		srgb[3*i+1] = encodeSRGB(g)
		srgb[3*i+2] = encodeSRGB(b)
	}
}

// labToITU quantizes a CIELAB value to the byte encoding of ITU-T T.4
// Annex E.6.4.
func (p *LabParams) labToITU(out []byte, cieL, cieA, cieB float64) {
	out[0] = quantizeByte(cieL/p.rangeL + p.offsetL)
	a := quantizeByte(cieA/p.rangeA + p.offsetA)
	b := quantizeByte(cieB/p.rangeB + p.offsetB)
	if p.abSigned {
		a -= 128
		b -= 128
	}
	out[1] = a
	out[2] = b
}

// ituToLab expands the byte encoding back to a CIELAB value.
func (p *LabParams) ituToLab(in []byte) (cieL, cieA, cieB float64) {
	a := in[1]
	b := in[2]
	if p.abSigned {
		a += 128
		b += 128
	}
	cieL = p.rangeL * (float64(in[0]) - p.offsetL)
	cieA = p.rangeA * (float64(a) - p.offsetA)
	cieB = p.rangeB * (float64(b) - p.offsetB)
	return cieL, cieA, cieB
}

// quantizeByte floors v and clamps it to the byte range.
func quantizeByte(v float64) byte {
	v = math.Floor(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// encodeSRGB converts a linear light component to an sRGB byte through
// the lookup table.
func encodeSRGB(linear float64) byte {
	v := int(linear * 4096)
	if v < 0 {
		v = 0
	} else if v > 4095 {
		v = 4095
	}
	return linearToSRGB[v]
}

// labF is the CIELAB f function applied to white-normalised XYZ.
func labF(t float64) float64 {
	if t <= 0.008856 {
		return 7.787*t + 0.1379
	}
	return math.Cbrt(t)
}

// labInverseF is the inverse of the Lab f function.
func labInverseF(t float64) float64 {
	if t <= 0.2068 {
		return 0.1284 * (t - 0.1379)
	}
	return t * t * t
}

// srgbGamma applies the sRGB gamma curve.
func srgbGamma(linear float64) float64 {
	if linear <= 0.0031308 {
		return 12.92 * linear
	}
	return 1.055*math.Pow(linear, 1.0/2.4) - 0.055
}

// srgbInverseGamma removes the sRGB gamma curve.
func srgbInverseGamma(encoded float64) float64 {
	if encoded <= 0.04045 {
		return encoded / 12.92
	}
	return math.Pow((encoded+0.055)/1.055, 2.4)
}
