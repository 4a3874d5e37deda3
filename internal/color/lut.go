// Package color converts between the linear light values produced by the
// renderer and 8-bit sRGB pixels used by images on disk.
//
// Conversions go through lookup tables built at init time, so exporting a
// frame never calls math.Pow per pixel.
package color

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// decodeLUT maps an sRGB byte to linear light in [0, 1].
var decodeLUT [256]float32

// encodeLUT maps linear light quantized to 12 bits to an sRGB byte.
var encodeLUT [4096]uint8

func init() {
	for i := range decodeLUT {
		decodeLUT[i] = float32(srgbToLinear(float64(i) / 255))
	}
	for i := range encodeLUT {
		s := linearToSRGB(float64(i) / 4095)
		encodeLUT[i] = uint8(clampInt(int(s*255+0.5), 0, 255)) //nolint:gosec // clamped to byte range
	}
}

// ToLinear converts an sRGB byte to linear light.
func ToLinear(s uint8) float32 {
	return decodeLUT[s]
}

// ToSRGB converts linear light to an sRGB byte. Input is clamped to [0, 1].
func ToSRGB(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return encodeLUT[int(l*4095+0.5)]
}

// ToUnorm converts a [0, 1] value to a byte without gamma encoding.
func ToUnorm(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Vec3ToSRGB encodes a linear RGB triple.
func Vec3ToSRGB(c mgl32.Vec3) (r, g, b uint8) {
	return ToSRGB(c[0]), ToSRGB(c[1]), ToSRGB(c[2])
}

// Luma returns the Rec. 709 luminance of a linear RGB triple.
func Luma(c mgl32.Vec3) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

func srgbToLinear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func linearToSRGB(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
