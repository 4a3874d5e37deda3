// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gbuffer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/normal"
)

// MaxExponent is the largest specular exponent the specular attachment can
// represent.
const MaxExponent = 256

// PackExponent maps a specular exponent in [0, MaxExponent] to [0, 1].
func PackExponent(e float32) float32 {
	return mgl32.Clamp(e, 0, MaxExponent) / MaxExponent
}

// UnpackExponent reverses PackExponent.
func UnpackExponent(a float32) float32 {
	return a * MaxExponent
}

// Record is the set of surface values stored for one pixel.
type Record struct {
	Albedo   mgl32.Vec3
	Emission float32
	// Normal is a unit eye-space normal. It is compressed on write.
	Normal   mgl32.Vec3
	Specular mgl32.Vec3
	Exponent float32
	// Depth is the logarithmic depth produced by depth.Encode.
	Depth float32
}

// Texels holds the encoded attachment values of a Record.
type Texels struct {
	Albedo   mgl32.Vec4
	Normal   mgl32.Vec2
	Specular mgl32.Vec4
	Depth    float32
}

// Encode converts r into attachment values.
func (r Record) Encode() Texels {
	return Texels{
		Albedo:   r.Albedo.Vec4(r.Emission),
		Normal:   normal.Compress(r.Normal),
		Specular: r.Specular.Vec4(PackExponent(r.Exponent)),
		Depth:    r.Depth,
	}
}

// Decode converts attachment values back into a Record.
func (t Texels) Decode() Record {
	return Record{
		Albedo:   t.Albedo.Vec3(),
		Emission: t.Albedo[3],
		Normal:   normal.Decompress(t.Normal),
		Specular: t.Specular.Vec3(),
		Exponent: UnpackExponent(t.Specular[3]),
		Depth:    t.Depth,
	}
}
