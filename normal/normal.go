// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package normal encodes unit eye-space normals into two channels using the
// spheremap transform, and provides the helpers the geometry pass uses to
// bring normals into eye space.
package normal

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// minDenominator keeps Compress finite for normals pointing straight away
// from the viewer (z = -1), which the spheremap transform cannot represent.
const minDenominator = 1e-6

// Default is the normal substituted when no normal is available: facing
// the viewer along +Z.
var Default = mgl32.Vec3{0, 0, 1}

// Compress maps a unit normal to two components in [0, 1].
func Compress(n mgl32.Vec3) mgl32.Vec2 {
	p := math32.Sqrt(math32.Max(0, n[2]*8+8))
	p = math32.Max(p, minDenominator)
	return mgl32.Vec2{
		mgl32.Clamp(n[0]/p+0.5, 0, 1),
		mgl32.Clamp(n[1]/p+0.5, 0, 1),
	}
}

// Decompress reverses [Compress]. Inputs outside the image of Compress are
// clamped so the square root never sees a negative argument.
func Decompress(c mgl32.Vec2) mgl32.Vec3 {
	fn := mgl32.Vec2{c[0]*4 - 2, c[1]*4 - 2}
	f := fn.Dot(fn)
	g := math32.Sqrt(math32.Max(0, 1-f/4))
	return mgl32.Vec3{fn[0] * g, fn[1] * g, 1 - f/2}
}

// Transform applies a normal matrix (inverse transpose of the model-view
// matrix) and renormalizes. Degenerate results fall back to [Default].
func Transform(normalMatrix mgl32.Mat3, n mgl32.Vec3) mgl32.Vec3 {
	return safeNormalize(normalMatrix.Mul3x1(n))
}

// Perturb applies a tangent-space normal map sample (each channel in
// [0, 1]) to the interpolated tangent frame.
func Perturb(tangent, bitangent, n mgl32.Vec3, sample mgl32.Vec3) mgl32.Vec3 {
	m := mgl32.Vec3{sample[0]*2 - 1, sample[1]*2 - 1, sample[2]*2 - 1}
	t := tangent.Mul(m[0])
	b := bitangent.Mul(m[1])
	return safeNormalize(t.Add(b).Add(n.Mul(m[2])))
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-12 || math32.IsNaN(l) {
		return Default
	}
	return v.Mul(1 / l)
}
