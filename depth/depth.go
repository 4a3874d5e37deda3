// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package depth implements the logarithmic depth codec used by the G-buffer.
//
// Eye-space Z values are signed: geometry in front of the camera has negative
// Z. The codec stores a logarithm of the positive distance so that precision
// is spread evenly over a large depth range.
//
// Two flavours exist:
//
//   - [EncodePartial] expects a value already offset by [PrepareEyeZ]. The
//     geometry pass uses it, because the offset is computed per vertex and
//     interpolated.
//   - [EncodeFull] applies the +1 offset itself.
//
// [Decode] inverts [EncodeFull] and yields a positive eye-space distance.
package depth

import "github.com/chewxy/math32"

// Floor is the smallest argument passed to the logarithm. Values at or below
// it encode to log2(Floor) instead of producing -Inf or NaN.
const Floor = 1e-6

// EyeZ is a signed eye-space Z coordinate. Points in front of the camera
// have negative values.
type EyeZ float32

// Distance is a positive eye-space depth, the negation of an [EyeZ].
type Distance float32

// Distance converts a signed eye-space Z into a positive distance.
func (z EyeZ) Distance() Distance { return Distance(-z) }

// EyeZ converts a positive distance back into a signed eye-space Z.
func (d Distance) EyeZ() EyeZ { return EyeZ(-d) }

// PrepareEyeZ converts a signed eye-space Z into the positive, offset value
// expected by [EncodePartial]: 1 + (-z).
func PrepareEyeZ(z EyeZ) float32 {
	return 1 + float32(-z)
}

// EncodePartial encodes a value produced by [PrepareEyeZ].
// The coefficient must be positive; non-positive coefficients produce
// meaningless but finite results.
func EncodePartial(z, coefficient float32) float32 {
	half := coefficient * 0.5
	return math32.Log2(math32.Max(Floor, z)) * half
}

// EncodeFull encodes a positive eye-space depth, applying the +1 offset.
func EncodeFull(z, coefficient float32) float32 {
	half := coefficient * 0.5
	return math32.Log2(math32.Max(Floor, z+1)) * half
}

// Encode encodes a signed eye-space Z the way the geometry pass does:
// EncodePartial(PrepareEyeZ(z)).
func Encode(z EyeZ, coefficient float32) float32 {
	return EncodePartial(PrepareEyeZ(z), coefficient)
}

// Decode inverts [EncodeFull], returning a positive eye-space distance.
func Decode(v, coefficient float32) Distance {
	half := coefficient * 0.5
	return Distance(math32.Exp2(v/half) - 1)
}

// DecodePartial inverts [EncodePartial] without removing the +1 offset.
func DecodePartial(v, coefficient float32) float32 {
	half := coefficient * 0.5
	return math32.Exp2(v / half)
}

// Coefficient returns the depth coefficient that maps distances in
// [0, far] into encoded values in [0, 1].
func Coefficient(far float32) float32 {
	return 2 / math32.Log2(far+1)
}
