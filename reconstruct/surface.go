// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package reconstruct rebuilds eye-space surface attributes from the
// G-buffer for a single fragment.
//
// Reconstruction never fails: every input value yields a surface, and
// attachments that the selected [Mode] skips are replaced by defaults.
package reconstruct

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/gbuffer"
	"github.com/gogpu/deferred/normal"
	"github.com/gogpu/deferred/viewray"
)

// Viewport holds the reciprocal of the render target size.
type Viewport struct {
	InverseWidth  float32
	InverseHeight float32
}

// NewViewport returns the viewport for a width x height target.
func NewViewport(width, height int) Viewport {
	return Viewport{
		InverseWidth:  1 / float32(width),
		InverseHeight: 1 / float32(height),
	}
}

// UV converts window coordinates to normalized screen coordinates.
func (v Viewport) UV(frag mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{frag[0] * v.InverseWidth, frag[1] * v.InverseHeight}
}

// Surface is the reconstructed eye-space surface at one fragment.
type Surface struct {
	Albedo           mgl32.Vec3
	Emission         float32
	Specular         mgl32.Vec3
	SpecularExponent float32
	Normal           mgl32.Vec3
	// Position is the eye-space position with w = 1.
	Position mgl32.Vec4
	UV       mgl32.Vec2
}

// Input bundles everything reconstruction reads.
type Input struct {
	GBuffer          *gbuffer.Buffer
	Viewport         Viewport
	Rays             viewray.Rays
	DepthCoefficient float32
	Mode             Mode
}

// Reconstruct rebuilds the surface at window coordinates frag. Pixel
// centers are at half-integer coordinates.
func (in *Input) Reconstruct(frag mgl32.Vec2) Surface {
	uv := in.Viewport.UV(frag)
	b := in.GBuffer

	encoded := b.Depth.SampleR(uv)
	eyeZ := depth.Decode(encoded, in.DepthCoefficient).EyeZ()

	s := Surface{
		Normal:   normal.Default,
		Position: in.Rays.Reconstruct(eyeZ, uv),
		UV:       uv,
	}
	if in.Mode.Has(ModeNormal) {
		s.Normal = normal.Decompress(b.Normal.Sample(uv).Vec2())
	}
	if in.Mode.Has(ModeAlbedoEmission) {
		a := b.Albedo.Sample(uv)
		s.Albedo = a.Vec3()
		s.Emission = a[3]
	}
	if in.Mode.Has(ModeSpecular) {
		sp := b.Specular.Sample(uv)
		s.Specular = sp.Vec3()
		s.SpecularExponent = gbuffer.UnpackExponent(sp[3])
	}
	return s
}

// At reconstructs the surface at the center of pixel (x, y).
func (in *Input) At(x, y int) Surface {
	return in.Reconstruct(mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5})
}
