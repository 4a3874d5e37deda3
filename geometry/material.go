package geometry

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/texture"
)

// Material describes how the geometry pass fills the G-buffer for a
// surface. Textures are optional; a nil texture contributes nothing.
type Material struct {
	// Albedo is the base color; its alpha takes part in AlphaDiscard.
	Albedo mgl32.Vec4
	// AlbedoTexture is blended over Albedo by AlbedoMix times the texel
	// alpha. Its alpha scales the material alpha by the same mix.
	AlbedoTexture *texture.Texture
	AlbedoMix     float32

	// Emission in [0, 1]. EmissionTexture, if set, scales it by its red
	// channel.
	Emission        float32
	EmissionTexture *texture.Texture

	// Specular color and exponent in [0, 256]. SpecularTexture, if set,
	// multiplies the color.
	Specular         mgl32.Vec3
	SpecularExponent float32
	SpecularTexture  *texture.Texture

	// NormalTexture is a tangent-space normal map.
	NormalTexture *texture.Texture

	// AlphaDiscard drops fragments whose albedo alpha is below it.
	AlphaDiscard float32

	// Stipple drops fragments whose stipple noise value is below it,
	// approximating transparency without blending. Zero never discards.
	Stipple float32

	// DoubleSided disables back-face culling.
	DoubleSided bool
}

// DefaultMaterial returns an opaque white material with a dull highlight.
func DefaultMaterial() *Material {
	return &Material{
		Albedo:           mgl32.Vec4{1, 1, 1, 1},
		Specular:         mgl32.Vec3{0.2, 0.2, 0.2},
		SpecularExponent: 32,
	}
}

// Sample is a material evaluated at one fragment.
type Sample struct {
	Albedo   mgl32.Vec3
	Alpha    float32
	Emission float32
	Specular mgl32.Vec3
	Exponent float32
	// Normal is a tangent-space normal map sample with channels in [0, 1].
	// It is only meaningful when HasNormal is set.
	Normal    mgl32.Vec3
	HasNormal bool
}

// Evaluate samples the material at texture coordinates uv.
func (m *Material) Evaluate(uv mgl32.Vec2) Sample {
	s := Sample{
		Albedo:   m.Albedo.Vec3(),
		Alpha:    m.Albedo[3],
		Emission: m.Emission,
		Specular: m.Specular,
		Exponent: m.SpecularExponent,
	}
	if m.AlbedoTexture != nil {
		t := m.AlbedoTexture.Sample(uv)
		k := mgl32.Clamp(m.AlbedoMix*t[3], 0, 1)
		s.Albedo = s.Albedo.Mul(1 - k).Add(t.Vec3().Mul(k))
		s.Alpha *= 1 - mgl32.Clamp(m.AlbedoMix, 0, 1)*(1-t[3])
	}
	if m.EmissionTexture != nil {
		s.Emission *= m.EmissionTexture.SampleR(uv)
	}
	if m.SpecularTexture != nil {
		t := m.SpecularTexture.Sample(uv).Vec3()
		s.Specular = mgl32.Vec3{s.Specular[0] * t[0], s.Specular[1] * t[1], s.Specular[2] * t[2]}
	}
	if m.NormalTexture != nil {
		s.Normal = m.NormalTexture.Sample(uv).Vec3()
		s.HasNormal = true
	}
	return s
}

// Discards reports whether a fragment with this sample and stipple noise
// value is dropped.
func (m *Material) Discards(s Sample, noise float32) bool {
	if s.Alpha < m.AlphaDiscard {
		return true
	}
	return m.Stipple > 0 && noise < m.Stipple
}
