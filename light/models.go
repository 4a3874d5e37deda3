package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/reconstruct"
	"github.com/gogpu/deferred/shadow"
	"github.com/gogpu/deferred/texture"
)

// Directional is a light infinitely far away, such as the sun.
type Directional struct {
	// Direction is the world-space direction the light travels in.
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Specular  SpecularModel
}

// NewDirectional returns a directional light with a Blinn-Phong highlight.
func NewDirectional(direction, color mgl32.Vec3, intensity float32) *Directional {
	return &Directional{
		Direction: normalize(direction, mgl32.Vec3{0, -1, 0}),
		Color:     color,
		Intensity: clampIntensity(intensity),
		Specular:  SpecularBlinnPhong,
	}
}

// Mode implements Light.
func (d *Directional) Mode() reconstruct.Mode { return d.Specular.mode() }

// Evaluate implements Light.
func (d *Directional) Evaluate(v *View, s *reconstruct.Surface) Output {
	vec := DirectionalVectors(v.Direction(d.Direction), s)
	return shade(vec, s, d.Specular, d.Color, d.Intensity)
}

// Spherical is a point light whose influence ends at Radius.
type Spherical struct {
	// Position is in world space.
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Radius    float32
	// Falloff shapes the attenuation curve; 1 is linear.
	Falloff  float32
	Specular SpecularModel
}

// NewSpherical returns a spherical light with a Blinn-Phong highlight.
// radius is clamped to at least MinimumRadius, intensity to at least 0 and
// falloff to at least MinimumFalloff.
func NewSpherical(position, color mgl32.Vec3, intensity, radius, falloff float32) *Spherical {
	return &Spherical{
		Position:  position,
		Color:     color,
		Intensity: clampIntensity(intensity),
		Radius:    max(radius, MinimumRadius),
		Falloff:   max(falloff, MinimumFalloff),
		Specular:  SpecularBlinnPhong,
	}
}

// Mode implements Light.
func (l *Spherical) Mode() reconstruct.Mode { return l.Specular.mode() }

// Evaluate implements Light.
func (l *Spherical) Evaluate(v *View, s *reconstruct.Surface) Output {
	vec := PositionalVectors(v.Point(l.Position), s)
	if vec.Distance >= l.Radius {
		return Output{}
	}
	att := Attenuation(vec.Distance, l.Radius, l.Falloff)
	return shade(vec, s, l.Specular, l.Color, l.Intensity*att)
}

// Projective is a spot light that projects an image along its frustum,
// optionally casting variance shadows.
type Projective struct {
	Color     mgl32.Vec3
	Intensity float32
	Radius    float32
	Falloff   float32
	Specular  SpecularModel
	// Image is projected onto lit surfaces with its first row at the top
	// of the frustum. A nil image projects white.
	Image *texture.Texture
	// Shadow, if set, attenuates the light by a variance shadow map.
	Shadow *shadow.Map

	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4
	position       mgl32.Vec3
}

// NewProjective returns a projective light looking through the given view
// and projection matrices. Radius defaults to the distance at which the
// light stops, which callers usually set to the projection's far plane.
func NewProjective(view, projection mgl32.Mat4, color mgl32.Vec3, intensity, radius float32) *Projective {
	p := &Projective{
		Color:     color,
		Intensity: clampIntensity(intensity),
		Radius:    max(radius, MinimumRadius),
		Falloff:   1,
		Specular:  SpecularBlinnPhong,
	}
	p.SetTransform(view, projection)
	return p
}

// SetTransform moves the light.
func (p *Projective) SetTransform(view, projection mgl32.Mat4) {
	p.view = view
	p.projection = projection
	p.viewProjection = projection.Mul4(view)
	p.position = view.Inv().Col(3).Vec3()
}

// View returns the light's view matrix.
func (p *Projective) View() mgl32.Mat4 { return p.view }

// Projection returns the light's projection matrix.
func (p *Projective) Projection() mgl32.Mat4 { return p.projection }

// Position returns the world-space position of the light.
func (p *Projective) Position() mgl32.Vec3 { return p.position }

// Mode implements Light.
func (p *Projective) Mode() reconstruct.Mode { return p.Specular.mode() }

// Project returns the image coordinates of a world-space point. ok is false
// when the point is behind the light or outside its frustum.
func (p *Projective) Project(world mgl32.Vec3) (uv mgl32.Vec2, ok bool) {
	clip := p.viewProjection.Mul4x1(world.Vec4(1))
	if clip[3] <= 0 {
		return uv, false
	}
	x, y := clip[0]/clip[3], clip[1]/clip[3]
	if x < -1 || x > 1 || y < -1 || y > 1 {
		return uv, false
	}
	return mgl32.Vec2{x*0.5 + 0.5, 0.5 - y*0.5}, true
}

// Evaluate implements Light.
func (p *Projective) Evaluate(v *View, s *reconstruct.Surface) Output {
	world := v.World(s.Position)
	uv, ok := p.Project(world)
	if !ok {
		return Output{}
	}
	vec := PositionalVectors(v.Point(p.position), s)
	if vec.Distance >= p.Radius {
		return Output{}
	}

	k := p.Intensity * Attenuation(vec.Distance, p.Radius, p.Falloff)
	if p.Shadow != nil {
		k *= p.Shadow.Factor(world)
	}
	c := p.Color
	if p.Image != nil {
		i := p.Image.Sample(uv)
		c = mgl32.Vec3{c[0] * i[0], c[1] * i[1], c[2] * i[2]}
	}
	return shade(vec, s, p.Specular, c, k)
}

// Ambient is a constant light, optionally darkened by an ambient occlusion
// texture sampled at the fragment's screen position.
type Ambient struct {
	Color     mgl32.Vec3
	Intensity float32
	// Occlusion holds 1 for open and 0 for occluded pixels in its first
	// channel. It must cover the screen.
	Occlusion *texture.Texture
}

// NewAmbient returns an ambient light.
func NewAmbient(color mgl32.Vec3, intensity float32) *Ambient {
	return &Ambient{Color: color, Intensity: clampIntensity(intensity)}
}

// Mode implements Light. Ambient light reads no surface attributes.
func (a *Ambient) Mode() reconstruct.Mode { return reconstruct.ModeDepth }

// Evaluate implements Light.
func (a *Ambient) Evaluate(_ *View, s *reconstruct.Surface) Output {
	k := a.Intensity
	if a.Occlusion != nil {
		k *= a.Occlusion.SampleR(s.UV)
	}
	return Output{Diffuse: a.Color.Mul(k)}
}
