package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Defaults fill fields left at their zero value. A zero value therefore
// cannot be requested for fields that have a default.
const (
	DefaultWidth       = 640
	DefaultHeight      = 480
	DefaultFOV         = 60
	DefaultNear        = 0.1
	DefaultFar         = 100
	DefaultShadowSize  = 512
	DefaultSSAOSamples = 16
)

func (c *Config) applyDefaults() {
	o := &c.Output
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Supersample == 0 {
		o.Supersample = 1
	}
	if o.Target == "" {
		o.Target = "light-buffer"
	}
	if o.ClearColor == (mgl32.Vec4{}) {
		o.ClearColor = mgl32.Vec4{0, 0, 0, 1}
	}

	cam := &c.Camera
	if cam.Eye == cam.Target {
		cam.Eye = cam.Target.Add(mgl32.Vec3{0, 0, 5})
	}
	cam.Up = orDefault(cam.Up, mgl32.Vec3{0, 1, 0})
	if cam.FOV == 0 {
		cam.FOV = DefaultFOV
	}
	if cam.Near == 0 {
		cam.Near = DefaultNear
	}
	if cam.Far == 0 {
		cam.Far = DefaultFar
	}

	for i := range c.Objects {
		obj := &c.Objects[i]
		if obj.Size == 0 {
			obj.Size = 1
		}
		if obj.Stacks == 0 {
			obj.Stacks = 16
		}
		if obj.Slices == 0 {
			obj.Slices = 32
		}
		obj.Scale = orDefault(obj.Scale, mgl32.Vec3{1, 1, 1})
		m := &obj.Material
		if m.AlbedoMix == 0 && m.AlbedoTexture != "" {
			m.AlbedoMix = 1
		}
	}

	for i := range c.Lights {
		l := &c.Lights[i]
		l.Color = orDefault(l.Color, mgl32.Vec3{1, 1, 1})
		if l.Intensity == 0 {
			l.Intensity = 1
		}
		if l.Specular == "" {
			l.Specular = "blinn-phong"
		}
		l.Direction = orDefault(l.Direction, mgl32.Vec3{0, -1, 0})
		l.Up = orDefault(l.Up, mgl32.Vec3{0, 1, 0})
		if l.Radius == 0 {
			l.Radius = 10
		}
		if l.Falloff == 0 {
			l.Falloff = 1
		}
		if l.FOV == 0 {
			l.FOV = 45
		}
		if l.Near == 0 {
			l.Near = DefaultNear
		}
	}

	s := &c.Shadow
	if s.Resolution == 0 {
		s.Resolution = DefaultShadowSize
	}
	if s.Blur == 0 {
		s.Blur = 1
	}

	a := &c.SSAO
	if a.Samples == 0 {
		a.Samples = DefaultSSAOSamples
	}
	if a.Radius == 0 {
		a.Radius = 0.5
	}
	if a.Power == 0 {
		a.Power = 1
	}
	if a.BlurRange == 0 {
		a.BlurRange = 4
	}
	if a.Sharpness == 0 {
		a.Sharpness = 16
	}

	for i := range c.Filters {
		f := &c.Filters[i]
		if f.Progression == "" {
			f.Progression = "linear"
		}
		if f.Far == 0 {
			f.Far = cam.Far
		}
		if f.Sigma == 0 {
			f.Sigma = 4
		}
		if f.Intensity == 0 {
			f.Intensity = 1
		}
		if f.Radius == 0 {
			f.Radius = 4
		}
		if f.Sharpness == 0 {
			f.Sharpness = 16
		}
		if f.Passes == 0 {
			f.Passes = 1
		}
	}
}

func orDefault(v, def mgl32.Vec3) mgl32.Vec3 {
	if v == (mgl32.Vec3{}) {
		return def
	}
	return v
}

// Validate reports the first invalid value in c.
func (c *Config) Validate() error {
	o := c.Output
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalid, o.Width, o.Height)
	}
	if o.Supersample < 1 || o.Supersample > 8 {
		return fmt.Errorf("%w: supersample %d not in [1, 8]", ErrInvalid, o.Supersample)
	}
	if _, err := parseOutput(o.Target); err != nil {
		return err
	}

	cam := c.Camera
	if !(cam.Near > 0) || !(cam.Far > cam.Near) {
		return fmt.Errorf("%w: camera near %v, far %v", ErrInvalid, cam.Near, cam.Far)
	}
	if !(cam.FOV > 0 && cam.FOV < 180) {
		return fmt.Errorf("%w: camera fov %v", ErrInvalid, cam.FOV)
	}

	for i, obj := range c.Objects {
		if _, ok := shapes[obj.Shape]; !ok {
			return fmt.Errorf("%w: objects[%d]: %q", ErrUnknownShape, i, obj.Shape)
		}
		if !(obj.Size > 0) {
			return fmt.Errorf("%w: objects[%d]: size %v", ErrInvalid, i, obj.Size)
		}
	}

	for i, l := range c.Lights {
		if _, ok := lightKinds[l.Kind]; !ok {
			return fmt.Errorf("%w: lights[%d]: %q", ErrUnknownLightKind, i, l.Kind)
		}
		if _, err := parseSpecular(l.Specular); err != nil {
			return fmt.Errorf("lights[%d]: %w", i, err)
		}
		if l.Intensity < 0 {
			return fmt.Errorf("%w: lights[%d]: intensity %v", ErrInvalid, i, l.Intensity)
		}
		if l.Kind == "projective" {
			if !(l.FOV > 0 && l.FOV < 180) {
				return fmt.Errorf("%w: lights[%d]: fov %v", ErrInvalid, i, l.FOV)
			}
			if l.Position == l.Target {
				return fmt.Errorf("%w: lights[%d]: position equals target", ErrInvalid, i)
			}
		}
	}

	if c.Shadow.Resolution < 0 {
		return fmt.Errorf("%w: shadow resolution %d", ErrInvalid, c.Shadow.Resolution)
	}
	if v := c.Shadow.FactorMinimum; v != nil && !(*v >= 0 && *v <= 1) {
		return fmt.Errorf("%w: shadow factor_minimum %v", ErrInvalid, *v)
	}
	if v := c.Shadow.VarianceMinimum; v != nil && !(*v >= 0) {
		return fmt.Errorf("%w: shadow variance_minimum %v", ErrInvalid, *v)
	}
	if v := c.Shadow.BleedReduction; v != nil && !(*v >= 0) {
		return fmt.Errorf("%w: shadow bleed_reduction %v", ErrInvalid, *v)
	}

	for i, f := range c.Filters {
		if _, ok := filterKinds[f.Kind]; !ok {
			return fmt.Errorf("%w: filters[%d]: %q", ErrUnknownFilter, i, f.Kind)
		}
		if _, err := parseProgression(f.Progression); err != nil {
			return fmt.Errorf("filters[%d]: %w", i, err)
		}
	}
	return nil
}
