package config

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // texture decoders
	_ "image/png"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/filter"
	"github.com/gogpu/deferred/geometry"
	"github.com/gogpu/deferred/internal/cache"
	"github.com/gogpu/deferred/light"
	"github.com/gogpu/deferred/reconstruct"
	"github.com/gogpu/deferred/shadow"
	"github.com/gogpu/deferred/texture"
)

var shapes = map[string]func(o Object) *geometry.Mesh{
	"plane":  func(o Object) *geometry.Mesh { return geometry.Plane(o.Size) },
	"quad":   func(o Object) *geometry.Mesh { return geometry.Quad(o.Size, o.Size) },
	"cube":   func(o Object) *geometry.Mesh { return geometry.Cube(o.Size) },
	"sphere": func(o Object) *geometry.Mesh { return geometry.Sphere(o.Size/2, o.Stacks, o.Slices) },
}

var lightKinds = map[string]bool{
	"directional": true,
	"spherical":   true,
	"projective":  true,
	"ambient":     true,
}

var filterKinds = map[string]bool{
	"fxaa":      true,
	"fog":       true,
	"emission":  true,
	"bilateral": true,
	"box":       true,
}

func parseOutput(s string) (reconstruct.OutputTarget, error) {
	for _, t := range []reconstruct.OutputTarget{reconstruct.TargetLightBuffer, reconstruct.TargetImageBuffer} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOutput, s)
}

func parseSpecular(s string) (light.SpecularModel, error) {
	for _, m := range []light.SpecularModel{light.SpecularNone, light.SpecularPhong, light.SpecularBlinnPhong} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSpecular, s)
}

func parseProgression(s string) (filter.Progression, error) {
	for _, p := range []filter.Progression{filter.ProgressionLinear, filter.ProgressionQuadratic, filter.ProgressionQuadraticInverse} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProgression, s)
}

// RenderSize returns the size frames are rendered at, including
// supersampling.
func (c *Config) RenderSize() (width, height int) {
	return c.Output.Width * c.Output.Supersample, c.Output.Height * c.Output.Supersample
}

// Options returns the renderer options the scene asks for.
func (c *Config) Options() ([]deferred.Option, error) {
	target, err := parseOutput(c.Output.Target)
	if err != nil {
		return nil, err
	}
	opts := []deferred.Option{
		deferred.WithWorkers(c.Output.Workers),
		deferred.WithOutput(target),
		deferred.WithClearColor(c.Output.ClearColor),
		deferred.WithShadowResolution(c.Shadow.Resolution, c.Shadow.Blur),
	}
	if a := c.SSAO; a.Enabled {
		ssao := filter.NewSSAO(a.Samples, a.Radius, a.Seed)
		ssao.Power = a.Power
		blur := filter.BilateralBlur{Radius: a.BlurRange, Sharpness: a.Sharpness, Passes: 1}
		opts = append(opts, deferred.WithSSAO(ssao, blur))
	}
	filters, err := c.filters()
	if err != nil {
		return nil, err
	}
	return append(opts, deferred.WithFilters(filters...)), nil
}

func (c *Config) filters() ([]filter.Filter, error) {
	out := make([]filter.Filter, 0, len(c.Filters))
	for i, f := range c.Filters {
		switch f.Kind {
		case "fxaa":
			out = append(out, filter.DefaultFXAA())
		case "fog":
			p, err := parseProgression(f.Progression)
			if err != nil {
				return nil, fmt.Errorf("filters[%d]: %w", i, err)
			}
			out = append(out, filter.Fog{Color: f.Color, Near: f.Near, Far: f.Far, Progression: p})
		case "emission":
			out = append(out, filter.Emission{Sigma: f.Sigma, Intensity: f.Intensity})
		case "bilateral":
			out = append(out, filter.BilateralBlur{Radius: f.Radius, Sharpness: f.Sharpness, Passes: f.Passes})
		case "box":
			out = append(out, filter.BoxBlur{Radius: f.Radius, Passes: f.Passes})
		default:
			return nil, fmt.Errorf("%w: filters[%d]: %q", ErrUnknownFilter, i, f.Kind)
		}
	}
	return out, nil
}

// Frame builds the scene. Textures are decoded once and shared by later
// calls.
func (c *Config) Frame() (*deferred.Frame, error) {
	w, h := c.RenderSize()
	cam := c.Camera
	f := &deferred.Frame{
		Camera: deferred.NewCamera(cam.Eye, cam.Target, cam.Up, cam.FOV, float32(w)/float32(h), cam.Near, cam.Far),
	}
	if c.textures == nil {
		c.textures = cache.New[textureKey, *texture.Texture](textureCacheSize)
	}
	tl := &textureLoader{c: c}

	for i, obj := range c.Objects {
		inst, err := obj.instance(tl)
		if err != nil {
			return nil, fmt.Errorf("config: objects[%d]: %w", i, err)
		}
		f.Instances = append(f.Instances, inst)
	}

	for i, l := range c.Lights {
		built, err := c.light(l, tl)
		if err != nil {
			return nil, fmt.Errorf("config: lights[%d]: %w", i, err)
		}
		if a, ok := built.(*light.Ambient); ok && f.Ambient == nil {
			f.Ambient = a
			continue
		}
		f.Lights = append(f.Lights, built)
	}
	deferred.Logger().Debug("scene built",
		"instances", len(f.Instances),
		"lights", len(f.Lights),
		"textures", c.textures.Len())
	return f, nil
}

// Model returns the object's model matrix.
func (o Object) Model() mgl32.Mat4 {
	r := o.Rotation
	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(r[2])).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(r[1]))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(r[0])))
	return mgl32.Translate3D(o.Position[0], o.Position[1], o.Position[2]).
		Mul4(rot).
		Mul4(mgl32.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2]))
}

func (o Object) instance(tl *textureLoader) (geometry.Instance, error) {
	mesh, ok := shapes[o.Shape]
	if !ok {
		return geometry.Instance{}, fmt.Errorf("%w: %q", ErrUnknownShape, o.Shape)
	}
	m, err := o.Material.build(tl)
	if err != nil {
		return geometry.Instance{}, err
	}
	return geometry.Instance{Mesh: mesh(o), Model: o.Model(), Material: m}, nil
}

func (m Material) build(tl *textureLoader) (*geometry.Material, error) {
	out := geometry.DefaultMaterial()
	if m.Albedo != nil {
		out.Albedo = *m.Albedo
	}
	if m.Specular != nil {
		out.Specular = *m.Specular
	}
	if m.SpecularExponent != 0 {
		out.SpecularExponent = m.SpecularExponent
	}
	out.AlbedoMix = m.AlbedoMix
	out.Emission = m.Emission
	out.AlphaDiscard = m.AlphaDiscard
	out.Stipple = m.Stipple
	out.DoubleSided = m.DoubleSided

	var err error
	if out.AlbedoTexture, err = tl.load(m.AlbedoTexture, texture.SpaceSRGB); err != nil {
		return nil, err
	}
	if out.EmissionTexture, err = tl.load(m.EmissionTexture, texture.SpaceLinear); err != nil {
		return nil, err
	}
	if out.SpecularTexture, err = tl.load(m.SpecularTexture, texture.SpaceSRGB); err != nil {
		return nil, err
	}
	if out.NormalTexture, err = tl.load(m.NormalTexture, texture.SpaceLinear); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Config) light(l Light, tl *textureLoader) (light.Light, error) {
	spec, err := parseSpecular(l.Specular)
	if err != nil {
		return nil, err
	}
	switch l.Kind {
	case "directional":
		d := light.NewDirectional(l.Direction, l.Color, l.Intensity)
		d.Specular = spec
		return d, nil
	case "spherical":
		s := light.NewSpherical(l.Position, l.Color, l.Intensity, l.Radius, l.Falloff)
		s.Specular = spec
		return s, nil
	case "ambient":
		return light.NewAmbient(l.Color, l.Intensity), nil
	case "projective":
		view := mgl32.LookAtV(l.Position, l.Target, l.Up)
		proj := mgl32.Perspective(mgl32.DegToRad(l.FOV), 1, l.Near, l.Radius)
		p := light.NewProjective(view, proj, l.Color, l.Intensity, l.Radius)
		p.Falloff = max(l.Falloff, light.MinimumFalloff)
		p.Specular = spec
		if p.Image, err = tl.load(l.Image, texture.SpaceSRGB); err != nil {
			return nil, err
		}
		if p.Image == nil {
			deferred.Logger().Warn("projective light has no image; projecting white")
		}
		if l.Shadow {
			if p.Shadow, err = shadow.NewMap(c.Shadow.Resolution, view, proj, c.shadowParameters(l.Radius)); err != nil {
				return nil, err
			}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLightKind, l.Kind)
	}
}

func (c *Config) shadowParameters(far float32) shadow.Parameters {
	p := shadow.DefaultParameters(far)
	s := c.Shadow
	if s.FactorMinimum != nil {
		p.FactorMinimum = *s.FactorMinimum
	}
	if s.VarianceMinimum != nil {
		p.VarianceMinimum = *s.VarianceMinimum
	}
	if s.BleedReduction != nil {
		p.BleedReduction = *s.BleedReduction
	}
	return p
}

// errNoFS is returned for texture paths in scenes decoded without a file
// system.
var errNoFS = errors.New("config: textures need a scene loaded from a file")

type textureKey struct {
	name  string
	space texture.ColorSpace
}

// textureCacheSize bounds the decoded textures a Config keeps alive.
const textureCacheSize = 64

type textureLoader struct {
	c *Config
}

// load returns the texture at name, or nil for an empty name.
func (tl *textureLoader) load(name string, space texture.ColorSpace) (*texture.Texture, error) {
	if name == "" {
		return nil, nil
	}
	if tl.c.fsys == nil {
		return nil, fmt.Errorf("%w: %s", errNoFS, name)
	}
	return tl.c.textures.GetOrLoad(textureKey{name, space}, func() (*texture.Texture, error) {
		f, err := tl.c.fsys.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("config: texture %s: %w", name, err)
		}
		t, err := texture.FromImage(img, space)
		if err != nil {
			return nil, fmt.Errorf("config: texture %s: %w", name, err)
		}
		t.Filter = texture.FilterBilinear
		t.Wrap = texture.WrapRepeat
		return t, nil
	})
}
