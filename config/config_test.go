package config

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/light"
	"github.com/gogpu/deferred/shadow"
)

func decode(t *testing.T, src string) *Config {
	t.Helper()
	c, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return c
}

func TestDecodeDefaults(t *testing.T) {
	c := decode(t, `
[[objects]]
shape = "cube"

[[lights]]
kind = "spherical"
`)
	if c.Output.Width != DefaultWidth || c.Output.Height != DefaultHeight || c.Output.Supersample != 1 {
		t.Errorf("output = %+v, want defaults", c.Output)
	}
	if c.Output.Target != "light-buffer" {
		t.Errorf("target = %q, want light-buffer", c.Output.Target)
	}
	if c.Camera.Eye != (mgl32.Vec3{0, 0, 5}) || c.Camera.Up != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("camera eye, up = %v, %v", c.Camera.Eye, c.Camera.Up)
	}
	if c.Camera.Near != DefaultNear || c.Camera.Far != DefaultFar || c.Camera.FOV != DefaultFOV {
		t.Errorf("camera = %+v, want default near, far, fov", c.Camera)
	}
	if o := c.Objects[0]; o.Size != 1 || o.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("object size, scale = %v, %v, want 1, (1,1,1)", o.Size, o.Scale)
	}
	l := c.Lights[0]
	if l.Color != (mgl32.Vec3{1, 1, 1}) || l.Intensity != 1 || l.Radius != 10 || l.Specular != "blinn-phong" {
		t.Errorf("light = %+v, want white, intensity 1, radius 10, blinn-phong", l)
	}
	if c.Shadow.Resolution != DefaultShadowSize || c.SSAO.Samples != DefaultSSAOSamples {
		t.Errorf("shadow, ssao = %+v, %+v", c.Shadow, c.SSAO)
	}
}

func TestDecodeUnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("[camera]\nzoom = 2\n"))
	var strict *toml.StrictMissingError
	if !errors.As(err, &strict) {
		t.Errorf("Decode() error = %v, want StrictMissingError", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"shape", "[[objects]]\nshape = \"torus\"", ErrUnknownShape},
		{"light kind", "[[lights]]\nkind = \"area\"", ErrUnknownLightKind},
		{"filter", "[[filters]]\nkind = \"bloom\"", ErrUnknownFilter},
		{"output", "[output]\ntarget = \"screen\"", ErrUnknownOutput},
		{"specular", "[[lights]]\nkind = \"directional\"\nspecular = \"ward\"", ErrUnknownSpecular},
		{"progression", "[[filters]]\nkind = \"fog\"\nprogression = \"cubic\"", ErrUnknownProgression},
		{"supersample", "[output]\nsupersample = 9", ErrInvalid},
		{"negative size", "[output]\nwidth = -4", ErrInvalid},
		{"far before near", "[camera]\nnear = 5\nfar = 1", ErrInvalid},
		{"fov", "[camera]\nfov = 180", ErrInvalid},
		{"object size", "[[objects]]\nshape = \"cube\"\nsize = -1", ErrInvalid},
		{"intensity", "[[lights]]\nkind = \"ambient\"\nintensity = -1", ErrInvalid},
		{"projective target", "[[lights]]\nkind = \"projective\"\nposition = [1, 1, 1]\ntarget = [1, 1, 1]", ErrInvalid},
		{"factor minimum", "[shadow]\nfactor_minimum = 1.5", ErrInvalid},
		{"variance minimum", "[shadow]\nvariance_minimum = -0.1", ErrInvalid},
		{"bleed reduction", "[shadow]\nbleed_reduction = -1", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.src)); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestObjectModel(t *testing.T) {
	o := Object{Position: mgl32.Vec3{1, 2, 3}, Rotation: mgl32.Vec3{0, 90, 0}, Scale: mgl32.Vec3{2, 2, 2}}
	got := o.Model().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	want := mgl32.Vec4{1, 2, 1, 1}
	if !approxVec4(got, want, 1e-5) {
		t.Errorf("Model() * (1,0,0) = %v, want %v", got, want)
	}
}

func TestFrame(t *testing.T) {
	c, err := Load("testdata/scene.toml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if w, h := c.RenderSize(); w != 128 || h != 96 {
		t.Errorf("RenderSize() = %d, %d, want 128, 96", w, h)
	}
	f, err := c.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if len(f.Instances) != 3 {
		t.Errorf("instances = %d, want 3", len(f.Instances))
	}
	if f.Ambient == nil {
		t.Fatal("Ambient is nil")
	}
	if len(f.Lights) != 3 {
		t.Fatalf("lights = %d, want 3", len(f.Lights))
	}
	if d, ok := f.Lights[0].(*light.Directional); !ok || d.Specular != light.SpecularPhong {
		t.Errorf("lights[0] = %#v, want a Phong directional light", f.Lights[0])
	}
	p, ok := f.Lights[1].(*light.Projective)
	if !ok {
		t.Fatalf("lights[1] is %T, want *light.Projective", f.Lights[1])
	}
	if p.Shadow == nil || p.Shadow.Size() != 256 {
		t.Errorf("projective shadow = %v, want a 256 texel map", p.Shadow)
	}
	if m := f.Instances[0].Material; m.Specular != (mgl32.Vec3{}) || m.SpecularExponent != 32 {
		t.Errorf("floor specular = %v^%v, want none at the default exponent", m.Specular, m.SpecularExponent)
	}
}

func TestShadowParameters(t *testing.T) {
	const spot = "[[lights]]\nkind = \"projective\"\nposition = [0, 4, 3]\ntarget = [0, 0, 0]\nradius = 10\nshadow = true\n"
	defaults := shadow.DefaultParameters(10)
	tests := []struct {
		name string
		src  string
		want shadow.Parameters
	}{
		{"absent keeps defaults", "", defaults},
		{"zero is kept", "[shadow]\nfactor_minimum = 0\nvariance_minimum = 0\nbleed_reduction = 0\n", shadow.Parameters{
			DepthCoefficient: defaults.DepthCoefficient,
		}},
		{"partial", "[shadow]\nfactor_minimum = 0.5\n", shadow.Parameters{
			FactorMinimum:    0.5,
			VarianceMinimum:  defaults.VarianceMinimum,
			BleedReduction:   defaults.BleedReduction,
			DepthCoefficient: defaults.DepthCoefficient,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := decode(t, tt.src+spot).Frame()
			if err != nil {
				t.Fatalf("Frame() error = %v", err)
			}
			p, ok := f.Lights[0].(*light.Projective)
			if !ok || p.Shadow == nil {
				t.Fatalf("lights[0] = %#v, want a shadowing projective light", f.Lights[0])
			}
			if got := p.Shadow.Parameters; got != tt.want {
				t.Errorf("Parameters = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRenderScene(t *testing.T) {
	c, err := Load("testdata/scene.toml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	opts, err := c.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	f, err := c.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	w, h := c.RenderSize()
	r, err := deferred.New(w, h, opts...)
	if err != nil {
		t.Fatalf("deferred.New() error = %v", err)
	}
	defer r.Close()
	res, err := r.Render(context.Background(), f)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Occlusion == nil {
		t.Error("scene enables SSAO but the result has no occlusion")
	}
	img, err := res.Scaled(c.Output.Width, c.Output.Height)
	if err != nil {
		t.Fatalf("Scaled() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("Scaled() bounds = %v, want 64x48", b)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadFSTextures(t *testing.T) {
	fsys := fstest.MapFS{
		"scenes/scene.toml": {Data: []byte(`
[[objects]]
shape = "quad"
[objects.material]
albedo_texture = "brick.png"

[[objects]]
shape = "cube"
[objects.material]
albedo_texture = "brick.png"
`)},
		"scenes/brick.png": {Data: pngBytes(t)},
	}
	c, err := LoadFS(fsys, "scenes/scene.toml")
	if err != nil {
		t.Fatalf("LoadFS() error = %v", err)
	}
	if c.Objects[0].Material.AlbedoMix != 1 {
		t.Errorf("albedo mix = %v, want 1 with a texture", c.Objects[0].Material.AlbedoMix)
	}
	f, err := c.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	a, b := f.Instances[0].Material.AlbedoTexture, f.Instances[1].Material.AlbedoTexture
	if a == nil || a.Width() != 2 {
		t.Fatalf("albedo texture = %v, want 2x2", a)
	}
	if a != b {
		t.Error("shared texture loaded twice")
	}
	if got := a.At(0, 0); !approxVec4(got, mgl32.Vec4{1, 0, 0, 1}, 1e-6) {
		t.Errorf("texel = %v, want red", got)
	}

	again, err := c.Frame()
	if err != nil {
		t.Fatalf("second Frame() error = %v", err)
	}
	if again.Instances[0].Material.AlbedoTexture != a {
		t.Error("second Frame() decoded the texture again")
	}
}

func TestTextureWithoutFS(t *testing.T) {
	c := decode(t, "[[objects]]\nshape = \"cube\"\n[objects.material]\nnormal_texture = \"n.png\"\n")
	if _, err := c.Frame(); !errors.Is(err, errNoFS) {
		t.Errorf("Frame() error = %v, want errNoFS", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("testdata/missing.toml"); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
