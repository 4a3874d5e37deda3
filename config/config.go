// Package config reads scene descriptions from TOML files and turns them
// into renderer options and frames.
//
// A minimal scene:
//
//	[output]
//	width = 320
//	height = 240
//
//	[camera]
//	eye = [0, 2, 6]
//
//	[[objects]]
//	shape = "cube"
//
//	[[lights]]
//	kind = "directional"
//	direction = [-1, -2, -1]
//
// Texture paths are resolved relative to the scene file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/deferred/internal/cache"
	"github.com/gogpu/deferred/texture"
)

// Errors reported by Validate.
var (
	ErrUnknownLightKind   = errors.New("config: unknown light kind")
	ErrUnknownShape       = errors.New("config: unknown shape")
	ErrUnknownFilter      = errors.New("config: unknown filter")
	ErrUnknownOutput      = errors.New("config: unknown output target")
	ErrUnknownSpecular    = errors.New("config: unknown specular model")
	ErrUnknownProgression = errors.New("config: unknown fog progression")
	ErrInvalid            = errors.New("config: invalid value")
)

// Config is a complete scene description.
type Config struct {
	Output  Output   `toml:"output"`
	Camera  Camera   `toml:"camera"`
	Objects []Object `toml:"objects"`
	Lights  []Light  `toml:"lights"`
	Shadow  Shadow   `toml:"shadow"`
	SSAO    SSAO     `toml:"ssao"`
	Filters []Filter `toml:"filters"`

	// fsys resolves texture paths; nil disables texture loading.
	fsys     fs.FS
	textures *cache.Cache[textureKey, *texture.Texture]
}

// Output describes the rendered image.
type Output struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	// Supersample renders at this multiple of the size and scales down.
	Supersample int `toml:"supersample"`
	// Target is "light-buffer" or "image-buffer".
	Target     string     `toml:"target"`
	ClearColor mgl32.Vec4 `toml:"clear_color"`
	Workers    int        `toml:"workers"`
}

// Camera is a perspective camera. FOV is vertical, in degrees.
type Camera struct {
	Eye    mgl32.Vec3 `toml:"eye"`
	Target mgl32.Vec3 `toml:"target"`
	Up     mgl32.Vec3 `toml:"up"`
	FOV    float32    `toml:"fov"`
	Near   float32    `toml:"near"`
	Far    float32    `toml:"far"`
}

// Object is a mesh instance.
type Object struct {
	// Shape is one of "plane", "quad", "cube" or "sphere".
	Shape string `toml:"shape"`
	// Size is the edge length of planes, quads and cubes, and the
	// diameter of spheres.
	Size   float32 `toml:"size"`
	Stacks int     `toml:"stacks"`
	Slices int     `toml:"slices"`

	Position mgl32.Vec3 `toml:"position"`
	// Rotation holds Euler angles in degrees, applied X, then Y, then Z.
	Rotation mgl32.Vec3 `toml:"rotation"`
	Scale    mgl32.Vec3 `toml:"scale"`

	Material Material `toml:"material"`
}

// Material mirrors geometry.Material. Albedo and Specular default to the
// geometry package defaults when omitted.
type Material struct {
	Albedo           *mgl32.Vec4 `toml:"albedo"`
	AlbedoTexture    string      `toml:"albedo_texture"`
	AlbedoMix        float32     `toml:"albedo_mix"`
	Emission         float32     `toml:"emission"`
	EmissionTexture  string      `toml:"emission_texture"`
	Specular         *mgl32.Vec3 `toml:"specular"`
	SpecularExponent float32     `toml:"specular_exponent"`
	SpecularTexture  string      `toml:"specular_texture"`
	NormalTexture    string      `toml:"normal_texture"`
	AlphaDiscard     float32     `toml:"alpha_discard"`
	Stipple          float32     `toml:"stipple"`
	DoubleSided      bool        `toml:"double_sided"`
}

// Light is any light model; Kind selects which fields apply.
type Light struct {
	// Kind is one of "directional", "spherical", "projective" or "ambient".
	Kind      string     `toml:"kind"`
	Color     mgl32.Vec3 `toml:"color"`
	Intensity float32    `toml:"intensity"`
	// Specular is "blinn-phong" (default), "phong" or "none".
	Specular string `toml:"specular"`

	// Direction is used by directional lights.
	Direction mgl32.Vec3 `toml:"direction"`

	// Position, Radius and Falloff are used by spherical and projective
	// lights.
	Position mgl32.Vec3 `toml:"position"`
	Radius   float32    `toml:"radius"`
	Falloff  float32    `toml:"falloff"`

	// Target, Up, FOV and Near orient projective lights. Image is
	// projected along the frustum; Shadow attaches a shadow map.
	Target mgl32.Vec3 `toml:"target"`
	Up     mgl32.Vec3 `toml:"up"`
	FOV    float32    `toml:"fov"`
	Near   float32    `toml:"near"`
	Image  string     `toml:"image"`
	Shadow bool       `toml:"shadow"`
}

// Shadow configures shadow maps of projective lights. A zero resolution
// or blur and an absent lookup parameter select the shadow package
// defaults; a lookup parameter set to 0 is kept.
type Shadow struct {
	Resolution int `toml:"resolution"`
	// Blur is the box radius applied to rendered moments; negative
	// disables blurring.
	Blur            int      `toml:"blur"`
	FactorMinimum   *float32 `toml:"factor_minimum"`
	VarianceMinimum *float32 `toml:"variance_minimum"`
	BleedReduction  *float32 `toml:"bleed_reduction"`
}

// SSAO configures screen-space ambient occlusion.
type SSAO struct {
	Enabled   bool    `toml:"enabled"`
	Samples   int     `toml:"samples"`
	Radius    float32 `toml:"radius"`
	Power     float32 `toml:"power"`
	Seed      uint64  `toml:"seed"`
	BlurRange int     `toml:"blur_radius"`
	Sharpness float32 `toml:"blur_sharpness"`
}

// Filter is a post-process filter; Kind selects which fields apply.
type Filter struct {
	// Kind is one of "fxaa", "fog", "emission", "bilateral" or "box".
	Kind string `toml:"kind"`

	// Fog.
	Color       mgl32.Vec3 `toml:"color"`
	Near        float32    `toml:"near"`
	Far         float32    `toml:"far"`
	Progression string     `toml:"progression"`

	// Emission glow.
	Sigma     float64 `toml:"sigma"`
	Intensity float32 `toml:"intensity"`

	// Bilateral and box blur.
	Radius    int     `toml:"radius"`
	Sharpness float32 `toml:"sharpness"`
	Passes    int     `toml:"passes"`
}

// Load reads and validates the scene file at name.
func Load(name string) (*Config, error) {
	return LoadFS(os.DirFS(filepath.Dir(name)), filepath.Base(name))
}

// LoadFS reads and validates a scene file from fsys, for example an
// embedded file system. Textures are resolved relative to the file.
func LoadFS(fsys fs.FS, name string) (*Config, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if dir := path.Dir(name); dir != "." {
		if c.fsys, err = fs.Sub(fsys, dir); err != nil {
			return nil, err
		}
	} else {
		c.fsys = fsys
	}
	return c, nil
}

// Decode reads a scene from r. Unknown keys are errors. Defaults are
// applied before validation.
func Decode(r io.Reader) (*Config, error) {
	var c Config
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
