// Package geometry implements the geometry pass: it rasterizes mesh
// instances and writes their surfaces into a G-buffer.
//
// Each fragment stores log-encoded depth computed from the interpolated
// positive eye-space Z, the spheremap-compressed eye-space normal (after
// optional normal mapping) and the material's albedo, emission and specular
// terms. Alpha-tested and stippled materials discard fragments before the
// depth test.
package geometry

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/gbuffer"
	"github.com/gogpu/deferred/normal"
	"github.com/gogpu/deferred/texture"
)

// Instance places a mesh in the world with a material.
type Instance struct {
	Mesh     *Mesh
	Model    mgl32.Mat4
	Material *Material
}

// Pass fills a G-buffer from instances.
type Pass struct {
	Rasterizer *Rasterizer
	// DepthCoefficient is passed to depth.EncodePartial.
	DepthCoefficient float32
	// Noise is the stipple noise texture, tiled across the screen one texel
	// per pixel.
	Noise *texture.Texture
}

// NewPass creates a geometry pass with a 4x4 ordered-dither stipple
// pattern.
func NewPass(r *Rasterizer, depthCoefficient float32) *Pass {
	return &Pass{
		Rasterizer:       r,
		DepthCoefficient: depthCoefficient,
		Noise:            BayerNoise(),
	}
}

// Draw rasterizes instances into buf. The buffer is not cleared.
func (p *Pass) Draw(ctx context.Context, buf *gbuffer.Buffer, view, projection mgl32.Mat4, instances []Instance) (Stats, error) {
	draws := make([]Draw, len(instances))
	materials := make([]*Material, len(instances))
	for i, inst := range instances {
		m := inst.Material
		if m == nil {
			m = DefaultMaterial()
		}
		materials[i] = m
		draws[i] = Draw{Mesh: inst.Mesh, Model: inst.Model, CullBackFaces: !m.DoubleSided}
	}

	return p.Rasterizer.Rasterize(ctx, view, projection, draws, func(d int, f *Fragment) {
		m := materials[d]
		s := m.Evaluate(f.UV)
		if m.Discards(s, p.noise(f.X, f.Y)) {
			return
		}
		buf.Write(f.X, f.Y, gbuffer.Record{
			Albedo:   s.Albedo,
			Emission: s.Emission,
			Normal:   surfaceNormal(f, s),
			Specular: s.Specular,
			Exponent: s.Exponent,
			Depth:    depth.EncodePartial(f.PositiveEyeZ, p.DepthCoefficient),
		})
	})
}

func (p *Pass) noise(x, y int) float32 {
	if p.Noise == nil {
		return 1
	}
	w, h := p.Noise.Width(), p.Noise.Height()
	return p.Noise.R(((x%w)+w)%w, ((y%h)+h)%h)
}

func surfaceNormal(f *Fragment, s Sample) mgl32.Vec3 {
	n := f.Normal
	if !f.FrontFacing {
		n = n.Mul(-1)
	}
	if s.HasNormal {
		return normal.Perturb(f.Tangent.Normalize(), f.Bitangent.Normalize(), n.Normalize(), s.Normal)
	}
	l := n.Len()
	if l == 0 {
		return normal.Default
	}
	return n.Mul(1 / l)
}

var bayer4 = [16]float32{
	0, 8, 2, 10,
	12, 4, 14, 6,
	3, 11, 1, 9,
	15, 7, 13, 5,
}

// BayerNoise returns a 4x4 ordered-dither texture with values spread evenly
// over (0, 1).
func BayerNoise() *texture.Texture {
	data := make([]float32, len(bayer4))
	for i, v := range bayer4 {
		data[i] = (v + 0.5) / 16
	}
	return mustTexture(texture.FromData(4, 4, gputypes.TextureFormatR32Float, data))
}

// mustTexture panics if err is non-nil. It wraps construction of built-in
// textures whose data is fixed at compile time.
func mustTexture(t *texture.Texture, err error) *texture.Texture {
	if err != nil {
		panic(fmt.Sprintf("geometry: built-in texture: %v", err))
	}
	return t
}
