package shadow

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/filter"
	"github.com/gogpu/deferred/geometry"
	"github.com/gogpu/deferred/internal/parallel"
	"github.com/gogpu/deferred/texture"
)

// ErrInvalidSize is returned for a non-positive shadow map size.
var ErrInvalidSize = errors.New("shadow: invalid map size")

// MomentsFormat is the storage format of the moments texture.
const MomentsFormat = gputypes.TextureFormatRG32Float

// Map is a variance shadow map rendered from a light's point of view.
type Map struct {
	// Moments holds (d, d²) of the encoded light-space depth.
	Moments *texture.Texture
	// View and Projection transform world space into the light's eye and
	// clip space.
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Parameters Parameters

	depth *texture.Texture
}

// NewMap allocates a size x size map. Moments are cleared to the far
// plane, so an unrendered map shadows nothing.
func NewMap(size int, view, projection mgl32.Mat4, params Parameters) (*Map, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	moments, err := texture.New(size, size, MomentsFormat)
	if err != nil {
		return nil, err
	}
	moments.Filter = texture.FilterBilinear
	d, err := texture.New(size, size, gputypes.TextureFormatDepth32Float)
	if err != nil {
		return nil, err
	}
	m := &Map{Moments: moments, View: view, Projection: projection, Parameters: params, depth: d}
	m.Clear()
	return m, nil
}

// Size returns the side of the map in texels.
func (m *Map) Size() int { return m.Moments.Width() }

// Clear resets the map to unoccluded.
func (m *Map) Clear() {
	m.Moments.Fill(Moments(1).Vec4(0, 0))
	m.depth.Fill(mgl32.Vec4{1})
}

// Descriptor returns the GPU texture descriptor for the moments texture.
func (m *Map) Descriptor() gputypes.TextureDescriptor {
	size := uint32(m.Size()) //nolint:gosec // positive by construction
	return gputypes.TextureDescriptor{
		Label:         "shadow-moments",
		Size:          gputypes.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        MomentsFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	}
}

// Render rasterizes instances from the light and stores the moments of the
// nearest surface per texel. Materials are honored for culling and alpha
// discard; stippling is ignored.
func (m *Map) Render(ctx context.Context, pool *parallel.WorkerPool, instances []geometry.Instance) (geometry.Stats, error) {
	m.Clear()
	r := geometry.NewRasterizer(m.Size(), m.Size(), pool)

	draws := make([]geometry.Draw, len(instances))
	materials := make([]*geometry.Material, len(instances))
	for i, inst := range instances {
		mat := inst.Material
		if mat == nil {
			mat = geometry.DefaultMaterial()
		}
		materials[i] = mat
		draws[i] = geometry.Draw{Mesh: inst.Mesh, Model: inst.Model, CullBackFaces: !mat.DoubleSided}
	}

	c := m.Parameters.DepthCoefficient
	return r.Rasterize(ctx, m.View, m.Projection, draws, func(i int, f *geometry.Fragment) {
		mat := materials[i]
		if mat.AlphaDiscard > 0 && mat.Evaluate(f.UV).Alpha < mat.AlphaDiscard {
			return
		}
		d := depth.EncodePartial(f.PositiveEyeZ, c)
		if !(d < m.depth.R(f.X, f.Y)) {
			return
		}
		m.depth.SetR(f.X, f.Y, d)
		m.Moments.Set(f.X, f.Y, Moments(d).Vec4(0, 0))
	})
}

// Blur box-filters the moments, softening shadow edges.
func (m *Map) Blur(ctx context.Context, pool *parallel.WorkerPool, radius int) error {
	return filter.BoxBlur{Radius: radius, Passes: 1}.Blur(ctx, pool, m.Moments)
}

// Lookup returns the encoded light-space depth of a world-space point and
// its texture coordinates in the map. ok is false for points behind the
// light or outside its frustum.
func (m *Map) Lookup(world mgl32.Vec3) (d float32, uv mgl32.Vec2, ok bool) {
	eye := m.View.Mul4x1(world.Vec4(1))
	clip := m.Projection.Mul4x1(eye)
	if clip[3] <= 0 {
		return 0, uv, false
	}
	uv = mgl32.Vec2{clip[0]/clip[3]*0.5 + 0.5, clip[1]/clip[3]*0.5 + 0.5}
	if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
		return 0, uv, false
	}
	return depth.Encode(depth.EyeZ(eye[2]), m.Parameters.DepthCoefficient), uv, true
}

// Factor returns the shadow attenuation for a world-space point. Points
// the map does not cover are fully lit.
func (m *Map) Factor(world mgl32.Vec3) float32 {
	d, uv, ok := m.Lookup(world)
	if !ok {
		return 1
	}
	return Factor(m.Parameters, m.Moments.Sample(uv).Vec2(), d)
}
