package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is an object-space mesh vertex.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
	UV        mgl32.Vec2
}

// Mesh is an indexed triangle list. Front faces wind counter-clockwise.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Triangles returns the number of triangles in the mesh.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Bounds returns the object-space bounding box.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := range 3 {
			lo[i] = math32.Min(lo[i], v.Position[i])
			hi[i] = math32.Max(hi[i], v.Position[i])
		}
	}
	return lo, hi
}

// Plane returns a size x size square in the XZ plane facing +Y.
func Plane(size float32) *Mesh {
	h := size / 2
	n := mgl32.Vec3{0, 1, 0}
	t := mgl32.Vec3{1, 0, 0}
	b := mgl32.Vec3{0, 0, -1}
	return &Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-h, 0, h}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{h, 0, h}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{h, 0, -h}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{-h, 0, -h}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Quad returns a width x height rectangle in the XY plane facing +Z.
func Quad(width, height float32) *Mesh {
	w, h := width/2, height/2
	n := mgl32.Vec3{0, 0, 1}
	t := mgl32.Vec3{1, 0, 0}
	b := mgl32.Vec3{0, 1, 0}
	return &Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-w, -h, 0}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{w, -h, 0}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{w, h, 0}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{-w, h, 0}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Cube returns an axis-aligned cube with the given edge length, centered
// on the origin, with one UV square per face.
func Cube(size float32) *Mesh {
	h := size / 2
	faces := []struct {
		n, t, b mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	m := &Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Vertices)) //nolint:gosec // small mesh
		corners := [4]mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		for _, c := range corners {
			p := f.n.Add(f.t.Mul(c[0])).Add(f.b.Mul(c[1])).Mul(h)
			m.Vertices = append(m.Vertices, Vertex{
				Position:  p,
				Normal:    f.n,
				Tangent:   f.t,
				Bitangent: f.b,
				UV:        mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// Sphere returns a UV sphere. stacks and slices are clamped to at least 2
// and 3.
func Sphere(radius float32, stacks, slices int) *Mesh {
	stacks = max(stacks, 2)
	slices = max(slices, 3)
	m := &Mesh{}
	for i := 0; i <= stacks; i++ {
		v := float32(i) / float32(stacks)
		phi := v * math32.Pi
		for j := 0; j <= slices; j++ {
			u := float32(j) / float32(slices)
			theta := u * 2 * math32.Pi
			sp, cp := math32.Sincos(phi)
			st, ct := math32.Sincos(theta)
			n := mgl32.Vec3{sp * ct, cp, -sp * st}
			t := mgl32.Vec3{-st, 0, -ct}
			m.Vertices = append(m.Vertices, Vertex{
				Position:  n.Mul(radius),
				Normal:    n,
				Tangent:   t,
				Bitangent: n.Cross(t),
				UV:        mgl32.Vec2{u, v},
			})
		}
	}
	row := uint32(slices + 1) //nolint:gosec // small mesh
	for i := range uint32(stacks) {
		for j := range uint32(slices) {
			a := i*row + j
			b := a + row
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return m
}
