package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/gbuffer"
	"github.com/gogpu/deferred/internal/parallel"
)

const (
	testWidth  = 64
	testHeight = 48
)

func newTestRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	pool := parallel.NewWorkerPool(2)
	t.Cleanup(pool.Close)
	return NewRasterizer(testWidth, testHeight, pool)
}

func newTestBuffer(t *testing.T) *gbuffer.Buffer {
	t.Helper()
	b, err := gbuffer.New(testWidth, testHeight)
	if err != nil {
		t.Fatalf("gbuffer.New() error = %v", err)
	}
	return b
}

func testProjection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(60), float32(testWidth)/testHeight, 0.1, 100)
}

// quad returns two triangles covering the rectangle [x0, x1] x [y0, y1] at
// eye-space depth z, wound counter-clockwise when seen from the origin.
func quad(x0, y0, x1, y1, z float32) *Mesh {
	n := mgl32.Vec3{0, 0, 1}
	t := mgl32.Vec3{1, 0, 0}
	b := mgl32.Vec3{0, 1, 0}
	return &Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{x0, y0, z}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{x1, y0, z}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{x1, y1, z}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{x0, y1, z}, Normal: n, Tangent: t, Bitangent: b, UV: mgl32.Vec2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// within reports whether every component of a and b differs by at most
// tol.
func within(a, b []float32, tol float32) bool {
	for i := range a {
		if d := a[i] - b[i]; !(d <= tol && d >= -tol) {
			return false
		}
	}
	return true
}

func approxVec3(a, b mgl32.Vec3, tol float32) bool { return within(a[:], b[:], tol) }

func approxEqual(a, b, tol float32) bool {
	d := a - b
	return d <= tol && d >= -tol
}
