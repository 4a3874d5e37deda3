package filter

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/gbuffer"
	"github.com/gogpu/deferred/internal/parallel"
	"github.com/gogpu/deferred/texture"
)

const testCoefficient = 0.3

func testPool(t *testing.T) *parallel.WorkerPool {
	t.Helper()
	p := parallel.NewWorkerPool(2)
	t.Cleanup(p.Close)
	return p
}

func newImage(t *testing.T, w, h int, fill mgl32.Vec4) *texture.Texture {
	t.Helper()
	img, err := texture.New(w, h, gputypes.TextureFormatRGBA32Float)
	if err != nil {
		t.Fatalf("texture.New() error = %v", err)
	}
	img.Fill(fill)
	return img
}

func newGBuffer(t *testing.T, w, h int) *gbuffer.Buffer {
	t.Helper()
	b, err := gbuffer.New(w, h)
	if err != nil {
		t.Fatalf("gbuffer.New() error = %v", err)
	}
	return b
}

// writeSurface stores a surface at eye-space distance dist facing the
// camera.
func writeSurface(b *gbuffer.Buffer, x, y int, albedo mgl32.Vec3, emission, dist float32) {
	b.Write(x, y, gbuffer.Record{
		Albedo:   albedo,
		Emission: emission,
		Normal:   mgl32.Vec3{0, 0, 1},
		Depth:    depth.Encode(depth.Distance(dist).EyeZ(), testCoefficient),
	})
}

func approxEqual(a, b, tol float32) bool {
	d := a - b
	return d <= tol && d >= -tol
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

func approxVec4(a, b mgl32.Vec4, tol float32) bool { return within(a[:], b[:], tol) }
