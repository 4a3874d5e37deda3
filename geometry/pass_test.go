package geometry

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/texture"
)

func covered(w, h int, fn func(x, y int) bool) int {
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if fn(x, y) {
				n++
			}
		}
	}
	return n
}

func TestPassWritesSurface(t *testing.T) {
	buf := newTestBuffer(t)
	c := depth.Coefficient(100)
	p := NewPass(newTestRasterizer(t), c)

	mat := &Material{
		Albedo:           mgl32.Vec4{1, 0, 0, 1},
		Emission:         0.5,
		Specular:         mgl32.Vec3{0, 1, 0},
		SpecularExponent: 64,
	}
	inst := Instance{Mesh: quad(-100, -100, 100, 100, -10), Model: mgl32.Ident4(), Material: mat}

	stats, err := p.Draw(context.Background(), buf, mgl32.Ident4(), testProjection(), []Instance{inst})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if stats.Fragments != testWidth*testHeight {
		t.Errorf("Fragments = %d, want %d", stats.Fragments, testWidth*testHeight)
	}

	rec := buf.Read(10, 20)
	if got := float32(depth.Decode(rec.Depth, c)); !approxEqual(got, 10, 1e-3) {
		t.Errorf("decoded depth = %v, want 10", got)
	}
	if !approxVec3(rec.Normal, mgl32.Vec3{0, 0, 1}, 1e-3) {
		t.Errorf("normal = %v, want (0, 0, 1)", rec.Normal)
	}
	if rec.Albedo != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("albedo = %v, want red", rec.Albedo)
	}
	if !approxEqual(rec.Emission, 0.5, 1.0/255) {
		t.Errorf("emission = %v, want 0.5", rec.Emission)
	}
	if !approxEqual(rec.Exponent, 64, 1) {
		t.Errorf("exponent = %v, want 64", rec.Exponent)
	}
}

func TestPassDepthOrdering(t *testing.T) {
	buf := newTestBuffer(t)
	c := depth.Coefficient(100)
	p := NewPass(newTestRasterizer(t), c)

	near := Instance{Mesh: quad(-1, -1, 1, 1, -5), Model: mgl32.Ident4(), Material: &Material{Albedo: mgl32.Vec4{0, 1, 0, 1}}}
	far := Instance{Mesh: quad(-100, -100, 100, 100, -50), Model: mgl32.Ident4(), Material: &Material{Albedo: mgl32.Vec4{0, 0, 1, 1}}}

	// Submission order must not matter.
	if _, err := p.Draw(context.Background(), buf, mgl32.Ident4(), testProjection(), []Instance{near, far}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := buf.Read(testWidth/2, testHeight/2).Albedo; got != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("center albedo = %v, want green (near quad)", got)
	}
	if got := buf.Read(0, 0).Albedo; got != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("corner albedo = %v, want blue (far quad)", got)
	}
}

func TestPassStipple(t *testing.T) {
	tests := []struct {
		name    string
		stipple float32
		want    int
	}{
		{"zero never discards", 0, testWidth * testHeight},
		{"one discards all", 1, 0},
		{"half", 0.5, testWidth * testHeight / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newTestBuffer(t)
			p := NewPass(newTestRasterizer(t), depth.Coefficient(100))
			inst := Instance{
				Mesh:     quad(-100, -100, 100, 100, -10),
				Model:    mgl32.Ident4(),
				Material: &Material{Albedo: mgl32.Vec4{1, 1, 1, 1}, Stipple: tt.stipple},
			}
			if _, err := p.Draw(context.Background(), buf, mgl32.Ident4(), testProjection(), []Instance{inst}); err != nil {
				t.Fatalf("Draw() error = %v", err)
			}
			if got := covered(testWidth, testHeight, buf.Covered); got != tt.want {
				t.Errorf("covered = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPassAlphaDiscard(t *testing.T) {
	buf := newTestBuffer(t)
	p := NewPass(newTestRasterizer(t), depth.Coefficient(100))

	tex, err := texture.New(2, 1, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("texture.New() error = %v", err)
	}
	tex.Set(0, 0, mgl32.Vec4{1, 1, 1, 0})
	tex.Set(1, 0, mgl32.Vec4{1, 1, 1, 1})

	inst := Instance{
		Mesh:  quad(-1, -1, 1, 1, -5),
		Model: mgl32.Ident4(),
		Material: &Material{
			Albedo:        mgl32.Vec4{1, 1, 1, 1},
			AlbedoTexture: tex,
			AlbedoMix:     1,
			AlphaDiscard:  0.5,
		},
	}
	proj := mgl32.Ortho(-1, 1, -1, 1, 0.1, 10)
	if _, err := p.Draw(context.Background(), buf, mgl32.Ident4(), proj, []Instance{inst}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if buf.Covered(5, 5) {
		t.Error("transparent half was written")
	}
	if !buf.Covered(testWidth-5, 5) {
		t.Error("opaque half was discarded")
	}
}

func TestPassDefaultMaterial(t *testing.T) {
	buf := newTestBuffer(t)
	p := NewPass(newTestRasterizer(t), depth.Coefficient(100))
	inst := Instance{Mesh: quad(-100, -100, 100, 100, -10), Model: mgl32.Ident4()}
	if _, err := p.Draw(context.Background(), buf, mgl32.Ident4(), testProjection(), []Instance{inst}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := buf.Read(1, 1).Albedo; got != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("albedo = %v, want white", got)
	}
}

func TestPassNormalMap(t *testing.T) {
	buf := newTestBuffer(t)
	p := NewPass(newTestRasterizer(t), depth.Coefficient(100))

	nm, err := texture.New(1, 1, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("texture.New() error = %v", err)
	}
	nm.Set(0, 0, mgl32.Vec4{1, 0.5, 0.5, 1})

	inst := Instance{
		Mesh:     quad(-100, -100, 100, 100, -10),
		Model:    mgl32.Ident4(),
		Material: &Material{Albedo: mgl32.Vec4{1, 1, 1, 1}, NormalTexture: nm},
	}
	if _, err := p.Draw(context.Background(), buf, mgl32.Ident4(), testProjection(), []Instance{inst}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := buf.Read(3, 3).Normal; !approxVec3(got, mgl32.Vec3{1, 0, 0}, 0.02) {
		t.Errorf("perturbed normal = %v, want ~(1, 0, 0)", got)
	}
}

func TestBayerNoise(t *testing.T) {
	n := BayerNoise()
	if n == nil {
		t.Fatal("BayerNoise() = nil")
	}
	seen := make(map[float32]bool)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := n.R(x, y)
			if v <= 0 || v >= 1 {
				t.Errorf("noise(%d, %d) = %v, want in (0, 1)", x, y, v)
			}
			seen[v] = true
		}
	}
	if len(seen) != 16 {
		t.Errorf("noise has %d distinct values, want 16", len(seen))
	}
}

func TestMustTexturePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustTexture() did not panic on a construction error")
		}
	}()
	mustTexture(texture.FromData(4, 4, gputypes.TextureFormatR32Float, make([]float32, 3)))
}
