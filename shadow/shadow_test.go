package shadow

import (
	"context"
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/geometry"
	"github.com/gogpu/deferred/internal/parallel"
)

func TestFactorScenarios(t *testing.T) {
	p := Parameters{FactorMinimum: 0.2, VarianceMinimum: 0.00002, BleedReduction: 0.2}
	moments := mgl32.Vec2{0.5, 0.26}

	tests := []struct {
		name string
		d    float32
		want float32
	}{
		{"at mean", 0.5, 1},
		{"in front", 0.3, 1},
		{"behind", 0.6, 0.375},
		{"far behind", 0.7, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Factor(p, moments, tt.d); !approxEqual(got, tt.want, 1e-4) {
				t.Errorf("Factor(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestChebyshev(t *testing.T) {
	// variance 0.01, delta 0.1: 0.01 / (0.01 + 0.01)
	if got := Chebyshev(mgl32.Vec2{0.5, 0.26}, 0.6, 0.00002); !approxEqual(got, 0.5, 1e-4) {
		t.Errorf("Chebyshev() = %v, want 0.5", got)
	}
	// Zero variance is floored by the minimum.
	got := Chebyshev(mgl32.Vec2{0.5, 0.25}, 0.6, 0.01)
	if !approxEqual(got, 0.5, 1e-4) {
		t.Errorf("Chebyshev() with floored variance = %v, want 0.5", got)
	}
}

func TestReduceBleed(t *testing.T) {
	tests := []struct {
		p, amount, want float32
	}{
		{0.1, 0.2, 0},
		{0.2, 0.2, 0},
		{0.6, 0.2, 0.5},
		{1, 0.2, 1},
		{0.99, 1, 0},
		{1, 1, 1},
		{0.5, 0, 0.5},
	}
	for _, tt := range tests {
		if got := ReduceBleed(tt.p, tt.amount); !approxEqual(got, tt.want, 1e-6) {
			t.Errorf("ReduceBleed(%v, %v) = %v, want %v", tt.p, tt.amount, got, tt.want)
		}
	}
}

func TestFactorBounds(t *testing.T) {
	nan := math32.NaN()
	inf := math32.Inf(1)
	values := []float32{-10, -1, 0, 1e-6, 0.3, 0.5, 0.99, 1, 2, 100, nan, inf, -inf}

	for _, fmin := range []float32{0, 0.2, 0.9} {
		p := Parameters{FactorMinimum: fmin, VarianceMinimum: 0.00002, BleedReduction: 0.3}
		for _, m1 := range values {
			for _, m2 := range values {
				for _, d := range values {
					f := Factor(p, mgl32.Vec2{m1, m2}, d)
					if !(f >= fmin && f <= 1) {
						t.Fatalf("Factor(fmin=%v, moments=(%v, %v), d=%v) = %v, want in [%v, 1]",
							fmin, m1, m2, d, f, fmin)
					}
				}
			}
		}
	}
}

func TestMoments(t *testing.T) {
	if got := Moments(0.5); got != (mgl32.Vec2{0.5, 0.25}) {
		t.Errorf("Moments(0.5) = %v, want (0.5, 0.25)", got)
	}
}

// =============================================================================
// Map
// =============================================================================

// occluder is a 2x2 square at z = -5 facing the light at the origin.
func occluder() *geometry.Mesh {
	n := mgl32.Vec3{0, 0, 1}
	return &geometry.Mesh{
		Vertices: []geometry.Vertex{
			{Position: mgl32.Vec3{-1, -1, -5}, Normal: n},
			{Position: mgl32.Vec3{1, -1, -5}, Normal: n},
			{Position: mgl32.Vec3{1, 1, -5}, Normal: n},
			{Position: mgl32.Vec3{-1, 1, -5}, Normal: n},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func renderedMap(t *testing.T) (*Map, *parallel.WorkerPool) {
	t.Helper()
	pool := parallel.NewWorkerPool(2)
	t.Cleanup(pool.Close)

	m, err := NewMap(32, mgl32.Ident4(), mgl32.Ortho(-4, 4, -4, 4, 0.1, 20), DefaultParameters(20))
	if err != nil {
		t.Fatalf("NewMap() error = %v", err)
	}
	stats, err := m.Render(context.Background(), pool, []geometry.Instance{{Mesh: occluder(), Model: mgl32.Ident4()}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if stats.Fragments == 0 {
		t.Fatal("Render() produced no fragments")
	}
	return m, pool
}

func TestMapFactor(t *testing.T) {
	m, _ := renderedMap(t)

	tests := []struct {
		name  string
		world mgl32.Vec3
		want  float32
	}{
		{"behind occluder", mgl32.Vec3{0, 0, -10}, 0.2},
		{"beside occluder", mgl32.Vec3{3, 0, -10}, 1},
		{"in front of occluder", mgl32.Vec3{0, 0, -2}, 1},
		{"outside frustum", mgl32.Vec3{10, 0, -10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Factor(tt.world); !approxEqual(got, tt.want, 2e-3) {
				t.Errorf("Factor(%v) = %v, want %v", tt.world, got, tt.want)
			}
		})
	}
}

func TestMapBlurSoftensEdge(t *testing.T) {
	m, pool := renderedMap(t)
	if err := m.Blur(context.Background(), pool, 2); err != nil {
		t.Fatalf("Blur() error = %v", err)
	}
	// Texel 12 is the first one covered by the occluder; after blurring its
	// mean lies between the occluder and the cleared far value.
	mean := m.Moments.At(12, 16)[0]
	if mean <= 0.55 || mean >= 1 {
		t.Errorf("blurred edge mean = %v, want in (0.55, 1)", mean)
	}
	if got := m.Factor(mgl32.Vec3{0, 0, -10}); got > 0.21 {
		t.Errorf("center Factor() after blur = %v, want shadowed", got)
	}
}

func TestNewMapInvalidSize(t *testing.T) {
	_, err := NewMap(0, mgl32.Ident4(), mgl32.Ident4(), DefaultParameters(10))
	if !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewMap(0) error = %v, want ErrInvalidSize", err)
	}
}

func TestMapDescriptor(t *testing.T) {
	m, err := NewMap(16, mgl32.Ident4(), mgl32.Ident4(), DefaultParameters(10))
	if err != nil {
		t.Fatal(err)
	}
	d := m.Descriptor()
	if d.Size.Width != 16 || d.Size.Height != 16 || d.Format != MomentsFormat {
		t.Errorf("Descriptor() = %+v", d)
	}
}
