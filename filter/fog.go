package filter

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
)

// Progression shapes fog density between the near and far distances.
type Progression uint8

const (
	// ProgressionLinear grows fog linearly with distance.
	ProgressionLinear Progression = iota
	// ProgressionQuadratic keeps nearby geometry clear and thickens fast at
	// distance.
	ProgressionQuadratic
	// ProgressionQuadraticInverse thickens fast close to the camera and
	// levels off at distance.
	ProgressionQuadraticInverse
)

// String returns the progression name.
func (p Progression) String() string {
	switch p {
	case ProgressionLinear:
		return "linear"
	case ProgressionQuadratic:
		return "quadratic"
	case ProgressionQuadraticInverse:
		return "quadratic-inverse"
	default:
		return "unknown"
	}
}

// Apply maps a normalized distance t in [0, 1] to a fog amount in [0, 1].
func (p Progression) Apply(t float32) float32 {
	t = mgl32.Clamp(t, 0, 1)
	switch p {
	case ProgressionQuadratic:
		return t * t
	case ProgressionQuadraticInverse:
		return 1 - (1-t)*(1-t)
	default:
		return t
	}
}

// Fog mixes the image toward Color by eye-space distance. Pixels with no
// geometry count as infinitely distant.
type Fog struct {
	Color       mgl32.Vec3
	Near, Far   float32
	Progression Progression
}

// Name implements Filter.
func (Fog) Name() string { return "fog" }

// Amount returns the fog amount at a positive eye-space distance.
func (f Fog) Amount(distance float32) float32 {
	if f.Far <= f.Near {
		if distance >= f.Far {
			return 1
		}
		return 0
	}
	return f.Progression.Apply((distance - f.Near) / (f.Far - f.Near))
}

// Apply implements Filter.
func (f Fog) Apply(ctx context.Context, s Scheduler, t *Target) error {
	if err := checkTarget(t); err != nil {
		return err
	}
	img := t.Image
	return rows(ctx, s, img.Height(), func(y int) {
		for x := range img.Width() {
			k := float32(1)
			if t.GBuffer.Covered(x, y) {
				k = f.Amount(t.Distance(x, y))
			}
			c := img.At(x, y)
			rgb := c.Vec3().Mul(1 - k).Add(f.Color.Mul(k))
			img.Set(x, y, rgb.Vec4(c[3]))
		}
	})
}
