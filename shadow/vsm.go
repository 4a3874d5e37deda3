// Package shadow implements variance shadow maps.
//
// A shadow map stores, per light-space texel, the first two moments of
// log-encoded depth. Because moments may be filtered linearly, the map can
// be blurred to soften shadow edges; at lookup time Chebyshev's inequality
// bounds the probability that a fragment is lit.
package shadow

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/depth"
)

// Parameters controls the shadow lookup.
type Parameters struct {
	// FactorMinimum is the darkest a shadow can get, in [0, 1].
	FactorMinimum float32
	// VarianceMinimum clamps the variance away from zero, acting as a
	// depth bias.
	VarianceMinimum float32
	// BleedReduction cuts off the low end of the Chebyshev bound to
	// reduce light bleeding, typically in [0.2, 1].
	BleedReduction float32
	// DepthCoefficient encodes light-space depth; it must match the one
	// used to render the moments.
	DepthCoefficient float32
}

// DefaultParameters returns parameters for a light whose projection
// reaches far units.
func DefaultParameters(far float32) Parameters {
	return Parameters{
		FactorMinimum:    0.2,
		VarianceMinimum:  0.00002,
		BleedReduction:   0.2,
		DepthCoefficient: depth.Coefficient(far),
	}
}

// Moments returns the moments (d, d²) stored for an encoded depth.
func Moments(d float32) mgl32.Vec2 {
	return mgl32.Vec2{d, d * d}
}

// Chebyshev returns the upper bound on the probability that a fragment at
// encoded depth d is lit, given the moments of the occluders. Fragments in
// front of the mean occluder depth are always lit.
func Chebyshev(moments mgl32.Vec2, d, varianceMinimum float32) float32 {
	mean := moments[0]
	variance := math32.Max(varianceMinimum, moments[1]-mean*mean)
	delta := d - mean
	pMax := variance / (variance + delta*delta)
	if d <= mean {
		return 1
	}
	return pMax
}

// ReduceBleed remaps p from [amount, 1] to [0, 1], clamping below. An
// amount of 1 or more turns the bound into a hard step.
func ReduceBleed(p, amount float32) float32 {
	if amount >= 1 {
		if p >= 1 {
			return 1
		}
		return 0
	}
	return mgl32.Clamp((p-amount)/(1-amount), 0, 1)
}

// Factor returns the light attenuation for a fragment at encoded depth d.
// The result is always in [FactorMinimum, 1], whatever the inputs.
func Factor(p Parameters, moments mgl32.Vec2, d float32) float32 {
	lo := mgl32.Clamp(p.FactorMinimum, 0, 1)
	f := ReduceBleed(Chebyshev(moments, d, p.VarianceMinimum), p.BleedReduction)
	if !(f >= lo) {
		return lo
	}
	return math32.Min(f, 1)
}
