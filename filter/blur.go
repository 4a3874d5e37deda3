package filter

import (
	"context"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/texture"
)

// convolve runs a separable convolution over every channel of t in place.
// Edges are extended by clamping.
func convolve(ctx context.Context, s Scheduler, t *texture.Texture, kx, ky []float32) error {
	w, h, ch := t.Width(), t.Height(), t.Channels()
	src := t.Pix()
	tmp := make([]float32, len(src))

	hx := len(kx) / 2
	err := rows(ctx, s, h, func(y int) {
		row := y * w * ch
		for x := range w {
			o := row + x*ch
			for k, wt := range kx {
				sx := clampInt(x+k-hx, 0, w-1)
				si := row + sx*ch
				for c := range ch {
					tmp[o+c] += src[si+c] * wt
				}
			}
		}
	})
	if err != nil {
		return err
	}

	hy := len(ky) / 2
	return rows(ctx, s, h, func(y int) {
		for x := range w {
			var v mgl32.Vec4
			for k, wt := range ky {
				si := (clampInt(y+k-hy, 0, h-1)*w + x) * ch
				for c := range ch {
					v[c] += tmp[si+c] * wt
				}
			}
			t.Set(x, y, v)
		}
	})
}

// BoxBlur blurs with a box kernel. Several passes approximate a Gaussian.
type BoxBlur struct {
	Radius int
	Passes int
}

// Name implements Filter.
func (BoxBlur) Name() string { return "box-blur" }

// Blur blurs t in place.
func (b BoxBlur) Blur(ctx context.Context, s Scheduler, t *texture.Texture) error {
	if b.Radius <= 0 {
		return nil
	}
	k := BoxKernel(b.Radius)
	for range max(b.Passes, 1) {
		if err := convolve(ctx, s, t, k, k); err != nil {
			return err
		}
	}
	return nil
}

// Apply implements Filter by blurring the image.
func (b BoxBlur) Apply(ctx context.Context, s Scheduler, t *Target) error {
	return b.Blur(ctx, s, t.Image)
}

// GaussianBlur blurs with a Gaussian kernel of standard deviation Sigma.
type GaussianBlur struct {
	Sigma float64
}

// Name implements Filter.
func (GaussianBlur) Name() string { return "gaussian-blur" }

// Blur blurs t in place.
func (g GaussianBlur) Blur(ctx context.Context, s Scheduler, t *texture.Texture) error {
	if g.Sigma <= 0 {
		return nil
	}
	k := CachedGaussianKernel(g.Sigma)
	return convolve(ctx, s, t, k, k)
}

// Apply implements Filter by blurring the image.
func (g GaussianBlur) Apply(ctx context.Context, s Scheduler, t *Target) error {
	return g.Blur(ctx, s, t.Image)
}

// BilateralBlur is a separable blur that does not mix values across depth
// discontinuities. Taps are weighted by exp2(-r²·falloff - Δz²·Sharpness),
// where Δz is the difference in eye-space distance to the center pixel and
// falloff derives from Radius.
type BilateralBlur struct {
	Radius    int
	Sharpness float32
	Passes    int
}

// DefaultBilateralBlur returns the settings used for ambient occlusion.
func DefaultBilateralBlur() BilateralBlur {
	return BilateralBlur{Radius: 4, Sharpness: 16, Passes: 1}
}

// Name implements Filter.
func (BilateralBlur) Name() string { return "bilateral-blur" }

// Apply implements Filter by blurring the image.
func (b BilateralBlur) Apply(ctx context.Context, s Scheduler, t *Target) error {
	if err := checkTarget(t); err != nil {
		return err
	}
	return b.Blur(ctx, s, t.Image, t.GBuffer.Depth, t.DepthCoefficient)
}

// Blur blurs t in place using the log-encoded depth texture dep, decoded
// with coefficient c. t and dep must be the same size.
func (b BilateralBlur) Blur(ctx context.Context, s Scheduler, t, dep *texture.Texture, c float32) error {
	if b.Radius <= 0 {
		return nil
	}
	if !t.SameSize(dep) {
		return ErrSizeMismatch
	}

	w, h := t.Width(), t.Height()
	dist := make([]float32, w*h)
	if err := rows(ctx, s, h, func(y int) {
		for x := range w {
			dist[y*w+x] = float32(depth.Decode(dep.R(x, y), c))
		}
	}); err != nil {
		return err
	}

	sigma := (float32(b.Radius) + 1) / 2
	falloff := 1 / (2 * sigma * sigma)
	weights := make([]float32, b.Radius+1)
	for r := range weights {
		weights[r] = -float32(r*r) * falloff
	}

	for range max(b.Passes, 1) {
		if err := b.pass(ctx, s, t, dist, weights, 1, 0); err != nil {
			return err
		}
		if err := b.pass(ctx, s, t, dist, weights, 0, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b BilateralBlur) pass(ctx context.Context, s Scheduler, t *texture.Texture, dist, weights []float32, dx, dy int) error {
	w, h := t.Width(), t.Height()
	src := t.Clone()
	return rows(ctx, s, h, func(y int) {
		for x := range w {
			z := dist[y*w+x]
			var sum mgl32.Vec4
			var total float32
			for r := -b.Radius; r <= b.Radius; r++ {
				sx, sy := x+r*dx, y+r*dy
				if sx < 0 || sy < 0 || sx >= w || sy >= h {
					continue
				}
				dz := dist[sy*w+sx] - z
				wt := math32.Exp2(weights[abs(r)] - dz*dz*b.Sharpness)
				if math32.IsNaN(wt) || math32.IsInf(wt, 0) {
					continue
				}
				sum = sum.Add(src.At(sx, sy).Mul(wt))
				total += wt
			}
			if total > 0 {
				t.Set(x, y, sum.Mul(1/total))
			}
		}
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// blurRadiusFor returns a box radius approximating a Gaussian of the given
// standard deviation in three passes.
func blurRadiusFor(sigma float64) int {
	return int(math.Round(math.Sqrt(4*sigma*sigma+1) / 2))
}
