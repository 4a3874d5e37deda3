package filter

import (
	"context"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/reconstruct"
	"github.com/gogpu/deferred/texture"
)

// noiseSize is the side of the tiled rotation noise pattern.
const noiseSize = 4

// SSAO estimates ambient occlusion from the G-buffer by testing points in
// a normal-oriented hemisphere against reconstructed depth.
type SSAO struct {
	// Kernel holds sample offsets in a unit hemisphere around +Z.
	Kernel []mgl32.Vec3
	// Noise holds noiseSize*noiseSize rotation vectors in the XY plane,
	// tiled over the screen to decorrelate neighboring pixels.
	Noise []mgl32.Vec3
	// Radius is the eye-space sampling radius.
	Radius float32
	// Power sharpens the result; 1 leaves it linear.
	Power float32
	// Bias prevents flat surfaces from occluding themselves.
	Bias float32
}

// NewSSAO returns an occlusion pass with the given number of kernel
// samples. The kernel and noise are generated from seed, so equal seeds
// give identical output.
func NewSSAO(samples int, radius float32, seed uint64) SSAO {
	samples = max(samples, 1)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	next := func() float32 { return rng.Float32() }

	kernel := make([]mgl32.Vec3, samples)
	for i := range kernel {
		v := mgl32.Vec3{next()*2 - 1, next()*2 - 1, next()}
		if v.Len() < 1e-4 {
			v = mgl32.Vec3{0, 0, 1}
		}
		// Cluster samples near the origin.
		t := float32(i) / float32(samples)
		scale := 0.1 + 0.9*t*t
		kernel[i] = v.Normalize().Mul(next() * scale)
	}

	noise := make([]mgl32.Vec3, noiseSize*noiseSize)
	for i := range noise {
		s, c := math32.Sincos(next() * 2 * math32.Pi)
		noise[i] = mgl32.Vec3{c, s, 0}
	}

	return SSAO{Kernel: kernel, Noise: noise, Radius: radius, Power: 1, Bias: 0.025}
}

// Apply writes occlusion to the first channel of dst: 1 means fully open,
// 0 fully occluded. projection must be the one the G-buffer was rendered
// with.
func (a SSAO) Apply(ctx context.Context, s Scheduler, in *reconstruct.Input, projection mgl32.Mat4, dst *texture.Texture) error {
	buf := in.GBuffer
	if !buf.Depth.SameSize(dst) {
		return ErrSizeMismatch
	}
	ri := *in
	ri.Mode = reconstruct.ModeNormal

	return rows(ctx, s, dst.Height(), func(y int) {
		for x := range dst.Width() {
			if !buf.Covered(x, y) || len(a.Kernel) == 0 {
				dst.SetR(x, y, 1)
				continue
			}
			surf := ri.At(x, y)
			dst.SetR(x, y, a.occlusion(&ri, projection, &surf, x, y))
		}
	})
}

func (a SSAO) occlusion(in *reconstruct.Input, projection mgl32.Mat4, surf *reconstruct.Surface, x, y int) float32 {
	n := surf.Normal
	r := mgl32.Vec3{1, 0, 0}
	if len(a.Noise) == noiseSize*noiseSize {
		r = a.Noise[(y%noiseSize)*noiseSize+x%noiseSize]
	}
	t := r.Sub(n.Mul(r.Dot(n)))
	if t.Len() < 1e-4 {
		t = orthogonal(n)
	}
	t = t.Normalize()
	b := n.Cross(t)
	tbn := mgl32.Mat3FromCols(t, b, n)

	p := surf.Position.Vec3()
	dep := in.GBuffer.Depth
	var occluded float32
	for _, k := range a.Kernel {
		sample := p.Add(tbn.Mul3x1(k).Mul(a.Radius))
		clip := projection.Mul4x1(sample.Vec4(1))
		if clip[3] <= 0 {
			continue
		}
		uv := mgl32.Vec2{clip[0]/clip[3]*0.5 + 0.5, clip[1]/clip[3]*0.5 + 0.5}
		if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
			continue
		}
		sceneZ := float32(depth.Decode(dep.SampleR(uv), in.DepthCoefficient).EyeZ())
		if sceneZ < sample[2]+a.Bias {
			continue
		}
		// Ignore occluders far outside the sampling radius.
		occluded += smoothstep(0, 1, a.Radius/math32.Abs(p[2]-sceneZ))
	}

	open := 1 - occluded/float32(len(a.Kernel))
	if a.Power > 0 && a.Power != 1 {
		open = math32.Pow(open, a.Power)
	}
	return mgl32.Clamp(open, 0, 1)
}

// orthogonal returns a unit vector perpendicular to n.
func orthogonal(n mgl32.Vec3) mgl32.Vec3 {
	if math32.Abs(n[0]) < 0.9 {
		return mgl32.Vec3{1, 0, 0}.Cross(n).Normalize()
	}
	return mgl32.Vec3{0, 1, 0}.Cross(n).Normalize()
}

func smoothstep(e0, e1, x float32) float32 {
	t := mgl32.Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}
