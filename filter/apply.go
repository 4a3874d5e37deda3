package filter

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/gbuffer"
	"github.com/gogpu/deferred/texture"
)

// LightApplicator composites accumulated light with the G-buffer:
//
//	image = albedo * (diffuse + emission) + specular
//
// Pixels with no geometry receive Background.
type LightApplicator struct {
	Background mgl32.Vec4
}

// Apply writes the composited image to dst. All textures must match the
// G-buffer size.
func (a LightApplicator) Apply(ctx context.Context, s Scheduler, buf *gbuffer.Buffer, diffuse, specular, dst *texture.Texture) error {
	if !buf.Albedo.SameSize(diffuse) || !buf.Albedo.SameSize(specular) || !buf.Albedo.SameSize(dst) {
		return ErrSizeMismatch
	}
	return rows(ctx, s, dst.Height(), func(y int) {
		for x := range dst.Width() {
			if !buf.Covered(x, y) {
				dst.Set(x, y, a.Background)
				continue
			}
			al := buf.Albedo.At(x, y)
			d := diffuse.At(x, y).Vec3().Add(mgl32.Vec3{al[3], al[3], al[3]})
			c := mgl32.Vec3{al[0] * d[0], al[1] * d[1], al[2] * d[2]}
			dst.Set(x, y, c.Add(specular.At(x, y).Vec3()).Vec4(1))
		}
	})
}

// OcclusionApplicator darkens a light buffer by an occlusion texture whose
// first channel is 1 for unoccluded pixels.
type OcclusionApplicator struct {
	// Intensity blends from no effect (0) to full occlusion (1).
	Intensity float32
}

// Apply multiplies the RGB channels of light by the occlusion in place.
func (o OcclusionApplicator) Apply(ctx context.Context, s Scheduler, occlusion, light *texture.Texture) error {
	if !occlusion.SameSize(light) {
		return ErrSizeMismatch
	}
	k := mgl32.Clamp(o.Intensity, 0, 1)
	return rows(ctx, s, light.Height(), func(y int) {
		for x := range light.Width() {
			f := 1 - k + k*occlusion.R(x, y)
			c := light.At(x, y)
			light.Set(x, y, c.Vec3().Mul(f).Vec4(c[3]))
		}
	})
}
