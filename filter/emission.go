package filter

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/deferred/internal/blend"
	"github.com/gogpu/deferred/texture"
)

// Emission adds a glow around emissive surfaces. The G-buffer albedo scaled
// by its emission channel is blurred and added to the image, on top of the
// unblurred emissive color the light applicator already contributed.
type Emission struct {
	// Sigma is the glow spread in pixels.
	Sigma float64
	// Intensity scales the glow.
	Intensity float32
}

// Name implements Filter.
func (Emission) Name() string { return "emission" }

// Apply implements Filter.
func (e Emission) Apply(ctx context.Context, s Scheduler, t *Target) error {
	if err := checkTarget(t); err != nil {
		return err
	}
	if e.Intensity <= 0 {
		return nil
	}
	w, h := t.Image.Width(), t.Image.Height()
	glow, err := texture.New(w, h, gputypes.TextureFormatRGBA32Float)
	if err != nil {
		return fmt.Errorf("filter: emission buffer: %w", err)
	}

	albedo := t.GBuffer.Albedo
	if err := rows(ctx, s, h, func(y int) {
		for x := range w {
			a := albedo.At(x, y)
			glow.Set(x, y, a.Vec3().Mul(a[3]).Vec4(1))
		}
	}); err != nil {
		return err
	}

	if e.Sigma > 0 {
		box := BoxBlur{Radius: blurRadiusFor(e.Sigma), Passes: 3}
		if err := box.Blur(ctx, s, glow); err != nil {
			return err
		}
	}

	return rows(ctx, s, h, func(y int) {
		blend.AddScaled(t.Image.Row(y), glow.Row(y), e.Intensity)
	})
}
