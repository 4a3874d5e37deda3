package filter

import (
	"context"
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/gbuffer"
	"github.com/gogpu/deferred/texture"
)

// ErrSizeMismatch is returned when the textures handed to a filter differ
// in size.
var ErrSizeMismatch = errors.New("filter: texture size mismatch")

// ErrImageFormat is returned when a target image is not RGBA32Float.
var ErrImageFormat = errors.New("filter: image must be RGBA32Float")

// Scheduler runs n independent work items and waits for them.
// *parallel.WorkerPool implements it; a nil Scheduler runs items inline.
type Scheduler interface {
	Run(ctx context.Context, n int, fn func(i int)) error
}

// Target is the frame state post-process filters read and modify.
type Target struct {
	// Image is the composited frame in linear light, RGBA32Float.
	Image *texture.Texture
	// GBuffer is the geometry the image was lit from.
	GBuffer *gbuffer.Buffer
	// DepthCoefficient decodes GBuffer depth.
	DepthCoefficient float32
}

// Distance returns the decoded positive eye-space distance at (x, y).
func (t *Target) Distance(x, y int) float32 {
	return float32(depth.Decode(t.GBuffer.DepthAt(x, y), t.DepthCoefficient))
}

// Filter is a post-process pass over a composited frame.
type Filter interface {
	Name() string
	Apply(ctx context.Context, s Scheduler, t *Target) error
}

// rows runs fn for every row in [0, h).
func rows(ctx context.Context, s Scheduler, h int, fn func(y int)) error {
	if s == nil {
		for y := range h {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(y)
		}
		return nil
	}
	return s.Run(ctx, h, fn)
}

func checkTarget(t *Target) error {
	if t.Image == nil || t.GBuffer == nil {
		return errors.New("filter: target needs an image and a G-buffer")
	}
	if t.Image.Format() != gputypes.TextureFormatRGBA32Float {
		return ErrImageFormat
	}
	if t.Image.Width() != t.GBuffer.Width() || t.Image.Height() != t.GBuffer.Height() {
		return ErrSizeMismatch
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
