package deferred

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/filter"
	"github.com/gogpu/deferred/reconstruct"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := deferred.New(800, 600,
//		deferred.WithWorkers(4),
//		deferred.WithFilters(filter.DefaultFXAA()),
//	)
type Option func(*options)

type options struct {
	workers          int
	output           reconstruct.OutputTarget
	filters          []filter.Filter
	shadowResolution int
	shadowBlur       int
	clearColor       mgl32.Vec4
	ssao             *filter.SSAO
	occlusionBlur    filter.BilateralBlur
}

func defaultOptions() options {
	return options{
		output:           reconstruct.TargetLightBuffer,
		shadowResolution: 512,
		shadowBlur:       1,
		clearColor:       mgl32.Vec4{0, 0, 0, 1},
		occlusionBlur:    filter.DefaultBilateralBlur(),
	}
}

// WithWorkers sets the number of render goroutines. Zero or negative uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithOutput selects where light passes write. TargetLightBuffer keeps
// separate diffuse and specular buffers in the Result.
func WithOutput(t reconstruct.OutputTarget) Option {
	return func(o *options) {
		o.output = t
	}
}

// WithFilters appends post-process filters, applied in order.
func WithFilters(f ...filter.Filter) Option {
	return func(o *options) {
		o.filters = append(o.filters, f...)
	}
}

// WithShadowResolution sets the side in texels of shadow maps allocated by
// EnableShadow, and the box blur radius applied to them after rendering.
func WithShadowResolution(size, blurRadius int) Option {
	return func(o *options) {
		if size > 0 {
			o.shadowResolution = size
		}
		o.shadowBlur = max(blurRadius, 0)
	}
}

// WithClearColor sets the color of pixels no geometry covers.
func WithClearColor(c mgl32.Vec4) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithSSAO enables screen-space ambient occlusion. The occlusion is blurred
// with a depth-aware filter and darkens the frame's ambient light. A frame
// without ambient light has its accumulated diffuse light darkened instead,
// or the whole lit image with TargetImageBuffer output.
func WithSSAO(a filter.SSAO, blur filter.BilateralBlur) Option {
	return func(o *options) {
		o.ssao = &a
		o.occlusionBlur = blur
	}
}
