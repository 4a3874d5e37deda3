package deferred

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/deferred/filter"
	"github.com/gogpu/deferred/gbuffer"
	"github.com/gogpu/deferred/geometry"
	"github.com/gogpu/deferred/internal/parallel"
	"github.com/gogpu/deferred/light"
	"github.com/gogpu/deferred/reconstruct"
	"github.com/gogpu/deferred/shadow"
	"github.com/gogpu/deferred/texture"
	"github.com/gogpu/deferred/viewray"
)

// Errors returned by the renderer.
var (
	ErrInvalidViewport         = errors.New("deferred: invalid viewport")
	ErrInvalidDepthCoefficient = errors.New("deferred: invalid depth coefficient")
	ErrClosed                  = errors.New("deferred: renderer closed")
)

// lightFormat is the storage format of light and image buffers.
const lightFormat = gputypes.TextureFormatRGBA32Float

// Renderer renders frames of a fixed size. Render calls are serialized;
// each returns a Result that owns its buffers.
type Renderer struct {
	width, height int
	opts          options
	pool          *parallel.WorkerPool
	raster        *geometry.Rasterizer

	mu     sync.Mutex
	closed bool
}

// New creates a renderer for width x height frames.
func New(width, height int, opts ...Option) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	pool := parallel.NewWorkerPool(o.workers)
	return &Renderer{
		width:  width,
		height: height,
		opts:   o,
		pool:   pool,
		raster: geometry.NewRasterizer(width, height, pool),
	}, nil
}

// Width returns the frame width in pixels.
func (r *Renderer) Width() int { return r.width }

// Height returns the frame height in pixels.
func (r *Renderer) Height() int { return r.height }

// Close stops the render workers. Render fails with ErrClosed afterwards.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.pool.Close()
}

// EnableShadow attaches a variance shadow map to p, sized by
// WithShadowResolution. The map is re-rendered from p's current transform
// by every Render whose frame contains p.
func (r *Renderer) EnableShadow(p *light.Projective) error {
	m, err := shadow.NewMap(r.opts.shadowResolution, p.View(), p.Projection(), shadow.DefaultParameters(p.Radius))
	if err != nil {
		return err
	}
	p.Shadow = m
	return nil
}

// Render runs every pass for f and returns the result. It stops between
// passes and between tiles once ctx is done.
func (r *Renderer) Render(ctx context.Context, f *Frame) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	c, err := f.depthCoefficient()
	if err != nil {
		return nil, err
	}
	log := Logger()
	start := time.Now()

	buf, err := gbuffer.New(r.width, r.height)
	if err != nil {
		return nil, err
	}
	t := time.Now()
	stats, err := geometry.NewPass(r.raster, c).Draw(ctx, buf, f.Camera.View, f.Camera.Projection, f.Instances)
	if err != nil {
		return nil, fmt.Errorf("deferred: geometry pass: %w", err)
	}
	log.Debug("geometry pass",
		slog.Int("triangles", stats.Triangles),
		slog.Int("culled", stats.Culled),
		slog.Int64("fragments", stats.Fragments),
		slog.Duration("took", time.Since(t)))

	if err := r.renderShadows(ctx, f); err != nil {
		return nil, err
	}

	in := &reconstruct.Input{
		GBuffer:          buf,
		Viewport:         reconstruct.NewViewport(r.width, r.height),
		Rays:             viewray.New(f.Camera.Projection),
		DepthCoefficient: c,
	}
	res := &Result{GBuffer: buf, Stats: stats, DepthCoefficient: c}

	if r.opts.ssao != nil {
		if res.Occlusion, err = r.occlusion(ctx, in, f.Camera.Projection); err != nil {
			return nil, err
		}
	}

	lights := r.frameLights(f, res.Occlusion)
	if res.Color, err = texture.New(r.width, r.height, lightFormat); err != nil {
		return nil, err
	}
	if r.opts.output == reconstruct.TargetLightBuffer {
		if res.Diffuse, err = texture.New(r.width, r.height, lightFormat); err != nil {
			return nil, err
		}
		if res.Specular, err = texture.New(r.width, r.height, lightFormat); err != nil {
			return nil, err
		}
	}

	t = time.Now()
	if err := r.lightPass(ctx, in, light.NewView(f.Camera.View), lights, res); err != nil {
		return nil, fmt.Errorf("deferred: light pass: %w", err)
	}
	log.Debug("light pass",
		slog.Int("lights", len(lights)),
		slog.String("mode", in.Mode.String()),
		slog.String("output", r.opts.output.String()),
		slog.Duration("took", time.Since(t)))

	target := &filter.Target{Image: res.Color, GBuffer: buf, DepthCoefficient: c}
	for _, flt := range r.opts.filters {
		t = time.Now()
		if err := flt.Apply(ctx, r.pool, target); err != nil {
			return nil, fmt.Errorf("deferred: filter %s: %w", flt.Name(), err)
		}
		log.Debug("filter", slog.String("name", flt.Name()), slog.Duration("took", time.Since(t)))
	}

	log.Info("frame rendered",
		slog.Int("width", r.width),
		slog.Int("height", r.height),
		slog.Int("instances", len(f.Instances)),
		slog.Int("lights", len(lights)),
		slog.Duration("took", time.Since(start)))
	return res, nil
}

// renderShadows refreshes the shadow maps of projective lights in f.
func (r *Renderer) renderShadows(ctx context.Context, f *Frame) error {
	for _, l := range f.Lights {
		p, ok := l.(*light.Projective)
		if !ok || p.Shadow == nil {
			continue
		}
		t := time.Now()
		m := p.Shadow
		m.View, m.Projection = p.View(), p.Projection()
		stats, err := m.Render(ctx, r.pool, f.Instances)
		if err != nil {
			return fmt.Errorf("deferred: shadow pass: %w", err)
		}
		if err := m.Blur(ctx, r.pool, r.opts.shadowBlur); err != nil {
			return fmt.Errorf("deferred: shadow blur: %w", err)
		}
		Logger().Debug("shadow pass",
			slog.Int("size", m.Size()),
			slog.Int64("fragments", stats.Fragments),
			slog.Duration("took", time.Since(t)))
	}
	return nil
}

// occlusion computes blurred SSAO for the G-buffer in in.
func (r *Renderer) occlusion(ctx context.Context, in *reconstruct.Input, projection mgl32.Mat4) (*texture.Texture, error) {
	t := time.Now()
	occ, err := texture.New(r.width, r.height, gputypes.TextureFormatR32Float)
	if err != nil {
		return nil, err
	}
	if err := r.opts.ssao.Apply(ctx, r.pool, in, projection, occ); err != nil {
		return nil, fmt.Errorf("deferred: ssao: %w", err)
	}
	if err := r.opts.occlusionBlur.Blur(ctx, r.pool, occ, in.GBuffer.Depth, in.DepthCoefficient); err != nil {
		return nil, fmt.Errorf("deferred: ssao blur: %w", err)
	}
	Logger().Debug("ssao pass",
		slog.Int("samples", len(r.opts.ssao.Kernel)),
		slog.Duration("took", time.Since(t)))
	return occ, nil
}

// frameLights collects the lights of f. The ambient light receives the
// occlusion texture unless it carries its own.
func (r *Renderer) frameLights(f *Frame, occlusion *texture.Texture) []light.Light {
	lights := make([]light.Light, 0, len(f.Lights)+1)
	for _, l := range f.Lights {
		if l != nil {
			lights = append(lights, l)
		}
	}
	if a := f.Ambient; a != nil {
		if occlusion != nil && a.Occlusion == nil {
			occluded := *a
			occluded.Occlusion = occlusion
			a = &occluded
		}
		lights = append(lights, a)
	}
	if len(lights) == 0 {
		Logger().Warn("frame has no lights; lit pixels will be black apart from emission")
	}
	return lights
}

// lightPass evaluates every light at every covered pixel and writes the
// result to the buffers of res.
func (r *Renderer) lightPass(ctx context.Context, in *reconstruct.Input, view *light.View, lights []light.Light, res *Result) error {
	modes := make([]reconstruct.Mode, len(lights))
	for i, l := range lights {
		modes[i] = l.Mode()
	}
	in.Mode = reconstruct.Union(modes...).ForTarget(r.opts.output)
	buf := in.GBuffer
	background := r.opts.clearColor

	var err error
	if res.Diffuse != nil {
		err = parallel.ForEachPixel(ctx, r.pool, r.width, r.height, func(x, y int) {
			if !buf.Covered(x, y) {
				return
			}
			s := in.At(x, y)
			o := evaluate(view, lights, &s)
			res.Diffuse.Set(x, y, o.Diffuse.Vec4(1))
			res.Specular.Set(x, y, o.Specular.Vec4(1))
		})
		if err != nil {
			return err
		}
		if res.Occlusion != nil && !hasAmbient(lights) {
			occ := filter.OcclusionApplicator{Intensity: 1}
			if err := occ.Apply(ctx, r.pool, res.Occlusion, res.Diffuse); err != nil {
				return err
			}
		}
		app := filter.LightApplicator{Background: background}
		return app.Apply(ctx, r.pool, buf, res.Diffuse, res.Specular, res.Color)
	}

	err = parallel.ForEachPixel(ctx, r.pool, r.width, r.height, func(x, y int) {
		if !buf.Covered(x, y) {
			res.Color.Set(x, y, background)
			return
		}
		s := in.At(x, y)
		o := evaluate(view, lights, &s)
		d := o.Diffuse.Add(mgl32.Vec3{s.Emission, s.Emission, s.Emission})
		c := mgl32.Vec3{s.Albedo[0] * d[0], s.Albedo[1] * d[1], s.Albedo[2] * d[2]}
		res.Color.Set(x, y, c.Add(o.Specular).Vec4(1))
	})
	if err != nil {
		return err
	}
	if res.Occlusion != nil && !hasAmbient(lights) {
		occ := filter.OcclusionApplicator{Intensity: 1}
		return occ.Apply(ctx, r.pool, res.Occlusion, res.Color)
	}
	return nil
}

func evaluate(view *light.View, lights []light.Light, s *reconstruct.Surface) light.Output {
	var o light.Output
	for _, l := range lights {
		o = o.Add(l.Evaluate(view, s))
	}
	return o
}

func hasAmbient(lights []light.Light) bool {
	for _, l := range lights {
		if _, ok := l.(*light.Ambient); ok {
			return true
		}
	}
	return false
}
