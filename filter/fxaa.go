package filter

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/internal/color"
	"github.com/gogpu/deferred/texture"
)

// FXAA is fast approximate anti-aliasing on a linear RGBA image.
//
// Edges are found from luma contrast, followed along their length to
// estimate where the aliased step sits, and smoothed by blending each edge
// pixel with its neighbor across the edge.
type FXAA struct {
	// EdgeThreshold is the local contrast, relative to the brightest
	// neighbor, below which a pixel is left alone. 0.166 is a good default.
	EdgeThreshold float32
	// EdgeThresholdMinimum skips dark regions with absolute contrast below
	// it. 0.0833 is a good default.
	EdgeThresholdMinimum float32
	// SubpixelQuality controls how much sub-pixel aliasing is removed,
	// from 0 (none) to 1 (soft).
	SubpixelQuality float32
	// SearchSteps bounds the edge walk in each direction.
	SearchSteps int
}

// DefaultFXAA returns the medium quality preset.
func DefaultFXAA() FXAA {
	return FXAA{
		EdgeThreshold:        0.166,
		EdgeThresholdMinimum: 0.0833,
		SubpixelQuality:      0.75,
		SearchSteps:          12,
	}
}

// Name implements Filter.
func (FXAA) Name() string { return "fxaa" }

// Apply implements Filter.
func (f FXAA) Apply(ctx context.Context, s Scheduler, t *Target) error {
	return f.Filter(ctx, s, t.Image)
}

// Filter anti-aliases img in place.
func (f FXAA) Filter(ctx context.Context, s Scheduler, img *texture.Texture) error {
	w, h := img.Width(), img.Height()
	luma := make([]float32, w*h)
	if err := rows(ctx, s, h, func(y int) {
		for x := range w {
			// Perceptual luma, approximating gamma 2.
			luma[y*w+x] = math32.Sqrt(max(0, color.Luma(img.At(x, y).Vec3())))
		}
	}); err != nil {
		return err
	}

	src := img.Clone()
	l := func(x, y int) float32 {
		return luma[clampInt(y, 0, h-1)*w+clampInt(x, 0, w-1)]
	}

	return rows(ctx, s, h, func(y int) {
		for x := range w {
			dx, dy, amount := f.offset(l, x, y)
			if amount <= 0 {
				continue
			}
			a := src.At(x, y)
			b := src.At(clampInt(x+dx, 0, w-1), clampInt(y+dy, 0, h-1))
			img.Set(x, y, a.Mul(1-amount).Add(b.Mul(amount)))
		}
	})
}

// offset returns the step across the edge through (x, y) and the blend
// weight toward the pixel at that step.
func (f FXAA) offset(l func(x, y int) float32, x, y int) (dx, dy int, amount float32) {
	m := l(x, y)
	n, so, e, we := l(x, y+1), l(x, y-1), l(x+1, y), l(x-1, y)

	lo := min(m, n, so, e, we)
	hi := max(m, n, so, e, we)
	rng := hi - lo
	if rng < max(f.EdgeThresholdMinimum, hi*f.EdgeThreshold) {
		return 0, 0, 0
	}

	ne, nw, se, sw := l(x+1, y+1), l(x-1, y+1), l(x+1, y-1), l(x-1, y-1)

	// Second derivatives across each axis.
	edgeH := math32.Abs(nw+sw-2*we) + 2*math32.Abs(n+so-2*m) + math32.Abs(ne+se-2*e)
	edgeV := math32.Abs(nw+ne-2*n) + 2*math32.Abs(we+e-2*m) + math32.Abs(sw+se-2*so)
	horizontal := edgeH >= edgeV

	// a and b are the neighbors across the edge; (sx, sy) walks along it.
	a, b := so, n
	sx, sy := 1, 0
	if !horizontal {
		a, b = we, e
		sx, sy = 0, 1
	}
	gradA, gradB := math32.Abs(a-m), math32.Abs(b-m)
	step := -1
	other := a
	if gradB >= gradA {
		step = 1
		other = b
	}
	if horizontal {
		dx, dy = 0, step
	} else {
		dx, dy = step, 0
	}

	// Walk both ways along the edge on the midline between the two rows
	// until the luma leaves the local average.
	average := (m + other) / 2
	threshold := max(gradA, gradB) / 4
	mid := func(i int) float32 {
		px, py := x+i*sx, y+i*sy
		return (l(px, py) + l(px+dx, py+dy)) / 2
	}
	steps := max(f.SearchSteps, 1)
	distNeg, distPos := float32(steps), float32(steps)
	endNeg, endPos := mid(-steps)-average, mid(steps)-average
	for i := 1; i <= steps; i++ {
		if v := mid(-i) - average; math32.Abs(v) >= threshold {
			distNeg, endNeg = float32(i), v
			break
		}
	}
	for i := 1; i <= steps; i++ {
		if v := mid(i) - average; math32.Abs(v) >= threshold {
			distPos, endPos = float32(i), v
			break
		}
	}

	var edgeBlend float32
	end := endPos
	if distNeg < distPos {
		end = endNeg
	}
	if (end < 0) != (m < average) {
		edgeBlend = 0.5 - min(distNeg, distPos)/(distNeg+distPos)
	}

	// Sub-pixel aliasing: contrast of the center against the 3x3 average.
	avg := (2*(n+so+e+we) + ne + nw + se + sw) / 12
	sub := mgl32.Clamp(math32.Abs(avg-m)/rng, 0, 1)
	sub = (-2*sub + 3) * sub * sub
	subBlend := sub * sub * f.SubpixelQuality

	return dx, dy, max(edgeBlend, subBlend)
}
