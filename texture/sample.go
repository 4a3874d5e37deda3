package texture

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Filter selects how Sample reconstructs values between texel centers.
type Filter uint8

const (
	// FilterNearest selects the texel containing the coordinate.
	FilterNearest Filter = iota

	// FilterBilinear interpolates the four nearest texel centers.
	FilterBilinear
)

// String returns a string representation of the filter.
func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "Nearest"
	case FilterBilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// Wrap selects how coordinates outside [0, 1] are resolved.
type Wrap uint8

const (
	// WrapClamp clamps coordinates to the edge texels.
	WrapClamp Wrap = iota

	// WrapRepeat tiles the texture.
	WrapRepeat
)

// String returns a string representation of the wrap mode.
func (w Wrap) String() string {
	switch w {
	case WrapClamp:
		return "Clamp"
	case WrapRepeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// Sample samples the texture at normalized coordinates (u, v). u grows with
// the column and v with the row index, so (0, 0) is the outer corner of
// texel (0, 0).
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	if t.Filter == FilterBilinear {
		return t.sampleBilinear(uv[0], uv[1])
	}
	return t.sampleNearest(uv[0], uv[1])
}

// SampleR samples the first channel.
func (t *Texture) SampleR(uv mgl32.Vec2) float32 {
	return t.Sample(uv)[0]
}

func (t *Texture) sampleNearest(u, v float32) mgl32.Vec4 {
	x := t.wrap(int(math32.Floor(u*float32(t.width))), t.width)
	y := t.wrap(int(math32.Floor(v*float32(t.height))), t.height)
	return t.At(x, y)
}

func (t *Texture) sampleBilinear(u, v float32) mgl32.Vec4 {
	fx := u*float32(t.width) - 0.5
	fy := v*float32(t.height) - 0.5

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x1 := t.wrap(x0+1, t.width)
	y1 := t.wrap(y0+1, t.height)
	x0 = t.wrap(x0, t.width)
	y0 = t.wrap(y0, t.height)

	c00 := t.At(x0, y0)
	c10 := t.At(x1, y0)
	c01 := t.At(x0, y1)
	c11 := t.At(x1, y1)

	top := lerp(c00, c10, tx)
	bottom := lerp(c01, c11, tx)
	return lerp(top, bottom, ty)
}

func (t *Texture) wrap(i, n int) int {
	if t.Wrap == WrapRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return clampInt(i, 0, n-1)
}

func lerp(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func clampInt(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
