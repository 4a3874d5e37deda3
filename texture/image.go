package texture

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/deferred/internal/color"
)

// ColorSpace tells FromImage how to interpret 8-bit pixel values.
type ColorSpace uint8

const (
	// SpaceLinear stores pixel values as they are. Use it for data
	// textures such as normal maps and noise.
	SpaceLinear ColorSpace = iota

	// SpaceSRGB decodes pixel values from sRGB to linear light.
	SpaceSRGB
)

// FromImage converts img to an RGBA8Unorm texture. Alpha is
// un-premultiplied.
func FromImage(img image.Image, space ColorSpace) (*Texture, error) {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	t, err := New(b.Dx(), b.Dy(), gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return nil, err
	}
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			i := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
			p := rgba.Pix[i : i+4 : i+4]
			a := p[3]
			if a == 0 {
				t.Set(x, y, mgl32.Vec4{})
				continue
			}
			r, g, bl := unpremultiply(p[0], a), unpremultiply(p[1], a), unpremultiply(p[2], a)
			var v mgl32.Vec4
			if space == SpaceSRGB {
				v = mgl32.Vec4{color.ToLinear(r), color.ToLinear(g), color.ToLinear(bl), float32(a) / 255}
			} else {
				v = mgl32.Vec4{float32(r) / 255, float32(g) / 255, float32(bl) / 255, float32(a) / 255}
			}
			t.Set(x, y, v)
		}
	}
	return t, nil
}

// FromImageSized resamples img to width x height before converting it.
func FromImageSized(img image.Image, width, height int, space ColorSpace) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return FromImage(img, space)
	}
	return FromImage(transform.Resize(img, width, height, transform.Linear), space)
}

// Image exports the texture as non-premultiplied 8-bit RGBA. Single channel
// formats become opaque gray; two channel formats fill red and green. With
// SpaceSRGB the color channels are gamma encoded.
func (t *Texture) Image(space ColorSpace) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			v := t.At(x, y)
			switch t.channels {
			case 1:
				v = mgl32.Vec4{v[0], v[0], v[0], 1}
			case 2:
				v = mgl32.Vec4{v[0], v[1], 0, 1}
			case 3:
				v[3] = 1
			}
			encode := color.ToUnorm
			if space == SpaceSRGB {
				encode = color.ToSRGB
			}
			i := img.PixOffset(x, y)
			img.Pix[i+0] = encode(v[0])
			img.Pix[i+1] = encode(v[1])
			img.Pix[i+2] = encode(v[2])
			img.Pix[i+3] = color.ToUnorm(v[3])
		}
	}
	return img
}

func unpremultiply(c, a uint8) uint8 {
	if a == 255 {
		return c
	}
	v := (int(c)*255 + int(a)/2) / int(a)
	if v > 255 {
		v = 255
	}
	return uint8(v) //nolint:gosec // clamped above
}
