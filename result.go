package deferred

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"

	"github.com/gogpu/deferred/gbuffer"
	"github.com/gogpu/deferred/geometry"
	"github.com/gogpu/deferred/texture"
)

// Result holds the buffers of a rendered frame. All textures use window
// coordinates, row 0 at the bottom.
type Result struct {
	GBuffer *gbuffer.Buffer
	// Diffuse and Specular hold accumulated light for TargetLightBuffer
	// output and are nil otherwise.
	Diffuse  *texture.Texture
	Specular *texture.Texture
	// Occlusion is the blurred SSAO term, nil unless SSAO is enabled.
	Occlusion *texture.Texture
	// Color is the final frame in linear light.
	Color *texture.Texture
	// Stats reports the geometry pass.
	Stats            geometry.Stats
	DepthCoefficient float32
}

// Image returns the frame as sRGB pixels with row 0 at the top.
func (r *Result) Image() *image.RGBA {
	return transform.FlipV(r.Color.Image(texture.SpaceSRGB))
}

// Scaled returns Image resampled to width x height, typically to
// downsample a supersampled frame.
func (r *Result) Scaled(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	src := r.Image()
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		return src, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// SavePNG writes img to a PNG file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
