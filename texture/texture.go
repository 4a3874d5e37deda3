// Package texture provides the float-backed 2D textures used for G-buffer
// attachments, light buffers, shadow maps and material inputs.
//
// Each texture declares a storage format from gputypes. Values written with
// [Texture.Set] are quantized the way the GPU format would store them, so a
// round trip through a texture shows the same precision loss as a real
// render target.
package texture

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Common errors for texture operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("texture: invalid dimensions")

	// ErrInvalidFormat is returned for storage formats the software pipeline
	// does not implement.
	ErrInvalidFormat = errors.New("texture: unsupported format")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("texture: data buffer too small")
)

// quantization describes how a format stores a channel.
type quantization uint8

const (
	quantFloat quantization = iota
	quantUnorm8
	quantUnorm16
)

type formatInfo struct {
	channels int
	quant    quantization
}

var formatTable = map[gputypes.TextureFormat]formatInfo{
	gputypes.TextureFormatR8Unorm:      {1, quantUnorm8},
	gputypes.TextureFormatR16Unorm:     {1, quantUnorm16},
	gputypes.TextureFormatR32Float:     {1, quantFloat},
	gputypes.TextureFormatRG8Unorm:     {2, quantUnorm8},
	gputypes.TextureFormatRG16Unorm:    {2, quantUnorm16},
	gputypes.TextureFormatRG32Float:    {2, quantFloat},
	gputypes.TextureFormatRGBA8Unorm:   {4, quantUnorm8},
	gputypes.TextureFormatRGBA16Unorm:  {4, quantUnorm16},
	gputypes.TextureFormatRGBA32Float:  {4, quantFloat},
	gputypes.TextureFormatDepth32Float: {1, quantFloat},
}

// Supported reports whether the software pipeline can store format.
func Supported(format gputypes.TextureFormat) bool {
	_, ok := formatTable[format]
	return ok
}

// Texture is a 2D array of float32 texels with 1 to 4 channels.
//
// Thread safety: concurrent reads are safe. Concurrent writes to distinct
// texels are safe; the tile scheduler relies on this.
type Texture struct {
	width    int
	height   int
	channels int
	format   gputypes.TextureFormat
	quant    quantization
	data     []float32

	// Filter and Wrap control Sample. They default to nearest and clamp.
	Filter Filter
	Wrap   Wrap
}

// New allocates a zeroed texture.
func New(width, height int, format gputypes.TextureFormat) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	info, ok := formatTable[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
	return &Texture{
		width:    width,
		height:   height,
		channels: info.channels,
		format:   format,
		quant:    info.quant,
		data:     make([]float32, width*height*info.channels),
	}, nil
}

// FromData wraps existing texel data, quantizing it to the format.
func FromData(width, height int, format gputypes.TextureFormat, data []float32) (*Texture, error) {
	t, err := New(width, height, format)
	if err != nil {
		return nil, err
	}
	if len(data) < len(t.data) {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrDataTooSmall, len(data), len(t.data))
	}
	for i := range t.data {
		t.data[i] = t.quantize(data[i])
	}
	return t, nil
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Channels returns the number of stored channels.
func (t *Texture) Channels() int { return t.channels }

// Format returns the storage format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Pix returns the raw texel data, row-major with Channels values per texel.
func (t *Texture) Pix() []float32 { return t.data }

// Row returns the raw texel data of row y.
func (t *Texture) Row(y int) []float32 {
	n := t.width * t.channels
	return t.data[y*n : (y+1)*n : (y+1)*n]
}

// offset returns the index of the first channel of texel (x, y).
func (t *Texture) offset(x, y int) int {
	return (y*t.width + x) * t.channels
}

// In reports whether (x, y) lies inside the texture.
func (t *Texture) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < t.width && y < t.height
}

// At returns the texel at (x, y). Missing channels read as zero. Out of
// range coordinates return the zero vector.
func (t *Texture) At(x, y int) mgl32.Vec4 {
	var v mgl32.Vec4
	if !t.In(x, y) {
		return v
	}
	o := t.offset(x, y)
	copy(v[:t.channels], t.data[o:o+t.channels])
	return v
}

// R returns the first channel of texel (x, y).
func (t *Texture) R(x, y int) float32 {
	if !t.In(x, y) {
		return 0
	}
	return t.data[t.offset(x, y)]
}

// Set stores v at (x, y), dropping channels the format lacks and
// quantizing the rest. Out of range coordinates are ignored.
func (t *Texture) Set(x, y int, v mgl32.Vec4) {
	if !t.In(x, y) {
		return
	}
	o := t.offset(x, y)
	for c := 0; c < t.channels; c++ {
		t.data[o+c] = t.quantize(v[c])
	}
}

// SetR stores a single-channel value at (x, y).
func (t *Texture) SetR(x, y int, v float32) {
	if !t.In(x, y) {
		return
	}
	t.data[t.offset(x, y)] = t.quantize(v)
}

// Fill sets every texel to v.
func (t *Texture) Fill(v mgl32.Vec4) {
	if len(t.data) == 0 {
		return
	}
	for c := 0; c < t.channels; c++ {
		t.data[c] = t.quantize(v[c])
	}
	for i := t.channels; i < len(t.data); i += copy(t.data[i:], t.data[:i]) {
	}
}

// Clear zeroes the texture.
func (t *Texture) Clear() {
	clear(t.data)
}

// Clone returns a deep copy.
func (t *Texture) Clone() *Texture {
	c := *t
	c.data = make([]float32, len(t.data))
	copy(c.data, t.data)
	return &c
}

// SameSize reports whether t and o have the same dimensions.
func (t *Texture) SameSize(o *Texture) bool {
	return o != nil && t.width == o.width && t.height == o.height
}

func (t *Texture) quantize(v float32) float32 {
	switch t.quant {
	case quantUnorm8:
		return quantizeUnorm(v, 255)
	case quantUnorm16:
		return quantizeUnorm(v, 65535)
	default:
		return v
	}
}

func quantizeUnorm(v, levels float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return float32(int(v*levels+0.5)) / levels
}
