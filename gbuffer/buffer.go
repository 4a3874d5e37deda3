// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gbuffer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/normal"
	"github.com/gogpu/deferred/texture"
)

// ErrSizeMismatch is returned when attachments do not share dimensions.
var ErrSizeMismatch = errors.New("gbuffer: attachment size mismatch")

// ClearDepth is the depth value written by Clear. With a coefficient from
// depth.Coefficient(far), every surface nearer than far encodes below it.
const ClearDepth = 1

// Buffer holds the four G-buffer attachments.
//
// Write performs a depth test per pixel and is not synchronized. The
// geometry pass partitions pixels into tiles so that no two goroutines
// write the same pixel.
type Buffer struct {
	Albedo   *texture.Texture
	Normal   *texture.Texture
	Specular *texture.Texture
	Depth    *texture.Texture

	layout Layout
}

// New allocates a cleared buffer with DefaultLayout.
func New(width, height int) (*Buffer, error) {
	return NewWithLayout(width, height, DefaultLayout)
}

// NewWithLayout allocates a cleared buffer with the given layout. The
// layout may raise precision (for example RGBA32Float albedo) but must keep
// the channel counts of DefaultLayout.
func NewWithLayout(width, height int, layout Layout) (*Buffer, error) {
	var texs [attachmentCount]*texture.Texture
	for _, a := range Attachments() {
		t, err := texture.New(width, height, layout[a])
		if err != nil {
			return nil, fmt.Errorf("gbuffer: %s attachment: %w", a, err)
		}
		texs[a] = t
	}
	return FromTextures(texs[AttachmentAlbedo], texs[AttachmentNormal], texs[AttachmentSpecular], texs[AttachmentDepth])
}

// FromTextures assembles a buffer from existing attachments and clears it.
func FromTextures(albedo, nrm, specular, dep *texture.Texture) (*Buffer, error) {
	texs := [attachmentCount]*texture.Texture{albedo, nrm, specular, dep}
	want := [attachmentCount]int{4, 2, 4, 1}
	var layout Layout
	for _, a := range Attachments() {
		t := texs[a]
		if t == nil || !t.SameSize(albedo) {
			return nil, fmt.Errorf("%w: %s", ErrSizeMismatch, a)
		}
		if t.Channels() != want[a] {
			return nil, fmt.Errorf("gbuffer: %s attachment: %w: %s", a, texture.ErrInvalidFormat, t.Format())
		}
		layout[a] = t.Format()
	}
	b := &Buffer{Albedo: albedo, Normal: nrm, Specular: specular, Depth: dep, layout: layout}
	b.Clear()
	return b, nil
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.Albedo.Width() }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.Albedo.Height() }

// Layout returns the attachment formats.
func (b *Buffer) Layout() Layout { return b.layout }

// Texture returns the texture backing attachment a.
func (b *Buffer) Texture(a Attachment) *texture.Texture {
	switch a {
	case AttachmentAlbedo:
		return b.Albedo
	case AttachmentNormal:
		return b.Normal
	case AttachmentSpecular:
		return b.Specular
	case AttachmentDepth:
		return b.Depth
	default:
		return nil
	}
}

// Clear resets albedo and specular to zero, the normal to the compressed
// default normal and depth to ClearDepth.
func (b *Buffer) Clear() {
	b.Albedo.Clear()
	b.Specular.Clear()
	n := normal.Compress(normal.Default)
	b.Normal.Fill(n.Vec4(0, 0))
	b.Depth.Fill(mgl32.Vec4{ClearDepth})
}

// Covered reports whether any surface was written at (x, y).
func (b *Buffer) Covered(x, y int) bool {
	return b.Depth.R(x, y) < ClearDepth
}

// DepthAt returns the encoded depth at (x, y).
func (b *Buffer) DepthAt(x, y int) float32 {
	return b.Depth.R(x, y)
}

// Write stores r at (x, y) if r.Depth is nearer than the stored depth and
// reports whether it did.
func (b *Buffer) Write(x, y int, r Record) bool {
	if !b.Depth.In(x, y) || !(r.Depth < b.Depth.R(x, y)) {
		return false
	}
	t := r.Encode()
	b.Albedo.Set(x, y, t.Albedo)
	b.Normal.Set(x, y, t.Normal.Vec4(0, 0))
	b.Specular.Set(x, y, t.Specular)
	b.Depth.SetR(x, y, t.Depth)
	return true
}

// Read returns the decoded record stored at (x, y).
func (b *Buffer) Read(x, y int) Record {
	return Texels{
		Albedo:   b.Albedo.At(x, y),
		Normal:   b.Normal.At(x, y).Vec2(),
		Specular: b.Specular.At(x, y),
		Depth:    b.Depth.R(x, y),
	}.Decode()
}
