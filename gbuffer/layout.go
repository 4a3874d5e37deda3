// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gbuffer defines the surface buffer written by the geometry pass
// and read by every light pass.
//
// The layout is fixed:
//
//	albedo    RGBA8Unorm    rgb = albedo, a = emission
//	normal    RG16Unorm     spheremap-compressed eye-space normal
//	specular  RGBA8Unorm    rgb = specular color, a = exponent / 256
//	depth     Depth32Float  logarithmic depth (see package depth)
//
// Every reader and writer must agree on this table; shaders in package
// shaders use the same channel assignment.
package gbuffer

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Attachment identifies one of the G-buffer textures.
type Attachment uint8

const (
	// AttachmentAlbedo holds albedo and emission.
	AttachmentAlbedo Attachment = iota
	// AttachmentNormal holds the compressed normal.
	AttachmentNormal
	// AttachmentSpecular holds specular color and exponent.
	AttachmentSpecular
	// AttachmentDepth holds logarithmic depth.
	AttachmentDepth

	attachmentCount
)

// String returns the attachment name.
func (a Attachment) String() string {
	switch a {
	case AttachmentAlbedo:
		return "albedo"
	case AttachmentNormal:
		return "normal"
	case AttachmentSpecular:
		return "specular"
	case AttachmentDepth:
		return "depth"
	default:
		return fmt.Sprintf("Attachment(%d)", uint8(a))
	}
}

// Attachments lists every attachment in binding order.
func Attachments() []Attachment {
	return []Attachment{AttachmentAlbedo, AttachmentNormal, AttachmentSpecular, AttachmentDepth}
}

// Layout maps attachments to storage formats.
type Layout [attachmentCount]gputypes.TextureFormat

// DefaultLayout is the canonical G-buffer layout.
var DefaultLayout = Layout{
	AttachmentAlbedo:   gputypes.TextureFormatRGBA8Unorm,
	AttachmentNormal:   gputypes.TextureFormatRG16Unorm,
	AttachmentSpecular: gputypes.TextureFormatRGBA8Unorm,
	AttachmentDepth:    gputypes.TextureFormatDepth32Float,
}

// Format returns the storage format of attachment a.
func (l Layout) Format(a Attachment) gputypes.TextureFormat {
	if a >= attachmentCount {
		return gputypes.TextureFormatUndefined
	}
	return l[a]
}

// Descriptors returns GPU texture descriptors for a width x height
// G-buffer, in binding order. GPU renderers use them to allocate
// attachments compatible with buffers produced here.
func (l Layout) Descriptors(width, height int) []gputypes.TextureDescriptor {
	descs := make([]gputypes.TextureDescriptor, 0, attachmentCount)
	for _, a := range Attachments() {
		descs = append(descs, gputypes.TextureDescriptor{
			Label: "gbuffer-" + a.String(),
			Size: gputypes.Extent3D{
				Width:              uint32(width),  //nolint:gosec // dimensions validated by callers
				Height:             uint32(height), //nolint:gosec // dimensions validated by callers
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        l[a],
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
		})
	}
	return descs
}
