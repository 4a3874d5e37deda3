// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package reconstruct

import "strings"

// Mode selects which G-buffer attachments are sampled during
// reconstruction. Depth is always read. Channels that are not sampled
// receive zero values, and the normal defaults to (0, 0, 1).
//
// The zero Mode samples every attachment.
type Mode uint8

const (
	// ModeAlbedoEmission samples albedo and emission.
	ModeAlbedoEmission Mode = 1 << iota
	// ModeNormal samples and decompresses the normal.
	ModeNormal
	// ModeSpecular samples specular color and exponent.
	ModeSpecular
	// ModeDepth reads depth only and overrides the other flags.
	ModeDepth

	// ModeFull samples every attachment.
	ModeFull = ModeAlbedoEmission | ModeNormal | ModeSpecular
	// ModeNormalSpecular samples what a light buffer pass needs.
	ModeNormalSpecular = ModeNormal | ModeSpecular
)

// Resolve returns the effective channel set of m.
func (m Mode) Resolve() Mode {
	switch {
	case m&ModeDepth != 0:
		return ModeDepth
	case m == 0:
		return ModeFull
	default:
		return m
	}
}

// Has reports whether m samples every channel in c.
func (m Mode) Has(c Mode) bool {
	return c != 0 && m.Resolve()&c == c
}

// String lists the sampled channels.
func (m Mode) String() string {
	r := m.Resolve()
	if r == ModeDepth {
		return "depth"
	}
	var parts []string
	if r.Has(ModeAlbedoEmission) {
		parts = append(parts, "albedo")
	}
	if r.Has(ModeNormal) {
		parts = append(parts, "normal")
	}
	if r.Has(ModeSpecular) {
		parts = append(parts, "specular")
	}
	return strings.Join(parts, "|")
}

// OutputTarget selects where light contributions are written.
type OutputTarget uint8

const (
	// TargetLightBuffer accumulates separate diffuse and specular light,
	// combined with albedo later by a light applicator.
	TargetLightBuffer OutputTarget = iota

	// TargetImageBuffer writes albedo-modulated light directly into a
	// color image.
	TargetImageBuffer
)

// String returns the target name.
func (t OutputTarget) String() string {
	switch t {
	case TargetLightBuffer:
		return "light-buffer"
	case TargetImageBuffer:
		return "image-buffer"
	default:
		return "unknown"
	}
}

// ForTarget adjusts m for an output target. Image buffer output needs
// albedo and emission to modulate the light.
func (m Mode) ForTarget(t OutputTarget) Mode {
	r := m.Resolve()
	if t != TargetImageBuffer {
		return r
	}
	if r == ModeDepth {
		return ModeAlbedoEmission
	}
	return r | ModeAlbedoEmission
}

// Union returns the mode that samples every channel any of modes samples.
// It is ModeDepth when none of them samples more than depth.
func Union(modes ...Mode) Mode {
	var u Mode
	for _, m := range modes {
		if r := m.Resolve(); r != ModeDepth {
			u |= r
		}
	}
	if u == 0 {
		return ModeDepth
	}
	return u
}
