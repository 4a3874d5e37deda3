// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package viewray reconstructs eye-space positions from screen coordinates
// and eye-space Z, using four rays through the corners of the view frustum.
//
// Each ray is scaled so that its Z component is 1 and each origin lies on
// the Z = 0 plane. A point with eye-space Z value z therefore sits at
// origin + ray*z, which holds for both perspective and orthographic
// projections.
package viewray

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/depth"
)

// Corner indexes the frustum corners. X0 and Y0 are the clip-space -1
// edges; X1 and Y1 the +1 edges.
type Corner int

const (
	X0Y0 Corner = iota
	X1Y0
	X0Y1
	X1Y1
)

// Rays holds per-corner origins and directions in eye space.
type Rays struct {
	Origins    [4]mgl32.Vec3
	Directions [4]mgl32.Vec3
}

var corners = [4]mgl32.Vec2{
	X0Y0: {-1, -1},
	X1Y0: {1, -1},
	X0Y1: {-1, 1},
	X1Y1: {1, 1},
}

// New computes rays for a projection matrix.
func New(projection mgl32.Mat4) Rays {
	return FromInverse(projection.Inv())
}

// FromInverse computes rays from an inverse projection matrix.
func FromInverse(inverseProjection mgl32.Mat4) Rays {
	var r Rays
	for i, c := range corners {
		near := unproject(inverseProjection, c.Vec3(-1))
		far := unproject(inverseProjection, c.Vec3(1))
		ray := far.Sub(near)
		ray = ray.Mul(1 / ray[2])
		r.Directions[i] = ray
		r.Origins[i] = near.Sub(ray.Mul(near[2]))
	}
	return r
}

func unproject(inv mgl32.Mat4, clip mgl32.Vec3) mgl32.Vec3 {
	p := inv.Mul4x1(clip.Vec4(1))
	return p.Vec3().Mul(1 / p[3])
}

// Interpolate returns the origin and ray for normalized screen coordinates,
// interpolating bilinearly: first along X, then along Y.
func (r Rays) Interpolate(uv mgl32.Vec2) (origin, ray mgl32.Vec3) {
	origin = bilinear(r.Origins, uv)
	ray = bilinear(r.Directions, uv)
	return origin, ray
}

// Reconstruct returns the eye-space position (w = 1) of the surface with
// signed eye-space Z eyeZ at screen coordinates uv.
func (r Rays) Reconstruct(eyeZ depth.EyeZ, uv mgl32.Vec2) mgl32.Vec4 {
	origin, ray := r.Interpolate(uv)
	return origin.Add(ray.Mul(float32(eyeZ))).Vec4(1)
}

func bilinear(v [4]mgl32.Vec3, uv mgl32.Vec2) mgl32.Vec3 {
	bottom := mix(v[X0Y0], v[X1Y0], uv[0])
	top := mix(v[X0Y1], v[X1Y1], uv[0])
	return mix(bottom, top, uv[1])
}

func mix(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
