package deferred

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/geometry"
	"github.com/gogpu/deferred/light"
)

// Camera is the viewpoint of a frame.
type Camera struct {
	// View maps world space to eye space.
	View mgl32.Mat4
	// Projection maps eye space to clip space.
	Projection mgl32.Mat4
	// Near and Far bound the visible distance.
	Near, Far float32
}

// NewCamera returns a perspective camera at eye looking at center. fovy is
// the vertical field of view in degrees.
func NewCamera(eye, center, up mgl32.Vec3, fovy, aspect, near, far float32) Camera {
	return Camera{
		View:       mgl32.LookAtV(eye, center, up),
		Projection: mgl32.Perspective(mgl32.DegToRad(fovy), aspect, near, far),
		Near:       near,
		Far:        far,
	}
}

// Frame is everything a single render reads.
type Frame struct {
	Camera    Camera
	Instances []geometry.Instance
	Lights    []light.Light
	// Ambient, if set, is added to the lights. With SSAO enabled it is the
	// light that the occlusion darkens.
	Ambient *light.Ambient
	// DepthCoefficient encodes G-buffer depth. Zero derives it from
	// Camera.Far.
	DepthCoefficient float32
}

// depthCoefficient returns the coefficient the frame renders with.
func (f *Frame) depthCoefficient() (float32, error) {
	c := f.DepthCoefficient
	if c == 0 {
		c = depth.Coefficient(f.Camera.Far)
	}
	if !(c > 0) || math32.IsInf(c, 0) {
		return 0, ErrInvalidDepthCoefficient
	}
	return c, nil
}
