// Package light evaluates light models against reconstructed surfaces.
//
// Every model is a pure function of a [reconstruct.Surface] and its own
// parameters that yields separate diffuse and specular contributions.
// Contributions from several lights are summed by the caller; a light
// never reads what other lights produced.
package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/reconstruct"
)

// Limits applied by constructors and Attenuation.
const (
	MinimumRadius  = 0.001
	MinimumFalloff = 0.001
)

// Output is the contribution of one light to one fragment.
type Output struct {
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

// Add returns the sum of o and p.
func (o Output) Add(p Output) Output {
	return Output{Diffuse: o.Diffuse.Add(p.Diffuse), Specular: o.Specular.Add(p.Specular)}
}

// Scale returns o with both terms multiplied by k.
func (o Output) Scale(k float32) Output {
	return Output{Diffuse: o.Diffuse.Mul(k), Specular: o.Specular.Mul(k)}
}

// View carries the camera transform so that lights given in world space can
// be evaluated against eye-space surfaces.
type View struct {
	// Matrix maps world space to eye space.
	Matrix mgl32.Mat4
	// Inverse maps eye space back to world space.
	Inverse mgl32.Mat4
}

// NewView returns the View for a camera view matrix.
func NewView(view mgl32.Mat4) *View {
	return &View{Matrix: view, Inverse: view.Inv()}
}

// Point transforms a world-space point into eye space.
func (v *View) Point(p mgl32.Vec3) mgl32.Vec3 {
	return v.Matrix.Mul4x1(p.Vec4(1)).Vec3()
}

// Direction transforms a world-space direction into eye space.
func (v *View) Direction(d mgl32.Vec3) mgl32.Vec3 {
	return v.Matrix.Mul4x1(d.Vec4(0)).Vec3()
}

// World transforms an eye-space position into world space.
func (v *View) World(p mgl32.Vec4) mgl32.Vec3 {
	return v.Inverse.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1}).Vec3()
}

// Light is a light model.
type Light interface {
	// Mode reports which G-buffer attachments Evaluate reads.
	Mode() reconstruct.Mode
	// Evaluate returns the light's contribution to s, whose position and
	// normal are in the eye space of v.
	Evaluate(v *View, s *reconstruct.Surface) Output
}

// Vectors are the unit vectors a light model needs at a fragment.
type Vectors struct {
	SurfaceToLight  mgl32.Vec3
	SurfaceToViewer mgl32.Vec3
	Normal          mgl32.Vec3
	// Distance from the surface to a positional light; zero for
	// directional lights.
	Distance float32
}

// DirectionalVectors derives vectors for a light travelling along the
// eye-space direction.
func DirectionalVectors(direction mgl32.Vec3, s *reconstruct.Surface) Vectors {
	return Vectors{
		SurfaceToLight:  normalize(direction.Mul(-1), mgl32.Vec3{0, 0, 1}),
		SurfaceToViewer: toViewer(s),
		Normal:          s.Normal,
	}
}

// PositionalVectors derives vectors for a light at an eye-space position.
func PositionalVectors(position mgl32.Vec3, s *reconstruct.Surface) Vectors {
	d := position.Sub(s.Position.Vec3())
	return Vectors{
		SurfaceToLight:  normalize(d, s.Normal),
		SurfaceToViewer: toViewer(s),
		Normal:          s.Normal,
		Distance:        d.Len(),
	}
}

func toViewer(s *reconstruct.Surface) mgl32.Vec3 {
	return normalize(s.Position.Vec3().Mul(-1), mgl32.Vec3{0, 0, 1})
}

func normalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if !(l > 1e-12) || math32.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}

// Attenuation returns 1 - clamp((distance/radius)^(1/falloff), 0, 1): 1 at
// the light, 0 at radius and beyond. Larger falloff values drop off
// faster near the light.
func Attenuation(distance, radius, falloff float32) float32 {
	if !(radius >= MinimumRadius) {
		radius = MinimumRadius
	}
	if !(falloff >= MinimumFalloff) {
		falloff = MinimumFalloff
	}
	if !(distance > 0) {
		return 1
	}
	return 1 - mgl32.Clamp(math32.Pow(distance/radius, 1/falloff), 0, 1)
}

// Lambert is the diffuse term max(0, N·L).
func Lambert(v Vectors) float32 {
	return math32.Max(0, v.Normal.Dot(v.SurfaceToLight))
}

// Phong is the specular term max(0, R·L)^exponent, with R the view vector
// reflected about the normal.
func Phong(v Vectors, exponent float32) float32 {
	r := reflect(v.SurfaceToViewer.Mul(-1), v.Normal)
	return pow(math32.Max(0, r.Dot(v.SurfaceToLight)), exponent)
}

// BlinnPhong is the specular term max(0, N·H)^exponent, with H the half
// vector between the light and the viewer.
func BlinnPhong(v Vectors, exponent float32) float32 {
	h := normalize(v.SurfaceToLight.Add(v.SurfaceToViewer), mgl32.Vec3{})
	return pow(math32.Max(0, v.Normal.Dot(h)), exponent)
}

func reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

func pow(x, e float32) float32 {
	if e <= 0 {
		return 1
	}
	return math32.Pow(x, e)
}

// SpecularModel selects the specular term of a light.
type SpecularModel uint8

const (
	SpecularNone SpecularModel = iota
	SpecularPhong
	SpecularBlinnPhong
)

// String returns the model name.
func (m SpecularModel) String() string {
	switch m {
	case SpecularNone:
		return "none"
	case SpecularPhong:
		return "phong"
	case SpecularBlinnPhong:
		return "blinn-phong"
	default:
		return "unknown"
	}
}

// Term evaluates the specular term.
func (m SpecularModel) Term(v Vectors, exponent float32) float32 {
	switch m {
	case SpecularPhong:
		return Phong(v, exponent)
	case SpecularBlinnPhong:
		return BlinnPhong(v, exponent)
	default:
		return 0
	}
}

// mode returns the reconstruction mode of a lit model.
func (m SpecularModel) mode() reconstruct.Mode {
	if m == SpecularNone {
		return reconstruct.ModeNormal
	}
	return reconstruct.ModeNormal | reconstruct.ModeSpecular
}

// shade combines the diffuse and specular terms of a lit model.
func shade(v Vectors, s *reconstruct.Surface, m SpecularModel, c mgl32.Vec3, k float32) Output {
	out := Output{Diffuse: c.Mul(Lambert(v) * k)}
	if m != SpecularNone {
		t := m.Term(v, s.SpecularExponent) * k
		out.Specular = mgl32.Vec3{c[0] * s.Specular[0] * t, c[1] * s.Specular[1] * t, c[2] * s.Specular[2] * t}
	}
	return out
}

func clampIntensity(i float32) float32 {
	if !(i > 0) {
		return 0
	}
	return i
}
