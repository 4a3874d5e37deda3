package light

import "github.com/go-gl/mathgl/mgl32"

// within reports whether every component of a and b differs by at most
// tol.
func within(a, b []float32, tol float32) bool {
	for i := range a {
		if d := a[i] - b[i]; !(d <= tol && d >= -tol) {
			return false
		}
	}
	return true
}

func approxVec3(a, b mgl32.Vec3, tol float32) bool { return within(a[:], b[:], tol) }

func approxEqual(a, b, tol float32) bool {
	d := a - b
	return d <= tol && d >= -tol
}
