package config

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

func approxVec4(a, b mgl32.Vec4, tol float32) bool { return within(a[:], b[:], tol) }
