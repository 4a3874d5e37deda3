package shadow

func approxEqual(a, b, tol float32) bool {
	d := a - b
	return d <= tol && d >= -tol
}
