// Package blend accumulates light in linear float buffers.
//
// Buffers are spans of RGBA pixels, four float32 values per pixel, as held
// by RGBA32Float textures. Only the RGB lanes are combined; alpha in dst is
// left as it was. Spans of different length are combined over their common
// prefix of whole pixels.
package blend

// batch is the number of pixels processed per unrolled step.
const batch = 4

func pixels(dst, src []float32) int {
	return min(len(dst), len(src)) / 4
}

// Add sets dst.rgb += src.rgb.
func Add(dst, src []float32) {
	AddScaled(dst, src, 1)
}

// AddScaled sets dst.rgb += k * src.rgb.
func AddScaled(dst, src []float32, k float32) {
	n := pixels(dst, src)
	i := 0
	for ; i+batch <= n; i += batch {
		d := dst[i*4 : (i+batch)*4 : (i+batch)*4]
		s := src[i*4 : (i+batch)*4 : (i+batch)*4]
		for p := 0; p < batch*4; p += 4 {
			d[p+0] += k * s[p+0]
			d[p+1] += k * s[p+1]
			d[p+2] += k * s[p+2]
		}
	}
	for ; i < n; i++ {
		o := i * 4
		dst[o+0] += k * src[o+0]
		dst[o+1] += k * src[o+1]
		dst[o+2] += k * src[o+2]
	}
}

// Multiply sets dst.rgb *= src.rgb.
func Multiply(dst, src []float32) {
	n := pixels(dst, src)
	i := 0
	for ; i+batch <= n; i += batch {
		d := dst[i*4 : (i+batch)*4 : (i+batch)*4]
		s := src[i*4 : (i+batch)*4 : (i+batch)*4]
		for p := 0; p < batch*4; p += 4 {
			d[p+0] *= s[p+0]
			d[p+1] *= s[p+1]
			d[p+2] *= s[p+2]
		}
	}
	for ; i < n; i++ {
		o := i * 4
		dst[o+0] *= src[o+0]
		dst[o+1] *= src[o+1]
		dst[o+2] *= src[o+2]
	}
}

// MultiplyAdd sets dst.rgb = a.rgb * dst.rgb + b.rgb, the form used to
// modulate accumulated light by albedo and add a highlight on top.
func MultiplyAdd(dst, a, b []float32) {
	n := min(pixels(dst, a), pixels(dst, b))
	for i := range n {
		o := i * 4
		dst[o+0] = a[o+0]*dst[o+0] + b[o+0]
		dst[o+1] = a[o+1]*dst[o+1] + b[o+1]
		dst[o+2] = a[o+2]*dst[o+2] + b[o+2]
	}
}
