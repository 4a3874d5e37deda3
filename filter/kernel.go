package filter

import (
	"math"
	"sync"
)

// GaussianKernel returns a normalized 1D Gaussian kernel with standard
// deviation sigma. The kernel has 2*ceil(3*sigma)+1 taps.
//
// For sigma <= 0 it returns the identity kernel [1].
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}

	half := int(math.Ceil(sigma * 3))
	kernel := make([]float32, half*2+1)

	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(v)
		sum += v
	}

	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// BoxKernel returns a 1D box kernel of 2*radius+1 equal taps.
//
// Box blur is separable and cheap; variance shadow maps use it because
// their moments stay meaningful under any linear filter.
func BoxKernel(radius int) []float32 {
	if radius <= 0 {
		return []float32{1}
	}
	kernel := make([]float32, radius*2+1)
	v := 1 / float32(len(kernel))
	for i := range kernel {
		kernel[i] = v
	}
	return kernel
}

// kernelCache memoizes Gaussian kernels keyed by sigma in hundredths.
type kernelCache struct {
	mu     sync.RWMutex
	cache  map[int][]float32
	maxLen int
}

var defaultKernelCache = &kernelCache{cache: make(map[int][]float32), maxLen: 64}

func (c *kernelCache) get(sigma float64) []float32 {
	key := int(sigma * 100)

	c.mu.RLock()
	k, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return k
	}

	k = GaussianKernel(sigma)

	c.mu.Lock()
	if len(c.cache) >= c.maxLen {
		clear(c.cache)
	}
	c.cache[key] = k
	c.mu.Unlock()
	return k
}

// CachedGaussianKernel is GaussianKernel with memoization. The returned
// slice is shared and must not be modified.
func CachedGaussianKernel(sigma float64) []float32 {
	return defaultKernelCache.get(sigma)
}
