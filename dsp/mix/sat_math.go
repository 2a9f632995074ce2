//go:build !fastmath

package mix

import "math"

// satTanh computes tanh(x) using standard library math.
func satTanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
