//go:build fastmath

package mix

import (
	"github.com/meko-christian/algo-approx"
)

// satTanh computes tanh(x) using a fast exponential approximation.
// Uses the identity: tanh(x) = (e^(2x) - 1) / (e^(2x) + 1)
func satTanh(x float32) float32 {
	if x > 10 {
		return 1
	}
	if x < -10 {
		return -1
	}

	e := approx.FastExp(2 * float64(x))

	return float32((e - 1) / (e + 1))
}
