//go:build fastmath

package filter

import (
	"github.com/meko-christian/algo-approx"
)

// ladderTanh computes tanh(x) using a fast exponential approximation.
// Uses the identity: tanh(x) = (e^(2x) - 1) / (e^(2x) + 1)
func ladderTanh(x float64) float64 {
	if x > 10 {
		return 1
	}
	if x < -10 {
		return -1
	}

	e := approx.FastExp(2 * x)

	return (e - 1) / (e + 1)
}
