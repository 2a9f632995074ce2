//go:build !fastmath

package effects

import "math"

// mathExp computes e^x using standard library math.
func mathExp(x float64) float64 {
	return math.Exp(x)
}

// mathLinearToDB converts linear amplitude to dB using standard
// library math.
func mathLinearToDB(x float64) float64 {
	return 20 * math.Log10(x)
}

// mathDBToLinear converts dB to linear amplitude using standard
// library math.
func mathDBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}
