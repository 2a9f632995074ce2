//go:build fastmath

package effects

import (
	"github.com/meko-christian/algo-approx"
)

// ln10 is the natural logarithm of 10, used for dB conversions.
const ln10 = 2.302585092994045684017991454684

// mathExp computes e^x using fast approximation.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}

// mathLinearToDB converts linear amplitude to dB using fast
// approximation. Uses the identity: log10(x) = ln(x) / ln(10)
func mathLinearToDB(x float64) float64 {
	return 20 * approx.FastLog(x) / ln10
}

// mathDBToLinear converts dB to linear amplitude using fast
// approximation. Uses the identity: 10^x = e^(x * ln(10))
func mathDBToLinear(db float64) float64 {
	return approx.FastExp(db / 20 * ln10)
}
