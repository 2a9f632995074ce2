package interp

import (
	"math"
	"testing"
)

func TestLinearEndpoints(t *testing.T) {
	if got := Linear(0, 2, 6); got != 2 {
		t.Fatalf("Linear(0) = %v, want 2", got)
	}
	if got := Linear(1, 2, 6); got != 6 {
		t.Fatalf("Linear(1) = %v, want 6", got)
	}
	if got := Linear(0.5, 2, 6); got != 4 {
		t.Fatalf("Linear(0.5) = %v, want 4", got)
	}
}

func TestHermite4PassesThroughKnots(t *testing.T) {
	xm1, x0, x1, x2 := float32(0.1), float32(0.4), float32(-0.2), float32(0.3)

	if got := Hermite4(0, xm1, x0, x1, x2); got != x0 {
		t.Fatalf("Hermite4(0) = %v, want %v", got, x0)
	}
	if got := Hermite4(1, xm1, x0, x1, x2); math.Abs(float64(got-x1)) > 1e-6 {
		t.Fatalf("Hermite4(1) = %v, want %v", got, x1)
	}
}

func TestHermite4ReproducesLine(t *testing.T) {
	// On collinear points the cubic degenerates to the line itself.
	for _, frac := range []float32{0, 0.25, 0.5, 0.75, 1} {
		got := Hermite4(frac, -1, 0, 1, 2)
		if math.Abs(float64(got-frac)) > 1e-6 {
			t.Fatalf("Hermite4(%v) = %v, want %v", frac, got, frac)
		}
	}
}
