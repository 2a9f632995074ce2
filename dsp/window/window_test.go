package window

import (
	"math"
	"testing"
)

func TestGenerateAllTypes(t *testing.T) {
	types := []Type{
		TypeRectangular,
		TypeHann,
		TypeHamming,
		TypeBlackman,
		TypeBlackmanHarris,
		TypeFlatTop,
	}

	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
				if v < -0.1 || v > 1.1 {
					t.Fatalf("coefficient[%d] out of range: %v", i, v)
				}
			}
		})
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("expected nil for length 0, got %v", w)
	}
	if w := Generate(TypeHann, -3); w != nil {
		t.Fatalf("expected nil for negative length, got %v", w)
	}
}

func TestSymmetricHannEndpoints(t *testing.T) {
	w := Generate(TypeHann, 9)

	if math.Abs(w[0]) > 1e-12 || math.Abs(w[8]) > 1e-12 {
		t.Fatalf("symmetric Hann endpoints %v, %v, want 0", w[0], w[8])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("symmetric Hann midpoint %v, want 1", w[4])
	}
}

func TestSymmetry(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris} {
		w := Generate(typ, 65)
		for i := 0; i < len(w)/2; i++ {
			if math.Abs(w[i]-w[len(w)-1-i]) > 1e-12 {
				t.Fatalf("%v asymmetric at %d: %v vs %v", typ, i, w[i], w[len(w)-1-i])
			}
		}
	}
}

func TestPeriodicHannOverlapAddsToUnity(t *testing.T) {
	const n = 64

	w := Generate(TypeHann, n, WithPeriodic())

	for i := 0; i < n/2; i++ {
		sum := w[i] + w[i+n/2]
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("w[%d]+w[%d] = %v, want 1", i, i+n/2, sum)
		}
	}
}

func TestApplyScalesBuffer(t *testing.T) {
	buf := make([]float64, 16)
	for i := range buf {
		buf[i] = 2
	}

	Apply(TypeHann, buf)

	w := Generate(TypeHann, 16)
	for i := range buf {
		if math.Abs(buf[i]-2*w[i]) > 1e-12 {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], 2*w[i])
		}
	}
}

func TestApplyCoefficientsLengthMismatch(t *testing.T) {
	if _, err := ApplyCoefficients(make([]float64, 4), make([]float64, 5)); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
	if err := ApplyCoefficientsInPlace(make([]float64, 4), make([]float64, 5)); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestCoherentGain(t *testing.T) {
	rect := Generate(TypeRectangular, 32)
	gain, err := CoherentGain(rect)
	if err != nil {
		t.Fatalf("CoherentGain: %v", err)
	}
	if math.Abs(gain-1) > 1e-12 {
		t.Fatalf("rectangular coherent gain %v, want 1", gain)
	}

	hann := Generate(TypeHann, 4096, WithPeriodic())
	gain, err = CoherentGain(hann)
	if err != nil {
		t.Fatalf("CoherentGain: %v", err)
	}
	if math.Abs(gain-0.5) > 1e-3 {
		t.Fatalf("hann coherent gain %v, want ~0.5", gain)
	}

	if _, err := CoherentGain(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}
}

func TestEquivalentNoiseBandwidth(t *testing.T) {
	rect := Generate(TypeRectangular, 64)
	enbw, err := EquivalentNoiseBandwidth(rect)
	if err != nil {
		t.Fatalf("EquivalentNoiseBandwidth: %v", err)
	}
	if math.Abs(enbw-1) > 1e-12 {
		t.Fatalf("rectangular ENBW %v, want 1", enbw)
	}

	hann := Generate(TypeHann, 4096, WithPeriodic())
	enbw, err = EquivalentNoiseBandwidth(hann)
	if err != nil {
		t.Fatalf("EquivalentNoiseBandwidth: %v", err)
	}
	if math.Abs(enbw-1.5) > 1e-3 {
		t.Fatalf("hann ENBW %v, want ~1.5", enbw)
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}
	if _, err := EquivalentNoiseBandwidth(Generate(TypeHann, 1)); err == nil {
		t.Fatal("expected error for zero coherent gain")
	}
}
