package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 1); got != 1 {
		t.Fatalf("Clamp(5,0,1) = %v, want 1", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Fatalf("Clamp(-5,0,1) = %v, want 0", got)
	}
	if got := Clamp(0.5, 1, 0); got != 0.5 {
		t.Fatalf("Clamp with swapped bounds = %v, want 0.5", got)
	}
}

func TestClamp32(t *testing.T) {
	if got := Clamp32(2, -1, 1); got != 1 {
		t.Fatalf("Clamp32(2,-1,1) = %v, want 1", got)
	}
}

func TestDBConversionsRoundTrip(t *testing.T) {
	for _, db := range []float64{-24, -6, 0, 6} {
		lin := DBToLinear(db)
		back := LinearToDB(lin)
		if math.Abs(back-db) > 1e-9 {
			t.Fatalf("round trip %v dB -> %v", db, back)
		}
	}

	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatalf("LinearToDB(0) should be -Inf")
	}
}

func TestFlushDenormals32(t *testing.T) {
	if got := FlushDenormals32(1e-30); got != 0 {
		t.Fatalf("denormal not flushed: %v", got)
	}
	if got := FlushDenormals32(0.5); got != 0.5 {
		t.Fatalf("normal value altered: %v", got)
	}
}
