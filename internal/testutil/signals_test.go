package testutil

import (
	"math"
	"testing"
)

func TestSineStartsAtZero(t *testing.T) {
	s := Sine(1000, 48000, 1, 128)
	if len(s) != 128 {
		t.Fatalf("len = %d, want 128", len(s))
	}
	if s[0] != 0 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	if s[12] <= 0 {
		t.Fatalf("quarter cycle sample %v, want positive", s[12])
	}
}

func TestNoiseIsDeterministic(t *testing.T) {
	a := Noise(42, 1, 256)
	b := Noise(42, 1, 256)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: %v != %v for same seed", i, a[i], b[i])
		}
	}

	c := Noise(43, 1, 256)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestImpulsePlacement(t *testing.T) {
	imp := Impulse(8, 3)
	for i, v := range imp {
		want := float32(0)
		if i == 3 {
			want = 1
		}
		if v != want {
			t.Fatalf("imp[%d] = %v, want %v", i, v, want)
		}
	}

	if out := Impulse(4, 10); out[0] != 0 {
		t.Fatal("out-of-range position must leave the signal empty")
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(Ones(64)); math.Abs(got-1) > 1e-9 {
		t.Fatalf("RMS of ones = %v, want 1", got)
	}
	if got := RMS(Sine(1000, 48000, 1, 48000)); math.Abs(got-math.Sqrt2/2) > 1e-3 {
		t.Fatalf("RMS of unit sine = %v, want ~0.707", got)
	}
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS of empty = %v, want 0", got)
	}
}
