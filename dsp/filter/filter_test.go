package filter

import (
	"math"
	"testing"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
	"github.com/Na1w/infinitedsp/internal/testutil"
)

func sine(freq float64, n int) []float32 {
	return testutil.Sine(freq, 44100, 1, n)
}

// steadyRMS skips the first half of the buffer so filter transients do
// not contaminate the measurement.
func steadyRMS(buf []float32) float64 {
	return testutil.RMS(buf[len(buf)/2:])
}

func TestBiquadLowPassSeparatesBands(t *testing.T) {
	low, err := NewBiquad(BiquadLowPass, param.NewConstant(500), param.NewConstant(0.707))
	if err != nil {
		t.Fatalf("NewBiquad: %v", err)
	}

	pass := sine(100, 8192)
	low.Process(pass, 0)
	if r := steadyRMS(pass); r < 0.6 {
		t.Fatalf("100 Hz through a 500 Hz lowpass: rms %g, want near 0.707", r)
	}

	low.Reset()

	stop := sine(10000, 8192)
	low.Process(stop, 0)
	if r := steadyRMS(stop); r > 0.05 {
		t.Fatalf("10 kHz through a 500 Hz lowpass: rms %g, want near 0", r)
	}
}

func TestBiquadHighPassBlocksDC(t *testing.T) {
	high, err := NewBiquad(BiquadHighPass, param.NewConstant(500), param.NewConstant(0.707))
	if err != nil {
		t.Fatalf("NewBiquad: %v", err)
	}

	buf := make([]float32, 8192)
	for i := range buf {
		buf[i] = 1
	}
	high.Process(buf, 0)

	if v := math.Abs(float64(buf[len(buf)-1])); v > 0.01 {
		t.Fatalf("highpass DC tail %g, want near 0", v)
	}
}

func TestBiquadNotchRejectsCenter(t *testing.T) {
	notch, err := NewBiquad(BiquadNotch, param.NewConstant(1000), param.NewConstant(2))
	if err != nil {
		t.Fatalf("NewBiquad: %v", err)
	}

	buf := sine(1000, 16384)
	notch.Process(buf, 0)

	if r := steadyRMS(buf); r > 0.05 {
		t.Fatalf("1 kHz through a 1 kHz notch: rms %g, want near 0", r)
	}
}

func TestBiquadBandPassPassesCenter(t *testing.T) {
	band, err := NewBiquad(BiquadBandPass, param.NewConstant(1000), param.NewConstant(2))
	if err != nil {
		t.Fatalf("NewBiquad: %v", err)
	}

	buf := sine(1000, 16384)
	band.Process(buf, 0)

	if r := steadyRMS(buf); r < 0.5 {
		t.Fatalf("1 kHz through a 1 kHz bandpass: rms %g, want near 0.707", r)
	}
}

func TestBiquadRejectsUnknownType(t *testing.T) {
	if _, err := NewBiquad(BiquadType(99), param.NewConstant(1000), param.NewConstant(1)); err == nil {
		t.Fatal("expected error for unknown biquad type")
	}
}

func TestBiquadResetMatchesFresh(t *testing.T) {
	a, err := NewBiquad(BiquadLowPass, param.NewConstant(2000), param.NewConstant(1))
	if err != nil {
		t.Fatalf("NewBiquad: %v", err)
	}

	first := sine(440, 1024)
	a.Process(first, 0)

	a.Reset()

	second := sine(440, 1024)
	a.Process(second, 0)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d diverged after reset: %g vs %g", i, first[i], second[i])
		}
	}
}

func TestSVFLowPassSeparatesBands(t *testing.T) {
	low, err := NewSVF(SVFLowPass, param.NewConstant(500), param.NewConstant(0.707))
	if err != nil {
		t.Fatalf("NewSVF: %v", err)
	}

	pass := sine(100, 8192)
	low.Process(pass, 0)
	if r := steadyRMS(pass); r < 0.6 {
		t.Fatalf("100 Hz through a 500 Hz lowpass: rms %g, want near 0.707", r)
	}

	low.Reset()

	stop := sine(10000, 8192)
	low.Process(stop, 0)
	if r := steadyRMS(stop); r > 0.05 {
		t.Fatalf("10 kHz through a 500 Hz lowpass: rms %g, want near 0", r)
	}
}

func TestSVFHighPassBlocksDC(t *testing.T) {
	high, err := NewSVF(SVFHighPass, param.NewConstant(500), param.NewConstant(0.707))
	if err != nil {
		t.Fatalf("NewSVF: %v", err)
	}

	buf := make([]float32, 8192)
	for i := range buf {
		buf[i] = 1
	}
	high.Process(buf, 0)

	if v := math.Abs(float64(buf[len(buf)-1])); v > 0.01 {
		t.Fatalf("highpass DC tail %g, want near 0", v)
	}
}

func TestSVFStableUnderCutoffSweep(t *testing.T) {
	cell := param.NewCell(200)
	low, err := NewSVF(SVFLowPass, param.NewLinked(cell), param.NewConstant(2))
	if err != nil {
		t.Fatalf("NewSVF: %v", err)
	}

	for block := 0; block < 64; block++ {
		cell.Store(float32(200 + block*250))

		buf := sine(440, 256)
		low.Process(buf, uint64(block*256))
		for i, v := range buf {
			if !core.IsFinite(float64(v)) || v > 10 || v < -10 {
				t.Fatalf("block %d sample %d = %g under cutoff sweep", block, i, v)
			}
		}
	}
}

func TestSVFRejectsUnknownType(t *testing.T) {
	if _, err := NewSVF(SVFType(99), param.NewConstant(1000), param.NewConstant(1)); err == nil {
		t.Fatal("expected error for unknown filter type")
	}
}

func TestLadderLowPassSeparatesBands(t *testing.T) {
	low := NewLadder(param.NewConstant(1000), param.NewConstant(0))

	pass := sine(100, 8192)
	low.Process(pass, 0)
	if r := steadyRMS(pass); r < 0.6 {
		t.Fatalf("100 Hz through a 1 kHz ladder: rms %g, want near 0.707", r)
	}

	low.Reset()

	stop := sine(10000, 8192)
	low.Process(stop, 0)
	if r := steadyRMS(stop); r > 0.02 {
		t.Fatalf("10 kHz through a 1 kHz ladder: rms %g, want near 0", r)
	}
}

func TestLadderHighResonanceStaysBounded(t *testing.T) {
	l := NewLadder(param.NewConstant(2000), param.NewConstant(0.95))

	buf := sine(440, 16384)
	l.Process(buf, 0)

	for i, v := range buf {
		if !core.IsFinite(float64(v)) || v > 10 || v < -10 {
			t.Fatalf("sample %d = %g at high resonance, want bounded", i, v)
		}
	}
}

func TestLadderResetSilences(t *testing.T) {
	l := NewLadder(param.NewConstant(500), param.NewConstant(0.8))

	buf := sine(440, 2048)
	l.Process(buf, 0)

	l.Reset()

	silent := make([]float32, 1024)
	l.Process(silent, 0)
	for i, v := range silent {
		if v != 0 {
			t.Fatalf("sample %d = %g after reset with silent input", i, v)
		}
	}
}

func BenchmarkBiquadLowPass(b *testing.B) {
	low, err := NewBiquad(BiquadLowPass, param.NewConstant(1000), param.NewConstant(0.707))
	if err != nil {
		b.Fatalf("NewBiquad: %v", err)
	}

	buf := sine(440, 1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		low.Process(buf, uint64(i)*1024)
	}
}

func BenchmarkLadder(b *testing.B) {
	l := NewLadder(param.NewConstant(1000), param.NewConstant(0.5))

	buf := sine(440, 1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Process(buf, uint64(i)*1024)
	}
}
