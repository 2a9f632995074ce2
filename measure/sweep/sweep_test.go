package sweep

import (
	"math"
	"testing"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/effects"
	"github.com/Na1w/infinitedsp/dsp/filter"
	"github.com/Na1w/infinitedsp/dsp/param"
)

func TestResponsePassthroughIsFlat(t *testing.T) {
	points, err := Response(func() core.Processor[core.Mono] {
		return effects.NewPassthrough[core.Mono]()
	}, Config{
		SampleRate:      48000,
		StartFreq:       100,
		EndFreq:         10000,
		PointsPerOctave: 3,
	})
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if len(points) < 10 {
		t.Fatalf("got %d points, want full sweep coverage", len(points))
	}

	for _, p := range points {
		if math.Abs(p.GainDB) > 0.5 {
			t.Fatalf("passthrough gain at %g Hz = %g dB, want ~0", p.Frequency, p.GainDB)
		}
	}
}

func TestResponseLowpassRollsOff(t *testing.T) {
	points, err := Response(func() core.Processor[core.Mono] {
		f, err := filter.NewBiquad(filter.BiquadLowPass, param.NewConstant(1000), param.NewConstant(0.707))
		if err != nil {
			t.Fatalf("NewBiquad: %v", err)
		}
		return f
	}, Config{
		SampleRate:      48000,
		StartFreq:       50,
		EndFreq:         20000,
		PointsPerOctave: 3,
	})
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	first := points[0]
	last := points[len(points)-1]

	if math.Abs(first.GainDB) > 1 {
		t.Fatalf("passband gain at %g Hz = %g dB, want ~0", first.Frequency, first.GainDB)
	}
	if last.GainDB > -30 {
		t.Fatalf("stopband gain at %g Hz = %g dB, want below -30", last.Frequency, last.GainDB)
	}
}

func TestResponseValidation(t *testing.T) {
	factory := func() core.Processor[core.Mono] {
		return effects.NewPassthrough[core.Mono]()
	}

	if _, err := Response(factory, Config{StartFreq: 1000, EndFreq: 100, SampleRate: 48000}); err == nil {
		t.Fatal("expected error for reversed frequency order")
	}
	if _, err := Response(factory, Config{StartFreq: 100, EndFreq: 30000, SampleRate: 48000}); err == nil {
		t.Fatal("expected error for end frequency above Nyquist")
	}
	if _, err := Response(func() core.Processor[core.Mono] { return nil }, Config{}); err == nil {
		t.Fatal("expected error for nil processor")
	}
}

func TestLogSweepValidate(t *testing.T) {
	cases := []struct {
		name  string
		sweep LogSweep
		want  error
	}{
		{"negative start", LogSweep{StartFreq: -1, EndFreq: 1000, Duration: 1, SampleRate: 48000}, ErrInvalidFrequency},
		{"reversed order", LogSweep{StartFreq: 1000, EndFreq: 100, Duration: 1, SampleRate: 48000}, ErrFrequencyOrder},
		{"zero duration", LogSweep{StartFreq: 20, EndFreq: 20000, Duration: 0, SampleRate: 48000}, ErrInvalidDuration},
		{"zero rate", LogSweep{StartFreq: 20, EndFreq: 20000, Duration: 1, SampleRate: 0}, ErrInvalidSampleRate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.sweep.Validate(); err != tc.want {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLogSweepGenerate(t *testing.T) {
	s := LogSweep{StartFreq: 20, EndFreq: 20000, Duration: 0.5, SampleRate: 48000}

	out, err := s.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(out) != 24000 {
		t.Fatalf("len = %d, want 24000", len(out))
	}

	for i, v := range out {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d = %g, out of range", i, v)
		}
	}
}

func TestDeconvolvePassthroughYieldsImpulse(t *testing.T) {
	s := LogSweep{StartFreq: 50, EndFreq: 10000, Duration: 0.5, SampleRate: 48000}

	response, err := s.Measure(effects.NewPassthrough[core.Mono](), 0)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	ir, err := s.Deconvolve(response)
	if err != nil {
		t.Fatalf("Deconvolve: %v", err)
	}

	peak := 0
	for i := range ir {
		if math.Abs(ir[i]) > math.Abs(ir[peak]) {
			peak = i
		}
	}

	want := s.samples() - 1
	if peak < want-5 || peak > want+5 {
		t.Fatalf("impulse peak at %d, want ~%d", peak, want)
	}
	if math.Abs(ir[peak]) < 0.2 {
		t.Fatalf("impulse peak magnitude %g, want dominant", ir[peak])
	}
}

func TestMeasureCapturesGain(t *testing.T) {
	s := LogSweep{StartFreq: 100, EndFreq: 5000, Duration: 0.25, SampleRate: 48000}

	response, err := s.Measure(effects.NewGainFixed[core.Mono](0.5), 0.1)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	wantLen := s.samples() + 4800
	if len(response) != wantLen {
		t.Fatalf("len = %d, want %d", len(response), wantLen)
	}

	maxAbs := 0.0
	for _, v := range response {
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
		}
	}
	if maxAbs < 0.4 || maxAbs > 0.6 {
		t.Fatalf("peak %g, want ~0.5 after fixed gain", maxAbs)
	}
}

func TestDeconvolveEmptyResponse(t *testing.T) {
	s := LogSweep{StartFreq: 20, EndFreq: 20000, Duration: 0.5, SampleRate: 48000}

	if _, err := s.Deconvolve(nil); err != ErrEmptyResponse {
		t.Fatalf("Deconvolve(nil) = %v, want ErrEmptyResponse", err)
	}
}
