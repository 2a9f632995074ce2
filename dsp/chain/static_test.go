package chain

import (
	"math"
	"testing"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/effects"
	"github.com/Na1w/infinitedsp/dsp/param"
	"github.com/Na1w/infinitedsp/dsp/synth"
)

func TestStaticRunsComposedPath(t *testing.T) {
	s := NewStatic[core.Mono](effects.NewDCSourceFixed(1), 44100)
	s2 := Then(s, effects.NewGainFixed[core.Mono](0.5))
	s3 := Then(s2, effects.NewOffsetFixed[core.Mono](1))

	buf := make([]float32, 16)
	s3.Process(buf, 0)

	for i, v := range buf {
		if math.Abs(float64(v-1.5)) > 1e-6 {
			t.Fatalf("buf[%d] = %v, want 1.5", i, v)
		}
	}
}

func TestStaticInnerKeepsConcreteType(t *testing.T) {
	s := NewStatic[core.Mono](effects.NewDCSourceFixed(0.3), 44100)

	// Inner is a *effects.DCSource, no assertion needed.
	src := s.Inner()
	buf := make([]float32, 4)
	src.Process(buf, 0)

	if buf[0] != 0.3 {
		t.Fatalf("inner output = %v, want 0.3", buf[0])
	}
}

func TestStaticThenMix(t *testing.T) {
	s := NewStatic[core.Mono](effects.NewDCSourceFixed(1), 44100)
	mixed := ThenMix(s, effects.NewGainFixed[core.Mono](3), 0.5)

	buf := make([]float32, 8)
	mixed.Process(buf, 0)

	for i, v := range buf {
		if math.Abs(float64(v-2)) > 1e-6 {
			t.Fatalf("buf[%d] = %v, want 2", i, v)
		}
	}
}

func TestStaticToStereo(t *testing.T) {
	osc, err := synth.NewOscillator(param.NewConstant(440), synth.Sine)
	if err != nil {
		t.Fatal(err)
	}

	stereo := StaticToStereo(NewStatic[core.Mono](osc, 44100))

	buf := make([]float32, 128)
	stereo.Process(buf, 0)

	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: L=%v R=%v", i/2, buf[i], buf[i+1])
		}
	}
}

// The dynamic and static forms of the same path must produce the same
// signal.
func TestDynamicStaticEquivalence(t *testing.T) {
	newOsc := func() *synth.Oscillator {
		osc, err := synth.NewOscillator(param.NewConstant(220), synth.Saw)
		if err != nil {
			t.Fatal(err)
		}
		return osc
	}

	dynamic := New[core.Mono](48000).
		And(newOsc()).
		And(effects.NewGainFixed[core.Mono](0.7)).
		AndMix(effects.NewGainFixed[core.Mono](2), 0.25)

	static := ThenMix(
		Then(
			NewStatic[core.Mono](newOsc(), 48000),
			effects.NewGainFixed[core.Mono](0.7),
		),
		effects.NewGainFixed[core.Mono](2),
		0.25,
	)

	a := make([]float32, 1024)
	b := make([]float32, 1024)
	dynamic.Process(a, 0)
	static.Process(b, 0)

	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			t.Fatalf("sample %d: dynamic=%v static=%v", i, a[i], b[i])
		}
	}
}

func TestStaticLatencySums(t *testing.T) {
	s := Then(
		NewStatic[core.Mono](effects.NewPassthrough[core.Mono](), 44100),
		effects.NewPassthrough[core.Mono](),
	)

	if got := s.Latency(); got != 0 {
		t.Fatalf("Latency = %d, want 0", got)
	}
}
