package chain

import (
	"math"
	"testing"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/effects"
	"github.com/Na1w/infinitedsp/dsp/param"
	"github.com/Na1w/infinitedsp/dsp/synth"
)

func mustOsc(t *testing.T, freq float32, shape synth.Shape) *synth.Oscillator {
	t.Helper()
	osc, err := synth.NewOscillator(param.NewConstant(freq), shape)
	if err != nil {
		t.Fatal(err)
	}
	return osc
}

func TestChainRunsUnitsInOrder(t *testing.T) {
	c := New[core.Mono](44100).
		And(effects.NewDCSourceFixed(1)).
		And(effects.NewGainFixed[core.Mono](0.5)).
		And(effects.NewOffsetFixed[core.Mono](1))

	buf := make([]float32, 16)
	c.Process(buf, 0)

	for i, v := range buf {
		if math.Abs(float64(v-1.5)) > 1e-6 {
			t.Fatalf("buf[%d] = %v, want 1.5", i, v)
		}
	}
}

func TestChainLen(t *testing.T) {
	c := New[core.Mono](44100)
	if c.Len() != 0 {
		t.Fatalf("empty Len = %d", c.Len())
	}

	c.And(effects.NewPassthrough[core.Mono]()).AndMix(effects.NewGainFixed[core.Mono](2), 0.5)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestChainAndMixBlendsDryAndWet(t *testing.T) {
	c := New[core.Mono](44100).
		And(effects.NewDCSourceFixed(1)).
		AndMix(effects.NewGainFixed[core.Mono](3), 0.5)

	buf := make([]float32, 8)
	c.Process(buf, 0)

	// 0.5 dry + 0.5 * 3 = 2
	for i, v := range buf {
		if math.Abs(float64(v-2)) > 1e-6 {
			t.Fatalf("buf[%d] = %v, want 2", i, v)
		}
	}
}

func TestChainOffsetSplitting(t *testing.T) {
	build := func() *Chain[core.Mono] {
		osc, err := synth.NewOscillator(param.NewConstant(441), synth.Sine)
		if err != nil {
			t.Fatal(err)
		}
		trem, err := synth.NewLFO(param.NewConstant(5), synth.LFOSine)
		if err != nil {
			t.Fatal(err)
		}
		trem.SetUnipolar(true)

		return New[core.Mono](44100).
			And(osc).
			And(effects.NewGain[core.Mono](param.NewModulated(trem)))
	}

	const n = 512
	whole := build()
	split := build()

	a := make([]float32, n)
	b := make([]float32, n)

	whole.Process(a, 0)
	split.Process(b[:100], 0)
	split.Process(b[100:317], 100)
	split.Process(b[317:], 317)

	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			t.Fatalf("sample %d: whole=%v split=%v", i, a[i], b[i])
		}
	}
}

func TestChainResetMatchesFresh(t *testing.T) {
	build := func() *Chain[core.Mono] {
		return New[core.Mono](44100).And(mustOsc(t, 440, synth.Saw))
	}

	c := build()
	warm := make([]float32, 333)
	c.Process(warm, 0)
	c.Reset()

	a := make([]float32, 256)
	c.Process(a, 0)

	fresh := build()
	b := make([]float32, 256)
	fresh.Process(b, 0)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d: reset=%v fresh=%v", i, a[i], b[i])
		}
	}
}

func TestToStereoDuplicatesChannels(t *testing.T) {
	mono := New[core.Mono](44100).And(mustOsc(t, 440, synth.Sine))
	stereo := ToStereo(mono)

	buf := make([]float32, 128)
	stereo.Process(buf, 0)

	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: L=%v R=%v", i/2, buf[i], buf[i+1])
		}
	}
}

func TestToMonoDownmixes(t *testing.T) {
	stereo := New[core.Stereo](44100).And(effects.NewGainFixed[core.Stereo](2))
	mono := ToMono(stereo)

	buf := make([]float32, 64)
	for i := range buf {
		buf[i] = 0.25
	}
	mono.Process(buf, 0)

	for i, v := range buf {
		if math.Abs(float64(v-0.5)) > 1e-6 {
			t.Fatalf("buf[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestChainDescribeAssignsStableIDs(t *testing.T) {
	c := New[core.Mono](44100).
		And(effects.NewPassthrough[core.Mono]()).
		And(effects.NewGainFixed[core.Mono](1))

	first := c.Describe()
	second := c.Describe()

	if len(first.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(first.Children))
	}

	for i := range first.Children {
		if first.Children[i].ID.IsNil() {
			t.Fatalf("child %d has nil ID", i)
		}
		if first.Children[i].ID != second.Children[i].ID {
			t.Fatalf("child %d ID changed between dumps", i)
		}
	}

	if first.Children[0].ID == first.Children[1].ID {
		t.Fatal("distinct units share an ID")
	}
}
