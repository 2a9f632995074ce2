package synth

import (
	"math"
	"testing"

	"github.com/Na1w/infinitedsp/dsp/param"
)

func TestOscillatorSinePhase(t *testing.T) {
	osc, err := NewOscillator(param.NewConstant(441), Sine)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]float32, 100)
	osc.Process(buf, 0)

	// First sample is sin(0) = 0.
	if math.Abs(float64(buf[0])) > 1e-5 {
		t.Fatalf("buf[0] = %v, want 0", buf[0])
	}

	// At 44100 Hz a 441 Hz cycle spans 100 samples, so sample 25 is a
	// quarter cycle: sin(pi/2) = 1.
	if math.Abs(float64(buf[25]-1)) > 1e-5 {
		t.Fatalf("buf[25] = %v, want 1", buf[25])
	}
}

func TestOscillatorUnknownShape(t *testing.T) {
	if _, err := NewOscillator(param.NewConstant(440), Shape(99)); err == nil {
		t.Fatal("expected error for unknown shape")
	}
}

func TestOscillatorResetDeterminism(t *testing.T) {
	osc, err := NewOscillator(param.NewConstant(440), Noise)
	if err != nil {
		t.Fatal(err)
	}

	a := make([]float32, 256)
	b := make([]float32, 256)

	osc.Process(a, 0)
	osc.Reset()
	osc.Process(b, 0)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d: first=%v after reset=%v", i, a[i], b[i])
		}
	}
}

func TestOscillatorSawBounded(t *testing.T) {
	osc, err := NewOscillator(param.NewConstant(440), Saw)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]float32, 4096)
	osc.Process(buf, 0)

	for i, v := range buf {
		if v < -1.5 || v > 1.5 {
			t.Fatalf("buf[%d] = %v out of range", i, v)
		}
	}
}

func TestOscillatorSplitEquivalence(t *testing.T) {
	whole, err := NewOscillator(param.NewConstant(330), Square)
	if err != nil {
		t.Fatal(err)
	}
	split, err := NewOscillator(param.NewConstant(330), Square)
	if err != nil {
		t.Fatal(err)
	}

	a := make([]float32, 128)
	b := make([]float32, 128)

	whole.Process(a, 0)
	split.Process(b[:37], 0)
	split.Process(b[37:], 37)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d: whole=%v split=%v", i, a[i], b[i])
		}
	}
}

func TestLFOUnipolarRange(t *testing.T) {
	lfo, err := NewLFO(param.NewConstant(100), LFOSine)
	if err != nil {
		t.Fatal(err)
	}
	lfo.SetUnipolar(true)

	buf := make([]float32, 2048)
	lfo.Process(buf, 0)

	for i, v := range buf {
		if v < 0 || v > 1 {
			t.Fatalf("buf[%d] = %v outside [0, 1]", i, v)
		}
	}
}

func TestLFOSampleHoldHoldsWithinCycle(t *testing.T) {
	lfo, err := NewLFO(param.NewConstant(4410), LFOSampleHold)
	if err != nil {
		t.Fatal(err)
	}

	// Period is 10 samples at 44100 Hz; the held value must stay
	// constant between wraps.
	buf := make([]float32, 100)
	lfo.Process(buf, 0)

	for i := 11; i < 18; i++ {
		if buf[i] != buf[10] {
			t.Fatalf("buf[%d] = %v, want held value %v", i, buf[i], buf[10])
		}
	}
}

func TestADSRFullCycle(t *testing.T) {
	gateCell := param.NewCell(0)
	a := NewADSR(
		param.NewLinked(gateCell),
		param.NewConstant(0.01), // 10 samples at 1 kHz
		param.NewConstant(0.05),
		param.NewConstant(0.5),
		param.NewConstant(0.05),
	)
	a.SetSampleRate(1000)

	buf := make([]float32, 10)

	// Gate closed: stays idle.
	a.Process(buf, 0)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("idle buf[%d] = %v, want 0", i, v)
		}
	}

	// Gate open: linear attack reaches 1 after 10 samples.
	gateCell.Store(1)
	a.Process(buf, 10)
	if math.Abs(float64(buf[9]-1)) > 1e-4 {
		t.Fatalf("end of attack = %v, want 1", buf[9])
	}

	// Decay settles toward the sustain level.
	long := make([]float32, 500)
	a.Process(long, 20)
	if math.Abs(float64(long[499]-0.5)) > 1e-3 {
		t.Fatalf("sustain level = %v, want 0.5", long[499])
	}

	// Gate closed: release decays to idle.
	gateCell.Store(0)
	a.Process(long, 520)
	if long[499] != 0 {
		t.Fatalf("after release = %v, want exactly 0 in idle", long[499])
	}
}

func TestADSRRetrigger(t *testing.T) {
	gateCell := param.NewCell(1)
	a := NewADSR(
		param.NewLinked(gateCell),
		param.NewConstant(0.01),
		param.NewConstant(0.01),
		param.NewConstant(0.8),
		param.NewConstant(0.01),
	)
	a.SetSampleRate(1000)

	buf := make([]float32, 200)
	a.Process(buf, 0)

	a.Trigger().Fire()
	restart := make([]float32, 5)
	a.Process(restart, 200)

	// Restart ramps from zero with step 1/10.
	if math.Abs(float64(restart[0]-0.1)) > 1e-4 {
		t.Fatalf("restart[0] = %v, want 0.1", restart[0])
	}
	if restart[0] >= restart[4] {
		// Still rising.
		t.Fatalf("restart not ascending: %v", restart)
	}
}

func rms(buf []float32) float64 {
	sum := 0.0
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}

	return math.Sqrt(sum / float64(len(buf)))
}

func TestKarplusStrongPluckAndDecay(t *testing.T) {
	gateCell := param.NewCell(0)
	ks := NewKarplusStrong(
		param.NewConstant(220),
		param.NewLinked(gateCell),
		param.NewConstant(0.3),
		param.NewConstant(0.2),
	)

	silent := make([]float32, 512)
	ks.Process(silent, 0)
	if rms(silent) != 0 {
		t.Fatalf("unplucked string not silent: rms=%v", rms(silent))
	}

	gateCell.Store(1)
	early := make([]float32, 4096)
	ks.Process(early, 512)
	if rms(early) < 1e-3 {
		t.Fatalf("pluck produced no output: rms=%v", rms(early))
	}

	late := make([]float32, 4096)
	for i := 0; i < 20; i++ {
		ks.Process(late, uint64(4608+i*4096))
	}
	if rms(late) >= rms(early) {
		t.Fatalf("string did not decay: early=%v late=%v", rms(early), rms(late))
	}

	gateCell.Store(0)
	ks.Reset()
	after := make([]float32, 512)
	ks.Process(after, 0)
	if rms(after) != 0 {
		t.Fatalf("reset string not silent: rms=%v", rms(after))
	}
}
