package synth

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Shape selects the oscillator waveform.
type Shape uint8

const (
	// Sine is a pure sine wave.
	Sine Shape = iota
	// Triangle is a naive triangle wave.
	Triangle
	// Saw is a PolyBLEP band-limited sawtooth.
	Saw
	// Square is a PolyBLEP band-limited square wave.
	Square
	// Noise is white noise from a deterministic generator.
	Noise
)

// Oscillator is an audio-rate source. Saw and square shapes apply a
// PolyBLEP correction around their discontinuities to suppress
// aliasing; the correction width follows the instantaneous frequency,
// so audio-rate frequency modulation stays band limited.
//
// Each output sample is computed from the phase before it advances, so
// the first sample of a fresh oscillator is the waveform at phase 0.
// Negative frequencies run the phase backwards.
type Oscillator struct {
	freq  param.Param
	shape Shape

	phase      float32
	sampleRate float64
	rngState   uint32

	freqBuf []float32
}

// NewOscillator creates an oscillator with the given frequency source
// and shape. The sample rate defaults to 44100 until SetSampleRate is
// called.
func NewOscillator(freq param.Param, shape Shape, opts ...core.Option) (*Oscillator, error) {
	switch shape {
	case Sine, Triangle, Saw, Square, Noise:
	default:
		return nil, fmt.Errorf("unknown oscillator shape: %d", shape)
	}

	cfg := core.ApplyOptions(opts...)

	return &Oscillator{
		freq:       freq,
		shape:      shape,
		sampleRate: 44100,
		rngState:   randSeed,
		freqBuf:    make([]float32, cfg.MaxBlock),
	}, nil
}

// polyBLEP returns the residual that rounds off a unit discontinuity
// at phase 0 for a phase increment dt.
func polyBLEP(t, dt float32) float32 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}

	return 0
}

// Process overwrites buf with oscillator output.
func (o *Oscillator) Process(buf []float32, sampleIndex uint64) {
	invSR := float32(1.0 / o.sampleRate)

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(o.freqBuf))
		o.freq.Fill(o.freqBuf[:n], sampleIndex+uint64(start))

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			inc := o.freqBuf[i] * invSR
			phase := o.phase

			o.phase += inc
			if o.phase >= 1 {
				o.phase -= 1
			} else if o.phase < 0 {
				o.phase += 1
			}

			switch o.shape {
			case Sine:
				seg[i] = float32(math.Sin(float64(phase) * 2 * math.Pi))
			case Triangle:
				if phase < 0.5 {
					seg[i] = 4*phase - 1
				} else {
					seg[i] = 4*(1-phase) - 1
				}
			case Saw:
				naive := 2*phase - 1
				seg[i] = naive - polyBLEP(phase, abs32(inc))
			case Square:
				naive := float32(-1)
				if phase < 0.5 {
					naive = 1
				}
				absInc := abs32(inc)
				corr := polyBLEP(phase, absInc) - polyBLEP(float32(math.Mod(float64(phase)+0.5, 1)), absInc)
				seg[i] = naive + corr
			case Noise:
				seg[i] = nextRandom(&o.rngState)
			}
		}

		start += n
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}

	return x
}

// Reset returns the oscillator to phase 0 and reseeds the noise
// generator, then resets the frequency parameter.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.rngState = randSeed
	o.freq.Reset()
}

// SetSampleRate reconfigures the oscillator for a new rate.
func (o *Oscillator) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	o.sampleRate = sampleRate
	o.freq.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (o *Oscillator) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (o *Oscillator) Layout() core.Mono {
	return core.Mono{}
}

func (s Shape) String() string {
	switch s {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Saw:
		return "saw"
	case Square:
		return "square"
	case Noise:
		return "noise"
	default:
		return "unknown"
	}
}

// Describe reports the oscillator shape and its frequency parameter.
func (o *Oscillator) Describe() core.Node {
	return core.Node{
		Name:     "Oscillator",
		Detail:   o.shape.String(),
		Children: []core.Node{o.freq.Describe()},
	}
}
