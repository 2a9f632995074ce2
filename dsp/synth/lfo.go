package synth

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// LFOShape selects the low-frequency oscillator waveform.
type LFOShape uint8

const (
	// LFOSine is a sine wave.
	LFOSine LFOShape = iota
	// LFOTriangle is a triangle wave.
	LFOTriangle
	// LFOSaw is a rising sawtooth.
	LFOSaw
	// LFOSquare is a square wave.
	LFOSquare
	// LFOSampleHold holds a random value for one full cycle.
	LFOSampleHold
)

// LFO is a control-rate source for modulation slots. Unlike the audio
// oscillator it is not band limited; the phase advances before each
// output sample, and the sample-and-hold shape draws a new random
// value whenever the phase wraps.
type LFO struct {
	freq     param.Param
	shape    LFOShape
	unipolar bool

	phase      float32
	sampleRate float64
	rngState   uint32
	lastRandom float32

	freqBuf []float32
}

// NewLFO creates an LFO with the given frequency source and shape.
// Output is bipolar in [-1, 1] unless SetUnipolar rescales it.
func NewLFO(freq param.Param, shape LFOShape, opts ...core.Option) (*LFO, error) {
	switch shape {
	case LFOSine, LFOTriangle, LFOSaw, LFOSquare, LFOSampleHold:
	default:
		return nil, fmt.Errorf("unknown LFO shape: %d", shape)
	}

	cfg := core.ApplyOptions(opts...)

	return &LFO{
		freq:       freq,
		shape:      shape,
		sampleRate: 44100,
		rngState:   randSeed,
		freqBuf:    make([]float32, cfg.MaxBlock),
	}, nil
}

// SetUnipolar switches the output range to [0, 1]. Call during setup,
// not from the audio thread.
func (l *LFO) SetUnipolar(unipolar bool) {
	l.unipolar = unipolar
}

// Process overwrites buf with LFO output.
func (l *LFO) Process(buf []float32, sampleIndex uint64) {
	invSR := float32(1.0 / l.sampleRate)

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(l.freqBuf))
		l.freq.Fill(l.freqBuf[:n], sampleIndex+uint64(start))

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			l.phase += l.freqBuf[i] * invSR

			wrapped := false
			if l.phase >= 1 {
				l.phase -= 1
				wrapped = true
			} else if l.phase < 0 {
				l.phase += 1
				wrapped = true
			}

			var out float32
			switch l.shape {
			case LFOSine:
				out = float32(math.Sin(float64(l.phase) * 2 * math.Pi))
			case LFOTriangle:
				x := l.phase*2 - 1
				out = 2*abs32(x) - 1
			case LFOSaw:
				out = 2*l.phase - 1
			case LFOSquare:
				if l.phase < 0.5 {
					out = 1
				} else {
					out = -1
				}
			case LFOSampleHold:
				if wrapped {
					l.lastRandom = nextRandom(&l.rngState)
				}
				out = l.lastRandom
			}

			if l.unipolar {
				out = out*0.5 + 0.5
			}

			seg[i] = out
		}

		start += n
	}
}

// Reset returns the LFO to phase 0, reseeds the random generator, and
// resets the frequency parameter.
func (l *LFO) Reset() {
	l.phase = 0
	l.rngState = randSeed
	l.lastRandom = 0
	l.freq.Reset()
}

// SetSampleRate reconfigures the LFO for a new rate.
func (l *LFO) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	l.sampleRate = sampleRate
	l.freq.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (l *LFO) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (l *LFO) Layout() core.Mono {
	return core.Mono{}
}

func (s LFOShape) String() string {
	switch s {
	case LFOSine:
		return "sine"
	case LFOTriangle:
		return "triangle"
	case LFOSaw:
		return "saw"
	case LFOSquare:
		return "square"
	case LFOSampleHold:
		return "sample-hold"
	default:
		return "unknown"
	}
}

// Describe reports the LFO shape, polarity, and frequency parameter.
func (l *LFO) Describe() core.Node {
	detail := l.shape.String()
	if l.unipolar {
		detail += " unipolar"
	}

	return core.Node{
		Name:     "LFO",
		Detail:   detail,
		Children: []core.Node{l.freq.Describe()},
	}
}
