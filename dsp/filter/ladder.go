package filter

import (
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Ladder is a zero-delay-feedback four-stage transistor ladder
// lowpass. The feedback loop with the tanh nonlinearity is solved per
// sample by Newton iteration, so the filter self-oscillates cleanly
// at high resonance instead of blowing up. Resonance 0 is no feedback;
// self-oscillation starts near 1.
type Ladder struct {
	cutoff     param.Param
	resonance  param.Param
	sampleRate float64

	state [4]float64

	cutoffBuf []float32
	resBuf    []float32
}

// NewLadder creates a ladder filter with cutoff in Hz and resonance
// in [0, 1].
func NewLadder(cutoff, resonance param.Param, opts ...core.Option) *Ladder {
	cfg := core.ApplyOptions(opts...)

	return &Ladder{
		cutoff:     cutoff,
		resonance:  resonance,
		sampleRate: 44100,
		cutoffBuf:  make([]float32, cfg.MaxBlock),
		resBuf:     make([]float32, cfg.MaxBlock),
	}
}

// Process filters buf in place.
func (l *Ladder) Process(buf []float32, sampleIndex uint64) {
	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(l.cutoffBuf))
		at := sampleIndex + uint64(start)

		l.cutoff.Fill(l.cutoffBuf[:n], at)
		l.resonance.Fill(l.resBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			fc := core.Clamp(float64(l.cutoffBuf[i]), 10, 0.49*l.sampleRate)
			k := float64(l.resBuf[i]) * 4

			g := math.Tan(math.Pi * fc / l.sampleRate)
			g1 := g / (1 + g)
			g2 := g1 * g1
			g3 := g2 * g1
			g4 := g3 * g1

			beta := 1 / (1 + g)
			sigma := g3*l.state[0]*beta + g2*l.state[1]*beta + g1*l.state[2]*beta + l.state[3]*beta

			x := float64(seg[i])

			// Newton iteration on the feedback equation
			// y4 = g4*(x - k*tanh(y4)) + sigma.
			y4 := l.state[3]
			for iter := 0; iter < 5; iter++ {
				tanhY4 := ladderTanh(y4)
				u := x - k*tanhY4

				f := y4 - (g4*u + sigma)
				df := 1 + g4*k*(1-tanhY4*tanhY4)
				y4 -= f / df
			}

			u := x - k*ladderTanh(y4)
			y1 := (g*u + l.state[0]) * beta
			y2 := (g*y1 + l.state[1]) * beta
			y3 := (g*y2 + l.state[2]) * beta

			l.state[0] = 2*y1 - l.state[0]
			l.state[1] = 2*y2 - l.state[1]
			l.state[2] = 2*y3 - l.state[2]
			l.state[3] = 2*y4 - l.state[3]

			seg[i] = float32(y4)
		}

		start += n
	}
}

// Reset clears the four integrator states and resets both parameters.
func (l *Ladder) Reset() {
	l.state = [4]float64{}
	l.cutoff.Reset()
	l.resonance.Reset()
}

// SetSampleRate reconfigures the filter for a new rate.
func (l *Ladder) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	l.sampleRate = sampleRate
	l.cutoff.SetSampleRate(sampleRate)
	l.resonance.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (l *Ladder) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (l *Ladder) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the ladder and its cutoff and resonance parameters.
func (l *Ladder) Describe() core.Node {
	return core.Node{
		Name:     "Ladder",
		Children: []core.Node{l.cutoff.Describe(), l.resonance.Describe()},
	}
}
