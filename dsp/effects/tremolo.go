package effects

import (
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Tremolo modulates the signal amplitude with an internal sine LFO.
// Gain swings between 1 and 1-depth, so depth 0 is transparent and
// depth 1 pulses down to silence.
type Tremolo struct {
	phase      float32
	rate       param.Param
	depth      param.Param
	sampleRate float64

	rateBuf  []float32
	depthBuf []float32
}

// NewTremolo creates a tremolo with the given LFO rate in Hz and
// depth in [0, 1].
func NewTremolo(rate, depth param.Param, opts ...core.Option) *Tremolo {
	cfg := core.ApplyOptions(opts...)

	return &Tremolo{
		rate:       rate,
		depth:      depth,
		sampleRate: 44100,
		rateBuf:    make([]float32, cfg.MaxBlock),
		depthBuf:   make([]float32, cfg.MaxBlock),
	}
}

// Process scales buf in place with the LFO gain.
func (t *Tremolo) Process(buf []float32, sampleIndex uint64) {
	const twoPi = 2 * math.Pi
	invSR := float32(1.0 / t.sampleRate)

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(t.rateBuf))
		at := sampleIndex + uint64(start)

		t.rate.Fill(t.rateBuf[:n], at)
		t.depth.Fill(t.depthBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			phase := t.phase

			t.phase += twoPi * t.rateBuf[i] * invSR
			if t.phase > twoPi {
				t.phase -= twoPi
			}

			lfo := (float32(math.Sin(float64(phase))) + 1) * 0.5
			seg[i] *= 1 - t.depthBuf[i]*lfo
		}

		start += n
	}
}

// Reset rewinds the LFO and resets both parameters.
func (t *Tremolo) Reset() {
	t.phase = 0
	t.rate.Reset()
	t.depth.Reset()
}

// SetSampleRate reconfigures the tremolo for a new rate.
func (t *Tremolo) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	t.sampleRate = sampleRate
	t.rate.SetSampleRate(sampleRate)
	t.depth.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (t *Tremolo) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (t *Tremolo) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the tremolo and its rate and depth parameters.
func (t *Tremolo) Describe() core.Node {
	return core.Node{
		Name:     "Tremolo",
		Children: []core.Node{t.rate.Describe(), t.depth.Describe()},
	}
}
