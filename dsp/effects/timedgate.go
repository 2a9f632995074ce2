package effects

import (
	"fmt"

	"github.com/Na1w/infinitedsp/dsp/core"
)

// TimedGate emits 1 while the absolute sample index is below a fixed
// duration and 0 afterwards. Wired into an envelope's gate input it
// plays a note of known length from the start of the timeline; the
// output depends only on sampleIndex, so it is stateless across calls.
type TimedGate struct {
	durationSamples uint64
	sampleRate      float64
}

// NewTimedGate creates a gate that stays high for the given duration.
// The sample rate defaults to 44100 until SetSampleRate is called.
func NewTimedGate(durationSeconds float64) *TimedGate {
	sampleRate := 44100.0

	return &TimedGate{
		durationSamples: uint64(durationSeconds * sampleRate),
		sampleRate:      sampleRate,
	}
}

// Process overwrites buf with the gate signal.
func (g *TimedGate) Process(buf []float32, sampleIndex uint64) {
	for i := range buf {
		if sampleIndex+uint64(i) < g.durationSamples {
			buf[i] = 1
		} else {
			buf[i] = 0
		}
	}
}

// Reset does nothing; the output is a pure function of sampleIndex.
func (g *TimedGate) Reset() {}

// SetSampleRate rescales the duration so it keeps its length in
// seconds at the new rate.
func (g *TimedGate) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	g.durationSamples = uint64(float64(g.durationSamples) * sampleRate / g.sampleRate)
	g.sampleRate = sampleRate
}

// Latency reports zero.
func (g *TimedGate) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (g *TimedGate) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the gate and its duration in samples.
func (g *TimedGate) Describe() core.Node {
	return core.Node{Name: "TimedGate", Detail: fmt.Sprintf("%d samples", g.durationSamples)}
}
