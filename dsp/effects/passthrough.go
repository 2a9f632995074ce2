package effects

import "github.com/Na1w/infinitedsp/dsp/core"

// Passthrough forwards its input unchanged. It serves as a neutral slot in a
// chain and as the dry branch of a parallel mix.
type Passthrough[C core.ChannelConfig] struct{}

// NewPassthrough creates a no-op stage.
func NewPassthrough[C core.ChannelConfig]() *Passthrough[C] {
	return &Passthrough[C]{}
}

// Process leaves buf untouched.
func (*Passthrough[C]) Process(buf []float32, sampleIndex uint64) {}

// Reset does nothing.
func (*Passthrough[C]) Reset() {}

// SetSampleRate does nothing.
func (*Passthrough[C]) SetSampleRate(sampleRate float64) {}

// Latency reports zero.
func (*Passthrough[C]) Latency() int {
	return 0
}

// Layout reports the channel configuration this stage processes.
func (*Passthrough[C]) Layout() C {
	var c C

	return c
}
