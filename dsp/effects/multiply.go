package effects

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Multiply multiplies two parameter sources, replacing the buffer contents.
// It scales one control signal by another, such as an envelope shaping the
// depth of an LFO.
type Multiply struct {
	a, b param.Param
	bBuf []float32
}

// NewMultiply creates a source that emits a * b.
func NewMultiply(a, b param.Param, opts ...core.Option) *Multiply {
	cfg := core.ApplyOptions(opts...)

	return &Multiply{
		a:    a,
		b:    b,
		bBuf: make([]float32, cfg.MaxBlock),
	}
}

// Process overwrites buf with the product of both parameters at each frame.
func (m *Multiply) Process(buf []float32, sampleIndex uint64) {
	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(m.bBuf))
		at := sampleIndex + uint64(start)

		seg := buf[start : start+n]
		m.a.Fill(seg, at)
		m.b.Fill(m.bBuf[:n], at)

		for i := 0; i < n; i++ {
			seg[i] *= m.bBuf[i]
		}

		start += n
	}
}

// Reset resets both parameters' modulation sources, if any.
func (m *Multiply) Reset() {
	m.a.Reset()
	m.b.Reset()
}

// SetSampleRate propagates the sample rate to both parameters.
func (m *Multiply) SetSampleRate(sampleRate float64) {
	m.a.SetSampleRate(sampleRate)
	m.b.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (m *Multiply) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (m *Multiply) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the source and both parameters.
func (m *Multiply) Describe() core.Node {
	return core.Node{Name: "Multiply", Children: []core.Node{m.a.Describe(), m.b.Describe()}}
}
