package effects

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Add sums two parameter sources, replacing the buffer contents. Chained
// after other sources it builds additive control signals, such as a base
// frequency plus a vibrato LFO.
type Add struct {
	a, b param.Param
	bBuf []float32
}

// NewAdd creates a source that emits a + b.
func NewAdd(a, b param.Param, opts ...core.Option) *Add {
	cfg := core.ApplyOptions(opts...)

	return &Add{
		a:    a,
		b:    b,
		bBuf: make([]float32, cfg.MaxBlock),
	}
}

// Process overwrites buf with the sum of both parameters at each frame.
func (s *Add) Process(buf []float32, sampleIndex uint64) {
	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(s.bBuf))
		at := sampleIndex + uint64(start)

		seg := buf[start : start+n]
		s.a.Fill(seg, at)
		s.b.Fill(s.bBuf[:n], at)

		for i := 0; i < n; i++ {
			seg[i] += s.bBuf[i]
		}

		start += n
	}
}

// Reset resets both parameters' modulation sources, if any.
func (s *Add) Reset() {
	s.a.Reset()
	s.b.Reset()
}

// SetSampleRate propagates the sample rate to both parameters.
func (s *Add) SetSampleRate(sampleRate float64) {
	s.a.SetSampleRate(sampleRate)
	s.b.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (s *Add) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (s *Add) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the source and both parameters.
func (s *Add) Describe() core.Node {
	return core.Node{Name: "Add", Children: []core.Node{s.a.Describe(), s.b.Describe()}}
}
