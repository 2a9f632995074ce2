package effects

import (
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Panner places a stereo signal between the channels with the
// constant-power law: equal perceived loudness across the pan range.
// pan -1 is hard left, 0 center, 1 hard right. On a dual-mono signal
// it pans; on a true stereo signal it acts as a balance control.
type Panner struct {
	pan    param.Param
	panBuf []float32
}

// NewPanner creates a panner driven by pan in [-1, 1].
func NewPanner(pan param.Param, opts ...core.Option) *Panner {
	cfg := core.ApplyOptions(opts...)

	return &Panner{
		pan:    pan,
		panBuf: make([]float32, cfg.MaxBlock),
	}
}

// Process applies per-frame channel gains to the interleaved buffer.
func (p *Panner) Process(buf []float32, sampleIndex uint64) {
	frames := len(buf) / 2

	for start := 0; start < frames; {
		n := min(frames-start, len(p.panBuf))
		p.pan.Fill(p.panBuf[:n], sampleIndex+uint64(start))

		seg := buf[2*start : 2*(start+n)]
		for f := 0; f < n; f++ {
			pan := core.Clamp32(p.panBuf[f], -1, 1)

			// pan -1 -> angle 0, pan 1 -> angle pi/2.
			angle := float64(pan+1) * math.Pi / 4
			gainL := float32(math.Cos(angle))
			gainR := float32(math.Sin(angle))

			seg[2*f] *= gainL
			seg[2*f+1] *= gainR
		}

		start += n
	}
}

// Reset resets the pan parameter's modulation source, if any.
func (p *Panner) Reset() {
	p.pan.Reset()
}

// SetSampleRate propagates the rate to the pan parameter.
func (p *Panner) SetSampleRate(sampleRate float64) {
	p.pan.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (p *Panner) Latency() int {
	return 0
}

// Layout reports a stereo configuration.
func (p *Panner) Layout() core.Stereo {
	return core.Stereo{}
}

// Describe reports the panner and its pan parameter.
func (p *Panner) Describe() core.Node {
	return core.Node{Name: "Panner", Children: []core.Node{p.pan.Describe()}}
}
