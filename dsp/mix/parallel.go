// Package mix provides mixers that combine processing units: a
// dry/wet blend around a single unit and a weighted sum over many.
package mix

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Parallel blends a unit's wet output with the dry input it received.
// blend 0 is fully dry, 1 is fully wet, and values in between
// crossfade linearly. When the wet path reports latency the dry copy
// is delayed by the same amount so both paths stay time aligned.
type Parallel[C core.ChannelConfig] struct {
	wet   core.Processor[C]
	blend param.Param

	channels int
	dryBuf   []float32
	blendBuf []float32

	// dryDelay holds latency*channels samples when the wet path is
	// not zero latency. Sized at construction and on SetSampleRate,
	// never on the audio thread.
	dryDelay []float32
	delayPos int
}

// NewParallel creates a dry/wet blend around wet, driven by blend.
func NewParallel[C core.ChannelConfig](wet core.Processor[C], blend param.Param, opts ...core.Option) *Parallel[C] {
	cfg := core.ApplyOptions(opts...)
	channels := core.NumChannels[C]()

	p := &Parallel[C]{
		wet:      wet,
		blend:    blend,
		channels: channels,
		dryBuf:   make([]float32, cfg.MaxBlock*channels),
		blendBuf: make([]float32, cfg.MaxBlock),
	}
	p.sizeDelay()

	return p
}

func (p *Parallel[C]) sizeDelay() {
	n := p.wet.Latency() * p.channels
	p.dryDelay = core.EnsureLen(p.dryDelay, n)
	core.Zero(p.dryDelay)
	p.delayPos = 0
}

// Process runs the wet unit over buf and blends the result with the
// dry input per frame.
func (p *Parallel[C]) Process(buf []float32, sampleIndex uint64) {
	maxFrames := len(p.blendBuf)
	frames := len(buf) / p.channels

	for start := 0; start < frames; {
		n := min(frames-start, maxFrames)
		at := sampleIndex + uint64(start)
		seg := buf[start*p.channels : (start+n)*p.channels]

		dry := p.dryBuf[:len(seg)]
		copy(dry, seg)

		p.blend.Fill(p.blendBuf[:n], at)
		p.wet.Process(seg, at)

		if len(p.dryDelay) > 0 {
			for i := range dry {
				delayed := p.dryDelay[p.delayPos]
				p.dryDelay[p.delayPos] = dry[i]
				dry[i] = delayed

				p.delayPos++
				if p.delayPos >= len(p.dryDelay) {
					p.delayPos = 0
				}
			}
		}

		for f := 0; f < n; f++ {
			w := p.blendBuf[f]
			base := f * p.channels
			for c := 0; c < p.channels; c++ {
				seg[base+c] = dry[base+c]*(1-w) + seg[base+c]*w
			}
		}

		start += n
	}
}

// Reset resets the wet unit, the blend parameter, and the alignment
// delay.
func (p *Parallel[C]) Reset() {
	p.wet.Reset()
	p.blend.Reset()
	core.Zero(p.dryDelay)
	p.delayPos = 0
}

// SetSampleRate reconfigures the wet unit and blend parameter, then
// resizes the alignment delay in case the wet latency changed.
func (p *Parallel[C]) SetSampleRate(sampleRate float64) {
	p.wet.SetSampleRate(sampleRate)
	p.blend.SetSampleRate(sampleRate)
	p.sizeDelay()
}

// Latency reports the wet unit's latency; the dry path is delayed to
// match it.
func (p *Parallel[C]) Latency() int {
	return p.wet.Latency()
}

// Layout reports the channel configuration this mixer processes.
func (p *Parallel[C]) Layout() C {
	var c C

	return c
}

// Describe reports the mixer, its blend parameter, and the wet unit.
func (p *Parallel[C]) Describe() core.Node {
	return core.Node{
		Name:     "Parallel",
		Children: []core.Node{p.blend.Describe(), core.DescribeAny(p.wet)},
	}
}
