package effects

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Gain scales every sample by a gain factor. The factor is an audio-rate
// parameter, so it can be a fixed value, a control cell written from another
// goroutine, or a modulation chain evaluated per frame. On multichannel
// buffers the same per-frame factor is applied to all channels of a frame.
type Gain[C core.ChannelConfig] struct {
	gain     param.Param
	channels int
	gainBuf  []float32
}

// NewGain creates a gain stage driven by p.
func NewGain[C core.ChannelConfig](p param.Param, opts ...core.Option) *Gain[C] {
	cfg := core.ApplyOptions(opts...)

	return &Gain[C]{
		gain:     p,
		channels: core.NumChannels[C](),
		gainBuf:  make([]float32, cfg.MaxBlock),
	}
}

// NewGainFixed creates a gain stage with a constant linear factor.
func NewGainFixed[C core.ChannelConfig](gain float32, opts ...core.Option) *Gain[C] {
	return NewGain[C](param.NewConstant(gain), opts...)
}

// NewGainDB creates a gain stage with a constant factor given in decibels.
func NewGainDB[C core.ChannelConfig](db float64, opts ...core.Option) *Gain[C] {
	return NewGain[C](param.NewConstant(float32(core.DBToLinear(db))), opts...)
}

// Process scales buf in place.
func (g *Gain[C]) Process(buf []float32, sampleIndex uint64) {
	if v, ok := g.gain.Constant(); ok {
		for i := range buf {
			buf[i] *= v
		}

		return
	}

	frames := len(buf) / g.channels
	for start := 0; start < frames; {
		n := min(frames-start, len(g.gainBuf))
		g.gain.Fill(g.gainBuf[:n], sampleIndex+uint64(start))

		seg := buf[start*g.channels:]
		for f := 0; f < n; f++ {
			v := g.gainBuf[f]
			base := f * g.channels
			for c := 0; c < g.channels; c++ {
				seg[base+c] *= v
			}
		}

		start += n
	}
}

// Reset resets the gain parameter's modulation source, if any.
func (g *Gain[C]) Reset() {
	g.gain.Reset()
}

// SetSampleRate propagates the sample rate to the gain parameter.
func (g *Gain[C]) SetSampleRate(sampleRate float64) {
	g.gain.SetSampleRate(sampleRate)
}

// Latency reports zero; gain is instantaneous.
func (g *Gain[C]) Latency() int {
	return 0
}

// Layout reports the channel configuration this stage processes.
func (g *Gain[C]) Layout() C {
	var c C

	return c
}

// Describe reports the gain stage and its parameter source.
func (g *Gain[C]) Describe() core.Node {
	return core.Node{Name: "Gain", Children: []core.Node{g.gain.Describe()}}
}
