package effects

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Offset adds a parameter value to every sample. On multichannel buffers the
// same per-frame offset is applied to all channels of a frame. Together with
// Gain it rescales bipolar modulators into arbitrary control ranges.
type Offset[C core.ChannelConfig] struct {
	offset    param.Param
	channels  int
	offsetBuf []float32
}

// NewOffset creates an offset stage driven by p.
func NewOffset[C core.ChannelConfig](p param.Param, opts ...core.Option) *Offset[C] {
	cfg := core.ApplyOptions(opts...)

	return &Offset[C]{
		offset:    p,
		channels:  core.NumChannels[C](),
		offsetBuf: make([]float32, cfg.MaxBlock),
	}
}

// NewOffsetFixed creates an offset stage with a constant value.
func NewOffsetFixed[C core.ChannelConfig](offset float32, opts ...core.Option) *Offset[C] {
	return NewOffset[C](param.NewConstant(offset), opts...)
}

// Process adds the offset to buf in place.
func (o *Offset[C]) Process(buf []float32, sampleIndex uint64) {
	if v, ok := o.offset.Constant(); ok {
		for i := range buf {
			buf[i] += v
		}

		return
	}

	frames := len(buf) / o.channels
	for start := 0; start < frames; {
		n := min(frames-start, len(o.offsetBuf))
		o.offset.Fill(o.offsetBuf[:n], sampleIndex+uint64(start))

		seg := buf[start*o.channels:]
		for f := 0; f < n; f++ {
			v := o.offsetBuf[f]
			base := f * o.channels
			for c := 0; c < o.channels; c++ {
				seg[base+c] += v
			}
		}

		start += n
	}
}

// Reset resets the offset parameter's modulation source, if any.
func (o *Offset[C]) Reset() {
	o.offset.Reset()
}

// SetSampleRate propagates the sample rate to the offset parameter.
func (o *Offset[C]) SetSampleRate(sampleRate float64) {
	o.offset.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (o *Offset[C]) Latency() int {
	return 0
}

// Layout reports the channel configuration this stage processes.
func (o *Offset[C]) Layout() C {
	var c C

	return c
}

// Describe reports the offset stage and its parameter source.
func (o *Offset[C]) Describe() core.Node {
	return core.Node{Name: "Offset", Children: []core.Node{o.offset.Describe()}}
}
