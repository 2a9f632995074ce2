package mix

import (
	"fmt"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

type summed[C core.ChannelConfig] struct {
	source core.Processor[C]
	weight float32
}

// Summing renders each of its inputs into the buffer and accumulates
// them with per-input weights, then applies an output gain stage with
// an optional tanh soft clipper. With no inputs it emits silence.
//
// Inputs act as sources: each gets a zeroed buffer to render into, so
// whatever was in buf before Process is discarded.
type Summing[C core.ChannelConfig] struct {
	inputs   []summed[C]
	gain     param.Param
	softClip bool

	channels int
	scratch  []float32
	gainBuf  []float32
}

// NewSumming creates an empty summing mixer with the given output
// gain. Inputs are attached with Add before processing starts.
func NewSumming[C core.ChannelConfig](gain param.Param, opts ...core.Option) *Summing[C] {
	cfg := core.ApplyOptions(opts...)
	channels := core.NumChannels[C]()

	return &Summing[C]{
		gain:     gain,
		channels: channels,
		scratch:  make([]float32, cfg.MaxBlock*channels),
		gainBuf:  make([]float32, cfg.MaxBlock),
	}
}

// Add attaches a weighted input. The mixer owns source afterwards. Add
// allocates; call it during setup, not from the audio thread.
func (s *Summing[C]) Add(source core.Processor[C], weight float32) {
	s.inputs = append(s.inputs, summed[C]{source: source, weight: weight})
}

// SetSoftClip enables or disables the tanh clipper on the summed
// output. Call during setup, not from the audio thread.
func (s *Summing[C]) SetSoftClip(enabled bool) {
	s.softClip = enabled
}

// Process overwrites buf with the weighted sum of all inputs.
func (s *Summing[C]) Process(buf []float32, sampleIndex uint64) {
	if len(s.inputs) == 0 {
		core.Zero(buf)
		return
	}

	maxFrames := len(s.gainBuf)
	frames := len(buf) / s.channels

	for start := 0; start < frames; {
		n := min(frames-start, maxFrames)
		at := sampleIndex + uint64(start)
		seg := buf[start*s.channels : (start+n)*s.channels]

		first := s.inputs[0]
		core.Zero(seg)
		first.source.Process(seg, at)
		if first.weight != 1 {
			for i := range seg {
				seg[i] *= first.weight
			}
		}

		for _, in := range s.inputs[1:] {
			scratch := s.scratch[:len(seg)]
			core.Zero(scratch)
			in.source.Process(scratch, at)

			for i := range seg {
				seg[i] += in.weight * scratch[i]
			}
		}

		s.applyOutput(seg, n, at)
		start += n
	}
}

// applyOutput runs the gain stage and clipper over one chunk. A unity
// constant gain with the clipper off leaves the chunk untouched.
func (s *Summing[C]) applyOutput(seg []float32, frames int, at uint64) {
	if v, ok := s.gain.Constant(); ok && v == 1 && !s.softClip {
		return
	}

	s.gain.Fill(s.gainBuf[:frames], at)
	for f := 0; f < frames; f++ {
		g := s.gainBuf[f]
		base := f * s.channels
		for c := 0; c < s.channels; c++ {
			seg[base+c] *= g
		}
	}

	if s.softClip {
		for i := range seg {
			seg[i] = satTanh(seg[i])
		}
	}
}

// Reset resets every input and the gain parameter.
func (s *Summing[C]) Reset() {
	for _, in := range s.inputs {
		in.source.Reset()
	}
	s.gain.Reset()
}

// SetSampleRate propagates the sample rate to every input and the
// gain parameter.
func (s *Summing[C]) SetSampleRate(sampleRate float64) {
	for _, in := range s.inputs {
		in.source.SetSampleRate(sampleRate)
	}
	s.gain.SetSampleRate(sampleRate)
}

// Latency reports the largest latency over all inputs. Inputs with
// smaller latency are not re-aligned; a summing bus over units of
// unequal latency should compensate upstream.
func (s *Summing[C]) Latency() int {
	latency := 0
	for _, in := range s.inputs {
		if l := in.source.Latency(); l > latency {
			latency = l
		}
	}

	return latency
}

// Layout reports the channel configuration this mixer processes.
func (s *Summing[C]) Layout() C {
	var c C

	return c
}

// Describe reports the mixer, its gain parameter, and all inputs with
// their weights.
func (s *Summing[C]) Describe() core.Node {
	children := make([]core.Node, 0, len(s.inputs)+1)
	children = append(children, s.gain.Describe())
	for _, in := range s.inputs {
		children = append(children, core.Node{
			Name:     "Input",
			Detail:   fmt.Sprintf("weight=%.4g", in.weight),
			Children: []core.Node{core.DescribeAny(in.source)},
		})
	}

	detail := ""
	if s.softClip {
		detail = "softclip"
	}

	return core.Node{Name: "Summing", Detail: detail, Children: children}
}
