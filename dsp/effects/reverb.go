package effects

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/delay"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Comb and allpass lengths in samples at 44100 Hz. Mutually prime so
// the tails do not reinforce each other.
var (
	reverbCombLengths    = [8]int{1674, 1782, 1915, 2034, 2133, 2236, 2335, 2425}
	reverbAllpassLengths = [8]int{225, 341, 441, 561, 689, 832, 971, 1083}
)

const (
	reverbCombFeedback    = 0.8
	reverbCombDamp        = 0.3
	reverbAllpassFeedback = 0.5
)

// reverbComb is one parallel feedback comb with a damped loop.
type reverbComb struct {
	line        *delay.Line
	filterStore float32
}

// process returns the comb tail and writes the damped feedback.
func (c *reverbComb) process(input float32) float32 {
	bufVal := c.line.Read(c.line.Len())

	c.filterStore = bufVal*(1-reverbCombDamp) + c.filterStore*reverbCombDamp
	c.line.Write(input + c.filterStore*reverbCombFeedback)

	return bufVal
}

// reverbAllpass is one series diffusion stage.
type reverbAllpass struct {
	line *delay.Line
}

func (a *reverbAllpass) process(input float32) float32 {
	bufOut := a.line.Read(a.line.Len())
	a.line.Write(input + bufOut*reverbAllpassFeedback)

	return bufOut - input
}

// Reverb is a Schroeder-style algorithmic reverb: eight parallel
// damped comb filters summed, then diffused through eight series
// allpass stages. The output is fully wet; blend it with the dry
// signal through a parallel mixer.
//
// Different seeds shift every filter length, giving decorrelated
// tails. Two seeded instances behind a DualMono make a wide stereo
// reverb.
type Reverb struct {
	combs     [8]reverbComb
	allpasses [8]reverbAllpass

	gain       param.Param
	sampleRate float64
	seed       int

	inputBuf []float32
	gainBuf  []float32
}

// NewReverb creates a reverb with the default seed. gain scales the
// input into the tank, controlling the reverb amount.
func NewReverb(gain param.Param, opts ...core.Option) (*Reverb, error) {
	return NewReverbSeeded(gain, 0, opts...)
}

// NewReverbSeeded creates a reverb whose filter lengths are offset by
// the seed.
func NewReverbSeeded(gain param.Param, seed int, opts ...core.Option) (*Reverb, error) {
	if seed < 0 {
		return nil, fmt.Errorf("reverb seed must be >= 0: %d", seed)
	}

	cfg := core.ApplyOptions(opts...)

	r := &Reverb{
		gain:       gain,
		sampleRate: 44100,
		seed:       seed,
		inputBuf:   make([]float32, cfg.MaxBlock),
		gainBuf:    make([]float32, cfg.MaxBlock),
	}
	if err := r.buildFilters(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Reverb) buildFilters() error {
	srScale := r.sampleRate / 44100.0
	offset := r.seed * 23

	for i := range r.combs {
		size := int(float64(reverbCombLengths[i]+offset) * srScale)
		line, err := delay.New(size)
		if err != nil {
			return err
		}
		r.combs[i] = reverbComb{line: line}
	}

	for i := range r.allpasses {
		size := int(float64(reverbAllpassLengths[i]+offset) * srScale)
		line, err := delay.New(size)
		if err != nil {
			return err
		}
		r.allpasses[i] = reverbAllpass{line: line}
	}

	return nil
}

// Process replaces buf with the reverberated signal.
func (r *Reverb) Process(buf []float32, sampleIndex uint64) {
	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(r.inputBuf))
		at := sampleIndex + uint64(start)

		r.gain.Fill(r.gainBuf[:n], at)

		seg := buf[start : start+n]
		input := r.inputBuf[:n]
		for i := 0; i < n; i++ {
			input[i] = seg[i] * r.gainBuf[i]
			seg[i] = 0
		}

		for i := 0; i < n; i++ {
			acc := float32(0)
			for c := range r.combs {
				acc += r.combs[c].process(input[i])
			}

			for a := range r.allpasses {
				acc = r.allpasses[a].process(acc)
			}

			seg[i] = acc
		}

		start += n
	}
}

// Reset silences every comb and allpass and resets the gain
// parameter.
func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].line.Reset()
		r.combs[i].filterStore = 0
	}
	for i := range r.allpasses {
		r.allpasses[i].line.Reset()
	}
	r.gain.Reset()
}

// SetSampleRate rebuilds the filter network so the tail keeps its
// length in seconds. Rate changes below 1 Hz are ignored. Not
// real-time safe.
func (r *Reverb) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || math.Abs(r.sampleRate-sampleRate) <= 1 {
		return
	}

	r.sampleRate = sampleRate
	r.gain.SetSampleRate(sampleRate)
	_ = r.buildFilters()
}

// Latency reports zero; the combs color the onset rather than delay
// the dry path.
func (r *Reverb) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (r *Reverb) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the reverb, its seed, and the gain parameter.
func (r *Reverb) Describe() core.Node {
	return core.Node{
		Name:     "Reverb",
		Detail:   fmt.Sprintf("seed=%d", r.seed),
		Children: []core.Node{r.gain.Describe()},
	}
}
