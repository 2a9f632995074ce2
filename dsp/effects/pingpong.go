package effects

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/delay"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// PingPongDelay is a stereo delay whose feedback crosses channels:
// the left line feeds the right input and vice versa, so each repeat
// of a one-sided signal bounces to the opposite side. The delay time
// is read once per Process call and rounded to whole samples, the
// same stepped behavior as Delay.
type PingPongDelay struct {
	left  *delay.Line
	right *delay.Line

	delaySamples    int
	maxDelaySeconds float64
	sampleRate      float64

	delayTime param.Param
	feedback  param.Param
	mixAmount param.Param

	feedbackBuf []float32
	mixBuf      []float32
}

// NewPingPongDelay creates a ping-pong delay holding at most
// maxDelaySeconds of signal per channel. delayTime is in seconds,
// feedback and mixAmount in [0, 1].
func NewPingPongDelay(maxDelaySeconds float64, delayTime, feedback, mixAmount param.Param, opts ...core.Option) (*PingPongDelay, error) {
	if maxDelaySeconds <= 0 {
		return nil, fmt.Errorf("max delay must be > 0 seconds: %g", maxDelaySeconds)
	}

	cfg := core.ApplyOptions(opts...)
	sampleRate := 44100.0

	size := int(maxDelaySeconds * sampleRate)
	left, err := delay.New(size)
	if err != nil {
		return nil, err
	}
	right, err := delay.New(size)
	if err != nil {
		return nil, err
	}

	return &PingPongDelay{
		left:            left,
		right:           right,
		maxDelaySeconds: maxDelaySeconds,
		sampleRate:      sampleRate,
		delayTime:       delayTime,
		feedback:        feedback,
		mixAmount:       mixAmount,
		feedbackBuf:     make([]float32, cfg.MaxBlock),
		mixBuf:          make([]float32, cfg.MaxBlock),
	}, nil
}

// Process runs the delay over the interleaved stereo buffer in place.
func (p *PingPongDelay) Process(buf []float32, sampleIndex uint64) {
	delaySeconds := p.delayTime.ReadAt(sampleIndex)
	p.delaySamples = int(math.Round(float64(delaySeconds) * p.sampleRate))
	if p.delaySamples >= p.left.Len() {
		p.delaySamples = p.left.Len() - 1
	}
	if p.delaySamples < 0 {
		p.delaySamples = 0
	}

	frames := len(buf) / 2
	for start := 0; start < frames; {
		n := min(frames-start, len(p.feedbackBuf))
		at := sampleIndex + uint64(start)

		p.feedback.Fill(p.feedbackBuf[:n], at)
		p.mixAmount.Fill(p.mixBuf[:n], at)

		seg := buf[2*start : 2*(start+n)]
		for i := 0; i < n; i++ {
			l := seg[2*i]
			r := seg[2*i+1]

			delayedL := p.left.Read(p.delaySamples)
			delayedR := p.right.Read(p.delaySamples)

			fb := p.feedbackBuf[i]
			p.left.Write(l + delayedR*fb)
			p.right.Write(r + delayedL*fb)

			m := p.mixBuf[i]
			seg[2*i] = l*(1-m) + delayedL*m
			seg[2*i+1] = r*(1-m) + delayedR*m
		}

		start += n
	}
}

// Reset silences both delay lines and resets all parameters.
func (p *PingPongDelay) Reset() {
	p.left.Reset()
	p.right.Reset()
	p.delayTime.Reset()
	p.feedback.Reset()
	p.mixAmount.Reset()
}

// SetSampleRate reconfigures the delay for a new rate. The lines only
// grow, so the maximum delay stays reachable in seconds. Not real-time
// safe.
func (p *PingPongDelay) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	p.sampleRate = sampleRate
	p.delayTime.SetSampleRate(sampleRate)
	p.feedback.SetSampleRate(sampleRate)
	p.mixAmount.SetSampleRate(sampleRate)

	if size := int(p.maxDelaySeconds * sampleRate); size > p.left.Len() {
		grownL, err := delay.New(size)
		if err != nil {
			return
		}
		grownR, err := delay.New(size)
		if err != nil {
			return
		}
		p.left = grownL
		p.right = grownR
	}
}

// Latency reports zero; the dry path is not delayed.
func (p *PingPongDelay) Latency() int {
	return 0
}

// Layout reports a stereo configuration.
func (p *PingPongDelay) Layout() core.Stereo {
	return core.Stereo{}
}

// Describe reports the delay and its three parameters.
func (p *PingPongDelay) Describe() core.Node {
	return core.Node{
		Name:   "PingPongDelay",
		Detail: fmt.Sprintf("%d samples", p.delaySamples),
		Children: []core.Node{
			p.delayTime.Describe(),
			p.feedback.Describe(),
			p.mixAmount.Describe(),
		},
	}
}
