package effects

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/delay"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Delay is a digital delay with feedback and a dry/wet mix. The delay
// time parameter is read once at the start of every Process call and
// rounded to whole samples, so the tap does not glide; modulating it
// produces stepped jumps. Because that read advances a Modulated time
// source by one sample per call, splitting a block across calls can
// land the steps differently: the offset-splitting identity holds for
// the feedback and mix parameters but not for a Modulated delay time.
// TapeDelay reads the time per sample and keeps the identity;
// ModulatedDelay covers smoothly swept taps with an internal LFO.
type Delay struct {
	line            *delay.Line
	delaySamples    int
	maxDelaySeconds float64
	sampleRate      float64

	delayTime param.Param
	feedback  param.Param
	mixAmount param.Param

	feedbackBuf []float32
	mixBuf      []float32
}

// NewDelay creates a delay holding at most maxDelaySeconds of signal.
// delayTime is in seconds, feedback and mixAmount in [0, 1].
func NewDelay(maxDelaySeconds float64, delayTime, feedback, mixAmount param.Param, opts ...core.Option) (*Delay, error) {
	if maxDelaySeconds <= 0 {
		return nil, fmt.Errorf("max delay must be > 0 seconds: %g", maxDelaySeconds)
	}

	cfg := core.ApplyOptions(opts...)
	sampleRate := 44100.0

	line, err := delay.New(int(maxDelaySeconds * sampleRate))
	if err != nil {
		return nil, err
	}

	return &Delay{
		line:            line,
		maxDelaySeconds: maxDelaySeconds,
		sampleRate:      sampleRate,
		delayTime:       delayTime,
		feedback:        feedback,
		mixAmount:       mixAmount,
		feedbackBuf:     make([]float32, cfg.MaxBlock),
		mixBuf:          make([]float32, cfg.MaxBlock),
	}, nil
}

// Process runs the delay over buf in place.
func (d *Delay) Process(buf []float32, sampleIndex uint64) {
	delaySeconds := d.delayTime.ReadAt(sampleIndex)
	d.delaySamples = int(math.Round(float64(delaySeconds) * d.sampleRate))
	if d.delaySamples >= d.line.Len() {
		d.delaySamples = d.line.Len() - 1
	}
	if d.delaySamples < 0 {
		d.delaySamples = 0
	}

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(d.feedbackBuf))
		at := sampleIndex + uint64(start)

		d.feedback.Fill(d.feedbackBuf[:n], at)
		d.mixAmount.Fill(d.mixBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			input := seg[i]
			delayed := d.line.Read(d.delaySamples)

			d.line.Write(input + delayed*d.feedbackBuf[i])

			m := d.mixBuf[i]
			seg[i] = input*(1-m) + delayed*m
		}

		start += n
	}
}

// Reset silences the delay line and resets all parameters.
func (d *Delay) Reset() {
	d.line.Reset()
	d.delayTime.Reset()
	d.feedback.Reset()
	d.mixAmount.Reset()
}

// SetSampleRate reconfigures the delay for a new rate. The line only
// grows, so the maximum delay stays reachable in seconds. Not
// real-time safe.
func (d *Delay) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	d.sampleRate = sampleRate
	d.delayTime.SetSampleRate(sampleRate)
	d.feedback.SetSampleRate(sampleRate)
	d.mixAmount.SetSampleRate(sampleRate)

	if size := int(d.maxDelaySeconds * sampleRate); size > d.line.Len() {
		grown, err := delay.New(size)
		if err != nil {
			return
		}
		d.line = grown
	}
}

// Latency reports zero; the dry path is not delayed.
func (d *Delay) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (d *Delay) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the delay and its three parameters.
func (d *Delay) Describe() core.Node {
	return core.Node{
		Name:   "Delay",
		Detail: fmt.Sprintf("%d samples", d.delaySamples),
		Children: []core.Node{
			d.delayTime.Describe(),
			d.feedback.Describe(),
			d.mixAmount.Describe(),
		},
	}
}
