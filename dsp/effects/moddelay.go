package effects

import (
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/delay"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// ModulatedDelay sweeps a fractional delay tap with an internal sine
// LFO, the classic chorus and flanger structure. The tap is read with
// linear interpolation, so the sweep is click free.
//
// The two presets differ in sweep rate, base delay, and feedback:
// chorus sits around 15 ms with mild feedback, flanger around 5 ms
// with strong feedback.
type ModulatedDelay struct {
	line *delay.Line

	lfoPhase  float32
	lfoInc    float32
	baseDelay float32

	depth     param.Param
	feedback  param.Param
	mixAmount param.Param

	sampleRate float64
	maxBlock   int

	depthBuf    []float32
	feedbackBuf []float32
	mixBuf      []float32
}

func newModulatedDelay(rateHz, depthSeconds, baseSeconds float64, feedback, mixAmount float32, opts ...core.Option) *ModulatedDelay {
	cfg := core.ApplyOptions(opts...)
	sampleRate := 44100.0

	line, _ := delay.New(int(sampleRate * 0.1))

	return &ModulatedDelay{
		line:        line,
		lfoInc:      float32(2 * math.Pi * rateHz / sampleRate),
		baseDelay:   float32(baseSeconds * sampleRate),
		depth:       param.NewConstant(float32(depthSeconds * sampleRate)),
		feedback:    param.NewConstant(feedback),
		mixAmount:   param.NewConstant(mixAmount),
		sampleRate:  sampleRate,
		maxBlock:    cfg.MaxBlock,
		depthBuf:    make([]float32, cfg.MaxBlock),
		feedbackBuf: make([]float32, cfg.MaxBlock),
		mixBuf:      make([]float32, cfg.MaxBlock),
	}
}

// NewChorus creates a modulated delay tuned as a chorus: a 1.5 Hz
// sweep of 2 ms around a 15 ms base delay with 0.4 feedback.
func NewChorus(opts ...core.Option) *ModulatedDelay {
	return newModulatedDelay(1.5, 0.002, 0.015, 0.4, 0.5, opts...)
}

// NewFlanger creates a modulated delay tuned as a flanger: a 0.5 Hz
// sweep of 5 ms around a 5 ms base delay with 0.7 feedback.
func NewFlanger(opts ...core.Option) *ModulatedDelay {
	return newModulatedDelay(0.5, 0.005, 0.005, 0.7, 0.5, opts...)
}

// SetDepth replaces the sweep depth parameter, in samples. Call
// during setup, not from the audio thread.
func (m *ModulatedDelay) SetDepth(depth param.Param) {
	m.depth = depth
}

// SetFeedback replaces the feedback parameter. Call during setup, not
// from the audio thread.
func (m *ModulatedDelay) SetFeedback(feedback param.Param) {
	m.feedback = feedback
}

// SetMix replaces the dry/wet parameter. Call during setup, not from
// the audio thread.
func (m *ModulatedDelay) SetMix(mixAmount param.Param) {
	m.mixAmount = mixAmount
}

// Process runs the swept delay over buf in place.
func (m *ModulatedDelay) Process(buf []float32, sampleIndex uint64) {
	const twoPi = 2 * math.Pi

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, m.maxBlock)
		at := sampleIndex + uint64(start)

		m.depth.Fill(m.depthBuf[:n], at)
		m.feedback.Fill(m.feedbackBuf[:n], at)
		m.mixAmount.Fill(m.mixBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			input := seg[i]

			m.lfoPhase += m.lfoInc
			if m.lfoPhase > twoPi {
				m.lfoPhase -= twoPi
			}

			lfo := float32(math.Sin(float64(m.lfoPhase)))
			currentDelay := m.baseDelay + lfo*m.depthBuf[i]

			delayed := m.line.ReadFractional(currentDelay)
			m.line.Write(input + delayed*m.feedbackBuf[i])

			mx := m.mixBuf[i]
			seg[i] = input*(1-mx) + delayed*mx
		}

		start += n
	}
}

// Reset silences the delay line, rewinds the sweep, and resets all
// parameters.
func (m *ModulatedDelay) Reset() {
	m.line.Reset()
	m.lfoPhase = 0
	m.depth.Reset()
	m.feedback.Reset()
	m.mixAmount.Reset()
}

// SetSampleRate reconfigures the effect for a new rate, rescaling the
// sweep increment and base delay so they keep their values in seconds.
// Not real-time safe.
func (m *ModulatedDelay) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	oldRate := m.sampleRate
	m.sampleRate = sampleRate
	m.depth.SetSampleRate(sampleRate)
	m.feedback.SetSampleRate(sampleRate)
	m.mixAmount.SetSampleRate(sampleRate)

	m.lfoInc = m.lfoInc * float32(oldRate/sampleRate)
	m.baseDelay = m.baseDelay * float32(sampleRate/oldRate)

	if size := int(sampleRate * 0.1); size > m.line.Len() {
		grown, err := delay.New(size)
		if err != nil {
			return
		}
		m.line = grown
	}
}

// Latency reports zero; the dry path is not delayed.
func (m *ModulatedDelay) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (m *ModulatedDelay) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the swept delay and its parameters.
func (m *ModulatedDelay) Describe() core.Node {
	return core.Node{
		Name: "ModulatedDelay",
		Children: []core.Node{
			m.depth.Describe(),
			m.feedback.Describe(),
			m.mixAmount.Describe(),
		},
	}
}
