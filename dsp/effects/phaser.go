package effects

import (
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// onePoleAllpass is one stage of the phaser's phase shifting network.
type onePoleAllpass struct {
	zm1 float32
}

func (a *onePoleAllpass) process(input, a1 float32) float32 {
	y := input*-a1 + a.zm1
	a.zm1 = input + y*a1

	return y
}

// Phaser sweeps six cascaded first-order allpass stages between a
// minimum and maximum frequency with an internal 0.5 Hz sine LFO.
// Mixing the shifted signal with the dry input carves moving notches
// into the spectrum; feedback sharpens them.
type Phaser struct {
	stages   [6]onePoleAllpass
	lfoPhase float32
	lfoInc   float32

	minFreq   param.Param
	maxFreq   param.Param
	feedback  param.Param
	mixAmount param.Param

	sampleRate float64
	lastSample float32

	minFreqBuf  []float32
	maxFreqBuf  []float32
	feedbackBuf []float32
	mixBuf      []float32
}

// NewPhaser creates a phaser sweeping between minFreq and maxFreq in
// Hz, with feedback and mix in [0, 1].
func NewPhaser(minFreq, maxFreq, feedback, mixAmount param.Param, opts ...core.Option) *Phaser {
	cfg := core.ApplyOptions(opts...)
	sampleRate := 44100.0

	return &Phaser{
		lfoInc:      float32(2 * math.Pi * 0.5 / sampleRate),
		minFreq:     minFreq,
		maxFreq:     maxFreq,
		feedback:    feedback,
		mixAmount:   mixAmount,
		sampleRate:  sampleRate,
		minFreqBuf:  make([]float32, cfg.MaxBlock),
		maxFreqBuf:  make([]float32, cfg.MaxBlock),
		feedbackBuf: make([]float32, cfg.MaxBlock),
		mixBuf:      make([]float32, cfg.MaxBlock),
	}
}

// Process runs the phaser over buf in place.
func (p *Phaser) Process(buf []float32, sampleIndex uint64) {
	const twoPi = 2 * math.Pi

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(p.mixBuf))
		at := sampleIndex + uint64(start)

		p.minFreq.Fill(p.minFreqBuf[:n], at)
		p.maxFreq.Fill(p.maxFreqBuf[:n], at)
		p.feedback.Fill(p.feedbackBuf[:n], at)
		p.mixAmount.Fill(p.mixBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			minF := p.minFreqBuf[i]
			maxF := p.maxFreqBuf[i]

			input := seg[i] + p.lastSample*p.feedbackBuf[i]

			p.lfoPhase += p.lfoInc
			if p.lfoPhase > twoPi {
				p.lfoPhase -= twoPi
			}

			lfo := (float32(math.Sin(float64(p.lfoPhase))) + 1) * 0.5
			freq := minF + lfo*(maxF-minF)

			w := twoPi * freq / float32(p.sampleRate)
			tan := float32(math.Tan(float64(w * 0.5)))
			a1 := (1 - tan) / (1 + tan)

			out := input
			for s := range p.stages {
				out = p.stages[s].process(out, a1)
			}

			p.lastSample = out
			m := p.mixBuf[i]
			seg[i] = seg[i]*(1-m) + out*m
		}

		start += n
	}
}

// Reset clears the allpass states, rewinds the sweep, and resets all
// parameters.
func (p *Phaser) Reset() {
	for i := range p.stages {
		p.stages[i].zm1 = 0
	}
	p.lfoPhase = 0
	p.lastSample = 0

	p.minFreq.Reset()
	p.maxFreq.Reset()
	p.feedback.Reset()
	p.mixAmount.Reset()
}

// SetSampleRate reconfigures the phaser for a new rate, rescaling the
// sweep increment so the LFO keeps its rate in Hz.
func (p *Phaser) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	oldRate := p.sampleRate
	p.sampleRate = sampleRate
	p.minFreq.SetSampleRate(sampleRate)
	p.maxFreq.SetSampleRate(sampleRate)
	p.feedback.SetSampleRate(sampleRate)
	p.mixAmount.SetSampleRate(sampleRate)

	p.lfoInc = p.lfoInc * float32(oldRate/sampleRate)
}

// Latency reports zero.
func (p *Phaser) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (p *Phaser) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the phaser and its four parameters.
func (p *Phaser) Describe() core.Node {
	return core.Node{
		Name: "Phaser",
		Children: []core.Node{
			p.minFreq.Describe(),
			p.maxFreq.Describe(),
			p.feedback.Describe(),
			p.mixAmount.Describe(),
		},
	}
}
