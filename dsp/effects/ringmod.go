package effects

import (
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// RingMod multiplies the signal with an internal sine carrier and
// blends the result with the dry input.
type RingMod struct {
	phase      float32
	freq       param.Param
	mixAmount  param.Param
	sampleRate float64

	freqBuf []float32
	mixBuf  []float32
}

// NewRingMod creates a ring modulator with the given carrier
// frequency in Hz and dry/wet mix in [0, 1].
func NewRingMod(freq, mixAmount param.Param, opts ...core.Option) *RingMod {
	cfg := core.ApplyOptions(opts...)

	return &RingMod{
		freq:       freq,
		mixAmount:  mixAmount,
		sampleRate: 44100,
		freqBuf:    make([]float32, cfg.MaxBlock),
		mixBuf:     make([]float32, cfg.MaxBlock),
	}
}

// Process runs the modulator over buf in place.
func (r *RingMod) Process(buf []float32, sampleIndex uint64) {
	const twoPi = 2 * math.Pi
	invSR := float32(1.0 / r.sampleRate)

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(r.freqBuf))
		at := sampleIndex + uint64(start)

		r.freq.Fill(r.freqBuf[:n], at)
		r.mixAmount.Fill(r.mixBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			phase := r.phase

			r.phase += twoPi * r.freqBuf[i] * invSR
			if r.phase > twoPi {
				r.phase -= twoPi
			}

			carrier := float32(math.Sin(float64(phase)))
			wet := seg[i] * carrier

			m := r.mixBuf[i]
			seg[i] = seg[i]*(1-m) + wet*m
		}

		start += n
	}
}

// Reset rewinds the carrier and resets both parameters.
func (r *RingMod) Reset() {
	r.phase = 0
	r.freq.Reset()
	r.mixAmount.Reset()
}

// SetSampleRate reconfigures the modulator for a new rate.
func (r *RingMod) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	r.sampleRate = sampleRate
	r.freq.SetSampleRate(sampleRate)
	r.mixAmount.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (r *RingMod) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (r *RingMod) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the modulator and its carrier and mix parameters.
func (r *RingMod) Describe() core.Node {
	return core.Node{
		Name:     "RingMod",
		Children: []core.Node{r.freq.Describe(), r.mixAmount.Describe()},
	}
}
