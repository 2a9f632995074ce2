// Package filter provides parameter-driven IIR filters in three
// topologies: RBJ biquads, a TPT state variable filter, and a
// zero-delay-feedback four-stage ladder. Frequency and resonance are
// parameters, so coefficients follow modulation at audio rate.
package filter

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// BiquadType selects the biquad response.
type BiquadType uint8

const (
	// BiquadLowPass passes frequencies below the cutoff.
	BiquadLowPass BiquadType = iota
	// BiquadHighPass passes frequencies above the cutoff.
	BiquadHighPass
	// BiquadBandPass passes a band around the center frequency.
	BiquadBandPass
	// BiquadNotch rejects a band around the center frequency.
	BiquadNotch
)

func (t BiquadType) String() string {
	switch t {
	case BiquadLowPass:
		return "lowpass"
	case BiquadHighPass:
		return "highpass"
	case BiquadBandPass:
		return "bandpass"
	case BiquadNotch:
		return "notch"
	default:
		return "unknown"
	}
}

// Biquad is a direct form 1 second-order section with RBJ cookbook
// coefficients. The coefficients are recomputed every sample from the
// frequency and Q parameters, so sweeping them stays stable and free
// of zipper noise.
type Biquad struct {
	filterType BiquadType
	freq       param.Param
	q          param.Param
	sampleRate float64

	x1, x2 float32
	y1, y2 float32

	freqBuf []float32
	qBuf    []float32
}

// NewBiquad creates a biquad of the given type. freq is the cutoff or
// center frequency in Hz, q the quality factor.
func NewBiquad(filterType BiquadType, freq, q param.Param, opts ...core.Option) (*Biquad, error) {
	switch filterType {
	case BiquadLowPass, BiquadHighPass, BiquadBandPass, BiquadNotch:
	default:
		return nil, fmt.Errorf("unknown biquad type: %d", filterType)
	}

	cfg := core.ApplyOptions(opts...)

	return &Biquad{
		filterType: filterType,
		freq:       freq,
		q:          q,
		sampleRate: 44100,
		freqBuf:    make([]float32, cfg.MaxBlock),
		qBuf:       make([]float32, cfg.MaxBlock),
	}, nil
}

// Process filters buf in place.
func (b *Biquad) Process(buf []float32, sampleIndex uint64) {
	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(b.freqBuf))
		at := sampleIndex + uint64(start)

		b.freq.Fill(b.freqBuf[:n], at)
		b.q.Fill(b.qBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			freq := float64(core.Clamp32(b.freqBuf[i], 1, float32(b.sampleRate*0.49)))
			q := float64(b.qBuf[i])
			if q < 0.01 {
				q = 0.01
			}

			w0 := 2 * math.Pi * freq / b.sampleRate
			cosW0 := math.Cos(w0)
			alpha := math.Sin(w0) / (2 * q)

			var b0, b1, b2 float64
			switch b.filterType {
			case BiquadLowPass:
				b0 = (1 - cosW0) / 2
				b1 = 1 - cosW0
				b2 = (1 - cosW0) / 2
			case BiquadHighPass:
				b0 = (1 + cosW0) / 2
				b1 = -(1 + cosW0)
				b2 = (1 + cosW0) / 2
			case BiquadBandPass:
				b0 = alpha
				b1 = 0
				b2 = -alpha
			default: // BiquadNotch
				b0 = 1
				b1 = -2 * cosW0
				b2 = 1
			}

			a0 := 1 + alpha
			a1 := -2 * cosW0
			a2 := 1 - alpha

			inv := 1 / a0
			nb0 := float32(b0 * inv)
			nb1 := float32(b1 * inv)
			nb2 := float32(b2 * inv)
			na1 := float32(a1 * inv)
			na2 := float32(a2 * inv)

			x := seg[i]
			y := nb0*x + nb1*b.x1 + nb2*b.x2 - na1*b.y1 - na2*b.y2

			b.x2 = b.x1
			b.x1 = x
			b.y2 = b.y1
			b.y1 = core.FlushDenormals32(y)

			seg[i] = y
		}

		start += n
	}
}

// Reset clears the filter state and resets both parameters.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
	b.freq.Reset()
	b.q.Reset()
}

// SetSampleRate reconfigures the filter for a new rate.
func (b *Biquad) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	b.sampleRate = sampleRate
	b.freq.SetSampleRate(sampleRate)
	b.q.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (b *Biquad) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (b *Biquad) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the response type and both parameters.
func (b *Biquad) Describe() core.Node {
	return core.Node{
		Name:     "Biquad",
		Detail:   b.filterType.String(),
		Children: []core.Node{b.freq.Describe(), b.q.Describe()},
	}
}
