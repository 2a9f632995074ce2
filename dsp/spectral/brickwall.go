package spectral

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Brickwall zeroes every bin above the cutoff frequency, giving an
// idealized lowpass with no passband coloration. The hard spectral
// edge rings in the time domain; it is a surgical tool, not a musical
// filter.
type Brickwall struct {
	cutoff     param.Param
	sampleRate float64
}

// NewBrickwall creates a brickwall lowpass with the cutoff in Hz.
func NewBrickwall(cutoff param.Param) *Brickwall {
	return &Brickwall{cutoff: cutoff, sampleRate: 44100}
}

// ProcessSpectrum zeroes bins above the cutoff, mirroring the negative
// frequencies to keep the spectrum conjugate symmetric.
func (b *Brickwall) ProcessSpectrum(bins []complex64, sampleIndex uint64) {
	n := len(bins)
	if n == 0 {
		return
	}

	cutoffHz := float64(b.cutoff.ReadAt(sampleIndex))
	edge := int(cutoffHz / b.sampleRate * float64(n))
	if edge < 0 {
		edge = 0
	}
	if edge > n/2 {
		return
	}

	for k := edge; k <= n-edge && k < n; k++ {
		if k == 0 {
			continue
		}
		bins[k] = 0
	}
}

// Reset resets the cutoff parameter's modulation source, if any.
func (b *Brickwall) Reset() {
	b.cutoff.Reset()
}

// SetSampleRate stores the rate used to map the cutoff to a bin index.
func (b *Brickwall) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	b.sampleRate = sampleRate
	b.cutoff.SetSampleRate(sampleRate)
}

// Describe reports the filter and its cutoff parameter.
func (b *Brickwall) Describe() core.Node {
	return core.Node{Name: "Brickwall", Children: []core.Node{b.cutoff.Describe()}}
}
