package spectral

import (
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// PitchShift transposes the signal by resampling bin magnitudes along
// the frequency axis while keeping each bin's original phase. The
// phases advance at their native rates, so transients smear a little;
// in exchange the shifter needs no phase bookkeeping between frames.
type PitchShift struct {
	semitones param.Param
	scratch   []complex64
}

// NewPitchShift creates a pitch shifter. semitones is the transposition
// in equal-tempered semitones; positive shifts up.
func NewPitchShift(semitones param.Param) *PitchShift {
	return &PitchShift{semitones: semitones}
}

// ProcessSpectrum resamples the magnitude spectrum in place.
func (p *PitchShift) ProcessSpectrum(bins []complex64, sampleIndex uint64) {
	n := len(bins)
	if n < 4 {
		return
	}

	semis := p.semitones.ReadAt(sampleIndex)
	factor := math.Pow(2, float64(semis)/12)
	if factor <= 0 {
		return
	}

	if len(p.scratch) != n {
		p.scratch = make([]complex64, n)
	}

	half := n / 2
	for k := 0; k <= half; k++ {
		src := float64(k) / factor

		var out complex64
		if src < float64(half-1) {
			i0 := int(src)
			frac := float32(src - float64(i0))

			m0 := magnitude(bins[i0])
			m1 := magnitude(bins[i0+1])
			mag := m0*(1-frac) + m1*frac

			phase := math.Atan2(float64(imag(bins[k])), float64(real(bins[k])))
			out = complex(mag*float32(math.Cos(phase)), mag*float32(math.Sin(phase)))
		}

		p.scratch[k] = out
		if k > 0 {
			p.scratch[n-k] = complex(real(out), -imag(out))
		}
	}

	copy(bins, p.scratch)
}

func magnitude(c complex64) float32 {
	re := float64(real(c))
	im := float64(imag(c))

	return float32(math.Sqrt(re*re + im*im))
}

// Reset resets the semitones parameter's modulation source, if any.
func (p *PitchShift) Reset() {
	p.semitones.Reset()
}

// SetSampleRate propagates the rate to the semitones parameter.
func (p *PitchShift) SetSampleRate(sampleRate float64) {
	p.semitones.SetSampleRate(sampleRate)
}

// Describe reports the shifter and its semitones parameter.
func (p *PitchShift) Describe() core.Node {
	return core.Node{Name: "PitchShift", Children: []core.Node{p.semitones.Describe()}}
}
