// Package spectral runs frequency-domain processors inside a streaming
// overlap-add engine. A Processor sees whole FFT frames; the engine
// handles framing, windowing, and reconstruction so spectral units
// compose with time-domain ones in a chain.
package spectral

// Processor transforms one FFT frame in place. bins holds the full
// complex spectrum; implementations that change magnitudes must keep
// the conjugate symmetry bins[n-k] = conj(bins[k]) so the inverse
// transform stays real.
//
// sampleIndex is the absolute position of the first sample of the
// frame, so parameters resolve against the same timeline as
// time-domain processors.
type Processor interface {
	ProcessSpectrum(bins []complex64, sampleIndex uint64)
	Reset()
	SetSampleRate(sampleRate float64)
}
