// Package sweep measures the frequency response of processors, either
// by stepped sine probing or by logarithmic sweep deconvolution.
package sweep

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/Na1w/infinitedsp/dsp/core"
)

// Errors returned by sweep functions.
var (
	ErrInvalidFrequency  = errors.New("sweep: frequency must be positive")
	ErrInvalidDuration   = errors.New("sweep: duration must be positive")
	ErrInvalidSampleRate = errors.New("sweep: sample rate must be positive")
	ErrFrequencyOrder    = errors.New("sweep: start frequency must be less than end frequency")
	ErrEmptyResponse     = errors.New("sweep: response signal is empty")
	ErrNilProcessor      = errors.New("sweep: processor factory returned nil")
)

// Point is one measured frequency response sample.
type Point struct {
	Frequency float64
	GainDB    float64
}

// Config controls stepped-sine response measurement. Zero values
// select 20 Hz to 20 kHz at 6 points per octave with 100 ms of settle
// time and 200 ms of measurement per point.
type Config struct {
	SampleRate      float64
	StartFreq       float64
	EndFreq         float64
	PointsPerOctave int
	SettleSeconds   float64
	MeasureSeconds  float64
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 48000
	}
	if c.StartFreq <= 0 {
		c.StartFreq = 20
	}
	if c.EndFreq <= 0 {
		c.EndFreq = 20000
	}
	if c.PointsPerOctave <= 0 {
		c.PointsPerOctave = 6
	}
	if c.SettleSeconds <= 0 {
		c.SettleSeconds = 0.1
	}
	if c.MeasureSeconds <= 0 {
		c.MeasureSeconds = 0.2
	}

	return c
}

// Response measures the steady-state magnitude response of a
// processor. newProc must return a fresh processor per call; each
// frequency point gets its own instance, so envelope or filter state
// from one tone never colors the next. Gain is output RMS over input
// RMS in dB.
func Response(newProc func() core.Processor[core.Mono], cfg Config) ([]Point, error) {
	cfg = cfg.withDefaults()
	if cfg.StartFreq >= cfg.EndFreq {
		return nil, ErrFrequencyOrder
	}
	if cfg.EndFreq >= cfg.SampleRate/2 {
		return nil, fmt.Errorf("sweep: end frequency must be below Nyquist (%g Hz): %g", cfg.SampleRate/2, cfg.EndFreq)
	}

	step := math.Pow(2, 1/float64(cfg.PointsPerOctave))
	settle := int(cfg.SettleSeconds * cfg.SampleRate)
	measure := int(cfg.MeasureSeconds * cfg.SampleRate)

	var points []Point
	for freq := cfg.StartFreq; freq <= cfg.EndFreq*1.0001; freq *= step {
		proc := newProc()
		if proc == nil {
			return nil, ErrNilProcessor
		}

		proc.SetSampleRate(cfg.SampleRate)
		proc.Reset()

		total := settle + measure
		buf := make([]float32, total)
		for i := range buf {
			buf[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / cfg.SampleRate))
		}
		proc.Process(buf, 0)

		out := rms(buf[settle:])
		in := math.Sqrt(0.5)

		gainDB := math.Inf(-1)
		if out > 0 {
			gainDB = 20 * math.Log10(out/in)
		}

		points = append(points, Point{Frequency: freq, GainDB: gainDB})
	}

	return points, nil
}

func rms(buf []float32) float64 {
	if len(buf) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}

	return math.Sqrt(sum / float64(len(buf)))
}

// LogSweep generates a logarithmic sine sweep and deconvolves recorded
// responses back into impulse responses. Each octave of a log sweep
// takes the same amount of time, which spreads excitation energy
// evenly across the musical spectrum.
type LogSweep struct {
	StartFreq  float64
	EndFreq    float64
	Duration   float64
	SampleRate float64
}

// Validate checks that the LogSweep parameters are valid.
func (s *LogSweep) Validate() error {
	if s.StartFreq <= 0 || s.EndFreq <= 0 {
		return ErrInvalidFrequency
	}

	if s.StartFreq >= s.EndFreq {
		return ErrFrequencyOrder
	}

	if s.Duration <= 0 {
		return ErrInvalidDuration
	}

	if s.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	return nil
}

func (s *LogSweep) samples() int {
	return int(math.Round(s.Duration * s.SampleRate))
}

// Generate creates the logarithmic sine sweep signal.
//
// The instantaneous frequency rises exponentially from StartFreq to
// EndFreq:
//
//	x(t) = sin(2π * f1 * T / ln(f2/f1) * (exp(t/T * ln(f2/f1)) - 1))
func (s *LogSweep) Generate() ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	n := s.samples()
	out := make([]float64, n)

	T := s.Duration
	lnRatio := math.Log(s.EndFreq / s.StartFreq)

	for i := range out {
		t := float64(i) / s.SampleRate
		phase := 2 * math.Pi * s.StartFreq * T / lnRatio * (math.Exp(t/T*lnRatio) - 1)
		out[i] = math.Sin(phase)
	}

	return out, nil
}

// Measure drives a processor with the sweep and returns its recorded
// response, ready for Deconvolve. The response is padded with a tail
// of silence so decaying reverbs and delays are captured.
func (s *LogSweep) Measure(proc core.Processor[core.Mono], tailSeconds float64) ([]float64, error) {
	if proc == nil {
		return nil, ErrNilProcessor
	}

	sweepSignal, err := s.Generate()
	if err != nil {
		return nil, err
	}

	if tailSeconds < 0 {
		tailSeconds = 0
	}
	tail := int(tailSeconds * s.SampleRate)

	proc.SetSampleRate(s.SampleRate)
	proc.Reset()

	buf := make([]float32, len(sweepSignal)+tail)
	for i, v := range sweepSignal {
		buf[i] = float32(v)
	}
	proc.Process(buf, 0)

	out := make([]float64, len(buf))
	for i, v := range buf {
		out[i] = float64(v)
	}

	return out, nil
}

// InverseFilter creates the inverse filter for deconvolution: the
// time-reversed sweep with a 6 dB/octave amplitude tilt that
// compensates the sweep's rising energy density.
func (s *LogSweep) InverseFilter() ([]float64, error) {
	sweepSignal, err := s.Generate()
	if err != nil {
		return nil, err
	}

	n := len(sweepSignal)
	T := s.Duration
	lnRatio := math.Log(s.EndFreq / s.StartFreq)

	inv := make([]float64, n)
	for i := range inv {
		j := n - 1 - i
		t := float64(j) / s.SampleRate

		fInst := s.StartFreq * math.Exp(t/T*lnRatio)
		inv[i] = sweepSignal[j] * s.StartFreq / fInst
	}

	// Normalize so the convolution peak lands at unity.
	normFactor := T * s.StartFreq / lnRatio * s.SampleRate
	if normFactor > 0 {
		scale := 1.0 / normFactor
		for i := range inv {
			inv[i] *= scale
		}
	}

	return inv, nil
}

// Deconvolve recovers the impulse response from a recorded sweep
// response by FFT convolution with the inverse filter. For a causal
// system the main peak appears at offset len(sweep)-1.
func (s *LogSweep) Deconvolve(response []float64) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if len(response) == 0 {
		return nil, ErrEmptyResponse
	}

	inv, err := s.InverseFilter()
	if err != nil {
		return nil, err
	}

	n := len(response) + len(inv) - 1
	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("sweep: failed to create FFT plan: %w", err)
	}

	respFreq := make([]complex128, fftSize)
	padded := make([]complex128, fftSize)
	for i, v := range response {
		padded[i] = complex(v, 0)
	}
	if err := plan.Forward(respFreq, padded); err != nil {
		return nil, fmt.Errorf("sweep: forward FFT failed: %w", err)
	}

	for i := range padded {
		padded[i] = 0
	}
	for i, v := range inv {
		padded[i] = complex(v, 0)
	}

	invFreq := make([]complex128, fftSize)
	if err := plan.Forward(invFreq, padded); err != nil {
		return nil, fmt.Errorf("sweep: forward FFT failed: %w", err)
	}

	for i := range respFreq {
		respFreq[i] *= invFreq[i]
	}

	if err := plan.Inverse(padded, respFreq); err != nil {
		return nil, fmt.Errorf("sweep: inverse FFT failed: %w", err)
	}

	result := make([]float64, n)
	for i := range result {
		result[i] = real(padded[i])
	}

	return result, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
