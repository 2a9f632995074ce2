package effects

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// CurveType selects how MapRange interpolates between its bounds.
type CurveType uint8

const (
	// CurveLinear interpolates uniformly between min and max.
	CurveLinear CurveType = iota
	// CurveExponential interpolates multiplicatively, which suits frequency
	// and time ranges where equal ratios should feel like equal steps.
	CurveExponential
)

// MapRange maps a control signal in [0, 1] onto [min, max], replacing the
// buffer contents. Input values outside [0, 1] are clamped. All three inputs
// are parameters, so the bounds themselves may move at audio rate.
//
// The exponential curve needs a stable ratio between the bounds. When min is
// closer to zero than 1e-6, or when the bounds straddle zero, the mapping
// falls back to linear for those frames.
type MapRange struct {
	input param.Param
	min   param.Param
	max   param.Param
	curve CurveType

	inBuf  []float32
	minBuf []float32
	maxBuf []float32
}

// NewMapRange creates a range mapper from input through [min, max].
func NewMapRange(input, minVal, maxVal param.Param, curve CurveType, opts ...core.Option) (*MapRange, error) {
	switch curve {
	case CurveLinear, CurveExponential:
	default:
		return nil, fmt.Errorf("unknown curve type: %d", curve)
	}

	cfg := core.ApplyOptions(opts...)

	return &MapRange{
		input:  input,
		min:    minVal,
		max:    maxVal,
		curve:  curve,
		inBuf:  make([]float32, cfg.MaxBlock),
		minBuf: make([]float32, cfg.MaxBlock),
		maxBuf: make([]float32, cfg.MaxBlock),
	}, nil
}

// Process overwrites buf with the mapped control signal.
func (m *MapRange) Process(buf []float32, sampleIndex uint64) {
	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(m.inBuf))
		at := sampleIndex + uint64(start)

		m.input.Fill(m.inBuf[:n], at)
		m.min.Fill(m.minBuf[:n], at)
		m.max.Fill(m.maxBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			t := core.Clamp32(m.inBuf[i], 0, 1)
			lo := m.minBuf[i]
			hi := m.maxBuf[i]

			if m.curve == CurveExponential && expMappable(lo, hi) {
				seg[i] = lo * float32(math.Pow(float64(hi/lo), float64(t)))
			} else {
				seg[i] = lo + (hi-lo)*t
			}
		}

		start += n
	}
}

// expMappable reports whether [lo, hi] has a usable ratio for exponential
// interpolation.
func expMappable(lo, hi float32) bool {
	if lo < 0 && hi > 0 {
		return false
	}

	return lo >= 1e-6 || lo <= -1e-6
}

// Reset resets the modulation sources of all three parameters, if any.
func (m *MapRange) Reset() {
	m.input.Reset()
	m.min.Reset()
	m.max.Reset()
}

// SetSampleRate propagates the sample rate to all three parameters.
func (m *MapRange) SetSampleRate(sampleRate float64) {
	m.input.SetSampleRate(sampleRate)
	m.min.SetSampleRate(sampleRate)
	m.max.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (m *MapRange) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (m *MapRange) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the mapper and its input, min, and max parameters.
func (m *MapRange) Describe() core.Node {
	detail := "linear"
	if m.curve == CurveExponential {
		detail = "exponential"
	}

	return core.Node{
		Name:     "MapRange",
		Detail:   detail,
		Children: []core.Node{m.input.Describe(), m.min.Describe(), m.max.Describe()},
	}
}
