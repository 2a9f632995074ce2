package chain

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/mix"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Static is a fully typed serial path: the composed units form one
// concrete nested type, so calls between stages are direct instead of
// going through the Processor interface. The price is that the shape
// of the path is fixed at compile time.
//
// Build one with NewStatic and extend it with the free functions Then,
// ThenMix, and ThenMixParam; Go methods cannot introduce new type
// parameters, so composition lives in functions.
type Static[C core.ChannelConfig, P core.Processor[C]] struct {
	inner      P
	sampleRate float64
}

// NewStatic starts a static path from one unit at the given sample
// rate. The channel layout is given explicitly and the unit type is
// inferred: NewStatic[core.Mono](osc, 48000).
func NewStatic[C core.ChannelConfig, P core.Processor[C]](inner P, sampleRate float64) *Static[C, P] {
	inner.SetSampleRate(sampleRate)

	return &Static[C, P]{inner: inner, sampleRate: sampleRate}
}

// Inner returns the composed unit with its concrete type intact.
func (s *Static[C, P]) Inner() P {
	return s.inner
}

// Process runs the composed path over buf.
func (s *Static[C, P]) Process(buf []float32, sampleIndex uint64) {
	s.inner.Process(buf, sampleIndex)
}

// Reset resets the composed path.
func (s *Static[C, P]) Reset() {
	s.inner.Reset()
}

// SetSampleRate reconfigures the composed path for the new rate.
func (s *Static[C, P]) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	s.sampleRate = sampleRate
	s.inner.SetSampleRate(sampleRate)
}

// Latency reports the composed path's latency.
func (s *Static[C, P]) Latency() int {
	return s.inner.Latency()
}

// Layout reports the channel configuration of the composed path.
func (s *Static[C, P]) Layout() C {
	var c C

	return c
}

// Describe reports the composed path's structure.
func (s *Static[C, P]) Describe() core.Node {
	return core.Node{Name: "Static", Children: []core.Node{core.DescribeAny(s.inner)}}
}

// SerialPair runs first then second over the same buffer. It is the
// concrete type Then produces; nested pairs spell out a whole path.
type SerialPair[C core.ChannelConfig, P1 core.Processor[C], P2 core.Processor[C]] struct {
	first  P1
	second P2
}

// First returns the first stage.
func (p *SerialPair[C, P1, P2]) First() P1 { return p.first }

// Second returns the second stage.
func (p *SerialPair[C, P1, P2]) Second() P2 { return p.second }

// Process runs both stages in order.
func (p *SerialPair[C, P1, P2]) Process(buf []float32, sampleIndex uint64) {
	p.first.Process(buf, sampleIndex)
	p.second.Process(buf, sampleIndex)
}

// Reset resets both stages.
func (p *SerialPair[C, P1, P2]) Reset() {
	p.first.Reset()
	p.second.Reset()
}

// SetSampleRate reconfigures both stages.
func (p *SerialPair[C, P1, P2]) SetSampleRate(sampleRate float64) {
	p.first.SetSampleRate(sampleRate)
	p.second.SetSampleRate(sampleRate)
}

// Latency reports the sum of both stage latencies.
func (p *SerialPair[C, P1, P2]) Latency() int {
	return p.first.Latency() + p.second.Latency()
}

// Layout reports the channel configuration shared by both stages.
func (p *SerialPair[C, P1, P2]) Layout() C {
	var c C

	return c
}

// Describe reports both stages in order.
func (p *SerialPair[C, P1, P2]) Describe() core.Node {
	return core.Node{
		Name:     "Serial",
		Children: []core.Node{core.DescribeAny(p.first), core.DescribeAny(p.second)},
	}
}

// Then extends a static path with one more unit.
func Then[C core.ChannelConfig, P1 core.Processor[C], P2 core.Processor[C]](s *Static[C, P1], next P2) *Static[C, *SerialPair[C, P1, P2]] {
	next.SetSampleRate(s.sampleRate)

	return &Static[C, *SerialPair[C, P1, P2]]{
		inner:      &SerialPair[C, P1, P2]{first: s.inner, second: next},
		sampleRate: s.sampleRate,
	}
}

// ThenMix extends a static path with a unit behind a dry/wet blend
// with a fixed mix amount.
func ThenMix[C core.ChannelConfig, P1 core.Processor[C], P2 core.Processor[C]](s *Static[C, P1], next P2, blend float32) *Static[C, *SerialPair[C, P1, *mix.Parallel[C]]] {
	return ThenMixParam(s, next, param.NewConstant(blend))
}

// ThenMixParam extends a static path with a unit behind a dry/wet
// blend driven by a parameter.
func ThenMixParam[C core.ChannelConfig, P1 core.Processor[C], P2 core.Processor[C]](s *Static[C, P1], next P2, blend param.Param) *Static[C, *SerialPair[C, P1, *mix.Parallel[C]]] {
	return Then(s, mix.NewParallel[C](next, blend))
}

// StaticToStereo wraps a completed mono static path for a stereo slot.
func StaticToStereo[P core.Processor[core.Mono]](s *Static[core.Mono, P]) *Static[core.Stereo, *core.MonoToStereo[P]] {
	return &Static[core.Stereo, *core.MonoToStereo[P]]{
		inner:      core.NewMonoToStereo(s.inner),
		sampleRate: s.sampleRate,
	}
}

// StaticToMono wraps a completed stereo static path for a mono slot.
func StaticToMono[P core.Processor[core.Stereo]](s *Static[core.Stereo, P], opts ...core.Option) *Static[core.Mono, *core.StereoToMono[P]] {
	return &Static[core.Mono, *core.StereoToMono[P]]{
		inner:      core.NewStereoToMono(s.inner, opts...),
		sampleRate: s.sampleRate,
	}
}
