// Package chain composes processing units into serial signal paths.
//
// Chain is the dynamic form: units are appended behind the Processor
// interface, so paths can be assembled at runtime from configuration.
// Static is the fully typed form: the whole path is one concrete
// nested type with no interface dispatch between stages.
package chain

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/mix"
	"github.com/Na1w/infinitedsp/dsp/param"
	"github.com/rs/xid"
)

type node[C core.ChannelConfig] struct {
	id   xid.ID
	proc core.Processor[C]
}

// Chain runs appended units in order over the same buffer. All units
// share one channel layout; mixing layouts fails to compile. A chain
// is itself a Processor, so chains nest inside other chains, mixers,
// and modulation slots.
//
// Builder calls allocate and must happen before processing starts.
type Chain[C core.ChannelConfig] struct {
	nodes      []node[C]
	sampleRate float64
	opts       []core.Option
}

// New creates an empty chain at the given sample rate. Every appended
// unit is configured for this rate as it is added. The options are
// forwarded to mixers the builder creates.
func New[C core.ChannelConfig](sampleRate float64, opts ...core.Option) *Chain[C] {
	return &Chain[C]{sampleRate: sampleRate, opts: opts}
}

// And appends a unit to the end of the chain and returns the chain
// for further building. The chain owns the unit afterwards.
func (c *Chain[C]) And(p core.Processor[C]) *Chain[C] {
	p.SetSampleRate(c.sampleRate)
	c.nodes = append(c.nodes, node[C]{id: xid.New(), proc: p})

	return c
}

// AndMix appends a unit behind a dry/wet blend with a fixed mix
// amount. blend 0 bypasses the unit, 1 is fully wet.
func (c *Chain[C]) AndMix(p core.Processor[C], blend float32) *Chain[C] {
	return c.AndMixParam(p, param.NewConstant(blend))
}

// AndMixParam appends a unit behind a dry/wet blend driven by a
// parameter, so the mix amount can move at audio rate.
func (c *Chain[C]) AndMixParam(p core.Processor[C], blend param.Param) *Chain[C] {
	return c.And(mix.NewParallel[C](p, blend, c.opts...))
}

// Len reports the number of appended units.
func (c *Chain[C]) Len() int {
	return len(c.nodes)
}

// Process runs every unit over buf in append order.
func (c *Chain[C]) Process(buf []float32, sampleIndex uint64) {
	for _, n := range c.nodes {
		n.proc.Process(buf, sampleIndex)
	}
}

// Reset resets every unit in the chain.
func (c *Chain[C]) Reset() {
	for _, n := range c.nodes {
		n.proc.Reset()
	}
}

// SetSampleRate reconfigures every unit for the new rate.
func (c *Chain[C]) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	c.sampleRate = sampleRate
	for _, n := range c.nodes {
		n.proc.SetSampleRate(sampleRate)
	}
}

// Latency reports the sum of all unit latencies.
func (c *Chain[C]) Latency() int {
	total := 0
	for _, n := range c.nodes {
		total += n.proc.Latency()
	}

	return total
}

// Layout reports the channel configuration shared by all units.
func (c *Chain[C]) Layout() C {
	var cc C

	return cc
}

// Describe reports the chain with one child per unit. Each child
// carries the ID assigned when the unit was appended, so repeated
// dumps identify the same unit by the same ID.
func (c *Chain[C]) Describe() core.Node {
	children := make([]core.Node, len(c.nodes))
	for i, n := range c.nodes {
		child := core.DescribeAny(n.proc)
		child.ID = n.id
		children[i] = child
	}

	return core.Node{Name: "Chain", Children: children}
}

// ToStereo wraps a completed mono chain for a stereo slot, duplicating
// its output to both channels.
func ToStereo(c *Chain[core.Mono]) *Chain[core.Stereo] {
	s := New[core.Stereo](c.sampleRate, c.opts...)

	return s.And(core.NewMonoToStereo[core.Processor[core.Mono]](c))
}

// ToMono wraps a completed stereo chain for a mono slot, feeding both
// channels the mono input and downmixing the result.
func ToMono(c *Chain[core.Stereo]) *Chain[core.Mono] {
	m := New[core.Mono](c.sampleRate, c.opts...)

	return m.And(core.NewStereoToMono[core.Processor[core.Stereo]](c, c.opts...))
}
