// Package param provides the value sources processing units are tuned
// by: fixed constants, atomic cells shared with controller threads, and
// modulation by other processing units (envelopes, LFOs, whole chains).
package param

import (
	"fmt"

	"github.com/Na1w/infinitedsp/dsp/core"
)

type kind uint8

const (
	kindConstant kind = iota
	kindLinked
	kindModulated
)

// Param is a scalar value source read by the unit that owns it, once
// per consumed frame. It has three variants:
//
//   - Constant: a fixed value, cacheable by the consumer.
//   - Linked: follows a Cell a controller thread may store to at any
//     time; each read is one atomic load.
//   - Modulated: recomputed from an owned mono processing unit whose
//     state advances with every read.
//
// The zero value is Constant 0. A Param owns its Modulated source
// exclusively; hand it to exactly one unit and do not use copies of it
// afterwards.
type Param struct {
	kind  kind
	value float32
	cell  *Cell
	mod   core.Processor[core.Mono]
	one   [1]float32
}

// NewConstant returns a parameter fixed at v.
func NewConstant(v float32) Param {
	return Param{kind: kindConstant, value: v}
}

// NewLinked returns a parameter that follows cell. A nil cell yields a
// Constant 0 parameter.
func NewLinked(cell *Cell) Param {
	if cell == nil {
		return NewConstant(0)
	}
	return Param{kind: kindLinked, cell: cell}
}

// NewModulated returns a parameter driven by the output of source,
// which the parameter owns exclusively. A nil source yields a Constant
// 0 parameter.
func NewModulated(source core.Processor[core.Mono]) Param {
	if source == nil {
		return NewConstant(0)
	}
	return Param{kind: kindModulated, mod: source}
}

// ReadAt returns the parameter value for the frame at sampleIndex.
// Reading a Modulated parameter runs its source for exactly one sample,
// so state advances with every read: the owner must read once per frame
// it consumes, in frame order, never more and never fewer. ReadAt is
// total; it never fails and never blocks.
func (p *Param) ReadAt(sampleIndex uint64) float32 {
	switch p.kind {
	case kindLinked:
		return p.cell.Load()
	case kindModulated:
		p.one[0] = 0
		p.mod.Process(p.one[:], sampleIndex)
		return p.one[0]
	default:
		return p.value
	}
}

// Fill writes the parameter's value for len(dst) consecutive frames
// starting at sampleIndex. It is state-equivalent to len(dst)
// sequential ReadAt calls. A Linked parameter is read once per Fill,
// so the whole block sees one value; a Modulated source runs once over
// the zeroed destination.
func (p *Param) Fill(dst []float32, sampleIndex uint64) {
	switch p.kind {
	case kindLinked:
		v := p.cell.Load()
		for i := range dst {
			dst[i] = v
		}
	case kindModulated:
		core.Zero(dst)
		p.mod.Process(dst, sampleIndex)
	default:
		for i := range dst {
			dst[i] = p.value
		}
	}
}

// Constant returns the stored value and true only for the Constant
// variant. Linked and Modulated parameters never report constancy,
// even while their value happens not to change; consumers use the
// second result to decide whether cached coefficients stay valid
// across a buffer.
func (p *Param) Constant() (float32, bool) {
	if p.kind == kindConstant {
		return p.value, true
	}
	return 0, false
}

// Reset reinitializes an owned Modulated source to its initial phase.
// Constant and Linked parameters are unaffected.
func (p *Param) Reset() {
	if p.kind == kindModulated {
		p.mod.Reset()
	}
}

// SetSampleRate forwards the rate to an owned Modulated source.
func (p *Param) SetSampleRate(sampleRate float64) {
	if p.kind == kindModulated {
		p.mod.SetSampleRate(sampleRate)
	}
}

// Describe reports the variant and, for Modulated parameters, the
// owned source's structure. Debug only.
func (p *Param) Describe() core.Node {
	switch p.kind {
	case kindLinked:
		return core.Node{Name: "Linked", Detail: fmt.Sprintf("%.4g", p.cell.Load())}
	case kindModulated:
		return core.Node{Name: "Modulated", Children: []core.Node{core.DescribeAny(p.mod)}}
	default:
		return core.Node{Name: "Constant", Detail: fmt.Sprintf("%.4g", p.value)}
	}
}
