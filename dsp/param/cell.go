package param

import (
	"math"
	"sync/atomic"
)

// Cell is a float32 shared between a controller context (UI, MIDI,
// sequencer) and the audio thread. Store and Load are single atomic
// operations on the value's bit pattern: last write wins, values are
// never torn, and neither side ever blocks the other. A store is
// visible to the audio thread no later than its next load; there is no
// guarantee about visibility within a buffer already being processed.
//
// Controllers are responsible for clamping values to the consuming
// unit's domain before storing.
type Cell struct {
	bits atomic.Uint32
}

// NewCell returns a cell holding initial.
func NewCell(initial float32) *Cell {
	c := &Cell{}
	c.bits.Store(math.Float32bits(initial))
	return c
}

// Store publishes v to all readers.
func (c *Cell) Store(v float32) {
	c.bits.Store(math.Float32bits(v))
}

// Load returns the most recently published value.
func (c *Cell) Load() float32 {
	return math.Float32frombits(c.bits.Load())
}
