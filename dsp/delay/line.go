// Package delay provides a circular delay line shared by the delay,
// modulated-delay, and reverb effects.
package delay

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/interp"
)

// Line is a circular delay line.
type Line struct {
	buffer   []float32
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float32, size)}, nil
}

// Len returns the internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample and advances the write head.
func (d *Line) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Read(1) is the most recently
// written sample.
func (d *Line) Read(delay int) float32 {
	size := len(d.buffer)
	readPos := (d.writePos - delay + size) % size
	if readPos < 0 {
		readPos += size
	}

	return d.buffer[readPos]
}

// ReadFractional reads with linear interpolation between the two nearest
// samples. The delay is clamped to [0, size-2].
func (d *Line) ReadFractional(delay float32) float32 {
	size := len(d.buffer)
	if delay < 0 {
		delay = 0
	}
	maxDelay := float32(size - 2)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(float64(delay)))
	frac := delay - float32(p)

	return interp.Linear(frac, d.Read(p), d.Read(p+1))
}

// ReadHermite reads with cubic 4-point interpolation. It is smoother than
// ReadFractional for slowly sweeping delays at the cost of two extra taps.
func (d *Line) ReadHermite(delay float32) float32 {
	size := len(d.buffer)
	if delay < 0 {
		delay = 0
	}
	maxDelay := float32(size - 3)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(float64(delay)))
	frac := delay - float32(p)

	xm1 := d.Read(max(0, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)

	return interp.Hermite4(frac, xm1, x0, x1, x2)
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
