package spectral

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/window"
)

// Engine streams audio through a spectral Processor with half-window
// overlap-add. Incoming samples queue until a full FFT frame is
// available; each frame is windowed with a periodic Hann, transformed,
// handed to the processor, inverse transformed, and overlap-added back
// into the output stream. The periodic Hann sums to exactly one at
// half-window hops, so an identity processor reconstructs the input
// bit-for-bit up to FFT rounding.
//
// The output queue is pre-seeded with one frame of zeros, giving a
// fixed latency of the FFT size regardless of call block sizes. Both
// queues are sized for one frame plus MaxBlock at construction and
// Process chunks longer buffers, so the audio path never reallocates.
type Engine struct {
	proc     Processor
	fftSize  int
	hop      int
	maxBlock int

	plan    *algofft.Plan[complex64]
	window  []float32
	frame   []complex64
	olaBuf  []float32
	input   fifo
	output  fifo

	currentIndex uint64
}

// NewEngine wraps proc in an overlap-add engine with the given FFT
// size, which must be a power of two of at least 8.
func NewEngine(proc Processor, fftSize int, opts ...core.Option) (*Engine, error) {
	if fftSize < 8 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two >= 8: %d", fftSize)
	}

	cfg := core.ApplyOptions(opts...)

	plan, err := algofft.NewPlanT[complex64](fftSize)
	if err != nil {
		return nil, fmt.Errorf("create fft plan: %w", err)
	}

	coeffs := window.Generate(window.TypeHann, fftSize, window.WithPeriodic())
	win := make([]float32, fftSize)
	for i, c := range coeffs {
		win[i] = float32(c)
	}

	e := &Engine{
		proc:     proc,
		fftSize:  fftSize,
		hop:      fftSize / 2,
		maxBlock: cfg.MaxBlock,
		plan:     plan,
		window:   win,
		frame:    make([]complex64, fftSize),
		olaBuf:   make([]float32, fftSize),
		input:    newFIFO(fftSize + cfg.MaxBlock),
		output:   newFIFO(fftSize + cfg.MaxBlock),
	}
	e.output.pushZeros(fftSize)

	return e, nil
}

// Process pushes buf through the engine and overwrites it with the
// reconstructed output.
func (e *Engine) Process(buf []float32, sampleIndex uint64) {
	for start := 0; start < len(buf); {
		n := min(len(buf)-start, e.maxBlock)
		e.processBlock(buf[start:start+n], sampleIndex+uint64(start))
		start += n
	}
}

// processBlock handles at most maxBlock samples, which keeps the queue
// occupancy within the capacity reserved at construction: the input
// holds less than one frame after draining, the output holds at most
// one frame plus the samples not yet popped.
func (e *Engine) processBlock(buf []float32, sampleIndex uint64) {
	// The frame timeline restarts whenever the input queue has fully
	// drained; otherwise frames keep their position relative to the
	// samples already queued.
	if e.input.len() == 0 {
		e.currentIndex = sampleIndex
	}

	for _, v := range buf {
		e.input.push(v)
	}

	for e.input.len() >= e.fftSize {
		e.processFrame()
	}

	for i := range buf {
		buf[i] = e.output.pop()
	}
}

func (e *Engine) processFrame() {
	for i := 0; i < e.fftSize; i++ {
		e.frame[i] = complex(e.input.at(i)*e.window[i], 0)
	}

	if err := e.plan.Forward(e.frame, e.frame); err != nil {
		return
	}

	e.proc.ProcessSpectrum(e.frame, e.currentIndex)

	if err := e.plan.Inverse(e.frame, e.frame); err != nil {
		return
	}

	for i := 0; i < e.fftSize; i++ {
		e.olaBuf[i] += real(e.frame[i])
	}

	for i := 0; i < e.hop; i++ {
		e.output.push(e.olaBuf[i])
	}

	copy(e.olaBuf[:e.hop], e.olaBuf[e.hop:])
	for i := e.hop; i < e.fftSize; i++ {
		e.olaBuf[i] = 0
	}

	e.input.drop(e.hop)
	e.currentIndex += uint64(e.hop)
}

// Reset clears all queued audio, reseeds the latency zeros, and resets
// the wrapped processor.
func (e *Engine) Reset() {
	e.proc.Reset()
	e.input.reset()
	e.output.reset()
	e.output.pushZeros(e.fftSize)

	for i := range e.olaBuf {
		e.olaBuf[i] = 0
	}
	e.currentIndex = 0
}

// SetSampleRate propagates the rate to the wrapped processor.
func (e *Engine) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	e.proc.SetSampleRate(sampleRate)
}

// Latency reports one full FFT frame.
func (e *Engine) Latency() int {
	return e.fftSize
}

// Layout reports a mono configuration.
func (e *Engine) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the engine, its FFT size, and the wrapped processor.
func (e *Engine) Describe() core.Node {
	return core.Node{
		Name:     "SpectralEngine",
		Detail:   fmt.Sprintf("fft=%d hop=%d", e.fftSize, e.hop),
		Children: []core.Node{core.DescribeAny(e.proc)},
	}
}
