package effects

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Widener adjusts stereo width by scaling the side component of a
// mid/side decomposition. width 1 is transparent, 0 collapses to
// mono, values above 1 widen.
type Widener struct {
	width    param.Param
	widthBuf []float32
}

// NewWidener creates a widener driven by the width factor.
func NewWidener(width param.Param, opts ...core.Option) *Widener {
	cfg := core.ApplyOptions(opts...)

	return &Widener{
		width:    width,
		widthBuf: make([]float32, cfg.MaxBlock),
	}
}

// Process rescales the side signal of each interleaved frame.
func (w *Widener) Process(buf []float32, sampleIndex uint64) {
	frames := len(buf) / 2

	for start := 0; start < frames; {
		n := min(frames-start, len(w.widthBuf))
		w.width.Fill(w.widthBuf[:n], sampleIndex+uint64(start))

		seg := buf[2*start : 2*(start+n)]
		for f := 0; f < n; f++ {
			l := seg[2*f]
			r := seg[2*f+1]

			mid := (l + r) * 0.5
			side := (l - r) * 0.5 * w.widthBuf[f]

			seg[2*f] = mid + side
			seg[2*f+1] = mid - side
		}

		start += n
	}
}

// Reset resets the width parameter's modulation source, if any.
func (w *Widener) Reset() {
	w.width.Reset()
}

// SetSampleRate propagates the rate to the width parameter.
func (w *Widener) SetSampleRate(sampleRate float64) {
	w.width.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (w *Widener) Latency() int {
	return 0
}

// Layout reports a stereo configuration.
func (w *Widener) Layout() core.Stereo {
	return core.Stereo{}
}

// Describe reports the widener and its width parameter.
func (w *Widener) Describe() core.Node {
	return core.Node{Name: "Widener", Children: []core.Node{w.width.Describe()}}
}
