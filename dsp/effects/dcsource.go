package effects

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// DCSource emits the value of a single parameter, replacing the buffer
// contents. With a modulated parameter it turns any control chain into an
// audible signal, which makes it the bridge from modulation graphs back into
// audio graphs.
type DCSource struct {
	value param.Param
}

// NewDCSource creates a source that emits p.
func NewDCSource(p param.Param) *DCSource {
	return &DCSource{value: p}
}

// NewDCSourceFixed creates a source that emits a constant value.
func NewDCSourceFixed(value float32) *DCSource {
	return &DCSource{value: param.NewConstant(value)}
}

// Process overwrites buf with the parameter value at each frame.
func (d *DCSource) Process(buf []float32, sampleIndex uint64) {
	d.value.Fill(buf, sampleIndex)
}

// Reset resets the parameter's modulation source, if any.
func (d *DCSource) Reset() {
	d.value.Reset()
}

// SetSampleRate propagates the sample rate to the parameter.
func (d *DCSource) SetSampleRate(sampleRate float64) {
	d.value.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (d *DCSource) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (d *DCSource) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the source and its parameter.
func (d *DCSource) Describe() core.Node {
	return core.Node{Name: "DCSource", Children: []core.Node{d.value.Describe()}}
}
