package synth

import (
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// KarplusStrong models a plucked string with a recirculating delay
// line. A rising gate edge excites the line with low-pass filtered
// noise shaped by a pick-position comb filter; the loop then feeds
// back through a damping-controlled averager, so higher damping means
// a duller, faster-decaying string.
//
// pitch is the fundamental in Hz, damping is in [0, 1], and the pick
// position runs from 0.01 near the bridge to 0.5 at the middle of the
// string. The line covers fundamentals down to 20 Hz.
type KarplusStrong struct {
	pitch   param.Param
	gate    param.Param
	damping param.Param
	pickPos param.Param

	line       []float32
	writePos   int
	sampleRate float64

	lastGate       float32
	rngState       uint32
	excFilterState float32

	pitchBuf   []float32
	gateBuf    []float32
	dampingBuf []float32
	pickPosBuf []float32
}

// NewKarplusStrong creates a string voice. The sample rate defaults to
// 44100 until SetSampleRate is called.
func NewKarplusStrong(pitch, gate, damping, pickPos param.Param, opts ...core.Option) *KarplusStrong {
	cfg := core.ApplyOptions(opts...)
	sampleRate := 44100.0

	return &KarplusStrong{
		pitch:      pitch,
		gate:       gate,
		damping:    damping,
		pickPos:    pickPos,
		line:       make([]float32, int(sampleRate/20)),
		sampleRate: sampleRate,
		rngState:   randSeed,
		pitchBuf:   make([]float32, cfg.MaxBlock),
		gateBuf:    make([]float32, cfg.MaxBlock),
		dampingBuf: make([]float32, cfg.MaxBlock),
		pickPosBuf: make([]float32, cfg.MaxBlock),
	}
}

// pluck refills one period of the line with filtered noise and
// imprints the pick-position comb on the burst.
func (k *KarplusStrong) pluck(pitch, pickPos float32) {
	if pitch <= 0 {
		return
	}

	lineLen := len(k.line)
	period := int(max(float32(k.sampleRate)/pitch, 1))
	if period >= lineLen {
		return
	}

	pickPos = core.Clamp32(pickPos, 0.01, 0.5)
	pickOffset := int(float32(period) * pickPos)

	for j := 0; j < period; j++ {
		idx := (k.writePos + j) % lineLen
		noise := nextRandom(&k.rngState)

		k.excFilterState += 0.5 * (noise - k.excFilterState)
		k.line[idx] = k.excFilterState
	}

	// y[n] = x[n] - x[n-offset], applied forward over the burst.
	for j := 0; j < period-pickOffset; j++ {
		idx := (k.writePos + j) % lineLen
		delayedIdx := (k.writePos + j + pickOffset) % lineLen
		k.line[delayedIdx] -= k.line[idx]
	}
}

// Process overwrites buf with the string output.
func (k *KarplusStrong) Process(buf []float32, sampleIndex uint64) {
	lineLen := len(k.line)

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(k.pitchBuf))
		at := sampleIndex + uint64(start)

		k.pitch.Fill(k.pitchBuf[:n], at)
		k.gate.Fill(k.gateBuf[:n], at)
		k.damping.Fill(k.dampingBuf[:n], at)
		k.pickPos.Fill(k.pickPosBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			gateVal := k.gateBuf[i]
			if gateVal >= 0.5 && k.lastGate < 0.5 {
				k.pluck(k.pitchBuf[i], k.pickPosBuf[i])
			}
			k.lastGate = gateVal

			// Degenerate pitches read inside the line rather than index
			// out of it.
			period := core.Clamp32(float32(k.sampleRate)/k.pitchBuf[i], 1, float32(lineLen-2))

			readPos := float32(k.writePos) - period + float32(lineLen)
			for readPos >= float32(lineLen) {
				readPos -= float32(lineLen)
			}
			idxA := int(readPos)
			idxB := (idxA + 1) % lineLen
			frac := readPos - float32(idxA)

			delayed := k.line[idxA]*(1-frac) + k.line[idxB]*frac
			damping := k.dampingBuf[i]
			avg := (delayed + k.line[k.writePos]) * 0.5

			feedback := (delayed*(1-damping) + avg*damping) * 0.999

			k.line[k.writePos] = feedback
			seg[i] = feedback

			k.writePos = (k.writePos + 1) % lineLen
		}

		start += n
	}
}

// Reset silences the string and returns the voice to its freshly
// constructed state.
func (k *KarplusStrong) Reset() {
	for i := range k.line {
		k.line[i] = 0
	}
	k.writePos = 0
	k.lastGate = 0
	k.rngState = randSeed
	k.excFilterState = 0

	k.pitch.Reset()
	k.gate.Reset()
	k.damping.Reset()
	k.pickPos.Reset()
}

// SetSampleRate reconfigures the voice for a new rate. The line only
// grows, so raising the rate keeps 20 Hz reachable. Not real-time
// safe.
func (k *KarplusStrong) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	k.sampleRate = sampleRate
	k.pitch.SetSampleRate(sampleRate)
	k.gate.SetSampleRate(sampleRate)
	k.damping.SetSampleRate(sampleRate)
	k.pickPos.SetSampleRate(sampleRate)

	if size := int(sampleRate / 20); size > len(k.line) {
		grown := make([]float32, size)
		copy(grown, k.line)
		k.line = grown
	}
}

// Latency reports zero.
func (k *KarplusStrong) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (k *KarplusStrong) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the string voice and its four parameters.
func (k *KarplusStrong) Describe() core.Node {
	return core.Node{
		Name: "KarplusStrong",
		Children: []core.Node{
			k.pitch.Describe(),
			k.gate.Describe(),
			k.damping.Describe(),
			k.pickPos.Describe(),
		},
	}
}
