package effects

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/delay"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// TapeDelay is a tape echo simulation. Unlike Delay it reads the delay
// time per sample, so a moving time glides instead of stepping and the
// offset-splitting identity holds for modulated times. A slow internal
// wow LFO wobbles the tap on top of the base time, and the feedback
// path runs through a one-pole lowpass and tanh saturation, dulling
// and compressing each repeat like worn tape.
type TapeDelay struct {
	line *delay.Line

	delayTime param.Param
	feedback  param.Param
	mixAmount param.Param
	drive     param.Param

	lfoPhase      float32
	lfoInc        float32
	depth         float32
	flutterAmount float32

	lowpassCoeff float32
	filterState  float32

	maxDelaySeconds float64
	sampleRate      float64

	delayBuf    []float32
	feedbackBuf []float32
	mixBuf      []float32
	driveBuf    []float32
}

// NewTapeDelay creates a tape delay holding at most maxDelaySeconds of
// signal, plus headroom for the wow sweep. delayTime is in seconds,
// feedback and mixAmount in [0, 1]. Saturation drive defaults to 1.2.
func NewTapeDelay(maxDelaySeconds float64, delayTime, feedback, mixAmount param.Param, opts ...core.Option) (*TapeDelay, error) {
	if maxDelaySeconds <= 0 {
		return nil, fmt.Errorf("max delay must be > 0 seconds: %g", maxDelaySeconds)
	}

	cfg := core.ApplyOptions(opts...)
	sampleRate := 44100.0

	line, err := delay.New(int((maxDelaySeconds + 0.1) * sampleRate))
	if err != nil {
		return nil, err
	}

	t := &TapeDelay{
		line:            line,
		delayTime:       delayTime,
		feedback:        feedback,
		mixAmount:       mixAmount,
		drive:           param.NewConstant(1.2),
		lfoInc:          float32(2 * math.Pi * 0.5 / sampleRate),
		depth:           float32(0.002 * sampleRate),
		flutterAmount:   0.5,
		maxDelaySeconds: maxDelaySeconds,
		sampleRate:      sampleRate,
		delayBuf:        make([]float32, cfg.MaxBlock),
		feedbackBuf:     make([]float32, cfg.MaxBlock),
		mixBuf:          make([]float32, cfg.MaxBlock),
		driveBuf:        make([]float32, cfg.MaxBlock),
	}
	t.recalcFilter()

	return t, nil
}

// SetDrive replaces the saturation drive parameter. Call during setup,
// not from the audio thread.
func (t *TapeDelay) SetDrive(drive param.Param) {
	t.drive = drive
}

func (t *TapeDelay) recalcFilter() {
	const cutoff = 2000.0

	dt := 1 / t.sampleRate
	rc := 1 / (2 * math.Pi * cutoff)
	t.lowpassCoeff = float32(dt / (rc + dt))
}

// Process runs the tape delay over buf in place.
func (t *TapeDelay) Process(buf []float32, sampleIndex uint64) {
	const twoPi = 2 * math.Pi

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(t.delayBuf))
		at := sampleIndex + uint64(start)

		t.delayTime.Fill(t.delayBuf[:n], at)
		t.feedback.Fill(t.feedbackBuf[:n], at)
		t.mixAmount.Fill(t.mixBuf[:n], at)
		t.drive.Fill(t.driveBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			input := seg[i]

			t.lfoPhase += t.lfoInc
			if t.lfoPhase > twoPi {
				t.lfoPhase -= twoPi
			}

			lfo := float32(math.Sin(float64(t.lfoPhase)))
			currentDelay := t.delayBuf[i]*float32(t.sampleRate) + lfo*t.depth*t.flutterAmount

			rawDelayed := t.line.ReadFractional(currentDelay)

			t.filterState += t.lowpassCoeff * (rawDelayed - t.filterState)
			saturated := float32(math.Tanh(float64(t.filterState * t.driveBuf[i])))

			// The record head also saturates, so runaway feedback tops
			// out instead of clipping the line.
			t.line.Write(float32(math.Tanh(float64(input + saturated*t.feedbackBuf[i]))))

			m := t.mixBuf[i]
			seg[i] = input*(1-m) + rawDelayed*m
		}

		start += n
	}
}

// Reset silences the tape, rewinds the wow sweep, and resets all
// parameters.
func (t *TapeDelay) Reset() {
	t.line.Reset()
	t.lfoPhase = 0
	t.filterState = 0
	t.delayTime.Reset()
	t.feedback.Reset()
	t.mixAmount.Reset()
	t.drive.Reset()
}

// SetSampleRate reconfigures the effect for a new rate, rescaling the
// wow increment and depth so they keep their values in seconds. The
// line only grows, so the maximum delay stays reachable. Not real-time
// safe.
func (t *TapeDelay) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	oldRate := t.sampleRate
	t.sampleRate = sampleRate
	t.delayTime.SetSampleRate(sampleRate)
	t.feedback.SetSampleRate(sampleRate)
	t.mixAmount.SetSampleRate(sampleRate)
	t.drive.SetSampleRate(sampleRate)

	t.lfoInc = t.lfoInc * float32(oldRate/sampleRate)
	t.depth = t.depth * float32(sampleRate/oldRate)
	t.recalcFilter()

	if size := int((t.maxDelaySeconds + 0.1) * sampleRate); size > t.line.Len() {
		grown, err := delay.New(size)
		if err != nil {
			return
		}
		t.line = grown
	}
}

// Latency reports zero; the dry path is not delayed.
func (t *TapeDelay) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (t *TapeDelay) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the tape delay and its parameters.
func (t *TapeDelay) Describe() core.Node {
	return core.Node{
		Name: "TapeDelay",
		Children: []core.Node{
			t.delayTime.Describe(),
			t.feedback.Describe(),
			t.mixAmount.Describe(),
			t.drive.Describe(),
		},
	}
}
