package synth

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

type adsrStage uint8

const (
	stageIdle adsrStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// ADSR generates an attack-decay-sustain-release control signal from a
// gate input. The gate opens at 0.5: a rising edge starts the attack,
// a falling edge the release. Time parameters are in seconds and may
// move at audio rate; coefficients are recomputed only when a time
// moves by more than 0.0001, so constant times cost one comparison
// per frame.
//
// The attack ramps linearly to 1. Decay and release are exponential
// with a time constant of a third of the stage time, which settles the
// stage to about 5 percent of its span at the nominal time. The decay
// snaps to the sustain level within 0.001 and the release goes idle
// below 0.0001.
type ADSR struct {
	gate    param.Param
	attack  param.Param
	decay   param.Param
	sustain param.Param
	release param.Param

	sampleRate float64
	stage      adsrStage
	level      float32
	lastGate   float32

	attackStep   float32
	decayCoeff   float32
	releaseCoeff float32
	lastAttack   float32
	lastDecay    float32
	lastRelease  float32

	retrigger *param.Trigger

	gateBuf    []float32
	attackBuf  []float32
	decayBuf   []float32
	sustainBuf []float32
	releaseBuf []float32
}

// NewADSR creates an envelope generator. gate is the on/off control;
// attack, decay, and release are stage times in seconds; sustain is
// the held level in [0, 1].
func NewADSR(gate, attack, decay, sustain, release param.Param, opts ...core.Option) *ADSR {
	cfg := core.ApplyOptions(opts...)

	a := &ADSR{
		gate:        gate,
		attack:      attack,
		decay:       decay,
		sustain:     sustain,
		release:     release,
		sampleRate:  44100,
		lastAttack:  -1,
		lastDecay:   -1,
		lastRelease: -1,
		retrigger:   param.NewTrigger(),
		gateBuf:     make([]float32, cfg.MaxBlock),
		attackBuf:   make([]float32, cfg.MaxBlock),
		decayBuf:    make([]float32, cfg.MaxBlock),
		sustainBuf:  make([]float32, cfg.MaxBlock),
		releaseBuf:  make([]float32, cfg.MaxBlock),
	}
	a.recalc(0.01, 0.1, 0.1)

	return a
}

// Trigger returns the handle that restarts the attack from level zero
// regardless of the gate. Safe to fire from any goroutine; at most one
// restart is consumed per Process call.
func (a *ADSR) Trigger() *param.Trigger {
	return a.retrigger
}

func (a *ADSR) recalc(attack, decay, release float32) {
	if abs32(attack-a.lastAttack) > 0.0001 {
		attackSamples := attack * float32(a.sampleRate)
		if attackSamples > 0 {
			a.attackStep = 1 / attackSamples
		} else {
			a.attackStep = 1
		}
		a.lastAttack = attack
	}

	if abs32(decay-a.lastDecay) > 0.0001 {
		decaySamples := decay * float32(a.sampleRate)
		if decaySamples > 0 {
			a.decayCoeff = float32(math.Exp(float64(-1 / (decaySamples / 3))))
		} else {
			a.decayCoeff = 0
		}
		a.lastDecay = decay
	}

	if abs32(release-a.lastRelease) > 0.0001 {
		releaseSamples := release * float32(a.sampleRate)
		if releaseSamples > 0 {
			a.releaseCoeff = float32(math.Exp(float64(-1 / (releaseSamples / 3))))
		} else {
			a.releaseCoeff = 0
		}
		a.lastRelease = release
	}
}

// Process overwrites buf with the envelope level.
func (a *ADSR) Process(buf []float32, sampleIndex uint64) {
	triggered := a.retrigger.Consume()

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(a.gateBuf))
		at := sampleIndex + uint64(start)

		a.gate.Fill(a.gateBuf[:n], at)
		a.attack.Fill(a.attackBuf[:n], at)
		a.decay.Fill(a.decayBuf[:n], at)
		a.sustain.Fill(a.sustainBuf[:n], at)
		a.release.Fill(a.releaseBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			gateVal := a.gateBuf[i]
			sustain := a.sustainBuf[i]

			a.recalc(a.attackBuf[i], a.decayBuf[i], a.releaseBuf[i])

			if triggered {
				a.stage = stageAttack
				a.level = 0
				triggered = false
			} else if gateVal >= 0.5 && a.lastGate < 0.5 {
				a.stage = stageAttack
			} else if gateVal < 0.5 && a.lastGate >= 0.5 {
				a.stage = stageRelease
			}
			a.lastGate = gateVal

			switch a.stage {
			case stageIdle:
				a.level = 0
			case stageAttack:
				a.level += a.attackStep
				if a.level >= 1 {
					a.level = 1
					a.stage = stageDecay
				}
			case stageDecay:
				a.level = sustain + (a.level-sustain)*a.decayCoeff
				if abs32(a.level-sustain) < 0.001 {
					a.level = sustain
					a.stage = stageSustain
				}
			case stageSustain:
				a.level = sustain
			case stageRelease:
				a.level *= a.releaseCoeff
				if a.level < 0.0001 {
					a.level = 0
					a.stage = stageIdle
				}
			}

			seg[i] = a.level
		}

		start += n
	}
}

// Reset returns the envelope to idle at level zero and resets all
// parameters.
func (a *ADSR) Reset() {
	a.stage = stageIdle
	a.level = 0
	a.lastGate = 0
	a.lastAttack = -1
	a.lastDecay = -1
	a.lastRelease = -1
	a.recalc(0.01, 0.1, 0.1)

	a.gate.Reset()
	a.attack.Reset()
	a.decay.Reset()
	a.sustain.Reset()
	a.release.Reset()
}

// SetSampleRate reconfigures the envelope for a new rate. Cached
// coefficients are invalidated so stage times stay correct in seconds.
func (a *ADSR) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	a.sampleRate = sampleRate
	a.lastAttack = -1
	a.lastDecay = -1
	a.lastRelease = -1

	a.gate.SetSampleRate(sampleRate)
	a.attack.SetSampleRate(sampleRate)
	a.decay.SetSampleRate(sampleRate)
	a.sustain.SetSampleRate(sampleRate)
	a.release.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (a *ADSR) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (a *ADSR) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the envelope stage and its five parameters.
func (a *ADSR) Describe() core.Node {
	return core.Node{
		Name:   "ADSR",
		Detail: fmt.Sprintf("level=%.3f", a.level),
		Children: []core.Node{
			a.gate.Describe(),
			a.attack.Describe(),
			a.decay.Describe(),
			a.sustain.Describe(),
			a.release.Describe(),
		},
	}
}
