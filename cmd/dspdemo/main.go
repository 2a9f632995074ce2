// Command dspdemo renders a few demonstration patches offline and
// writes them as 16-bit mono WAV files.
//
// Usage:
//
//	dspdemo [flags] <patch>
//
// Patches:
//
//	chain    sawtooth through a swept ladder filter, delay and reverb
//	synth    three detuned saw voices with ADSR envelopes
//	karplus  plucked-string arpeggio through a chorus
//	all      render every patch
//
// Examples:
//
//	dspdemo chain
//	dspdemo --seconds 8 --out /tmp synth
//	dspdemo --sample-rate 48000 all
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	"github.com/Na1w/infinitedsp/dsp/chain"
	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/effects"
	"github.com/Na1w/infinitedsp/dsp/filter"
	"github.com/Na1w/infinitedsp/dsp/mix"
	"github.com/Na1w/infinitedsp/dsp/param"
	"github.com/Na1w/infinitedsp/dsp/synth"
)

const blockSize = 512

var cli struct {
	Out        string  `help:"Directory for rendered WAV files." default:"." type:"existingdir"`
	SampleRate int     `help:"Render sample rate in Hz." default:"44100"`
	Seconds    float64 `help:"Length of each rendered patch in seconds." default:"6"`
	Verbose    bool    `help:"Enable debug logging." short:"v"`

	Chain   chainCmd   `cmd:"" help:"Sawtooth through a swept ladder filter, delay and reverb."`
	Synth   synthCmd   `cmd:"" help:"Three detuned saw voices with ADSR envelopes."`
	Karplus karplusCmd `cmd:"" help:"Plucked-string arpeggio through a chorus."`
	All     allCmd     `cmd:"" help:"Render every patch."`
}

type renderer struct {
	log        *logrus.Logger
	outDir     string
	sampleRate float64
	seconds    float64
}

type (
	chainCmd   struct{}
	synthCmd   struct{}
	karplusCmd struct{}
	allCmd     struct{}
)

func (chainCmd) Run(r *renderer) error   { return r.renderChain() }
func (synthCmd) Run(r *renderer) error   { return r.renderSynth() }
func (karplusCmd) Run(r *renderer) error { return r.renderKarplus() }

func (allCmd) Run(r *renderer) error {
	if err := r.renderChain(); err != nil {
		return err
	}
	if err := r.renderSynth(); err != nil {
		return err
	}

	return r.renderKarplus()
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("dspdemo"),
		kong.Description("Render demonstration patches to WAV files."),
		kong.UsageOnError(),
	)

	log := logrus.New()
	if cli.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if cli.SampleRate < 8000 {
		log.Fatalf("sample rate %d is too low, need at least 8000 Hz", cli.SampleRate)
	}
	if cli.Seconds <= 0 {
		log.Fatalf("seconds must be positive, got %g", cli.Seconds)
	}

	r := &renderer{
		log:        log,
		outDir:     cli.Out,
		sampleRate: float64(cli.SampleRate),
		seconds:    cli.Seconds,
	}

	if err := ctx.Run(r); err != nil {
		log.Fatalf("render failed: %v", err)
	}
}

// renderChain builds the dynamic-chain showcase: a band-limited
// sawtooth through a ladder filter whose cutoff is swept by a slow
// LFO, into a feedback delay with a reverb blended on top.
func (r *renderer) renderChain() error {
	osc, err := synth.NewOscillator(param.NewConstant(110), synth.Saw)
	if err != nil {
		return err
	}

	lfo, err := synth.NewLFO(param.NewConstant(0.2), synth.LFOSine)
	if err != nil {
		return err
	}
	lfo.SetUnipolar(true)

	sweep, err := effects.NewMapRange(
		param.NewModulated(lfo),
		param.NewConstant(200),
		param.NewConstant(4000),
		effects.CurveExponential,
	)
	if err != nil {
		return err
	}

	ladder := filter.NewLadder(param.NewModulated(sweep), param.NewConstant(0.4))

	delay, err := effects.NewDelay(1,
		param.NewConstant(0.375),
		param.NewConstant(0.45),
		param.NewConstant(0.35),
	)
	if err != nil {
		return err
	}

	reverb, err := effects.NewReverb(param.NewConstant(0.7))
	if err != nil {
		return err
	}

	patch := chain.New[core.Mono](r.sampleRate).
		And(osc).
		And(ladder).
		And(delay).
		AndMix(reverb, 0.25).
		And(effects.NewGainDB[core.Mono](-6))

	return r.render("chain", patch, nil)
}

// renderSynth builds three detuned saw voices, each with its own ADSR
// gain envelope, summed through a soft-clipped mixer.
func (r *renderer) renderSynth() error {
	noteSeconds := r.seconds * 0.7

	detunes := []float64{1, 1.006, 1.0 / 1.006}

	sum := mix.NewSumming[core.Mono](param.NewConstant(0.5))
	sum.SetSoftClip(true)

	for _, d := range detunes {
		osc, err := synth.NewOscillator(param.NewConstant(float32(220*d)), synth.Saw)
		if err != nil {
			return err
		}

		env := synth.NewADSR(
			param.NewModulated(effects.NewTimedGate(noteSeconds)),
			param.NewConstant(0.05),
			param.NewConstant(0.3),
			param.NewConstant(0.6),
			param.NewConstant(1.2),
		)

		voice := chain.New[core.Mono](r.sampleRate).
			And(osc).
			And(effects.NewGain[core.Mono](param.NewModulated(env)))

		sum.Add(voice, 1.0/3)
	}

	return r.render("synth", sum, nil)
}

// renderKarplus plays an arpeggio on a plucked-string voice through a
// chorus. Notes are sequenced from the render loop by driving the
// pitch and gate cells between blocks.
func (r *renderer) renderKarplus() error {
	pitch := param.NewCell(220)
	gate := param.NewCell(0)

	voice := synth.NewKarplusStrong(
		param.NewLinked(pitch),
		param.NewLinked(gate),
		param.NewConstant(0.2),
		param.NewConstant(0.15),
	)

	patch := chain.New[core.Mono](r.sampleRate).
		And(voice).
		And(effects.NewChorus()).
		And(effects.NewGainFixed[core.Mono](0.8))

	notes := []float32{220, 261.63, 329.63, 440, 329.63, 261.63}
	noteLen := int(r.sampleRate / 2)

	return r.render("karplus", patch, func(blockStart int) {
		step := blockStart / noteLen
		pos := blockStart % noteLen

		// Drop the gate for one block at each note boundary so the next
		// rising edge re-plucks the string.
		if pos < blockSize {
			gate.Store(0)
			pitch.Store(notes[step%len(notes)])
		} else {
			gate.Store(1)
		}
	})
}

// render drives the patch block by block and writes the result. The
// optional onBlock hook runs before each block with the absolute
// sample position, for patches sequenced from the control rate.
func (r *renderer) render(name string, patch core.Processor[core.Mono], onBlock func(blockStart int)) error {
	total := int(r.seconds * r.sampleRate)
	out := make([]float32, total)

	patch.SetSampleRate(r.sampleRate)
	patch.Reset()

	r.log.WithFields(logrus.Fields{
		"patch":   name,
		"seconds": r.seconds,
		"rate":    int(r.sampleRate),
		"latency": patch.Latency(),
	}).Info("rendering")

	for start := 0; start < total; start += blockSize {
		n := min(total-start, blockSize)
		if onBlock != nil {
			onBlock(start)
		}
		patch.Process(out[start:start+n], uint64(start))

		if r.log.IsLevelEnabled(logrus.DebugLevel) && start%(blockSize*256) == 0 {
			r.log.Debugf("patch %s: %d/%d samples", name, start, total)
		}
	}

	path := filepath.Join(r.outDir, fmt.Sprintf("dspdemo-%s.wav", name))
	if err := writeWAV(path, out, int(r.sampleRate)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	r.log.WithField("path", path).Info("wrote patch")

	return nil
}

// writeWAV saves samples as a 16-bit mono PCM WAV file.
func writeWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, v := range samples {
		buf.Data[i] = int(core.Clamp32(v, -1, 1) * 32767)
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
