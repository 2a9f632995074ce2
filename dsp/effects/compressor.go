package effects

import (
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// Compressor narrows the dynamic range of the signal. A peak envelope
// follower tracks the rectified input with separate attack and release
// smoothing; when the envelope exceeds the threshold, gain is reduced
// by the ratio in the log domain.
//
// When all five parameters are constants the per-sample dB math hoists
// out of the loop. Attack and release coefficients are cached on the
// exact parameter bits and recomputed only when a value changes.
type Compressor struct {
	thresholdDB param.Param
	ratio       param.Param
	attackMS    param.Param
	releaseMS   param.Param
	makeupDB    param.Param

	sampleRate   float64
	attackCoeff  float32
	releaseCoeff float32
	envelope     float32

	lastAttackBits  uint32
	lastReleaseBits uint32

	thresholdBuf []float32
	ratioBuf     []float32
	attackBuf    []float32
	releaseBuf   []float32
	makeupBuf    []float32
}

// NewCompressor creates a compressor with the given threshold in dB
// and ratio (4 means 4:1). Attack defaults to 10 ms, release to
// 100 ms, makeup gain to 0 dB.
func NewCompressor(thresholdDB, ratio param.Param, opts ...core.Option) *Compressor {
	cfg := core.ApplyOptions(opts...)

	c := &Compressor{
		thresholdDB:     thresholdDB,
		ratio:           ratio,
		attackMS:        param.NewConstant(10),
		releaseMS:       param.NewConstant(100),
		makeupDB:        param.NewConstant(0),
		sampleRate:      44100,
		lastAttackBits:  math.MaxUint32,
		lastReleaseBits: math.MaxUint32,
		thresholdBuf:    make([]float32, cfg.MaxBlock),
		ratioBuf:        make([]float32, cfg.MaxBlock),
		attackBuf:       make([]float32, cfg.MaxBlock),
		releaseBuf:      make([]float32, cfg.MaxBlock),
		makeupBuf:       make([]float32, cfg.MaxBlock),
	}
	c.recalc(10, 100)

	return c
}

// NewLimiter creates a compressor configured as a limiter: threshold
// -0.1 dB, ratio 100:1, 1 ms attack, 50 ms release.
func NewLimiter(opts ...core.Option) *Compressor {
	c := NewCompressor(param.NewConstant(-0.1), param.NewConstant(100), opts...)
	c.attackMS = param.NewConstant(1)
	c.releaseMS = param.NewConstant(50)
	c.recalc(1, 50)

	return c
}

// SetAttack replaces the attack time parameter, in milliseconds. Call
// during setup, not from the audio thread.
func (c *Compressor) SetAttack(attackMS param.Param) {
	c.attackMS = attackMS
}

// SetRelease replaces the release time parameter, in milliseconds.
// Call during setup, not from the audio thread.
func (c *Compressor) SetRelease(releaseMS param.Param) {
	c.releaseMS = releaseMS
}

// SetMakeup replaces the makeup gain parameter, in dB. Call during
// setup, not from the audio thread.
func (c *Compressor) SetMakeup(makeupDB param.Param) {
	c.makeupDB = makeupDB
}

func (c *Compressor) recalc(attackMS, releaseMS float32) {
	c.attackCoeff = float32(mathExp(-1 / (float64(attackMS) * c.sampleRate * 0.001)))
	c.releaseCoeff = float32(mathExp(-1 / (float64(releaseMS) * c.sampleRate * 0.001)))
}

// follow advances the envelope by one rectified sample.
func (c *Compressor) follow(absInput float32) {
	if absInput > c.envelope {
		c.envelope = c.attackCoeff*c.envelope + (1-c.attackCoeff)*absInput
	} else {
		c.envelope = c.releaseCoeff*c.envelope + (1-c.releaseCoeff)*absInput
	}
}

// Process runs the compressor over buf in place.
func (c *Compressor) Process(buf []float32, sampleIndex uint64) {
	threshConst, threshOK := c.thresholdDB.Constant()
	ratioConst, ratioOK := c.ratio.Constant()
	attConst, attOK := c.attackMS.Constant()
	relConst, relOK := c.releaseMS.Constant()
	makeupConst, makeupOK := c.makeupDB.Constant()

	if threshOK && ratioOK && attOK && relOK && makeupOK {
		c.processConstant(buf, threshConst, ratioConst, attConst, relConst, makeupConst)
		return
	}

	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(c.thresholdBuf))
		at := sampleIndex + uint64(start)

		c.thresholdDB.Fill(c.thresholdBuf[:n], at)
		c.ratio.Fill(c.ratioBuf[:n], at)
		c.attackMS.Fill(c.attackBuf[:n], at)
		c.releaseMS.Fill(c.releaseBuf[:n], at)
		c.makeupDB.Fill(c.makeupBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			c.maybeRecalc(c.attackBuf[i], c.releaseBuf[i])

			threshDB := c.thresholdBuf[i]
			thresholdLinear := float32(mathDBToLinear(float64(threshDB)))
			makeup := float32(mathDBToLinear(float64(c.makeupBuf[i])))

			input := seg[i]
			c.follow(abs32(input))

			gain := float32(1)
			if c.envelope > thresholdLinear {
				envDB := float32(mathLinearToDB(float64(c.envelope)))
				overDB := envDB - threshDB
				gainDB := -overDB * (1 - 1/c.ratioBuf[i])
				gain = float32(mathDBToLinear(float64(gainDB)))
			}

			seg[i] = input * gain * makeup
		}

		start += n
	}
}

// processConstant is the all-constant fast path: the dB conversions
// hoist out of the sample loop.
func (c *Compressor) processConstant(buf []float32, threshDB, ratio, attackMS, releaseMS, makeupDB float32) {
	c.maybeRecalc(attackMS, releaseMS)

	thresholdLinear := float32(mathDBToLinear(float64(threshDB)))
	makeup := float32(mathDBToLinear(float64(makeupDB)))
	invRatioSubOne := 1 - 1/ratio

	for i := range buf {
		input := buf[i]
		c.follow(abs32(input))

		gain := float32(1)
		if c.envelope > thresholdLinear {
			envDB := float32(mathLinearToDB(float64(c.envelope)))
			overDB := envDB - threshDB
			gainDB := -overDB * invRatioSubOne
			gain = float32(mathDBToLinear(float64(gainDB)))
		}

		buf[i] = input * gain * makeup
	}
}

func (c *Compressor) maybeRecalc(attackMS, releaseMS float32) {
	attBits := math.Float32bits(attackMS)
	relBits := math.Float32bits(releaseMS)

	if attBits != c.lastAttackBits || relBits != c.lastReleaseBits {
		c.recalc(attackMS, releaseMS)
		c.lastAttackBits = attBits
		c.lastReleaseBits = relBits
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}

	return x
}

// Reset clears the envelope follower and resets all parameters.
func (c *Compressor) Reset() {
	c.envelope = 0
	c.thresholdDB.Reset()
	c.ratio.Reset()
	c.attackMS.Reset()
	c.releaseMS.Reset()
	c.makeupDB.Reset()
}

// SetSampleRate reconfigures the compressor for a new rate. The
// coefficient cache is invalidated so times stay correct in
// milliseconds.
func (c *Compressor) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	c.sampleRate = sampleRate
	c.lastAttackBits = math.MaxUint32

	c.thresholdDB.SetSampleRate(sampleRate)
	c.ratio.SetSampleRate(sampleRate)
	c.attackMS.SetSampleRate(sampleRate)
	c.releaseMS.SetSampleRate(sampleRate)
	c.makeupDB.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (c *Compressor) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (c *Compressor) Layout() core.Mono {
	return core.Mono{}
}

// Describe reports the compressor and its five parameters.
func (c *Compressor) Describe() core.Node {
	return core.Node{
		Name: "Compressor",
		Children: []core.Node{
			c.thresholdDB.Describe(),
			c.ratio.Describe(),
			c.attackMS.Describe(),
			c.releaseMS.Describe(),
			c.makeupDB.Describe(),
		},
	}
}
