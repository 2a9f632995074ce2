package effects

import (
	"fmt"
	"math"

	"github.com/Na1w/infinitedsp/dsp/core"
	"github.com/Na1w/infinitedsp/dsp/param"
)

// DistortionType selects the waveshaping curve.
type DistortionType uint8

const (
	// SoftClip saturates with tanh.
	SoftClip DistortionType = iota
	// HardClip clamps to [-1, 1].
	HardClip
	// BitCrush quantizes to a reduced bit depth.
	BitCrush
	// Foldback folds the signal back on itself with sine.
	Foldback
	// Asymmetric saturates negative excursions harder than positive
	// ones, adding even harmonics.
	Asymmetric
)

// Distortion drives the signal into a waveshaping curve and blends
// the result with the dry input. The shaper is memoryless, so Reset
// only touches the parameters.
type Distortion struct {
	drive     param.Param
	mixAmount param.Param
	distType  DistortionType
	steps     float32

	driveBuf []float32
	mixBuf   []float32
}

// NewDistortion creates a distortion with the given drive (input
// gain) and dry/wet mix.
func NewDistortion(drive, mixAmount param.Param, distType DistortionType, opts ...core.Option) (*Distortion, error) {
	switch distType {
	case SoftClip, HardClip, Foldback, Asymmetric:
	case BitCrush:
		return nil, fmt.Errorf("bit crush needs a bit depth; use NewBitCrusher")
	default:
		return nil, fmt.Errorf("unknown distortion type: %d", distType)
	}

	cfg := core.ApplyOptions(opts...)

	return &Distortion{
		drive:     drive,
		mixAmount: mixAmount,
		distType:  distType,
		driveBuf:  make([]float32, cfg.MaxBlock),
		mixBuf:    make([]float32, cfg.MaxBlock),
	}, nil
}

// NewBitCrusher creates a bit-crushing distortion quantizing to the
// given bit depth.
func NewBitCrusher(drive, mixAmount param.Param, bits float32, opts ...core.Option) (*Distortion, error) {
	if bits <= 0 {
		return nil, fmt.Errorf("bit depth must be > 0: %g", bits)
	}

	cfg := core.ApplyOptions(opts...)

	return &Distortion{
		drive:     drive,
		mixAmount: mixAmount,
		distType:  BitCrush,
		steps:     float32(math.Pow(2, float64(bits))),
		driveBuf:  make([]float32, cfg.MaxBlock),
		mixBuf:    make([]float32, cfg.MaxBlock),
	}, nil
}

func (d *Distortion) shape(driven float32) float32 {
	switch d.distType {
	case SoftClip:
		return float32(math.Tanh(float64(driven)))
	case HardClip:
		return core.Clamp32(driven, -1, 1)
	case BitCrush:
		return float32(math.Round(float64(driven*d.steps))) / d.steps
	case Foldback:
		return float32(math.Sin(float64(driven)))
	default: // Asymmetric
		if driven >= 0 {
			return float32(math.Tanh(float64(driven)))
		}
		return float32(math.Tanh(float64(driven*2))) * 0.5
	}
}

// Process runs the shaper over buf in place.
func (d *Distortion) Process(buf []float32, sampleIndex uint64) {
	for start := 0; start < len(buf); {
		n := min(len(buf)-start, len(d.driveBuf))
		at := sampleIndex + uint64(start)

		d.drive.Fill(d.driveBuf[:n], at)
		d.mixAmount.Fill(d.mixBuf[:n], at)

		seg := buf[start : start+n]
		for i := 0; i < n; i++ {
			input := seg[i]
			wet := d.shape(input * d.driveBuf[i])

			m := d.mixBuf[i]
			seg[i] = input*(1-m) + wet*m
		}

		start += n
	}
}

// Reset resets the drive and mix parameters; the shaper itself is
// stateless.
func (d *Distortion) Reset() {
	d.drive.Reset()
	d.mixAmount.Reset()
}

// SetSampleRate propagates the rate to both parameters.
func (d *Distortion) SetSampleRate(sampleRate float64) {
	d.drive.SetSampleRate(sampleRate)
	d.mixAmount.SetSampleRate(sampleRate)
}

// Latency reports zero.
func (d *Distortion) Latency() int {
	return 0
}

// Layout reports a mono configuration.
func (d *Distortion) Layout() core.Mono {
	return core.Mono{}
}

func (t DistortionType) String() string {
	switch t {
	case SoftClip:
		return "softclip"
	case HardClip:
		return "hardclip"
	case BitCrush:
		return "bitcrush"
	case Foldback:
		return "foldback"
	case Asymmetric:
		return "asymmetric"
	default:
		return "unknown"
	}
}

// Describe reports the curve type and both parameters.
func (d *Distortion) Describe() core.Node {
	return core.Node{
		Name:     "Distortion",
		Detail:   d.distType.String(),
		Children: []core.Node{d.drive.Describe(), d.mixAmount.Describe()},
	}
}
