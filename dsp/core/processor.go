package core

// Mono marks a single-channel signal path: one sample per frame.
type Mono struct{}

// Channels returns 1.
func (Mono) Channels() int { return 1 }

// Stereo marks a dual-channel signal path: two interleaved samples per
// frame, left first (LRLR...).
type Stereo struct{}

// Channels returns 2.
func (Stereo) Channels() int { return 2 }

// ChannelConfig constrains a processor's channel layout to one of the
// marker types. The marker fixes the per-frame sample count of every
// buffer the processor sees.
type ChannelConfig interface {
	Mono | Stereo
	Channels() int
}

// NumChannels returns the per-frame sample count of the layout C.
func NumChannels[C ChannelConfig]() int {
	var c C
	return c.Channels()
}

// Processor is the capability every processing unit implements, from
// single oscillators up to whole chains.
//
// Process transforms buf in place. For Stereo processors buf holds
// interleaved frames, so len(buf) is twice the frame count. sampleIndex
// is the absolute index of the buffer's first frame on the owning
// chain's timeline; units whose output depends on absolute time, and
// modulation sources nested at any depth, use it so that one call of N
// frames equals two calls of k and N-k frames at indices i and i+k.
//
// Process and Reset run on the audio thread. They must not allocate,
// block, or return errors; worst-case cost is proportional to the
// buffer length. All configuration that can fail happens at
// construction time.
//
// Layout returns the channel marker and pins the processor to one
// arity: a Mono unit does not satisfy Processor[Stereo], so wiring a
// unit into a slot of the wrong arity fails to compile.
type Processor[C ChannelConfig] interface {
	Process(buf []float32, sampleIndex uint64)

	// Reset returns the unit to its freshly constructed state (filter
	// memory, delay lines, envelope phase) without releasing storage.
	Reset()

	// SetSampleRate reconfigures the unit for a new rate. Not
	// real-time safe in general; call it before processing starts.
	// Non-positive rates are ignored.
	SetSampleRate(sampleRate float64)

	// Latency reports the group delay the unit introduces, in samples.
	Latency() int

	Layout() C
}
