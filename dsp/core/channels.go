package core

// DualMono processes a stereo interleaved signal through two
// independently owned mono units, one per channel, with no cross-talk.
// It deinterleaves into pre-allocated scratch, runs both units, and
// interleaves the results back in place.
//
// Useful for applying mono effects (filters, distortion, short delays)
// to a stereo signal.
type DualMono[L Processor[Mono], R Processor[Mono]] struct {
	left  L
	right R

	leftBuf  []float32
	rightBuf []float32
}

// NewDualMono wraps a left and a right mono unit into one stereo unit.
func NewDualMono[L Processor[Mono], R Processor[Mono]](left L, right R, opts ...Option) *DualMono[L, R] {
	cfg := ApplyOptions(opts...)
	return &DualMono[L, R]{
		left:     left,
		right:    right,
		leftBuf:  make([]float32, cfg.MaxBlock),
		rightBuf: make([]float32, cfg.MaxBlock),
	}
}

// Left returns the left-channel unit.
func (d *DualMono[L, R]) Left() L { return d.left }

// Right returns the right-channel unit.
func (d *DualMono[L, R]) Right() R { return d.right }

// Process splits buf into channels, processes each, and reinterleaves.
func (d *DualMono[L, R]) Process(buf []float32, sampleIndex uint64) {
	frames := len(buf) / 2
	for start := 0; start < frames; {
		n := min(frames-start, len(d.leftBuf))
		seg := buf[2*start : 2*(start+n)]

		for i := 0; i < n; i++ {
			d.leftBuf[i] = seg[2*i]
			d.rightBuf[i] = seg[2*i+1]
		}

		at := sampleIndex + uint64(start)
		d.left.Process(d.leftBuf[:n], at)
		d.right.Process(d.rightBuf[:n], at)

		for i := 0; i < n; i++ {
			seg[2*i] = d.leftBuf[i]
			seg[2*i+1] = d.rightBuf[i]
		}
		start += n
	}
}

// Reset resets both channel units.
func (d *DualMono[L, R]) Reset() {
	d.left.Reset()
	d.right.Reset()
}

// SetSampleRate forwards the rate to both channel units.
func (d *DualMono[L, R]) SetSampleRate(sampleRate float64) {
	d.left.SetSampleRate(sampleRate)
	d.right.SetSampleRate(sampleRate)
}

// Latency reports the larger of the two channel latencies.
func (d *DualMono[L, R]) Latency() int {
	return max(d.left.Latency(), d.right.Latency())
}

// Layout returns the Stereo marker.
func (d *DualMono[L, R]) Layout() Stereo { return Stereo{} }

// MonoToStereo lifts a mono unit into a stereo slot by duplicating its
// output to both channels. The inner unit processes the first half of
// the stereo buffer as a mono block; the result is then fanned out
// back-to-front in place, so no scratch is needed.
type MonoToStereo[P Processor[Mono]] struct {
	inner P
}

// NewMonoToStereo wraps a mono unit as a stereo unit.
func NewMonoToStereo[P Processor[Mono]](inner P) *MonoToStereo[P] {
	return &MonoToStereo[P]{inner: inner}
}

// Inner returns the wrapped mono unit.
func (m *MonoToStereo[P]) Inner() P { return m.inner }

// Process runs the inner unit and duplicates its output to both channels.
func (m *MonoToStereo[P]) Process(buf []float32, sampleIndex uint64) {
	frames := len(buf) / 2

	m.inner.Process(buf[:frames], sampleIndex)

	for i := frames - 1; i >= 0; i-- {
		s := buf[i]
		buf[2*i] = s
		buf[2*i+1] = s
	}
}

// Reset resets the inner unit.
func (m *MonoToStereo[P]) Reset() { m.inner.Reset() }

// SetSampleRate forwards the rate to the inner unit.
func (m *MonoToStereo[P]) SetSampleRate(sampleRate float64) {
	m.inner.SetSampleRate(sampleRate)
}

// Latency reports the inner unit's latency.
func (m *MonoToStereo[P]) Latency() int { return m.inner.Latency() }

// Layout returns the Stereo marker.
func (m *MonoToStereo[P]) Layout() Stereo { return Stereo{} }

// StereoToMono runs a stereo unit inside a mono slot. The mono input is
// duplicated to both channels of a pre-allocated stereo scratch, the
// inner unit processes it, and the result is downmixed as (l+r)*0.5.
type StereoToMono[P Processor[Stereo]] struct {
	inner     P
	stereoBuf []float32
}

// NewStereoToMono wraps a stereo unit as a mono unit.
func NewStereoToMono[P Processor[Stereo]](inner P, opts ...Option) *StereoToMono[P] {
	cfg := ApplyOptions(opts...)
	return &StereoToMono[P]{
		inner:     inner,
		stereoBuf: make([]float32, 2*cfg.MaxBlock),
	}
}

// Inner returns the wrapped stereo unit.
func (s *StereoToMono[P]) Inner() P { return s.inner }

// Process duplicates buf up to stereo, runs the inner unit, and downmixes.
func (s *StereoToMono[P]) Process(buf []float32, sampleIndex uint64) {
	frames := len(buf)
	for start := 0; start < frames; {
		n := min(frames-start, len(s.stereoBuf)/2)
		seg := buf[start : start+n]
		stereo := s.stereoBuf[:2*n]

		for i, v := range seg {
			stereo[2*i] = v
			stereo[2*i+1] = v
		}

		s.inner.Process(stereo, sampleIndex+uint64(start))

		for i := range seg {
			seg[i] = (stereo[2*i] + stereo[2*i+1]) * 0.5
		}
		start += n
	}
}

// Reset resets the inner unit.
func (s *StereoToMono[P]) Reset() { s.inner.Reset() }

// SetSampleRate forwards the rate to the inner unit.
func (s *StereoToMono[P]) SetSampleRate(sampleRate float64) {
	s.inner.SetSampleRate(sampleRate)
}

// Latency reports the inner unit's latency.
func (s *StereoToMono[P]) Latency() int { return s.inner.Latency() }

// Layout returns the Mono marker.
func (s *StereoToMono[P]) Layout() Mono { return Mono{} }
