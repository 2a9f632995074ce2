// Package synth provides signal sources: a band-limited oscillator, a
// low-frequency oscillator for modulation, an ADSR envelope, and a
// Karplus-Strong plucked string.
package synth

// nextRandom advances a linear congruential generator and returns a
// value in [-1, 1). The generator is deterministic per seed, so noise
// output is reproducible after Reset.
func nextRandom(state *uint32) float32 {
	*state = *state*1103515245 + 12345
	val := (*state >> 16) & 0x7FFF

	return float32(val)/32768.0*2.0 - 1.0
}

// randSeed is the initial generator state of every noise source.
const randSeed uint32 = 12345
