package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of a sine starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise returns uniform white noise in [-amplitude, amplitude)
// from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse returns a unit impulse at pos. An out-of-range pos yields silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// CloneChannels deep-copies a planar buffer.
func CloneChannels(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for ch, data := range src {
		out[ch] = append([]float64(nil), data...)
	}

	return out
}

// ToFloat32 converts samples to single precision.
func ToFloat32(src []float64) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}

	return out
}
