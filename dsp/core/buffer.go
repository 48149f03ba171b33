package core

// Sample is a floating-point audio sample type.
type Sample interface {
	~float32 | ~float64
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// Zero32 sets all values in buf to 0.
func Zero32(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

// NewPlanar allocates numChannels zeroed channel slices of n samples backed
// by a single allocation.
func NewPlanar(numChannels, n int) [][]float64 {
	if numChannels <= 0 {
		return nil
	}
	if n < 0 {
		n = 0
	}

	backing := make([]float64, numChannels*n)
	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = backing[ch*n : (ch+1)*n : (ch+1)*n]
	}
	return out
}

// Deinterleave splits interleaved frames into planar channels, converting
// the sample type, and returns the number of frames written. Frames are
// limited by the shortest dst channel.
func Deinterleave[D, S Sample](dst [][]D, src []S) int {
	numChannels := len(dst)
	if numChannels == 0 {
		return 0
	}

	frames := len(src) / numChannels
	for _, data := range dst {
		frames = min(frames, len(data))
	}

	for i := range frames {
		for ch := range dst {
			dst[ch][i] = D(src[i*numChannels+ch])
		}
	}
	return frames
}

// Interleave writes up to frames planar frames of src into dst, converting
// the sample type, and returns the number of frames written.
func Interleave[D, S Sample](dst []D, src [][]S, frames int) int {
	numChannels := len(src)
	if numChannels == 0 || frames <= 0 {
		return 0
	}

	frames = min(frames, len(dst)/numChannels)
	for _, data := range src {
		frames = min(frames, len(data))
	}

	for i := range frames {
		for ch := range src {
			dst[i*numChannels+ch] = D(src[ch][i])
		}
	}
	return frames
}
