package design

import (
	"math"

	"github.com/cwbudde/algo-iirfilter/dsp/core"
	"github.com/cwbudde/algo-iirfilter/dsp/filter/biquad"
)

const (
	// DefaultQ is the Butterworth quality factor.
	DefaultQ = 1 / math.Sqrt2

	// MinCutoffRatio and MaxCutoffRatio bound the cutoff as a fraction of the
	// sample rate. The upper bound stays strictly below Nyquist.
	MinCutoffRatio = 1e-5
	MaxCutoffRatio = 0.49

	// MinQ and MaxQ bound the quality factor. MinQ keeps alpha finite.
	MinQ = 0.01
	MaxQ = 100.0
)

// Lowpass designs an RBJ low-pass biquad at freq (Hz) with quality factor q.
//
//	w0    = 2*pi*freq/sampleRate
//	alpha = sin(w0) / (2*q)
//	b0 = b2 = (1 - cos w0)/2, b1 = 1 - cos w0
//	a0 = 1 + alpha, a1 = -2 cos w0, a2 = 1 - alpha
//
// Coefficients are normalized by a0. A non-positive q falls back to
// DefaultQ; a frequency outside (0, sampleRate/2) yields zero coefficients.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// SafeLowpass clamps freq and q with ClampCutoff and ClampQ before calling
// Lowpass. For a positive, finite sample rate the result is always stable.
func SafeLowpass(freq, q, sampleRate float64) biquad.Coefficients {
	return Lowpass(ClampCutoff(freq, sampleRate), ClampQ(q), sampleRate)
}

// ClampCutoff limits freq to [MinCutoffRatio, MaxCutoffRatio]*sampleRate.
// NaN maps to the upper bound, leaving the filter fully open.
func ClampCutoff(freq, sampleRate float64) float64 {
	lo := MinCutoffRatio * sampleRate
	hi := MaxCutoffRatio * sampleRate

	if math.IsNaN(freq) {
		return hi
	}

	return core.Clamp(freq, lo, hi)
}

// ClampQ limits q to [MinQ, MaxQ]. NaN maps to DefaultQ.
func ClampQ(q float64) float64 {
	if math.IsNaN(q) {
		return DefaultQ
	}

	return core.Clamp(q, MinQ, MaxQ)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return DefaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
