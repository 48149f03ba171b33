package core

import "math"

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// Feedback state decaying towards zero is the usual source.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts an amplitude level in dB to a linear gain.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude to dB. Zero maps to -Inf, negative
// input to NaN.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}
