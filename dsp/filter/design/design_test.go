package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-iirfilter/dsp/filter/biquad"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func assertFiniteCoefficients(t *testing.T, c biquad.Coefficients) {
	t.Helper()

	if !c.IsFinite() {
		t.Fatalf("non-finite coefficients: %#v", c)
	}
}

func assertStableSection(t *testing.T, c biquad.Coefficients) {
	t.Helper()

	if !c.IsStable() {
		t.Fatalf("unstable section: %#v (max pole radius %v)", c, c.MaxPoleRadius())
	}
}

func TestLowpass_ReferenceCoefficients(t *testing.T) {
	// sr=44100, fc=440, Q=1 computed from the cookbook formulas.
	got := Lowpass(440, 1, 44100)
	want := biquad.Coefficients{
		B0: 0.000952337,
		B1: 0.001904673,
		B2: 0.000952337,
		A1: -1.935445132,
		A2: 0.939254478,
	}

	for _, pair := range [][2]float64{
		{got.B0, want.B0}, {got.B1, want.B1}, {got.B2, want.B2},
		{got.A1, want.A1}, {got.A2, want.A2},
	} {
		if !almostEqual(pair[0], pair[1], 1e-9) {
			t.Fatalf("Lowpass(440, 1, 44100) = %#v, want %#v", got, want)
		}
	}
}

func TestLowpass_ResponseShape(t *testing.T) {
	sr := 48000.0
	c := Lowpass(1000, DefaultQ, sr)

	if db := c.MagnitudeDB(1000, sr); !almostEqual(db, -3.0103, 1e-3) {
		t.Fatalf("gain at cutoff = %v dB, want -3.01", db)
	}

	if db := c.MagnitudeDB(1, sr); !almostEqual(db, 0, 1e-6) {
		t.Fatalf("DC gain = %v dB, want 0", db)
	}

	if !(c.MagnitudeDB(100, sr) > c.MagnitudeDB(10000, sr)) {
		t.Fatal("lowpass shape check failed")
	}
}

func TestLowpass_ResonancePeak(t *testing.T) {
	sr := 48000.0
	for _, q := range []float64{2, 4, 8} {
		c := Lowpass(1000, q, sr)
		want := 20 * math.Log10(q)
		if db := c.MagnitudeDB(1000, sr); !almostEqual(db, want, 1e-6) {
			t.Fatalf("q=%v: gain at cutoff = %v dB, want %v", q, db, want)
		}
	}
}

func TestLowpass_StableAcrossValidDomain(t *testing.T) {
	for _, sr := range []float64{8000, 22050, 44100, 48000, 96000, 192000} {
		for _, ratio := range []float64{1e-5, 1e-3, 0.01, 0.1, 0.25, 0.4, 0.49, 0.4999} {
			for _, q := range []float64{MinQ, 0.1, 0.5, DefaultQ, 1, 5, 10, 40, MaxQ} {
				c := Lowpass(ratio*sr, q, sr)
				assertFiniteCoefficients(t, c)
				assertStableSection(t, c)
			}
		}
	}
}

func TestLowpass_InvalidInputs(t *testing.T) {
	if got := Lowpass(1000, 0.707, 0); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients for invalid sample rate, got %#v", got)
	}

	if got := Lowpass(0, 0.707, 48000); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients for zero frequency, got %#v", got)
	}

	if got := Lowpass(24000, 0.707, 48000); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients at Nyquist, got %#v", got)
	}

	if got, want := Lowpass(1000, 0, 48000), Lowpass(1000, DefaultQ, 48000); got != want {
		t.Fatalf("q<=0 should use DefaultQ: got %#v, want %#v", got, want)
	}
}

func TestClampCutoff(t *testing.T) {
	sr := 44100.0
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "inside", in: 440, want: 440},
		{name: "above nyquist", in: sr/2 + 100, want: MaxCutoffRatio * sr},
		{name: "zero", in: 0, want: MinCutoffRatio * sr},
		{name: "negative", in: -5, want: MinCutoffRatio * sr},
		{name: "inf", in: math.Inf(1), want: MaxCutoffRatio * sr},
		{name: "nan", in: math.NaN(), want: MaxCutoffRatio * sr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampCutoff(tt.in, sr)
			if got != tt.want {
				t.Fatalf("ClampCutoff(%v) = %v, want %v", tt.in, got, tt.want)
			}

			if !(got > 0 && got < sr/2) {
				t.Fatalf("ClampCutoff(%v) = %v outside (0, %v)", tt.in, got, sr/2)
			}
		})
	}
}

func TestClampQ(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{in: 1, want: 1},
		{in: 0, want: MinQ},
		{in: -3, want: MinQ},
		{in: 1e9, want: MaxQ},
		{in: math.NaN(), want: DefaultQ},
	}

	for _, tt := range tests {
		if got := ClampQ(tt.in); got != tt.want {
			t.Fatalf("ClampQ(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSafeLowpass_OutOfDomainStaysStable(t *testing.T) {
	sr := 44100.0
	for _, freq := range []float64{-1, 0, sr / 2, sr/2 + 100, sr, math.Inf(1), math.NaN()} {
		for _, q := range []float64{-1, 0, 1e-9, 1, 1e6, math.Inf(1), math.NaN()} {
			c := SafeLowpass(freq, q, sr)
			assertFiniteCoefficients(t, c)
			assertStableSection(t, c)

			if c == (biquad.Coefficients{}) {
				t.Fatalf("SafeLowpass(%v, %v) returned zero coefficients", freq, q)
			}
		}
	}
}
