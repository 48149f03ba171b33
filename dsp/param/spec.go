package param

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-iirfilter/dsp/core"
)

// Parameter ids of the low-pass filter.
const (
	CutoffID    = "cutoff"
	ResonanceID = "resonance"
)

// Spec declares one parameter.
type Spec struct {
	ID   string
	Name string
	Unit string

	Min, Max float64
	Default  float64

	// Interval is the step normalized values snap to. Zero means continuous.
	Interval float64
	// Skew shapes the normalized mapping: normalized = proportion^Skew.
	// Values below 1 give the lower part of the range more travel. Zero
	// means linear.
	Skew float64
}

// DefaultSpecs returns the cutoff and resonance parameters of the filter.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			ID:       CutoffID,
			Name:     "Cutoff",
			Unit:     "Hz",
			Min:      20,
			Max:      20000,
			Default:  440,
			Interval: 1,
			Skew:     0.25,
		},
		{
			ID:       ResonanceID,
			Name:     "Resonance",
			Unit:     "Q",
			Min:      1,
			Max:      10,
			Default:  1,
			Interval: 0.1,
		},
	}
}

// Clamp limits v to [Min, Max].
func (s Spec) Clamp(v float64) float64 {
	return core.Clamp(v, s.Min, s.Max)
}

// Snap rounds v to the nearest interval step from Min and clamps the result.
func (s Spec) Snap(v float64) float64 {
	if s.Interval > 0 {
		v = s.Min + s.Interval*math.Round((v-s.Min)/s.Interval)
	}

	return s.Clamp(v)
}

// Normalize maps a plain value to a 0..1 controller position.
func (s Spec) Normalize(v float64) float64 {
	proportion := (s.Clamp(v) - s.Min) / (s.Max - s.Min)
	if skew := s.skew(); skew != 1 {
		proportion = math.Pow(proportion, skew)
	}

	return proportion
}

// Denormalize maps a 0..1 controller position to a snapped plain value.
func (s Spec) Denormalize(n float64) float64 {
	n = core.Clamp(n, 0, 1)
	if skew := s.skew(); skew != 1 && n > 0 {
		n = math.Exp(math.Log(n) / skew)
	}

	return s.Snap(s.Min + (s.Max-s.Min)*n)
}

func (s Spec) skew() float64 {
	if s.Skew == 0 {
		return 1
	}

	return s.Skew
}

func (s Spec) validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRange)
	}

	for _, v := range [...]float64{s.Min, s.Max, s.Default, s.Interval, s.Skew} {
		if !core.IsFinite(v) {
			return fmt.Errorf("%w: %q has non-finite bounds", ErrInvalidRange, s.ID)
		}
	}

	if s.Min >= s.Max {
		return fmt.Errorf("%w: %q min %g must be below max %g", ErrInvalidRange, s.ID, s.Min, s.Max)
	}

	if s.Default < s.Min || s.Default > s.Max {
		return fmt.Errorf("%w: %q default %g outside [%g, %g]", ErrInvalidRange, s.ID, s.Default, s.Min, s.Max)
	}

	if s.Interval < 0 || s.Skew < 0 {
		return fmt.Errorf("%w: %q interval and skew must be >= 0", ErrInvalidRange, s.ID)
	}

	return nil
}
