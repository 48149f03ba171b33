package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-iirfilter/dsp/core"
)

// ErrShortSignal is returned when a signal holds fewer samples than one frame.
var ErrShortSignal = errors.New("spectrum: signal shorter than frame size")

// Option mutates analyzer configuration.
type Option func(*config) error

type config struct {
	window  bool
	overlap float64
}

func defaultConfig() config {
	return config{window: true, overlap: 0.5}
}

// WithWindow enables or disables the Hann window. Disabled means a
// rectangular window.
func WithWindow(enabled bool) Option {
	return func(cfg *config) error {
		cfg.window = enabled
		return nil
	}
}

// WithOverlap sets the frame overlap of averaged measurements in [0, 0.95].
func WithOverlap(overlap float64) Option {
	return func(cfg *config) error {
		if overlap < 0 || overlap > 0.95 || math.IsNaN(overlap) {
			return fmt.Errorf("spectrum: overlap must be in [0, 0.95]: %v", overlap)
		}

		cfg.overlap = overlap

		return nil
	}
}

// Analyzer computes spectra of fixed-size frames. Not safe for concurrent
// use.
type Analyzer struct {
	size       int
	hop        int
	sampleRate float64

	plan   *algofft.Plan[complex128]
	window []float64
	gain   float64 // coherent gain of the window

	frame []float64
	in    []complex128
	out   []complex128
	out2  []complex128
	re    []float64
	im    []float64
	power []float64
}

// NewAnalyzer returns an analyzer for frames of size samples at sampleRate.
func NewAnalyzer(size int, sampleRate float64, opts ...Option) (*Analyzer, error) {
	if size < 2 {
		return nil, fmt.Errorf("spectrum: frame size must be >= 2: %d", size)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0 and finite: %v", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	win := make([]float64, size)
	for i := range win {
		win[i] = 1
		if cfg.window {
			win[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
		}
	}

	bins := size/2 + 1

	return &Analyzer{
		size:       size,
		hop:        max(1, int(math.Round(float64(size)*(1-cfg.overlap)))),
		sampleRate: sampleRate,
		plan:       plan,
		window:     win,
		gain:       vecmath.Sum(win) / float64(size),
		frame:      make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		out2:       make([]complex128, size),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		power:      make([]float64, bins),
	}, nil
}

// Size returns the frame length.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of non-negative frequency bins, Size/2+1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// BinHz returns the bin spacing in Hz.
func (a *Analyzer) BinHz() float64 { return a.sampleRate / float64(a.size) }

// Bin returns the bin nearest to freq, clamped to [0, Bins-1].
func (a *Analyzer) Bin(freq float64) int {
	k := int(math.Round(freq / a.BinHz()))
	return min(max(k, 0), a.Bins()-1)
}

// Frequency returns the centre frequency of bin k in Hz.
func (a *Analyzer) Frequency(k int) float64 { return float64(k) * a.BinHz() }

// Magnitude returns the amplitude spectrum of the first Size samples of
// signal. A shorter signal is zero-padded.
func (a *Analyzer) Magnitude(signal []float64) ([]float64, error) {
	if err := a.forward(a.out, signal); err != nil {
		return nil, err
	}

	a.split(a.out)

	mag := make([]float64, a.Bins())
	vecmath.Magnitude(mag, a.re, a.im)

	// Non-DC, non-Nyquist bins carry half of a real sinusoid.
	norm := 1 / (float64(a.size) * a.gain)
	vecmath.ScaleBlockInPlace(mag, 2*norm)
	mag[0] *= 0.5

	if a.size%2 == 0 {
		mag[len(mag)-1] *= 0.5
	}

	return mag, nil
}

// PowerSpectrum returns the Welch average of |X[k]|^2 over overlapping
// frames of signal.
func (a *Analyzer) PowerSpectrum(signal []float64) ([]float64, error) {
	if len(signal) < a.size {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortSignal, len(signal), a.size)
	}

	acc := make([]float64, a.Bins())
	frames := 0

	for start := 0; start+a.size <= len(signal); start += a.hop {
		if err := a.forward(a.out, signal[start:start+a.size]); err != nil {
			return nil, err
		}

		a.split(a.out)
		vecmath.Power(a.power, a.re, a.im)
		vecmath.AddBlockInPlace(acc, a.power)

		frames++
	}

	vecmath.ScaleBlockInPlace(acc, 1/float64(frames))

	return acc, nil
}

// Transfer estimates |H(f)| of the system that turned in into out using the
// averaged cross spectrum, |sum conj(X)*Y| / sum |X|^2 (H1 estimator).
// Bins where the input carries no energy report 0.
func (a *Analyzer) Transfer(in, out []float64) ([]float64, error) {
	if len(in) != len(out) {
		return nil, fmt.Errorf("spectrum: length mismatch: %d vs %d", len(in), len(out))
	}

	if len(in) < a.size {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortSignal, len(in), a.size)
	}

	bins := a.Bins()
	pxx := make([]float64, bins)
	pxy := make([]complex128, bins)

	for start := 0; start+a.size <= len(in); start += a.hop {
		if err := a.forward(a.out, in[start:start+a.size]); err != nil {
			return nil, err
		}

		if err := a.forward(a.out2, out[start:start+a.size]); err != nil {
			return nil, err
		}

		for k := range bins {
			x, y := a.out[k], a.out2[k]
			pxy[k] += complex(real(x), -imag(x)) * y
		}

		a.split(a.out)
		vecmath.Power(a.power, a.re, a.im)
		vecmath.AddBlockInPlace(pxx, a.power)
	}

	h := make([]float64, bins)
	for k := range h {
		if pxx[k] > 0 {
			h[k] = math.Hypot(real(pxy[k]), imag(pxy[k])) / pxx[k]
		}
	}

	return h, nil
}

// LevelDB returns 20*log10 of spectrum at the bin nearest freq.
func (a *Analyzer) LevelDB(spectrum []float64, freq float64) float64 {
	k := a.Bin(freq)
	if k >= len(spectrum) {
		return math.Inf(-1)
	}

	return core.LinearToDB(spectrum[k])
}

func (a *Analyzer) forward(dst []complex128, signal []float64) error {
	n := min(len(signal), a.size)

	copy(a.frame, signal[:n])
	clear(a.frame[n:])
	vecmath.MulBlockInPlace(a.frame, a.window)

	for i, v := range a.frame {
		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(dst, a.in); err != nil {
		return fmt.Errorf("spectrum: forward fft: %w", err)
	}

	return nil
}

func (a *Analyzer) split(bins []complex128) {
	for k := range a.re {
		a.re[k] = real(bins[k])
		a.im[k] = imag(bins[k])
	}
}
