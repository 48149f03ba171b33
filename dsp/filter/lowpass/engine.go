package lowpass

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-iirfilter/dsp/core"
	"github.com/cwbudde/algo-iirfilter/dsp/filter/biquad"
	"github.com/cwbudde/algo-iirfilter/dsp/filter/design"
	"github.com/cwbudde/algo-iirfilter/dsp/param"
)

var (
	// ErrInvalidConfiguration is returned by Prepare for a non-positive or
	// non-finite sample rate, a non-positive channel count or a negative
	// block size.
	ErrInvalidConfiguration = errors.New("lowpass: invalid configuration")
	// ErrNotPrepared is returned by Process before Prepare.
	ErrNotPrepared = errors.New("lowpass: not prepared")
)

// Status is the lifecycle state of an Engine.
type Status int

const (
	StatusUninitialized Status = iota
	StatusPrepared
	StatusProcessing
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusPrepared:
		return "prepared"
	case StatusProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	cutoffID      string
	resonanceID   string
	flushDenormal bool
}

func defaultConfig() config {
	return config{
		cutoffID:    param.CutoffID,
		resonanceID: param.ResonanceID,
	}
}

// WithParameterIDs binds the engine to parameters other than "cutoff" and
// "resonance".
func WithParameterIDs(cutoffID, resonanceID string) Option {
	return func(cfg *config) error {
		if cutoffID == "" || resonanceID == "" {
			return fmt.Errorf("lowpass: parameter ids must not be empty")
		}

		cfg.cutoffID = cutoffID
		cfg.resonanceID = resonanceID

		return nil
	}
}

// WithDenormalFlush flushes near-zero delay line values to zero at the end
// of every block.
func WithDenormalFlush(enabled bool) Option {
	return func(cfg *config) error {
		cfg.flushDenormal = enabled
		return nil
	}
}

// Engine filters planar multichannel blocks with a shared low-pass setting
// and independent per-channel state. Not safe for concurrent Process calls.
type Engine struct {
	cutoff    *param.Param
	resonance *param.Param

	flushDenormal bool

	status       Status
	sampleRate   float64
	maxBlockSize int
	numChannels  int

	coeffs   biquad.Coefficients
	sections []biquad.Section
}

// New binds an engine to the cutoff and resonance parameters of store.
func New(store *param.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("lowpass: nil parameter store")
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

	cutoff, err := store.Param(cfg.cutoffID)
	if err != nil {
		return nil, fmt.Errorf("lowpass: cutoff: %w", err)
	}

	resonance, err := store.Param(cfg.resonanceID)
	if err != nil {
		return nil, fmt.Errorf("lowpass: resonance: %w", err)
	}

	return &Engine{
		cutoff:        cutoff,
		resonance:     resonance,
		flushDenormal: cfg.flushDenormal,
	}, nil
}

// Prepare configures the engine for a stream and clears every delay line.
// On error the engine keeps its previous configuration and status.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize, numChannels int) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: sample rate must be > 0 and finite: %g", ErrInvalidConfiguration, sampleRate)
	}

	if numChannels <= 0 {
		return fmt.Errorf("%w: channel count must be > 0: %d", ErrInvalidConfiguration, numChannels)
	}

	if maxBlockSize < 0 {
		return fmt.Errorf("%w: block size must be >= 0: %d", ErrInvalidConfiguration, maxBlockSize)
	}

	if cap(e.sections) >= numChannels {
		e.sections = e.sections[:numChannels]
	} else {
		e.sections = make([]biquad.Section, numChannels)
	}

	for i := range e.sections {
		e.sections[i].Reset()
	}

	e.sampleRate = sampleRate
	e.maxBlockSize = maxBlockSize
	e.numChannels = numChannels
	e.updateCoefficients()
	e.status = StatusPrepared

	return nil
}

// PrepareConfig is Prepare with the stream described by cfg.
func (e *Engine) PrepareConfig(cfg core.ProcessorConfig) error {
	return e.Prepare(cfg.SampleRate, cfg.BlockSize, cfg.NumChannels)
}

// Process filters the first numSamples samples of each channel of buf in
// place. Channels beyond the prepared count are cleared. A channel shorter
// than numSamples is processed up to its length.
func (e *Engine) Process(buf [][]float64, numSamples int) error {
	if numSamples == 0 {
		return nil
	}

	if err := e.begin(numSamples); err != nil {
		return err
	}

	active := min(len(buf), e.numChannels)

	for ch := range active {
		data := buf[ch]
		sec := &e.sections[ch]
		sec.Coefficients = e.coeffs
		sec.ProcessBlock(data[:min(numSamples, len(data))])
		e.flush(sec)
	}

	for ch := active; ch < len(buf); ch++ {
		data := buf[ch]
		core.Zero(data[:min(numSamples, len(data))])
	}

	e.status = StatusProcessing

	return nil
}

// ProcessFloat32 is Process for single-precision buffers.
func (e *Engine) ProcessFloat32(buf [][]float32, numSamples int) error {
	if numSamples == 0 {
		return nil
	}

	if err := e.begin(numSamples); err != nil {
		return err
	}

	active := min(len(buf), e.numChannels)

	for ch := range active {
		data := buf[ch]
		sec := &e.sections[ch]
		sec.Coefficients = e.coeffs
		sec.ProcessBlockFloat32(data[:min(numSamples, len(data))])
		e.flush(sec)
	}

	for ch := active; ch < len(buf); ch++ {
		data := buf[ch]
		core.Zero32(data[:min(numSamples, len(data))])
	}

	e.status = StatusProcessing

	return nil
}

func (e *Engine) begin(numSamples int) error {
	if e.status == StatusUninitialized {
		return ErrNotPrepared
	}

	if numSamples < 0 {
		return fmt.Errorf("lowpass: negative sample count: %d", numSamples)
	}

	e.updateCoefficients()

	return nil
}

// updateCoefficients takes one snapshot of each parameter.
func (e *Engine) updateCoefficients() {
	fc := e.cutoff.Load()
	if math.IsNaN(fc) {
		fc = e.cutoff.Spec().Default
	}

	q := e.resonance.Load()
	if math.IsNaN(q) {
		q = e.resonance.Spec().Default
	}

	e.coeffs = design.SafeLowpass(fc, q, e.sampleRate)
}

func (e *Engine) flush(sec *biquad.Section) {
	if !e.flushDenormal {
		return
	}

	st := sec.State()
	sec.SetState([2]float64{core.FlushDenormals(st[0]), core.FlushDenormals(st[1])})
}

// Reset clears every delay line and keeps the configuration.
func (e *Engine) Reset() {
	for i := range e.sections {
		e.sections[i].Reset()
	}
}

// Release drops the channel state and returns to StatusUninitialized.
func (e *Engine) Release() {
	e.sections = nil
	e.sampleRate = 0
	e.maxBlockSize = 0
	e.numChannels = 0
	e.coeffs = biquad.Coefficients{}
	e.status = StatusUninitialized
}

// Status returns the lifecycle state.
func (e *Engine) Status() Status { return e.status }

// SampleRate returns the prepared sample rate in Hz, or 0.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// MaxBlockSize returns the prepared block size hint.
func (e *Engine) MaxBlockSize() int { return e.maxBlockSize }

// NumChannels returns the prepared channel count.
func (e *Engine) NumChannels() int { return e.numChannels }

// Coefficients returns the coefficients derived for the last block.
func (e *Engine) Coefficients() biquad.Coefficients { return e.coeffs }

// ChannelState returns the delay line of channel ch.
func (e *Engine) ChannelState(ch int) ([2]float64, bool) {
	if ch < 0 || ch >= len(e.sections) {
		return [2]float64{}, false
	}

	return e.sections[ch].State(), true
}
