package midi

import (
	"fmt"

	"github.com/cwbudde/algo-iirfilter/dsp/param"
)

// Common sound-controller CC numbers.
const (
	CCBrightness = 74 // cutoff
	CCTimbre     = 71 // resonance
)

const (
	statusMask    = 0xF0
	channelMask   = 0x0F
	controlChange = 0xB0
	maxDataValue  = 127
)

// Mapping assigns CC numbers to parameter ids.
type Mapping map[int]string

// DefaultMapping binds CC 74 to cutoff and CC 71 to resonance.
func DefaultMapping() Mapping {
	return Mapping{
		CCBrightness: param.CutoffID,
		CCTimbre:     param.ResonanceID,
	}
}

// Option mutates controller configuration.
type Option func(*config) error

type config struct {
	mapping  Mapping
	channel  int
	onChange func()
}

// WithMapping replaces the default CC mapping.
func WithMapping(m Mapping) Option {
	return func(cfg *config) error {
		for cc := range m {
			if cc < 0 || cc > maxDataValue {
				return fmt.Errorf("midi: controller number out of range: %d", cc)
			}
		}

		cfg.mapping = m

		return nil
	}
}

// WithChannel restricts the controller to one MIDI channel (1..16).
// Without it every channel is accepted.
func WithChannel(channel int) Option {
	return func(cfg *config) error {
		if channel < 1 || channel > 16 {
			return fmt.Errorf("midi: channel must be in [1, 16]: %d", channel)
		}

		cfg.channel = channel - 1

		return nil
	}
}

// WithChangeHook registers fn to run after every accepted change, e.g. to
// push the new state to other control surfaces.
func WithChangeHook(fn func()) Option {
	return func(cfg *config) error {
		cfg.onChange = fn
		return nil
	}
}

// Controller writes CC values into a parameter store.
type Controller struct {
	params   map[int]*param.Param
	channel  int // -1 = omni
	onChange func()
}

// NewController binds every mapped id to its parameter in store.
func NewController(store *param.Store, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("midi: nil parameter store")
	}

	cfg := config{mapping: DefaultMapping(), channel: -1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	params := make(map[int]*param.Param, len(cfg.mapping))

	for cc, id := range cfg.mapping {
		p, err := store.Param(id)
		if err != nil {
			return nil, fmt.Errorf("midi: CC %d: %w", cc, err)
		}

		params[cc] = p
	}

	return &Controller{params: params, channel: cfg.channel, onChange: cfg.onChange}, nil
}

// Handle applies one short message. It reports whether the message changed
// a parameter; anything but a mapped control change is ignored.
func (c *Controller) Handle(status, data1, data2 int64) (bool, error) {
	if status&statusMask != controlChange {
		return false, nil
	}

	if c.channel >= 0 && int(status&channelMask) != c.channel {
		return false, nil
	}

	p, ok := c.params[int(data1)]
	if !ok {
		return false, nil
	}

	value := min(max(data2, 0), maxDataValue)
	if err := p.StoreNormalized(float64(value) / maxDataValue); err != nil {
		return false, err
	}

	if c.onChange != nil {
		c.onChange()
	}

	return true, nil
}
