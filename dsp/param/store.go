package param

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Param is one parameter value. The render path keeps a *Param and calls
// Load once per block; the handle stays valid for the life of the Store.
type Param struct {
	spec Spec
	bits atomic.Uint64
}

func newParam(spec Spec) *Param {
	p := &Param{spec: spec}
	p.bits.Store(math.Float64bits(spec.Default))

	return p
}

// Spec returns the declaration of the parameter.
func (p *Param) Spec() Spec { return p.spec }

// Load returns the current value. Never blocks.
func (p *Param) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Store clamps v into range and publishes it. NaN is rejected.
func (p *Param) Store(v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: %q = NaN", ErrInvalidValue, p.spec.ID)
	}

	p.bits.Store(math.Float64bits(p.spec.Clamp(v)))

	return nil
}

// Normalized returns the current value as a 0..1 controller position.
func (p *Param) Normalized() float64 {
	return p.spec.Normalize(p.Load())
}

// StoreNormalized sets the value from a 0..1 controller position.
func (p *Param) StoreNormalized(n float64) error {
	if math.IsNaN(n) {
		return fmt.Errorf("%w: %q = NaN", ErrInvalidValue, p.spec.ID)
	}

	p.bits.Store(math.Float64bits(p.spec.Denormalize(n)))

	return nil
}

// Reset restores the default value.
func (p *Param) Reset() {
	p.bits.Store(math.Float64bits(p.spec.Default))
}

// Store is a fixed set of parameters addressed by id.
type Store struct {
	params map[string]*Param
	order  []string
}

// NewStore builds a store from specs. Ids must be unique and every spec
// must describe a valid range containing its default.
func NewStore(specs ...Spec) (*Store, error) {
	s := &Store{
		params: make(map[string]*Param, len(specs)),
		order:  make([]string, 0, len(specs)),
	}

	for _, spec := range specs {
		if err := spec.validate(); err != nil {
			return nil, err
		}

		if _, ok := s.params[spec.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParameter, spec.ID)
		}

		s.params[spec.ID] = newParam(spec)
		s.order = append(s.order, spec.ID)
	}

	return s, nil
}

// MustNewStore is NewStore for specs known to be valid. It panics on error.
func MustNewStore(specs ...Spec) *Store {
	s, err := NewStore(specs...)
	if err != nil {
		panic(err)
	}

	return s
}

// NewDefaultStore returns a store holding DefaultSpecs.
func NewDefaultStore() *Store {
	return MustNewStore(DefaultSpecs()...)
}

// Param returns the handle for id.
func (s *Store) Param(id string) (*Param, error) {
	p, ok := s.params[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}

	return p, nil
}

// Get returns the latest value of id.
func (s *Store) Get(id string) (float64, error) {
	p, err := s.Param(id)
	if err != nil {
		return 0, err
	}

	return p.Load(), nil
}

// Set clamps value into the range of id and publishes it.
func (s *Store) Set(id string, value float64) error {
	p, err := s.Param(id)
	if err != nil {
		return err
	}

	return p.Store(value)
}

// GetNormalized returns the value of id as a 0..1 controller position.
func (s *Store) GetNormalized(id string) (float64, error) {
	p, err := s.Param(id)
	if err != nil {
		return 0, err
	}

	return p.Normalized(), nil
}

// SetNormalized sets id from a 0..1 controller position.
func (s *Store) SetNormalized(id string, n float64) error {
	p, err := s.Param(id)
	if err != nil {
		return err
	}

	return p.StoreNormalized(n)
}

// Reset restores the default of id.
func (s *Store) Reset(id string) error {
	p, err := s.Param(id)
	if err != nil {
		return err
	}

	p.Reset()

	return nil
}

// ResetAll restores every default.
func (s *Store) ResetAll() {
	for _, p := range s.params {
		p.Reset()
	}
}

// IDs returns the parameter ids in declaration order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)

	return out
}

// Specs returns the parameter declarations in declaration order.
func (s *Store) Specs() []Spec {
	out := make([]Spec, len(s.order))
	for i, id := range s.order {
		out[i] = s.params[id].spec
	}

	return out
}

// Snapshot returns the current value of every parameter. Values are read
// one by one; a concurrent Set may land between two reads.
func (s *Store) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.params))
	for id, p := range s.params {
		out[id] = p.Load()
	}

	return out
}
