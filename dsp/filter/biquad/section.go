package biquad

import (
	"sync"

	archregistry "github.com/cwbudde/algo-iirfilter/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-iirfilter/internal/cpu"
)

// Coefficients holds the transfer function of one second-order section.
// a0 is normalized to 1 and not stored.
//
// Direct Form II Transposed sign convention:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward
	A1, A2     float64 // feedback
}

// Section is a single biquad with its delay line.
type Section struct {
	Coefficients

	d0, d1 float64
}

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockName     string
	processBlockInitOnce sync.Once
)

// NewSection returns a Section with the given coefficients and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters buf in place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	if len(buf) == 0 {
		return
	}

	processBlockInitOnce.Do(initProcessBlockKernel)

	c := archregistry.Coefficients{
		B0: s.B0,
		B1: s.B1,
		B2: s.B2,
		A1: s.A1,
		A2: s.A2,
	}

	s.d0, s.d1 = processBlockImpl(c, s.d0, s.d1, buf)
}

// ProcessBlockFloat32 filters a float32 buffer in place. The recurrence
// runs in float64; only the samples are stored at single precision.
func (s *Section) ProcessBlockFloat32(buf []float32) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, v := range buf {
		x := float64(v)
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = float32(y)
	}

	s.d0, s.d1 = d0, d1
}

// Reset clears the delay line.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// State returns the delay line [d0, d1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}

// SetState restores a delay line captured with State.
func (s *Section) SetState(state [2]float64) {
	s.d0 = state[0]
	s.d1 = state[1]
}

// KernelName reports which block kernel ProcessBlock dispatches to.
func KernelName() string {
	processBlockInitOnce.Do(initProcessBlockKernel)
	return processBlockName
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil || entry.ProcessBlock == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	processBlockImpl = entry.ProcessBlock
	processBlockName = entry.Name
}
