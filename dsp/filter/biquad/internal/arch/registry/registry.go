// Package registry holds the biquad block kernels available on this build
// and picks one for the detected CPU.
package registry

import (
	"sort"
	"sync"

	"github.com/cwbudde/algo-iirfilter/internal/cpu"
)

// Coefficients are biquad transfer coefficients (a0 normalized to 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// ProcessBlockFn filters buf in place with one DF-II-T section and returns
// the updated delay line.
type ProcessBlockFn func(c Coefficients, d0, d1 float64, buf []float64) (newD0, newD1 float64)

// OpEntry is one registered kernel.
type OpEntry struct {
	Name         string
	SIMDLevel    cpu.SIMDLevel
	Priority     int
	ProcessBlock ProcessBlockFn
}

// OpRegistry stores the available kernels ordered by priority.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
}

// Global is the registry populated by the kernel packages' init functions.
var Global = &OpRegistry{}

// Register adds a kernel.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].Priority > r.entries[j].Priority
	})
}

// Lookup returns the highest-priority kernel supported by features, or nil.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		if cpu.Supports(features, r.entries[i].SIMDLevel) {
			entry := r.entries[i]
			return &entry
		}
	}

	return nil
}

// ListEntries returns a copy of the registered kernels.
func (r *OpRegistry) ListEntries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]OpEntry, len(r.entries))
	copy(out, r.entries)

	return out
}
