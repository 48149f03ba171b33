// Package cpu detects the SIMD capabilities used to pick biquad block kernels.
//
// Detection runs once, lazily, and is cached. Tests can pin a feature set
// with SetForcedFeatures to exercise every registered kernel on one machine.
package cpu

import "sync"

// SIMDLevel names the instruction set a kernel was written for.
type SIMDLevel int

const (
	// SIMDNone marks portable Go kernels.
	SIMDNone SIMDLevel = iota
	// SIMDSSE2 is the x86-64 baseline.
	SIMDSSE2
	// SIMDAVX2 is x86-64 AVX2.
	SIMDAVX2
	// SIMDNEON is ARM Advanced SIMD.
	SIMDNEON
)

func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX2:
		return "AVX2"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// Features describes the CPU capabilities relevant to kernel selection.
type Features struct {
	HasSSE2 bool
	HasAVX2 bool
	HasNEON bool

	// ForceGeneric disables every non-portable kernel.
	ForceGeneric bool

	Architecture string
}

var (
	detected   Features
	detectOnce sync.Once

	forcedMu sync.RWMutex
	forced   *Features
)

// DetectFeatures returns the features of the running CPU, or the forced set
// installed by SetForcedFeatures. Safe for concurrent use.
func DetectFeatures() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()

	if f != nil {
		return *f
	}

	detectOnce.Do(func() {
		detected = detectFeaturesImpl()
	})

	return detected
}

// SetForcedFeatures overrides detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()

	forced = &f
}

// ResetDetection removes any forced feature set.
func ResetDetection() {
	forcedMu.Lock()
	defer forcedMu.Unlock()

	forced = nil
}

// Supports reports whether features can run a kernel written for level.
func Supports(features Features, level SIMDLevel) bool {
	if features.ForceGeneric {
		return level == SIMDNone
	}

	switch level {
	case SIMDNone:
		return true
	case SIMDSSE2:
		return features.HasSSE2
	case SIMDAVX2:
		return features.HasAVX2
	case SIMDNEON:
		return features.HasNEON
	default:
		return false
	}
}
