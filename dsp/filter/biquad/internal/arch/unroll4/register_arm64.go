//go:build arm64 && !purego

package unroll4

import (
	"github.com/cwbudde/algo-iirfilter/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-iirfilter/internal/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "unroll4-neon",
		SIMDLevel:    cpu.SIMDNEON,
		Priority:     15,
		ProcessBlock: ProcessBlock,
	})
}
