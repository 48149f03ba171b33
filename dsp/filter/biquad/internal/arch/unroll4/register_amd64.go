//go:build amd64 && !purego

package unroll4

import (
	"github.com/cwbudde/algo-iirfilter/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-iirfilter/internal/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "unroll4-avx2",
		SIMDLevel:    cpu.SIMDAVX2,
		Priority:     20,
		ProcessBlock: ProcessBlock,
	})
}
