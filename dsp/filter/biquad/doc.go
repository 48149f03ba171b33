// Package biquad provides the second-order IIR runtime used by the low-pass
// engine.
//
// A [Section] filters samples with the Direct Form II Transposed recurrence
// defined by [Coefficients]. Block processing goes through a kernel chosen
// once per process from the CPU features (see internal/arch). Response,
// pole and stability helpers operate on [Coefficients] directly.
//
// Coefficient design lives in dsp/filter/design.
package biquad
