// Package lowpass is a resonant low-pass processor driven by a parameter
// store.
//
// An [Engine] reads the cutoff and resonance parameters once per block,
// derives RBJ low-pass coefficients from them and filters every channel in
// place with its own Direct Form II Transposed section. Parameters are
// published by a control goroutine through [param.Store]; the engine is
// owned by the render goroutine and never blocks on it.
//
// Lifecycle:
//
//	Uninitialized --Prepare--> Prepared --Process--> Processing
//	      ^                       ^                      |
//	      |                       +------Prepare---------+
//	      +-----------------Release----------------------+
//
// Prepare is the only call that allocates. Process never allocates, never
// locks and runs in time proportional to the block size.
package lowpass
