// Package param holds the user-adjustable values of a processor.
//
// A [Store] is built once from a list of [Spec] values and is immutable in
// shape afterwards: parameters cannot be added or removed. Each value lives
// in an atomic word, so a control goroutine (UI, MIDI, automation) can call
// [Store.Set] while the audio goroutine reads through a [Param] handle
// without either side ever blocking. Reads never observe a torn value.
//
// Plain setters clamp into the declared range. The normalized setters map
// 0..1 controller positions through the parameter's skew and snap to its
// interval, the way a rotary knob or MIDI CC drives a host parameter.
package param
