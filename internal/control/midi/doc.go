// Package midi maps MIDI control change messages onto parameters.
//
// A [Controller] turns CC values (0..127) into normalized parameter
// positions through a [Mapping]; [Serve] feeds it from a portmidi input
// stream until its context is cancelled.
package midi
