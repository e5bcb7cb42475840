// Package graph renders the vinyl playback signal path in software.
//
// A [Graph] implements [vinyl.Sink], so a [vinyl.Controller] can drive it
// exactly like the hardware audio graph it was modelled on:
//
//	input -> delay -> tone lowpass --------------> output ch0
//	input -------------------------------------> output ch1
//	pink surface noise --------------------------> output ch2
//	light pop, deep pop, scratch -> crackles --+
//	needle osc, needle noise -> needle env ----+-> effects -> output ch3
//	output -> volume
//
// Each side has its own delay line, tone filter and output mixer. The
// sources and the effects bus are shared. Parameter writes are guarded by
// a mutex so a controller goroutine can drive a graph that is rendered on
// an audio driver goroutine.
package graph
