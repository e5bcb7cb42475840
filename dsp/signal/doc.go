// Package signal provides the sources of the playback graph and test-signal
// generation.
//
// [Oscillator] produces the periodic waveforms of the pop and needle-drop
// voices; [WhiteNoise] and [PinkNoise] produce scratch and surface noise.
// All sources are deterministic for a given seed and allocation-free per
// sample. [Generator] renders whole test signals for offline processing.
package signal
