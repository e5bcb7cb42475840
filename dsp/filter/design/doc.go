// Package design provides the RBJ-style biquad coefficient designer for the
// resonant lowpass that gives the playback graph its record tone.
//
// Lowpass returns zero coefficients (silence) for invalid frequencies; the
// caller clamps the requested frequency below Nyquist first.
package design
