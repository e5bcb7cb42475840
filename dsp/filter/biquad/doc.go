// Package biquad provides the second-order IIR section used for the tone
// filters of the playback graph.
//
// A [Section] implements Direct Form II Transposed processing for
// [Coefficients]. Coefficients may be swapped between blocks with
// [Section.SetCoefficients] while keeping the delay state, which is how the
// wow and flutter modulation sweeps the filter without clicks.
//
// Coefficient design lives in dsp/filter/design.
package biquad
