// Package tone measures the spectral balance of rendered audio.
//
// An [Analyzer] averages Hann-windowed power spectra over half-overlapping
// frames and reduces them to a few numbers: RMS level, spectral centroid
// and the share of power above a cutoff. These are enough to tell a clean
// signal from one that went through the vinyl tone filters, which mostly
// remove treble.
package tone
