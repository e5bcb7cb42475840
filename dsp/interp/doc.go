// Package interp provides the fractional-read interpolators used by the
// modulated delay lines of the playback graph.
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (default, smooth under modulation)
//
// The [Mode] enum selects the algorithm at construction time of a [delay.Line].
package interp
