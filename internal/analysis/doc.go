// Package analysis extracts time series from recorded runs and estimates
// their spectral content.
//
//   - [PowerSpectrum]: one-sided amplitude spectrum of a real series
//   - [DominantFrequency]: strongest non-DC frequency of a sampled series
//   - [RelativeCoordinate], [SeparationSeries], [EnergySeries]: series from [sim.Sample] traces
//
// # Orbital Frequency
//
// The x coordinate of an electron relative to its nucleus oscillates at the
// orbital frequency:
//
//	xs, _ := analysis.RelativeCoordinate(result.Samples, 2, 1, 0)
//	f, _ := analysis.DominantFrequency(xs, dtSample)
package analysis
