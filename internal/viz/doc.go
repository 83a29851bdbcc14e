// Package viz renders run reports for the terminal.
//
// Reports are plain strings styled with lipgloss:
//
//   - [Summary]: aligned key/value block
//   - [Table]: header plus rows, used for sweeps and scheme comparisons
//   - [EnergyPlot], [SeriesPlot]: asciigraph line plots of recorded series
//   - [TensionBadge]: colored spring tension class
//
// Colors follow the current [Theme]; see [SetTheme].
package viz
