package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dynachem/internal/physics"
	"github.com/san-kum/dynachem/internal/sim"
)

// Row is one line of a Summary.
type Row struct {
	Label string
	Value string
}

func Summary(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Label))
	}

	var b strings.Builder
	b.WriteString(Title.Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		label := r.Label + strings.Repeat(" ", width-lipgloss.Width(r.Label))
		b.WriteString(MetricLabel.Render(label))
		b.WriteString("  ")
		b.WriteString(MetricValue.Render(r.Value))
		b.WriteString("\n")
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// Table renders rows under a header with columns padded to a common width.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	pad := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(pad(headers)))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(pad(row))
		b.WriteString("\n")
	}
	return b.String()
}

// EnergyPlot plots (E - E0)/|E0| over the recorded samples.
func EnergyPlot(samples []sim.Sample, width, height int) string {
	if len(samples) < 2 {
		return Subtle.Render("not enough samples to plot")
	}

	e0 := samples[0].Energy
	rel := make([]float64, len(samples))
	for i, s := range samples {
		if e0 != 0 {
			rel[i] = (s.Energy - e0) / math.Abs(e0)
		}
	}
	return SeriesPlot(rel, "relative energy error", width, height)
}

func SeriesPlot(values []float64, caption string, width, height int) string {
	if len(values) < 2 {
		return Subtle.Render("not enough samples to plot")
	}
	return asciigraph.Plot(values,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(4),
		asciigraph.Caption(caption))
}

// TensionBadge colors a tension class from calm to alarming.
func TensionBadge(t physics.Tension) string {
	switch t {
	case physics.Relaxed:
		return StatusOK.Render(t.String())
	case physics.Light, physics.Medium:
		return StatusWarn.Render(t.String())
	default:
		return StatusFail.Render(t.String())
	}
}

// DriftStatus grades a relative energy drift against a tolerance.
func DriftStatus(drift, tolerance float64) string {
	text := fmt.Sprintf("%.3e", drift)
	switch {
	case math.IsNaN(drift) || drift > 10*tolerance:
		return StatusFail.Render(text)
	case drift > tolerance:
		return StatusWarn.Render(text)
	default:
		return StatusOK.Render(text)
	}
}
