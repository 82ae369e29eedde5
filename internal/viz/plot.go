package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// PlotSeries draws one or more series on a shared asciigraph axis,
// skipping trailing NaN samples so a diverged run still plots its
// valid prefix.
func PlotSeries(series [][]float64, labels []string, width, height int) string {
	trimmed := make([][]float64, 0, len(series))
	kept := make([]string, 0, len(labels))
	for i, s := range series {
		v := finitePrefix(s)
		if len(v) < 2 {
			continue
		}
		trimmed = append(trimmed, v)
		if i < len(labels) {
			kept = append(kept, labels[i])
		}
	}
	if len(trimmed) == 0 {
		return "no finite samples to plot"
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
	}
	if len(kept) == len(trimmed) {
		opts = append(opts, asciigraph.SeriesLegends(kept...))
	}
	if len(trimmed) > 1 {
		colors := []asciigraph.AnsiColor{
			asciigraph.Green, asciigraph.Red, asciigraph.Blue,
			asciigraph.Yellow, asciigraph.Magenta, asciigraph.Cyan,
		}
		opts = append(opts, asciigraph.SeriesColors(colors[:len(trimmed)]...))
		return asciigraph.PlotMany(trimmed, opts...)
	}
	return asciigraph.Plot(trimmed[0], opts...)
}

// Hovmoller renders the space-time field as text: one line per sample
// (downsampled to fit rows), one sparkline cell per slow variable.
func Hovmoller(times []float64, field [][]float64, rows int) string {
	if len(field) == 0 || rows <= 0 {
		return "no samples"
	}

	min, max := math.Inf(1), math.Inf(-1)
	n := 0
	for _, row := range field {
		if !rowFinite(row) {
			break
		}
		n++
		for _, v := range row {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	if n == 0 {
		return "no finite samples"
	}

	step := n / rows
	if step < 1 {
		step = 1
	}

	var sb strings.Builder
	for i := 0; i < n; i += step {
		if i < len(times) {
			sb.WriteString(fmt.Sprintf("t=%7.2f  ", times[i]))
		}
		sb.WriteString(Sparkline(field[i], min, max))
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("range [%.2f, %.2f]\n", min, max))
	return sb.String()
}

func finitePrefix(s []float64) []float64 {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return s[:i]
		}
	}
	return s
}

func rowFinite(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
