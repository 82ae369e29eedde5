package viz

import (
	"math"
	"strings"
	"testing"
)

func TestFinitePrefix(t *testing.T) {
	s := []float64{1, 2, math.NaN(), 4}
	if got := finitePrefix(s); len(got) != 2 {
		t.Errorf("expected prefix of 2, got %d", len(got))
	}
	clean := []float64{1, 2, 3}
	if got := finitePrefix(clean); len(got) != 3 {
		t.Errorf("clean series should pass through, got %d", len(got))
	}
}

func TestPlotSeriesHandlesDivergedRun(t *testing.T) {
	series := [][]float64{
		{1, 2, 3, math.NaN(), math.NaN()},
		{0, 1, 0, 1, 0},
	}
	out := PlotSeries(series, []string{"a", "b"}, 40, 5)
	if strings.Contains(out, "NaN") {
		t.Error("NaN leaked into the chart")
	}
	if out == "no finite samples to plot" {
		t.Error("expected a chart for the valid prefixes")
	}
}

func TestPlotSeriesAllNaN(t *testing.T) {
	series := [][]float64{{math.NaN(), math.NaN()}}
	if out := PlotSeries(series, nil, 40, 5); out != "no finite samples to plot" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestHovmoller(t *testing.T) {
	times := []float64{0, 0.1, 0.2}
	field := [][]float64{
		{1, -1, 0, 2},
		{0, 1, -2, 1},
		{math.NaN(), 0, 0, 0},
	}
	out := Hovmoller(times, field, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Two finite rows plus the range footer.
	if len(lines) != 3 {
		t.Errorf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if !strings.Contains(out, "t=   0.00") {
		t.Error("missing time label")
	}
	if !strings.Contains(out, "range [-2.00, 2.00]") {
		t.Error("missing range footer")
	}
}

func TestSparklineClamps(t *testing.T) {
	out := Sparkline([]float64{-10, 0, 10}, -1, 1)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Error("out of range values should clamp to edge glyphs")
	}
}
