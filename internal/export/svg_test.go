package export

import (
	"math"
	"strings"
	"testing"
)

func TestSeriesSVG(t *testing.T) {
	times := []float64{0, 0.1, 0.2, 0.3}
	series := []Series{
		{Label: "x0", Values: []float64{1, 2, 3, 2}},
		{Label: "x1", Values: []float64{-1, 0, 1, 0}},
	}

	svg := SeriesSVG(times, series, 640, 320)
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML header")
	}
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected 2 paths, got %d", strings.Count(svg, "<path"))
	}
	if !strings.Contains(svg, ">x0</text>") || !strings.Contains(svg, ">x1</text>") {
		t.Error("missing series labels")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("missing closing tag")
	}
}

func TestSeriesSVGBreaksAtNaN(t *testing.T) {
	times := []float64{0, 0.1, 0.2, 0.3}
	series := []Series{{Label: "x", Values: []float64{1, math.NaN(), 2, 3}}}

	svg := SeriesSVG(times, series, 100, 100)
	// The NaN sample splits the polyline into two M segments.
	if strings.Count(svg, "M") < 2 {
		t.Error("expected a new subpath after the NaN sample")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("NaN leaked into the document")
	}
}

func TestSeriesSVGDegenerate(t *testing.T) {
	if s := SeriesSVG([]float64{0}, []Series{{Values: []float64{1}}}, 100, 100); s != "" {
		t.Error("single sample should yield empty output")
	}
	allNaN := []Series{{Values: []float64{math.NaN(), math.NaN()}}}
	if s := SeriesSVG([]float64{0, 1}, allNaN, 100, 100); s != "" {
		t.Error("all-NaN series should yield empty output")
	}
}

func TestHovmollerSVG(t *testing.T) {
	field := [][]float64{
		{1, -1, 0},
		{0.5, math.NaN(), -0.5},
	}

	svg := HovmollerSVG(field, 300, 200)
	// 6 cells minus the NaN one, plus the background rect.
	if got := strings.Count(svg, "<rect"); got != 6 {
		t.Errorf("expected 6 rects, got %d", got)
	}
	if HovmollerSVG(nil, 100, 100) != "" {
		t.Error("empty field should yield empty output")
	}
}

func TestDivergingColor(t *testing.T) {
	if divergingColor(1) != "#ff1a1a" {
		t.Errorf("full positive should be red, got %s", divergingColor(1))
	}
	if divergingColor(-1) != "#1a1aff" {
		t.Errorf("full negative should be blue, got %s", divergingColor(-1))
	}
	if divergingColor(0) != "#001a1a" {
		t.Errorf("zero maps to near black, got %s", divergingColor(0))
	}
}
