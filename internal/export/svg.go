// Package export renders trajectories as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"
)

// Series is one labeled line in a chart.
type Series struct {
	Label  string
	Values []float64
}

var palette = []string{
	"#00ff88", "#ff6b6b", "#4ecdc4", "#ffe66d",
	"#a78bfa", "#f472b6", "#60a5fa", "#fb923c",
}

// SeriesSVG draws one or more time series as polylines on a shared
// axis. Times and every series must have equal length; NaN samples end
// the drawn portion of a line.
func SeriesSVG(times []float64, series []Series, width, height int) string {
	if len(times) < 2 || len(series) == 0 {
		return ""
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if math.IsInf(minY, 1) {
		return ""
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	minT, maxT := times[0], times[len(times)-1]
	rangeT := maxT - minT
	if rangeT == 0 {
		rangeT = 1
	}

	var sb strings.Builder
	writeHeader(&sb, width, height)

	for si, s := range series {
		color := palette[si%len(palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))

		pen := "M"
		for i, v := range s.Values {
			if i >= len(times) {
				break
			}
			if math.IsNaN(v) {
				pen = "M"
				continue
			}
			x := (times[i] - minT) / rangeT * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", pen, x, y))
			pen = "L"
		}
		sb.WriteString("\"/>\n")

		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+si*16, color, s.Label))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// HovmollerSVG renders the space-time field as a grid of colored
// cells: rows are samples, columns are slow variables. Cell color is a
// symmetric blue-red diverging map around zero.
func HovmollerSVG(field [][]float64, width, height int) string {
	if len(field) == 0 || len(field[0]) == 0 {
		return ""
	}

	absMax := 0.0
	for _, row := range field {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			absMax = math.Max(absMax, math.Abs(v))
		}
	}
	if absMax == 0 {
		absMax = 1
	}

	rows, cols := len(field), len(field[0])
	cw := float64(width) / float64(cols)
	ch := float64(height) / float64(rows)

	var sb strings.Builder
	writeHeader(&sb, width, height)

	for r, row := range field {
		for c, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(c)*cw, float64(r)*ch, cw+0.5, ch+0.5, divergingColor(v/absMax)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

// divergingColor maps u in [-1, 1] to blue through black to red.
func divergingColor(u float64) string {
	u = math.Max(-1, math.Min(1, u))
	if u >= 0 {
		c := int(255 * u)
		return fmt.Sprintf("#%02x1a1a", c)
	}
	c := int(255 * -u)
	return fmt.Sprintf("#1a1a%02x", c)
}
