package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series represents a named data series for plotting. Values are
// percentages; anything outside [0, 100] is clamped when drawn.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 4
	axisSeparator       = " │ "
	overlapGlyph        = '◉'
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var seriesGlyphs = []rune{'●', '○', '◆', '◇'}

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
}

// PlotSeries renders a multi-line text plot for the provided series.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a multi-line text plot with optional forced color output.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	kept := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	grid := make([][]int, height)
	for y := range grid {
		grid[y] = make([]int, width)
		for x := range grid[y] {
			grid[y][x] = -1
		}
	}
	const overlap = -2
	for si, s := range kept {
		for x, v := range resampleSeries(s.Values, width) {
			y := valueToRow(v, height)
			switch grid[y][x] {
			case -1, si:
				grid[y][x] = si
			default:
				grid[y][x] = overlap
			}
		}
	}

	useColor := shouldUseColor(w, forceColor)
	lines := make([]string, 0, height+len(kept)+4)
	if title != "" {
		lines = append(lines, title)
	}
	for _, s := range kept {
		lo, hi := minMax(s.Values)
		lines = append(lines, fmt.Sprintf("%s: min=%.2f max=%.2f last=%.2f", s.Name, lo, hi, s.Values[len(s.Values)-1]))
	}
	for y, row := range grid {
		var b strings.Builder
		fmt.Fprintf(&b, "%*s%s", axisLabelWidth, axisLabel(y, height), axisSeparator)
		for _, cell := range row {
			switch {
			case cell == -1:
				b.WriteByte(' ')
			case cell == overlap:
				b.WriteRune(overlapGlyph)
			case useColor:
				b.WriteString(colorPalette[cell%len(colorPalette)])
				b.WriteRune(seriesGlyphs[cell%len(seriesGlyphs)])
				b.WriteString(colorReset)
			default:
				b.WriteRune(seriesGlyphs[cell%len(seriesGlyphs)])
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	lines = append(lines, strings.Repeat(" ", axisLabelWidth+1)+"└"+strings.Repeat("─", width+1))
	lines = append(lines, renderLegend(kept, useColor), "")
	return writeLines(w, lines)
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisLabelWidth-utf8.RuneCountInString(axisSeparator), minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func axisLabel(y, height int) string {
	switch {
	case y == 0:
		return "100%"
	case y == height-1:
		return "0%"
	case height > 2 && y == height/2:
		return "50%"
	default:
		return ""
	}
}

func valueToRow(v float64, height int) int {
	v = math.Max(0, math.Min(100, v))
	row := int(math.Round((1 - v/100) * float64(height-1)))
	return max(0, min(row, height-1))
}

// resampleSeries averages buckets when there are more values than columns
// and interpolates linearly when there are fewer.
func resampleSeries(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := max((i+1)*n/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := min(int(pos), n-2)
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s", seriesGlyphs[i%len(seriesGlyphs)], s.Name)
		if useColor {
			label = colorPalette[i%len(colorPalette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}
