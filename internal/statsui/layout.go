package statsui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	colorText   = lipgloss.Color("#F0F0F0")
	colorMuted  = lipgloss.Color("#B0B0B0")
	colorDim    = lipgloss.Color("#8C8C8C")
	colorFaint  = lipgloss.Color("#6E6E6E")
	colorBorder = lipgloss.Color("#4A4A4A")
	colorAccent = lipgloss.Color("#C89A3A")
	colorError  = lipgloss.Color("#FF4D4F")
)

var (
	hintStyle  = lipgloss.NewStyle().Foreground(colorFaint)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	boxStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder)
	labelStyle = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	gridStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

func tabStyle(active bool) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	if active {
		return base.Bold(true).Foreground(colorText).BorderForeground(colorAccent)
	}
	return base.Foreground(colorMuted).BorderForeground(colorBorder)
}

func gridStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#C0C0C0")).
		PaddingRight(1).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorBorder)
	s.Cell = lipgloss.NewStyle().PaddingRight(1)
	s.Selected = s.Cell.Bold(true).Foreground(colorText)
	return s
}

// frame pads every line of s to width cells and clips or extends it to
// exactly height lines.
func frame(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	src := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		var line string
		if i < len(src) {
			line = src[i]
		}
		if gap := width - lipgloss.Width(line); gap > 0 {
			line += strings.Repeat(" ", gap)
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}

func ellipsize(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
