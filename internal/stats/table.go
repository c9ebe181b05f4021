package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// textTable lays rows out under a header, padding each column to its widest
// cell. Columns marked numeric are right-aligned.
type textTable struct {
	headers []string
	numeric map[int]bool
	rows    [][]string
}

func (t *textTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) lines() []string {
	all := append([][]string{t.headers}, t.rows...)
	widths := []int{}
	for _, row := range all {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	if len(widths) == 0 {
		return nil
	}

	out := make([]string, 0, len(all))
	for _, row := range all {
		if len(row) == 0 {
			continue
		}
		var b strings.Builder
		for i, width := range widths {
			if i > 0 {
				b.WriteByte(' ')
			}
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if t.numeric[i] {
				b.WriteString(runewidth.FillLeft(cell, width))
			} else {
				b.WriteString(runewidth.FillRight(cell, width))
			}
		}
		out = append(out, b.String())
	}
	return out
}
