package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuispeak/internal/model"
)

type styledWord struct {
	s     string
	width int
}

func buildStyledWords(diags []model.WordDiagnostic) []styledWord {
	out := make([]styledWord, 0, len(diags))
	for _, d := range diags {
		var plain, rendered string
		switch d.Status {
		case model.Correct:
			plain = d.ReferenceWord
			rendered = correctStyle.Render(plain)
		case model.Substitution:
			plain = d.ReferenceWord + "→" + d.RecognizedWord
			rendered = incorrectStyle.Render(d.ReferenceWord) + recognizedStyle.Render("→"+d.RecognizedWord)
		case model.Deletion:
			plain = d.ReferenceWord
			rendered = skippedStyle.Render(plain)
		case model.Insertion:
			plain = "+" + d.RecognizedWord
			rendered = insertedStyle.Render(plain)
		}
		out = append(out, styledWord{s: rendered, width: runewidth.StringWidth(plain)})
	}
	return out
}

func wrapStyledWords(words []styledWord, width int) string {
	var out strings.Builder
	lineWidth := 0
	for i, w := range words {
		if i > 0 {
			if width > 0 && lineWidth+1+w.width > width {
				out.WriteByte('\n')
				lineWidth = 0
			} else {
				out.WriteByte(' ')
				lineWidth++
			}
		}
		out.WriteString(w.s)
		lineWidth += w.width
	}
	return out.String()
}

func wrapPlain(text string, width int) string {
	fields := strings.Fields(text)
	words := make([]styledWord, 0, len(fields))
	for _, f := range fields {
		words = append(words, styledWord{s: pendingStyle.Render(f), width: runewidth.StringWidth(f)})
	}
	return wrapStyledWords(words, width)
}
