package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuispeak/internal/model"
)

func TestPrefilledTranscriptShowsResult(t *testing.T) {
	m := NewModel(Options{
		Reference:  "The quick brown fox",
		Mode:       model.Reading,
		Recognized: "the quick brown",
	})
	if m.stage != stageResult {
		t.Fatalf("expected result stage")
	}
	if _, ok := m.Result(); ok {
		t.Fatalf("result should not be accepted before confirmation")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	res, ok := m.Result()
	if !ok {
		t.Fatalf("expected accepted result")
	}
	if res.Deletions != 1 || res.Accuracy != 75 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestTypedTranscriptFlow(t *testing.T) {
	m := NewModel(Options{Reference: "good morning", Mode: model.Shadowing})
	if m.stage != stageInput {
		t.Fatalf("expected input stage")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageInput {
		t.Fatalf("empty transcript should not be scored")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("good evening")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageResult {
		t.Fatalf("expected result stage after enter")
	}
	if m.result.Substitutions != 1 {
		t.Fatalf("expected one substitution, got %+v", m.result)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.stage != stageInput || m.input.Value() != "" {
		t.Fatalf("retry should reset input")
	}
}

func TestEscapeDiscards(t *testing.T) {
	m := NewModel(Options{Reference: "a b", Recognized: "a b"})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := m.Result(); ok {
		t.Fatalf("escape should discard the result")
	}
}

func TestFooterShowsMetrics(t *testing.T) {
	m := NewModel(Options{Reference: "one two three four", Recognized: "one two three four"})
	footer := m.renderFooter("help")
	for _, want := range []string{"Accuracy 100.0%", "WER 0.000", "Excellent", "✓4 ~0 −0 +0", "help"} {
		if !strings.Contains(footer, want) {
			t.Fatalf("footer %q missing %q", footer, want)
		}
	}
}

func TestViewWrapsToSeventyPercent(t *testing.T) {
	m := NewModel(Options{Reference: "alpha beta gamma delta epsilon zeta", Recognized: "alpha beta gamma delta epsilon zeta"})
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	view := m.View()
	if !strings.Contains(view, "alpha") || !strings.Contains(view, "zeta") {
		t.Fatalf("view missing words: %q", view)
	}
}
