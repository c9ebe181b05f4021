package statsui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuispeak/internal/model"
)

const dateLayout = "2006-01-02"

const (
	fieldMode = iota
	fieldSince
	fieldLast
	fieldWindow
)

// settingsForm edits the report filters in place.
type settingsForm struct {
	inputs []textinput.Model
	focus  int
	err    string
}

func newSettingsForm() settingsForm {
	prompts := []string{"Mode: ", "Since (YYYY-MM-DD): ", "Last: ", "Curve window: "}
	f := settingsForm{inputs: make([]textinput.Model, len(prompts))}
	for i, p := range prompts {
		in := textinput.New()
		in.Prompt = p
		in.CharLimit = 0
		in.Cursor.SetMode(cursor.CursorBlink)
		f.inputs[i] = in
	}
	return f
}

// load copies cfg into the fields and focuses the first one.
func (f *settingsForm) load(cfg model.StatsConfig) tea.Cmd {
	f.err = ""
	f.inputs[fieldMode].SetValue(cfg.Mode)
	f.inputs[fieldSince].SetValue("")
	if cfg.Since != nil {
		f.inputs[fieldSince].SetValue(cfg.Since.Format(dateLayout))
	}
	f.inputs[fieldLast].SetValue("")
	if cfg.Last > 0 {
		f.inputs[fieldLast].SetValue(strconv.Itoa(cfg.Last))
	}
	f.inputs[fieldWindow].SetValue(strconv.Itoa(cfg.CurveWindow))
	f.focus = 0
	return f.cycle(0)
}

// cycle moves focus by delta fields, wrapping at both ends.
func (f *settingsForm) cycle(delta int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((f.focus+delta)%n + n) % n
	var cmd tea.Cmd
	for i := range f.inputs {
		if i != f.focus {
			f.inputs[i].Blur()
			continue
		}
		cmd = f.inputs[i].Focus()
	}
	return cmd
}

func (f *settingsForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *settingsForm) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-lipgloss.Width(f.inputs[i].Prompt)-2)
	}
}

// parse validates the fields. words carries over unchanged.
func (f *settingsForm) parse(words string) (model.StatsConfig, error) {
	cfg := model.StatsConfig{Words: words}
	value := func(field int) string { return strings.TrimSpace(f.inputs[field].Value()) }

	if v := value(fieldMode); v != "" {
		if _, err := model.ParsePracticeMode(v); err != nil {
			return cfg, fmt.Errorf("invalid mode (use reading or shadowing)")
		}
		cfg.Mode = v
	}
	if v := value(fieldSince); v != "" {
		since, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &since
	}
	if v := value(fieldLast); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = n
	}
	if v := value(fieldWindow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = n
	}
	return cfg, nil
}

func (f *settingsForm) view() string {
	var b strings.Builder
	b.WriteString("Settings (enter to apply, esc to cancel)")
	for _, in := range f.inputs {
		b.WriteString("\n" + in.View())
	}
	if f.err != "" {
		b.WriteString("\n" + errorStyle.Render(f.err))
	}
	return b.String()
}
