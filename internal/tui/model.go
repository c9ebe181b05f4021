// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuispeak/internal/feedback"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/score"
)

type stage int

const (
	stageInput stage = iota
	stageResult
)

var (
	correctStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	recognizedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	skippedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Strikethrough(true)
	insertedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	feedbackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// Options configures the practice screen.
type Options struct {
	Reference string
	PassageID string
	Mode      model.PracticeMode
	// Recognized is the final transcript. When empty the screen asks for it.
	Recognized string
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	opts Options

	width  int
	height int

	stage    stage
	input    textinput.Model
	result   model.ComparisonResult
	message  string
	tier     model.Tier
	accepted bool
}

// NewModel constructs a practice TUI model.
func NewModel(opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "type or paste what was recognized"
	input.Prompt = "> "
	input.CharLimit = 0
	m := &Model{opts: opts, input: input}
	if strings.TrimSpace(opts.Recognized) != "" {
		m.score(opts.Recognized)
	} else {
		m.input.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.stage == stageInput {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		if m.stage == stageInput {
			return m.updateInput(msg)
		}
		return m.updateResult(msg)
	}
	if m.stage == stageInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		m.score(m.input.Value())
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter:
		m.accepted = true
		return m, tea.Quit
	case msg.Type == tea.KeyRunes && string(msg.Runes) == "q":
		m.accepted = true
		return m, tea.Quit
	case msg.Type == tea.KeyRunes && string(msg.Runes) == "r" && m.opts.Recognized == "":
		m.stage = stageInput
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) score(recognized string) {
	m.result = score.Compare(m.opts.Reference, recognized)
	m.message, m.tier = feedback.Generate(m.result)
	m.stage = stageResult
}

// Result returns the comparison once the user accepted it.
func (m *Model) Result() (model.ComparisonResult, bool) {
	if !m.accepted || m.stage != stageResult {
		return model.ComparisonResult{}, false
	}
	return m.result, true
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := 0
	if m.width > 0 {
		contentWidth = max(int(float64(m.width)*0.70), 1)
	}
	var body, help string
	if m.stage == stageInput {
		body = m.renderHeader() + "\n\n" + wrapPlain(m.opts.Reference, contentWidth) + "\n\n" + m.input.View()
		help = "enter: score · esc: quit"
	} else {
		body = m.renderHeader() + "\n\n" +
			wrapStyledWords(buildStyledWords(m.result.Diagnostics), contentWidth) + "\n\n" +
			feedbackStyle.Render(m.message)
		help = "enter/q: save and quit · esc: discard"
		if m.opts.Recognized == "" {
			help = "enter/q: save and quit · r: retry · esc: discard"
		}
	}
	if m.width == 0 || m.height == 0 {
		return body + "\n" + m.renderFooter(help)
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(body)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	main := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter(help))
	return main + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("%s practice", m.opts.Mode)
	if m.opts.PassageID != "" {
		title += " · " + m.opts.PassageID
	}
	return footerStyle.Render(title)
}

func (m *Model) renderFooter(help string) string {
	segments := []string{}
	if m.stage == stageResult {
		r := m.result
		segments = append(segments,
			fmt.Sprintf("Accuracy %.1f%%", r.Accuracy),
			fmt.Sprintf("WER %.3f", r.WordErrorRate),
			m.tier.Label(),
			fmt.Sprintf("✓%d ~%d −%d +%d", r.Correct, r.Substitutions, r.Deletions, r.Insertions),
		)
	}
	segments = append(segments, help)
	return footerStyle.Render(strings.Join(segments, "  "))
}
