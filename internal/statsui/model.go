// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/stats"
	"github.com/verte-zerg/tuispeak/internal/store"
)

const (
	tabOverview = iota
	tabMissedWords
	tabHistory
)

const (
	plotHeight    = 10
	curveWords    = 5
	wideLayout    = 80
	fallbackWidth = 80
)

var tabNames = []string{"Overview", "Missed Words", "History"}

// Model implements the Bubble Tea stats UI.
type Model struct {
	store store.Store
	cfg   model.StatsConfig

	report  stats.Report
	loadErr string

	active   int
	overview viewport.Model
	missed   table.Model
	history  table.Model

	editing  bool
	settings settingsForm

	width  int
	height int
}

// NewModel constructs a stats UI model reading from st.
func NewModel(st store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		overview: viewport.New(0, 0),
		missed:   newGrid(missedWordColumns()),
		history:  newGrid(historyColumns()),
		settings: newSettingsForm(),
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.drawOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.editing {
			return m, m.updateSettings(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "left", "h":
		m.switchTab(-1)
		return tea.ClearScreen
	case "right", "l":
		m.switchTab(1)
		return tea.ClearScreen
	case "=":
		m.cfg.CurveWindow = stepWindow(m.cfg.CurveWindow, 1)
		m.reload()
		return nil
	case "-":
		m.cfg.CurveWindow = stepWindow(m.cfg.CurveWindow, -1)
		m.reload()
		return nil
	case "/":
		m.editing = true
		return m.settings.load(m.cfg)
	}

	var cmd tea.Cmd
	switch m.active {
	case tabMissedWords:
		m.missed, cmd = m.missed.Update(msg)
	case tabHistory:
		m.history, cmd = m.history.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return cmd
}

func (m *Model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		return nil
	case tea.KeyTab:
		return m.settings.cycle(1)
	case tea.KeyShiftTab:
		return m.settings.cycle(-1)
	case tea.KeyEnter:
		cfg, err := m.settings.parse(m.cfg.Words)
		if err != nil {
			m.settings.err = err.Error()
			return nil
		}
		m.cfg = cfg
		m.editing = false
		m.reload()
		return nil
	}
	return m.settings.update(msg)
}

func (m *Model) switchTab(delta int) {
	n := len(tabNames)
	m.active = ((m.active+delta)%n + n) % n
	m.missed.Blur()
	m.history.Blur()
	if m.active == tabMissedWords {
		m.missed.Focus()
	} else if m.active == tabHistory {
		m.history.Focus()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	top, body, bottom := m.heights()
	return strings.Join([]string{
		frame(m.tabBar()+"\n"+m.settingsLine(), m.width, top),
		frame(m.body(), m.width, body),
		frame(m.helpLine(), m.width, bottom),
	}, "\n")
}

func (m *Model) heights() (top, body, bottom int) {
	top = max(lipgloss.Height(tabStyle(true).Render("X")), 1) + 1
	bottom = 1
	if !m.editing && m.loadErr != "" {
		bottom = 2
	}
	body = max(m.height-top-bottom, 1)
	return top, body, bottom
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, body, _ := m.heights()
	m.overview.Width, m.overview.Height = m.width, body
	m.missed.SetWidth(m.width)
	m.missed.SetHeight(max(body-1, 1))
	m.history.SetWidth(m.width)
	m.history.SetHeight(max(body-1, 1))
	m.settings.setWidth(m.width)
}

func (m *Model) tabBar() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		tabs[i] = tabStyle(i == m.active).Render(name)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) settingsLine() string {
	mode, since, last := "any", "any", "all"
	if m.cfg.Mode != "" {
		mode = m.cfg.Mode
	}
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	line := fmt.Sprintf("Settings: mode=%s  since=%s  last=%s  window=%d", mode, since, last, m.cfg.CurveWindow)
	return hintStyle.Render(ellipsize(line, m.width))
}

func (m *Model) helpLine() string {
	if m.editing {
		return hintStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := hintStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.loadErr != "" {
		help += "\n" + errorStyle.Render(m.loadErr)
	}
	return help
}

func (m *Model) body() string {
	switch {
	case m.editing:
		return m.settings.view()
	case m.loadErr != "":
		return "Failed to load stats."
	case len(m.report.Sessions) == 0:
		return "No sessions found."
	}
	switch m.active {
	case tabMissedWords:
		if len(m.report.WordAggsWindow) == 0 {
			return "No word stats found."
		}
		return gridStyle.Render(m.missed.View())
	case tabHistory:
		return gridStyle.Render(m.history.View())
	}
	return m.overview.View()
}

// reload rebuilds the report from the store with the current filters.
func (m *Model) reload() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	m.loadErr = ""
	m.report = report
	m.missed.SetRows(missedWordRows(report.WordAggsWindow))
	m.history.SetRows(historyRows(report.Sessions))
	m.resize()
	m.drawOverview()
}

func (m *Model) drawOverview() {
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	m.overview.SetContent(overviewContent(m.report, m.curveWords(), m.cfg.CurveWindow, width))
}

// curveWords returns the words given in the config, or the weakest missed
// words of the window.
func (m *Model) curveWords() []string {
	if words := stats.ParseWords(m.cfg.Words); len(words) > 0 {
		return words
	}
	var words []string
	for _, agg := range stats.SortWeakest(m.report.WordAggsWindow) {
		if len(words) == curveWords || stats.WordAccuracy(agg) >= 1 {
			break
		}
		words = append(words, agg.Word)
	}
	return words
}

func overviewContent(report stats.Report, words []string, window, width int) string {
	sections := []string{summaryCards(report.Sessions, width)}

	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, report.Sessions, window, width, plotHeight, true); err != nil {
		sections = append(sections, fmt.Sprintf("Failed to render curves: %v", err))
	} else {
		sections = append(sections, strings.TrimRight(buf.String(), "\n"))
	}

	if len(words) > 0 {
		buf.Reset()
		err := stats.RenderWordCurvesWithSize(&buf, report.Sessions, report.WordsPerSession, words, window, width, plotHeight, true)
		if err != nil {
			sections = append(sections, fmt.Sprintf("Failed to render word curves: %v", err))
		} else {
			sections = append(sections, hintStyle.Render("Words: "+strings.Join(words, ", "))+"\n"+strings.TrimRight(buf.String(), "\n"))
		}
	}
	return strings.Join(sections, "\n\n")
}

func summaryCards(sessions []model.SessionAggregate, width int) string {
	var accSum, werSum, best, wpmSum float64
	timed := 0
	for _, s := range sessions {
		accSum += s.Accuracy
		werSum += s.WordErrorRate
		best = max(best, s.Accuracy)
		if s.DurationSec > 0 {
			wpmSum += float64(s.ReferenceWords) / s.DurationSec * 60
			timed++
		}
	}
	n := float64(len(sessions))
	wpm := "n/a"
	if timed > 0 {
		wpm = fmt.Sprintf("%.1f", wpmSum/float64(timed))
	}
	cards := []string{
		card("Sessions", strconv.Itoa(len(sessions))),
		card("Avg Accuracy", fmt.Sprintf("%.1f%%", accSum/n)),
		card("Best Accuracy", fmt.Sprintf("%.1f%%", best)),
		card("Avg WER", fmt.Sprintf("%.3f", werSum/n)),
		card("Avg WPM", wpm),
	}
	if width < wideLayout {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
		lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
	)
}

func card(label, value string) string {
	return boxStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

// stepWindow moves n to the neighbouring multiple of five in direction dir.
// Stepping down from five or less yields 1.
func stepWindow(n, dir int) int {
	if dir > 0 {
		return (n/5 + 1) * 5
	}
	if n <= 5 {
		return 1
	}
	return (n - 1) / 5 * 5
}
