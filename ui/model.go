package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kfiore/perfpulse/metrics"
	"github.com/kfiore/perfpulse/optimizer"
)

// Model is the live dashboard: an auto-refreshing view over the optimizer
// report plus a histogram for one timing metric at a time.
type Model struct {
	optimizer *optimizer.Optimizer
	metrics   *metrics.Recorder
	refresh   time.Duration

	chartIdx   int
	lastAction string
	width      int
	styles     Styles
}

type tickMsg time.Time

// NewModel creates the dashboard model.
func NewModel(opt *optimizer.Optimizer, rec *metrics.Recorder, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = time.Second
	}
	return Model{
		optimizer: opt,
		metrics:   rec,
		refresh:   refresh,
		width:     80,
		styles:    DefaultStyles(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "o":
			applied := m.optimizer.Optimize()
			if len(applied) == 0 {
				m.lastAction = "optimize: nothing to do"
			} else {
				m.lastAction = "optimize: " + strings.Join(applied, ", ")
			}
			return m, nil
		case "tab":
			m.chartIdx++
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		return m, m.tick()
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("perfpulse"))
	b.WriteByte('\n')
	b.WriteString(m.styles.Border.Render(m.optimizer.FormatReport()))
	b.WriteByte('\n')

	if chart := m.currentChart(); chart != "" {
		b.WriteString(m.styles.Border.Render(chart))
		b.WriteByte('\n')
	}

	if m.lastAction != "" {
		b.WriteString(m.styles.Status.Render(m.lastAction))
		b.WriteByte('\n')
	}
	b.WriteString(m.styles.Help.Render("o optimize · tab next chart · q quit"))

	return b.String()
}

func (m Model) currentChart() string {
	names := m.metrics.Names(metrics.KindTiming)
	if len(names) == 0 {
		return ""
	}
	name := names[m.chartIdx%len(names)]

	width := m.width - 8
	if width > 60 {
		width = 60
	}
	if width < 10 {
		width = 10
	}
	return fmt.Sprintf("%s\n", m.metrics.Chart(name, "", width, 8))
}
