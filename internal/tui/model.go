// Package tui renders the live diagnostic overlay as a terminal UI. The
// bubbletea frame loop doubles as the host tick: every tick message drives
// one engine sampling pass, then the view reads history and resolved
// ranges back out.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/perfhud/internal/hud"
	"github.com/tinytelemetry/perfhud/internal/scale"
)

// PanelSpec binds a metric to the scale used to display it.
type PanelSpec struct {
	MetricID string
	Scale    scale.Config
}

// Options configures the overlay layout.
type Options struct {
	// Bars are rendered as horizontal gauges, one line each.
	Bars []PanelSpec
	// Graphs are rendered as bar-per-sample history charts.
	Graphs []PanelSpec
	// TickInterval is the cadence of engine ticks. Zero means 500ms.
	TickInterval time.Duration
}

type tickMsg time.Time

// Model is the bubbletea model for the overlay.
type Model struct {
	engine *hud.Engine
	opts   Options
	keys   KeyMap

	width  int
	height int
	paused bool
	help   bool
}

// NewModel creates the overlay model around a ready engine.
func NewModel(engine *hud.Engine, opts Options) *Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 500 * time.Millisecond
	}
	return &Model{
		engine: engine,
		opts:   opts,
		keys:   DefaultKeyMap(),
	}
}

// Paused reports whether ticking is suspended.
func (m *Model) Paused() bool { return m.paused }

func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.paused {
			m.engine.Tick(time.Time(msg))
		}
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, m.keys.ResetScale):
			for _, spec := range m.opts.Bars {
				m.engine.ResetScale(spec.MetricID)
			}
			for _, spec := range m.opts.Graphs {
				m.engine.ResetScale(spec.MetricID)
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help = !m.help
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Initializing overlay..."
	}
	if m.width < 40 || m.height < 10 {
		return "Terminal too small. Resize to at least 40x10."
	}

	var sections []string

	title := chartTitleStyle.Render("perfhud")
	if m.paused {
		title += "  " + pausedStyle.Render("PAUSED")
	}
	sections = append(sections, title)

	if len(m.opts.Bars) > 0 {
		sections = append(sections, m.renderBars(m.width-2))
	}
	for _, spec := range m.opts.Graphs {
		sections = append(sections, m.renderGraph(spec, m.width-2))
	}

	sections = append(sections, m.renderStatusLine())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderStatusLine() string {
	if m.help {
		items := []key.Binding{
			m.keys.Pause, m.keys.ResetScale, m.keys.Help, m.keys.Quit,
		}
		var text string
		for i, b := range items {
			if i > 0 {
				text += "  "
			}
			text += b.Help().Key + " " + b.Help().Desc
		}
		return helpStyle.Render(text)
	}
	return helpStyle.Render("? for help")
}
