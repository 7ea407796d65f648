package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/perfhud/internal/model"
)

const gaugeLabelWidth = 16

// renderBars renders every configured bar gauge, one per line, inside a
// single bordered section.
func (m *Model) renderBars(width int) string {
	inner := width - 4
	if inner < 24 {
		inner = 24
	}

	lines := make([]string, 0, len(m.opts.Bars))
	for _, spec := range m.opts.Bars {
		lines = append(lines, m.renderGauge(spec, inner))
	}

	content := strings.Join(lines, "\n")
	return sectionStyle.Width(width).Render(content)
}

func (m *Model) renderGauge(spec PanelSpec, width int) string {
	def, ok := m.engine.Definition(spec.MetricID)
	if !ok {
		def = model.MetricDefinition{ID: spec.MetricID}
	}

	label := def.DisplayLabel()
	if len(label) > gaugeLabelWidth {
		label = label[:gaugeLabelWidth]
	}
	label = fmt.Sprintf("%-*s", gaugeLabelWidth, label)

	recent := m.engine.RecentWindow(spec.MetricID, 1)
	if len(recent) == 0 {
		return label + " " + helpStyle.Render("no data")
	}
	value := recent[0]

	rng, err := m.engine.Resolve(spec.MetricID, spec.Scale)
	if err != nil {
		return label + " " + helpStyle.Render(err.Error())
	}

	valueText := fmt.Sprintf("%.*f", def.Precision, value)
	if def.Unit != "" {
		valueText += " " + def.Unit
	}

	barWidth := width - gaugeLabelWidth - len(valueText) - 4
	if barWidth < 8 {
		barWidth = 8
	}

	filled := int(rng.Normalize(value) * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	fillStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(def.Color.Hex()))
	bar := fillStyle.Render(strings.Repeat("█", filled)) +
		helpStyle.Render(strings.Repeat("░", barWidth-filled))

	return label + " ▕" + bar + "▏ " + valueText
}
