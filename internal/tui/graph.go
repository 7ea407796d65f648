package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/perfhud/internal/model"
)

const graphHeight = 6

// renderGraph renders one metric's history as a bar-per-sample chart. The
// vertical axis is the resolved display range, so an adaptive scale
// re-fits the chart as the data drifts.
func (m *Model) renderGraph(spec PanelSpec, width int) string {
	def, ok := m.engine.Definition(spec.MetricID)
	if !ok {
		def = model.MetricDefinition{ID: spec.MetricID}
	}

	chartWidth := width - 4
	if chartWidth < 20 {
		chartWidth = 20
	}

	maxBars := chartWidth / 2
	values := m.engine.RecentWindow(spec.MetricID, maxBars)

	header := chartTitleStyle.Render(def.DisplayLabel())
	if len(values) == 0 {
		content := helpStyle.Render("No data available")
		return sectionStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, content))
	}

	rng, err := m.engine.Resolve(spec.MetricID, spec.Scale)
	if err != nil {
		content := helpStyle.Render(err.Error())
		return sectionStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, content))
	}

	rangeText := fmt.Sprintf("%.*f .. %.*f %s",
		def.Precision, rng.Min, def.Precision, rng.Max, def.Unit)
	spacer := chartWidth - lipgloss.Width(header) - len(rangeText)
	if spacer > 0 {
		header += strings.Repeat(" ", spacer) + helpStyle.Render(rangeText)
	}

	bc := barchart.New(chartWidth, graphHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)

	barStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(def.Color.Hex())).
		Background(lipgloss.Color(def.Color.Hex()))
	emptyStyle := lipgloss.NewStyle().Foreground(ColorDim)

	// Oldest samples are padded out on the left so fresh data always
	// enters from the right edge.
	for i := 0; i < maxBars-len(values); i++ {
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: "empty", Value: 0, Style: emptyStyle},
			},
		})
	}

	for _, v := range values {
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: def.ID, Value: rng.Normalize(v), Style: barStyle},
			},
		})
	}

	bc.Draw()

	return sectionStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, bc.View()))
}
