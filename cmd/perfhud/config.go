package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tinytelemetry/perfhud/internal/model"
	"github.com/tinytelemetry/perfhud/internal/scale"
)

const (
	defaultTickInterval = 500 * time.Millisecond
	defaultBindHost     = "127.0.0.1"
	defaultAPIPort      = 3141
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	TickInterval  time.Duration  `mapstructure:"tick-interval"`
	SampleBudget  time.Duration  `mapstructure:"sample-budget"`
	BuiltinProbes bool           `mapstructure:"builtin-probes"`
	APIEnabled    bool           `mapstructure:"api-enabled"`
	APIPort       int            `mapstructure:"api-port"`
	APIAddr       string         `mapstructure:"api-addr"`
	Metrics       []metricConfig `mapstructure:"metrics"`
	Bars          []panelConfig  `mapstructure:"bars"`
	Graphs        []panelConfig  `mapstructure:"graphs"`
	ConfigPath    string         `mapstructure:"-"` // not from config file
}

// metricConfig declares or overrides a metric definition.
type metricConfig struct {
	ID           string  `mapstructure:"id"`
	Label        string  `mapstructure:"label"`
	Unit         string  `mapstructure:"unit"`
	Precision    int     `mapstructure:"precision"`
	Color        string  `mapstructure:"color"`
	Smoothing    float64 `mapstructure:"smoothing"`
	QuantizeStep float64 `mapstructure:"quantize-step"`
}

// panelConfig binds a metric to a display scale for a bar or graph panel.
type panelConfig struct {
	Metric string `mapstructure:"metric"`
	// Mode is one of "fixed", "auto", or "percentile". Empty means auto.
	Mode string `mapstructure:"mode"`

	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`

	Smoothing  float64 `mapstructure:"smoothing"`
	MinSpan    float64 `mapstructure:"min-span"`
	MarginFrac float64 `mapstructure:"margin"`

	Lower       float64 `mapstructure:"lower"`
	Upper       float64 `mapstructure:"upper"`
	SampleCount int     `mapstructure:"samples"`

	MinLimit *float64 `mapstructure:"min-limit"`
	MaxLimit *float64 `mapstructure:"max-limit"`
}

func (m metricConfig) toDefinition() (model.MetricDefinition, error) {
	def := model.MetricDefinition{
		ID:           m.ID,
		Label:        m.Label,
		Unit:         m.Unit,
		Precision:    m.Precision,
		Smoothing:    m.Smoothing,
		QuantizeStep: m.QuantizeStep,
		Color:        model.Color{R: 1, G: 1, B: 1, A: 1},
	}
	if m.Color != "" {
		c, err := parseHexColor(m.Color)
		if err != nil {
			return def, fmt.Errorf("metric %q: %w", m.ID, err)
		}
		def.Color = c
	}
	if err := def.Validate(); err != nil {
		return def, err
	}
	return def, nil
}

func (p panelConfig) toScaleConfig() (scale.Config, error) {
	fallback := scale.Range{Min: p.Min, Max: p.Max}
	if fallback.Max <= fallback.Min {
		fallback = scale.Range{Min: 0, Max: 100}
	}

	switch strings.ToLower(p.Mode) {
	case "fixed":
		return scale.Fixed{Min: p.Min, Max: p.Max}, nil
	case "auto", "":
		return scale.Auto{
			Fallback:   fallback,
			Smoothing:  p.Smoothing,
			MinSpan:    p.MinSpan,
			MarginFrac: p.MarginFrac,
			MinLimit:   p.MinLimit,
			MaxLimit:   p.MaxLimit,
		}, nil
	case "percentile":
		lower, upper := p.Lower, p.Upper
		if lower == 0 && upper == 0 {
			lower, upper = 5, 95
		}
		samples := p.SampleCount
		if samples == 0 {
			samples = 120
		}
		return scale.Percentile{
			Fallback:    fallback,
			Lower:       lower,
			Upper:       upper,
			SampleCount: samples,
			MinLimit:    p.MinLimit,
			MaxLimit:    p.MaxLimit,
		}, nil
	default:
		return nil, fmt.Errorf("panel %q: unknown scale mode %q", p.Metric, p.Mode)
	}
}

// parseHexColor parses "#RRGGBB" or "#RRGGBBAA" into a color.
func parseHexColor(s string) (model.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return model.Color{}, fmt.Errorf("invalid color %q: want #RRGGBB or #RRGGBBAA", s)
	}

	parse := func(part string) (float64, error) {
		n, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return float64(n) / 255, nil
	}

	var c model.Color
	var err error
	if c.R, err = parse(hex[0:2]); err != nil {
		return c, err
	}
	if c.G, err = parse(hex[2:4]); err != nil {
		return c, err
	}
	if c.B, err = parse(hex[4:6]); err != nil {
		return c, err
	}
	c.A = 1
	if len(hex) == 8 {
		if c.A, err = parse(hex[6:8]); err != nil {
			return c, err
		}
	}
	return c, nil
}
