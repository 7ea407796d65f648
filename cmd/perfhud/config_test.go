package main

import (
	"math"
	"testing"

	"github.com/tinytelemetry/perfhud/internal/scale"
)

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#FF8000")
	if err != nil {
		t.Fatalf("parseHexColor: %v", err)
	}
	if c.R != 1 || math.Abs(c.G-128.0/255) > 1e-9 || c.B != 0 || c.A != 1 {
		t.Errorf("unexpected color: %+v", c)
	}

	c, err = parseHexColor("00ff0080")
	if err != nil {
		t.Fatalf("parseHexColor without hash: %v", err)
	}
	if c.G != 1 || math.Abs(c.A-128.0/255) > 1e-9 {
		t.Errorf("unexpected rgba color: %+v", c)
	}

	for _, bad := range []string{"", "#fff", "#gggggg", "#12345"} {
		if _, err := parseHexColor(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestHexColorRoundTrip(t *testing.T) {
	c, err := parseHexColor("#12ab3f")
	if err != nil {
		t.Fatalf("parseHexColor: %v", err)
	}
	if got := c.Hex(); got != "#12ab3f" {
		t.Errorf("round trip: got %q", got)
	}
}

func TestPanelConfigModes(t *testing.T) {
	fixed, err := panelConfig{Metric: "fps", Mode: "fixed", Min: 0, Max: 120}.toScaleConfig()
	if err != nil {
		t.Fatalf("fixed: %v", err)
	}
	if f, ok := fixed.(scale.Fixed); !ok || f.Max != 120 {
		t.Errorf("expected Fixed{0,120}, got %#v", fixed)
	}

	auto, err := panelConfig{Metric: "heap", Smoothing: 0.5, MinSpan: 4}.toScaleConfig()
	if err != nil {
		t.Fatalf("auto default: %v", err)
	}
	a, ok := auto.(scale.Auto)
	if !ok {
		t.Fatalf("empty mode should mean auto, got %#v", auto)
	}
	if a.Smoothing != 0.5 || a.MinSpan != 4 {
		t.Errorf("auto parameters lost: %+v", a)
	}
	if a.Fallback != (scale.Range{Min: 0, Max: 100}) {
		t.Errorf("expected default fallback, got %+v", a.Fallback)
	}

	pct, err := panelConfig{Metric: "lat", Mode: "percentile", Min: 0, Max: 50}.toScaleConfig()
	if err != nil {
		t.Fatalf("percentile: %v", err)
	}
	p, ok := pct.(scale.Percentile)
	if !ok {
		t.Fatalf("expected Percentile, got %#v", pct)
	}
	if p.Lower != 5 || p.Upper != 95 {
		t.Errorf("expected default 5/95 percentiles, got %v/%v", p.Lower, p.Upper)
	}
	if p.Fallback != (scale.Range{Min: 0, Max: 50}) {
		t.Errorf("expected configured fallback, got %+v", p.Fallback)
	}

	if _, err := (panelConfig{Metric: "x", Mode: "log"}).toScaleConfig(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestMetricConfigToDefinition(t *testing.T) {
	def, err := metricConfig{
		ID:        "frame_ms",
		Label:     "Frame Time",
		Unit:      "ms",
		Precision: 2,
		Color:     "#00ff00",
		Smoothing: 0.8,
	}.toDefinition()
	if err != nil {
		t.Fatalf("toDefinition: %v", err)
	}
	if def.Color.G != 1 || def.Color.R != 0 {
		t.Errorf("color not applied: %+v", def.Color)
	}
	if def.Smoothing != 0.8 {
		t.Errorf("smoothing not applied: %v", def.Smoothing)
	}

	if _, err := (metricConfig{ID: ""}).toDefinition(); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := (metricConfig{ID: "x", Smoothing: 2}).toDefinition(); err == nil {
		t.Error("expected error for out-of-range smoothing")
	}
}

func TestBuildPanelsDefaults(t *testing.T) {
	cfg := appConfig{BuiltinProbes: true}
	bars, graphs, scales, err := buildPanels(cfg)
	if err != nil {
		t.Fatalf("buildPanels: %v", err)
	}
	if len(bars) == 0 || len(graphs) == 0 {
		t.Fatal("expected a default layout when nothing is configured")
	}
	for _, spec := range bars {
		if _, ok := scales[spec.MetricID]; !ok {
			t.Errorf("bar %q missing from scale map", spec.MetricID)
		}
	}
}

func TestBuildPanelsExplicit(t *testing.T) {
	cfg := appConfig{
		Bars:   []panelConfig{{Metric: "fps", Mode: "fixed", Min: 0, Max: 120}},
		Graphs: []panelConfig{{Metric: "fps", Mode: "auto"}},
	}
	bars, graphs, scales, err := buildPanels(cfg)
	if err != nil {
		t.Fatalf("buildPanels: %v", err)
	}
	if len(bars) != 1 || len(graphs) != 1 {
		t.Fatalf("expected 1 bar and 1 graph, got %d/%d", len(bars), len(graphs))
	}
	// First panel for a metric wins the API scale slot.
	if _, ok := scales["fps"].(scale.Fixed); !ok {
		t.Errorf("expected the bar's fixed scale in the map, got %#v", scales["fps"])
	}

	if _, _, _, err := buildPanels(appConfig{Bars: []panelConfig{{Mode: "fixed"}}}); err == nil {
		t.Error("expected error for missing metric id")
	}
}
