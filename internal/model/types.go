package model

import (
	"errors"
	"fmt"
	"math"
)

// Color is a display-only RGBA color with components in [0, 1].
type Color struct {
	R float64
	G float64
	B float64
	A float64
}

// RGB returns an opaque color.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Hex returns the color as "#RRGGBB" for terminal styling. Alpha is ignored.
func (c Color) Hex() string {
	to255 := func(v float64) int {
		v = math.Max(0, math.Min(1, v))
		return int(math.Round(v * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", to255(c.R), to255(c.G), to255(c.B))
}

// MetricDefinition describes a metric's identity and presentation metadata.
// Definitions are immutable once registered in a catalog.
type MetricDefinition struct {
	// ID uniquely names the metric for the process lifetime.
	ID string
	// Label is an optional display name; empty means display the ID.
	Label string
	// Unit is an optional suffix shown after values (e.g. "ms", "%").
	Unit string
	// Precision is the number of decimal places for display.
	Precision int
	// Color is used by display layers for curves and bars.
	Color Color
	// Smoothing is the EMA factor in [0, 1] applied before storing samples.
	// 0 passes raw values through; values near 1 react slowly.
	Smoothing float64
	// QuantizeStep rounds stored values to a fixed step. 0 derives the step
	// from Precision; a negative value disables quantization.
	QuantizeStep float64
}

// DisplayLabel returns the label, falling back to the metric id.
func (d MetricDefinition) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

// Validate reports whether the definition is well formed.
func (d MetricDefinition) Validate() error {
	if d.ID == "" {
		return errors.New("model: metric id is empty")
	}
	if d.Precision < 0 {
		return fmt.Errorf("model: metric %q: negative precision %d", d.ID, d.Precision)
	}
	if d.Smoothing < 0 || d.Smoothing > 1 {
		return fmt.Errorf("model: metric %q: smoothing %v outside [0,1]", d.ID, d.Smoothing)
	}
	return nil
}
