// Package scale derives the effective [min, max] range a bar display
// should use for a metric, with temporal stability guarantees. Three modes
// exist: a fixed range, an auto-adaptive range following recent history,
// and a percentile range robust to outliers.
package scale

import (
	"errors"
	"fmt"
	"math"
)

// epsilon is the smallest span a resolved range may have; consumers divide
// by the span when normalizing.
const epsilon = 1e-6

// Range is a resolved display range.
type Range struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Normalize maps v into [0, 1] relative to the range, clamped. A
// degenerate range yields 0.
func (r Range) Normalize(v float64) float64 {
	span := r.Span()
	if span <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, (v-r.Min)/span))
}

// Config selects one of the three range-resolution modes. Exactly the
// fields meaningful for a mode exist on its struct; an Auto-only knob
// cannot be set on a Percentile config.
type Config interface {
	// Validate reports configuration errors synchronously, before any
	// history is read.
	Validate() error
	mode() string
}

// Fixed resolves to the configured bounds, ignoring history.
type Fixed struct {
	Min float64
	Max float64
}

func (f Fixed) mode() string { return "fixed" }

func (f Fixed) Validate() error {
	if f.Min >= f.Max {
		return fmt.Errorf("scale: fixed: min %v >= max %v", f.Min, f.Max)
	}
	return nil
}

// Auto adapts to the recent data range with margins, a minimum span, and a
// smoothed transition from the previously resolved range.
type Auto struct {
	// Fallback is returned while no history exists.
	Fallback Range
	// Smoothing blends the prior range toward the target: 0 jumps
	// immediately, values near 1 nearly freeze the range.
	Smoothing float64
	// MinSpan is the smallest allowed span; flat data expands to it.
	MinSpan float64
	// MarginFrac adds headroom around the data range, in [0, 0.5].
	MarginFrac float64
	// MinLimit and MaxLimit are optional hard clamps.
	MinLimit *float64
	MaxLimit *float64
}

func (a Auto) mode() string { return "auto" }

func (a Auto) Validate() error {
	if a.Smoothing < 0 || a.Smoothing > 1 {
		return fmt.Errorf("scale: auto: smoothing %v outside [0,1]", a.Smoothing)
	}
	if a.MarginFrac < 0 || a.MarginFrac > 0.5 {
		return fmt.Errorf("scale: auto: margin_frac %v outside [0,0.5]", a.MarginFrac)
	}
	if a.MinSpan < 0 {
		return fmt.Errorf("scale: auto: negative min_span %v", a.MinSpan)
	}
	if a.MinLimit != nil && a.MaxLimit != nil && *a.MinLimit >= *a.MaxLimit {
		return fmt.Errorf("scale: auto: min_limit %v >= max_limit %v", *a.MinLimit, *a.MaxLimit)
	}
	return nil
}

// Percentile resolves to interpolated percentiles of the most recent
// samples, making the range robust to spikes.
type Percentile struct {
	// Fallback is returned while fewer than two samples exist.
	Fallback Range
	// Lower and Upper are percentiles in [0, 100], Lower < Upper.
	Lower float64
	Upper float64
	// SampleCount is how many recent samples to consider, at least 2.
	SampleCount int
	// MinLimit and MaxLimit are optional hard clamps.
	MinLimit *float64
	MaxLimit *float64
}

func (p Percentile) mode() string { return "percentile" }

func (p Percentile) Validate() error {
	if p.Lower < 0 || p.Upper > 100 {
		return fmt.Errorf("scale: percentile: bounds [%v,%v] outside [0,100]", p.Lower, p.Upper)
	}
	if p.Lower >= p.Upper {
		return fmt.Errorf("scale: percentile: lower %v >= upper %v", p.Lower, p.Upper)
	}
	if p.SampleCount < 2 {
		return fmt.Errorf("scale: percentile: sample_count %d < 2", p.SampleCount)
	}
	if p.MinLimit != nil && p.MaxLimit != nil && *p.MinLimit >= *p.MaxLimit {
		return fmt.Errorf("scale: percentile: min_limit %v >= max_limit %v", *p.MinLimit, *p.MaxLimit)
	}
	return nil
}

// ErrNilConfig is returned when Resolve is called without a config.
var ErrNilConfig = errors.New("scale: nil config")
