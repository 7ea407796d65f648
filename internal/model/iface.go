package model

import "time"

// SampleContext is the opaque handle passed to providers during sampling.
// The engine never inspects Host; it exists so host applications can hand
// their own state to custom providers.
type SampleContext struct {
	// Now is the tick time supplied by the host.
	Now time.Time
	// Host is arbitrary host state, nil unless the host set one.
	Host any
}

// Provider produces one sample of a metric per invocation.
type Provider interface {
	// MetricID returns the stable, non-empty id this provider feeds.
	MetricID() string
	// Sample returns the current value, or ok=false when no value is
	// available this tick. Implementations must return promptly; there is
	// no preemption, so a blocking provider stalls the whole tick.
	Sample(ctx SampleContext) (value float64, ok bool)
}

// ProviderFunc adapts a closure to the Provider interface.
type ProviderFunc struct {
	ID string
	Fn func(ctx SampleContext) (float64, bool)
}

func (p ProviderFunc) MetricID() string { return p.ID }

func (p ProviderFunc) Sample(ctx SampleContext) (float64, bool) { return p.Fn(ctx) }

// HistoryReader is the read-only history contract used by display surfaces.
type HistoryReader interface {
	Snapshot(id string) []float64
	RecentWindow(id string, n int) []float64
	Count(id string) int
}

// DefinitionReader provides read-only access to registered definitions.
type DefinitionReader interface {
	Definition(id string) (MetricDefinition, bool)
	Definitions() []MetricDefinition
}
