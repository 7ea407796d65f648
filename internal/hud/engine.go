// Package hud ties the metric catalog, history store, sampling scheduler,
// and scale resolver into one engine instance. Everything is explicit
// state: independent engines (one per overlay, one per test) coexist
// without interference.
package hud

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/tinytelemetry/perfhud/internal/catalog"
	"github.com/tinytelemetry/perfhud/internal/model"
	"github.com/tinytelemetry/perfhud/internal/sampler"
	"github.com/tinytelemetry/perfhud/internal/scale"
	"github.com/tinytelemetry/perfhud/internal/series"
)

// Engine is the single entry point host applications use. The host drives
// it with Tick once per frame; display layers read history and resolved
// ranges afterwards.
//
// The metric catalog and the provider registry are independent: a
// provider may be registered before its definition and vice versa. Both
// only need to exist by the time a display layer queries the metric.
type Engine struct {
	catalog   *catalog.Catalog
	store     *series.Store
	scheduler *sampler.Scheduler
	resolver  *scale.Resolver

	ticks int64
}

// New creates an engine with empty registries.
func New() *Engine {
	store := series.New()
	return &Engine{
		catalog:   catalog.New(),
		store:     store,
		scheduler: sampler.New(store),
		resolver:  scale.NewResolver(store),
	}
}

// SetHost sets the opaque state handed to providers during sampling.
func (e *Engine) SetHost(host any) { e.scheduler.SetHost(host) }

// SetLogger directs the engine's diagnostics (slow providers, degenerate
// ranges) to l. A nil logger silences them.
func (e *Engine) SetLogger(l *log.Logger) {
	e.scheduler.SetLogger(l)
	e.resolver.SetLogger(l)
}

// SetSampleBudget overrides the soft per-provider sampling time budget.
func (e *Engine) SetSampleBudget(d time.Duration) { e.scheduler.SetSampleBudget(d) }

// RegisterMetric adds a definition and applies its smoothing and
// quantization tuning to the history store. Duplicate ids fail closed.
func (e *Engine) RegisterMetric(def model.MetricDefinition) error {
	if err := e.catalog.Register(def); err != nil {
		return err
	}

	step := def.QuantizeStep
	if step == 0 {
		step = series.StepForPrecision(def.Precision)
	}
	e.store.SetTuning(def.ID, def.Smoothing, step)
	return nil
}

// RegisterProvider adds a sampling provider for a metric id. interval is
// the minimum time between samples; zero samples every tick.
func (e *Engine) RegisterProvider(p model.Provider, interval time.Duration) error {
	return e.scheduler.Register(p, interval)
}

// UnregisterProvider stops future sampling for id. Idempotent.
func (e *Engine) UnregisterProvider(id string) { e.scheduler.Unregister(id) }

// Tick runs one sampling pass. The host calls this at most once per
// logical frame; skipping a frame simply means no new samples land.
func (e *Engine) Tick(now time.Time) {
	e.scheduler.Tick(now)
	atomic.AddInt64(&e.ticks, 1)
}

// Ticks returns how many sampling passes have run. Safe to call from the
// API goroutines while the tick loop runs.
func (e *Engine) Ticks() int64 { return atomic.LoadInt64(&e.ticks) }

// Snapshot returns the stored history for id, oldest to newest.
func (e *Engine) Snapshot(id string) []float64 { return e.store.Snapshot(id) }

// RecentWindow returns the last min(n, count) values for id.
func (e *Engine) RecentWindow(id string, n int) []float64 {
	return e.store.RecentWindow(id, n)
}

// Count returns the number of stored values for id.
func (e *Engine) Count(id string) int { return e.store.Count(id) }

// Resolve computes the display range for id under cfg. Invoke after Tick,
// never interleaved with it.
func (e *Engine) Resolve(id string, cfg scale.Config) (scale.Range, error) {
	return e.resolver.Resolve(id, cfg)
}

// ResetScale clears the resolver's persisted state for id, e.g. after a
// bar's scale mode changed.
func (e *Engine) ResetScale(id string) { e.resolver.Reset(id) }

// Definition returns the registered definition for id, if any.
func (e *Engine) Definition(id string) (model.MetricDefinition, bool) {
	return e.catalog.Lookup(id)
}

// Definitions returns all registered definitions in registration order.
func (e *Engine) Definitions() []model.MetricDefinition { return e.catalog.All() }

// Diagnostics returns per-provider sampling health.
func (e *Engine) Diagnostics() []sampler.ProviderDiagnostics {
	return e.scheduler.Diagnostics()
}
