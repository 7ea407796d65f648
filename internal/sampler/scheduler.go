// Package sampler owns the registered metric providers and drives one
// sampling pass per host tick. Providers are polled in registration order;
// each may declare a minimum re-sample interval so cheap per-frame metrics
// and expensive per-second probes share one loop.
package sampler

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tinytelemetry/perfhud/internal/model"
)

// ErrDuplicateProvider is returned when a metric id already has a provider.
var ErrDuplicateProvider = errors.New("sampler: duplicate provider id")

// Pusher is the sink samples are forwarded to. *series.Store satisfies it.
type Pusher interface {
	Push(id string, value float64)
}

type entry struct {
	provider model.Provider
	interval time.Duration

	lastSample time.Time
	hasSampled bool

	overruns int64
	warned   bool
}

// ProviderDiagnostics reports per-provider sampling health.
type ProviderDiagnostics struct {
	MetricID string
	// Overruns counts samples that exceeded the soft time budget. A slow
	// provider degrades the overlay's timeliness but is never aborted.
	Overruns   int64
	LastSample time.Time
}

// Scheduler polls providers and forwards produced values to its sink. It
// is driven by the host, which calls Tick at most once per frame; nothing
// here blocks or spawns goroutines. The mutex only exists so Diagnostics
// can be read from other goroutines; the tick loop is the single writer.
type Scheduler struct {
	mu      sync.Mutex
	sink    Pusher
	entries []*entry
	byID    map[string]*entry

	budget time.Duration
	host   any
	logger *log.Logger
}

// New creates a scheduler forwarding samples to sink.
func New(sink Pusher) *Scheduler {
	return &Scheduler{
		sink:   sink,
		byID:   make(map[string]*entry),
		budget: model.DefaultSampleBudget,
	}
}

// SetHost sets the opaque host state handed to providers via
// SampleContext. The scheduler never inspects it.
func (s *Scheduler) SetHost(host any) { s.host = host }

// SetSampleBudget overrides the soft per-sample time budget.
func (s *Scheduler) SetSampleBudget(d time.Duration) {
	if d > 0 {
		s.budget = d
	}
}

// SetLogger directs slow-provider warnings somewhere other than the
// default logger. A nil logger silences them.
func (s *Scheduler) SetLogger(l *log.Logger) { s.logger = l }

// Register adds a provider. interval is the minimum time between
// successful samples; zero means sample every tick. A provider may be
// registered before or after its metric definition exists.
func (s *Scheduler) Register(p model.Provider, interval time.Duration) error {
	id := p.MetricID()
	if id == "" {
		return errors.New("sampler: provider has an empty metric id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, id)
	}
	if interval < 0 {
		interval = 0
	}

	e := &entry{provider: p, interval: interval}
	s.entries = append(s.entries, e)
	s.byID[id] = e
	return nil
}

// Unregister removes the provider for id. Removing an unknown id is a
// no-op; subsequent ticks simply skip it.
func (s *Scheduler) Unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[id]; !exists {
		return
	}
	delete(s.byID, id)
	for i, e := range s.entries {
		if e.provider.MetricID() == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
}

// Tick runs one sampling pass at the host-supplied time. Providers are
// visited in registration order; a provider that is not yet due, or that
// returns no value, is skipped without writing a placeholder.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := model.SampleContext{Now: now, Host: s.host}

	for _, e := range s.entries {
		if e.hasSampled && e.interval > 0 && now.Sub(e.lastSample) < e.interval {
			continue
		}

		start := time.Now()
		value, ok := e.provider.Sample(ctx)
		if elapsed := time.Since(start); elapsed > s.budget {
			e.overruns++
			if s.logger != nil && !e.warned {
				e.warned = true
				s.logger.Printf("sampler: provider %q took %v (budget %v)", e.provider.MetricID(), elapsed, s.budget)
			}
		}

		if !ok {
			// No value this tick; the prior history entry stays the most
			// recent and the provider becomes due again next tick.
			continue
		}

		s.sink.Push(e.provider.MetricID(), value)
		e.lastSample = now
		e.hasSampled = true
	}
}

// Diagnostics returns sampling health for every provider, in
// registration order.
func (s *Scheduler) Diagnostics() []ProviderDiagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ProviderDiagnostics, len(s.entries))
	for i, e := range s.entries {
		out[i] = ProviderDiagnostics{
			MetricID:   e.provider.MetricID(),
			Overruns:   e.overruns,
			LastSample: e.lastSample,
		}
	}
	return out
}

// Len returns the number of registered providers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
