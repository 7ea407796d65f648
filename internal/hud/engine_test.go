package hud

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tinytelemetry/perfhud/internal/catalog"
	"github.com/tinytelemetry/perfhud/internal/model"
	"github.com/tinytelemetry/perfhud/internal/sampler"
	"github.com/tinytelemetry/perfhud/internal/scale"
)

func TestSampleToResolvePipeline(t *testing.T) {
	e := New()

	def := model.MetricDefinition{
		ID:        "frame_time_ms",
		Label:     "FT:",
		Unit:      "ms",
		Precision: 1,
	}
	if err := e.RegisterMetric(def); err != nil {
		t.Fatalf("RegisterMetric: %v", err)
	}

	values := []float64{16.6, 16.7, 16.5, 33.1, 16.6}
	i := 0
	p := model.ProviderFunc{
		ID: "frame_time_ms",
		Fn: func(model.SampleContext) (float64, bool) {
			v := values[i%len(values)]
			i++
			return v, true
		},
	}
	if err := e.RegisterProvider(p, 0); err != nil {
		t.Fatalf("RegisterProvider: %v", err)
	}

	now := time.Now()
	for tick := 0; tick < len(values); tick++ {
		e.Tick(now.Add(time.Duration(tick) * 16 * time.Millisecond))
	}

	if got := e.Count("frame_time_ms"); got != len(values) {
		t.Fatalf("Count = %d, want %d", got, len(values))
	}
	if e.Ticks() != int64(len(values)) {
		t.Fatalf("Ticks = %d, want %d", e.Ticks(), len(values))
	}

	// Precision 1 derives a 0.1 quantize step; stored values stay on it.
	for _, v := range e.Snapshot("frame_time_ms") {
		scaled := v * 10
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("stored value %v not on 0.1 grid", v)
		}
	}

	rng, err := e.Resolve("frame_time_ms", scale.Auto{
		Fallback: scale.Range{Min: 0, Max: 33.4},
		MinSpan:  1,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rng.Min > 16.5 || rng.Max < 33.1 {
		t.Fatalf("resolved range [%v, %v] does not cover the data", rng.Min, rng.Max)
	}
}

func TestRegistriesIndependent(t *testing.T) {
	e := New()

	// Provider registered before any definition exists.
	p := model.ProviderFunc{
		ID: "orphan",
		Fn: func(model.SampleContext) (float64, bool) { return 1, true },
	}
	if err := e.RegisterProvider(p, 0); err != nil {
		t.Fatalf("RegisterProvider without definition: %v", err)
	}
	e.Tick(time.Now())
	if e.Count("orphan") != 1 {
		t.Fatalf("provider without definition did not sample")
	}

	// Definition registered with no provider: queries work, history is
	// simply empty.
	if err := e.RegisterMetric(model.MetricDefinition{ID: "silent"}); err != nil {
		t.Fatalf("RegisterMetric without provider: %v", err)
	}
	if e.Count("silent") != 0 {
		t.Fatalf("definition-only metric has history")
	}
	if _, ok := e.Definition("silent"); !ok {
		t.Fatalf("definition-only metric not in catalog")
	}
}

func TestDuplicateErrorsAreDistinguishable(t *testing.T) {
	e := New()

	if err := e.RegisterMetric(model.MetricDefinition{ID: "m"}); err != nil {
		t.Fatalf("RegisterMetric: %v", err)
	}
	err := e.RegisterMetric(model.MetricDefinition{ID: "m"})
	if !errors.Is(err, catalog.ErrDuplicateID) {
		t.Fatalf("duplicate metric: got %v, want catalog.ErrDuplicateID", err)
	}

	p := model.ProviderFunc{ID: "m", Fn: func(model.SampleContext) (float64, bool) { return 0, true }}
	if err := e.RegisterProvider(p, 0); err != nil {
		t.Fatalf("RegisterProvider: %v", err)
	}
	err = e.RegisterProvider(p, 0)
	if !errors.Is(err, sampler.ErrDuplicateProvider) {
		t.Fatalf("duplicate provider: got %v, want sampler.ErrDuplicateProvider", err)
	}
}

func TestMisconfiguredMetricDoesNotStallOthers(t *testing.T) {
	e := New()

	good := model.ProviderFunc{ID: "good", Fn: func(model.SampleContext) (float64, bool) { return 5, true }}
	if err := e.RegisterProvider(good, 0); err != nil {
		t.Fatalf("RegisterProvider: %v", err)
	}

	e.Tick(time.Now())

	// Resolving a misconfigured scale fails for that metric only.
	if _, err := e.Resolve("good", scale.Fixed{Min: 10, Max: 10}); err == nil {
		t.Fatalf("invalid Fixed config must fail")
	}

	// The tick loop and other queries keep working.
	e.Tick(time.Now().Add(time.Millisecond))
	if e.Count("good") != 2 {
		t.Fatalf("sampling stalled after a config error")
	}
	if _, err := e.Resolve("good", scale.Fixed{Min: 0, Max: 10}); err != nil {
		t.Fatalf("valid Resolve after failed one: %v", err)
	}
}

func TestEnginesAreIsolated(t *testing.T) {
	a := New()
	b := New()

	p := model.ProviderFunc{ID: "m", Fn: func(model.SampleContext) (float64, bool) { return 1, true }}
	if err := a.RegisterProvider(p, 0); err != nil {
		t.Fatalf("RegisterProvider: %v", err)
	}
	a.Tick(time.Now())

	if b.Count("m") != 0 {
		t.Fatalf("engines share state")
	}
}
