package providers

import (
	"testing"
	"time"

	"github.com/tinytelemetry/perfhud/internal/hud"
	"github.com/tinytelemetry/perfhud/internal/model"
)

func TestGoroutineProvider(t *testing.T) {
	p := NewGoroutineProvider()
	if p.MetricID() != GoroutinesID {
		t.Fatalf("MetricID = %q, want %q", p.MetricID(), GoroutinesID)
	}
	v, ok := p.Sample(model.SampleContext{Now: time.Now()})
	if !ok {
		t.Fatalf("goroutine sample unavailable")
	}
	if v < 1 {
		t.Fatalf("goroutine count = %v, want >= 1", v)
	}
}

func TestHeapAllocProvider(t *testing.T) {
	p := NewHeapAllocProvider()
	v, ok := p.Sample(model.SampleContext{Now: time.Now()})
	if !ok {
		t.Fatalf("heap sample unavailable")
	}
	if v <= 0 {
		t.Fatalf("heap MB = %v, want > 0", v)
	}
}

func TestDefaultsAreWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, b := range Defaults() {
		if b.Provider.MetricID() != b.Definition.ID {
			t.Errorf("provider id %q != definition id %q", b.Provider.MetricID(), b.Definition.ID)
		}
		if err := b.Definition.Validate(); err != nil {
			t.Errorf("definition %q invalid: %v", b.Definition.ID, err)
		}
		if seen[b.Definition.ID] {
			t.Errorf("duplicate builtin id %q", b.Definition.ID)
		}
		seen[b.Definition.ID] = true
	}
}

func TestRegisterDefaults(t *testing.T) {
	e := hud.New()

	// A host override registered first must survive.
	override := model.MetricDefinition{
		ID:        GoroutinesID,
		Label:     "Workers",
		Precision: 0,
	}
	if err := e.RegisterMetric(override); err != nil {
		t.Fatalf("RegisterMetric override: %v", err)
	}

	if err := RegisterDefaults(e); err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}

	def, ok := e.Definition(GoroutinesID)
	if !ok || def.Label != "Workers" {
		t.Fatalf("override replaced by builtin: %+v", def)
	}
	if len(e.Definitions()) != len(Defaults()) {
		t.Fatalf("definitions = %d, want %d", len(e.Definitions()), len(Defaults()))
	}

	// Runtime metrics land on the very first tick.
	e.Tick(time.Now())
	if e.Count(GoroutinesID) != 1 {
		t.Fatalf("goroutine metric not sampled on tick")
	}
}
