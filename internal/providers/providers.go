// Package providers ships the built-in metric providers: Go runtime
// statistics and, via gopsutil, system and process CPU/memory usage. Each
// provider carries a default definition so hosts can register the whole
// set in one call and still override individual metrics beforehand.
package providers

import (
	"errors"
	"time"

	"github.com/tinytelemetry/perfhud/internal/catalog"
	"github.com/tinytelemetry/perfhud/internal/hud"
	"github.com/tinytelemetry/perfhud/internal/model"
	"github.com/tinytelemetry/perfhud/internal/sampler"
)

// Builtin pairs a provider with its default definition and sampling
// interval.
type Builtin struct {
	Provider   model.Provider
	Definition model.MetricDefinition
	Interval   time.Duration
}

// Defaults returns the built-in provider set. Runtime metrics sample
// every tick; system and process probes are throttled because the
// underlying OS reads are comparatively expensive.
func Defaults() []Builtin {
	return []Builtin{
		{
			Provider: NewGoroutineProvider(),
			Definition: model.MetricDefinition{
				ID:        GoroutinesID,
				Label:     "Goroutines",
				Precision: 0,
				Color:     model.RGB(0.56, 0.93, 0.56),
			},
		},
		{
			Provider: NewHeapAllocProvider(),
			Definition: model.MetricDefinition{
				ID:        HeapAllocID,
				Label:     "Heap",
				Unit:      "MB",
				Precision: 1,
				Color:     model.RGB(0.53, 0.81, 0.92),
			},
		},
		{
			Provider: NewGCPauseProvider(),
			Definition: model.MetricDefinition{
				ID:        GCPauseID,
				Label:     "GC",
				Unit:      "ms",
				Precision: 2,
				Color:     model.RGB(1, 1, 1),
			},
		},
		{
			Provider: NewSystemCPUProvider(),
			Definition: model.MetricDefinition{
				ID:        SystemCPUID,
				Label:     "SysCPU",
				Unit:      "%",
				Precision: 1,
				Color:     model.RGB(0.96, 0.76, 0.18),
			},
			Interval: time.Second,
		},
		{
			Provider: NewSystemMemProvider(),
			Definition: model.MetricDefinition{
				ID:        SystemMemID,
				Label:     "SysMem",
				Unit:      "%",
				Precision: 1,
				Color:     model.RGB(0.28, 0.56, 0.89),
			},
			Interval: time.Second,
		},
		{
			Provider: NewProcessCPUProvider(),
			Definition: model.MetricDefinition{
				ID:        ProcessCPUID,
				Label:     "ProcCPU",
				Unit:      "%",
				Precision: 1,
				Color:     model.RGB(1, 0.64, 0),
			},
			Interval: time.Second,
		},
		{
			Provider: NewProcessMemProvider(),
			Definition: model.MetricDefinition{
				ID:        ProcessMemID,
				Label:     "ProcMem",
				Unit:      "MB",
				Precision: 0,
				Color:     model.RGB(0.53, 0.81, 0.92),
			},
			Interval: time.Second,
		},
	}
}

// RegisterDefaults wires every built-in into the engine. Ids the host
// already registered keep their existing definition or provider; only a
// conflict on both sides of the same id is silently skipped.
func RegisterDefaults(e *hud.Engine) error {
	for _, b := range Defaults() {
		if err := e.RegisterMetric(b.Definition); err != nil && !errors.Is(err, catalog.ErrDuplicateID) {
			return err
		}
		if err := e.RegisterProvider(b.Provider, b.Interval); err != nil && !errors.Is(err, sampler.ErrDuplicateProvider) {
			return err
		}
	}
	return nil
}
