package providers

import (
	"runtime"

	"github.com/tinytelemetry/perfhud/internal/model"
)

// Built-in runtime metric ids.
const (
	GoroutinesID = "goroutines"
	HeapAllocID  = "heap_mb"
	GCPauseID    = "gc_pause_ms"
)

const bytesPerMB = 1024 * 1024

// GoroutineProvider samples the number of live goroutines.
type GoroutineProvider struct{}

func NewGoroutineProvider() *GoroutineProvider { return &GoroutineProvider{} }

func (*GoroutineProvider) MetricID() string { return GoroutinesID }

func (*GoroutineProvider) Sample(model.SampleContext) (float64, bool) {
	return float64(runtime.NumGoroutine()), true
}

// HeapAllocProvider samples the live heap allocation in megabytes.
type HeapAllocProvider struct{}

func NewHeapAllocProvider() *HeapAllocProvider { return &HeapAllocProvider{} }

func (*HeapAllocProvider) MetricID() string { return HeapAllocID }

func (*HeapAllocProvider) Sample(model.SampleContext) (float64, bool) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapAlloc) / bytesPerMB, true
}

// GCPauseProvider samples the most recent garbage collection pause in
// milliseconds. Before the first collection there is no value.
type GCPauseProvider struct{}

func NewGCPauseProvider() *GCPauseProvider { return &GCPauseProvider{} }

func (*GCPauseProvider) MetricID() string { return GCPauseID }

func (*GCPauseProvider) Sample(model.SampleContext) (float64, bool) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.NumGC == 0 {
		return 0, false
	}
	pause := ms.PauseNs[(ms.NumGC+255)%256]
	return float64(pause) / 1e6, true
}
