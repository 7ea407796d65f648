// Package series stores bounded per-metric history. Each metric owns a
// fixed-capacity ring buffer; raw samples pass through an exponential
// moving average and an optional quantization step before being stored,
// so display layers read values that are already stable enough to render.
package series

import (
	"math"
	"sync"

	"github.com/tinytelemetry/perfhud/internal/model"
)

// record holds one metric's history and filter state. Records are arena
// slots addressed by an integer handle; the string id is hashed once per
// push, not once per access step.
type record struct {
	id     string
	ring   []float64
	cursor int
	count  int

	// EMA anchor: last post-smoothing value.
	smoothed    float64
	hasSmoothed bool

	alpha float64 // EMA factor in [0,1]; 0 = raw passthrough
	step  float64 // quantization step; <= 0 disables
}

// Store owns all history buffers and is their single writer. The tick loop
// pushes; read surfaces may snapshot from other goroutines.
type Store struct {
	mu       sync.RWMutex
	handles  map[string]int
	records  []*record
	capacity int
}

// New creates a store with the default per-metric capacity of 256.
func New() *Store {
	return &Store{
		handles:  make(map[string]int),
		capacity: model.DefaultHistoryCapacity,
	}
}

// StepForPrecision derives a quantization step that keeps a display with
// the given decimal precision stable (10^-precision).
func StepForPrecision(precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	return math.Pow(10, float64(-precision))
}

// SetTuning configures the smoothing factor and quantization step for a
// metric, creating its record if needed. Alpha is clamped into [0,1].
func (s *Store) SetTuning(id string, alpha, step float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.ensure(id)
	r.alpha = math.Max(0, math.Min(1, alpha))
	r.step = step
}

// Push runs the raw -> smoothed -> quantized -> stored pipeline for one
// sample. Non-finite values are dropped. The buffer is created lazily on
// the first push for an id.
func (s *Store) Push(id string, raw float64) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.ensure(id)

	smoothed := raw
	if r.hasSmoothed {
		smoothed = r.smoothed*r.alpha + raw*(1-r.alpha)
	}
	r.smoothed = smoothed
	r.hasSmoothed = true

	quantized := smoothed
	if r.step > 0 {
		quantized = math.Round(smoothed/r.step) * r.step
	}

	r.ring[r.cursor] = quantized
	r.cursor = (r.cursor + 1) % s.capacity
	if r.count < s.capacity {
		r.count++
	}
}

// Snapshot returns up to capacity most recent values for id, oldest to
// newest, reconstructing chronological order across the wraparound. The
// result is a copy, never an alias of ring storage. Unknown ids yield nil.
func (s *Store) Snapshot(id string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.lookup(id)
	if r == nil || r.count == 0 {
		return nil
	}
	return s.window(r, r.count)
}

// RecentWindow returns the last min(n, count) values for id, oldest to
// newest.
func (s *Store) RecentWindow(id string, n int) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.lookup(id)
	if r == nil || r.count == 0 || n <= 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}
	return s.window(r, n)
}

// Count returns the number of stored values for id.
func (s *Store) Count(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r := s.lookup(id); r != nil {
		return r.count
	}
	return 0
}

// IsEmpty reports whether id has no stored values.
func (s *Store) IsEmpty(id string) bool {
	return s.Count(id) == 0
}

// MetricIDs returns the ids that have a record, in first-push order.
func (s *Store) MetricIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.id
	}
	return out
}

// window copies the last n values of r in chronological order. Caller
// holds at least a read lock and guarantees 0 < n <= r.count.
func (s *Store) window(r *record, n int) []float64 {
	out := make([]float64, n)
	// cursor points at the slot the next push will overwrite, so the
	// newest value sits at cursor-1.
	start := r.cursor - n
	if start < 0 {
		start += s.capacity
	}
	for i := 0; i < n; i++ {
		out[i] = r.ring[(start+i)%s.capacity]
	}
	return out
}

func (s *Store) lookup(id string) *record {
	if idx, ok := s.handles[id]; ok {
		return s.records[idx]
	}
	return nil
}

// ensure returns the record for id, creating it on first use. Caller holds
// the write lock.
func (s *Store) ensure(id string) *record {
	if idx, ok := s.handles[id]; ok {
		return s.records[idx]
	}
	r := &record{
		id:   id,
		ring: make([]float64, s.capacity),
	}
	s.handles[id] = len(s.records)
	s.records = append(s.records, r)
	return r
}
