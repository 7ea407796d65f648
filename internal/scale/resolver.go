package scale

import (
	"log"
	"math"
	"sort"
	"sync"

	"github.com/tinytelemetry/perfhud/internal/model"
)

// autoWindow is how many recent samples Auto mode inspects; large enough
// to cover typical frame-to-frame variance without scanning the whole
// ring (about two seconds at 60 ticks/s).
const autoWindow = 120

// Resolver computes effective display ranges from metric history. It owns
// the per-metric previous range needed by Auto mode and only ever reads
// history; it never mutates the store.
type Resolver struct {
	mu      sync.Mutex
	history model.HistoryReader
	state   map[string]Range

	logger     *log.Logger
	degenerate int64
	noticed    map[string]bool
}

// NewResolver creates a resolver reading from the given history.
func NewResolver(history model.HistoryReader) *Resolver {
	return &Resolver{
		history: history,
		state:   make(map[string]Range),
		noticed: make(map[string]bool),
	}
}

// SetLogger directs degenerate-range notices somewhere other than the
// default logger. A nil logger silences them.
func (r *Resolver) SetLogger(l *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// Resolve computes the range for id under cfg. Deterministic given the
// same history and prior state; the only side effect is updating the
// resolver's own per-metric state (Auto mode). Call after the tick's
// sampling phase, once per metric per tick.
func (r *Resolver) Resolve(id string, cfg Config) (Range, error) {
	if cfg == nil {
		return Range{}, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return Range{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch c := cfg.(type) {
	case Fixed:
		return r.floored(id, Range{Min: c.Min, Max: c.Max}, epsilon), nil
	case Auto:
		return r.resolveAuto(id, c), nil
	case Percentile:
		return r.resolvePercentile(id, c), nil
	default:
		// Externally defined Config implementations are not supported;
		// the mode set is closed.
		return Range{}, ErrNilConfig
	}
}

// Reset clears the persisted state for id, e.g. when its scale mode
// changes.
func (r *Resolver) Reset(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, id)
	delete(r.noticed, id)
}

// DegenerateCount returns how many resolutions needed the zero-span
// floor. A steadily climbing count usually means a misconfigured metric.
func (r *Resolver) DegenerateCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degenerate
}

func (r *Resolver) resolveAuto(id string, c Auto) Range {
	floor := math.Max(c.MinSpan, epsilon)

	window := r.history.RecentWindow(id, autoWindow)
	if len(window) == 0 {
		// No history yet: hand back the fallback without touching state
		// so warm-up frames do not pollute later blending.
		return r.floored(id, c.Fallback, floor)
	}

	dataMin, dataMax := window[0], window[0]
	for _, v := range window[1:] {
		dataMin = math.Min(dataMin, v)
		dataMax = math.Max(dataMax, v)
	}

	margin := (dataMax - dataMin) * c.MarginFrac
	target := Range{Min: dataMin - margin, Max: dataMax + margin}
	if target.Span() < epsilon && floor <= epsilon {
		// A flat window with no configured min span collapses to a
		// point; expanding to min_span is normal operation, this is not.
		r.markDegenerate(id, target)
	}
	target = ensureSpan(target, floor)

	effective := target
	if prior, ok := r.state[id]; ok {
		effective = Range{
			Min: prior.Min*c.Smoothing + target.Min*(1-c.Smoothing),
			Max: prior.Max*c.Smoothing + target.Max*(1-c.Smoothing),
		}
	}

	effective = clampLimits(effective, c.MinLimit, c.MaxLimit)
	effective = r.floored(id, effective, floor)
	r.state[id] = effective
	return effective
}

func (r *Resolver) resolvePercentile(id string, c Percentile) Range {
	window := r.history.RecentWindow(id, c.SampleCount)
	if len(window) < 2 {
		return r.floored(id, c.Fallback, epsilon)
	}

	sorted := append([]float64(nil), window...)
	sort.Float64s(sorted)

	effective := Range{
		Min: percentileOf(sorted, c.Lower),
		Max: percentileOf(sorted, c.Upper),
	}
	effective = clampLimits(effective, c.MinLimit, c.MaxLimit)
	return r.floored(id, effective, epsilon)
}

// percentileOf interpolates the p-th percentile of an ascending slice
// using the fractional-rank method: r = (p/100)*(n-1), linearly blending
// the two neighboring elements.
func percentileOf(sorted []float64, p float64) float64 {
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// clampLimits applies optional hard limits. When the limits invert the
// order, both bounds collapse to the nearest valid single point; the
// caller re-floors the span afterwards.
func clampLimits(r Range, minLimit, maxLimit *float64) Range {
	lo, hi := r.Min, r.Max
	if minLimit != nil && lo < *minLimit {
		lo = *minLimit
	}
	if maxLimit != nil && hi > *maxLimit {
		hi = *maxLimit
	}
	if lo > hi {
		point := (r.Min + r.Max) / 2
		if minLimit != nil && point < *minLimit {
			point = *minLimit
		}
		if maxLimit != nil && point > *maxLimit {
			point = *maxLimit
		}
		return Range{Min: point, Max: point}
	}
	return Range{Min: lo, Max: hi}
}

// ensureSpan expands a range symmetrically around its midpoint until its
// span reaches at least minSpan.
func ensureSpan(r Range, minSpan float64) Range {
	if r.Span() >= minSpan {
		return r
	}
	mid := (r.Min + r.Max) / 2
	half := minSpan / 2
	return Range{Min: mid - half, Max: mid + half}
}

// floored enforces a non-zero span. A truly collapsed range (min == max)
// is counted and logged once per metric; it usually means a
// misconfiguration rather than an error. Caller holds the lock.
func (r *Resolver) floored(id string, rng Range, minSpan float64) Range {
	if rng.Span() < epsilon {
		r.markDegenerate(id, rng)
	}
	return ensureSpan(rng, minSpan)
}

func (r *Resolver) markDegenerate(id string, rng Range) {
	r.degenerate++
	if r.logger != nil && !r.noticed[id] {
		r.noticed[id] = true
		r.logger.Printf("scale: metric %q resolved a degenerate range [%v, %v]; check its scale config", id, rng.Min, rng.Max)
	}
}
