// Package catalog holds the authoritative mapping from metric id to its
// static definition. The catalog is the single owner of definitions; all
// other components look metrics up here by id.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tinytelemetry/perfhud/internal/model"
)

// ErrDuplicateID is returned when a metric id is registered twice.
var ErrDuplicateID = errors.New("catalog: duplicate metric id")

// Catalog is a registry of metric definitions keyed by id. Registration
// order is preserved for display layouts. The tick loop is the only writer;
// read surfaces (HTTP API, TUI) may query from their own goroutines.
type Catalog struct {
	mu   sync.RWMutex
	byID map[string]int
	defs []model.MetricDefinition
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{byID: make(map[string]int)}
}

// Register inserts a definition. It fails on an invalid definition or a
// duplicate id, leaving the catalog unchanged.
func (c *Catalog) Register(def model.MetricDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("catalog: register: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[def.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, def.ID)
	}
	c.byID[def.ID] = len(c.defs)
	c.defs = append(c.defs, def)
	return nil
}

// Lookup returns the definition for id, if registered.
func (c *Catalog) Lookup(id string) (model.MetricDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byID[id]
	if !ok {
		return model.MetricDefinition{}, false
	}
	return c.defs[idx], true
}

// All returns a snapshot of every definition in registration order.
func (c *Catalog) All() []model.MetricDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.MetricDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}
