package catalog

import (
	"errors"
	"testing"

	"github.com/tinytelemetry/perfhud/internal/model"
)

func TestRegisterAndLookup(t *testing.T) {
	c := New()

	def := model.MetricDefinition{
		ID:        "frame_time_ms",
		Label:     "FT:",
		Unit:      "ms",
		Precision: 1,
		Color:     model.RGB(0.4, 0.4, 0.4),
	}
	if err := c.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := c.Lookup("frame_time_ms")
	if !ok {
		t.Fatalf("Lookup: metric not found")
	}
	if got.Label != "FT:" || got.Unit != "ms" || got.Precision != 1 {
		t.Fatalf("Lookup returned wrong definition: %+v", got)
	}

	if _, ok := c.Lookup("missing"); ok {
		t.Fatalf("Lookup found unregistered metric")
	}
}

func TestDuplicateRejected(t *testing.T) {
	c := New()

	first := model.MetricDefinition{
		ID:        "fps",
		Label:     "FPS:",
		Precision: 0,
		Color:     model.RGB(1, 1, 1),
	}
	if err := c.Register(first); err != nil {
		t.Fatalf("Register first: %v", err)
	}

	second := model.MetricDefinition{
		ID:        "fps",
		Label:     "Frames",
		Precision: 2,
		Color:     model.RGB(1, 0, 0),
	}
	err := c.Register(second)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Register duplicate: got %v, want ErrDuplicateID", err)
	}

	// The original definition must be untouched.
	got, _ := c.Lookup("fps")
	if got.Label != "FPS:" || got.Precision != 0 || got.Color != model.RGB(1, 1, 1) {
		t.Fatalf("duplicate registration mutated catalog: %+v", got)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestRegistrationOrderPreserved(t *testing.T) {
	c := New()
	ids := []string{"fps", "frame_time_ms", "goroutines", "heap_mb"}
	for _, id := range ids {
		if err := c.Register(model.MetricDefinition{ID: id}); err != nil {
			t.Fatalf("Register %q: %v", id, err)
		}
	}

	all := c.All()
	if len(all) != len(ids) {
		t.Fatalf("All returned %d defs, want %d", len(all), len(ids))
	}
	for i, id := range ids {
		if all[i].ID != id {
			t.Errorf("All[%d] = %q, want %q", i, all[i].ID, id)
		}
	}

	// Mutating the snapshot must not affect the catalog.
	all[0].ID = "mutated"
	if got, _ := c.Lookup("fps"); got.ID != "fps" {
		t.Fatalf("All snapshot aliases catalog storage")
	}
}

func TestInvalidDefinitions(t *testing.T) {
	c := New()

	cases := []model.MetricDefinition{
		{ID: ""},
		{ID: "x", Precision: -1},
		{ID: "x", Smoothing: 1.5},
	}
	for _, def := range cases {
		if err := c.Register(def); err == nil {
			t.Errorf("Register(%+v) succeeded, want error", def)
		}
	}
	if c.Len() != 0 {
		t.Fatalf("invalid registrations modified catalog")
	}
}
