package layers_test

import (
	"errors"
	"path/filepath"
	"testing"

	"pulsemap/internal/database"
	"pulsemap/internal/mapview"
	"pulsemap/models"
	"pulsemap/services/layers"
)

func newTestRegistry(t *testing.T) (*layers.Registry, *mapview.Canvas) {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	canvas := mapview.NewCanvas(models.Layers, models.LatLng{Lat: 55.751244, Lng: 37.618423}, 12)
	registry, err := layers.NewRegistry(db.Store, canvas)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return registry, canvas
}

func TestAllLayersStartActive(t *testing.T) {
	registry, canvas := newTestRegistry(t)

	if got := len(registry.Active()); got != len(models.Layers) {
		t.Fatalf("expected %d active layers, got %d", len(models.Layers), got)
	}
	for _, l := range models.Layers {
		if !canvas.GroupVisible(l.ID) {
			t.Fatalf("expected group %s to start visible", l.ID)
		}
	}
}

func TestToggleHidesOverlayGroup(t *testing.T) {
	registry, canvas := newTestRegistry(t)

	registry.Toggle(models.LayerMemoryMarks, false)
	if registry.IsActive(models.LayerMemoryMarks) {
		t.Fatal("expected layer to be inactive")
	}
	if canvas.GroupVisible(models.LayerMemoryMarks) {
		t.Fatal("expected overlay group to be hidden")
	}
}

func TestApplyTemplateReplacesActiveSetWholesale(t *testing.T) {
	registry, canvas := newTestRegistry(t)

	// All layers are on; the template names a single layer, so everything
	// else must be deactivated, not left on.
	registry.ApplyTemplate(layers.NamespaceBase, "Practical Navigation")

	active := registry.Active()
	if len(active) != 1 || active[0] != models.LayerPersonalNavigators {
		t.Fatalf("expected exactly personal_navigators active, got %v", active)
	}
	if canvas.GroupVisible(models.LayerEmotionalAnchors) {
		t.Fatal("expected emotional_anchors group to be hidden")
	}
	if !canvas.GroupVisible(models.LayerPersonalNavigators) {
		t.Fatal("expected personal_navigators group to be visible")
	}
}

func TestApplyUnknownTemplateIsNoOp(t *testing.T) {
	registry, _ := newTestRegistry(t)

	registry.ApplyTemplate(layers.NamespaceUser, "does not exist")
	if got := len(registry.Active()); got != len(models.Layers) {
		t.Fatalf("expected active set unchanged, got %d layers", got)
	}
}

func TestSaveTemplateRequiresName(t *testing.T) {
	registry, _ := newTestRegistry(t)

	if err := registry.SaveTemplate("   "); !errors.Is(err, layers.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestSaveAndApplyUserTemplate(t *testing.T) {
	registry, _ := newTestRegistry(t)

	registry.Toggle(models.LayerMemoryMarks, false)
	registry.Toggle(models.LayerBestPlace, false)
	if err := registry.SaveTemplate("my view"); err != nil {
		t.Fatalf("save template returned error: %v", err)
	}

	// Drift the active set, then re-apply.
	registry.Toggle(models.LayerMemoryMarks, true)
	registry.ApplyTemplate(layers.NamespaceUser, "my view")

	if registry.IsActive(models.LayerMemoryMarks) {
		t.Fatal("expected memory_marks to be deactivated by the template")
	}
	if registry.IsActive(models.LayerBestPlace) {
		t.Fatal("expected best_place to be deactivated by the template")
	}
	if !registry.IsActive(models.LayerEmotionalAnchors) {
		t.Fatal("expected emotional_anchors to stay active")
	}
}

func TestPersonalNavigatorsForcesRouteType(t *testing.T) {
	registry, _ := newTestRegistry(t)

	forced, ok := registry.ForcedDrawType(models.LayerPersonalNavigators)
	if !ok || forced != models.FeatureRoute {
		t.Fatalf("expected forced route type, got %v %v", forced, ok)
	}
	if _, ok := registry.ForcedDrawType(models.LayerBestPlace); ok {
		t.Fatal("expected no forced type for best_place")
	}
}
