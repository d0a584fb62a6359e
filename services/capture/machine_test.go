package capture_test

import (
	"testing"

	"pulsemap/internal/mapview"
	"pulsemap/models"
	"pulsemap/services/capture"
)

func newTestMachine() (*capture.Machine, *mapview.Canvas) {
	canvas := mapview.NewCanvas(models.Layers, models.LatLng{Lat: 55.751244, Lng: 37.618423}, 12)
	return capture.NewMachine(canvas), canvas
}

func TestPointClickFinalizesImmediately(t *testing.T) {
	m, canvas := newTestMachine()

	m.Start(models.FeaturePoint, models.LayerEmotionalAnchors)
	if m.State() != capture.CapturingPoint {
		t.Fatalf("expected capturing-point, got %s", m.State())
	}

	m.Click(models.LatLng{Lat: 55.0, Lng: 37.0})

	selected := m.Selected()
	if selected == nil || selected.Type != models.FeaturePoint {
		t.Fatal("expected a finalized point selection")
	}
	at := models.FromPoint(selected.Point)
	if at.Lat != 55.0 || at.Lng != 37.0 {
		t.Fatalf("unexpected selection coords: %+v", at)
	}

	marker := canvas.TempMarker()
	if marker == nil || !marker.Draggable {
		t.Fatal("expected a draggable preview marker")
	}
}

func TestDragEndMovesSelectedPoint(t *testing.T) {
	m, _ := newTestMachine()

	m.Start(models.FeaturePoint, models.LayerEmotionalAnchors)
	m.Click(models.LatLng{Lat: 55.0, Lng: 37.0})
	m.DragEnd(models.LatLng{Lat: 55.5, Lng: 37.5})

	at := models.FromPoint(m.Selected().Point)
	if at.Lat != 55.5 || at.Lng != 37.5 {
		t.Fatalf("expected drag to move selection, got %+v", at)
	}
}

func TestRouteCaptureSuspendsDoubleClickZoom(t *testing.T) {
	m, canvas := newTestMachine()

	m.Start(models.FeatureRoute, models.LayerPersonalNavigators)
	if canvas.DoubleClickZoom() {
		t.Fatal("expected double-click zoom to be suspended during route capture")
	}

	m.Clear()
	if !canvas.DoubleClickZoom() {
		t.Fatal("expected double-click zoom restored after clear")
	}
}

func TestSwitchingRouteToPointKeepsZoomSuspended(t *testing.T) {
	m, canvas := newTestMachine()

	m.Start(models.FeatureRoute, models.LayerPersonalNavigators)
	m.Start(models.FeaturePoint, models.LayerEmotionalAnchors)

	if canvas.DoubleClickZoom() {
		t.Fatal("expected the gesture to stay suspended after switching to point capture")
	}

	m.Clear()
	if !canvas.DoubleClickZoom() {
		t.Fatal("expected clear to restore the gesture")
	}
}

func TestRouteNeedsTwoPointsToFinish(t *testing.T) {
	m, _ := newTestMachine()

	m.Start(models.FeatureRoute, models.LayerPersonalNavigators)
	m.Click(models.LatLng{Lat: 55.0, Lng: 37.0})

	m.DoubleClick()
	if m.State() != capture.CapturingRoute {
		t.Fatalf("expected machine to keep capturing, got %s", m.State())
	}
	if pts := m.Points(); len(pts) != 1 {
		t.Fatalf("expected the single recorded point retained, got %d", len(pts))
	}
	if m.Selected() != nil {
		t.Fatal("expected no selection yet")
	}
}

func TestRouteFinalizesOnDoubleClick(t *testing.T) {
	m, canvas := newTestMachine()

	m.Start(models.FeatureRoute, models.LayerPersonalNavigators)
	m.Click(models.LatLng{Lat: 55.0, Lng: 37.0})
	m.Click(models.LatLng{Lat: 55.1, Lng: 37.1})
	m.Click(models.LatLng{Lat: 55.2, Lng: 37.2})

	if canvas.TempPath() == nil {
		t.Fatal("expected a preview path during capture")
	}

	m.DoubleClick()

	if m.State() != capture.Idle {
		t.Fatalf("expected idle after finish, got %s", m.State())
	}
	selected := m.Selected()
	if selected == nil || selected.Type != models.FeatureRoute {
		t.Fatal("expected a finalized route selection")
	}
	if len(selected.Route) != 3 {
		t.Fatalf("expected 3 route vertices, got %d", len(selected.Route))
	}
	if !canvas.DoubleClickZoom() {
		t.Fatal("expected double-click zoom re-enabled after finish")
	}
}

func TestStartCancelsPreviousCapture(t *testing.T) {
	m, canvas := newTestMachine()

	m.Start(models.FeaturePoint, models.LayerEmotionalAnchors)
	m.Click(models.LatLng{Lat: 55.0, Lng: 37.0})

	m.Start(models.FeatureRoute, models.LayerPersonalNavigators)

	if m.Selected() != nil {
		t.Fatal("expected prior selection discarded")
	}
	if canvas.TempMarker() != nil {
		t.Fatal("expected prior preview marker removed")
	}
	if m.State() != capture.CapturingRoute {
		t.Fatalf("expected capturing-route, got %s", m.State())
	}
}

func TestClickIgnoredWhenIdle(t *testing.T) {
	m, canvas := newTestMachine()

	m.Click(models.LatLng{Lat: 55.0, Lng: 37.0})
	if m.Selected() != nil || canvas.TempMarker() != nil {
		t.Fatal("expected clicks outside a capture to be ignored")
	}
}
