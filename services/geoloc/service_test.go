package geoloc_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"pulsemap/internal/mapview"
	"pulsemap/models"
	"pulsemap/services/capture"
	"pulsemap/services/geoloc"
)

type providerFunc func(ctx context.Context, opts geoloc.Options) (models.LatLng, error)

func (f providerFunc) Current(ctx context.Context, opts geoloc.Options) (models.LatLng, error) {
	return f(ctx, opts)
}

func newCanvasAndMachine() (*mapview.Canvas, *capture.Machine) {
	canvas := mapview.NewCanvas(models.Layers, models.LatLng{Lat: 55.751244, Lng: 37.618423}, 12)
	return canvas, capture.NewMachine(canvas)
}

func TestNilProviderIsUnavailable(t *testing.T) {
	canvas, machine := newCanvasAndMachine()
	svc := geoloc.NewService(canvas, machine, nil)

	if _, err := svc.ForCapture(context.Background()); !errors.Is(err, geoloc.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := svc.LocateMe(context.Background()); !errors.Is(err, geoloc.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestProviderErrorSurfacesAsFailed(t *testing.T) {
	canvas, machine := newCanvasAndMachine()
	svc := geoloc.NewService(canvas, machine, providerFunc(func(context.Context, geoloc.Options) (models.LatLng, error) {
		return models.LatLng{}, errors.New("no fix")
	}))

	if _, err := svc.ForCapture(context.Background()); !errors.Is(err, geoloc.ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
}

func TestForCaptureFinalizesDraggableSelection(t *testing.T) {
	canvas, machine := newCanvasAndMachine()
	svc := geoloc.NewService(canvas, machine, providerFunc(func(context.Context, geoloc.Options) (models.LatLng, error) {
		return models.LatLng{Lat: 59.93, Lng: 30.33}, nil
	}))

	at, err := svc.ForCapture(context.Background())
	if err != nil {
		t.Fatalf("ForCapture returned error: %v", err)
	}
	if at.Lat != 59.93 {
		t.Fatalf("unexpected position: %+v", at)
	}

	center, zoom := canvas.View()
	if center.Lat != 59.93 || zoom != 15 {
		t.Fatalf("expected map recentered at zoom 15, got %+v zoom %d", center, zoom)
	}
	selected := machine.Selected()
	if selected == nil || selected.Type != models.FeaturePoint {
		t.Fatal("expected a finalized point selection")
	}
	marker := canvas.TempMarker()
	if marker == nil || !marker.Draggable {
		t.Fatal("expected a draggable preview marker")
	}
}

func TestLocateMeReplacesLocationMarker(t *testing.T) {
	canvas, machine := newCanvasAndMachine()
	var sawHighAccuracy atomic.Bool
	svc := geoloc.NewService(canvas, machine, providerFunc(func(_ context.Context, opts geoloc.Options) (models.LatLng, error) {
		sawHighAccuracy.Store(opts.HighAccuracy)
		return models.LatLng{Lat: 48.85, Lng: 2.35}, nil
	}))

	if _, err := svc.LocateMe(context.Background()); err != nil {
		t.Fatalf("LocateMe returned error: %v", err)
	}
	if !sawHighAccuracy.Load() {
		t.Fatal("expected a high-accuracy request")
	}

	loc := canvas.CurrentLocation()
	if loc == nil || loc.At.Lat != 48.85 || !loc.PopupOpen {
		t.Fatalf("expected an open 'you are here' marker, got %+v", loc)
	}
	if _, zoom := canvas.View(); zoom != 16 {
		t.Fatalf("expected zoom 16, got %d", zoom)
	}

	// A second locate replaces the marker rather than stacking one.
	svc2 := geoloc.NewService(canvas, machine, providerFunc(func(context.Context, geoloc.Options) (models.LatLng, error) {
		return models.LatLng{Lat: 40.4, Lng: -3.7}, nil
	}))
	if _, err := svc2.LocateMe(context.Background()); err != nil {
		t.Fatalf("second LocateMe returned error: %v", err)
	}
	if canvas.CurrentLocation().At.Lat != 40.4 {
		t.Fatal("expected the marker to be replaced")
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	canvas, machine := newCanvasAndMachine()

	var calls atomic.Int32
	release := make(chan struct{})
	svc := geoloc.NewService(canvas, machine, providerFunc(func(context.Context, geoloc.Options) (models.LatLng, error) {
		if calls.Add(1) == 1 {
			<-release
			return models.LatLng{Lat: 1, Lng: 1}, nil
		}
		return models.LatLng{Lat: 2, Lng: 2}, nil
	}))

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ForCapture(context.Background())
		firstErr <- err
	}()

	// Wait for the first request to reach the provider.
	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	// A newer request completes first.
	if _, err := svc.LocateMe(context.Background()); err != nil {
		t.Fatalf("LocateMe returned error: %v", err)
	}

	close(release)
	if err := <-firstErr; !errors.Is(err, geoloc.ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded for the stale result, got %v", err)
	}

	// The stale result must not have overwritten the newer state.
	if machine.Selected() != nil {
		t.Fatal("expected no capture selection from the stale result")
	}
	if canvas.CurrentLocation().At.Lat != 2 {
		t.Fatal("expected the newer location to win")
	}
}
