// Package geoloc wraps a device position source. Position requests are
// single-shot and uncancellable at the device end, so each request carries a
// generation token: a result arriving after a newer request started is
// detected and discarded instead of silently overwriting newer state.
package geoloc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"pulsemap/internal/mapview"
	"pulsemap/models"
	"pulsemap/services/capture"
)

var (
	ErrUnavailable = errors.New("geolocation is not available")
	ErrFailed      = errors.New("could not determine your location")
	ErrSuperseded  = errors.New("location request superseded")
)

const (
	captureZoom = 15
	locateZoom  = 16

	locateTimeout = 10 * time.Second
)

// Options tune a single position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Provider is the device position source.
type Provider interface {
	Current(ctx context.Context, opts Options) (models.LatLng, error)
}

// Service recenters the map from device positions, either feeding the drawing
// selection or placing the persistent "you are here" marker.
type Service struct {
	canvas   *mapview.Canvas
	capture  *capture.Machine
	provider Provider

	generation atomic.Uint64
}

// NewService creates the helper. A nil provider means the device has no
// position capability; requests then fail with ErrUnavailable.
func NewService(canvas *mapview.Canvas, captureSvc *capture.Machine, provider Provider) *Service {
	return &Service{canvas: canvas, capture: captureSvc, provider: provider}
}

// ForCapture requests the current position and, on success, recenters the map
// and finalizes a draggable point selection exactly as a map click during
// point capture would.
func (s *Service) ForCapture(ctx context.Context) (models.LatLng, error) {
	if s.provider == nil {
		return models.LatLng{}, ErrUnavailable
	}
	gen := s.generation.Add(1)

	at, err := s.provider.Current(ctx, Options{})
	if err != nil {
		return models.LatLng{}, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if s.generation.Load() != gen {
		slog.Debug("geoloc.stale_result_discarded", "generation", gen)
		return models.LatLng{}, ErrSuperseded
	}

	s.CaptureAt(at)
	return at, nil
}

// CaptureAt applies a known position (e.g. reported by the client) as a point
// selection.
func (s *Service) CaptureAt(at models.LatLng) {
	s.canvas.SetView(at, captureZoom)
	s.capture.SelectPoint(at)
}

// LocateMe requests a high-accuracy position with a 10 second budget and, on
// success, recenters the map and replaces the persistent location marker.
// Independent of drawing state.
func (s *Service) LocateMe(ctx context.Context) (models.LatLng, error) {
	if s.provider == nil {
		return models.LatLng{}, ErrUnavailable
	}
	gen := s.generation.Add(1)

	ctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	at, err := s.provider.Current(ctx, Options{HighAccuracy: true, Timeout: locateTimeout})
	if err != nil {
		return models.LatLng{}, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if s.generation.Load() != gen {
		slog.Debug("geoloc.stale_result_discarded", "generation", gen)
		return models.LatLng{}, ErrSuperseded
	}

	s.LocateAt(at)
	return at, nil
}

// LocateAt applies a known position as the "you are here" marker, replacing
// any prior one.
func (s *Service) LocateAt(at models.LatLng) {
	s.canvas.SetView(at, locateZoom)
	s.canvas.SetCurrentLocation(at)
}
