// Package capture implements the interactive geometry acquisition state
// machine: a point is finalized by a single map click, a route accumulates
// vertices click by click and is finished with a double-click.
package capture

import (
	"sync"

	"pulsemap/internal/mapview"
	"pulsemap/models"
)

// State names the machine's three states.
type State string

const (
	Idle           State = "idle"
	CapturingPoint State = "capturing-point"
	CapturingRoute State = "capturing-route"
)

// previewPathStyle is the stroke used for the in-progress route preview.
var previewPathStyle = mapview.PathStyle{Color: "#0d6f8a", Weight: 4, Opacity: 1}

// Machine drives point and route capture against the map canvas. The
// finalized selection survives the machine going idle and is consumed by
// feature submission.
type Machine struct {
	canvas *mapview.Canvas

	mu       sync.Mutex
	state    State
	ftype    models.FeatureType
	layerID  string
	points   []models.LatLng
	selected *models.Geometry
}

// NewMachine creates an idle machine over the canvas.
func NewMachine(canvas *mapview.Canvas) *Machine {
	return &Machine{canvas: canvas, state: Idle}
}

// Start begins a new capture for the given type and layer. Any capture already
// in progress is implicitly cancelled: the preview overlays and the prior
// selection are dropped.
func (m *Machine) Start(ftype models.FeatureType, layerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.canvas.ClearTemp()
	m.selected = nil
	m.points = nil
	m.ftype = ftype
	m.layerID = layerID

	if ftype == models.FeatureRoute {
		m.state = CapturingRoute
		// The finishing gesture is a double-click; zooming on it would fight
		// the user.
		m.canvas.SetDoubleClickZoom(false)
	} else {
		m.state = CapturingPoint
	}
}

// Click feeds a map click into the machine. Outside a capture it is ignored.
func (m *Machine) Click(at models.LatLng) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case CapturingPoint:
		m.selectPoint(at)
	case CapturingRoute:
		m.points = append(m.points, at)
		m.canvas.SetTempPath(m.points, previewPathStyle)
	}
}

// DoubleClick finishes a route capture once at least two vertices exist.
// With fewer points it changes nothing: the machine keeps capturing and the
// recorded vertices stay as they are.
func (m *Machine) DoubleClick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != CapturingRoute || len(m.points) < 2 {
		return
	}

	geom := models.RouteGeometry(m.points)
	m.selected = &geom
	m.state = Idle
	m.canvas.SetDoubleClickZoom(true)
}

// DragEnd applies a preview-marker drag to the selected point geometry. The
// machine state is not re-entered; only the coordinate moves.
func (m *Machine) DragEnd(at models.LatLng) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil || m.selected.Type != models.FeaturePoint {
		return
	}
	if m.canvas.TempMarker() == nil {
		return
	}
	geom := models.PointGeometry(at)
	m.selected = &geom
	m.canvas.SetTempMarker(at, true)
}

// SelectPoint finalizes a draggable point selection directly, the way a click
// during point capture would. Geolocation uses this path.
func (m *Machine) SelectPoint(at models.LatLng) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectPoint(at)
}

func (m *Machine) selectPoint(at models.LatLng) {
	geom := models.PointGeometry(at)
	m.selected = &geom
	m.canvas.ClearTemp()
	m.canvas.SetTempMarker(at, true)
}

// Clear discards the selection and any in-progress vertices, removes preview
// overlays and returns to idle. Callable from any state.
func (m *Machine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.selected = nil
	m.points = nil
	m.state = Idle
	m.canvas.SetDoubleClickZoom(true)
	m.canvas.ClearTemp()
}

// Selected returns the finalized geometry, or nil when none exists.
func (m *Machine) Selected() *models.Geometry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return nil
	}
	geom := *m.selected
	return &geom
}

// State returns the current machine state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LayerID returns the layer the current or most recent capture targets.
func (m *Machine) LayerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layerID
}

// Points returns a copy of the route vertices recorded so far.
func (m *Machine) Points() []models.LatLng {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.LatLng, len(m.points))
	copy(out, m.points)
	return out
}
