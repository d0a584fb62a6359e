// Package mapview models the map-interaction boundary: named overlay groups
// (one per layer), a transient preview layer for in-progress drawing, and a
// separate current-location layer. The actual tile rendering happens in the
// client; this is the server-side source of truth the client mirrors.
package mapview

import (
	"sync"

	"pulsemap/models"
)

// OverlayKind distinguishes marker overlays from path overlays.
type OverlayKind string

const (
	KindMarker OverlayKind = "marker"
	KindPath   OverlayKind = "path"
)

// Icon is the divIcon-style glyph/color pair rendered for a marker.
type Icon struct {
	Glyph string `json:"glyph"`
	Color string `json:"color"`
}

// PathStyle is the stroke styling applied to a path overlay.
type PathStyle struct {
	Color   string  `json:"color"`
	Weight  int     `json:"weight"`
	Opacity float64 `json:"opacity"`
}

// Overlay is a single drawable element inside an overlay group.
type Overlay struct {
	ID        string          `json:"id"`
	Kind      OverlayKind     `json:"kind"`
	At        models.LatLng   `json:"at,omitempty"`
	Points    []models.LatLng `json:"points,omitempty"`
	Icon      *Icon           `json:"icon,omitempty"`
	Style     *PathStyle      `json:"style,omitempty"`
	Popup     string          `json:"popup,omitempty"`
	Draggable bool            `json:"draggable,omitempty"`
}

// LocationMarker is the persistent "you are here" indicator.
type LocationMarker struct {
	At        models.LatLng `json:"at"`
	Label     string        `json:"label"`
	PopupOpen bool          `json:"popupOpen"`
	HaloColor string        `json:"haloColor"`
	DotColor  string        `json:"dotColor"`
}

type group struct {
	visible  bool
	overlays map[string]*Overlay
	order    []string
}

// Canvas holds the full overlay state for one map instance.
type Canvas struct {
	mu sync.RWMutex

	center models.LatLng
	zoom   int

	doubleClickZoom bool

	groups     map[string]*group
	groupOrder []string

	tempMarker *Overlay
	tempPath   *Overlay

	location *LocationMarker
}

// NewCanvas creates a canvas with one visible overlay group per layer, in
// catalog order.
func NewCanvas(layers []models.Layer, center models.LatLng, zoom int) *Canvas {
	c := &Canvas{
		center:          center,
		zoom:            zoom,
		doubleClickZoom: true,
		groups:          make(map[string]*group, len(layers)),
	}
	for _, l := range layers {
		c.groups[l.ID] = &group{visible: true, overlays: map[string]*Overlay{}}
		c.groupOrder = append(c.groupOrder, l.ID)
	}
	return c
}

// SetView recenters the map.
func (c *Canvas) SetView(at models.LatLng, zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center = at
	c.zoom = zoom
}

// View returns the current center and zoom.
func (c *Canvas) View() (models.LatLng, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.center, c.zoom
}

// SetDoubleClickZoom toggles the double-click zoom gesture. Route capture
// suspends it so the finishing double-click does not zoom the map.
func (c *Canvas) SetDoubleClickZoom(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doubleClickZoom = enabled
}

// DoubleClickZoom reports whether the gesture is currently enabled.
func (c *Canvas) DoubleClickZoom() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doubleClickZoom
}

// SetGroupVisible shows or hides a layer's overlay group. Unknown ids are
// ignored.
func (c *Canvas) SetGroupVisible(layerID string, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.groups[layerID]; ok {
		g.visible = visible
	}
}

// GroupVisible reports the visibility of a layer's overlay group.
func (c *Canvas) GroupVisible(layerID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.groups[layerID]
	return ok && g.visible
}

// AddOverlay places an overlay into the named group. Unknown groups are
// silently ignored.
func (c *Canvas) AddOverlay(layerID string, o *Overlay) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[layerID]
	if !ok {
		return
	}
	if _, exists := g.overlays[o.ID]; !exists {
		g.order = append(g.order, o.ID)
	}
	g.overlays[o.ID] = o
}

// RemoveOverlay deletes the overlay with the given id from whichever group
// holds it. Reports whether anything was removed.
func (c *Canvas) RemoveOverlay(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := false
	for _, g := range c.groups {
		if _, ok := g.overlays[id]; !ok {
			continue
		}
		delete(g.overlays, id)
		for i, oid := range g.order {
			if oid == id {
				g.order = append(g.order[:i], g.order[i+1:]...)
				break
			}
		}
		removed = true
	}
	return removed
}

// FindOverlay returns the overlay with the given id and its group, if placed.
func (c *Canvas) FindOverlay(id string) (*Overlay, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, layerID := range c.groupOrder {
		if o, ok := c.groups[layerID].overlays[id]; ok {
			return o, layerID, true
		}
	}
	return nil, "", false
}

// CountOverlays returns how many overlays across all groups carry the id.
func (c *Canvas) CountOverlays(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, g := range c.groups {
		if _, ok := g.overlays[id]; ok {
			n++
		}
	}
	return n
}

// SetTempMarker replaces the preview marker.
func (c *Canvas) SetTempMarker(at models.LatLng, draggable bool) *Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tempMarker = &Overlay{ID: "temp-marker", Kind: KindMarker, At: at, Draggable: draggable}
	return c.tempMarker
}

// SetTempPath replaces the preview path with the given vertices.
func (c *Canvas) SetTempPath(points []models.LatLng, style PathStyle) *Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	pts := make([]models.LatLng, len(points))
	copy(pts, points)
	c.tempPath = &Overlay{ID: "temp-path", Kind: KindPath, Points: pts, Style: &style}
	return c.tempPath
}

// TempMarker returns the current preview marker, if any.
func (c *Canvas) TempMarker() *Overlay {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tempMarker
}

// TempPath returns the current preview path, if any.
func (c *Canvas) TempPath() *Overlay {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tempPath
}

// ClearTemp removes both preview overlays.
func (c *Canvas) ClearTemp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tempMarker = nil
	c.tempPath = nil
}

// SetCurrentLocation replaces the persistent "you are here" marker.
func (c *Canvas) SetCurrentLocation(at models.LatLng) *LocationMarker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = &LocationMarker{
		At:        at,
		Label:     "You are here",
		PopupOpen: true,
		HaloColor: "#3b82f6",
		DotColor:  "#2563eb",
	}
	return c.location
}

// CurrentLocation returns the location marker, if one was placed.
func (c *Canvas) CurrentLocation() *LocationMarker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.location
}

// GroupSnapshot is the serializable state of one overlay group.
type GroupSnapshot struct {
	LayerID  string    `json:"layerId"`
	Visible  bool      `json:"visible"`
	Overlays []Overlay `json:"overlays"`
}

// Snapshot is the full serializable canvas state handed to the client.
type Snapshot struct {
	Center          models.LatLng   `json:"center"`
	Zoom            int             `json:"zoom"`
	DoubleClickZoom bool            `json:"doubleClickZoom"`
	Groups          []GroupSnapshot `json:"groups"`
	TempMarker      *Overlay        `json:"tempMarker,omitempty"`
	TempPath        *Overlay        `json:"tempPath,omitempty"`
	Location        *LocationMarker `json:"location,omitempty"`
}

// Snapshot captures the canvas in group catalog order, overlays in placement
// order.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Center:          c.center,
		Zoom:            c.zoom,
		DoubleClickZoom: c.doubleClickZoom,
		TempMarker:      c.tempMarker,
		TempPath:        c.tempPath,
		Location:        c.location,
	}
	for _, layerID := range c.groupOrder {
		g := c.groups[layerID]
		gs := GroupSnapshot{LayerID: layerID, Visible: g.visible, Overlays: make([]Overlay, 0, len(g.order))}
		for _, id := range g.order {
			gs.Overlays = append(gs.Overlays, *g.overlays[id])
		}
		snap.Groups = append(snap.Groups, gs)
	}
	return snap
}
