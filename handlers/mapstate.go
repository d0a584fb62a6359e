package handlers

import (
	"net/http"

	"pulsemap/internal/mapview"
)

// MapHandler serves the canvas state the client mirrors onto the tile map.
type MapHandler struct {
	Canvas *mapview.Canvas
}

func NewMapHandler(c *mapview.Canvas) *MapHandler {
	return &MapHandler{Canvas: c}
}

// Overlays returns the full overlay snapshot: groups in catalog order,
// overlays in placement order, plus preview and location layers.
// GET /api/map/overlays
func (h *MapHandler) Overlays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Canvas.Snapshot())
}
