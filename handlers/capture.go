package handlers

import (
	"encoding/json"
	"net/http"

	"pulsemap/models"
	"pulsemap/services/capture"
)

// CaptureHandler translates map interaction events into drawing state machine
// transitions.
type CaptureHandler struct {
	Machine  *capture.Machine
	Registry layerRegistry
}

func NewCaptureHandler(m *capture.Machine, r layerRegistry) *CaptureHandler {
	return &CaptureHandler{Machine: m, Registry: r}
}

type coordRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Start begins a point or route capture. Layers that mandate a draw type
// override the requested one (the rule table lives in the registry).
// POST /api/capture/start
func (h *CaptureHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    string `json:"type"`
		LayerID string `json:"layerId"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ftype := models.FeatureType(req.Type)
	if ftype != models.FeaturePoint && ftype != models.FeatureRoute {
		jsonError(w, "type must be point or route", http.StatusBadRequest)
		return
	}
	if !models.KnownLayer(req.LayerID) {
		jsonError(w, "unknown layer", http.StatusBadRequest)
		return
	}
	if forced, ok := h.Registry.ForcedDrawType(req.LayerID); ok {
		ftype = forced
	}

	h.Machine.Start(ftype, req.LayerID)
	writeJSON(w, http.StatusOK, map[string]string{"state": string(h.Machine.State()), "type": string(ftype)})
}

// Click feeds a map click coordinate into the machine.
// POST /api/capture/click
func (h *CaptureHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req coordRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.Machine.Click(models.LatLng{Lat: req.Lat, Lng: req.Lng})
	h.writeState(w)
}

// DoubleClick attempts to finish a route capture.
// POST /api/capture/dblclick
func (h *CaptureHandler) DoubleClick(w http.ResponseWriter, r *http.Request) {
	h.Machine.DoubleClick()
	h.writeState(w)
}

// DragEnd applies a preview-marker drag to the selected point.
// POST /api/capture/dragend
func (h *CaptureHandler) DragEnd(w http.ResponseWriter, r *http.Request) {
	var req coordRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.Machine.DragEnd(models.LatLng{Lat: req.Lat, Lng: req.Lng})
	h.writeState(w)
}

// Clear discards the selection and any capture in progress.
// POST /api/capture/clear
func (h *CaptureHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.Machine.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// Selection reports the machine state and finalized geometry, if any.
// GET /api/capture/selection
func (h *CaptureHandler) Selection(w http.ResponseWriter, r *http.Request) {
	h.writeState(w)
}

func (h *CaptureHandler) writeState(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":    h.Machine.State(),
		"points":   h.Machine.Points(),
		"selected": h.Machine.Selected(),
	})
}
