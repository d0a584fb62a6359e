package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pulsemap/models"
	"pulsemap/services/geoloc"
)

// LocationHandler applies device positions. The browser reads the position API
// and posts the coordinate; when no coordinate is posted the handler falls
// back to the server-side provider, if one is configured.
type LocationHandler struct {
	Service *geoloc.Service
}

func NewLocationHandler(s *geoloc.Service) *LocationHandler {
	return &LocationHandler{Service: s}
}

type positionRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (req positionRequest) coord() (models.LatLng, bool) {
	if req.Lat == nil || req.Lng == nil {
		return models.LatLng{}, false
	}
	return models.LatLng{Lat: *req.Lat, Lng: *req.Lng}, true
}

func decodePosition(r *http.Request) (positionRequest, error) {
	var req positionRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(&req)
	return req, err
}

func locationStatus(err error) int {
	switch {
	case errors.Is(err, geoloc.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, geoloc.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// Capture centers the map on the position and finalizes a draggable point
// selection, like a click during point capture.
// POST /api/location/capture
func (h *LocationHandler) Capture(w http.ResponseWriter, r *http.Request) {
	req, err := decodePosition(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if at, ok := req.coord(); ok {
		h.Service.CaptureAt(at)
		writeJSON(w, http.StatusOK, at)
		return
	}

	at, err := h.Service.ForCapture(r.Context())
	if err != nil {
		jsonError(w, err.Error(), locationStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, at)
}

// LocateMe centers the map on the position and replaces the persistent
// "you are here" marker.
// POST /api/location/me
func (h *LocationHandler) LocateMe(w http.ResponseWriter, r *http.Request) {
	req, err := decodePosition(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if at, ok := req.coord(); ok {
		h.Service.LocateAt(at)
		writeJSON(w, http.StatusOK, at)
		return
	}

	at, err := h.Service.LocateMe(r.Context())
	if err != nil {
		jsonError(w, err.Error(), locationStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, at)
}
