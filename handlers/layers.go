package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"pulsemap/models"
	"pulsemap/services/layers"
)

type layerRegistry interface {
	Layers() []models.Layer
	Toggle(layerID string, on bool)
	IsActive(layerID string) bool
	ApplyTemplate(namespace, name string)
	SaveTemplate(name string) error
	Templates() []layers.TemplateInfo
	ForcedDrawType(layerID string) (models.FeatureType, bool)
}

var _ layerRegistry = (*layers.Registry)(nil)

// LayersHandler exposes the layer catalog, visibility toggles and templates.
type LayersHandler struct {
	Registry layerRegistry
}

func NewLayersHandler(r layerRegistry) *LayersHandler {
	return &LayersHandler{Registry: r}
}

// LayerResponse is one catalog entry with its current visibility.
type LayerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	ForcedType string `json:"forcedType,omitempty"`
}

// List returns the seven layers in display order.
// GET /api/layers
func (h *LayersHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog := h.Registry.Layers()
	out := make([]LayerResponse, 0, len(catalog))
	for _, l := range catalog {
		resp := LayerResponse{ID: l.ID, Name: l.Name, Active: h.Registry.IsActive(l.ID)}
		if forced, ok := h.Registry.ForcedDrawType(l.ID); ok {
			resp.ForcedType = string(forced)
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

// Toggle shows or hides a single layer.
// POST /api/layers/{layerID}/toggle
func (h *LayersHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.Registry.Toggle(mux.Vars(r)["layerID"], req.On)
	w.WriteHeader(http.StatusNoContent)
}

// ListTemplates returns built-in templates followed by user templates.
// GET /api/templates
func (h *LayersHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.Templates())
}

// ApplyTemplate replaces the active layer set with the named template's set.
// Unknown combinations are a silent no-op.
// POST /api/templates/apply
func (h *LayersHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Namespace string `json:"namespace"`
		Name      string `json:"name"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.Registry.ApplyTemplate(req.Namespace, req.Name)
	w.WriteHeader(http.StatusNoContent)
}

// SaveTemplate stores the current active set under a user-chosen name.
// POST /api/templates
func (h *LayersHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Registry.SaveTemplate(req.Name); err != nil {
		if errors.Is(err, layers.ErrEmptyName) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
