package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pulsemap/models"
	"pulsemap/services/features"
	"pulsemap/services/reviews"
)

// maxFeatureFormBytes bounds a single submission including photo uploads.
const maxFeatureFormBytes = 32 << 20

type featureService interface {
	Submit(sub features.Submission) (*models.Feature, error)
	List() []*models.Feature
	ByID(id string) *models.Feature
}

var _ featureService = (*features.Service)(nil)

type reviewService interface {
	Add(featureID string, rating int, comment string)
	Save(featureID string)
	Saved() []*models.Feature
}

var _ reviewService = (*reviews.Service)(nil)

// FeaturesHandler exposes feature submission, listing, reviews and saving.
type FeaturesHandler struct {
	Features featureService
	Reviews  reviewService
}

func NewFeaturesHandler(f featureService, r reviewService) *FeaturesHandler {
	return &FeaturesHandler{Features: f, Reviews: r}
}

// Create submits the feature form. The body is multipart so photo uploads can
// ride along; every other field is a plain form value.
// POST /api/features
func (h *FeaturesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFeatureFormBytes); err != nil {
		jsonError(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	emotion := 0
	if raw := r.FormValue("emotion"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(w, "emotion must be a number", http.StatusBadRequest)
			return
		}
		emotion = parsed
	}

	sub := features.Submission{
		LayerID:       r.FormValue("layerId"),
		Type:          models.FeatureType(r.FormValue("type")),
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Emotion:       emotion,
		Purpose:       r.FormValue("purpose"),
		Modality:      r.FormValue("modality"),
		InfraCategory: r.FormValue("infraCategory"),
		SecretTag:     r.FormValue("secretTag"),
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["photos"] {
			file, err := header.Open()
			if err != nil {
				jsonError(w, "read photo: "+err.Error(), http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				jsonError(w, "read photo: "+err.Error(), http.StatusBadRequest)
				return
			}
			sub.Photos = append(sub.Photos, features.Upload{Name: header.Filename, Data: data})
		}
	}

	feature, err := h.Features.Submit(sub)
	if err != nil {
		switch {
		case errors.Is(err, features.ErrNotAuthenticated):
			jsonError(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, features.ErrNoGeometrySelected):
			jsonError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, features.ErrInvalidInput):
			jsonError(w, err.Error(), http.StatusBadRequest)
		default:
			jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, feature)
}

// List returns every placed feature in creation order.
// GET /api/features
func (h *FeaturesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Features.List())
}

// Get returns one feature.
// GET /api/features/{featureID}
func (h *FeaturesHandler) Get(w http.ResponseWriter, r *http.Request) {
	feature := h.Features.ByID(mux.Vars(r)["featureID"])
	if feature == nil {
		jsonError(w, "feature not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, feature)
}

// AddReview appends a review. Without a session this is a silent no-op (the
// client disables the form), so the response is 204 either way.
// POST /api/features/{featureID}/reviews
func (h *FeaturesHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		jsonError(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	h.Reviews.Add(mux.Vars(r)["featureID"], req.Rating, req.Comment)
	w.WriteHeader(http.StatusNoContent)
}

// Save bookmarks the feature on the signed-in user's profile; idempotent and,
// like reviews, a silent no-op without a session.
// POST /api/features/{featureID}/save
func (h *FeaturesHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.Reviews.Save(mux.Vars(r)["featureID"])
	w.WriteHeader(http.StatusNoContent)
}

// SavedItem is one entry in the saved-items view.
type SavedItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	LayerName string `json:"layerName"`
}

// Saved lists the signed-in user's bookmarked features.
// GET /api/saved
func (h *FeaturesHandler) Saved(w http.ResponseWriter, r *http.Request) {
	saved := h.Reviews.Saved()
	out := make([]SavedItem, 0, len(saved))
	for _, f := range saved {
		out = append(out, SavedItem{ID: f.ID, Title: f.Title, LayerName: models.LayerName(f.LayerID)})
	}
	writeJSON(w, http.StatusOK, out)
}
