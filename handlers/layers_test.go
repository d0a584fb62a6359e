package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"pulsemap/handlers"
	"pulsemap/internal/database"
	"pulsemap/internal/mapview"
	"pulsemap/models"
	"pulsemap/services/layers"
)

func newLayersRouter(t *testing.T) *mux.Router {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	canvas := mapview.NewCanvas(models.Layers, models.LatLng{Lat: 55.751244, Lng: 37.618423}, 12)
	registry, err := layers.NewRegistry(db.Store, canvas)
	require.NoError(t, err)

	h := handlers.NewLayersHandler(registry)
	r := mux.NewRouter()
	r.HandleFunc("/api/layers", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/layers/{layerID}/toggle", h.Toggle).Methods(http.MethodPost)
	r.HandleFunc("/api/templates", h.ListTemplates).Methods(http.MethodGet)
	r.HandleFunc("/api/templates", h.SaveTemplate).Methods(http.MethodPost)
	r.HandleFunc("/api/templates/apply", h.ApplyTemplate).Methods(http.MethodPost)
	return r
}

func TestListLayersInDisplayOrder(t *testing.T) {
	r := newLayersRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/layers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []handlers.LayerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 7)
	require.Equal(t, models.LayerEmotionalAnchors, got[0].ID)
	for _, l := range got {
		require.Truef(t, l.Active, "layer %s should start active", l.ID)
	}

	// Routes-only layer advertises its forced draw type.
	for _, l := range got {
		if l.ID == models.LayerPersonalNavigators {
			require.Equal(t, string(models.FeatureRoute), l.ForcedType)
		} else {
			require.Empty(t, l.ForcedType)
		}
	}
}

func TestTogglePathVariable(t *testing.T) {
	r := newLayersRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/layers/memory_marks/toggle",
		strings.NewReader(`{"on":false}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/layers", nil))
	var got []handlers.LayerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	for _, l := range got {
		if l.ID == models.LayerMemoryMarks {
			require.False(t, l.Active)
		}
	}
}

func TestSaveTemplateValidation(t *testing.T) {
	r := newLayersRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/templates",
		strings.NewReader(`{"name":"   "}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/templates",
		strings.NewReader(`{"name":"My weekend"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	require.Contains(t, rec.Body.String(), "My weekend")
}

func TestApplyUnknownTemplateIsNoOp(t *testing.T) {
	r := newLayersRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/templates/apply",
		strings.NewReader(`{"namespace":"base","name":"does not exist"}`)))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/layers", nil))
	var got []handlers.LayerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	for _, l := range got {
		require.Truef(t, l.Active, "layer %s should be untouched", l.ID)
	}
}
