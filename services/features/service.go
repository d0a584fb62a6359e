// Package features owns the placed-feature collection: creation from a drawn
// geometry plus form fields, persistence, and rendering onto the map canvas.
// Features are append-only; reviews are the only mutation after creation.
package features

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pulsemap/internal/database"
	"pulsemap/internal/mapview"
	"pulsemap/models"
	"pulsemap/services/accounts"
	"pulsemap/services/capture"
)

var (
	ErrNotAuthenticated   = errors.New("sign in to add features")
	ErrNoGeometrySelected = errors.New("select a geometry on the map first")
	ErrInvalidInput       = errors.New("invalid feature form")
	ErrUnknownFeature     = errors.New("unknown feature")
)

// Service coordinates feature submission, storage and rendering.
type Service struct {
	store    *database.Store
	canvas   *mapview.Canvas
	accounts *accounts.Service
	capture  *capture.Machine

	mu       sync.Mutex
	features []*models.Feature
}

// NewService loads the persisted features and renders them all.
func NewService(store *database.Store, canvas *mapview.Canvas, accountsSvc *accounts.Service, captureSvc *capture.Machine) (*Service, error) {
	feats, err := store.LoadFeatures()
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	s := &Service{
		store:    store,
		canvas:   canvas,
		accounts: accountsSvc,
		capture:  captureSvc,
		features: feats,
	}
	for _, f := range feats {
		s.render(f)
	}
	return s, nil
}

// Submit creates a feature from the form and the currently selected geometry.
// It requires an active session and a selection whose type matches the form's
// declared type; on success the feature is persisted, rendered, and the
// drawing selection cleared.
func (s *Service) Submit(sub Submission) (*models.Feature, error) {
	user := s.accounts.CurrentUser()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	geom := s.capture.Selected()
	if geom == nil || geom.Type != sub.Type {
		return nil, ErrNoGeometrySelected
	}

	props, err := sub.buildProps()
	if err != nil {
		return nil, err
	}

	feature := &models.Feature{
		ID:          uuid.NewString(),
		LayerID:     sub.LayerID,
		Type:        sub.Type,
		Geometry:    *geom,
		Title:       sub.Title,
		Description: sub.Description,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   user.ID,
		Props:       props,
		Reviews:     []models.Review{},
	}

	s.mu.Lock()
	s.features = append(s.features, feature)
	if err := s.store.SaveFeatures(s.features); err != nil {
		s.features = s.features[:len(s.features)-1]
		s.mu.Unlock()
		return nil, fmt.Errorf("persist features: %w", err)
	}
	s.render(feature)
	s.mu.Unlock()

	s.capture.Clear()
	slog.Info("features.created", "id", feature.ID, "layer", feature.LayerID, "type", feature.Type)
	return feature.Clone(), nil
}

// List returns all features in creation order. Entries are clones; review
// appends keep mutating the stored features after the lock is released.
func (s *Service) List() []*models.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Feature, 0, len(s.features))
	for _, f := range s.features {
		out = append(out, f.Clone())
	}
	return out
}

// ByID resolves a feature id to a clone, returning nil when absent.
func (s *Service) ByID(id string) *models.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.find(id); f != nil {
		return f.Clone()
	}
	return nil
}

func (s *Service) find(id string) *models.Feature {
	for _, f := range s.features {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// AppendReview adds a review to the feature, persists the collection, and
// rerenders the feature so its popup reflects the new review.
func (s *Service) AppendReview(featureID string, review models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feature := s.find(featureID)
	if feature == nil {
		return ErrUnknownFeature
	}
	feature.Reviews = append(feature.Reviews, review)
	if err := s.store.SaveFeatures(s.features); err != nil {
		return fmt.Errorf("persist features: %w", err)
	}
	s.rerender(featureID)
	return nil
}

// Rerender drops the feature's existing overlay from whichever group holds it
// and renders it again from current data.
func (s *Service) Rerender(featureID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rerender(featureID)
}

func (s *Service) rerender(featureID string) {
	s.canvas.RemoveOverlay(featureID)
	if feature := s.find(featureID); feature != nil {
		s.render(feature)
	}
}
