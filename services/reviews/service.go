// Package reviews appends ratings/comments to features and bookmarks features
// onto user profiles. Both operations are silent no-ops without an active
// session: the UI disables the controls, so a missing session here is not an
// error worth surfacing.
package reviews

import (
	"log/slog"
	"time"

	"pulsemap/models"
	"pulsemap/services/accounts"
	"pulsemap/services/features"
)

// Service wires review and save actions to the account and feature stores.
type Service struct {
	accounts *accounts.Service
	features *features.Service
}

// NewService creates the review/save subsystem.
func NewService(accountsSvc *accounts.Service, featuresSvc *features.Service) *Service {
	return &Service{accounts: accountsSvc, features: featuresSvc}
}

// Add appends a review carrying the acting user's identity and the current
// time, persists the feature collection, and rerenders the feature. Without a
// session or a resolvable feature it does nothing.
func (s *Service) Add(featureID string, rating int, comment string) {
	author := s.accounts.CurrentUser()
	if author == nil {
		return
	}
	if s.features.ByID(featureID) == nil {
		return
	}

	review := models.Review{
		Rating:      rating,
		Comment:     comment,
		AuthorID:    author.ID,
		AuthorEmail: author.Email,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.features.AppendReview(featureID, review); err != nil {
		slog.Warn("reviews.append_failed", "feature", featureID, "error", err)
	}
}

// Save bookmarks the feature on the acting user's profile. Saving the same
// feature twice leaves a single entry. Without a session it does nothing.
func (s *Service) Save(featureID string) {
	user := s.accounts.CurrentUser()
	if user == nil {
		return
	}
	if err := s.accounts.SaveToProfile(user.ID, featureID); err != nil {
		slog.Warn("reviews.save_failed", "feature", featureID, "error", err)
	}
}

// Saved returns the acting user's bookmarked features in save order, skipping
// ids that no longer resolve. Nil without a session.
func (s *Service) Saved() []*models.Feature {
	user := s.accounts.CurrentUser()
	if user == nil {
		return nil
	}
	ids := s.accounts.SavedIDs(user.ID)
	out := make([]*models.Feature, 0, len(ids))
	for _, id := range ids {
		if f := s.features.ByID(id); f != nil {
			out = append(out, f)
		}
	}
	return out
}
