package models

import (
	"strconv"
	"time"
)

// NoReviewsSentinel is rendered in place of an average rating when a feature
// has no reviews yet.
const NoReviewsSentinel = "no reviews"

// Review is a single rating/comment entry appended to a feature. Reviews are
// append-only; nothing edits or removes them.
type Review struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	AuthorID    string    `json:"authorId"`
	AuthorEmail string    `json:"authorEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FeatureProps is the layer-dependent property bag. Which fields are required
// or even recognized is driven by the per-layer field table in
// services/features; unused fields stay at their zero value.
type FeatureProps struct {
	Emotion       int      `json:"emotion,omitempty"`
	Purpose       string   `json:"purpose,omitempty"`
	Modality      string   `json:"modality,omitempty"`
	InfraCategory string   `json:"infraCategory,omitempty"`
	SecretTag     string   `json:"secretTag,omitempty"`
	Photos        []string `json:"photos,omitempty"`
}

// Feature is a user-placed map annotation. Once created it is immutable apart
// from its Reviews slice; there is no edit or delete path.
type Feature struct {
	ID          string       `json:"id"`
	LayerID     string       `json:"layerId"`
	Type        FeatureType  `json:"type"`
	Geometry    Geometry     `json:"geometry"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	CreatedBy   string       `json:"createdBy"`
	Props       FeatureProps `json:"props"`
	Reviews     []Review     `json:"reviews"`
}

// Clone returns a deep copy. Services hand out clones so callers can encode
// them without holding the service lock while reviews keep being appended.
func (f *Feature) Clone() *Feature {
	out := *f
	out.Geometry = f.Geometry.Clone()
	out.Reviews = make([]Review, len(f.Reviews))
	copy(out.Reviews, f.Reviews)
	if f.Props.Photos != nil {
		out.Props.Photos = make([]string, len(f.Props.Photos))
		copy(out.Props.Photos, f.Props.Photos)
	}
	return &out
}

// AverageRating returns the arithmetic mean of review ratings formatted to one
// decimal place, or the no-reviews sentinel for an empty list.
func (f *Feature) AverageRating() string {
	if len(f.Reviews) == 0 {
		return NoReviewsSentinel
	}
	sum := 0
	for _, r := range f.Reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(f.Reviews))
	return strconv.FormatFloat(avg, 'f', 1, 64)
}
