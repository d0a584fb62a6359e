package models

// Layer ids are fixed at compile time; features always belong to exactly one.
const (
	LayerEmotionalAnchors       = "emotional_anchors"
	LayerMemoryMarks            = "memory_marks"
	LayerPersonalNavigators     = "personal_navigators"
	LayerBestPlace              = "best_place"
	LayerPhotoAnchors           = "photo_anchors"
	LayerInfrastructureFeedback = "infrastructure_feedback"
	LayerHiddenTreasures        = "hidden_treasures"
)

// Layer is one of the seven thematic categories shown on the map.
type Layer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Layers is the full catalog in display order. Iteration order is display
// order everywhere (toggle list, select options).
var Layers = []Layer{
	{ID: LayerEmotionalAnchors, Name: "Emotional Anchors"},
	{ID: LayerMemoryMarks, Name: "Memory Marks"},
	{ID: LayerPersonalNavigators, Name: "Personal Navigators"},
	{ID: LayerBestPlace, Name: "Best Place"},
	{ID: LayerPhotoAnchors, Name: "Photo Anchors"},
	{ID: LayerInfrastructureFeedback, Name: "Infrastructure Feedback"},
	{ID: LayerHiddenTreasures, Name: "Hidden Treasures"},
}

// LayerName resolves a layer id to its display name, falling back to the id
// itself for unknown values.
func LayerName(id string) string {
	for _, l := range Layers {
		if l.ID == id {
			return l.Name
		}
	}
	return id
}

// KnownLayer reports whether id is one of the seven catalog layers.
func KnownLayer(id string) bool {
	for _, l := range Layers {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Sensory modality values for the best_place layer.
const (
	ModalitySight   = "sight"
	ModalitySound   = "sound"
	ModalitySilence = "silence"
)

// Infrastructure feedback categories.
const (
	InfraPerfect        = "perfect"
	InfraNeedsAttention = "needs_attention"
)

// SecretTagValue is the fixed read-only tag carried by hidden_treasures
// features.
const SecretTagValue = "Secret"
