package features

import (
	"fmt"
	"strings"

	"pulsemap/models"
)

// Requirement states how a form field applies to a layer.
type Requirement int

const (
	FieldOff Requirement = iota
	FieldOptional
	FieldRequired
	FieldFixed
)

// FieldSpec describes which property fields a layer's form recognizes. The
// table below is total over the seven layers and drives both form generation
// on the client and validation here.
type FieldSpec struct {
	Emotion       Requirement
	Purpose       Requirement
	Modality      Requirement
	InfraCategory Requirement
	SecretTag     Requirement
	Photos        Requirement
}

var fieldSpecs = map[string]FieldSpec{
	models.LayerEmotionalAnchors:       {Emotion: FieldRequired},
	models.LayerMemoryMarks:            {Photos: FieldOptional},
	models.LayerPersonalNavigators:     {Purpose: FieldRequired, Photos: FieldOptional},
	models.LayerBestPlace:              {Modality: FieldRequired},
	models.LayerPhotoAnchors:           {Photos: FieldRequired},
	models.LayerInfrastructureFeedback: {InfraCategory: FieldRequired},
	models.LayerHiddenTreasures:        {SecretTag: FieldFixed},
}

// SpecFor returns the field table entry for a layer.
func SpecFor(layerID string) (FieldSpec, bool) {
	spec, ok := fieldSpecs[layerID]
	return spec, ok
}

// Upload is one photo file as received from the form.
type Upload struct {
	Name string
	Data []byte
}

// Submission carries the feature form fields. Only the subset the layer's
// FieldSpec recognizes is consulted; the rest is ignored.
type Submission struct {
	LayerID     string
	Type        models.FeatureType
	Title       string
	Description string

	Emotion       int
	Purpose       string
	Modality      string
	InfraCategory string
	SecretTag     string
	Photos        []Upload
}

// buildProps validates the submission against the layer's field table and
// produces the typed property bag, including encoded photos.
func (sub Submission) buildProps() (models.FeatureProps, error) {
	var props models.FeatureProps

	spec, ok := fieldSpecs[sub.LayerID]
	if !ok {
		return props, fmt.Errorf("%w: unknown layer %q", ErrInvalidInput, sub.LayerID)
	}
	if strings.TrimSpace(sub.Title) == "" {
		return props, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(sub.Description) == "" {
		return props, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	if spec.Emotion != FieldOff {
		if sub.Emotion < 1 || sub.Emotion > 5 {
			if spec.Emotion == FieldRequired || sub.Emotion != 0 {
				return props, fmt.Errorf("%w: emotion must be between 1 and 5", ErrInvalidInput)
			}
		}
		props.Emotion = sub.Emotion
	}

	if spec.Purpose != FieldOff {
		purpose := strings.TrimSpace(sub.Purpose)
		if purpose == "" && spec.Purpose == FieldRequired {
			return props, fmt.Errorf("%w: route purpose is required", ErrInvalidInput)
		}
		props.Purpose = purpose
	}

	if spec.Modality != FieldOff {
		modality := strings.TrimSpace(sub.Modality)
		switch modality {
		case models.ModalitySight, models.ModalitySound, models.ModalitySilence:
			props.Modality = modality
		case "":
			if spec.Modality == FieldRequired {
				return props, fmt.Errorf("%w: sensory modality is required", ErrInvalidInput)
			}
		default:
			return props, fmt.Errorf("%w: unknown modality %q", ErrInvalidInput, modality)
		}
	}

	if spec.InfraCategory != FieldOff {
		category := strings.TrimSpace(sub.InfraCategory)
		switch category {
		case models.InfraPerfect, models.InfraNeedsAttention:
			props.InfraCategory = category
		case "":
			if spec.InfraCategory == FieldRequired {
				return props, fmt.Errorf("%w: category is required", ErrInvalidInput)
			}
		default:
			return props, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
		}
	}

	if spec.SecretTag == FieldFixed {
		// Read-only field; the stored value never varies.
		props.SecretTag = models.SecretTagValue
	}

	if spec.Photos != FieldOff {
		photos, err := encodePhotos(sub.Photos)
		if err != nil {
			return props, err
		}
		if len(photos) == 0 && spec.Photos == FieldRequired {
			return props, fmt.Errorf("%w: at least one photo is required", ErrInvalidInput)
		}
		props.Photos = photos
	}

	return props, nil
}
