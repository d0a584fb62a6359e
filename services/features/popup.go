package features

import (
	"html/template"
	"strconv"
	"strings"

	"pulsemap/models"
)

// popupTemplate builds the popup markup for one feature. html/template
// escapes every interpolated text value, which is what keeps user-entered
// titles, descriptions and comments from becoming markup.
var popupTemplate = template.Must(template.New("popup").Parse(`<div>
  <h3>{{.Title}}</h3>
  <div>{{.Description}}</div>
  {{if .DetailLabel}}<div><b>{{.DetailLabel}}:</b> {{.DetailValue}}</div>{{end}}
  {{range .Photos}}<img class="popup-img" src="{{.}}" alt="Photo" />{{end}}
  <hr />
  <div><b>Average rating:</b> {{.Average}}</div>
  <div>{{if .Reviews}}{{range .Reviews}}<div><b>{{.AuthorEmail}}</b> ({{.Rating}}/5): {{.Comment}}</div>{{end}}{{else}}No reviews yet{{end}}</div>
  <hr />
  <form id="review-form-{{.ID}}" class="stack">
    <label>Rating
      <select name="rating"{{if not .CanInteract}} disabled{{end}}>
        <option value="5">5</option>
        <option value="4">4</option>
        <option value="3">3</option>
        <option value="2">2</option>
        <option value="1">1</option>
      </select>
    </label>
    <textarea name="comment" placeholder="Comment"{{if not .CanInteract}} disabled{{end}}></textarea>
    <button type="submit"{{if not .CanInteract}} disabled{{end}}>Add review</button>
  </form>
  <button id="save-item-{{.ID}}" class="popup-save-btn"{{if not .CanInteract}} disabled{{end}}>Save to profile</button>
  {{if not .CanInteract}}<div class="small">Sign in to review and save places.</div>{{end}}
</div>`))

type popupData struct {
	ID          string
	Title       string
	Description string
	DetailLabel string
	DetailValue string
	Photos      []template.URL
	Average     string
	Reviews     []models.Review
	CanInteract bool
}

func modalityLabel(id string) string {
	switch id {
	case models.ModalitySight:
		return "Sight"
	case models.ModalitySound:
		return "Sound"
	case models.ModalitySilence:
		return "Silence"
	}
	return "-"
}

func infraLabel(id string) string {
	switch id {
	case models.InfraPerfect:
		return "Perfect!"
	case models.InfraNeedsAttention:
		return "Needs attention"
	}
	return "-"
}

// detailLine is the layer-specific line shown under the description.
func detailLine(f *models.Feature) (label, value string) {
	switch f.LayerID {
	case models.LayerEmotionalAnchors:
		if f.Props.Emotion == 0 {
			return "Intensity", "-"
		}
		return "Intensity", strconv.Itoa(f.Props.Emotion)
	case models.LayerPersonalNavigators:
		if f.Props.Purpose == "" {
			return "Route purpose", "-"
		}
		return "Route purpose", f.Props.Purpose
	case models.LayerBestPlace:
		return "Sensory modality", modalityLabel(f.Props.Modality)
	case models.LayerInfrastructureFeedback:
		return "Category", infraLabel(f.Props.InfraCategory)
	case models.LayerHiddenTreasures:
		if f.Props.SecretTag == "" {
			return "Tag", models.SecretTagValue
		}
		return "Tag", f.Props.SecretTag
	}
	return "", ""
}

// popupHTML renders the popup for the feature's current data. Interactivity
// follows the session active at render time; rerendering after auth or review
// changes refreshes it.
func (s *Service) popupHTML(f *models.Feature) (string, error) {
	label, value := detailLine(f)

	photos := make([]template.URL, 0, len(f.Props.Photos))
	for _, src := range f.Props.Photos {
		photos = append(photos, template.URL(src))
	}

	data := popupData{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		DetailLabel: label,
		DetailValue: value,
		Photos:      photos,
		Average:     f.AverageRating(),
		Reviews:     f.Reviews,
		CanInteract: s.accounts.CurrentUser() != nil,
	}

	var b strings.Builder
	if err := popupTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
