package features

import (
	"log/slog"

	"pulsemap/internal/mapview"
	"pulsemap/models"
)

// emotionScale is the five-step color scale for emotional anchors, indexed by
// emotion value 1..5 (dark red through orange to green).
var emotionScale = [5]string{"#7f1d1d", "#b91c1c", "#f59e0b", "#65a30d", "#15803d"}

// iconFor derives the marker glyph and color from the layer and its
// layer-specific props. The mapping is fixed; clients only display it.
func iconFor(f *models.Feature) mapview.Icon {
	glyph, color := "•", "#2f7f73"

	switch f.LayerID {
	case models.LayerEmotionalAnchors:
		value := f.Props.Emotion
		if value == 0 {
			value = 3
		}
		if value >= 3 {
			glyph = "❤"
		} else {
			glyph = "◆"
		}
		idx := value - 1
		if idx < 0 {
			idx = 0
		}
		if idx > 4 {
			idx = 4
		}
		color = emotionScale[idx]
	case models.LayerMemoryMarks:
		glyph, color = "🕰", "#7c3aed"
	case models.LayerBestPlace:
		switch f.Props.Modality {
		case models.ModalitySound:
			glyph = "🔊"
		case models.ModalitySilence:
			glyph = "🤫"
		default:
			glyph = "👁"
		}
		color = "#0d9488"
	case models.LayerPhotoAnchors:
		glyph, color = "📷", "#0369a1"
	case models.LayerInfrastructureFeedback:
		if f.Props.InfraCategory == models.InfraPerfect {
			glyph, color = "✅", "#15803d"
		} else {
			glyph, color = "⚠", "#b91c1c"
		}
	case models.LayerHiddenTreasures:
		glyph, color = "💎", "#7e22ce"
	}

	return mapview.Icon{Glyph: glyph, Color: color}
}

// routeStyle picks the path styling by layer. Only personal_navigators gets
// the highlighted stroke today, but the distinction is by layer, not by
// geometry type.
func routeStyle(f *models.Feature) mapview.PathStyle {
	if f.LayerID == models.LayerPersonalNavigators {
		return mapview.PathStyle{Color: "#0f766e", Weight: 5, Opacity: 0.9}
	}
	return mapview.PathStyle{Color: "#334155", Weight: 4, Opacity: 0.8}
}

// render places the feature's overlay into its layer group. Callers hold the
// service lock.
func (s *Service) render(f *models.Feature) {
	popup, err := s.popupHTML(f)
	if err != nil {
		slog.Error("features.popup_render_failed", "id", f.ID, "error", err)
	}

	overlay := &mapview.Overlay{ID: f.ID, Popup: popup}
	if f.Type == models.FeaturePoint {
		overlay.Kind = mapview.KindMarker
		overlay.At = models.FromPoint(f.Geometry.Point)
		icon := iconFor(f)
		overlay.Icon = &icon
	} else {
		overlay.Kind = mapview.KindPath
		overlay.Points = f.Geometry.Coords()
		style := routeStyle(f)
		overlay.Style = &style
	}

	s.canvas.AddOverlay(f.LayerID, overlay)
}
