// Package layers holds the layer catalog state: which overlay groups are
// visible and the named layer-set templates, both built-in and user-defined.
package layers

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pulsemap/internal/database"
	"pulsemap/internal/mapview"
	"pulsemap/models"
)

var ErrEmptyName = errors.New("template name is required")

// Template namespaces. Built-in templates are compiled in and read-only; user
// templates are persisted.
const (
	NamespaceBase = "base"
	NamespaceUser = "user"
)

var builtInOrder = []string{
	"Emotions & Memory",
	"Practical Navigation",
	"Sensory Perception",
	"City Problems Map",
	"Tourist Gems",
}

var builtInTemplates = map[string][]string{
	"Emotions & Memory":    {models.LayerEmotionalAnchors, models.LayerMemoryMarks, models.LayerPhotoAnchors},
	"Practical Navigation": {models.LayerPersonalNavigators},
	"Sensory Perception":   {models.LayerBestPlace},
	"City Problems Map":    {models.LayerInfrastructureFeedback},
	"Tourist Gems":         {models.LayerHiddenTreasures},
}

// forcedDrawTypes maps layer ids to a draw type the layer mandates. Layers
// without an entry accept either type.
var forcedDrawTypes = map[string]models.FeatureType{
	models.LayerPersonalNavigators: models.FeatureRoute,
}

// TemplateInfo describes one selectable template.
type TemplateInfo struct {
	Namespace string   `json:"namespace"`
	Name      string   `json:"name"`
	Layers    []string `json:"layers"`
}

// Registry tracks the active layer set and the template catalog. The active
// set is in-memory only and starts with every layer on; user templates
// persist under the templates storage entry.
type Registry struct {
	store  *database.Store
	canvas *mapview.Canvas

	mu     sync.Mutex
	active map[string]bool
	user   map[string][]string
}

// NewRegistry loads user templates and activates all layers.
func NewRegistry(store *database.Store, canvas *mapview.Canvas) (*Registry, error) {
	user, err := store.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	active := make(map[string]bool, len(models.Layers))
	for _, l := range models.Layers {
		active[l.ID] = true
	}
	return &Registry{store: store, canvas: canvas, active: active, user: user}, nil
}

// Layers returns the fixed catalog in display order.
func (r *Registry) Layers() []models.Layer {
	return models.Layers
}

// ForcedDrawType returns the draw type a layer mandates, if any.
func (r *Registry) ForcedDrawType(layerID string) (models.FeatureType, bool) {
	t, ok := forcedDrawTypes[layerID]
	return t, ok
}

// Toggle activates or deactivates a single layer and shows/hides its overlay
// group.
func (r *Registry) Toggle(layerID string, on bool) {
	if !models.KnownLayer(layerID) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setActive(layerID, on)
}

func (r *Registry) setActive(layerID string, on bool) {
	r.active[layerID] = on
	r.canvas.SetGroupVisible(layerID, on)
}

// Active returns the active layer ids in catalog order.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(models.Layers))
	for _, l := range models.Layers {
		if r.active[l.ID] {
			out = append(out, l.ID)
		}
	}
	return out
}

// IsActive reports whether a layer is currently shown.
func (r *Registry) IsActive(layerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[layerID]
}

// ApplyTemplate replaces the active layer set with the named template's set.
// Layers outside the template are deactivated, never merged. An unknown
// namespace/name combination is a silent no-op.
func (r *Registry) ApplyTemplate(namespace, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var template []string
	switch namespace {
	case NamespaceBase:
		template = builtInTemplates[name]
	case NamespaceUser:
		template = r.user[name]
	}
	if template == nil {
		return
	}

	wanted := make(map[string]bool, len(template))
	for _, id := range template {
		wanted[id] = true
	}
	for _, l := range models.Layers {
		r.setActive(l.ID, wanted[l.ID])
	}
}

// SaveTemplate stores the current active layer set under the given name in
// the user namespace, overwriting a same-named template.
func (r *Registry) SaveTemplate(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]string, 0, len(models.Layers))
	for _, l := range models.Layers {
		if r.active[l.ID] {
			active = append(active, l.ID)
		}
	}
	r.user[name] = active
	if err := r.store.SaveTemplates(r.user); err != nil {
		return fmt.Errorf("persist templates: %w", err)
	}
	return nil
}

// Templates lists built-in templates first (fixed order), then user templates
// sorted by name.
func (r *Registry) Templates() []TemplateInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TemplateInfo, 0, len(builtInOrder)+len(r.user))
	for _, name := range builtInOrder {
		out = append(out, TemplateInfo{Namespace: NamespaceBase, Name: name, Layers: builtInTemplates[name]})
	}
	names := make([]string, 0, len(r.user))
	for name := range r.user {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, TemplateInfo{Namespace: NamespaceUser, Name: name, Layers: r.user[name]})
	}
	return out
}
