package database

import (
	"encoding/json"
	"log/slog"

	"pulsemap/models"
)

// Storage entry names. Each holds a single JSON document.
const (
	keyUsers     = "users"
	keyFeatures  = "features"
	keyTemplates = "templates"
	keySession   = "session"
)

// Store is the typed persistence layer over the key-value repository. A
// malformed stored document is the one self-healing failure: it is replaced by
// the type-appropriate empty default and logged, never surfaced.
type Store struct {
	kv *KVRepository
}

// NewStore wraps a KV repository.
func NewStore(kv *KVRepository) *Store {
	return &Store{kv: kv}
}

// loadInto decodes the entry for key into out. Absent or corrupt entries
// leave out untouched and report false.
func (s *Store) loadInto(key string, out any) (bool, error) {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		slog.Warn("store.entry_corrupt", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *Store) save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Put(key, string(raw))
}

// LoadUsers returns the persisted user collection, empty when absent.
func (s *Store) LoadUsers() ([]*models.User, error) {
	var users []*models.User
	if _, err := s.loadInto(keyUsers, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// SaveUsers persists the full user collection.
func (s *Store) SaveUsers(users []*models.User) error {
	return s.save(keyUsers, users)
}

// LoadFeatures returns the persisted feature collection, empty when absent.
func (s *Store) LoadFeatures() ([]*models.Feature, error) {
	var features []*models.Feature
	if _, err := s.loadInto(keyFeatures, &features); err != nil {
		return nil, err
	}
	if features == nil {
		features = []*models.Feature{}
	}
	return features, nil
}

// SaveFeatures persists the full feature collection.
func (s *Store) SaveFeatures(features []*models.Feature) error {
	return s.save(keyFeatures, features)
}

// LoadTemplates returns the persisted user-defined templates, empty when
// absent.
func (s *Store) LoadTemplates() (map[string][]string, error) {
	var templates map[string][]string
	if _, err := s.loadInto(keyTemplates, &templates); err != nil {
		return nil, err
	}
	if templates == nil {
		templates = map[string][]string{}
	}
	return templates, nil
}

// SaveTemplates persists the user-defined template map.
func (s *Store) SaveTemplates(templates map[string][]string) error {
	return s.save(keyTemplates, templates)
}

// LoadSession returns the persisted session user id, empty when logged out.
func (s *Store) LoadSession() (string, error) {
	var id string
	if _, err := s.loadInto(keySession, &id); err != nil {
		return "", err
	}
	return id, nil
}

// SaveSession persists the session user id; empty clears it.
func (s *Store) SaveSession(userID string) error {
	return s.save(keySession, userID)
}
