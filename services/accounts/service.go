// Package accounts owns the user collection and the single process-wide
// session. Registration stores passwords exactly as entered; credential checks
// are literal comparisons against the stored values.
package accounts

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pulsemap/internal/database"
	"pulsemap/models"
)

var (
	ErrInvalidInput       = errors.New("email and password are required")
	ErrDuplicateEmail     = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service manages registration, login and the active session.
type Service struct {
	store *database.Store

	mu        sync.Mutex
	users     []*models.User
	currentID string
}

// NewService loads the persisted user collection and session.
func NewService(store *database.Store) (*Service, error) {
	users, err := store.LoadUsers()
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	session, err := store.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Service{store: store, users: users, currentID: session}, nil
}

// Register creates a new user and signs them in. Emails are compared
// case-insensitively; the stored email is the lowercased form.
func (s *Service) Register(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  password,
		Saved:     []string{},
		CreatedAt: time.Now().UTC(),
	}
	s.users = append(s.users, user)
	if err := s.store.SaveUsers(s.users); err != nil {
		return nil, fmt.Errorf("persist users: %w", err)
	}

	s.currentID = user.ID
	if err := s.store.SaveSession(s.currentID); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	slog.Info("accounts.registered", "email", email)
	return user.Clone(), nil
}

// Login matches the lowercased email and stored password exactly and sets the
// session on success.
func (s *Service) Login(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email && u.Password == password {
			s.currentID = u.ID
			if err := s.store.SaveSession(s.currentID); err != nil {
				return nil, fmt.Errorf("persist session: %w", err)
			}
			return u.Clone(), nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Logout clears the session. It has no failure modes of its own; a
// persistence error propagates as the storage layer's fault.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = ""
	return s.store.SaveSession("")
}

// CurrentUser returns a clone of the signed-in user, or nil when the session
// is empty or references a user that no longer resolves. Clones keep later
// SaveToProfile appends from racing JSON encoding in the handlers.
func (s *Service) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentID == "" {
		return nil
	}
	if user := s.findUser(s.currentID); user != nil {
		return user.Clone()
	}
	return nil
}

// UserByID resolves a user id to a clone, returning nil when absent.
func (s *Service) UserByID(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user := s.findUser(id); user != nil {
		return user.Clone()
	}
	return nil
}

func (s *Service) findUser(id string) *models.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// SaveToProfile bookmarks a feature id on the user's saved list. Already-saved
// ids are left alone so the list never holds duplicates.
func (s *Service) SaveToProfile(userID, featureID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUser(userID)
	if user == nil {
		return fmt.Errorf("unknown user %q", userID)
	}
	if user.HasSaved(featureID) {
		return nil
	}
	user.Saved = append(user.Saved, featureID)
	if err := s.store.SaveUsers(s.users); err != nil {
		return fmt.Errorf("persist users: %w", err)
	}
	return nil
}

// SavedIDs returns the user's bookmarked feature ids in save order.
func (s *Service) SavedIDs(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.findUser(userID)
	if user == nil {
		return nil
	}
	out := make([]string, len(user.Saved))
	copy(out, user.Saved)
	return out
}
