package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pulsemap/models"
	"pulsemap/services/accounts"
)

type accountsService interface {
	Register(email, password string) (*models.User, error)
	Login(email, password string) (*models.User, error)
	Logout() error
	CurrentUser() *models.User
}

var _ accountsService = (*accounts.Service)(nil)

// AuthHandler exposes registration, login and session inspection.
type AuthHandler struct {
	Service accountsService
}

func NewAuthHandler(s accountsService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// UserResponse is the JSON shape for a user. The stored password never leaves
// the server.
type UserResponse struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Saved []string `json:"saved"`
}

func toUserResponse(u *models.User) UserResponse {
	saved := u.Saved
	if saved == nil {
		saved = []string{}
	}
	return UserResponse{ID: u.ID, Email: u.Email, Saved: saved}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and signs the new user in.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Service.Register(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidInput):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, accounts.ErrDuplicateEmail):
			jsonError(w, err.Error(), http.StatusConflict)
		default:
			jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login authenticates and sets the session.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Service.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidCredentials):
			jsonError(w, err.Error(), http.StatusUnauthorized)
		default:
			jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout clears the session.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me reports the signed-in user, or 204 when the session is empty.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.Service.CurrentUser()
	if user == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
