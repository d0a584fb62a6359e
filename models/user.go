package models

import "time"

// User models a registered community member. Passwords are stored exactly as
// entered; profiles are never deleted.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Saved     []string  `json:"saved"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy with its own Saved slice.
func (u *User) Clone() *User {
	out := *u
	out.Saved = make([]string, len(u.Saved))
	copy(out.Saved, u.Saved)
	return &out
}

// HasSaved reports whether the feature id is already bookmarked.
func (u *User) HasSaved(featureID string) bool {
	for _, id := range u.Saved {
		if id == featureID {
			return true
		}
	}
	return false
}
