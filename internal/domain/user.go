// Package domain contains the core business entities for Sentinel.
// These are plain Go structs with no persistence or transport concerns,
// representing the principals and resources the gateway reasons about.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered principal.
// Users are created only through the credential store, which owns them exclusively.
type User struct {
	// ID is the opaque unique identifier assigned by the store at creation.
	ID uuid.UUID `json:"id"`

	// Username is the login name. Unique case-insensitively and immutable.
	Username string `json:"username"`

	// Email is the contact address. May be empty.
	Email string `json:"email"`

	// PasswordHash is the salted hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a user shell with no identifier and no password hash.
// The credential store fills both in when the user is persisted.
func NewUser(username, email string) *User {
	return &User{
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}

// NormalizedUsername returns the key used for uniqueness checks and lookups.
func (u *User) NormalizedUsername() string {
	return NormalizeUsername(u.Username)
}

// HasPassword reports whether a password hash has been set.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// NormalizeUsername folds a username for case-insensitive comparison.
func NormalizeUsername(username string) string {
	return strings.ToUpper(strings.TrimSpace(username))
}
