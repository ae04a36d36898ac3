// Package service provides business logic services for Sentinel.
package service

import (
	"errors"
	"strings"
)

// Common service errors.
var (
	// Login input errors
	ErrMissingUsername = errors.New("username is required")
	ErrMissingPassword = errors.New("password is required")

	// Authentication errors. Unknown user and wrong password are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Registration errors
	ErrValidationFailed = errors.New("validation failed")

	// General errors
	ErrInternalError = errors.New("internal server error")
)

// IdentityError is a single registration rule violation.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ValidationError aggregates every violation found while registering a user.
// errors.Is(err, ErrValidationFailed) reports true for it.
type ValidationError struct {
	Errors []IdentityError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	descriptions := make([]string, len(e.Errors))
	for i, ie := range e.Errors {
		descriptions[i] = ie.Description
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(descriptions, " ")
}

// Unwrap returns ErrValidationFailed for errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// HasCode reports whether any violation has the given code.
func (e *ValidationError) HasCode(code string) bool {
	for _, ie := range e.Errors {
		if ie.Code == code {
			return true
		}
	}
	return false
}
