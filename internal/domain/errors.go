// Package domain contains the core business entities for Sentinel.
package domain

import "errors"

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same normalized username exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
)
