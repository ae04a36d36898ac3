// Package repository defines data access interfaces for Sentinel.
// These interfaces abstract database operations, allowing for different implementations
// (PostgreSQL, SQLite, in-memory for testing) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/prn-tf/sentinel/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
// Username lookups are case-insensitive: implementations match on
// domain.NormalizeUsername of the argument.
type UserRepository interface {
	// Create creates a new user.
	// Returns domain.ErrUserAlreadyExists if the normalized username is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns domain.ErrUserNotFound if no user matches.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Delete deletes a user by ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all users ordered by creation time with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	// Zero selects DefaultListLimit.
	Limit int
}

// DefaultListLimit is used when ListOptions.Limit is not set.
const DefaultListLimit = 100

// Normalize returns a copy with defaults applied.
func (o ListOptions) Normalize() ListOptions {
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	return o
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}

// =============================================================================
// Database Health
// =============================================================================

// DatabaseHealth is implemented by database handles for health endpoints.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
