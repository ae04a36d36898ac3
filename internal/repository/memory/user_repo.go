// Package memory provides an in-memory credential store.
// This is suitable for tests and single-process demos. Nothing is persisted.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/sentinel/internal/domain"
	"github.com/prn-tf/sentinel/internal/repository"
)

// UserRepository implements repository.UserRepository using maps guarded by a mutex.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*domain.User
	byUsername map[string]uuid.UUID
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[uuid.UUID]*domain.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

// clone returns a copy so callers never share stored pointers.
func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

// Create creates a new user. A missing ID is generated.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := user.NormalizedUsername()
	if _, exists := r.byUsername[key]; exists {
		return fmt.Errorf("%w: %s", domain.ErrUserAlreadyExists, user.Username)
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	r.byID[user.ID] = clone(user)
	r.byUsername[key] = user.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(user), nil
}

// GetByUsername retrieves a user by username, ignoring case.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[domain.NormalizeUsername(username)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(r.byID[id]), nil
}

// Delete deletes a user by ID.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byUsername, user.NormalizedUsername())
	delete(r.byID, id)
	return nil
}

// List returns users ordered by creation time.
func (r *UserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.Normalize()

	r.mu.RLock()
	all := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, clone(u))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].NormalizedUsername() < all[j].NormalizedUsername()
	})

	result := &repository.ListResult[domain.User]{
		Total:  int64(len(all)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}
	if opts.Offset >= len(all) {
		return result, nil
	}
	end := min(opts.Offset+opts.Limit, len(all))
	result.Items = all[opts.Offset:end]
	return result, nil
}

// ExistsByUsername checks if a user with the given username exists.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUsername[domain.NormalizeUsername(username)]
	return ok, nil
}

// Ensure UserRepository implements repository.UserRepository.
var _ repository.UserRepository = (*UserRepository)(nil)
