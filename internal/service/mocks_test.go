package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/sentinel/internal/domain"
	"github.com/prn-tf/sentinel/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	calls     int
	createErr error
	getErr    error
	existsErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	key := user.NormalizedUsername()
	if _, exists := m.users[key]; exists {
		return domain.ErrUserAlreadyExists
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	c := *user
	m.users[key] = &c
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[domain.NormalizeUsername(username)]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for k, u := range m.users {
		if u.ID == id {
			delete(m.users, k)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var items []*domain.User
	for _, u := range m.users {
		items = append(items, u)
	}
	return &repository.ListResult[domain.User]{Items: items, Total: int64(len(items)), Limit: opts.Limit}, nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.users[domain.NormalizeUsername(username)]
	return ok, nil
}

// plainHasher stores passwords with a prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }
func (plainHasher) Verify(hash, password string) bool   { return hash == "plain:"+password }

// countingHasher wraps plainHasher and counts Verify calls.
type countingHasher struct {
	plainHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(hash, password string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.plainHasher.Verify(hash, password)
}

func (h *countingHasher) Verifies() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

// MockTokenIssuer returns a fixed token or error.
type MockTokenIssuer struct {
	token  string
	err    error
	issued []string
}

func (m *MockTokenIssuer) CreateToken(user *domain.User) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.issued = append(m.issued, user.Username)
	return m.token, nil
}

// busyLocker never grants a lock.
type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, nil
}

func (busyLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	return false, nil
}

func (busyLocker) Release(ctx context.Context, key string) (bool, error) { return false, nil }

func (busyLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, nil
}

func (busyLocker) IsHeld(ctx context.Context, key string) (bool, error) { return true, nil }

// recordingAttempts captures recorder calls.
type recordingAttempts struct {
	logins        []string
	registrations []string
}

func (r *recordingAttempts) RecordLogin(outcome string)        { r.logins = append(r.logins, outcome) }
func (r *recordingAttempts) RecordRegistration(outcome string) { r.registrations = append(r.registrations, outcome) }
