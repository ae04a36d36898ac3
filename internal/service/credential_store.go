package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel/internal/domain"
	"github.com/prn-tf/sentinel/internal/lock"
	"github.com/prn-tf/sentinel/internal/pkg/crypto"
	"github.com/prn-tf/sentinel/internal/repository"
)

// allowedUsernameChars is the set of characters a username may contain.
const allowedUsernameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"

// Registration lock tuning.
const (
	registrationLockRetries    = 50
	registrationLockRetryDelay = 20 * time.Millisecond
	defaultRegistrationLockTTL = 10 * time.Second
)

// CredentialStore owns users and their password hashes.
type CredentialStore interface {
	// FindByUsername returns the user with the given name, ignoring case.
	// Returns domain.ErrUserNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// CreateUser validates and persists user with a hash of password.
	// Rule violations are returned together as a *ValidationError.
	CreateUser(ctx context.Context, user *domain.User, password string) error

	// VerifyPassword reports whether password matches the user's stored hash.
	// A nil user costs the same as a mismatch and reports false.
	VerifyPassword(user *domain.User, password string) bool
}

// registrationForm carries the user fields checked by struct tags.
type registrationForm struct {
	Username string `validate:"required,username_chars"`
	Email    string `validate:"omitempty,email"`
}

// UserStoreConfig holds optional UserStore settings.
type UserStoreConfig struct {
	Policy  PasswordPolicy
	LockTTL time.Duration
}

// UserStore implements CredentialStore on top of a UserRepository.
type UserStore struct {
	repo     repository.UserRepository
	hasher   crypto.PasswordHasher
	locker   lock.Locker
	policy   PasswordPolicy
	lockTTL  time.Duration
	validate *validator.Validate
	logger   zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserStore creates a new UserStore.
func NewUserStore(
	repo repository.UserRepository,
	hasher crypto.PasswordHasher,
	locker lock.Locker,
	cfg UserStoreConfig,
	logger zerolog.Logger,
) *UserStore {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultRegistrationLockTTL
	}
	if locker == nil {
		locker = lock.NewNoOpLocker()
	}

	v := validator.New()
	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, r := range s {
			if !strings.ContainsRune(allowedUsernameChars, r) {
				return false
			}
		}
		return true
	})

	return &UserStore{
		repo:     repo,
		hasher:   hasher,
		locker:   locker,
		policy:   cfg.Policy,
		lockTTL:  cfg.LockTTL,
		validate: v,
		logger:   logger.With().Str("service", "credential_store").Logger(),
	}
}

// FindByUsername returns the user with the given name, ignoring case.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// VerifyPassword reports whether password matches the user's stored hash.
// Users without a hash are checked against a throwaway hash so unknown
// usernames take as long as wrong passwords.
func (s *UserStore) VerifyPassword(user *domain.User, password string) bool {
	if user == nil || !user.HasPassword() {
		if hash := s.placeholderHash(); hash != "" {
			_ = s.hasher.Verify(hash, password)
		}
		return false
	}
	return s.hasher.Verify(user.PasswordHash, password)
}

// placeholderHash hashes a fixed value once with the configured hasher.
func (s *UserStore) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("sentinel-placeholder-password")
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to prepare placeholder hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// CreateUser validates and persists user. The per-username lock serializes
// concurrent registrations; the repository's unique index is the final guard.
func (s *UserStore) CreateUser(ctx context.Context, user *domain.User, password string) error {
	key := lock.Keys.UserRegistration(user.NormalizedUsername())

	acquired, err := s.locker.AcquireWithRetry(ctx, key, s.lockTTL, registrationLockRetries, registrationLockRetryDelay)
	if err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("failed to acquire registration lock")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !acquired {
		s.logger.Warn().Str("username", user.Username).Msg("registration lock busy")
		return fmt.Errorf("%w: %v", ErrInternalError, lock.ErrLockNotAcquired)
	}
	defer func() {
		// Release with a fresh context so a canceled request still frees the lock.
		if _, err := s.locker.Release(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to release registration lock")
		}
	}()

	errs, err := s.validateUser(ctx, user)
	if err != nil {
		return err
	}
	errs = append(errs, s.policy.Validate(password)...)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}
	user.PasswordHash = hash

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return &ValidationError{Errors: []IdentityError{duplicateUserName(user.Username)}}
		}
		s.logger.Error().Err(err).Str("username", user.Username).Msg("failed to create user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("user created")

	return nil
}

// validateUser checks username format, uniqueness and email format.
func (s *UserStore) validateUser(ctx context.Context, user *domain.User) ([]IdentityError, error) {
	var errs []IdentityError

	form := registrationForm{Username: user.Username, Email: user.Email}
	if err := s.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "Username":
				errs = append(errs, IdentityError{
					Code:        CodeInvalidUserName,
					Description: fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", user.Username),
				})
			case "Email":
				errs = append(errs, IdentityError{
					Code:        CodeInvalidEmail,
					Description: fmt.Sprintf("Email '%s' is invalid.", user.Email),
				})
			}
		}
	}

	if len(errs) == 0 || errs[0].Code != CodeInvalidUserName {
		exists, err := s.repo.ExistsByUsername(ctx, user.Username)
		if err != nil {
			s.logger.Error().Err(err).Str("username", user.Username).Msg("failed to check username existence")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if exists {
			errs = append([]IdentityError{duplicateUserName(user.Username)}, errs...)
		}
	}

	return errs, nil
}

func duplicateUserName(username string) IdentityError {
	return IdentityError{
		Code:        CodeDuplicateUserName,
		Description: fmt.Sprintf("Username '%s' is already taken.", username),
	}
}

// ListUsersInput contains pagination options for listing users.
type ListUsersInput struct {
	Limit  int
	Offset int
}

// ListUsersOutput contains the result of listing users.
type ListUsersOutput struct {
	Users      []*domain.User
	TotalCount int64
}

// ListUsers returns users with pagination.
func (s *UserStore) ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > repository.DefaultListLimit {
		input.Limit = repository.DefaultListLimit
	}

	result, err := s.repo.List(ctx, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListUsersOutput{
		Users:      result.Items,
		TotalCount: result.Total,
	}, nil
}

// Ensure UserStore implements CredentialStore.
var _ CredentialStore = (*UserStore)(nil)
