package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel/internal/auth"
	"github.com/prn-tf/sentinel/internal/domain"
	"github.com/prn-tf/sentinel/internal/metrics"
)

// AttemptRecorder counts login and registration outcomes.
// Implemented by *metrics.Metrics.
type AttemptRecorder interface {
	RecordLogin(outcome string)
	RecordRegistration(outcome string)
}

// AuthService handles login and registration.
type AuthService struct {
	store    CredentialStore
	issuer   auth.TokenIssuer
	recorder AttemptRecorder
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService. recorder may be nil.
func NewAuthService(store CredentialStore, issuer auth.TokenIssuer, recorder AttemptRecorder, logger zerolog.Logger) *AuthService {
	return &AuthService{
		store:    store,
		issuer:   issuer,
		recorder: recorder,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// LoginInput contains the credentials presented by a client.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput contains the issued token.
type LoginOutput struct {
	// Username is the stored username, which may differ in case from the input.
	Username string
	Token    string
}

// RegisterInput contains the data needed to register a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *AuthService) recordLogin(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordLogin(outcome)
	}
}

func (s *AuthService) recordRegistration(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordRegistration(outcome)
	}
}

// Login verifies credentials and issues a bearer token.
// Required fields are checked before the store is touched.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	if strings.TrimSpace(input.Username) == "" {
		s.recordLogin(metrics.LoginInvalidInput)
		return nil, ErrMissingUsername
	}
	if input.Password == "" {
		s.recordLogin(metrics.LoginInvalidInput)
		return nil, ErrMissingPassword
	}

	user, err := s.store.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a hash check so response time doesn't reveal the miss.
			s.store.VerifyPassword(nil, input.Password)
			s.logger.Debug().Str("username", input.Username).Msg("user not found during login")
			s.recordLogin(metrics.LoginRejected)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("credential lookup failed")
		s.recordLogin(metrics.LoginInternalFailed)
		if errors.Is(err, ErrInternalError) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !s.store.VerifyPassword(user, input.Password) {
		s.logger.Debug().Str("username", input.Username).Msg("invalid password during login")
		s.recordLogin(metrics.LoginRejected)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.CreateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("failed to issue token")
		s.recordLogin(metrics.LoginInternalFailed)
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("user authenticated")
	s.recordLogin(metrics.LoginSucceeded)

	return &LoginOutput{Username: user.Username, Token: token}, nil
}

// Register creates a user account. No token is issued.
// Rule violations are returned as a *ValidationError.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	user := domain.NewUser(input.Username, input.Email)

	if err := s.store.CreateUser(ctx, user, input.Password); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.logger.Debug().
				Str("username", input.Username).
				Int("violations", len(verr.Errors)).
				Msg("registration rejected")
			s.recordRegistration("rejected")
			return err
		}
		s.recordRegistration("error")
		if errors.Is(err, ErrInternalError) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.recordRegistration("success")
	return nil
}
