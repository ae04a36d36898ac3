package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/prn-tf/sentinel/internal/domain"
)

// TokenConfig holds the immutable settings shared by issuer and validator.
type TokenConfig struct {
	// SigningKey is the HMAC-SHA256 key. Must be at least 32 bytes.
	SigningKey []byte

	// Lifetime is how long an issued token stays valid.
	Lifetime time.Duration

	// Issuer is written to and required in the iss claim.
	Issuer string

	// Audience is written to and required in the aud claim.
	Audience string
}

// validate checks the key and fills defaults.
func (c TokenConfig) validate() (TokenConfig, error) {
	if len(c.SigningKey) == 0 {
		return c, ErrSigningKeyMissing
	}
	if len(c.SigningKey) < MinSigningKeyLength {
		return c, ErrSigningKeyTooShort
	}
	if c.Lifetime <= 0 {
		c.Lifetime = DefaultTokenLifetime
	}
	return c, nil
}

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims

	// UniqueName repeats the username for clients that read unique_name.
	UniqueName string `json:"unique_name,omitempty"`

	// UserID is the store identifier of the subject.
	UserID string `json:"uid,omitempty"`
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	CreateToken(user *domain.User) (string, error)
}

// Option configures an issuer or validator.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// JWTIssuer implements TokenIssuer with HS256 JWTs.
type JWTIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

// NewJWTIssuer creates an issuer. Returns ErrSigningKeyMissing or ErrSigningKeyTooShort
// when the key is unusable.
func NewJWTIssuer(cfg TokenConfig, opts ...Option) (*JWTIssuer, error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &JWTIssuer{cfg: cfg, now: o.now}, nil
}

// Lifetime returns the configured token lifetime.
func (i *JWTIssuer) Lifetime() time.Duration {
	return i.cfg.Lifetime
}

// CreateToken signs a token naming user as subject.
func (i *JWTIssuer) CreateToken(user *domain.User) (string, error) {
	if user == nil || user.Username == "" {
		return "", fmt.Errorf("%w: user has no username", ErrInvalidClaims)
	}

	now := i.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.Lifetime)),
		},
		UniqueName: user.Username,
		UserID:     user.ID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Ensure JWTIssuer implements TokenIssuer.
var _ TokenIssuer = (*JWTIssuer)(nil)
