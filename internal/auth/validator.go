package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// JWTValidator validates tokens minted by JWTIssuer with the same TokenConfig.
type JWTValidator struct {
	cfg    TokenConfig
	parser *jwt.Parser
}

// NewJWTValidator creates a validator. Only HS256 is accepted, expiry is required
// and no clock leeway is allowed.
func NewJWTValidator(cfg TokenConfig, opts ...Option) (*JWTValidator, error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingAlgorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(o.now),
		jwt.WithLeeway(0),
	}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.Audience))
	}

	return &JWTValidator{
		cfg:    cfg,
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// Validate parses token and returns its claims.
// Errors wrap one of ErrTokenMalformed, ErrInvalidSignature, ErrTokenExpired or ErrInvalidClaims.
func (v *JWTValidator) Validate(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.cfg.SigningKey, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}

	return claims, nil
}

// classify maps library errors onto the package's validation errors.
// Signature problems win over claim problems since the claims cannot be trusted.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}

// ExpiresAtTime returns the expiry of claims, or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time.UTC()
}

// Ensure JWTValidator implements TokenValidator.
var _ TokenValidator = (*JWTValidator)(nil)
