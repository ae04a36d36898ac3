package auth

import "errors"

// Configuration errors. Both are fatal at startup.
var (
	// ErrSigningKeyMissing indicates no signing key was configured.
	ErrSigningKeyMissing = errors.New("token signing key is missing")

	// ErrSigningKeyTooShort indicates the signing key is shorter than MinSigningKeyLength.
	ErrSigningKeyTooShort = errors.New("token signing key must be at least 32 bytes")
)

// Token validation errors.
var (
	// ErrTokenMalformed indicates the token could not be decoded.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrInvalidSignature indicates the signature or algorithm does not match.
	ErrInvalidSignature = errors.New("token signature is invalid")

	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")

	// ErrInvalidClaims indicates issuer, audience, subject or validity window is wrong.
	ErrInvalidClaims = errors.New("token claims are invalid")
)
