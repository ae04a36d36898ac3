// Package auth issues and validates bearer tokens and gates protected routes.
package auth

import "time"

// =============================================================================
// Constants
// =============================================================================

const (
	// AuthorizationHeader is the HTTP header carrying the bearer token.
	AuthorizationHeader = "Authorization"

	// WWWAuthenticateHeader is the challenge header written on denial.
	WWWAuthenticateHeader = "WWW-Authenticate"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// DefaultTokenLifetime is used when TokenConfig.Lifetime is zero (7 days).
	DefaultTokenLifetime = 7 * 24 * time.Hour

	// MinSigningKeyLength is the smallest accepted HMAC key in bytes.
	MinSigningKeyLength = 32
)

// signingAlgorithm is the only algorithm issued and accepted.
const signingAlgorithm = "HS256"
