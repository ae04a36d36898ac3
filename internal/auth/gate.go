package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// DenyReason explains why the gate rejected a request.
// Reasons are logged and counted but never sent to the client.
type DenyReason string

const (
	DenyMissingCredentials DenyReason = "missing_credentials"
	DenyInvalidSignature   DenyReason = "invalid_signature"
	DenyExpired            DenyReason = "expired"
	DenyInvalidClaims      DenyReason = "invalid_claims"
)

// String implements fmt.Stringer.
func (r DenyReason) String() string {
	return string(r)
}

// Decision is the result of authorizing one request.
type Decision struct {
	Allowed bool
	Subject *Principal
	Reason  DenyReason
}

// DenialRecorder counts gate denials. Implemented by the metrics package.
type DenialRecorder interface {
	RecordGateDenied(reason string)
}

// Gate authorizes requests carrying a bearer token.
type Gate struct {
	validator TokenValidator
	recorder  DenialRecorder
	logger    zerolog.Logger
}

// NewGate creates a gate. recorder may be nil.
func NewGate(validator TokenValidator, recorder DenialRecorder, logger zerolog.Logger) *Gate {
	return &Gate{
		validator: validator,
		recorder:  recorder,
		logger:    logger.With().Str("component", "auth_gate").Logger(),
	}
}

// bearerToken extracts the token from an Authorization header.
// Returns "" unless the header is exactly "Bearer <token>".
func bearerToken(r *http.Request) string {
	header := r.Header.Get(AuthorizationHeader)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerScheme) {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authorize decides whether r may reach a protected handler.
func (g *Gate) Authorize(r *http.Request) Decision {
	token := bearerToken(r)
	if token == "" {
		return Decision{Reason: DenyMissingCredentials}
	}

	claims, err := g.validator.Validate(token)
	if err != nil {
		return Decision{Reason: reasonFor(err)}
	}

	return Decision{Allowed: true, Subject: principalFromClaims(claims)}
}

func reasonFor(err error) DenyReason {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return DenyExpired
	case errors.Is(err, ErrInvalidClaims):
		return DenyInvalidClaims
	default:
		return DenyInvalidSignature
	}
}

// Middleware rejects unauthorized requests with 401 and attaches the
// principal to the context of authorized ones.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.Authorize(r)
		if !decision.Allowed {
			g.logger.Debug().
				Str("reason", decision.Reason.String()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request denied")
			if g.recorder != nil {
				g.recorder.RecordGateDenied(decision.Reason.String())
			}

			w.Header().Set(WWWAuthenticateHeader, BearerScheme)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), decision.Subject)))
	})
}
