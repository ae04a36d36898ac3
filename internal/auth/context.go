package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID    uuid.UUID
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

type principalCtxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the principal set by the gate, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok && p != nil
}

// principalFromClaims builds a Principal. A malformed uid yields uuid.Nil.
func principalFromClaims(c *Claims) *Principal {
	id, _ := uuid.Parse(c.UserID)
	return &Principal{
		UserID:    id,
		Username:  c.Subject,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAtTime(),
	}
}
