// AngelaMos | 2026
// identity.go

package session

import (
	"context"
	"time"
)

// Identity is the signed-in user as carried by the session token.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Claims is a verified token: the identity plus the metadata needed to
// revoke it.
type Claims struct {
	Identity
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type contextKey string

const identityKey contextKey = "session_identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
