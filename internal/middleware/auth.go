// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"net/http"

	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/session"
)

// IdentityResolver is satisfied by *session.Resolver.
type IdentityResolver interface {
	Current(r *http.Request) (session.Identity, bool)
}

// Authenticator rejects requests without a session with a JSON 401.
func Authenticator(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := resolver.Current(r)
			if !ok {
				core.Unauthorized(w, "")
				return
			}

			ctx := session.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePageSession redirects browsers without a session to loginPath.
func RequirePageSession(
	resolver IdentityResolver,
	loginPath string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := resolver.Current(r)
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			ctx := session.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the identity when present and never rejects.
func OptionalAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := resolver.Current(r); ok {
				r = r.WithContext(session.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetIdentity(ctx context.Context) (session.Identity, bool) {
	return session.FromContext(ctx)
}

func GetUserID(ctx context.Context) string {
	if id, ok := session.FromContext(ctx); ok {
		return id.UserID
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
