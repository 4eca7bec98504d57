// AngelaMos | 2026
// resolver.go

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/storedeck/storefront/internal/core"
)

// UserLookup re-reads a user by id. It reports core.ErrNotFound for
// deleted accounts.
type UserLookup interface {
	LookupIdentity(ctx context.Context, userID string) (Identity, error)
}

type ResolverConfig struct {
	Cookie     CookieOptions
	Revalidate bool
	Users      UserLookup
	Denylist   Denylist
	Logger     *slog.Logger
}

type Resolver struct {
	manager *Manager
	cfg     ResolverConfig
	logger  *slog.Logger
}

func NewResolver(manager *Manager, cfg ResolverConfig) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		manager: manager,
		cfg:     cfg,
		logger:  logger,
	}
}

// Current returns the caller's identity, or false when the request carries
// no usable session. It never fails: bad, expired and revoked tokens all
// resolve to absent.
func (s *Resolver) Current(r *http.Request) (Identity, bool) {
	claims, ok := s.CurrentClaims(r)
	if !ok {
		return Identity{}, false
	}
	return claims.Identity, true
}

func (s *Resolver) CurrentClaims(r *http.Request) (*Claims, bool) {
	raw := TokenFromRequest(r, s.cfg.Cookie.Name)
	if raw == "" {
		return nil, false
	}

	ctx := r.Context()

	claims, err := s.manager.Verify(ctx, raw)
	if err != nil {
		s.logger.Debug("session rejected", "error", err)
		return nil, false
	}

	if s.cfg.Denylist != nil && claims.TokenID != "" {
		revoked, err := s.cfg.Denylist.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			s.logger.Warn("session denylist unavailable", "error", err)
		} else if revoked {
			return nil, false
		}
	}

	if s.cfg.Revalidate && s.cfg.Users != nil {
		fresh, err := s.cfg.Users.LookupIdentity(ctx, claims.UserID)
		if err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				s.logger.Error("session revalidation failed",
					"user_id", claims.UserID,
					"error", err,
				)
			}
			return nil, false
		}
		claims.Email = fresh.Email
		claims.Name = fresh.Name
	}

	return claims, true
}

// Start issues a token for id and sets the cookie.
func (s *Resolver) Start(w http.ResponseWriter, id Identity) error {
	token, err := s.manager.Issue(id)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	opts := s.cfg.Cookie
	opts.MaxAge = s.manager.MaxAge()
	SetCookie(w, token.Value, opts)
	return nil
}

// End revokes the request's token, if any, and clears the cookie.
func (s *Resolver) End(w http.ResponseWriter, r *http.Request) error {
	defer ClearCookie(w, s.cfg.Cookie)

	claims, ok := s.CurrentClaims(r)
	if !ok || s.cfg.Denylist == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt)
	if err := s.cfg.Denylist.Revoke(r.Context(), claims.TokenID, ttl); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}
