// AngelaMos | 2026
// token.go

package session

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/storedeck/storefront/internal/config"
	"github.com/storedeck/storefront/internal/core"
)

const tokenType = "session"

// Token is a freshly signed session token.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Manager signs and verifies ES256 session tokens. Key material is read
// once at construction and never mutated.
type Manager struct {
	privateKey jwk.Key
	publicKey  jwk.Key
	config     config.SessionConfig
	now        func() time.Time
}

// NewManager loads the PEM private key at cfg.PrivateKeyPath. When the file
// is missing and allowEphemeral is set, a throwaway key is generated;
// sessions signed with it do not survive a restart.
func NewManager(
	cfg config.SessionConfig,
	allowEphemeral bool,
	logger *slog.Logger,
) (*Manager, error) {
	privateKeyPEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && allowEphemeral {
			logger.Warn("session key not found, using ephemeral key",
				"path", cfg.PrivateKeyPath,
			)
			return NewEphemeralManager(cfg)
		}
		return nil, fmt.Errorf("read private key: %w", err)
	}

	privateKey, err := jwk.ParseKey(privateKeyPEM, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return newManager(privateKey, cfg)
}

func NewEphemeralManager(cfg config.SessionConfig) (*Manager, error) {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	privateKey, err := jwk.Import(raw)
	if err != nil {
		return nil, fmt.Errorf("import private key: %w", err)
	}

	return newManager(privateKey, cfg)
}

func newManager(privateKey jwk.Key, cfg config.SessionConfig) (*Manager, error) {
	if setErr := privateKey.Set(jwk.AlgorithmKey, jwa.ES256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	keyID := uuid.New().String()[:8]
	if setErr := privateKey.Set(jwk.KeyIDKey, keyID); setErr != nil {
		return nil, fmt.Errorf("set key id: %w", setErr)
	}

	publicKey, err := privateKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}

	return &Manager{
		privateKey: privateKey,
		publicKey:  publicKey,
		config:     cfg,
		now:        time.Now,
	}, nil
}

// GenerateKeyPair writes a new P-256 private key in PEM form.
func GenerateKeyPair(privateKeyPath string) error {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	privateKey, err := jwk.Import(raw)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}

	privatePEM, err := jwk.Pem(privateKey)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	if writeErr := os.WriteFile(privateKeyPath, privatePEM, 0o600); writeErr != nil {
		return fmt.Errorf("write private key: %w", writeErr)
	}

	return nil
}

func (m *Manager) MaxAge() time.Duration {
	return m.config.MaxAge
}

func (m *Manager) Issue(id Identity) (*Token, error) {
	now := m.now()
	expiresAt := now.Add(m.config.MaxAge)
	tokenID := uuid.New().String()

	token, err := jwt.NewBuilder().
		JwtID(tokenID).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(id.UserID).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("email", id.Email).
		Claim("name", id.Name).
		Claim("type", tokenType).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.privateKey))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		Value:     string(signed),
		ID:        tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *Manager) Verify(ctx context.Context, raw string) (*Claims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.ES256(), m.publicKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithClock(jwt.ClockFunc(m.now)),
		jwt.WithContext(ctx),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var typ string
	if err := token.Get("type", &typ); err != nil || typ != tokenType {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	claims := &Claims{Identity: Identity{UserID: subject}}

	if err := token.Get("email", &claims.Email); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing email claim: %w",
			core.ErrTokenInvalid,
		)
	}
	//nolint:errcheck // name is optional display data
	_ = token.Get("name", &claims.Name)

	claims.TokenID, _ = token.JwtID()
	claims.IssuedAt, _ = token.IssuedAt()
	claims.ExpiresAt, _ = token.Expiration()

	return claims, nil
}

func isTokenExpiredError(err error) bool {
	if errors.Is(err, jwt.TokenExpiredError()) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
