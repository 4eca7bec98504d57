// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/user"
)

const minPasswordLength = 6

const (
	MessageFieldsRequired     = "Name, email, and password are required"
	MessagePasswordTooShort   = "Password must be at least 6 characters"
	MessageInvalidEmail       = "Invalid email address"
	MessageEmailExists        = "User with this email already exists"
	MessageInvalidCredentials = "Invalid email or password"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

// UserStore is satisfied by *user.Service.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	Create(ctx context.Context, email, passwordHash, name string) (*user.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	users     UserStore
	validator *validator.Validate
}

func NewService(users UserStore) *Service {
	return &Service{
		users:     users,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register validates req in a fixed order and creates the user. Validation
// and duplicate failures are *core.AppError values with status 400.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	name := strings.TrimSpace(req.Name)
	email := user.NormalizeEmail(req.Email)

	if name == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, core.BadRequestError(MessageFieldsRequired)
	}

	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return nil, core.BadRequestError(MessagePasswordTooShort)
	}

	if err := s.validator.Var(email, "email,max=255"); err != nil {
		return nil, core.BadRequestError(MessageInvalidEmail)
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, emailExistsError()
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, email, passwordHash, name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, emailExistsError()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, &u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, u.ID, newHash)
	}

	return u, nil
}

func emailExistsError() *core.AppError {
	return core.NewAppError(
		ErrEmailExists,
		MessageEmailExists,
		http.StatusBadRequest,
		"EMAIL_EXISTS",
	)
}
