// AngelaMos | 2026
// dto.go

package auth

import (
	"github.com/storedeck/storefront/internal/session"
	"github.com/storedeck/storefront/internal/user"
)

// RegisterRequest is checked field by field in Service.Register so each
// failure gets its own message.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type AuthResponse struct {
	Success bool             `json:"success"`
	User    session.Identity `json:"user"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type MeResponse struct {
	User session.Identity `json:"user"`
}

func newAuthResponse(u *user.User) AuthResponse {
	return AuthResponse{Success: true, User: u.Identity()}
}
