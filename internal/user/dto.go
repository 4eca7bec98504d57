// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

// UpdateProfileRequest leaves fields that are nil untouched.
type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	MemberSince time.Time `json:"member_since"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProfileResponse struct {
	User Profile `json:"user"`
}

func NewProfileResponse(u *User) ProfileResponse {
	return ProfileResponse{User: Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		MemberSince: u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}}
}
