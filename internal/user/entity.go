// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/storedeck/storefront/internal/session"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) Identity() session.Identity {
	return session.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	}
}
