// AngelaMos | 2026
// entity.go

package store

import (
	"time"
)

type Store struct {
	ID          string    `db:"id"          json:"id"`
	OwnerID     string    `db:"owner_id"    json:"owner_id"`
	Name        string    `db:"name"        json:"name"`
	Slug        string    `db:"slug"        json:"slug"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// Stats are the per-store counters shown on dashboard cards.
type Stats struct {
	Products       int `db:"product_count"        json:"products"`
	Customers      int `db:"customer_count"       json:"customers"`
	UnreadMessages int `db:"unread_message_count" json:"unread_messages"`
}

type Summary struct {
	Store
	Stats
}

type MemberSummary struct {
	Summary
	Role     string    `db:"role"      json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// Overview is everything the dashboard home lists for one user.
type Overview struct {
	Owned  []Summary       `json:"owned"`
	Member []MemberSummary `json:"member"`
}

func (o *Overview) Empty() bool {
	return len(o.Owned) == 0 && len(o.Member) == 0
}

type Membership struct {
	ID        string    `db:"id"         json:"id"`
	StoreID   string    `db:"store_id"   json:"store_id"`
	UserID    string    `db:"user_id"    json:"user_id"`
	Role      string    `db:"role"       json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MemberProfile is a membership row joined with the member's profile.
type MemberProfile struct {
	Membership
	Email string `db:"email" json:"email"`
	Name  string `db:"name"  json:"name"`
}

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)
