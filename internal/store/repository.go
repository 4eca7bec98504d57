// AngelaMos | 2026
// repository.go

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/storedeck/storefront/internal/core"
)

type Repository interface {
	Create(ctx context.Context, store *Store) error
	GetByID(ctx context.Context, id string) (*Store, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListOwned(ctx context.Context, ownerID string) ([]Summary, error)
	ListMemberOf(ctx context.Context, userID string) ([]MemberSummary, error)
	GetMembership(ctx context.Context, storeID, userID string) (*Membership, error)
	ListMembers(ctx context.Context, storeID string) ([]MemberProfile, error)
	AddMember(ctx context.Context, m *Membership) error
	RemoveMember(ctx context.Context, storeID, userID string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const (
	storeColumns = `s.id, s.owner_id, s.name, s.slug, s.description,
		s.created_at, s.updated_at`

	statsColumns = `
		(SELECT COUNT(*) FROM products p WHERE p.store_id = s.id) AS product_count,
		(SELECT COUNT(*) FROM customers c WHERE c.store_id = s.id) AS customer_count,
		(SELECT COUNT(*) FROM messages m
		  WHERE m.store_id = s.id AND m.is_read = false) AS unread_message_count`
)

func (r *repository) Create(ctx context.Context, store *Store) error {
	query := `
		INSERT INTO stores (id, owner_id, name, slug, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		store.ID,
		store.OwnerID,
		store.Name,
		store.Slug,
		store.Description,
	).Scan(&store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create store: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create store: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores s WHERE s.id = $1`

	var store Store
	err := r.db.GetContext(ctx, &store, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get store: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}

	return &store, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM stores WHERE slug = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, fmt.Errorf("check slug exists: %w", err)
	}

	return exists, nil
}

func (r *repository) ListOwned(
	ctx context.Context,
	ownerID string,
) ([]Summary, error) {
	query := `
		SELECT ` + storeColumns + `,` + statsColumns + `
		FROM stores s
		WHERE s.owner_id = $1
		ORDER BY s.created_at DESC`

	stores := []Summary{}
	if err := r.db.SelectContext(ctx, &stores, query, ownerID); err != nil {
		return nil, fmt.Errorf("list owned stores: %w", err)
	}

	return stores, nil
}

func (r *repository) ListMemberOf(
	ctx context.Context,
	userID string,
) ([]MemberSummary, error) {
	query := `
		SELECT ` + storeColumns + `,` + statsColumns + `,
		       sm.role, sm.created_at AS joined_at
		FROM store_members sm
		JOIN stores s ON s.id = sm.store_id
		WHERE sm.user_id = $1
		ORDER BY sm.created_at DESC`

	stores := []MemberSummary{}
	if err := r.db.SelectContext(ctx, &stores, query, userID); err != nil {
		return nil, fmt.Errorf("list member stores: %w", err)
	}

	return stores, nil
}

func (r *repository) GetMembership(
	ctx context.Context,
	storeID, userID string,
) (*Membership, error) {
	query := `
		SELECT id, store_id, user_id, role, created_at
		FROM store_members
		WHERE store_id = $1 AND user_id = $2`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, storeID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get membership: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return &m, nil
}

func (r *repository) ListMembers(
	ctx context.Context,
	storeID string,
) ([]MemberProfile, error) {
	query := `
		SELECT sm.id, sm.store_id, sm.user_id, sm.role, sm.created_at,
		       u.email, u.name
		FROM store_members sm
		JOIN users u ON u.id = sm.user_id
		WHERE sm.store_id = $1
		ORDER BY sm.created_at ASC`

	members := []MemberProfile{}
	if err := r.db.SelectContext(ctx, &members, query, storeID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

func (r *repository) AddMember(ctx context.Context, m *Membership) error {
	query := `
		INSERT INTO store_members (id, store_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		m.ID,
		m.StoreID,
		m.UserID,
		m.Role,
	).Scan(&m.CreatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("add member: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("add member: %w", err)
	}

	return nil
}

func (r *repository) RemoveMember(
	ctx context.Context,
	storeID, userID string,
) error {
	query := `DELETE FROM store_members WHERE store_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, storeID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove member: %w", core.ErrNotFound)
	}

	return nil
}
