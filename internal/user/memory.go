// AngelaMos | 2026
// memory.go

package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storedeck/storefront/internal/core"
)

// MemoryRepository is an in-process Repository with the same uniqueness
// rules as the users table. Handler and service tests across packages
// build on it.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (m *MemoryRepository) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryRepository) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (m *MemoryRepository) UpdateName(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[user.ID]
	if !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	u.Name = user.Name
	u.UpdatedAt = time.Now()
	user.UpdatedAt = u.UpdatedAt
	m.users[user.ID] = u
	return nil
}

func (m *MemoryRepository) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func (m *MemoryRepository) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Count reports how many users are stored.
func (m *MemoryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

var _ Repository = (*MemoryRepository)(nil)
