// AngelaMos | 2026
// memory.go

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/storedeck/storefront/internal/core"
)

// MemoryRepository is an in-process Repository. Counters are not derived
// from catalog rows; tests set them with SetStats.
type MemoryRepository struct {
	mu          sync.RWMutex
	stores      map[string]Store
	stats       map[string]Stats
	memberships []Membership
	profiles    map[string]MemberProfile
	calls       int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		stores:   make(map[string]Store),
		stats:    make(map[string]Stats),
		profiles: make(map[string]MemberProfile),
	}
}

// Calls reports how many repository methods have run.
func (m *MemoryRepository) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MemoryRepository) SetStats(storeID string, stats Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[storeID] = stats
}

// SetProfile records the email and name ListMembers reports for userID.
func (m *MemoryRepository) SetProfile(userID, email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = MemberProfile{Email: email, Name: name}
}

func (m *MemoryRepository) Create(_ context.Context, store *Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	for _, s := range m.stores {
		if s.Slug == store.Slug {
			return fmt.Errorf("create store: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now().Add(time.Duration(len(m.stores)) * time.Millisecond)
	store.CreatedAt = now
	store.UpdatedAt = now
	m.stores[store.ID] = *store
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	s, ok := m.stores[id]
	if !ok {
		return nil, fmt.Errorf("get store: %w", core.ErrNotFound)
	}
	return &s, nil
}

func (m *MemoryRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	for _, s := range m.stores {
		if s.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) ListOwned(
	_ context.Context,
	ownerID string,
) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	out := []Summary{}
	for _, s := range m.stores {
		if s.OwnerID == ownerID {
			out = append(out, Summary{Store: s, Stats: m.stats[s.ID]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) ListMemberOf(
	_ context.Context,
	userID string,
) ([]MemberSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	out := []MemberSummary{}
	for _, ms := range m.memberships {
		if ms.UserID != userID {
			continue
		}
		s := m.stores[ms.StoreID]
		out = append(out, MemberSummary{
			Summary:  Summary{Store: s, Stats: m.stats[s.ID]},
			Role:     ms.Role,
			JoinedAt: ms.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].JoinedAt.After(out[j].JoinedAt)
	})
	return out, nil
}

func (m *MemoryRepository) GetMembership(
	_ context.Context,
	storeID, userID string,
) (*Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	for _, ms := range m.memberships {
		if ms.StoreID == storeID && ms.UserID == userID {
			found := ms
			return &found, nil
		}
	}
	return nil, fmt.Errorf("get membership: %w", core.ErrNotFound)
}

func (m *MemoryRepository) ListMembers(
	_ context.Context,
	storeID string,
) ([]MemberProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	out := []MemberProfile{}
	for _, ms := range m.memberships {
		if ms.StoreID != storeID {
			continue
		}
		p := m.profiles[ms.UserID]
		p.Membership = ms
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryRepository) AddMember(_ context.Context, ms *Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	for _, existing := range m.memberships {
		if existing.StoreID == ms.StoreID && existing.UserID == ms.UserID {
			return fmt.Errorf("add member: %w", core.ErrDuplicateKey)
		}
	}

	ms.CreatedAt = time.Now().Add(time.Duration(len(m.memberships)) * time.Millisecond)
	m.memberships = append(m.memberships, *ms)
	return nil
}

func (m *MemoryRepository) RemoveMember(
	_ context.Context,
	storeID, userID string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	for i, ms := range m.memberships {
		if ms.StoreID == storeID && ms.UserID == userID {
			m.memberships = append(m.memberships[:i], m.memberships[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove member: %w", core.ErrNotFound)
}

var _ Repository = (*MemoryRepository)(nil)
