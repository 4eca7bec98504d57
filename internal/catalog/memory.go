// AngelaMos | 2026
// memory.go

package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/storedeck/storefront/internal/core"
)

// MemoryRepository is an in-process Repository with the same ordering and
// store-scoping rules as the SQL one.
type MemoryRepository struct {
	mu         sync.RWMutex
	categories map[string]Category
	tags       map[string]Tag
	products   []Product
	productTag map[string][]string
	images     map[string][]Image
	seq        time.Duration
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		categories: make(map[string]Category),
		tags:       make(map[string]Tag),
		productTag: make(map[string][]string),
		images:     make(map[string][]Image),
	}
}

func (m *MemoryRepository) stamp() time.Time {
	m.seq += time.Millisecond
	return time.Now().Add(m.seq)
}

func (m *MemoryRepository) ListProducts(
	_ context.Context,
	storeID string,
) ([]ProductListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []ProductListing{}
	for _, p := range m.products {
		if p.StoreID != storeID {
			continue
		}
		listing := ProductListing{Product: p, Tags: []Tag{}}
		if p.CategoryID != nil {
			if c, ok := m.categories[*p.CategoryID]; ok {
				listing.Category = &c
			}
		}
		for _, id := range m.productTag[p.ID] {
			listing.Tags = append(listing.Tags, m.tags[id])
		}
		sort.Slice(listing.Tags, func(i, j int) bool {
			return listing.Tags[i].Name < listing.Tags[j].Name
		})
		if imgs := m.images[p.ID]; len(imgs) > 0 {
			cover := imgs[0]
			for _, img := range imgs[1:] {
				if img.SortOrder < cover.SortOrder {
					cover = img
				}
			}
			listing.Image = &cover
		}
		out = append(out, listing)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) ListCategories(
	_ context.Context,
	storeID string,
) ([]Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Category{}
	for _, c := range m.categories {
		if c.StoreID == storeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) ListTags(_ context.Context, storeID string) ([]Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Tag{}
	for _, t := range m.tags {
		if t.StoreID == storeID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) CreateCategory(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.categories {
		if existing.StoreID == c.StoreID && existing.Slug == c.Slug {
			return fmt.Errorf("create category: %w", core.ErrDuplicateKey)
		}
	}
	c.CreatedAt = m.stamp()
	m.categories[c.ID] = *c
	return nil
}

func (m *MemoryRepository) CreateTag(_ context.Context, t *Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.tags {
		if existing.StoreID == t.StoreID && existing.Slug == t.Slug {
			return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
		}
	}
	t.CreatedAt = m.stamp()
	m.tags[t.ID] = *t
	return nil
}

func (m *MemoryRepository) ProductSlugExists(
	_ context.Context,
	storeID, slug string,
) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.StoreID == storeID && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) CreateProduct(
	_ context.Context,
	p *Product,
	tagIDs []string,
	images []Image,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.CategoryID != nil {
		c, ok := m.categories[*p.CategoryID]
		if !ok || c.StoreID != p.StoreID {
			return fmt.Errorf("create product: unknown category: %w", core.ErrInvalidInput)
		}
	}
	for _, id := range tagIDs {
		t, ok := m.tags[id]
		if !ok || t.StoreID != p.StoreID {
			return fmt.Errorf("create product: unknown tag: %w", core.ErrInvalidInput)
		}
	}
	for _, existing := range m.products {
		if existing.StoreID == p.StoreID && existing.Slug == p.Slug {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
	}

	p.CreatedAt = m.stamp()
	p.UpdatedAt = p.CreatedAt
	m.products = append(m.products, *p)
	m.productTag[p.ID] = append([]string(nil), tagIDs...)
	m.images[p.ID] = append([]Image(nil), images...)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
