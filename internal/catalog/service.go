// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/store"
)

const maxSlugAttempts = 50

// Guard is the subset of store.Service the catalog needs.
type Guard interface {
	RequireAccess(ctx context.Context, userID, storeID string) (store.Access, error)
	RequireWrite(ctx context.Context, userID, storeID string) (store.Access, error)
}

type Service struct {
	repo  Repository
	guard Guard
}

func NewService(repo Repository, guard Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// Products, Categories and Tags read without a guard check; callers run
// RequireAccess first.
func (s *Service) Products(ctx context.Context, storeID string) ([]ProductListing, error) {
	return s.repo.ListProducts(ctx, storeID)
}

func (s *Service) Categories(ctx context.Context, storeID string) ([]Category, error) {
	return s.repo.ListCategories(ctx, storeID)
}

func (s *Service) Tags(ctx context.Context, storeID string) ([]Tag, error) {
	return s.repo.ListTags(ctx, storeID)
}

func (s *Service) CreateCategory(
	ctx context.Context,
	userID, storeID string,
	req CreateCategoryRequest,
) (*Category, error) {
	if _, err := s.guard.RequireWrite(ctx, userID, storeID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	c := &Category{
		ID:      uuid.New().String(),
		StoreID: storeID,
		Name:    name,
		Slug:    slugOrDefault(name, "category"),
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("Category already exists")
		}
		return nil, err
	}

	return c, nil
}

func (s *Service) CreateTag(
	ctx context.Context,
	userID, storeID string,
	req CreateTagRequest,
) (*Tag, error) {
	if _, err := s.guard.RequireWrite(ctx, userID, storeID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	t := &Tag{
		ID:      uuid.New().String(),
		StoreID: storeID,
		Name:    name,
		Slug:    slugOrDefault(name, "tag"),
	}

	if err := s.repo.CreateTag(ctx, t); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("Tag already exists")
		}
		return nil, err
	}

	return t, nil
}

func (s *Service) CreateProduct(
	ctx context.Context,
	userID, storeID string,
	req CreateProductRequest,
) (*Product, error) {
	if _, err := s.guard.RequireWrite(ctx, userID, storeID); err != nil {
		return nil, err
	}

	p := &Product{
		ID:          uuid.New().String(),
		StoreID:     storeID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		IsActive:    true,
	}

	images := make([]Image, 0, len(req.Images))
	for i, in := range req.Images {
		images = append(images, Image{
			ID:        uuid.New().String(),
			ProductID: p.ID,
			URL:       in.URL,
			Alt:       in.Alt,
			SortOrder: i,
		})
	}

	base := slugOrDefault(p.Name, "product")
	tagIDs := dedupe(req.TagIDs)

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		p.Slug = base
		if attempt > 1 {
			p.Slug = base + "-" + strconv.Itoa(attempt)
		}

		exists, err := s.repo.ProductSlugExists(ctx, storeID, p.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		err = s.repo.CreateProduct(ctx, p, tagIDs, images)
		switch {
		case err == nil:
			return p, nil
		case errors.Is(err, core.ErrDuplicateKey):
			continue
		case errors.Is(err, core.ErrInvalidInput):
			return nil, core.BadRequestError("Category and tags must belong to this store")
		default:
			return nil, err
		}
	}

	return nil, fmt.Errorf(
		"create product: no free slug for %q: %w",
		base,
		core.ErrDuplicateKey,
	)
}

func slugOrDefault(name, fallback string) string {
	if s := slug.Make(name); s != "" {
		return s
	}
	return fallback
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
