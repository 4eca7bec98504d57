// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/storedeck/storefront/internal/core"
)

type Repository interface {
	ListProducts(ctx context.Context, storeID string) ([]ProductListing, error)
	ListCategories(ctx context.Context, storeID string) ([]Category, error)
	ListTags(ctx context.Context, storeID string) ([]Tag, error)
	CreateCategory(ctx context.Context, c *Category) error
	CreateTag(ctx context.Context, t *Tag) error
	ProductSlugExists(ctx context.Context, storeID, slug string) (bool, error)
	CreateProduct(ctx context.Context, p *Product, tagIDs []string, images []Image) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

type productRow struct {
	Product
	CatID        *string    `db:"cat_id"`
	CatName      *string    `db:"cat_name"`
	CatSlug      *string    `db:"cat_slug"`
	CatCreatedAt *time.Time `db:"cat_created_at"`
}

type productTagRow struct {
	ProductID string `db:"product_id"`
	Tag
}

func (r *repository) ListProducts(
	ctx context.Context,
	storeID string,
) ([]ProductListing, error) {
	query := `
		SELECT p.id, p.store_id, p.category_id, p.name, p.slug, p.description,
		       p.price_cents, p.stock, p.is_active, p.created_at, p.updated_at,
		       c.id AS cat_id, c.name AS cat_name, c.slug AS cat_slug,
		       c.created_at AS cat_created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.store_id = $1
		ORDER BY p.created_at DESC`

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, storeID); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	listings := make([]ProductListing, 0, len(rows))
	if len(rows) == 0 {
		return listings, nil
	}

	ids := make([]string, 0, len(rows))
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		listing := ProductListing{Product: row.Product, Tags: []Tag{}}
		if row.CatID != nil {
			listing.Category = &Category{
				ID:        *row.CatID,
				StoreID:   row.StoreID,
				Name:      deref(row.CatName),
				Slug:      deref(row.CatSlug),
				CreatedAt: derefTime(row.CatCreatedAt),
			}
		}
		listings = append(listings, listing)
		ids = append(ids, row.ID)
		index[row.ID] = i
	}

	tagQuery := `
		SELECT pt.product_id, t.id, t.store_id, t.name, t.slug, t.created_at
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id = ANY($1)
		ORDER BY t.name ASC`

	var tags []productTagRow
	if err := r.db.SelectContext(ctx, &tags, tagQuery, ids); err != nil {
		return nil, fmt.Errorf("list product tags: %w", err)
	}
	for _, t := range tags {
		i := index[t.ProductID]
		listings[i].Tags = append(listings[i].Tags, t.Tag)
	}

	imageQuery := `
		SELECT DISTINCT ON (product_id) id, product_id, url, alt, sort_order
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY product_id, sort_order ASC`

	var images []Image
	if err := r.db.SelectContext(ctx, &images, imageQuery, ids); err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	for _, img := range images {
		cover := img
		listings[index[img.ProductID]].Image = &cover
	}

	return listings, nil
}

func (r *repository) ListCategories(
	ctx context.Context,
	storeID string,
) ([]Category, error) {
	query := `
		SELECT id, store_id, name, slug, created_at
		FROM categories
		WHERE store_id = $1
		ORDER BY name ASC`

	categories := []Category{}
	if err := r.db.SelectContext(ctx, &categories, query, storeID); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *repository) ListTags(ctx context.Context, storeID string) ([]Tag, error) {
	query := `
		SELECT id, store_id, name, slug, created_at
		FROM tags
		WHERE store_id = $1
		ORDER BY name ASC`

	tags := []Tag{}
	if err := r.db.SelectContext(ctx, &tags, query, storeID); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

func (r *repository) CreateCategory(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (id, store_id, name, slug)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query, c.ID, c.StoreID, c.Name, c.Slug).
		Scan(&c.CreatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create category: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *repository) CreateTag(ctx context.Context, t *Tag) error {
	query := `
		INSERT INTO tags (id, store_id, name, slug)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query, t.ID, t.StoreID, t.Name, t.Slug).
		Scan(&t.CreatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tag: %w", err)
	}

	return nil
}

func (r *repository) ProductSlugExists(
	ctx context.Context,
	storeID, slug string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE store_id = $1 AND slug = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, storeID, slug); err != nil {
		return false, fmt.Errorf("check product slug: %w", err)
	}

	return exists, nil
}

// CreateProduct inserts the product, its tag links and images in one
// transaction. Category and tags must belong to the product's store.
func (r *repository) CreateProduct(
	ctx context.Context,
	p *Product,
	tagIDs []string,
	images []Image,
) error {
	beginner, ok := r.db.(core.TxBeginner)
	if !ok {
		return fmt.Errorf("create product: database handle cannot begin transactions")
	}

	return core.InTx(ctx, beginner, func(tx *sqlx.Tx) error {
		if p.CategoryID != nil {
			var exists bool
			err := tx.GetContext(ctx, &exists,
				`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND store_id = $2)`,
				*p.CategoryID, p.StoreID,
			)
			if err != nil {
				return fmt.Errorf("check category: %w", err)
			}
			if !exists {
				return fmt.Errorf("create product: unknown category: %w", core.ErrInvalidInput)
			}
		}

		if len(tagIDs) > 0 {
			var found int
			err := tx.GetContext(ctx, &found,
				`SELECT COUNT(*) FROM tags WHERE store_id = $1 AND id = ANY($2)`,
				p.StoreID, tagIDs,
			)
			if err != nil {
				return fmt.Errorf("check tags: %w", err)
			}
			if found != len(tagIDs) {
				return fmt.Errorf("create product: unknown tag: %w", core.ErrInvalidInput)
			}
		}

		err := tx.QueryRowxContext(ctx, `
			INSERT INTO products (id, store_id, category_id, name, slug,
			                      description, price_cents, stock, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at`,
			p.ID, p.StoreID, p.CategoryID, p.Name, p.Slug,
			p.Description, p.PriceCents, p.Stock, p.IsActive,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			if core.IsDuplicateKeyError(err) {
				return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
			}
			return fmt.Errorf("create product: %w", err)
		}

		for _, tagID := range tagIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)`,
				p.ID, tagID,
			); err != nil {
				return fmt.Errorf("link tag: %w", err)
			}
		}

		for _, img := range images {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO product_images (id, product_id, url, alt, sort_order)
				VALUES ($1, $2, $3, $4, $5)`,
				img.ID, p.ID, img.URL, img.Alt, img.SortOrder,
			); err != nil {
				return fmt.Errorf("add image: %w", err)
			}
		}

		return nil
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
