// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"
)

type Category struct {
	ID        string    `db:"id"         json:"id"`
	StoreID   string    `db:"store_id"   json:"store_id"`
	Name      string    `db:"name"       json:"name"`
	Slug      string    `db:"slug"       json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Tag struct {
	ID        string    `db:"id"         json:"id"`
	StoreID   string    `db:"store_id"   json:"store_id"`
	Name      string    `db:"name"       json:"name"`
	Slug      string    `db:"slug"       json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Image struct {
	ID        string `db:"id"         json:"id"`
	ProductID string `db:"product_id" json:"product_id"`
	URL       string `db:"url"        json:"url"`
	Alt       string `db:"alt"        json:"alt"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
}

type Product struct {
	ID          string    `db:"id"          json:"id"`
	StoreID     string    `db:"store_id"    json:"store_id"`
	CategoryID  *string   `db:"category_id" json:"category_id"`
	Name        string    `db:"name"        json:"name"`
	Slug        string    `db:"slug"        json:"slug"`
	Description string    `db:"description" json:"description"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Stock       int       `db:"stock"       json:"stock"`
	IsActive    bool      `db:"is_active"   json:"is_active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// ProductListing is a product with its category, tags and cover image, as
// shown in the product table.
type ProductListing struct {
	Product
	Category *Category `json:"category"`
	Tags     []Tag     `json:"tags"`
	Image    *Image    `json:"image"`
}

func (p ProductListing) Price() string {
	return formatCents(p.PriceCents)
}
