// AngelaMos | 2026
// dto.go

package catalog

import (
	"fmt"
)

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type ImageInput struct {
	URL string `json:"url" validate:"required,url,max=2048"`
	Alt string `json:"alt" validate:"max=255"`
}

type CreateProductRequest struct {
	Name        string       `json:"name"        validate:"required,min=1,max=200"`
	Description string       `json:"description" validate:"max=5000"`
	PriceCents  int64        `json:"price_cents" validate:"gte=0"`
	Stock       int          `json:"stock"       validate:"gte=0"`
	CategoryID  *string      `json:"category_id" validate:"omitempty,uuid"`
	TagIDs      []string     `json:"tag_ids"     validate:"max=50,dive,uuid"`
	Images      []ImageInput `json:"images"      validate:"max=20,dive"`
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
