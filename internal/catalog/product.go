package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/db/models"
	"github.com/rosema/rosema-backend/pkg/enums"
)

// Product is the read-only catalog view handed to carts and API clients.
type Product struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Price         decimal.Decimal       `json:"price"`
	OriginalPrice *decimal.Decimal      `json:"original_price,omitempty"`
	Stock         int                   `json:"stock"`
	SKU           string                `json:"sku"`
	ImageRef      string                `json:"image_ref,omitempty"`
	Images        []string              `json:"images"`
	Colors        []string              `json:"colors"`
	Sizes         []string              `json:"sizes"`
	Category      enums.ProductCategory `json:"category"`
	Tags          []string              `json:"tags"`
	Featured      bool                  `json:"featured"`
	OnSale        bool                  `json:"on_sale"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// FromModel maps a stored row onto the catalog view.
func FromModel(m models.Product) Product {
	p := Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		SKU:         m.SKU,
		ImageRef:    m.ImageRef(),
		Images:      nonNil(m.Images),
		Colors:      nonNil(m.Colors),
		Sizes:       nonNil(m.Sizes),
		Category:    m.Category,
		Tags:        nonNil(m.Tags),
		Featured:    m.Featured,
		OnSale:      m.OnSale,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.OriginalPrice.Valid {
		original := m.OriginalPrice.Decimal
		p.OriginalPrice = &original
	}
	return p
}

func fromModels(rows []models.Product) []Product {
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
