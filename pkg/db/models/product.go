package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rosema/rosema-backend/pkg/enums"
)

// Product is a catalog listing. Images keep their display order; the first
// entry is the cover image.
type Product struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name          string                `gorm:"column:name;not null"`
	Description   string                `gorm:"column:description;not null;default:''"`
	Price         decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice decimal.NullDecimal   `gorm:"column:original_price;type:numeric(12,2)"`
	Stock         int                   `gorm:"column:stock;not null;default:0"`
	SKU           string                `gorm:"column:sku;not null;uniqueIndex:products_sku_key"`
	Category      enums.ProductCategory `gorm:"column:category;not null"`
	Images        []string              `gorm:"column:images;serializer:json;type:jsonb;not null"`
	Colors        []string              `gorm:"column:colors;serializer:json;type:jsonb;not null"`
	Sizes         []string              `gorm:"column:sizes;serializer:json;type:jsonb;not null"`
	Tags          []string              `gorm:"column:tags;serializer:json;type:jsonb;not null"`
	Featured      bool                  `gorm:"column:featured;not null;default:false"`
	OnSale        bool                  `gorm:"column:on_sale;not null;default:false"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ImageRef returns the cover image, if any.
func (p Product) ImageRef() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
