package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleLine captures one sold line. ProductID is nil for ad-hoc items.
type SaleLine struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID       uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	Position     int             `gorm:"column:position;not null"`
	ProductID    *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	SKU          string          `gorm:"column:sku;not null"`
	Name         string          `gorm:"column:name;not null"`
	Color        string          `gorm:"column:color;not null;default:''"`
	Size         string          `gorm:"column:size;not null;default:''"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineSubtotal decimal.Decimal `gorm:"column:line_subtotal;type:numeric(12,2);not null"`
}

func (SaleLine) TableName() string { return "sale_lines" }

func (l *SaleLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
