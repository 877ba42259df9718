package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rosema/rosema-backend/pkg/enums"
)

// Sale is a completed register sale with its frozen totals.
type Sale struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Reference      string              `gorm:"column:reference;not null"`
	RegisterID     string              `gorm:"column:register_id;not null"`
	CustomerName   string              `gorm:"column:customer_name;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Status         enums.SaleStatus    `gorm:"column:status;not null"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	ItemCount      int                 `gorm:"column:item_count;not null"`
	Lines          []SaleLine          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Sale) TableName() string { return "sales" }

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
