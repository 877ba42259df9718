package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/db/models"
	"github.com/rosema/rosema-backend/pkg/enums"
)

// Sale is the API view of a recorded register sale.
type Sale struct {
	ID             uuid.UUID           `json:"id"`
	Reference      string              `json:"reference"`
	RegisterID     string              `json:"register_id"`
	CustomerName   string              `json:"customer_name"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	Status         enums.SaleStatus    `json:"status"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Total          decimal.Decimal     `json:"total"`
	ItemCount      int                 `json:"item_count"`
	Lines          []SaleLine          `json:"lines"`
	CreatedAt      time.Time           `json:"created_at"`
}

type SaleLine struct {
	ProductID    *uuid.UUID      `json:"product_id,omitempty"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Color        string          `json:"color,omitempty"`
	Size         string          `json:"size,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// SaleList is one page of sales, newest first.
type SaleList struct {
	Sales      []Sale `json:"sales"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// FromModel maps a persisted sale to its API view.
func FromModel(m models.Sale) Sale {
	lines := make([]SaleLine, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, SaleLine{
			ProductID:    l.ProductID,
			SKU:          l.SKU,
			Name:         l.Name,
			Color:        l.Color,
			Size:         l.Size,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineSubtotal: l.LineSubtotal,
		})
	}
	return Sale{
		ID:             m.ID,
		Reference:      m.Reference,
		RegisterID:     m.RegisterID,
		CustomerName:   m.CustomerName,
		PaymentMethod:  m.PaymentMethod,
		Status:         m.Status,
		Subtotal:       m.Subtotal,
		DiscountAmount: m.DiscountAmount,
		Total:          m.Total,
		ItemCount:      m.ItemCount,
		Lines:          lines,
		CreatedAt:      m.CreatedAt,
	}
}

// PeriodTotals aggregates the sales of one period.
type PeriodTotals struct {
	Sales   int64           `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// TopProduct is one catalog product ranked by sold revenue.
type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}
