package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/enums"
)

// DefaultCustomerName is used when a sale is not attributed to anyone.
const DefaultCustomerName = "Cliente General"

// CustomerInfo is the optional buyer data captured at checkout.
type CustomerInfo struct {
	Name          string              `json:"name"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// SummaryLine is one finalized line of an order or sale.
type SummaryLine struct {
	ProductRef   *uuid.UUID      `json:"product_ref,omitempty"`
	Name         string          `json:"name"`
	Variant      string          `json:"variant,omitempty"`
	Color        string          `json:"color,omitempty"`
	Size         string          `json:"size,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
	SKU          string          `json:"sku"`
}

// OrderSummary is the frozen result of a checkout. Reference is only unique
// for display within a calendar day.
type OrderSummary struct {
	Reference      string          `json:"reference"`
	Surface        enums.Surface   `json:"surface"`
	Customer       CustomerInfo    `json:"customer"`
	Lines          []SummaryLine   `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
	CreatedAt      time.Time       `json:"created_at"`
}
