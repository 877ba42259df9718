package cart

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnboundedStock is the ceiling given to lines that are not backed by catalog stock.
const UnboundedStock = math.MaxInt32

// AdHocCategory labels lines created by hand at the register.
const AdHocCategory = "Producto Rápido"

// Variant is the color and size chosen for a storefront line.
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// IsComplete reports whether both color and size were chosen.
func (v Variant) IsComplete() bool {
	return strings.TrimSpace(v.Color) != "" && strings.TrimSpace(v.Size) != ""
}

func (v Variant) IsZero() bool {
	return v.Color == "" && v.Size == ""
}

// Label renders the variant as "Color / Size", skipping empty parts.
func (v Variant) Label() string {
	parts := make([]string, 0, 2)
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	if v.Size != "" {
		parts = append(parts, v.Size)
	}
	return strings.Join(parts, " / ")
}

func (v Variant) normalized() Variant {
	return Variant{Color: strings.TrimSpace(v.Color), Size: strings.TrimSpace(v.Size)}
}

// LineItem is one entry of a cart or register sale.
type LineItem struct {
	LineID            string           `json:"line_id"`
	ProductRef        *uuid.UUID       `json:"product_ref,omitempty"`
	DisplayName       string           `json:"display_name"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	OriginalUnitPrice *decimal.Decimal `json:"original_unit_price,omitempty"`
	Variant           Variant          `json:"variant"`
	Quantity          int              `json:"quantity"`
	StockCeiling      int              `json:"stock_ceiling"`
	SKU               string           `json:"sku"`
	ImageRef          string           `json:"image_ref,omitempty"`
	Category          string           `json:"category,omitempty"`
}

// IsAdHoc reports whether the line is not backed by a catalog product.
func (l LineItem) IsAdHoc() bool {
	return l.ProductRef == nil
}

// Subtotal is unit price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// matches reports whether the line merges with a new selection of productID and variant.
func (l LineItem) matches(productID uuid.UUID, variant Variant) bool {
	return l.ProductRef != nil && *l.ProductRef == productID && l.Variant == variant
}

func (l LineItem) clone() LineItem {
	out := l
	if l.ProductRef != nil {
		ref := *l.ProductRef
		out.ProductRef = &ref
	}
	if l.OriginalUnitPrice != nil {
		original := *l.OriginalUnitPrice
		out.OriginalUnitPrice = &original
	}
	return out
}
