package cart

import (
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Discount is a manual register discount. Amount is fixed when the discount
// is applied and is not recomputed when the sale changes afterwards.
type Discount struct {
	Kind   enums.DiscountKind `json:"kind,omitempty"`
	Value  decimal.Decimal    `json:"value"`
	Amount decimal.Decimal    `json:"amount"`
}

func (d Discount) IsZero() bool {
	return d.Amount.IsZero() && d.Value.IsZero()
}

// computeDiscount validates value against subtotal and returns the resulting discount.
func computeDiscount(value decimal.Decimal, kind enums.DiscountKind, subtotal decimal.Decimal) (Discount, error) {
	if !kind.IsValid() {
		return Discount{}, errInvalidDiscount("Tipo de descuento inválido", value, kind)
	}
	if value.IsNegative() {
		return Discount{}, errInvalidDiscount("El descuento no puede ser negativo", value, kind)
	}
	var amount decimal.Decimal
	switch kind {
	case enums.DiscountKindPercentage:
		if value.GreaterThan(hundred) {
			return Discount{}, errInvalidDiscount("El porcentaje no puede superar 100", value, kind)
		}
		amount = subtotal.Mul(value).Div(hundred).Round(2)
	default:
		if value.GreaterThan(subtotal) {
			return Discount{}, errInvalidDiscount("El descuento no puede superar el subtotal", value, kind)
		}
		amount = value
	}
	return Discount{Kind: kind, Value: value, Amount: amount}, nil
}
