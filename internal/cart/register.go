package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

// AdHocInput describes a hand-priced register line.
type AdHocInput struct {
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
	VariantLabel string
}

// AddAdHocItem appends a line that is not backed by the catalog. Such lines
// never merge, not even with an identical ad-hoc line.
func (e *Engine) AddAdHocItem(ctx context.Context, in AdHocInput) (Snapshot, error) {
	if !e.caps.AdHocItems {
		return Snapshot{}, e.fail(ctx, opAddAdHoc, errCapabilityDisabled("ad-hoc items"))
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Snapshot{}, e.fail(ctx, opAddAdHoc, pkgerrors.New(pkgerrors.CodeValidation, "El nombre del producto es requerido"))
	}
	if !in.UnitPrice.IsPositive() {
		return Snapshot{}, e.fail(ctx, opAddAdHoc, pkgerrors.New(pkgerrors.CodeValidation, "El precio es requerido"))
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return Snapshot{}, e.fail(ctx, opAddAdHoc, errInvalidQuantity())
	}
	if label := strings.TrimSpace(in.VariantLabel); label != "" {
		name = fmt.Sprintf("%s (%s)", name, label)
	}

	line := LineItem{
		LineID:       e.newLineID(),
		DisplayName:  name,
		UnitPrice:    in.UnitPrice,
		Quantity:     qty,
		StockCeiling: UnboundedStock,
		SKU:          fmt.Sprintf("QUICK-%d", e.now().UnixMilli()),
		Category:     AdHocCategory,
	}
	e.items = append(e.items, line)
	return e.commit(ctx, opAddAdHoc, fmt.Sprintf("%s agregado a la venta", name)), nil
}

// ApplyDiscount replaces any previous discount. The amount is computed
// against the current subtotal and kept as is afterwards; totals clamp at zero.
func (e *Engine) ApplyDiscount(ctx context.Context, value decimal.Decimal, kind enums.DiscountKind) (Snapshot, error) {
	if !e.caps.ManualDiscount {
		return Snapshot{}, e.fail(ctx, opApplyDiscount, errCapabilityDisabled("manual discount"))
	}
	discount, err := computeDiscount(value, kind, subtotalOf(e.items))
	if err != nil {
		return Snapshot{}, e.fail(ctx, opApplyDiscount, err)
	}
	e.discount = discount
	return e.commit(ctx, opApplyDiscount, "Descuento aplicado"), nil
}

// RemoveDiscount resets the manual discount to zero.
func (e *Engine) RemoveDiscount(ctx context.Context) (Snapshot, error) {
	if !e.caps.ManualDiscount {
		return Snapshot{}, e.fail(ctx, opRemoveDiscount, errCapabilityDisabled("manual discount"))
	}
	e.discount = Discount{}
	return e.commit(ctx, opRemoveDiscount, "Descuento eliminado"), nil
}
