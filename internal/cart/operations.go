package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rosema/rosema-backend/internal/catalog"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

const (
	opAddItem        = "add_item"
	opAddBySKU       = "add_by_sku"
	opAddAdHoc       = "add_ad_hoc"
	opUpdateQuantity = "update_quantity"
	opRemoveItem     = "remove_item"
	opApplyDiscount  = "apply_discount"
	opRemoveDiscount = "remove_discount"
	opClear          = "clear"
)

// AddItem adds qty units of a catalog product, merging into an existing line
// with the same product and variant.
func (e *Engine) AddItem(ctx context.Context, productID uuid.UUID, variant Variant, qty int) (Snapshot, error) {
	if qty <= 0 {
		return Snapshot{}, e.fail(ctx, opAddItem, errInvalidQuantity())
	}
	variant = variant.normalized()
	if e.caps.RequireVariant && !variant.IsComplete() {
		return Snapshot{}, e.fail(ctx, opAddItem, errIncompleteSelection())
	}
	product, err := e.catalog.GetByID(ctx, productID)
	if err != nil {
		return Snapshot{}, e.fail(ctx, opAddItem, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product"))
	}
	if product == nil {
		return Snapshot{}, e.fail(ctx, opAddItem, errProductNotFound())
	}
	return e.addProduct(ctx, opAddItem, product, variant, qty)
}

// AddBySKU adds a product found by exact SKU, as a barcode scan does.
func (e *Engine) AddBySKU(ctx context.Context, sku string, qty int) (Snapshot, error) {
	if qty <= 0 {
		return Snapshot{}, e.fail(ctx, opAddBySKU, errInvalidQuantity())
	}
	if e.caps.RequireVariant {
		return Snapshot{}, e.fail(ctx, opAddBySKU, errIncompleteSelection())
	}
	product, err := e.catalog.GetBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return Snapshot{}, e.fail(ctx, opAddBySKU, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product by sku"))
	}
	if product == nil {
		return Snapshot{}, e.fail(ctx, opAddBySKU, errProductNotFound())
	}
	return e.addProduct(ctx, opAddBySKU, product, Variant{}, qty)
}

func (e *Engine) addProduct(ctx context.Context, operation string, product *catalog.Product, variant Variant, qty int) (Snapshot, error) {
	for i, item := range e.items {
		if !item.matches(product.ID, variant) {
			continue
		}
		newQty := item.Quantity + qty
		if newQty > item.StockCeiling {
			return Snapshot{}, e.fail(ctx, operation, errMergeInsufficientStock(qty, item.StockCeiling-item.Quantity))
		}
		e.items[i].Quantity = newQty
		return e.commit(ctx, operation, e.addedMessage(item.DisplayName)), nil
	}

	ceiling := product.Stock
	if ceiling < 0 {
		ceiling = 0
	}
	if qty > ceiling {
		return Snapshot{}, e.fail(ctx, operation, errInsufficientStock(qty, ceiling))
	}

	ref := product.ID
	line := LineItem{
		LineID:       e.newLineID(),
		ProductRef:   &ref,
		DisplayName:  product.Name,
		UnitPrice:    product.Price,
		Variant:      variant,
		Quantity:     qty,
		StockCeiling: ceiling,
		SKU:          product.SKU,
		ImageRef:     product.ImageRef,
		Category:     string(product.Category),
	}
	if product.OriginalPrice != nil {
		original := *product.OriginalPrice
		line.OriginalUnitPrice = &original
	}
	e.items = append(e.items, line)
	return e.commit(ctx, operation, e.addedMessage(line.DisplayName)), nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, lineID string, qty int) (Snapshot, error) {
	if qty <= 0 {
		return e.remove(ctx, opUpdateQuantity, lineID)
	}
	idx := e.indexOf(lineID)
	if idx < 0 {
		return Snapshot{}, e.fail(ctx, opUpdateQuantity, errLineNotFound(lineID))
	}
	if qty > e.items[idx].StockCeiling {
		return Snapshot{}, e.fail(ctx, opUpdateQuantity, errInsufficientStock(qty, e.items[idx].StockCeiling))
	}
	e.items[idx].Quantity = qty
	return e.commit(ctx, opUpdateQuantity, "Cantidad actualizada"), nil
}

// RemoveItem deletes a line. Unknown ids are reported, not ignored.
func (e *Engine) RemoveItem(ctx context.Context, lineID string) (Snapshot, error) {
	return e.remove(ctx, opRemoveItem, lineID)
}

func (e *Engine) remove(ctx context.Context, operation, lineID string) (Snapshot, error) {
	idx := e.indexOf(lineID)
	if idx < 0 {
		return Snapshot{}, e.fail(ctx, operation, errLineNotFound(lineID))
	}
	removed := e.items[idx]
	e.items = append(e.items[:idx:idx], e.items[idx+1:]...)
	return e.commit(ctx, operation, fmt.Sprintf("Producto removido: %s", removed.DisplayName)), nil
}

// Clear empties the lines and resets the discount.
func (e *Engine) Clear(ctx context.Context) Snapshot {
	e.items = []LineItem{}
	e.discount = Discount{}
	return e.commit(ctx, opClear, e.clearedMessage())
}

func (e *Engine) addedMessage(name string) string {
	if e.caps.AdHocItems {
		return fmt.Sprintf("%s agregado a la venta", name)
	}
	return "Producto agregado al carrito"
}

func (e *Engine) clearedMessage() string {
	if e.caps.AdHocItems {
		return "Venta limpiada"
	}
	return "Carrito vaciado"
}
