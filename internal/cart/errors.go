package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

// StockDetails is attached to INSUFFICIENT_STOCK errors.
type StockDetails struct {
	Requested int `json:"requested"`
	Available int `json:"available"`
}

func errIncompleteSelection() error {
	return pkgerrors.New(pkgerrors.CodeIncompleteSelection, "Por favor selecciona color y talla")
}

func errMergeInsufficientStock(requested, available int) error {
	msg := fmt.Sprintf("Solo puedes agregar %d unidades más", available)
	if available <= 0 {
		msg = "No hay más stock disponible"
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, msg).
		WithDetails(StockDetails{Requested: requested, Available: available})
}

func errInsufficientStock(requested, available int) error {
	msg := fmt.Sprintf("Solo hay %d unidades disponibles", available)
	if available <= 0 {
		msg = "Producto sin stock disponible"
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, msg).
		WithDetails(StockDetails{Requested: requested, Available: available})
}

func errLineNotFound(lineID string) error {
	return pkgerrors.New(pkgerrors.CodeLineNotFound, "Producto no encontrado en el carrito").
		WithDetails(map[string]any{"line_id": lineID})
}

func errProductNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Producto no encontrado")
}

func errInvalidDiscount(msg string, value decimal.Decimal, kind enums.DiscountKind) error {
	return pkgerrors.New(pkgerrors.CodeInvalidDiscount, msg).
		WithDetails(map[string]any{"value": value.String(), "kind": kind})
}

func errCapabilityDisabled(capability string) error {
	return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s is not available on this surface", capability))
}

func errInvalidQuantity() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "La cantidad debe ser mayor a 0")
}

// IsInsufficientStock reports whether err rejected a quantity above the stock ceiling.
func IsInsufficientStock(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock)
}

func IsIncompleteSelection(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeIncompleteSelection)
}

func IsLineNotFound(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeLineNotFound)
}

func IsInvalidDiscount(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeInvalidDiscount)
}

// StockDetailsOf extracts the requested/available pair from a stock error.
func StockDetailsOf(err error) (StockDetails, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		return StockDetails{}, false
	}
	details, ok := typed.Details().(StockDetails)
	return details, ok
}
