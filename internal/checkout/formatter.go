package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/rosema/rosema-backend/internal/cart"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

// Formatter turns engine snapshots into order summaries.
type Formatter struct {
	now func() time.Time
}

// NewFormatter builds a formatter. A nil clock uses time.Now.
func NewFormatter(now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{now: now}
}

// Format freezes snapshot into an OrderSummary. Totals are copied from the
// snapshot, never recomputed.
func (f *Formatter) Format(snapshot cart.Snapshot, customer *CustomerInfo) (OrderSummary, error) {
	if snapshot.IsEmpty() {
		if snapshot.Surface == enums.SurfaceRegister {
			return OrderSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "No hay productos en la venta")
		}
		return OrderSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "El carrito está vacío")
	}

	info := CustomerInfo{Name: DefaultCustomerName, PaymentMethod: enums.PaymentMethodCash}
	if customer != nil {
		if name := strings.TrimSpace(customer.Name); name != "" {
			info.Name = name
		}
		if customer.PaymentMethod != "" {
			if !customer.PaymentMethod.IsValid() {
				return OrderSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "Método de pago inválido").
					WithDetails(map[string]any{"payment_method": customer.PaymentMethod})
			}
			info.PaymentMethod = customer.PaymentMethod
		}
	}

	now := f.now()
	lines := make([]SummaryLine, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		line := SummaryLine{
			Name:         item.DisplayName,
			Variant:      item.Variant.Label(),
			Color:        item.Variant.Color,
			Size:         item.Variant.Size,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineSubtotal: item.Subtotal(),
			SKU:          item.SKU,
		}
		if item.ProductRef != nil {
			ref := *item.ProductRef
			line.ProductRef = &ref
		}
		lines = append(lines, line)
	}

	return OrderSummary{
		Reference:      Reference(now),
		Surface:        snapshot.Surface,
		Customer:       info,
		Lines:          lines,
		Subtotal:       snapshot.Subtotal,
		DiscountAmount: snapshot.DiscountAmount,
		Total:          snapshot.Total,
		ItemCount:      snapshot.ItemCount,
		CreatedAt:      now.UTC(),
	}, nil
}

// Reference renders "#YYMMDD" followed by the last four digits of the unix
// millisecond clock.
func Reference(t time.Time) string {
	return fmt.Sprintf("#%s%04d", t.Format("060102"), t.UnixMilli()%10000)
}
