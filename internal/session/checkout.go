package session

import (
	"context"

	"github.com/rosema/rosema-backend/internal/cart"
	"github.com/rosema/rosema-backend/internal/checkout"
	"github.com/rosema/rosema-backend/internal/sales"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

const saleCompletedMessage = "Venta completada exitosamente"

// FinishedSale is the outcome of closing a register sale.
type FinishedSale struct {
	Summary checkout.OrderSummary `json:"summary"`
	Sale    *sales.Sale           `json:"sale"`
}

// Checkout freezes the storefront cart into an order summary. The cart is
// kept so the shopper can retry sending the order.
func (m *Manager) Checkout(ctx context.Context, sessionID string, customer *checkout.CustomerInfo, sink cart.Sink) (checkout.OrderSummary, error) {
	var summary checkout.OrderSummary
	err := m.Do(ctx, enums.SurfaceStorefront, sessionID, sink, func(e *cart.Engine) error {
		var err error
		summary, err = m.formatter.Format(e.Snapshot(), customer)
		return err
	})
	return summary, err
}

// FinishSale formats, records and then clears the register sale. If
// recording fails the register is left untouched.
func (m *Manager) FinishSale(ctx context.Context, registerID string, customer *checkout.CustomerInfo, sink cart.Sink) (*FinishedSale, error) {
	if m.sales == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sales service not configured")
	}
	var out *FinishedSale
	err := m.Do(ctx, enums.SurfaceRegister, registerID, sink, func(e *cart.Engine) error {
		summary, err := m.formatter.Format(e.Snapshot(), customer)
		if err != nil {
			notifyFailure(ctx, sink, err)
			return err
		}
		sale, err := m.sales.Record(ctx, e.Key(), summary)
		if err != nil {
			if sink != nil {
				sink.Notify(ctx, "Error al procesar la venta", enums.SeverityError)
			}
			return err
		}
		e.Clear(ctx)
		if sink != nil {
			sink.Notify(ctx, saleCompletedMessage, enums.SeveritySuccess)
		}
		out = &FinishedSale{Summary: summary, Sale: sale}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func notifyFailure(ctx context.Context, sink cart.Sink, err error) {
	if sink == nil {
		return
	}
	message := err.Error()
	if typed := pkgerrors.As(err); typed != nil {
		message = typed.Message()
	}
	sink.Notify(ctx, message, enums.SeverityWarning)
}
