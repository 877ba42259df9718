package controllers

import (
	"context"
	"net/http"

	"github.com/rosema/rosema-backend/api/responses"
	"github.com/rosema/rosema-backend/api/validators"
	"github.com/rosema/rosema-backend/internal/cart"
	"github.com/rosema/rosema-backend/internal/checkout"
	"github.com/rosema/rosema-backend/internal/notify"
	"github.com/rosema/rosema-backend/internal/session"
	"github.com/rosema/rosema-backend/pkg/enums"
	"github.com/rosema/rosema-backend/pkg/logger"
)

// Sessions is the slice of the session manager the cart endpoints use.
type Sessions interface {
	Do(ctx context.Context, surface enums.Surface, id string, sink cart.Sink, fn func(*cart.Engine) error) error
	Checkout(ctx context.Context, sessionID string, customer *checkout.CustomerInfo, sink cart.Sink) (checkout.OrderSummary, error)
	FinishSale(ctx context.Context, registerID string, customer *checkout.CustomerInfo, sink cart.Sink) (*session.FinishedSale, error)
}

type keyFunc func(r *http.Request) string

type mutation func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error)

// CustomerRequest carries the optional checkout customer fields.
type CustomerRequest struct {
	CustomerName  string `json:"customer_name" validate:"max=120"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=efectivo tarjeta transferencia mercadopago"`
}

func (c CustomerRequest) info() *checkout.CustomerInfo {
	return &checkout.CustomerInfo{
		Name:          validators.SanitizeString(c.CustomerName, 120),
		PaymentMethod: enums.PaymentMethod(c.PaymentMethod),
	}
}

// runSession applies fn to the engine and writes the resulting snapshot
// along with any notices raised during the call.
func runSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger, sessions Sessions, surface enums.Surface, key string, status int, fn mutation) {
	ctx := r.Context()
	if logg != nil {
		ctx = logg.WithSurface(ctx, string(surface))
	}
	collector := notify.NewCollector()
	var snap cart.Snapshot
	err := sessions.Do(ctx, surface, key, collector, func(e *cart.Engine) error {
		var err error
		snap, err = fn(ctx, e)
		return err
	})
	if err != nil {
		responses.WriteErrorWithNotices(ctx, logg, w, err, noticesOf(collector))
		return
	}
	responses.WriteSuccessWithNotices(w, status, snap, noticesOf(collector))
}

func readSnapshot(_ context.Context, e *cart.Engine) (cart.Snapshot, error) {
	return e.Snapshot(), nil
}

// decodeOptional decodes the body only when one was sent.
func decodeOptional(r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return validators.DecodeJSONBody(r, dest)
}

func noticesOf(c *notify.Collector) any {
	notices := c.Notifications()
	if len(notices) == 0 {
		return nil
	}
	return notices
}
