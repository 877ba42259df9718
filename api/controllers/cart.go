package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rosema/rosema-backend/api/middleware"
	"github.com/rosema/rosema-backend/api/responses"
	"github.com/rosema/rosema-backend/api/validators"
	"github.com/rosema/rosema-backend/internal/cart"
	"github.com/rosema/rosema-backend/internal/checkout"
	"github.com/rosema/rosema-backend/internal/notify"
	"github.com/rosema/rosema-backend/pkg/enums"
	"github.com/rosema/rosema-backend/pkg/logger"
)

// AddItemRequest adds a catalog product. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Color     string `json:"color" validate:"max=40"`
	Size      string `json:"size" validate:"max=20"`
	Quantity  int    `json:"quantity" validate:"gte=0,max=999"`
}

// UpdateQuantityRequest sets a line quantity; zero removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,max=999"`
}

// CheckoutResponse is returned by the storefront checkout.
type CheckoutResponse struct {
	Summary     checkout.OrderSummary `json:"summary"`
	Message     string                `json:"message"`
	WhatsAppURL string                `json:"whatsapp_url"`
}

func cartSessionKey(r *http.Request) string {
	return middleware.CartSessionFromContext(r.Context())
}

func CartFetch(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return fetchHandler(sessions, logg, enums.SurfaceStorefront, cartSessionKey)
}

func CartAddItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return addItemHandler(sessions, logg, enums.SurfaceStorefront, cartSessionKey)
}

func CartUpdateItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return updateItemHandler(sessions, logg, enums.SurfaceStorefront, cartSessionKey)
}

func CartRemoveItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return removeItemHandler(sessions, logg, enums.SurfaceStorefront, cartSessionKey)
}

func CartClear(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return clearHandler(sessions, logg, enums.SurfaceStorefront, cartSessionKey)
}

// CartCheckout builds the order summary and the WhatsApp message for it.
// The cart is left intact.
func CartCheckout(sessions Sessions, renderer *checkout.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var body CustomerRequest
		if err := decodeOptional(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		collector := notify.NewCollector()
		summary, err := sessions.Checkout(ctx, cartSessionKey(r), body.info(), collector)
		if err != nil {
			responses.WriteErrorWithNotices(ctx, logg, w, err, noticesOf(collector))
			return
		}
		message, err := renderer.OrderMessage(summary)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{"reference": summary.Reference, "total": summary.Total.StringFixed(2)}), "cart.checkout")
		}
		responses.WriteSuccessWithNotices(w, http.StatusOK, CheckoutResponse{
			Summary:     summary,
			Message:     message,
			WhatsAppURL: checkout.WhatsAppURL(renderer.Store().WhatsAppPhone, message),
		}, noticesOf(collector))
	}
}

func fetchHandler(sessions Sessions, logg *logger.Logger, surface enums.Surface, key keyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runSession(w, r, logg, sessions, surface, key(r), http.StatusOK, readSnapshot)
	}
}

func addItemHandler(sessions Sessions, logg *logger.Logger, surface enums.Surface, key keyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body AddItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := body.Quantity
		if qty == 0 {
			qty = 1
		}
		variant := cart.Variant{Color: body.Color, Size: body.Size}
		runSession(w, r, logg, sessions, surface, key(r), http.StatusOK, func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error) {
			return e.AddItem(ctx, productID, variant, qty)
		})
	}
}

func updateItemHandler(sessions Sessions, logg *logger.Logger, surface enums.Surface, key keyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID := chi.URLParam(r, "lineID")
		runSession(w, r, logg, sessions, surface, key(r), http.StatusOK, func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error) {
			return e.UpdateQuantity(ctx, lineID, body.Quantity)
		})
	}
}

func removeItemHandler(sessions Sessions, logg *logger.Logger, surface enums.Surface, key keyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineID")
		runSession(w, r, logg, sessions, surface, key(r), http.StatusOK, func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error) {
			return e.RemoveItem(ctx, lineID)
		})
	}
}

func clearHandler(sessions Sessions, logg *logger.Logger, surface enums.Surface, key keyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runSession(w, r, logg, sessions, surface, key(r), http.StatusOK, func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error) {
			return e.Clear(ctx), nil
		})
	}
}
