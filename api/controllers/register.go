package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/api/responses"
	"github.com/rosema/rosema-backend/api/validators"
	"github.com/rosema/rosema-backend/internal/cart"
	"github.com/rosema/rosema-backend/internal/checkout"
	"github.com/rosema/rosema-backend/internal/notify"
	"github.com/rosema/rosema-backend/internal/sales"
	"github.com/rosema/rosema-backend/pkg/enums"
	"github.com/rosema/rosema-backend/pkg/logger"
)

// ScanRequest adds the product matching a scanned barcode.
type ScanRequest struct {
	SKU      string `json:"sku" validate:"required,max=64"`
	Quantity int    `json:"quantity" validate:"gte=0,max=999"`
}

// QuickItemRequest adds an ad-hoc line with a manual price.
type QuickItemRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity" validate:"gte=0,max=999"`
	VariantLabel string          `json:"variant_label" validate:"max=60"`
}

// DiscountRequest sets the manual sale discount.
type DiscountRequest struct {
	Value decimal.Decimal `json:"value"`
	Kind  string          `json:"kind" validate:"required,oneof=amount percentage"`
}

// FinishSaleResponse is returned once a register sale is recorded.
type FinishSaleResponse struct {
	Summary checkout.OrderSummary `json:"summary"`
	Sale    *sales.Sale           `json:"sale"`
	Receipt string                `json:"receipt"`
}

func registerKey(r *http.Request) string {
	return chi.URLParam(r, "registerID")
}

func RegisterFetch(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return fetchHandler(sessions, logg, enums.SurfaceRegister, registerKey)
}

func RegisterAddItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return addItemHandler(sessions, logg, enums.SurfaceRegister, registerKey)
}

func RegisterUpdateItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return updateItemHandler(sessions, logg, enums.SurfaceRegister, registerKey)
}

func RegisterRemoveItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return removeItemHandler(sessions, logg, enums.SurfaceRegister, registerKey)
}

func RegisterClear(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return clearHandler(sessions, logg, enums.SurfaceRegister, registerKey)
}

func RegisterScan(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ScanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := body.Quantity
		if qty == 0 {
			qty = 1
		}
		sku := validators.SanitizeString(body.SKU, 64)
		runSession(w, r, logg, sessions, enums.SurfaceRegister, registerKey(r), http.StatusOK, func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error) {
			return e.AddBySKU(ctx, sku, qty)
		})
	}
}

func RegisterAddQuickItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body QuickItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in := cart.AdHocInput{
			Name:         validators.SanitizeString(body.Name, 120),
			UnitPrice:    body.Price,
			Quantity:     body.Quantity,
			VariantLabel: validators.SanitizeString(body.VariantLabel, 60),
		}
		runSession(w, r, logg, sessions, enums.SurfaceRegister, registerKey(r), http.StatusOK, func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error) {
			return e.AddAdHocItem(ctx, in)
		})
	}
}

func RegisterApplyDiscount(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body DiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind := enums.DiscountKind(body.Kind)
		runSession(w, r, logg, sessions, enums.SurfaceRegister, registerKey(r), http.StatusOK, func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error) {
			return e.ApplyDiscount(ctx, body.Value, kind)
		})
	}
}

func RegisterRemoveDiscount(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runSession(w, r, logg, sessions, enums.SurfaceRegister, registerKey(r), http.StatusOK, func(ctx context.Context, e *cart.Engine) (cart.Snapshot, error) {
			return e.RemoveDiscount(ctx)
		})
	}
}

// RegisterFinishSale records the sale, clears the register and returns the
// printable receipt.
func RegisterFinishSale(sessions Sessions, renderer *checkout.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		registerID := registerKey(r)
		if logg != nil {
			ctx = logg.WithRegisterID(ctx, registerID)
		}
		var body CustomerRequest
		if err := decodeOptional(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		collector := notify.NewCollector()
		finished, err := sessions.FinishSale(ctx, registerID, body.info(), collector)
		if err != nil {
			responses.WriteErrorWithNotices(ctx, logg, w, err, noticesOf(collector))
			return
		}
		receipt, err := renderer.Receipt(finished.Summary)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "sale.receipt_render_failed", err)
			}
		}
		responses.WriteSuccessWithNotices(w, http.StatusCreated, FinishSaleResponse{
			Summary: finished.Summary,
			Sale:    finished.Sale,
			Receipt: receipt,
		}, noticesOf(collector))
	}
}
