package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rosema/rosema-backend/api/responses"
	"github.com/rosema/rosema-backend/api/validators"
	"github.com/rosema/rosema-backend/internal/catalog"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
	"github.com/rosema/rosema-backend/pkg/logger"
)

// CatalogList lists products, or searches them when q is present.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		if term := validators.SanitizeString(query.Get("q"), 100); term != "" {
			products, err := svc.Search(r.Context(), term)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, products)
			return
		}

		products, err := svc.List(r.Context(), catalog.ListParams{
			Category: enums.ProductCategory(strings.TrimSpace(query.Get("category"))),
			OnSale:   query.Get("on_sale") == "true",
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func CatalogProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if product == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Producto no encontrado"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CatalogProductBySKU backs the register barcode lookup.
func CatalogProductBySKU(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku := validators.SanitizeString(chi.URLParam(r, "sku"), 64)
		product, err := svc.GetBySKU(r.Context(), sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if product == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Producto no encontrado"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CatalogLowStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threshold, err := validators.ParseQueryInt(r, "threshold", -1, -1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.LowStock(r.Context(), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
