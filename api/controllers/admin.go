package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/api/responses"
	"github.com/rosema/rosema-backend/api/validators"
	"github.com/rosema/rosema-backend/internal/catalog"
	"github.com/rosema/rosema-backend/internal/dashboard"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
	"github.com/rosema/rosema-backend/pkg/logger"
)

type createProductRequest struct {
	Name          string           `json:"name" validate:"required,max=160"`
	Description   string           `json:"description" validate:"max=2000"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         int              `json:"stock" validate:"gte=0"`
	SKU           string           `json:"sku" validate:"required,max=64"`
	Category      string           `json:"category" validate:"required"`
	Images        []string         `json:"images" validate:"max=20,dive,max=500"`
	Colors        []string         `json:"colors" validate:"max=30,dive,max=40"`
	Sizes         []string         `json:"sizes" validate:"max=30,dive,max=20"`
	Tags          []string         `json:"tags" validate:"max=30,dive,max=40"`
	Featured      bool             `json:"featured"`
	OnSale        bool             `json:"on_sale"`
}

func (r createProductRequest) toInput() (catalog.ProductInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return catalog.ProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return catalog.ProductInput{
		Name:          validators.SanitizeString(r.Name, 160),
		Description:   validators.SanitizeString(r.Description, 2000),
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Stock:         r.Stock,
		SKU:           validators.SanitizeString(r.SKU, 64),
		Category:      category,
		Images:        r.Images,
		Colors:        r.Colors,
		Sizes:         r.Sizes,
		Tags:          r.Tags,
		Featured:      r.Featured,
		OnSale:        r.OnSale,
	}, nil
}

type updateProductRequest struct {
	Name               *string          `json:"name,omitempty" validate:"omitempty,max=160"`
	Description        *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty"`
	ClearOriginalPrice bool             `json:"clear_original_price"`
	Stock              *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	SKU                *string          `json:"sku,omitempty" validate:"omitempty,max=64"`
	Category           *string          `json:"category,omitempty"`
	Images             *[]string        `json:"images,omitempty" validate:"omitempty,max=20,dive,max=500"`
	Colors             *[]string        `json:"colors,omitempty" validate:"omitempty,max=30,dive,max=40"`
	Sizes              *[]string        `json:"sizes,omitempty" validate:"omitempty,max=30,dive,max=20"`
	Tags               *[]string        `json:"tags,omitempty" validate:"omitempty,max=30,dive,max=40"`
	Featured           *bool            `json:"featured,omitempty"`
	OnSale             *bool            `json:"on_sale,omitempty"`
}

func (r updateProductRequest) toUpdate() (catalog.ProductUpdate, error) {
	update := catalog.ProductUpdate{
		Name:               r.Name,
		Description:        r.Description,
		Price:              r.Price,
		OriginalPrice:      r.OriginalPrice,
		ClearOriginalPrice: r.ClearOriginalPrice,
		Stock:              r.Stock,
		SKU:                r.SKU,
		Images:             r.Images,
		Colors:             r.Colors,
		Sizes:              r.Sizes,
		Tags:               r.Tags,
		Featured:           r.Featured,
		OnSale:             r.OnSale,
	}
	if r.Category != nil {
		category, err := enums.ParseProductCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return catalog.ProductUpdate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		update.Category = &category
	}
	return update, nil
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

func productIDParam(r *http.Request) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
}

// AdminCreateProduct adds a product to the catalog.
func AdminCreateProduct(svc catalog.Admin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial update; absent fields are kept.
func AdminUpdateProduct(svc catalog.Admin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		update, err := payload.toUpdate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, update)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc catalog.Admin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

func AdminSetStock(svc catalog.Admin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload stockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.SetStock(r.Context(), id, *payload.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDashboard returns inventory and monthly sales figures.
func AdminDashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
