package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/db"
	"github.com/rosema/rosema-backend/pkg/db/models"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

// Admin exposes product management for the POS panel.
type Admin interface {
	Create(ctx context.Context, input ProductInput) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductUpdate) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, stock int) (*Product, error)
	Inventory(ctx context.Context) (*InventoryStats, error)
}

// ProductInput holds the validated payload to create a product.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Stock         int
	SKU           string
	Category      enums.ProductCategory
	Images        []string
	Colors        []string
	Sizes         []string
	Tags          []string
	Featured      bool
	OnSale        bool
}

// ProductUpdate holds optional mutation values for a product. ClearOriginalPrice
// removes the crossed-out price.
type ProductUpdate struct {
	Name               *string
	Description        *string
	Price              *decimal.Decimal
	OriginalPrice      *decimal.Decimal
	ClearOriginalPrice bool
	Stock              *int
	SKU                *string
	Category           *enums.ProductCategory
	Images             *[]string
	Colors             *[]string
	Sizes              *[]string
	Tags               *[]string
	Featured           *bool
	OnSale             *bool
}

type adminRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	SetStock(ctx context.Context, id uuid.UUID, stock int) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	Inventory(ctx context.Context) (*InventoryStats, error)
}

type admin struct {
	repo adminRepository
}

func NewAdmin(repo adminRepository) (Admin, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &admin{repo: repo}, nil
}

func (a *admin) Create(ctx context.Context, input ProductInput) (*Product, error) {
	row := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		SKU:         strings.TrimSpace(input.SKU),
		Category:    input.Category,
		Images:      cleanList(input.Images),
		Colors:      cleanList(input.Colors),
		Sizes:       cleanList(input.Sizes),
		Tags:        cleanList(input.Tags),
		Featured:    input.Featured,
		OnSale:      input.OnSale,
	}
	if input.OriginalPrice != nil {
		row.OriginalPrice = decimal.NewNullDecimal(*input.OriginalPrice)
	}
	if err := validateProduct(row); err != nil {
		return nil, err
	}
	if err := a.ensureSKUFree(ctx, row.SKU, uuid.Nil); err != nil {
		return nil, err
	}
	if err := a.repo.Create(ctx, row); err != nil {
		return nil, writeError(err, "create product")
	}
	out := FromModel(*row)
	return &out, nil
}

func (a *admin) Update(ctx context.Context, id uuid.UUID, input ProductUpdate) (*Product, error) {
	row, err := a.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previousSKU := row.SKU
	applyProductUpdate(row, input)
	if err := validateProduct(row); err != nil {
		return nil, err
	}
	if row.SKU != previousSKU {
		if err := a.ensureSKUFree(ctx, row.SKU, row.ID); err != nil {
			return nil, err
		}
	}
	if err := a.repo.Update(ctx, row); err != nil {
		return nil, writeError(err, "update product")
	}
	out := FromModel(*row)
	return &out, nil
}

func (a *admin) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := a.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return errProductMissing()
	}
	return nil
}

// SetStock replaces the stock counter, as done after a manual count.
func (a *admin) SetStock(ctx context.Context, id uuid.UUID, stock int) (*Product, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative").
			WithDetails(map[string]any{"stock": stock})
	}
	updated, err := a.repo.SetStock(ctx, id, stock)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product stock")
	}
	if !updated {
		return nil, errProductMissing()
	}
	row, err := a.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (a *admin) Inventory(ctx context.Context) (*InventoryStats, error) {
	stats, err := a.repo.Inventory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate inventory")
	}
	return stats, nil
}

func (a *admin) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := a.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if row == nil {
		return nil, errProductMissing()
	}
	return row, nil
}

func (a *admin) ensureSKUFree(ctx context.Context, sku string, owner uuid.UUID) error {
	existing, err := a.repo.FindBySKU(ctx, sku)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
	}
	if existing != nil && existing.ID != owner {
		return errSKUTaken(sku)
	}
	return nil
}

func validateProduct(row *models.Product) error {
	details := map[string]string{}
	if row.Name == "" {
		details["name"] = "is required"
	}
	if row.SKU == "" {
		details["sku"] = "is required"
	}
	if !row.Category.IsValid() {
		details["category"] = "is invalid"
	}
	if !row.Price.IsPositive() {
		details["price"] = "must be greater than 0"
	}
	if row.OriginalPrice.Valid && row.OriginalPrice.Decimal.IsNegative() {
		details["original_price"] = "cannot be negative"
	}
	if row.Stock < 0 {
		details["stock"] = "cannot be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return nil
}

func applyProductUpdate(row *models.Product, input ProductUpdate) {
	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		row.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		row.Price = *input.Price
	}
	if input.ClearOriginalPrice {
		row.OriginalPrice = decimal.NullDecimal{}
	} else if input.OriginalPrice != nil {
		row.OriginalPrice = decimal.NewNullDecimal(*input.OriginalPrice)
	}
	if input.Stock != nil {
		row.Stock = *input.Stock
	}
	if input.SKU != nil {
		row.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Category != nil {
		row.Category = *input.Category
	}
	if input.Images != nil {
		row.Images = cleanList(*input.Images)
	}
	if input.Colors != nil {
		row.Colors = cleanList(*input.Colors)
	}
	if input.Sizes != nil {
		row.Sizes = cleanList(*input.Sizes)
	}
	if input.Tags != nil {
		row.Tags = cleanList(*input.Tags)
	}
	if input.Featured != nil {
		row.Featured = *input.Featured
	}
	if input.OnSale != nil {
		row.OnSale = *input.OnSale
	}
}

// cleanList trims entries and drops blanks, keeping order.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func writeError(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "SKU already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func errProductMissing() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Producto no encontrado")
}

func errSKUTaken(sku string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "SKU already in use").
		WithDetails(map[string]any{"sku": sku})
}
