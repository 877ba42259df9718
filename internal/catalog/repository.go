package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rosema/rosema-backend/pkg/db/models"
	"github.com/rosema/rosema-backend/pkg/enums"
)

// ListParams filters catalog listings.
type ListParams struct {
	Category enums.ProductCategory
	OnSale   bool
	Limit    int
}

// Repository reads and adjusts catalog rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID returns nil, nil when the product does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKU returns nil, nil when no product carries the SKU.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.OnSale {
		query = query.Where("on_sale = ?", true)
	}
	var rows []models.Product
	err := query.
		Order("featured DESC").
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Find(&rows).Error
	return rows, err
}

// Search matches the term against name, SKU and tags, case-insensitively.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\' OR LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\'`, pattern, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// LowStock lists products whose stock is at or below threshold, lowest first.
func (r *Repository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// DecrementStock subtracts qty from the product stock without going below zero.
// It reports whether a row was updated.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", qty, qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Update writes every column of product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetStock overwrites the stock counter. It reports whether a row matched.
func (r *Repository) SetStock(ctx context.Context, id uuid.UUID, stock int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      stock,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type inventoryRow struct {
	TotalProducts int64
	TotalStock    int64
	TotalValue    decimal.Decimal
	Featured      int64
	OnSale        int64
	OutOfStock    int64
}

type categoryRow struct {
	Category string
	Products int64
	Stock    int64
	Value    decimal.Decimal
}

// Inventory aggregates stock and stock value over the whole catalog.
func (r *Repository) Inventory(ctx context.Context) (*InventoryStats, error) {
	var totals inventoryRow
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select(`COUNT(*) AS total_products,
			COALESCE(SUM(stock), 0) AS total_stock,
			COALESCE(SUM(price * stock), 0) AS total_value,
			COALESCE(SUM(CASE WHEN featured THEN 1 ELSE 0 END), 0) AS featured,
			COALESCE(SUM(CASE WHEN on_sale THEN 1 ELSE 0 END), 0) AS on_sale,
			COALESCE(SUM(CASE WHEN stock = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock`).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var rows []categoryRow
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category, COUNT(*) AS products, COALESCE(SUM(stock), 0) AS stock, COALESCE(SUM(price * stock), 0) AS value").
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &InventoryStats{
		TotalProducts: totals.TotalProducts,
		TotalStock:    totals.TotalStock,
		TotalValue:    totals.TotalValue,
		Featured:      totals.Featured,
		OnSale:        totals.OnSale,
		OutOfStock:    totals.OutOfStock,
		Categories:    make([]CategoryStats, 0, len(rows)),
	}
	for _, row := range rows {
		stats.Categories = append(stats.Categories, CategoryStats{
			Category: enums.ProductCategory(row.Category),
			Products: row.Products,
			Stock:    row.Stock,
			Value:    row.Value,
		})
	}
	return stats, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// DecrementStockTx runs DecrementStock inside the caller's transaction.
func (r *Repository) DecrementStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	return r.WithTx(tx).DecrementStock(ctx, id, qty)
}
