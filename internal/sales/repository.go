package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rosema/rosema-backend/pkg/db/models"
	"github.com/rosema/rosema-backend/pkg/pagination"
)

// Repository persists sales and their lines.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the sale together with its lines.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// FindByID returns nil, nil when the sale does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("id = ?", id).
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// List returns sales newest first, starting after cursor. The returned
// cursor is nil on the last page.
func (r *Repository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Sale, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).Model(&models.Sale{}).Preload("Lines", orderLines)
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Sale
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// Totals counts sales created in [from, to) and sums their totals.
func (r *Repository) Totals(ctx context.Context, from, to time.Time) (PeriodTotals, error) {
	var out PeriodTotals
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COUNT(*) AS sales, COALESCE(SUM(total), 0) AS revenue").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&out).Error
	return out, err
}

// TopProducts ranks catalog products by sold revenue. Ad-hoc lines carry no
// product and are left out.
func (r *Repository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).
		Model(&models.SaleLine{}).
		Select("product_id, MAX(name) AS name, SUM(quantity) AS quantity, SUM(line_subtotal) AS revenue").
		Where("product_id IS NOT NULL").
		Group("product_id").
		Order("revenue DESC").
		Order("name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
