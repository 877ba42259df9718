package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rosema/rosema-backend/internal/checkout"
	"github.com/rosema/rosema-backend/pkg/db/models"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
	"github.com/rosema/rosema-backend/pkg/logger"
	"github.com/rosema/rosema-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type salesRepository interface {
	WithTx(tx *gorm.DB) *Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Sale, *pagination.Cursor, error)
}

// StockAdjuster lowers catalog stock inside the sale transaction.
type StockAdjuster interface {
	DecrementStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
}

type saleObserver interface {
	ObserveSale(paymentMethod string, total float64)
}

// Service records and lists register sales.
type Service interface {
	Record(ctx context.Context, registerID string, summary checkout.OrderSummary) (*Sale, error)
	Get(ctx context.Context, id uuid.UUID) (*Sale, error)
	Recent(ctx context.Context, limit int) ([]Sale, error)
	List(ctx context.Context, params pagination.Params) (*SaleList, error)
}

type service struct {
	tx       txRunner
	repo     salesRepository
	stock    StockAdjuster
	observer saleObserver
	logg     *logger.Logger
}

// NewService builds the sales service. observer and logg may be nil.
func NewService(tx txRunner, repo salesRepository, stock StockAdjuster, observer saleObserver, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock adjuster required")
	}
	return &service{tx: tx, repo: repo, stock: stock, observer: observer, logg: logg}, nil
}

// Record stores a finished register sale and lowers stock for every
// catalog-backed line, clamping at zero. Nothing is written on failure.
func (s *service) Record(ctx context.Context, registerID string, summary checkout.OrderSummary) (*Sale, error) {
	registerID = strings.TrimSpace(registerID)
	if registerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "register id is required")
	}
	if summary.Surface != enums.SurfaceRegister {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only register sales can be recorded")
	}
	if len(summary.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No hay productos en la venta")
	}

	sale := toModel(registerID, summary)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
		}
		var errs error
		for _, line := range summary.Lines {
			if line.ProductRef == nil {
				continue
			}
			if _, err := s.stock.DecrementStockTx(ctx, tx, *line.ProductRef, line.Quantity); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("decrement stock for %s: %w", line.ProductRef, err))
			}
		}
		if errs != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "update product stock")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale")
	}

	if s.observer != nil {
		s.observer.ObserveSale(sale.PaymentMethod.String(), sale.Total.InexactFloat64())
	}
	if s.logg != nil {
		logCtx := s.logg.WithRegisterID(ctx, registerID)
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"sale_id":   sale.ID.String(),
			"reference": sale.Reference,
			"total":     sale.Total.StringFixed(2),
		})
		s.logg.Info(logCtx, "sale.recorded")
	}

	out := FromModel(*sale)
	return &out, nil
}

// Get returns nil, nil when the sale does not exist.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	if row == nil {
		return nil, nil
	}
	out := FromModel(*row)
	return &out, nil
}

// Recent returns the latest sales for the register dashboard.
func (s *service) Recent(ctx context.Context, limit int) ([]Sale, error) {
	rows, _, err := s.repo.List(ctx, nil, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent sales")
	}
	return fromModels(rows), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*SaleList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	list := &SaleList{Sales: fromModels(rows)}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func toModel(registerID string, summary checkout.OrderSummary) *models.Sale {
	lines := make([]models.SaleLine, 0, len(summary.Lines))
	for i, line := range summary.Lines {
		var productID *uuid.UUID
		if line.ProductRef != nil {
			ref := *line.ProductRef
			productID = &ref
		}
		lines = append(lines, models.SaleLine{
			Position:     i,
			ProductID:    productID,
			SKU:          line.SKU,
			Name:         line.Name,
			Color:        line.Color,
			Size:         line.Size,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineSubtotal: line.LineSubtotal,
		})
	}
	customer := strings.TrimSpace(summary.Customer.Name)
	if customer == "" {
		customer = checkout.DefaultCustomerName
	}
	method := summary.Customer.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodCash
	}
	return &models.Sale{
		Reference:      summary.Reference,
		RegisterID:     registerID,
		CustomerName:   customer,
		PaymentMethod:  method,
		Status:         enums.SaleStatusCompleted,
		Subtotal:       summary.Subtotal,
		DiscountAmount: summary.DiscountAmount,
		Total:          summary.Total,
		ItemCount:      summary.ItemCount,
		Lines:          lines,
		CreatedAt:      summary.CreatedAt,
	}
}

func fromModels(rows []models.Sale) []Sale {
	out := make([]Sale, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
