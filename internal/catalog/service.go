package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rosema/rosema-backend/pkg/db/models"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

const (
	DefaultSearchLimit       = 5
	DefaultLowStockThreshold = 5
	defaultListLimit         = 60
	maxListLimit             = 200
)

// Service exposes read access to the product catalog.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, params ListParams) ([]Product, error)
	Search(ctx context.Context, term string) ([]Product, error)
	LowStock(ctx context.Context, threshold int) ([]Product, error)
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, params ListParams) ([]models.Product, error)
	Search(ctx context.Context, term string, limit int) ([]models.Product, error)
	LowStock(ctx context.Context, threshold int) ([]models.Product, error)
}

// Options tunes result sizes.
type Options struct {
	SearchLimit       int
	LowStockThreshold int
}

type service struct {
	repo              productRepository
	searchLimit       int
	lowStockThreshold int
}

// NewService builds a catalog service around the repository.
func NewService(repo productRepository, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.LowStockThreshold < 0 {
		opts.LowStockThreshold = DefaultLowStockThreshold
	}
	return &service{
		repo:              repo,
		searchLimit:       opts.SearchLimit,
		lowStockThreshold: opts.LowStockThreshold,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if row == nil {
		return nil, nil
	}
	product := FromModel(*row)
	return &product, nil
}

func (s *service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, nil
	}
	row, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product by sku")
	}
	if row == nil {
		return nil, nil
	}
	product := FromModel(*row)
	return &product, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]Product, error) {
	if params.Category != "" && !params.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category").
			WithDetails(map[string]any{"category": params.Category})
	}
	switch {
	case params.Limit <= 0:
		params.Limit = defaultListLimit
	case params.Limit > maxListLimit:
		params.Limit = maxListLimit
	}
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return fromModels(rows), nil
}

// Search returns an empty result for blank terms.
func (s *service) Search(ctx context.Context, term string) ([]Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Product{}, nil
	}
	rows, err := s.repo.Search(ctx, term, s.searchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return fromModels(rows), nil
}

func (s *service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	if threshold < 0 {
		threshold = s.lowStockThreshold
	}
	rows, err := s.repo.LowStock(ctx, threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}
	return fromModels(rows), nil
}
