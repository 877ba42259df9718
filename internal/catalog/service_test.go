package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/db/models"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

type stubRepo struct {
	byID          map[uuid.UUID]models.Product
	bySKU         map[string]models.Product
	searchTerm    string
	searchLimit   int
	listParams    ListParams
	lowThreshold  int
	err           error
	searchResults []models.Product
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.byID[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *stubRepo) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.bySKU[sku]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *stubRepo) List(ctx context.Context, params ListParams) ([]models.Product, error) {
	s.listParams = params
	return nil, s.err
}

func (s *stubRepo) Search(ctx context.Context, term string, limit int) ([]models.Product, error) {
	s.searchTerm = term
	s.searchLimit = limit
	return s.searchResults, s.err
}

func (s *stubRepo) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	s.lowThreshold = threshold
	return nil, s.err
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil, Options{}); err == nil {
		t.Fatal("expected error for nil repository")
	}
}

func TestGetByIDMapsAndReturnsNilWhenMissing(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{byID: map[uuid.UUID]models.Product{
		id: {ID: id, Name: "Short", Price: decimal.NewFromInt(800), Stock: 3, SKU: "SHO-1", Images: []string{"a.jpg"}},
	}}
	svc, err := NewService(repo, Options{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.ImageRef != "a.jpg" || got.Stock != 3 {
		t.Fatalf("unexpected product %+v", got)
	}
	if got.Colors == nil || got.Tags == nil {
		t.Fatalf("expected empty slices instead of nil")
	}

	missing, err := svc.GetByID(context.Background(), uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown id, got %+v %v", missing, err)
	}
}

func TestGetBySKUTrimsAndWrapsErrors(t *testing.T) {
	repo := &stubRepo{bySKU: map[string]models.Product{"SKU-9": {SKU: "SKU-9"}}}
	svc, _ := NewService(repo, Options{})

	got, err := svc.GetBySKU(context.Background(), "  SKU-9 ")
	if err != nil || got == nil {
		t.Fatalf("expected product, got %+v %v", got, err)
	}

	repo.err = errors.New("db down")
	_, err = svc.GetBySKU(context.Background(), "SKU-9")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestSearchUsesConfiguredLimitAndSkipsBlank(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo, Options{SearchLimit: 3})

	res, err := svc.Search(context.Background(), "   ")
	if err != nil || len(res) != 0 {
		t.Fatalf("blank search should be empty, got %v %v", res, err)
	}
	if repo.searchTerm != "" {
		t.Fatalf("blank search should not hit the repository")
	}

	if _, err := svc.Search(context.Background(), " jean "); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if repo.searchTerm != "jean" || repo.searchLimit != 3 {
		t.Fatalf("unexpected search call term=%q limit=%d", repo.searchTerm, repo.searchLimit)
	}
}

func TestListValidatesCategoryAndClampsLimit(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo, Options{})

	_, err := svc.List(context.Background(), ListParams{Category: "flower"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.List(context.Background(), ListParams{Category: enums.ProductCategoryFootwear, Limit: 5000}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.listParams.Limit != maxListLimit {
		t.Fatalf("expected clamped limit, got %d", repo.listParams.Limit)
	}
}

func TestLowStockDefaultsThreshold(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo, Options{LowStockThreshold: 5})

	if _, err := svc.LowStock(context.Background(), -1); err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if repo.lowThreshold != 5 {
		t.Fatalf("expected default threshold 5, got %d", repo.lowThreshold)
	}
	if _, err := svc.LowStock(context.Background(), 0); err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if repo.lowThreshold != 0 {
		t.Fatalf("expected explicit zero threshold, got %d", repo.lowThreshold)
	}
}
