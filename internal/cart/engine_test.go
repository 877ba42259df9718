package cart

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/internal/catalog"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

type fakeCatalog struct {
	byID  map[uuid.UUID]*catalog.Product
	bySKU map[string]*catalog.Product
	err   error
}

func newFakeCatalog(products ...*catalog.Product) *fakeCatalog {
	c := &fakeCatalog{byID: map[uuid.UUID]*catalog.Product{}, bySKU: map[string]*catalog.Product{}}
	for _, p := range products {
		c.byID[p.ID] = p
		c.bySKU[p.SKU] = p
	}
	return c
}

func (c *fakeCatalog) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.byID[id], nil
}

func (c *fakeCatalog) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.bySKU[sku], nil
}

type recordingStore struct {
	saves []State
	err   error
}

func (s *recordingStore) Save(ctx context.Context, state State) error {
	s.saves = append(s.saves, state)
	return s.err
}

type notification struct {
	message  string
	severity enums.Severity
}

type recordingSink struct {
	notifications []notification
	renders       []Snapshot
}

func (s *recordingSink) Notify(ctx context.Context, message string, severity enums.Severity) {
	s.notifications = append(s.notifications, notification{message: message, severity: severity})
}

func (s *recordingSink) Render(ctx context.Context, snapshot Snapshot) {
	s.renders = append(s.renders, snapshot)
}

type recordingRecorder struct {
	operations []string
	failures   []string
}

func (r *recordingRecorder) ObserveOperation(surface, operation, result string) {
	r.operations = append(r.operations, fmt.Sprintf("%s/%s/%s", surface, operation, result))
}

func (r *recordingRecorder) IncPersistenceFailure(surface, operation string) {
	r.failures = append(r.failures, surface+"/"+operation)
}

func product(name string, price int64, stock int) *catalog.Product {
	return &catalog.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		SKU:      "SKU-" + name,
		Category: enums.ProductCategoryWomen,
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
}

func newTestEngine(t *testing.T, surface enums.Surface, store Store, products ...*catalog.Product) *Engine {
	t.Helper()
	cfg := Config{
		Surface:      surface,
		Key:          "test",
		Capabilities: CapabilitiesFor(surface),
		Catalog:      newFakeCatalog(products...),
		NewLineID:    sequentialIDs(),
		Now:          func() time.Time { return time.UnixMilli(1718000000123) },
	}
	if store != nil {
		cfg.Store = store
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

var blackM = Variant{Color: "Negro", Size: "M"}

func TestNewEngineRequiresCatalog(t *testing.T) {
	if _, err := NewEngine(Config{}); err == nil {
		t.Fatal("expected error without catalog")
	}
	if _, err := NewEngine(Config{Catalog: newFakeCatalog(), Surface: "kiosk"}); err == nil {
		t.Fatal("expected error for unknown surface")
	}
}

func TestAddItemMergesSameProductAndVariant(t *testing.T) {
	p := product("Remera", 1000, 10)
	engine := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	ctx := context.Background()

	for _, qty := range []int{1, 2, 3} {
		if _, err := engine.AddItem(ctx, p.ID, blackM, qty); err != nil {
			t.Fatalf("AddItem(%d): %v", qty, err)
		}
	}
	snap, err := engine.AddItem(ctx, p.ID, Variant{Color: "Blanco", Size: "M"}, 1)
	if err != nil {
		t.Fatalf("AddItem other variant: %v", err)
	}

	if len(snap.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(snap.Items))
	}
	if snap.Items[0].Quantity != 6 || snap.Items[0].Variant != blackM {
		t.Fatalf("unexpected merged line %+v", snap.Items[0])
	}
	if snap.Items[0].StockCeiling != 10 {
		t.Fatalf("expected ceiling copied from stock, got %d", snap.Items[0].StockCeiling)
	}
	if snap.ItemCount != 7 {
		t.Fatalf("expected item count 7, got %d", snap.ItemCount)
	}
	if !snap.Subtotal.Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("unexpected subtotal %s", snap.Subtotal)
	}
}

func TestAddItemOverStockLeavesStateUnchanged(t *testing.T) {
	p := product("Jean", 1000, 5)
	engine := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	ctx := context.Background()

	if _, err := engine.AddItem(ctx, p.ID, blackM, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := engine.AddItem(ctx, p.ID, blackM, 2); err != nil {
		t.Fatalf("second add: %v", err)
	}
	before := engine.Snapshot()

	_, err := engine.AddItem(ctx, p.ID, blackM, 2)
	if !IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	details, ok := StockDetailsOf(err)
	if !ok || details.Available != 1 || details.Requested != 2 {
		t.Fatalf("unexpected details %+v ok=%v", details, ok)
	}
	if typed := pkgerrors.As(err); typed.Message() != "Solo puedes agregar 1 unidades más" {
		t.Fatalf("unexpected message %q", typed.Message())
	}

	after := engine.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed on failed add:\nbefore=%+v\nafter=%+v", before, after)
	}
	if after.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity to remain 4, got %d", after.Items[0].Quantity)
	}
}

func TestAddItemNewLineOverStockCreatesNothing(t *testing.T) {
	p := product("Campera", 5000, 1)
	engine := newTestEngine(t, enums.SurfaceStorefront, nil, p)

	_, err := engine.AddItem(context.Background(), p.ID, blackM, 2)
	details, ok := StockDetailsOf(err)
	if !ok || details.Available != 1 || details.Requested != 2 {
		t.Fatalf("unexpected result details=%+v err=%v", details, err)
	}
	if !engine.Snapshot().IsEmpty() {
		t.Fatal("no partial line may be created")
	}
}

func TestAddItemValidatesInput(t *testing.T) {
	p := product("Falda", 900, 3)
	engine := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	ctx := context.Background()

	if _, err := engine.AddItem(ctx, p.ID, Variant{Color: "Rojo"}, 1); !IsIncompleteSelection(err) {
		t.Fatalf("expected incomplete selection, got %v", err)
	}
	if _, err := engine.AddItem(ctx, p.ID, Variant{Color: "  ", Size: "S"}, 1); !IsIncompleteSelection(err) {
		t.Fatalf("blank color must be incomplete, got %v", err)
	}
	if _, err := engine.AddItem(ctx, p.ID, blackM, 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero qty, got %v", err)
	}
	if _, err := engine.AddItem(ctx, uuid.New(), blackM, 1); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddItemCatalogFailureIsDependencyError(t *testing.T) {
	cat := newFakeCatalog()
	cat.err = errors.New("db down")
	engine, err := NewEngine(Config{Catalog: cat, Capabilities: RegisterCapabilities(), Surface: enums.SurfaceRegister})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := engine.AddItem(context.Background(), uuid.New(), Variant{}, 1); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestStockCeilingCapturedAtAddTime(t *testing.T) {
	p := product("Buzo", 2000, 3)
	engine := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	ctx := context.Background()

	if _, err := engine.AddItem(ctx, p.ID, blackM, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	p.Stock = 50
	if _, err := engine.AddItem(ctx, p.ID, blackM, 3); !IsInsufficientStock(err) {
		t.Fatalf("expected original ceiling of 3 to apply, got %v", err)
	}
	if _, err := engine.UpdateQuantity(ctx, "line-1", 3); err != nil {
		t.Fatalf("UpdateQuantity within ceiling: %v", err)
	}
}

func TestUpdateQuantity(t *testing.T) {
	p := product("Blusa", 1500, 4)
	engine := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	ctx := context.Background()
	if _, err := engine.AddItem(ctx, p.ID, blackM, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	snap, err := engine.UpdateQuantity(ctx, "line-1", 4)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if snap.Items[0].Quantity != 4 {
		t.Fatalf("expected 4, got %d", snap.Items[0].Quantity)
	}

	_, err = engine.UpdateQuantity(ctx, "line-1", 5)
	details, ok := StockDetailsOf(err)
	if !ok || details.Requested != 5 || details.Available != 4 {
		t.Fatalf("unexpected stock error details=%+v err=%v", details, err)
	}
	if engine.Snapshot().Items[0].Quantity != 4 {
		t.Fatal("failed update must not change quantity")
	}

	if _, err := engine.UpdateQuantity(ctx, "missing", 2); !IsLineNotFound(err) {
		t.Fatalf("expected line not found, got %v", err)
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	p := product("Short", 700, 5)
	ctx := context.Background()

	viaUpdate := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	viaRemove := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	for _, e := range []*Engine{viaUpdate, viaRemove} {
		if _, err := e.AddItem(ctx, p.ID, blackM, 2); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		if _, err := e.AddItem(ctx, p.ID, Variant{Color: "Azul", Size: "L"}, 1); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}

	a, err := viaUpdate.UpdateQuantity(ctx, "line-1", 0)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	b, err := viaRemove.RemoveItem(ctx, "line-1")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("update to zero differs from remove:\n%+v\n%+v", a, b)
	}

	if _, err := viaUpdate.UpdateQuantity(ctx, "line-1", -1); !IsLineNotFound(err) {
		t.Fatalf("removing an absent line must fail, got %v", err)
	}
}

func TestRemoveItemUnknownLine(t *testing.T) {
	engine := newTestEngine(t, enums.SurfaceStorefront, nil)
	if _, err := engine.RemoveItem(context.Background(), "nope"); !IsLineNotFound(err) {
		t.Fatalf("expected line not found, got %v", err)
	}
}

func TestSubtotalAlwaysRecomputed(t *testing.T) {
	a := product("A", 1250, 10)
	a.Price = decimal.RequireFromString("1250.50")
	b := product("B", 300, 10)
	engine := newTestEngine(t, enums.SurfaceRegister, nil, a, b)
	ctx := context.Background()

	steps := []func() (Snapshot, error){
		func() (Snapshot, error) { return engine.AddItem(ctx, a.ID, Variant{}, 2) },
		func() (Snapshot, error) { return engine.AddItem(ctx, b.ID, Variant{}, 3) },
		func() (Snapshot, error) { return engine.UpdateQuantity(ctx, "line-1", 1) },
		func() (Snapshot, error) { return engine.RemoveItem(ctx, "line-2") },
	}
	for i, step := range steps {
		snap, err := step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		want := decimal.Zero
		for _, item := range snap.Items {
			want = want.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if !snap.Subtotal.Equal(want) {
			t.Fatalf("step %d subtotal %s, want %s", i, snap.Subtotal, want)
		}
	}
	if got := engine.Snapshot().Subtotal; !got.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("unexpected final subtotal %s", got)
	}
}

func TestPercentageDiscountClampsAfterRemoval(t *testing.T) {
	expensive := product("Tapado", 700, 5)
	cheap := product("Medias", 300, 5)
	engine := newTestEngine(t, enums.SurfaceRegister, nil, expensive, cheap)
	ctx := context.Background()

	if _, err := engine.AddItem(ctx, expensive.ID, Variant{}, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := engine.AddItem(ctx, cheap.ID, Variant{}, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	snap, err := engine.ApplyDiscount(ctx, decimal.NewFromInt(50), enums.DiscountKindPercentage)
	if err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}
	if !snap.DiscountAmount.Equal(decimal.NewFromInt(500)) || !snap.Total.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected discount=%s total=%s", snap.DiscountAmount, snap.Total)
	}

	snap, err = engine.RemoveItem(ctx, "line-1")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if !snap.Subtotal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected subtotal %s", snap.Subtotal)
	}
	if !snap.DiscountAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("discount must not be recomputed, got %s", snap.DiscountAmount)
	}
	if !snap.Total.IsZero() {
		t.Fatalf("expected total to clamp at zero, got %s", snap.Total)
	}
}

func TestApplyDiscountValidation(t *testing.T) {
	p := product("Cinto", 1000, 5)
	engine := newTestEngine(t, enums.SurfaceRegister, nil, p)
	ctx := context.Background()
	if _, err := engine.AddItem(ctx, p.ID, Variant{}, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	cases := []struct {
		name  string
		value string
		kind  enums.DiscountKind
	}{
		{name: "negative amount", value: "-1", kind: enums.DiscountKindAmount},
		{name: "negative percentage", value: "-5", kind: enums.DiscountKindPercentage},
		{name: "percentage above 100", value: "100.01", kind: enums.DiscountKindPercentage},
		{name: "amount above subtotal", value: "1000.01", kind: enums.DiscountKindAmount},
		{name: "unknown kind", value: "10", kind: "bogo"},
	}
	for _, tc := range cases {
		if _, err := engine.ApplyDiscount(ctx, decimal.RequireFromString(tc.value), tc.kind); !IsInvalidDiscount(err) {
			t.Fatalf("%s: expected invalid discount, got %v", tc.name, err)
		}
	}
	if !engine.Snapshot().DiscountAmount.IsZero() {
		t.Fatal("rejected discounts must not change state")
	}

	snap, err := engine.ApplyDiscount(ctx, decimal.NewFromInt(1000), enums.DiscountKindAmount)
	if err != nil {
		t.Fatalf("discount equal to subtotal should be accepted: %v", err)
	}
	if !snap.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", snap.Total)
	}

	snap, err = engine.ApplyDiscount(ctx, decimal.NewFromInt(10), enums.DiscountKindPercentage)
	if err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}
	if !snap.DiscountAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("new discount must replace the previous one, got %s", snap.DiscountAmount)
	}

	snap, err = engine.RemoveDiscount(ctx)
	if err != nil {
		t.Fatalf("RemoveDiscount: %v", err)
	}
	if !snap.DiscountAmount.IsZero() || snap.Discount != nil || !snap.Total.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected snapshot after removing discount %+v", snap)
	}
}

func TestTotalNeverNegative(t *testing.T) {
	p := product("Gorro", 450, 20)
	engine := newTestEngine(t, enums.SurfaceRegister, nil, p)
	ctx := context.Background()
	if _, err := engine.AddItem(ctx, p.ID, Variant{}, 4); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	for _, pct := range []int64{0, 1, 33, 50, 99, 100} {
		if _, err := engine.ApplyDiscount(ctx, decimal.NewFromInt(pct), enums.DiscountKindPercentage); err != nil {
			t.Fatalf("ApplyDiscount(%d): %v", pct, err)
		}
		for qty := 4; qty >= 1; qty-- {
			snap, err := engine.UpdateQuantity(ctx, "line-1", qty)
			if err != nil {
				t.Fatalf("UpdateQuantity: %v", err)
			}
			if snap.Total.IsNegative() {
				t.Fatalf("negative total %s with %d%% and qty %d", snap.Total, pct, qty)
			}
		}
		if _, err := engine.UpdateQuantity(ctx, "line-1", 4); err != nil {
			t.Fatalf("UpdateQuantity: %v", err)
		}
	}
}

func TestClearResetsEverything(t *testing.T) {
	p := product("Pollera", 1200, 5)
	store := &recordingStore{}
	engine := newTestEngine(t, enums.SurfaceRegister, store, p)
	ctx := context.Background()
	if _, err := engine.AddItem(ctx, p.ID, Variant{}, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := engine.ApplyDiscount(ctx, decimal.NewFromInt(10), enums.DiscountKindPercentage); err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}

	snap := engine.Clear(ctx)
	if len(snap.Items) != 0 || !snap.Subtotal.IsZero() || !snap.Total.IsZero() || !snap.DiscountAmount.IsZero() {
		t.Fatalf("unexpected snapshot after clear %+v", snap)
	}
	if snap.Items == nil {
		t.Fatal("items should be an empty list, not nil")
	}
	last := store.saves[len(store.saves)-1]
	if len(last.Items) != 0 || !last.Discount.IsZero() {
		t.Fatalf("clear must be persisted, got %+v", last)
	}
}

func TestAdHocItemsNeverMerge(t *testing.T) {
	engine := newTestEngine(t, enums.SurfaceRegister, nil)
	ctx := context.Background()
	in := AdHocInput{Name: "Custom Belt", UnitPrice: decimal.NewFromInt(750), Quantity: 3}

	if _, err := engine.AddAdHocItem(ctx, in); err != nil {
		t.Fatalf("AddAdHocItem: %v", err)
	}
	snap, err := engine.AddAdHocItem(ctx, in)
	if err != nil {
		t.Fatalf("AddAdHocItem: %v", err)
	}

	if len(snap.Items) != 2 {
		t.Fatalf("expected two separate lines, got %d", len(snap.Items))
	}
	line := snap.Items[0]
	if !line.IsAdHoc() || line.ProductRef != nil {
		t.Fatalf("expected ad-hoc line without product ref, got %+v", line)
	}
	if line.StockCeiling != UnboundedStock {
		t.Fatalf("expected unbounded ceiling, got %d", line.StockCeiling)
	}
	if line.SKU != "QUICK-1718000000123" || line.Category != AdHocCategory {
		t.Fatalf("unexpected ad-hoc sku/category %q %q", line.SKU, line.Category)
	}
	if !snap.Subtotal.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("unexpected subtotal %s", snap.Subtotal)
	}
}

func TestAdHocItemDefaultsAndValidation(t *testing.T) {
	engine := newTestEngine(t, enums.SurfaceRegister, nil)
	ctx := context.Background()

	snap, err := engine.AddAdHocItem(ctx, AdHocInput{Name: "Arreglo", UnitPrice: decimal.NewFromInt(200), VariantLabel: "XL"})
	if err != nil {
		t.Fatalf("AddAdHocItem: %v", err)
	}
	if snap.Items[0].Quantity != 1 || snap.Items[0].DisplayName != "Arreglo (XL)" {
		t.Fatalf("unexpected line %+v", snap.Items[0])
	}

	bad := []AdHocInput{
		{Name: " ", UnitPrice: decimal.NewFromInt(1)},
		{Name: "x", UnitPrice: decimal.Zero},
		{Name: "x", UnitPrice: decimal.NewFromInt(-5)},
		{Name: "x", UnitPrice: decimal.NewFromInt(5), Quantity: -2},
	}
	for _, in := range bad {
		if _, err := engine.AddAdHocItem(ctx, in); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
	if len(engine.Snapshot().Items) != 1 {
		t.Fatal("rejected ad-hoc inputs must not add lines")
	}
}

func TestStorefrontCapabilitiesRejectRegisterOperations(t *testing.T) {
	engine := newTestEngine(t, enums.SurfaceStorefront, nil)
	ctx := context.Background()

	if _, err := engine.AddAdHocItem(ctx, AdHocInput{Name: "x", UnitPrice: decimal.NewFromInt(1)}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden ad-hoc, got %v", err)
	}
	if _, err := engine.ApplyDiscount(ctx, decimal.NewFromInt(5), enums.DiscountKindAmount); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden discount, got %v", err)
	}
	if _, err := engine.RemoveDiscount(ctx); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden remove discount, got %v", err)
	}
	if _, err := engine.AddBySKU(ctx, "SKU-x", 1); !IsIncompleteSelection(err) {
		t.Fatalf("storefront scans need a variant, got %v", err)
	}
}

func TestAddBySKUMergesWithScannedLine(t *testing.T) {
	p := product("Zapatilla", 9000, 2)
	engine := newTestEngine(t, enums.SurfaceRegister, nil, p)
	ctx := context.Background()

	if _, err := engine.AddBySKU(ctx, " SKU-Zapatilla ", 1); err != nil {
		t.Fatalf("AddBySKU: %v", err)
	}
	snap, err := engine.AddItem(ctx, p.ID, Variant{}, 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 {
		t.Fatalf("expected a single merged line, got %+v", snap.Items)
	}
	if _, err := engine.AddBySKU(ctx, "SKU-Zapatilla", 1); !IsInsufficientStock(err) {
		t.Fatalf("expected stock error on third scan, got %v", err)
	}
	if _, err := engine.AddBySKU(ctx, "UNKNOWN", 1); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegisterZeroStockProduct(t *testing.T) {
	p := product("Agotado", 500, 0)
	engine := newTestEngine(t, enums.SurfaceRegister, nil, p)
	_, err := engine.AddItem(context.Background(), p.ID, Variant{}, 1)
	details, ok := StockDetailsOf(err)
	if !ok || details.Available != 0 {
		t.Fatalf("expected zero availability, got %+v err=%v", details, err)
	}
	if typed := pkgerrors.As(err); typed.Message() != "Producto sin stock disponible" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestEveryMutationSavesExactlyOnce(t *testing.T) {
	p := product("Vestido", 3000, 5)
	store := &recordingStore{}
	engine := newTestEngine(t, enums.SurfaceRegister, store, p)
	ctx := context.Background()

	mustSnap := func(_ Snapshot, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	mustSnap(engine.AddItem(ctx, p.ID, Variant{}, 1))
	mustSnap(engine.AddAdHocItem(ctx, AdHocInput{Name: "Bolsa", UnitPrice: decimal.NewFromInt(100)}))
	mustSnap(engine.UpdateQuantity(ctx, "line-1", 2))
	mustSnap(engine.ApplyDiscount(ctx, decimal.NewFromInt(100), enums.DiscountKindAmount))
	mustSnap(engine.RemoveDiscount(ctx))
	mustSnap(engine.RemoveItem(ctx, "line-2"))
	engine.Clear(ctx)

	if len(store.saves) != 7 {
		t.Fatalf("expected 7 saves, got %d", len(store.saves))
	}

	_, _ = engine.RemoveItem(ctx, "missing")
	_, _ = engine.AddItem(ctx, p.ID, Variant{}, 99)
	if len(store.saves) != 7 {
		t.Fatalf("failed operations must not save, got %d saves", len(store.saves))
	}
}

func TestSaveFailureIsNonFatal(t *testing.T) {
	p := product("Camisa", 2200, 5)
	store := &recordingStore{err: errors.New("redis down")}
	recorder := &recordingRecorder{}
	engine, err := NewEngine(Config{
		Surface:      enums.SurfaceStorefront,
		Capabilities: StorefrontCapabilities(),
		Catalog:      newFakeCatalog(p),
		Store:        store,
		Recorder:     recorder,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	sink := &recordingSink{}
	engine.Subscribe(sink)

	snap, err := engine.AddItem(context.Background(), p.ID, blackM, 1)
	if err != nil {
		t.Fatalf("save failure must not fail the operation: %v", err)
	}
	if len(snap.Items) != 1 || len(engine.Snapshot().Items) != 1 {
		t.Fatal("in-memory state must keep the new line")
	}
	if len(recorder.failures) != 1 || recorder.failures[0] != "storefront/save" {
		t.Fatalf("expected persistence failure metric, got %v", recorder.failures)
	}
	if len(recorder.operations) != 1 || recorder.operations[0] != "storefront/add_item/ok" {
		t.Fatalf("unexpected operation metrics %v", recorder.operations)
	}
	foundWarning := false
	for _, n := range sink.notifications {
		if n.severity == enums.SeverityWarning && n.message == "Error al guardar el carrito" {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatalf("expected degradation warning, got %+v", sink.notifications)
	}
	if !engine.Unsaved() {
		t.Fatal("engine must report unsaved state after a failed save")
	}

	store.err = nil
	if _, err := engine.AddItem(context.Background(), p.ID, blackM, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if engine.Unsaved() {
		t.Fatal("a successful save must clear the unsaved flag")
	}
}

func TestSubscribeNotifiesAndRenders(t *testing.T) {
	p := product("Remera", 1000, 1)
	engine := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	ctx := context.Background()
	sink := &recordingSink{}
	unsubscribe := engine.Subscribe(sink)

	if _, err := engine.AddItem(ctx, p.ID, blackM, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(sink.renders) != 1 || len(sink.renders[0].Items) != 1 {
		t.Fatalf("expected one render with the new line, got %+v", sink.renders)
	}
	if sink.notifications[0] != (notification{message: "Producto agregado al carrito", severity: enums.SeveritySuccess}) {
		t.Fatalf("unexpected notification %+v", sink.notifications[0])
	}

	_, _ = engine.AddItem(ctx, p.ID, blackM, 1)
	last := sink.notifications[len(sink.notifications)-1]
	if last.severity != enums.SeverityWarning || last.message != "No hay más stock disponible" {
		t.Fatalf("unexpected failure notification %+v", last)
	}
	if len(sink.renders) != 1 {
		t.Fatal("failed operations must not re-render")
	}

	unsubscribe()
	unsubscribe()
	engine.Clear(ctx)
	if len(sink.renders) != 1 {
		t.Fatal("unsubscribed sink must not be rendered")
	}
}

func TestSnapshotIsIsolatedFromEngine(t *testing.T) {
	p := product("Remera", 1000, 5)
	engine := newTestEngine(t, enums.SurfaceStorefront, nil, p)
	snap, err := engine.AddItem(context.Background(), p.ID, blackM, 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	snap.Items[0].Quantity = 99
	*snap.Items[0].ProductRef = uuid.Nil
	current := engine.Snapshot().Items[0]
	if current.Quantity != 1 || *current.ProductRef != p.ID {
		t.Fatalf("snapshot mutation leaked into engine: %+v", current)
	}
}

func TestInitialStateIsNormalized(t *testing.T) {
	ref := uuid.New()
	engine, err := NewEngine(Config{
		Catalog:      newFakeCatalog(),
		Capabilities: StorefrontCapabilities(),
		Initial: State{
			Items: []LineItem{
				{LineID: "keep", ProductRef: &ref, Quantity: 2, StockCeiling: 4, UnitPrice: decimal.NewFromInt(10)},
				{LineID: "zero", ProductRef: &ref, Quantity: 0, StockCeiling: 4},
				{LineID: "", Quantity: 1},
				{LineID: "over", ProductRef: &ref, Quantity: 9, StockCeiling: 3, UnitPrice: decimal.NewFromInt(10)},
			},
			Discount: Discount{Kind: enums.DiscountKindAmount, Value: decimal.NewFromInt(5), Amount: decimal.NewFromInt(5)},
		},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	snap := engine.Snapshot()
	if len(snap.Items) != 2 || snap.Items[0].LineID != "keep" || snap.Items[1].LineID != "over" {
		t.Fatalf("unexpected restored items %+v", snap.Items)
	}
	if snap.Items[1].Quantity != 3 {
		t.Fatalf("restored quantity must be clamped to the stock ceiling, got %d", snap.Items[1].Quantity)
	}
	if !snap.DiscountAmount.IsZero() {
		t.Fatal("storefront engines drop restored discounts")
	}
}
