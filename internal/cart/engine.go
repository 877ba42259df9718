package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
	"github.com/rosema/rosema-backend/pkg/logger"
)

// Capabilities switches surface specific behavior on one engine.
type Capabilities struct {
	RequireVariant bool
	AdHocItems     bool
	ManualDiscount bool
}

// StorefrontCapabilities requires a color and size on every line.
func StorefrontCapabilities() Capabilities {
	return Capabilities{RequireVariant: true}
}

// RegisterCapabilities allows hand-priced lines and manual discounts.
func RegisterCapabilities() Capabilities {
	return Capabilities{AdHocItems: true, ManualDiscount: true}
}

// CapabilitiesFor returns the default capabilities of a surface.
func CapabilitiesFor(surface enums.Surface) Capabilities {
	if surface == enums.SurfaceRegister {
		return RegisterCapabilities()
	}
	return StorefrontCapabilities()
}

// Config wires an Engine. Catalog is required; everything else is optional.
type Config struct {
	Surface      enums.Surface
	Key          string
	Capabilities Capabilities
	Catalog      Catalog
	Store        Store
	Recorder     Recorder
	Logger       *logger.Logger
	NewLineID    func() string
	Now          func() time.Time
	Initial      State
}

type subscription struct {
	id   int
	sink Sink
}

// Engine owns the lines of one cart or register sale. It is not safe for
// concurrent use; callers serialize access per engine.
type Engine struct {
	surface   enums.Surface
	key       string
	caps      Capabilities
	catalog   Catalog
	store     Store
	recorder  Recorder
	logg      *logger.Logger
	newLineID func() string
	now       func() time.Time

	items    []LineItem
	discount Discount

	sinks  []subscription
	nextID int

	unsaved bool
}

// NewEngine builds an engine seeded with cfg.Initial.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if cfg.Surface == "" {
		cfg.Surface = enums.SurfaceStorefront
	}
	if !cfg.Surface.IsValid() {
		return nil, fmt.Errorf("invalid surface %q", cfg.Surface)
	}
	if cfg.NewLineID == nil {
		cfg.NewLineID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	state := normalizeState(cfg.Initial)
	if !cfg.Capabilities.ManualDiscount {
		state.Discount = Discount{}
	}
	return &Engine{
		surface:   cfg.Surface,
		key:       cfg.Key,
		caps:      cfg.Capabilities,
		catalog:   cfg.Catalog,
		store:     cfg.Store,
		recorder:  cfg.Recorder,
		logg:      cfg.Logger,
		newLineID: cfg.NewLineID,
		now:       cfg.Now,
		items:     state.Items,
		discount:  state.Discount,
	}, nil
}

func (e *Engine) Surface() enums.Surface { return e.surface }

func (e *Engine) Key() string { return e.key }

func (e *Engine) Capabilities() Capabilities { return e.caps }

// Unsaved reports whether the last save failed, leaving the store behind
// the in-memory lines.
func (e *Engine) Unsaved() bool { return e.unsaved }

// Snapshot returns the current lines with freshly computed totals.
func (e *Engine) Snapshot() Snapshot {
	subtotal := subtotalOf(e.items)
	total := subtotal.Sub(e.discount.Amount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	snap := Snapshot{
		Surface:        e.surface,
		Items:          cloneItems(e.items),
		Subtotal:       subtotal,
		DiscountAmount: e.discount.Amount,
		Total:          total,
		ItemCount:      itemCountOf(e.items),
	}
	if !e.discount.IsZero() {
		d := e.discount
		snap.Discount = &d
	}
	return snap
}

// State returns a copy of the persisted part of the engine.
func (e *Engine) State() State {
	return State{Items: cloneItems(e.items), Discount: e.discount}
}

// Subscribe registers sink for notifications and renders. The returned func
// removes it and may be called more than once.
func (e *Engine) Subscribe(sink Sink) (unsubscribe func()) {
	if sink == nil {
		return func() {}
	}
	e.nextID++
	id := e.nextID
	e.sinks = append(e.sinks, subscription{id: id, sink: sink})
	return func() {
		for i, sub := range e.sinks {
			if sub.id == id {
				e.sinks = append(e.sinks[:i:i], e.sinks[i+1:]...)
				return
			}
		}
	}
}

// commit persists the new state, informs sinks and returns the snapshot.
// Save failures degrade to a warning; the in-memory state stays authoritative.
func (e *Engine) commit(ctx context.Context, operation, message string) Snapshot {
	if e.store != nil {
		err := e.store.Save(ctx, e.State())
		e.unsaved = err != nil
		if err != nil {
			e.degrade(ctx, "save", err)
		}
	}
	e.observe(operation, "ok")
	snap := e.Snapshot()
	for _, sub := range e.sinks {
		if message != "" {
			sub.sink.Notify(ctx, message, enums.SeveritySuccess)
		}
		sub.sink.Render(ctx, snap)
	}
	return snap
}

// fail reports a rejected operation. State is never touched on this path.
func (e *Engine) fail(ctx context.Context, operation string, err error) error {
	result := string(pkgerrors.CodeInternal)
	severity := enums.SeverityError
	message := err.Error()
	if typed := pkgerrors.As(err); typed != nil {
		result = string(typed.Code())
		message = typed.Message()
		switch typed.Code() {
		case pkgerrors.CodeInsufficientStock, pkgerrors.CodeIncompleteSelection:
			severity = enums.SeverityWarning
		}
	}
	e.observe(operation, result)
	for _, sub := range e.sinks {
		sub.sink.Notify(ctx, message, severity)
	}
	return err
}

func (e *Engine) degrade(ctx context.Context, operation string, err error) {
	if e.recorder != nil {
		e.recorder.IncPersistenceFailure(string(e.surface), operation)
	}
	if e.logg != nil {
		lctx := e.logg.WithSurface(ctx, string(e.surface))
		lctx = e.logg.WithFields(lctx, map[string]any{"state_key": e.key, "error": err.Error()})
		e.logg.Warn(lctx, "cart state persistence degraded")
	}
	for _, sub := range e.sinks {
		sub.sink.Notify(ctx, "Error al guardar el carrito", enums.SeverityWarning)
	}
}

func (e *Engine) observe(operation, result string) {
	if e.recorder != nil {
		e.recorder.ObserveOperation(string(e.surface), operation, result)
	}
}

func (e *Engine) indexOf(lineID string) int {
	for i, item := range e.items {
		if item.LineID == lineID {
			return i
		}
	}
	return -1
}
