package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/rosema/rosema-backend/internal/cart"
	"github.com/rosema/rosema-backend/internal/cartstore"
	"github.com/rosema/rosema-backend/internal/checkout"
	"github.com/rosema/rosema-backend/internal/notify"
	"github.com/rosema/rosema-backend/internal/sales"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
	"github.com/rosema/rosema-backend/pkg/logger"
)

// DefaultCacheSize bounds how many live engines stay in memory.
const DefaultCacheSize = 1024

const maxKeyLength = 128

const restoreFailedMessage = "No se pudo recuperar el carrito guardado"

type stateStore interface {
	Load(ctx context.Context, surface enums.Surface, id string) (cart.State, error)
	For(surface enums.Surface, id string) *cartstore.Adapter
}

// Options wires the manager. Sales is only needed for FinishSale.
type Options struct {
	CacheSize int
	Catalog   cart.Catalog
	Store     stateStore
	Recorder  cart.Recorder
	Logger    *logger.Logger
	Formatter *checkout.Formatter
	Sales     sales.Service
}

type entry struct {
	mu            sync.Mutex
	engine        *cart.Engine
	restoreFailed bool

	// refs counts in-flight calls; guarded by Manager.mu.
	refs    int
	unsaved atomic.Bool
}

func (e *entry) pinned() bool {
	return e.refs > 0 || e.unsaved.Load()
}

// Manager owns one engine per storefront session or register. Calls for the
// same key are serialized. An engine evicted from the cache is rebuilt from
// the durable store on next use, unless it is in use or holds lines the
// store never accepted; those are parked until they can be dropped safely.
type Manager struct {
	catalog   cart.Catalog
	store     stateStore
	recorder  cart.Recorder
	logg      *logger.Logger
	formatter *checkout.Formatter
	sales     sales.Service

	mu     sync.Mutex
	cache  *lru.Cache
	parked map[string]*entry
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("state store required")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Formatter == nil {
		opts.Formatter = checkout.NewFormatter(nil)
	}
	m := &Manager{
		catalog:   opts.Catalog,
		store:     opts.Store,
		recorder:  opts.Recorder,
		logg:      opts.Logger,
		formatter: opts.Formatter,
		sales:     opts.Sales,
		parked:    map[string]*entry{},
	}
	cache, err := lru.NewWithEvict(opts.CacheSize, m.onEvict)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	m.cache = cache
	return m, nil
}

// Do runs fn with exclusive access to the engine for (surface, id). When
// sink is not nil it is subscribed for the duration of fn.
func (m *Manager) Do(ctx context.Context, surface enums.Surface, id string, sink cart.Sink, fn func(*cart.Engine) error) error {
	id, err := normalizeKey(surface, id)
	if err != nil {
		return err
	}
	cacheKey := string(surface) + ":" + id
	ent, err := m.acquire(ctx, surface, id, cacheKey)
	if err != nil {
		return err
	}
	defer m.release(cacheKey, ent)

	ent.mu.Lock()
	defer ent.mu.Unlock()
	defer func() { ent.unsaved.Store(ent.engine.Unsaved()) }()

	if sink != nil {
		if ent.restoreFailed {
			sink.Notify(ctx, restoreFailedMessage, enums.SeverityWarning)
			ent.restoreFailed = false
		}
		unsubscribe := ent.engine.Subscribe(sink)
		defer unsubscribe()
	}
	return fn(ent.engine)
}

// Snapshot returns the current snapshot for (surface, id).
func (m *Manager) Snapshot(ctx context.Context, surface enums.Surface, id string) (cart.Snapshot, error) {
	var snap cart.Snapshot
	err := m.Do(ctx, surface, id, nil, func(e *cart.Engine) error {
		snap = e.Snapshot()
		return nil
	})
	return snap, err
}

// Len reports how many engines are held in memory, parked ones included.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Len() + len(m.parked)
}

// onEvict runs inside cache.Add, which is only called with m.mu held.
func (m *Manager) onEvict(key, value interface{}) {
	ent := value.(*entry)
	if ent.pinned() {
		m.parked[key.(string)] = ent
	}
}

func (m *Manager) release(cacheKey string, ent *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent.refs--
	if !ent.pinned() && m.parked[cacheKey] == ent {
		delete(m.parked, cacheKey)
	}
}

func (m *Manager) acquire(ctx context.Context, surface enums.Surface, id, cacheKey string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := m.cache.Get(cacheKey); ok {
		ent := cached.(*entry)
		ent.refs++
		return ent, nil
	}
	if ent, ok := m.parked[cacheKey]; ok {
		delete(m.parked, cacheKey)
		ent.refs++
		m.cache.Add(cacheKey, ent)
		return ent, nil
	}

	state, loadErr := m.store.Load(ctx, surface, id)
	if loadErr != nil {
		m.reportLoadFailure(ctx, surface, id, loadErr)
	}

	engine, err := cart.NewEngine(cart.Config{
		Surface:      surface,
		Key:          id,
		Capabilities: cart.CapabilitiesFor(surface),
		Catalog:      m.catalog,
		Store:        m.store.For(surface, id),
		Recorder:     m.recorder,
		Logger:       m.logg,
		Initial:      state,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart engine")
	}

	if m.logg != nil {
		engine.Subscribe(notify.NewLogSink(m.logg))
	}

	ent := &entry{engine: engine, restoreFailed: loadErr != nil, refs: 1}
	m.cache.Add(cacheKey, ent)
	return ent, nil
}

func (m *Manager) reportLoadFailure(ctx context.Context, surface enums.Surface, id string, err error) {
	if m.recorder != nil {
		m.recorder.IncPersistenceFailure(string(surface), "load")
	}
	if m.logg == nil {
		return
	}
	logCtx := m.logg.WithSurface(ctx, string(surface))
	logCtx = m.logg.WithFields(logCtx, map[string]any{"state_key": id, "error": err.Error()})
	m.logg.Warn(logCtx, "cart state restore failed; starting empty")
}

func normalizeKey(surface enums.Surface, id string) (string, error) {
	if !surface.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid surface")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session key is required")
	}
	if len(id) > maxKeyLength || strings.ContainsAny(id, ": \t\r\n") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session key is invalid")
	}
	return id, nil
}
