package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rosema/rosema-backend/internal/cart"
	"github.com/rosema/rosema-backend/pkg/enums"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
	pkgredis "github.com/rosema/rosema-backend/pkg/redis"
)

// EnvelopeVersion is the payload version written by Save.
const EnvelopeVersion = 1

// DefaultTTL keeps an idle cart for thirty days.
const DefaultTTL = 30 * 24 * time.Hour

type envelope struct {
	Version  int             `json:"version"`
	Items    []cart.LineItem `json:"items"`
	Discount cart.Discount   `json:"discount"`
	SavedAt  time.Time       `json:"saved_at"`
}

type keyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(sessionID string) string
	RegisterKey(registerID string) string
}

// Store keeps cart and register state in Redis as versioned JSON. Concurrent
// writers of the same key are not coordinated; the last save wins.
type Store struct {
	kv  keyValue
	ttl time.Duration
	now func() time.Time
}

// New builds a store. A non-positive ttl falls back to DefaultTTL.
func New(kv keyValue, ttl time.Duration) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl, now: time.Now}, nil
}

// Load returns the stored state. A missing key is an empty state without
// error; unreadable payloads yield an empty state and PERSISTENCE_CORRUPT.
func (s *Store) Load(ctx context.Context, surface enums.Surface, id string) (cart.State, error) {
	raw, err := s.kv.Get(ctx, s.key(surface, id))
	if pkgredis.IsNil(err) {
		return emptyState(), nil
	}
	if err != nil {
		return emptyState(), pkgerrors.Wrap(pkgerrors.CodePersistenceCorrupt, err, "read cart state")
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return emptyState(), pkgerrors.Wrap(pkgerrors.CodePersistenceCorrupt, err, "decode cart state")
	}
	if env.Version != EnvelopeVersion {
		return emptyState(), pkgerrors.New(pkgerrors.CodePersistenceCorrupt, "unsupported cart state version").
			WithDetails(map[string]any{"version": env.Version})
	}
	if env.Items == nil {
		env.Items = []cart.LineItem{}
	}
	return cart.State{Items: env.Items, Discount: env.Discount}, nil
}

// Save writes the state and refreshes the key TTL.
func (s *Store) Save(ctx context.Context, surface enums.Surface, id string, state cart.State) error {
	items := state.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	payload, err := json.Marshal(envelope{
		Version:  EnvelopeVersion,
		Items:    items,
		Discount: state.Discount,
		SavedAt:  s.now().UTC(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistenceWriteFailed, err, "encode cart state")
	}
	if err := s.kv.Set(ctx, s.key(surface, id), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistenceWriteFailed, err, "write cart state")
	}
	return nil
}

// For binds the store to one session or register so it can back an engine.
func (s *Store) For(surface enums.Surface, id string) *Adapter {
	return &Adapter{store: s, surface: surface, id: id}
}

func (s *Store) key(surface enums.Surface, id string) string {
	if surface == enums.SurfaceRegister {
		return s.kv.RegisterKey(id)
	}
	return s.kv.CartKey(id)
}

func emptyState() cart.State {
	return cart.State{Items: []cart.LineItem{}}
}

// Adapter is a Store bound to a single key.
type Adapter struct {
	store   *Store
	surface enums.Surface
	id      string
}

func (a *Adapter) Load(ctx context.Context) (cart.State, error) {
	return a.store.Load(ctx, a.surface, a.id)
}

func (a *Adapter) Save(ctx context.Context, state cart.State) error {
	return a.store.Save(ctx, a.surface, a.id, state)
}
