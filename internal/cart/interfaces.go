package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/rosema/rosema-backend/internal/catalog"
	"github.com/rosema/rosema-backend/pkg/enums"
)

// Catalog resolves product references. Both lookups return nil, nil when the
// product does not exist.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	GetBySKU(ctx context.Context, sku string) (*catalog.Product, error)
}

// Store receives the engine state after every successful mutation.
type Store interface {
	Save(ctx context.Context, state State) error
}

// Sink is told about outcomes and re-renders from snapshots.
type Sink interface {
	Notify(ctx context.Context, message string, severity enums.Severity)
	Render(ctx context.Context, snapshot Snapshot)
}

// Recorder observes operation outcomes.
type Recorder interface {
	ObserveOperation(surface, operation, result string)
	IncPersistenceFailure(surface, operation string)
}
