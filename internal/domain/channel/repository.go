package channel

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ImportableFilter narrows the export listing. The import-eligibility
// restriction (import_state = 'yes', completed orders only) is applied by the
// repository unconditionally and is not expressible here.
type ImportableFilter struct {
	RefnumPrefix    string
	CompletedAfter  *time.Time
	CompletedBefore *time.Time
	Limit           int
}

// OrderRepository defines the interface for channel order persistence
type OrderRepository interface {
	// FindByRefnum loads the full order graph by its external refnum
	FindByRefnum(ctx context.Context, refnum string) (*Order, error)

	// FindImportable lists export-eligible orders (import_state = 'yes',
	// completed), full graph preloaded, oldest completion first
	FindImportable(ctx context.Context, filter ImportableFilter) ([]Order, error)

	// FindImportStates resolves the import state of each given order id;
	// unknown ids are absent from the result
	FindImportStates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ImportState, error)

	// MarkExported transitions the given orders from 'yes' to 'done' and
	// returns the number of rows transitioned
	MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error)

	// Save persists the order aggregate: the order row, line items (including
	// deletions), shipments and adjustments
	Save(ctx context.Context, order *Order) error

	// SaveReturnAuthorization persists one RMA and its items
	SaveReturnAuthorization(ctx context.Context, rma *ReturnAuthorization) error

	// DeleteReturnAuthorization removes an RMA and its items entirely
	DeleteReturnAuthorization(ctx context.Context, rma *ReturnAuthorization) error

	// InTransaction runs fn against a transaction-scoped repository;
	// any error rolls back every mutation made through it
	InTransaction(ctx context.Context, fn func(repo OrderRepository) error) error
}
