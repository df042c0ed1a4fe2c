package sync

import (
	"context"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"github.com/shopspring/decimal"
)

// LineItemReconciler merges the channel's authoritative line-item list into
// the local order. Implementations mutate the order in memory only; the
// orchestrator persists inside its transaction.
type LineItemReconciler interface {
	Reconcile(ctx context.Context, order *channel.Order, items []LineItemInput) (changed bool, results []LineItemResult, err error)
}

// ShippingRecalculator computes and applies shipping allocation on an order.
type ShippingRecalculator interface {
	// Apply sets the order's shipping price: total is the order's full
	// shipping amount, orderLevel the part not already allocated to lines.
	// Reports whether anything changed.
	Apply(order *channel.Order, total, orderLevel decimal.Decimal) (bool, error)

	// Estimate derives a shipping price from local state alone. ok is false
	// when the order no longer carries enough information to estimate.
	Estimate(order *channel.Order) (price decimal.Decimal, ok bool)
}

// WritebackHook runs after reconciliation with the raw payload, for
// deployments that need a side effect on every writeback (settlement
// marking, refund queuing). Injected at construction; nil disables it.
type WritebackHook interface {
	AfterWriteback(ctx context.Context, order *channel.Order, payload SynchronizeRequest) error
}
