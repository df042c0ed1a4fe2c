package sync

import (
	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"github.com/shopspring/decimal"
)

// StandardShippingRecalculator is the default shipping allocation strategy:
// the first live shipment carries the order-level amount, remaining
// shipments drop to zero, and shipping adjustments are folded into the
// shipment cost and frozen so the platform recompute cannot re-derive a
// different price.
type StandardShippingRecalculator struct{}

// NewStandardShippingRecalculator creates the default recalculator
func NewStandardShippingRecalculator() *StandardShippingRecalculator {
	return &StandardShippingRecalculator{}
}

// Apply sets the order's shipping price. Reports whether anything changed.
func (r *StandardShippingRecalculator) Apply(order *channel.Order, total, orderLevel decimal.Decimal) (bool, error) {
	changed := false

	carrier := true
	for idx := range order.Shipments {
		shipment := &order.Shipments[idx]
		if shipment.State == channel.ShipmentStateCancelled {
			continue
		}
		want := decimal.Zero
		if carrier {
			want = orderLevel
			carrier = false
		}
		if shipment.SetCost(want) {
			changed = true
		}
	}

	for _, adj := range order.AdjustmentsOfKind(channel.AdjustmentKindShipping) {
		if !adj.Amount.IsZero() {
			adj.Amount = decimal.Zero
			adj.Touch()
			changed = true
		}
		if adj.Close() {
			changed = true
		}
	}

	return changed, nil
}

// Estimate derives a shipping price from local state: the sum of live
// shipment costs and shipping adjustments. Indeterminate when the order has
// no live shipments left to price.
func (r *StandardShippingRecalculator) Estimate(order *channel.Order) (decimal.Decimal, bool) {
	price := decimal.Zero
	live := 0
	for idx := range order.Shipments {
		if order.Shipments[idx].State == channel.ShipmentStateCancelled {
			continue
		}
		live++
		price = price.Add(order.Shipments[idx].Cost)
	}
	if live == 0 {
		return decimal.Zero, false
	}
	for _, adj := range order.AdjustmentsOfKind(channel.AdjustmentKindShipping) {
		price = price.Add(adj.Amount)
	}
	return price, true
}

var _ ShippingRecalculator = (*StandardShippingRecalculator)(nil)
