package sync

import (
	"context"
	"time"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"go.uber.org/zap"
)

// StandardLineItemReconciler is the default line-item merge strategy.
// Inputs resolve to local lines by correlation id first, then by SKU for
// lines not yet correlated. Matched lines take the channel's quantity,
// price, cost and ship allocations; the removed flag deletes the line.
// Unmatched inputs are reported back without creating lines; catalog
// import is a separate integration.
type StandardLineItemReconciler struct {
	log *zap.Logger
}

// NewStandardLineItemReconciler creates the default reconciler
func NewStandardLineItemReconciler(log *zap.Logger) *StandardLineItemReconciler {
	return &StandardLineItemReconciler{log: log}
}

// Reconcile merges the channel's line-item list into the order
func (r *StandardLineItemReconciler) Reconcile(ctx context.Context, order *channel.Order, items []LineItemInput) (bool, []LineItemResult, error) {
	changed := false
	results := make([]LineItemResult, 0, len(items))

	for _, in := range items {
		line := r.resolve(order, in)
		if line == nil {
			r.log.Warn("line item instruction did not match any local line",
				zap.String("order", order.Refnum),
				zap.String("corr", in.Corr),
				zap.String("sku", in.SKU))
			results = append(results, LineItemResult{Corr: in.Corr, SKU: in.SKU})
			continue
		}

		if line.Corr != in.Corr {
			line.Corr = in.Corr
			line.Touch()
			changed = true
		}

		if in.Removed {
			order.RemoveLineItem(line.ID)
			changed = true
			results = append(results, LineItemResult{Corr: in.Corr, SKU: in.SKU})
			continue
		}

		if qty := int(in.Quantity.IntPart()); qty > 0 && qty != line.Quantity {
			line.Quantity = qty
			line.Touch()
			changed = true
		}
		if !in.UnitPrice.IsZero() && !line.UnitPrice.Equal(in.UnitPrice) {
			line.UnitPrice = in.UnitPrice
			line.Touch()
			changed = true
		}
		if !line.UnitCost.Equal(in.EstimatedUnitCost) {
			line.UnitCost = in.EstimatedUnitCost
			line.Touch()
			changed = true
		}
		if !line.DirectShipAmount.Equal(in.DirectShipAmt) {
			line.DirectShipAmount = in.DirectShipAmt
			line.Touch()
			changed = true
		}
		if !line.ApportionedShipAmount.Equal(in.ApportionedShipAmt) {
			line.ApportionedShipAmount = in.ApportionedShipAmt
			line.Touch()
			changed = true
		}
		if in.EstimatedShipDate > 0 {
			when := time.Unix(in.EstimatedShipDate, 0).UTC()
			if line.ExpectedShipDate == nil || !line.ExpectedShipDate.Equal(when) {
				line.ExpectedShipDate = &when
				line.Touch()
				changed = true
			}
		}

		results = append(results, LineItemResult{
			Corr:      in.Corr,
			Refnum:    line.ID.String(),
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	return changed, results, nil
}

// resolve finds the local line an instruction targets: by correlation id,
// falling back to SKU for lines the channel has not correlated yet
func (r *StandardLineItemReconciler) resolve(order *channel.Order, in LineItemInput) *channel.LineItem {
	if line := order.FindLineItemByCorr(in.Corr); line != nil {
		return line
	}
	if in.SKU == "" {
		return nil
	}
	for idx := range order.LineItems {
		line := &order.LineItems[idx]
		if line.SKU == in.SKU && (line.Corr == "" || line.Corr == in.Corr) {
			return line
		}
	}
	return nil
}

var _ LineItemReconciler = (*StandardLineItemReconciler)(nil)
