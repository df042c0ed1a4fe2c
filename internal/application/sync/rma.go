package sync

import (
	"context"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// reconcileRMA merges one external return-group into the matching local
// return authorization. RMAs created in RetailOps materialize locally under
// a deterministic number; inventory already returned there has a
// corresponding received sub-return locally, and that inventory is excluded
// from the RMA. The RMA is deleted once everything is excluded.
//
// Must run inside the orchestrator's transaction: a failure here rolls back
// the whole synchronize call.
func (s *Service) reconcileRMA(ctx context.Context, repo channel.OrderRepository, order *channel.Order, in RmaInput) (bool, error) {
	// RMA creation needs shipped inventory to authorize against
	if !order.HasShippedShipment() {
		return false, nil
	}

	number := channel.RmaNumber(in.ID)
	rma := order.FindReturnAuthorization(number)
	if rma != nil && rma.IsReceived() {
		// received is terminal; shouldn't happen, but never mutate it
		return false, nil
	}

	// subtract quantity and value already accounted for by received
	// sub-returns so nothing is refunded twice
	closedValue := decimal.Zero
	closedItems := make(map[uuid.UUID]int)
	for _, ret := range in.Returns {
		sub := order.FindReturnAuthorization(channel.SubReturnNumber(ret.ID))
		if sub == nil || !sub.IsReceived() {
			continue
		}
		closedValue = closedValue.Add(netReturnValue(ret.RefundAmt, ret.TaxAmt, ret.ShippingAmt))
		for _, it := range ret.Items {
			if line := resolveClaimLine(order, it); line != nil {
				closedItems[line.ID] += int(it.Quantity.IntPart())
			}
		}
	}

	useQty := make(map[uuid.UUID]int)
	useTotal := 0
	for _, it := range in.Items {
		line := resolveClaimLine(order, it)
		if line == nil {
			continue
		}
		qty := int(it.Quantity.IntPart()) - closedItems[line.ID]
		if qty < 0 {
			qty = 0
		}
		useQty[line.ID] = qty
		useTotal += qty
	}

	if rma == nil && useTotal <= 0 {
		return false, nil
	}

	if rma == nil {
		created, err := channel.NewReturnAuthorization(order.ID, number)
		if err != nil {
			return false, err
		}
		// persist before quantity edits so the items reference an identity
		if err := repo.SaveReturnAuthorization(ctx, created); err != nil {
			return false, err
		}
		rma = order.AddReturnAuthorization(*created)
		s.log.Info("created return authorization",
			zap.String("order", order.Refnum),
			zap.String("rma", number))
	}

	// full overwrite across every line on the order, including lines this
	// RMA never claimed. Always reports changed, even when the written
	// values equal the prior ones; channel behavior, kept as-is.
	changed := false
	for idx := range order.LineItems {
		line := &order.LineItems[idx]
		rma.SetVariantQuantity(line.VariantID, useQty[line.ID])
		changed = true
	}

	if useTotal == 0 {
		if err := repo.DeleteReturnAuthorization(ctx, rma); err != nil {
			return false, err
		}
		order.RemoveReturnAuthorization(number)
		s.log.Info("deleted emptied return authorization",
			zap.String("order", order.Refnum),
			zap.String("rma", number))
		return true, nil
	}

	if in.SubtotalAmt != nil || in.RefundAmt != nil {
		useValue := netReturnValue(in.RefundAmt, in.TaxAmt, in.ShippingAmt).Sub(closedValue)
		if rma.SetAmount(useValue) {
			changed = true
		}
	}

	if changed {
		if err := repo.SaveReturnAuthorization(ctx, rma); err != nil {
			return false, err
		}
	}
	return changed, nil
}

// resolveClaimLine locates the local line item an RMA claim refers to. The
// correlation id wins when set; otherwise channel_refnum carries the local
// line id handed out in LineItemResult.
func resolveClaimLine(order *channel.Order, it RmaItemInput) *channel.LineItem {
	if line := order.FindLineItemByCorr(it.Corr); line != nil {
		return line
	}
	if it.ChannelRefnum != "" {
		if id, err := uuid.Parse(it.ChannelRefnum); err == nil {
			return order.FindLineItemByID(id)
		}
	}
	return nil
}

// netReturnValue is the refund amount net of tax and shipping; tax absent
// means the refund is already a net figure
func netReturnValue(refund, tax, shipping *decimal.Decimal) decimal.Decimal {
	value := decimal.Zero
	if refund != nil {
		value = *refund
	}
	if tax != nil {
		value = value.Sub(*tax)
		if shipping != nil {
			value = value.Sub(*shipping)
		}
	}
	return value
}
