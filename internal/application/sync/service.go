package sync

import (
	"context"

	"github.com/GudTech/spree-retailops/internal/application/export"
	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service is the synchronization orchestrator. One Synchronize call merges
// the channel's authoritative line-item and return data into local state,
// recomputes shipping allocation, toggles tax/promotion adjustments around
// the recompute, and produces the final order snapshot, all inside a single
// transaction.
type Service struct {
	orders    channel.OrderRepository
	items     LineItemReconciler
	shipping  ShippingRecalculator
	hook      WritebackHook // optional, may be nil
	extractor *export.Extractor
	log       *zap.Logger
}

// NewService creates a new synchronization service. hook may be nil.
func NewService(
	orders channel.OrderRepository,
	items LineItemReconciler,
	shipping ShippingRecalculator,
	hook WritebackHook,
	log *zap.Logger,
) *Service {
	return &Service{
		orders:    orders,
		items:     items,
		shipping:  shipping,
		hook:      hook,
		extractor: export.DefaultExtractor(),
		log:       log,
	}
}

// Synchronize runs the full reconciliation protocol for one order. Given
// identical inputs and unchanged local state it reports changed=false and
// mutates nothing. Any failure rolls back every mutation, including
// adjustment state toggles and RMA edits.
func (s *Service) Synchronize(ctx context.Context, req SynchronizeRequest) (*SynchronizeResponse, error) {
	var resp *SynchronizeResponse

	err := s.orders.InTransaction(ctx, func(repo channel.OrderRepository) error {
		order, err := repo.FindByRefnum(ctx, req.OrderRefnum)
		if err != nil {
			return err
		}

		changed := false

		itemsChanged, results, err := s.items.Reconcile(ctx, order, req.LineItems)
		if err != nil {
			return err
		}
		changed = changed || itemsChanged

		// let tax settle organically on the next persist
		order.CloseAdjustments(channel.AdjustmentKindTax)

		// a nil RMA list means no return action at all, not "clear returns"
		if req.Rmas != nil {
			for _, rma := range req.Rmas {
				rmaChanged, err := s.reconcileRMA(ctx, repo, order, rma)
				if err != nil {
					return err
				}
				changed = changed || rmaChanged
			}
		}

		if req.Options.AuthoritativeShipping() {
			if req.OrderAmts.ShippingAmt != nil {
				total := *req.OrderAmts.ShippingAmt
				itemLevel := decimal.Zero
				for _, item := range req.LineItems {
					itemLevel = itemLevel.Add(item.DirectShipAmt)
				}
				shipChanged, err := s.shipping.Apply(order, total, total.Sub(itemLevel))
				if err != nil {
					return err
				}
				changed = changed || shipChanged
			}
		} else if itemsChanged {
			// re-derive the ship price locally, but only while local state
			// still holds enough information to do so
			if price, ok := s.shipping.Estimate(order); ok {
				if _, err := s.shipping.Apply(order, price, price); err != nil {
					return err
				}
			}
		}

		if changed {
			// reopening on item-level changes lets tax and promotions
			// recompute against the new item data; they are re-closed once
			// the recompute has run
			if itemsChanged {
				order.OpenAdjustments(channel.AdjustmentKindTax)
				order.OpenAdjustments(channel.AdjustmentKindPromotion)
			}

			order.Recalculate()
			if err := repo.Save(ctx, order); err != nil {
				return err
			}

			order.CloseAdjustments(channel.AdjustmentKindTax)
			order.CloseAdjustments(channel.AdjustmentKindPromotion)
		}

		if s.hook != nil {
			if err := s.hook.AfterWriteback(ctx, order, req); err != nil {
				return err
			}
		}

		if changed {
			order.Recalculate()
			if err := repo.Save(ctx, order); err != nil {
				return err
			}
		}

		resp = &SynchronizeResponse{
			Changed: changed,
			Dump:    s.extractor.OrderSnapshot(order),
			Result:  results,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("order synchronized",
		zap.String("refnum", req.OrderRefnum),
		zap.Bool("changed", resp.Changed))
	return resp, nil
}
