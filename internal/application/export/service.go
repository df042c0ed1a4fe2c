package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"github.com/GudTech/spree-retailops/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// Service handles order export for the channel: listing snapshots of
// export-eligible orders and acknowledging their receipt.
//
// Listing never mutates import state. The channel cannot guarantee that it
// received and processed what we returned, so claiming an order is a
// separate, explicit acknowledgement.
type Service struct {
	orders       channel.OrderRepository
	extractor    *Extractor
	defaultLimit int
	log          *zap.Logger
}

// NewService creates a new export service. defaultLimit caps listings whose
// filter carries no limit of its own; non-positive values fall back to the
// built-in default.
func NewService(orders channel.OrderRepository, defaultLimit int, log *zap.Logger) *Service {
	if defaultLimit <= 0 {
		defaultLimit = defaultListLimit
	}
	return &Service{
		orders:       orders,
		extractor:    DefaultExtractor(),
		defaultLimit: defaultLimit,
		log:          log,
	}
}

// List returns snapshots of export-eligible orders. The import-eligibility
// restriction is always applied on top of the caller's filter. Orders whose
// extraction fails appear as error records; the batch never aborts.
func (s *Service) List(ctx context.Context, filter channel.ImportableFilter) ([]map[string]any, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.defaultLimit
	}

	orders, err := s.orders.FindImportable(ctx, filter)
	if err != nil {
		return nil, err
	}

	snapshots := s.extractor.Snapshots(orders)
	for _, snap := range snapshots {
		if msg, failed := snap["error"]; failed {
			s.log.Error("order export failed",
				zap.Any("number", snap["number"]),
				zap.Any("error", msg))
		}
	}
	return snapshots, nil
}

// Acknowledge transitions orders from 'yes' to 'done' after the channel has
// confirmed receipt. All-or-nothing: every id must resolve to an order in an
// importable state ('yes' or 'done'); otherwise the call fails naming every
// unmatched id and nothing transitions.
func (s *Service) Acknowledge(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "ids must be a non-empty list of order ids")
	}

	return s.orders.InTransaction(ctx, func(repo channel.OrderRepository) error {
		states, err := repo.FindImportStates(ctx, ids)
		if err != nil {
			return err
		}

		var missing []string
		for _, id := range ids {
			state, ok := states[id]
			if !ok || !state.Importable() {
				missing = append(missing, id.String())
			}
		}
		if len(missing) > 0 {
			return shared.NewDomainError("UNMATCHED_ORDERS",
				fmt.Sprintf("order IDs could not be matched or marked nonimportable: %s",
					strings.Join(missing, ", ")))
		}

		count, err := repo.MarkExported(ctx, ids)
		if err != nil {
			return err
		}
		s.log.Info("orders acknowledged as exported",
			zap.Int("requested", len(ids)),
			zap.Int64("transitioned", count))
		return nil
	})
}
