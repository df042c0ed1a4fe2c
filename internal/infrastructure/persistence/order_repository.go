package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"github.com/GudTech/spree-retailops/internal/domain/shared"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// preloadGraph attaches every owned collection of the order aggregate
func (r *GormOrderRepository) preloadGraph(q *gorm.DB) *gorm.DB {
	return q.
		Preload("LineItems").
		Preload("LineItems.Variant").
		Preload("Shipments").
		Preload("Adjustments").
		Preload("Payments").
		Preload("ReturnAuthorizations").
		Preload("ReturnAuthorizations.Items").
		Preload("ShipAddress").
		Preload("BillAddress")
}

// FindByRefnum finds an order by its channel reference number
func (r *GormOrderRepository) FindByRefnum(ctx context.Context, refnum string) (*channel.Order, error) {
	var order channel.Order
	if err := r.preloadGraph(r.db.WithContext(ctx)).
		Where("refnum = ?", refnum).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	hydratePayments(&order)
	return &order, nil
}

// FindImportable lists completed orders still flagged for import
func (r *GormOrderRepository) FindImportable(ctx context.Context, filter channel.ImportableFilter) ([]channel.Order, error) {
	var orders []channel.Order
	query := r.preloadGraph(r.db.WithContext(ctx)).
		Where("import_state = ?", channel.ImportStateYes).
		Where("completed_at IS NOT NULL")

	if filter.RefnumPrefix != "" {
		query = query.Where("refnum LIKE ?", filter.RefnumPrefix+"%")
	}
	if filter.CompletedAfter != nil {
		query = query.Where("completed_at >= ?", *filter.CompletedAfter)
	}
	if filter.CompletedBefore != nil {
		query = query.Where("completed_at <= ?", *filter.CompletedBefore)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Order("completed_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		hydratePayments(&orders[i])
	}
	return orders, nil
}

// FindImportStates returns the import state of each existing order in ids.
// Orders not present in the result set do not exist.
func (r *GormOrderRepository) FindImportStates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]channel.ImportState, error) {
	states := make(map[uuid.UUID]channel.ImportState, len(ids))
	if len(ids) == 0 {
		return states, nil
	}

	var rows []struct {
		ID          uuid.UUID
		ImportState channel.ImportState
	}
	if err := r.db.WithContext(ctx).
		Model(&channel.Order{}).
		Select("id", "import_state").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		states[row.ID] = row.ImportState
	}
	return states, nil
}

// MarkExported transitions orders from "yes" to "done" and reports how many
// rows changed. Orders already marked "done" are left alone.
func (r *GormOrderRepository) MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&channel.Order{}).
		Where("id IN ? AND import_state = ?", ids, channel.ImportStateYes).
		Update("import_state", channel.ImportStateDone)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Save creates or updates an order with its owned collections
func (r *GormOrderRepository) Save(ctx context.Context, order *channel.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("LineItems", "Shipments", "Adjustments", "Payments",
			"ReturnAuthorizations", "ShipAddress", "BillAddress").
			Save(order).Error; err != nil {
			return err
		}

		// Delete line items dropped from the aggregate
		currentItemIDs := make([]uuid.UUID, len(order.LineItems))
		for i, item := range order.LineItems {
			currentItemIDs[i] = item.ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
				Delete(&channel.LineItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("order_id = ?", order.ID).
				Delete(&channel.LineItem{}).Error; err != nil {
				return err
			}
		}

		for i := range order.LineItems {
			order.LineItems[i].OrderID = order.ID
			if err := tx.Omit("Variant").Save(&order.LineItems[i]).Error; err != nil {
				return err
			}
		}
		for i := range order.Shipments {
			order.Shipments[i].OrderID = order.ID
			if err := tx.Save(&order.Shipments[i]).Error; err != nil {
				return err
			}
		}
		for i := range order.Adjustments {
			order.Adjustments[i].OrderID = order.ID
			if err := tx.Save(&order.Adjustments[i]).Error; err != nil {
				return err
			}
		}
		for i := range order.Payments {
			order.Payments[i].OrderID = order.ID
			if err := tx.Save(&order.Payments[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// SaveReturnAuthorization creates or updates an RMA with its items
func (r *GormOrderRepository) SaveReturnAuthorization(ctx context.Context, rma *channel.ReturnAuthorization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(rma).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(rma.Items))
		for i, item := range rma.Items {
			currentItemIDs[i] = item.ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("return_authorization_id = ? AND id NOT IN ?", rma.ID, currentItemIDs).
				Delete(&channel.ReturnAuthorizationItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("return_authorization_id = ?", rma.ID).
				Delete(&channel.ReturnAuthorizationItem{}).Error; err != nil {
				return err
			}
		}

		for i := range rma.Items {
			rma.Items[i].ReturnAuthorizationID = rma.ID
			if err := tx.Save(&rma.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteReturnAuthorization removes an RMA and its items
func (r *GormOrderRepository) DeleteReturnAuthorization(ctx context.Context, rma *channel.ReturnAuthorization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("return_authorization_id = ?", rma.ID).
			Delete(&channel.ReturnAuthorizationItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&channel.ReturnAuthorization{}, "id = ?", rma.ID).Error
	})
}

// InTransaction runs fn against a repository bound to a single transaction
func (r *GormOrderRepository) InTransaction(ctx context.Context, fn func(channel.OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormOrderRepository{db: tx})
	})
}

// hydratePayments rebuilds the polymorphic payment sources after load
func hydratePayments(order *channel.Order) {
	for i := range order.Payments {
		order.Payments[i].HydrateSource()
	}
}
