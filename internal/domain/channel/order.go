package channel

import (
	"time"

	"github.com/GudTech/spree-retailops/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportState drives export eligibility for the RetailOps channel.
// An order becomes visible to the channel at "yes" and is claimed by the
// channel with a transition to "done"; "no" orders are never exported.
type ImportState string

const (
	ImportStateNo   ImportState = "no"
	ImportStateYes  ImportState = "yes"
	ImportStateDone ImportState = "done"
)

// IsValid checks if the state is a valid ImportState
func (s ImportState) IsValid() bool {
	switch s {
	case ImportStateNo, ImportStateYes, ImportStateDone:
		return true
	}
	return false
}

// Importable reports whether the channel may still claim this order
func (s ImportState) Importable() bool {
	return s == ImportStateYes || s == ImportStateDone
}

// String returns the string representation of ImportState
func (s ImportState) String() string {
	return string(s)
}

// Order is the aggregate root for a channel-synchronized order. It owns the
// line items, shipments, adjustments, payments, addresses and return
// authorizations that the synchronization protocol operates on.
type Order struct {
	shared.BaseEntity
	Refnum          string // unique, immutable, correlates to the remote order
	Email           string
	Currency        string
	State           string
	ImportState     ImportState
	CompletedAt     *time.Time
	ItemTotal       decimal.Decimal
	AdjustmentTotal decimal.Decimal
	ShipTotal       decimal.Decimal
	Total           decimal.Decimal

	ShipAddressID *uuid.UUID
	ShipAddress   *Address `gorm:"foreignKey:ShipAddressID"`
	BillAddressID *uuid.UUID
	BillAddress   *Address `gorm:"foreignKey:BillAddressID"`

	LineItems            []LineItem            `gorm:"foreignKey:OrderID"`
	Shipments            []Shipment            `gorm:"foreignKey:OrderID"`
	Adjustments          []Adjustment          `gorm:"foreignKey:OrderID"`
	Payments             []Payment             `gorm:"foreignKey:OrderID"`
	ReturnAuthorizations []ReturnAuthorization `gorm:"foreignKey:OrderID"`
}

// NewOrder creates a new channel order
func NewOrder(refnum string) (*Order, error) {
	if refnum == "" {
		return nil, shared.NewDomainError("INVALID_REFNUM", "Order refnum cannot be empty")
	}

	return &Order{
		BaseEntity:      shared.NewBaseEntity(),
		Refnum:          refnum,
		Currency:        "USD",
		ImportState:     ImportStateNo,
		ItemTotal:       decimal.Zero,
		AdjustmentTotal: decimal.Zero,
		ShipTotal:       decimal.Zero,
		Total:           decimal.Zero,
	}, nil
}

// FindLineItemByCorr returns the line item carrying the given correlation id,
// or nil if no line carries it
func (o *Order) FindLineItemByCorr(corr string) *LineItem {
	if corr == "" {
		return nil
	}
	for idx := range o.LineItems {
		if o.LineItems[idx].Corr == corr {
			return &o.LineItems[idx]
		}
	}
	return nil
}

// FindLineItemByID returns the line item with the given local id, or nil
func (o *Order) FindLineItemByID(id uuid.UUID) *LineItem {
	for idx := range o.LineItems {
		if o.LineItems[idx].ID == id {
			return &o.LineItems[idx]
		}
	}
	return nil
}

// FindLineItemBySKU returns the first line item for the given SKU
func (o *Order) FindLineItemBySKU(sku string) *LineItem {
	for idx := range o.LineItems {
		if o.LineItems[idx].SKU == sku {
			return &o.LineItems[idx]
		}
	}
	return nil
}

// RemoveLineItem removes a line item from the order
func (o *Order) RemoveLineItem(itemID uuid.UUID) bool {
	for idx := range o.LineItems {
		if o.LineItems[idx].ID == itemID {
			o.LineItems = append(o.LineItems[:idx], o.LineItems[idx+1:]...)
			o.Touch()
			return true
		}
	}
	return false
}

// FindReturnAuthorization returns the RMA with the given number, or nil
func (o *Order) FindReturnAuthorization(number string) *ReturnAuthorization {
	for idx := range o.ReturnAuthorizations {
		if o.ReturnAuthorizations[idx].Number == number {
			return &o.ReturnAuthorizations[idx]
		}
	}
	return nil
}

// AddReturnAuthorization attaches an RMA to the order and returns a pointer
// into the owned collection
func (o *Order) AddReturnAuthorization(rma ReturnAuthorization) *ReturnAuthorization {
	rma.OrderID = o.ID
	o.ReturnAuthorizations = append(o.ReturnAuthorizations, rma)
	o.Touch()
	return &o.ReturnAuthorizations[len(o.ReturnAuthorizations)-1]
}

// RemoveReturnAuthorization detaches the RMA with the given number
func (o *Order) RemoveReturnAuthorization(number string) bool {
	for idx := range o.ReturnAuthorizations {
		if o.ReturnAuthorizations[idx].Number == number {
			o.ReturnAuthorizations = append(o.ReturnAuthorizations[:idx], o.ReturnAuthorizations[idx+1:]...)
			o.Touch()
			return true
		}
	}
	return false
}

// HasShippedShipment reports whether at least one shipment has shipped.
// Return reconciliation is a no-op until then.
func (o *Order) HasShippedShipment() bool {
	for idx := range o.Shipments {
		if o.Shipments[idx].State == ShipmentStateShipped {
			return true
		}
	}
	return false
}

// AdjustmentsOfKind returns pointers to all adjustments of the given kind
func (o *Order) AdjustmentsOfKind(kind AdjustmentKind) []*Adjustment {
	var out []*Adjustment
	for idx := range o.Adjustments {
		if o.Adjustments[idx].Kind == kind {
			out = append(out, &o.Adjustments[idx])
		}
	}
	return out
}

// CloseAdjustments closes every open adjustment of the given kind and
// reports whether any state changed
func (o *Order) CloseAdjustments(kind AdjustmentKind) bool {
	changed := false
	for idx := range o.Adjustments {
		if o.Adjustments[idx].Kind == kind && o.Adjustments[idx].Close() {
			changed = true
		}
	}
	if changed {
		o.Touch()
	}
	return changed
}

// OpenAdjustments reopens every closed adjustment of the given kind and
// reports whether any state changed
func (o *Order) OpenAdjustments(kind AdjustmentKind) bool {
	changed := false
	for idx := range o.Adjustments {
		if o.Adjustments[idx].Kind == kind && o.Adjustments[idx].Open() {
			changed = true
		}
	}
	if changed {
		o.Touch()
	}
	return changed
}

// Recalculate reproduces the platform recompute that runs on every persist:
// item total from the lines, shipping total from the shipments, adjustment
// total from all adjustments (open or closed; closed amounts are frozen but
// still count), and the grand total from the three.
func (o *Order) Recalculate() {
	itemTotal := decimal.Zero
	for idx := range o.LineItems {
		itemTotal = itemTotal.Add(o.LineItems[idx].Amount())
	}

	shipTotal := decimal.Zero
	for idx := range o.Shipments {
		if o.Shipments[idx].State != ShipmentStateCancelled {
			shipTotal = shipTotal.Add(o.Shipments[idx].Cost)
		}
	}

	adjustmentTotal := decimal.Zero
	for idx := range o.Adjustments {
		adjustmentTotal = adjustmentTotal.Add(o.Adjustments[idx].Amount)
	}

	o.ItemTotal = itemTotal
	o.ShipTotal = shipTotal
	o.AdjustmentTotal = adjustmentTotal
	o.Total = itemTotal.Add(shipTotal).Add(adjustmentTotal)
	o.Touch()
}

// MarkExported transitions the import state from "yes" to "done"
func (o *Order) MarkExported() error {
	if o.ImportState != ImportStateYes {
		return shared.NewDomainError("INVALID_STATE", "Order is not awaiting export acknowledgement")
	}
	o.ImportState = ImportStateDone
	o.Touch()
	return nil
}

// IsComplete reports whether the order has completed checkout
func (o *Order) IsComplete() bool {
	return o.CompletedAt != nil
}

// TableName returns the database table name for GORM
func (o *Order) TableName() string {
	return "orders"
}
