package channel

import (
	"github.com/GudTech/spree-retailops/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentKind classifies a monetary modifier on an order
type AdjustmentKind string

const (
	AdjustmentKindTax       AdjustmentKind = "tax"
	AdjustmentKindPromotion AdjustmentKind = "promotion"
	AdjustmentKindShipping  AdjustmentKind = "shipping"
)

// IsValid checks if the kind is a valid AdjustmentKind
func (k AdjustmentKind) IsValid() bool {
	switch k {
	case AdjustmentKindTax, AdjustmentKindPromotion, AdjustmentKindShipping:
		return true
	}
	return false
}

// AdjustmentState is the binary open/closed state of an adjustment.
// Open adjustments recalculate automatically on the next recompute;
// closed adjustments are frozen at their current amount.
type AdjustmentState string

const (
	AdjustmentStateOpen   AdjustmentState = "open"
	AdjustmentStateClosed AdjustmentState = "closed"
)

// Adjustment is a tax, promotion or shipping modifier on an order
type Adjustment struct {
	shared.BaseEntity
	OrderID uuid.UUID
	Kind    AdjustmentKind
	Label   string
	Amount  decimal.Decimal
	State   AdjustmentState
}

// NewAdjustment creates a new open adjustment
func NewAdjustment(orderID uuid.UUID, kind AdjustmentKind, label string, amount decimal.Decimal) (*Adjustment, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown adjustment kind")
	}

	return &Adjustment{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Kind:       kind,
		Label:      label,
		Amount:     amount,
		State:      AdjustmentStateOpen,
	}, nil
}

// IsOpen reports whether the adjustment still recalculates
func (a *Adjustment) IsOpen() bool {
	return a.State == AdjustmentStateOpen
}

// Close freezes the adjustment; reports whether the state changed
func (a *Adjustment) Close() bool {
	if a.State != AdjustmentStateOpen {
		return false
	}
	a.State = AdjustmentStateClosed
	a.Touch()
	return true
}

// Open unfreezes the adjustment; reports whether the state changed
func (a *Adjustment) Open() bool {
	if a.State != AdjustmentStateClosed {
		return false
	}
	a.State = AdjustmentStateOpen
	a.Touch()
	return true
}

// TableName returns the database table name for GORM
func (a *Adjustment) TableName() string {
	return "adjustments"
}
