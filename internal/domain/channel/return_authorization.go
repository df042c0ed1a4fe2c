package channel

import (
	"fmt"

	"github.com/GudTech/spree-retailops/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RmaState is the binary lifecycle state of a return authorization.
// Received is terminal: a received RMA is never mutated again by the
// synchronization engine.
type RmaState string

const (
	RmaStatePending  RmaState = "pending"
	RmaStateReceived RmaState = "received"
)

// IsValid checks if the state is a valid RmaState
func (s RmaState) IsValid() bool {
	return s == RmaStatePending || s == RmaStateReceived
}

// RmaNumber derives the local RMA number for a RetailOps return group.
// The mapping is a pure function so repeated payloads for the same group
// always resolve to the same local record.
func RmaNumber(groupID int64) string {
	return fmt.Sprintf("RMA-RO-%d", groupID)
}

// SubReturnNumber derives the local number for a closed RetailOps sub-return
func SubReturnNumber(returnID int64) string {
	return fmt.Sprintf("RMA-RET-%d", returnID)
}

// ReturnAuthorizationItem records the authorized return quantity for one
// variant under an RMA
type ReturnAuthorizationItem struct {
	shared.BaseEntity
	ReturnAuthorizationID uuid.UUID
	VariantID             uuid.UUID
	Quantity              int
}

// TableName returns the database table name for GORM
func (i *ReturnAuthorizationItem) TableName() string {
	return "return_authorization_items"
}

// ReturnAuthorization permits the return of specific quantities of specific
// variants on an order
type ReturnAuthorization struct {
	shared.BaseEntity
	OrderID uuid.UUID
	Number  string
	State   RmaState
	Amount  decimal.Decimal
	Items   []ReturnAuthorizationItem `gorm:"foreignKey:ReturnAuthorizationID"`
}

// NewReturnAuthorization creates a new pending RMA
func NewReturnAuthorization(orderID uuid.UUID, number string) (*ReturnAuthorization, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "RMA number cannot be empty")
	}

	return &ReturnAuthorization{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Number:     number,
		State:      RmaStatePending,
		Amount:     decimal.Zero,
	}, nil
}

// IsReceived reports whether the RMA reached its terminal state
func (r *ReturnAuthorization) IsReceived() bool {
	return r.State == RmaStateReceived
}

// MarkReceived transitions the RMA to its terminal state
func (r *ReturnAuthorization) MarkReceived() error {
	if r.State == RmaStateReceived {
		return shared.NewDomainError("INVALID_STATE", "RMA is already received")
	}
	r.State = RmaStateReceived
	r.Touch()
	return nil
}

// SetVariantQuantity sets (not adds) the recorded quantity for a variant.
// A zero quantity keeps the item row with quantity 0 so a later sync can
// raise it again without recreating the row.
func (r *ReturnAuthorization) SetVariantQuantity(variantID uuid.UUID, quantity int) {
	if quantity < 0 {
		quantity = 0
	}
	for idx := range r.Items {
		if r.Items[idx].VariantID == variantID {
			r.Items[idx].Quantity = quantity
			r.Items[idx].Touch()
			r.Touch()
			return
		}
	}
	item := ReturnAuthorizationItem{
		BaseEntity:            shared.NewBaseEntity(),
		ReturnAuthorizationID: r.ID,
		VariantID:             variantID,
		Quantity:              quantity,
	}
	r.Items = append(r.Items, item)
	r.Touch()
}

// QuantityForVariant returns the recorded quantity for a variant
func (r *ReturnAuthorization) QuantityForVariant(variantID uuid.UUID) int {
	for idx := range r.Items {
		if r.Items[idx].VariantID == variantID {
			return r.Items[idx].Quantity
		}
	}
	return 0
}

// TotalQuantity returns the summed recorded quantity across all variants
func (r *ReturnAuthorization) TotalQuantity() int {
	total := 0
	for idx := range r.Items {
		total += r.Items[idx].Quantity
	}
	return total
}

// SetAmount updates the monetary amount; reports whether the value changed
func (r *ReturnAuthorization) SetAmount(amount decimal.Decimal) bool {
	if r.Amount.Equal(amount) {
		return false
	}
	r.Amount = amount
	r.Touch()
	return true
}

// TableName returns the database table name for GORM
func (r *ReturnAuthorization) TableName() string {
	return "return_authorizations"
}
