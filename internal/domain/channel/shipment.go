package channel

import (
	"github.com/GudTech/spree-retailops/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentState represents the fulfillment state of a shipment
type ShipmentState string

const (
	ShipmentStatePending   ShipmentState = "pending"
	ShipmentStateReady     ShipmentState = "ready"
	ShipmentStateShipped   ShipmentState = "shipped"
	ShipmentStateCancelled ShipmentState = "cancelled"
)

// IsValid checks if the state is a valid ShipmentState
func (s ShipmentState) IsValid() bool {
	switch s {
	case ShipmentStatePending, ShipmentStateReady, ShipmentStateShipped, ShipmentStateCancelled:
		return true
	}
	return false
}

// Shipment is a fulfillment unit of an order
type Shipment struct {
	shared.BaseEntity
	OrderID            uuid.UUID
	Number             string
	State              ShipmentState
	Cost               decimal.Decimal
	TrackingNumber     string
	ShippingMethodName string
}

// NewShipment creates a new pending shipment
func NewShipment(orderID uuid.UUID, number string, cost decimal.Decimal) (*Shipment, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Shipment number cannot be empty")
	}

	return &Shipment{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Number:     number,
		State:      ShipmentStatePending,
		Cost:       cost,
	}, nil
}

// SetCost updates the shipment cost; reports whether the value changed
func (s *Shipment) SetCost(cost decimal.Decimal) bool {
	if s.Cost.Equal(cost) {
		return false
	}
	s.Cost = cost
	s.Touch()
	return true
}

// IsShipped reports whether the shipment has left the warehouse
func (s *Shipment) IsShipped() bool {
	return s.State == ShipmentStateShipped
}

// TableName returns the database table name for GORM
func (s *Shipment) TableName() string {
	return "shipments"
}
