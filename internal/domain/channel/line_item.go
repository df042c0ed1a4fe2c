package channel

import (
	"time"

	"github.com/GudTech/spree-retailops/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is the read-mostly catalog record a line item sells. Variants are
// keyed externally by SKU; the channel never mutates them through this
// service (catalog import is a separate integration).
type Variant struct {
	shared.BaseEntity
	SKU      string
	Name     string
	Advisory bool // advisory items are informational and never fulfilled
}

// TableName returns the database table name for GORM
func (v *Variant) TableName() string {
	return "variants"
}

// LineItem belongs to an Order and references a Variant. Corr is the
// correlation id the channel assigns for the current synchronization cycle;
// it is persisted so later cycles and return payloads can resolve the line.
type LineItem struct {
	shared.BaseEntity
	OrderID               uuid.UUID
	Corr                  string
	VariantID             uuid.UUID
	Variant               Variant `gorm:"foreignKey:VariantID"`
	SKU                   string
	Quantity              int
	UnitPrice             decimal.Decimal
	UnitCost              decimal.Decimal
	DirectShipAmount      decimal.Decimal
	ApportionedShipAmount decimal.Decimal
	ExpectedShipDate      *time.Time
}

// NewLineItem creates a new line item for an order
func NewLineItem(orderID uuid.UUID, variant Variant, quantity int, unitPrice decimal.Decimal) (*LineItem, error) {
	if variant.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &LineItem{
		BaseEntity:            shared.NewBaseEntity(),
		OrderID:               orderID,
		VariantID:             variant.ID,
		Variant:               variant,
		SKU:                   variant.SKU,
		Quantity:              quantity,
		UnitPrice:             unitPrice,
		UnitCost:              decimal.Zero,
		DirectShipAmount:      decimal.Zero,
		ApportionedShipAmount: decimal.Zero,
	}, nil
}

// Amount returns the extended price of the line
func (i *LineItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SetQuantity updates the quantity
func (i *LineItem) SetQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	i.Quantity = quantity
	i.Touch()
	return nil
}

// SetUnitPrice updates the unit price
func (i *LineItem) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	i.UnitPrice = price
	i.Touch()
	return nil
}

// TableName returns the database table name for GORM
func (i *LineItem) TableName() string {
	return "line_items"
}
