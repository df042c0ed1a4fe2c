package channel

import (
	"github.com/GudTech/spree-retailops/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentSource is the polymorphic funding source behind a payment. Concrete
// variants carry their own export descriptors; dispatch is always on the
// concrete runtime type.
type PaymentSource interface {
	SourceKind() string
}

// CreditCard is a card funding source
type CreditCard struct {
	Brand      string
	LastDigits string
	Month      int
	Year       int
}

// SourceKind identifies the source variant
func (c *CreditCard) SourceKind() string {
	return "credit_card"
}

// StoreCredit is an account-balance funding source
type StoreCredit struct {
	Memo string
}

// SourceKind identifies the source variant
func (s *StoreCredit) SourceKind() string {
	return "store_credit"
}

// Payment is a payment taken against an order. The card columns are
// persisted flat; Source is hydrated from them on load so the extractor can
// dispatch on the concrete variant.
type Payment struct {
	shared.BaseEntity
	OrderID      uuid.UUID
	Amount       decimal.Decimal
	State        string
	MethodName   string
	CCBrand      string
	CCLastDigits string

	Source PaymentSource `gorm:"-"`
}

// HydrateSource rebuilds the polymorphic source from the persisted columns
func (p *Payment) HydrateSource() {
	if p.CCBrand != "" || p.CCLastDigits != "" {
		p.Source = &CreditCard{Brand: p.CCBrand, LastDigits: p.CCLastDigits}
		return
	}
	if p.MethodName == "store_credit" {
		p.Source = &StoreCredit{}
	}
}

// TableName returns the database table name for GORM
func (p *Payment) TableName() string {
	return "payments"
}
