package channel

import (
	"github.com/GudTech/spree-retailops/internal/domain/shared"
)

// Address is a shipping or billing address on an order
type Address struct {
	shared.BaseEntity
	FirstName  string
	LastName   string
	Address1   string
	Address2   string
	City       string
	Zipcode    string
	Phone      string
	StateName  string
	CountryISO string
}

// FullName returns the addressee name
func (a *Address) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// TableName returns the database table name for GORM
func (a *Address) TableName() string {
	return "addresses"
}
