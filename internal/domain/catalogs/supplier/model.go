// Package supplier defines the supplier catalog boundary.
package supplier

import (
	"stockwise/internal/core/entity"
)

// Supplier is a purchasing counterparty.
type Supplier struct {
	entity.Catalog

	// ContactEmail for reorder communication (optional)
	ContactEmail string `db:"contact_email" json:"contactEmail,omitempty"`

	// Phone for reorder communication (optional)
	Phone string `db:"phone" json:"phone,omitempty"`
}

// New creates a supplier with generated ID.
func New(code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
	}
}
