// Package product defines the product catalog boundary.
// Products are reference data: the stock ledger owns all writes to the
// on-hand quantity, catalog consumers only read it.
package product

import (
	"context"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
)

// Product is a stockable item of the product catalog.
type Product struct {
	entity.Catalog

	// SKU is the stock keeping unit (unique)
	SKU string `db:"sku" json:"sku"`

	// Unit is the display unit of measure (pcs, ml, pack)
	Unit string `db:"unit" json:"unit"`

	// Type groups products for filtering (retail, backbar, consumable)
	Type string `db:"product_type" json:"type,omitempty"`

	// StockQuantity is the current on-hand quantity in whole units.
	// Never negative. Written exclusively by the stock ledger.
	StockQuantity types.Quantity `db:"stock_quantity" json:"stockQuantity"`

	// MinQuantity is the reorder threshold
	MinQuantity types.Quantity `db:"min_quantity" json:"minQuantity"`

	// UnitCost is the last known purchase cost per unit
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	// DefaultSupplierID is the preferred supplier (nullable)
	DefaultSupplierID *id.ID `db:"default_supplier_id" json:"defaultSupplierId,omitempty"`

	// TrackStock disables ledger and advisory participation when false
	TrackStock bool `db:"track_stock" json:"trackStock"`
}

// New creates a product with generated ID and stock tracking enabled.
func New(code, name, sku string) *Product {
	return &Product{
		Catalog:    entity.NewCatalog(code, name),
		SKU:        sku,
		Unit:       "pcs",
		TrackStock: true,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if p.SKU == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}
	if p.StockQuantity < 0 {
		return apperror.NewValidation("stock quantity cannot be negative").
			WithDetail("field", "stockQuantity")
	}
	if p.MinQuantity < 0 {
		return apperror.NewValidation("min quantity cannot be negative").
			WithDetail("field", "minQuantity")
	}
	return nil
}

// IsTracked reports whether the product participates in stock workflows.
func (p *Product) IsTracked() bool {
	return p.IsActive && p.TrackStock
}
