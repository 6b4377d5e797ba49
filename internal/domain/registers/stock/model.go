// Package stock provides the stock ledger: the single writer of on-hand
// quantities and the append-only movement journal behind them.
package stock

import (
	"time"

	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
)

// MovementType classifies a ledger mutation by its source.
type MovementType string

const (
	// MovementDelivery records goods received from a supplier
	MovementDelivery MovementType = "delivery"

	// MovementStocktaking records a count reconciliation
	MovementStocktaking MovementType = "stocktaking"

	// MovementAdjustment records a manual correction
	MovementAdjustment MovementType = "adjustment"
)

// Movement is one journal entry of the stock ledger.
// Entries are append-only; history is never rewritten.
type Movement struct {
	ID id.ID `db:"id" json:"id"`

	ProductID id.ID        `db:"product_id" json:"productId"`
	Type      MovementType `db:"movement_type" json:"type"`

	// Quantity is the signed delta applied to on-hand stock
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// QuantityBefore/After snapshot the balance around the mutation
	QuantityBefore types.Quantity `db:"quantity_before" json:"quantityBefore"`
	QuantityAfter  types.Quantity `db:"quantity_after" json:"quantityAfter"`

	// DocumentID links back to the originating document (nullable)
	DocumentID *id.ID `db:"document_id" json:"documentId,omitempty"`

	// Reason is a free-form note for manual adjustments
	Reason string `db:"reason" json:"reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement builds a journal entry for an applied delta.
func NewMovement(productID id.ID, mt MovementType, delta, before types.Quantity) *Movement {
	return &Movement{
		ID:             id.New(),
		ProductID:      productID,
		Type:           mt,
		Quantity:       delta,
		QuantityBefore: before,
		QuantityAfter:  before + delta,
		CreatedAt:      time.Now().UTC(),
	}
}
