package stock

import (
	"context"
	"time"

	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
)

// Repository defines storage operations for the stock ledger.
// Quantity reads with ForUpdate lock the product row until the surrounding
// transaction ends; callers are expected to run inside tx.Manager.
type Repository interface {
	// GetQuantity returns current on-hand quantity (no lock).
	// Returns NotFound if the product does not exist.
	GetQuantity(ctx context.Context, productID id.ID) (types.Quantity, error)

	// GetQuantityForUpdate returns the quantity with a row lock.
	GetQuantityForUpdate(ctx context.Context, productID id.ID) (types.Quantity, error)

	// SetQuantity writes the new on-hand quantity for a locked row.
	SetQuantity(ctx context.Context, productID id.ID, qty types.Quantity) error

	// AppendMovements inserts journal entries (batch).
	AppendMovements(ctx context.Context, movements []*Movement) error

	// ListMovements returns journal history for a product, newest first.
	ListMovements(ctx context.Context, productID id.ID, filter MovementFilter) ([]*Movement, error)
}

// MovementFilter narrows journal history queries.
type MovementFilter struct {
	Type     *MovementType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
