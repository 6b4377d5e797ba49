package product

import (
	"context"

	"stockwise/internal/core/id"
	"stockwise/internal/domain"
)

// Repository defines read access to the product catalog.
// Stock quantity writes go through the stock ledger, not here.
type Repository interface {
	domain.CatalogRepository[*Product]

	// ListActiveTracked returns all active products with stock tracking on.
	// Used by stocktaking snapshots and the reorder advisory.
	ListActiveTracked(ctx context.Context) ([]*Product, error)

	// CountActive counts all active products regardless of stock tracking.
	CountActive(ctx context.Context) (int, error)

	// GetMany retrieves products by IDs (missing IDs are skipped).
	GetMany(ctx context.Context, ids []id.ID) ([]*Product, error)
}
