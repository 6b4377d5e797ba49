package supplier

import (
	"context"

	"stockwise/internal/core/id"
	"stockwise/internal/domain"
)

// Repository defines read access to the supplier catalog.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// GetMany retrieves suppliers by IDs (missing IDs are skipped).
	GetMany(ctx context.Context, ids []id.ID) ([]*Supplier, error)
}
