package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockwise/internal/core/id"
	"stockwise/internal/domain/catalogs/supplier"
	"stockwise/internal/infrastructure/storage/postgres"
)

const suppliersTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			suppliersTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// GetMany retrieves suppliers by IDs. Missing IDs are skipped.
func (r *SupplierRepo) GetMany(ctx context.Context, ids []id.ID) ([]*supplier.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := r.BaseSelect().
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*supplier.Supplier
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get many: %w", err)
	}

	return items, nil
}

var _ supplier.Repository = (*SupplierRepo)(nil)
