// Package register_repo provides PostgreSQL implementations for register
// repositories.
package register_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "reg_stock_movements"
	productsTable       = "cat_products"
)

// StockRepo implements stock.Repository over cat_products.stock_quantity
// and the reg_stock_movements journal.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetQuantity returns the current on-hand quantity without locking.
func (r *StockRepo) GetQuantity(ctx context.Context, productID id.ID) (types.Quantity, error) {
	return r.getQuantity(ctx, productID, false)
}

// GetQuantityForUpdate returns the quantity with a row lock.
// The lock is held until the surrounding transaction ends.
func (r *StockRepo) GetQuantityForUpdate(ctx context.Context, productID id.ID) (types.Quantity, error) {
	return r.getQuantity(ctx, productID, true)
}

func (r *StockRepo) getQuantity(ctx context.Context, productID id.ID, forUpdate bool) (types.Quantity, error) {
	q := r.builder.
		Select("stock_quantity").
		From(productsTable).
		Where(squirrel.Eq{"id": productID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var qty types.Quantity
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFound(productsTable, productID.String())
	}
	if err != nil {
		return 0, fmt.Errorf("get quantity: %w", err)
	}

	return qty, nil
}

// SetQuantity writes the new on-hand quantity for a locked row.
func (r *StockRepo) SetQuantity(ctx context.Context, productID id.ID, qty types.Quantity) error {
	q := r.builder.
		Update(productsTable).
		Set("stock_quantity", qty).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(productsTable, productID.String())
	}

	return nil
}

var movementColumns = []string{
	"id", "product_id", "movement_type", "quantity",
	"quantity_before", "quantity_after", "document_id", "reason", "created_at",
}

// AppendMovements batch inserts journal entries.
func (r *StockRepo) AppendMovements(ctx context.Context, movements []*stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.ID, m.ProductID, m.Type, m.Quantity,
				m.QuantityBefore, m.QuantityAfter, m.DocumentID, m.Reason, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: plain insert outside a transaction.
	q := r.builder.Insert(stockMovementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.ProductID, m.Type, m.Quantity,
			m.QuantityBefore, m.QuantityAfter, m.DocumentID, m.Reason, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert movements: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// ListMovements returns journal history for a product, newest first.
func (r *StockRepo) ListMovements(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]*stock.Movement, error) {
	q := r.builder.
		Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC")

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []*stock.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	return movements, nil
}

var _ stock.Repository = (*StockRepo)(nil)
