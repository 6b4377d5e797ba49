package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockwise/internal/core/id"
	"stockwise/internal/domain"
	"stockwise/internal/domain/documents/stocktaking"
	"stockwise/internal/infrastructure/storage/postgres"
)

const (
	stocktakingsTable     = "doc_stocktakings"
	stocktakingLinesTable = "doc_stocktaking_lines"
)

// StocktakingRepo implements stocktaking.Repository.
type StocktakingRepo struct {
	*BaseDocumentRepo[*stocktaking.Stocktaking]
}

// NewStocktakingRepo creates a new stocktaking repository.
func NewStocktakingRepo(txm *postgres.TxManager) *StocktakingRepo {
	return &StocktakingRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			stocktakingsTable,
			postgres.ExtractDBColumns[stocktaking.Stocktaking](),
			func() *stocktaking.Stocktaking { return &stocktaking.Stocktaking{} },
		),
	}
}

// GetByIDForUpdate retrieves the header with a row lock.
func (r *StocktakingRepo) GetByIDForUpdate(ctx context.Context, docID id.ID) (*stocktaking.Stocktaking, error) {
	return r.GetForUpdate(ctx, docID)
}

// GetLines retrieves lines for a stocktaking.
func (r *StocktakingRepo) GetLines(ctx context.Context, docID id.ID) ([]stocktaking.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id",
			"expected_quantity", "counted_quantity", "difference", "notes",
		).
		From(stocktakingLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stocktaking.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a stocktaking (delete existing + insert new).
func (r *StocktakingRepo) SaveLines(ctx context.Context, docID id.ID, lines []stocktaking.Line) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + stocktakingLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(stocktakingLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id",
			"expected_quantity", "counted_quantity", "difference", "notes",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID,
			line.ExpectedQuantity, line.CountedQuantity, line.Difference, line.Notes,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// Delete removes a stocktaking with its lines.
func (r *StocktakingRepo) Delete(ctx context.Context, docID id.ID) error {
	deleteSQL := "DELETE FROM " + stocktakingLinesTable + " WHERE document_id = $1"
	if _, err := r.Querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	return r.BaseDocumentRepo.Delete(ctx, docID)
}

// List retrieves stocktakings with filtering, newest first.
func (r *StocktakingRepo) List(ctx context.Context, filter stocktaking.ListFilter) (domain.ListResult[*stocktaking.Stocktaking], error) {
	result := domain.ListResult[*stocktaking.Stocktaking]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.BaseSelect()

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}

	items, total, err := r.SelectPage(ctx, q, "date DESC, created_at DESC", filter.Limit, filter.Offset)
	if err != nil {
		return result, err
	}

	result.Items = items
	result.TotalCount = total
	return result, nil
}

// HistorySummary aggregates per-session difference counts, newest first.
func (r *StocktakingRepo) HistorySummary(ctx context.Context) ([]stocktaking.SessionSummary, error) {
	q := r.Builder().
		Select(
			"st.id",
			"st.number",
			"st.date",
			"COUNT(sl.line_id)::int AS products_count",
			"SUM(CASE WHEN COALESCE(sl.difference, 0) < 0 THEN 1 ELSE 0 END)::int AS shortage_count",
			"SUM(CASE WHEN COALESCE(sl.difference, 0) > 0 THEN 1 ELSE 0 END)::int AS overage_count",
			"SUM(CASE WHEN COALESCE(sl.difference, 0) = 0 AND sl.line_id IS NOT NULL THEN 1 ELSE 0 END)::int AS matched_count",
		).
		From(stocktakingsTable + " st").
		LeftJoin(stocktakingLinesTable + " sl ON sl.document_id = st.id").
		GroupBy("st.id", "st.number", "st.date").
		OrderBy("st.date DESC", "st.id DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var summaries []stocktaking.SessionSummary
	if err := pgxscan.Select(ctx, r.Querier(ctx), &summaries, sql, args...); err != nil {
		return nil, fmt.Errorf("history summary: %w", err)
	}

	return summaries, nil
}

var _ stocktaking.Repository = (*StocktakingRepo)(nil)
