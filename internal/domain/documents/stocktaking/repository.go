package stocktaking

import (
	"context"
	"time"

	"stockwise/internal/core/id"
	"stockwise/internal/domain"
)

// Repository defines storage operations for stocktaking documents.
type Repository interface {
	// Create inserts the document header
	Create(ctx context.Context, doc *Stocktaking) error

	// GetByID retrieves the header. Returns NotFound if absent.
	GetByID(ctx context.Context, docID id.ID) (*Stocktaking, error)

	// GetByIDForUpdate retrieves the header with a row lock.
	GetByIDForUpdate(ctx context.Context, docID id.ID) (*Stocktaking, error)

	// Update saves header changes with optimistic locking.
	Update(ctx context.Context, doc *Stocktaking) error

	// Delete removes the document and its lines.
	Delete(ctx context.Context, docID id.ID) error

	// SaveLines replaces the table part.
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// GetLines loads the table part ordered by line number.
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)

	// List retrieves headers with filtering, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Stocktaking], error)

	// HistorySummary aggregates per-session difference counts, newest first.
	HistorySummary(ctx context.Context) ([]SessionSummary, error)
}

// ListFilter narrows stocktaking queries.
type ListFilter struct {
	Status   *Status
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// SessionSummary aggregates one session's count outcomes.
type SessionSummary struct {
	ID            id.ID     `db:"id" json:"id"`
	Number        string    `db:"number" json:"number"`
	Date          time.Time `db:"date" json:"date"`
	ProductsCount int       `db:"products_count" json:"productsCount"`
	ShortageCount int       `db:"shortage_count" json:"shortageCount"`
	OverageCount  int       `db:"overage_count" json:"overageCount"`
	MatchedCount  int       `db:"matched_count" json:"matchedCount"`
}
