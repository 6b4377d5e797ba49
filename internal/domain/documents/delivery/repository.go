package delivery

import (
	"context"
	"time"

	"stockwise/internal/core/id"
	"stockwise/internal/domain"
)

// Repository defines storage operations for delivery documents.
// GetByID returns the header only; lines load separately.
type Repository interface {
	// Create inserts the document header
	Create(ctx context.Context, doc *Delivery) error

	// GetByID retrieves the header. Returns NotFound if absent.
	GetByID(ctx context.Context, docID id.ID) (*Delivery, error)

	// GetByIDForUpdate retrieves the header with a row lock.
	// Terminal transitions re-read through this inside their transaction.
	GetByIDForUpdate(ctx context.Context, docID id.ID) (*Delivery, error)

	// Update saves header changes with optimistic locking.
	Update(ctx context.Context, doc *Delivery) error

	// Delete removes the document and its lines.
	Delete(ctx context.Context, docID id.ID) error

	// SaveLines replaces the table part.
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// GetLines loads the table part ordered by line number.
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)

	// List retrieves headers with filtering, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Delivery], error)
}

// ListFilter narrows delivery queries.
type ListFilter struct {
	Status     *Status
	SupplierID *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// ProductChecker verifies product references before they enter lines.
type ProductChecker interface {
	Exists(ctx context.Context, productID id.ID) (bool, error)
}
