// Package stocktaking provides the inventory count document and its
// reconciliation workflow.
package stocktaking

import (
	"context"
	"time"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
)

// Status is the stocktaking workflow state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Stocktaking represents a physical inventory count session.
// Start freezes expected quantities; Complete reconciles the ledger to
// the counted values.
type Stocktaking struct {
	entity.Document

	Status Status `db:"status" json:"status"`

	// CreatedByUserID references the operator who opened the session
	CreatedByUserID string `db:"created_by_user_id" json:"createdByUserId,omitempty"`

	// CompletedAt marks when differences were applied (nil until completed)
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`

	// Table part: counted positions
	Lines []Line `db:"-" json:"lines"`
}

// Line is one product position of a stocktaking session.
// ExpectedQuantity is frozen at Start and never refreshed, so the stored
// difference reflects the gap against the snapshot, not the live balance.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// ExpectedQuantity is the system balance captured at snapshot time
	ExpectedQuantity types.Quantity `db:"expected_quantity" json:"expectedQuantity"`

	// CountedQuantity is nil until the position has been counted
	CountedQuantity *types.Quantity `db:"counted_quantity" json:"countedQuantity,omitempty"`

	// Difference = CountedQuantity - ExpectedQuantity (nil while uncounted)
	Difference *types.Quantity `db:"difference" json:"difference,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// IsCounted reports whether the position has a recorded count.
func (l *Line) IsCounted() bool {
	return l.CountedQuantity != nil
}

// SetCount records the physical count and derives the difference.
func (l *Line) SetCount(counted types.Quantity) {
	l.CountedQuantity = &counted
	diff := counted - l.ExpectedQuantity
	l.Difference = &diff
}

// New creates a draft stocktaking session.
func New(createdByUserID string) *Stocktaking {
	return &Stocktaking{
		Document:        entity.NewDocument(),
		Status:          StatusDraft,
		CreatedByUserID: createdByUserID,
		Lines:           make([]Line, 0),
	}
}

// FindLineByProduct returns the line for a product or nil.
func (st *Stocktaking) FindLineByProduct(productID id.ID) *Line {
	for i := range st.Lines {
		if st.Lines[i].ProductID == productID {
			return &st.Lines[i]
		}
	}
	return nil
}

// AddLine appends a position with a frozen expected quantity.
func (st *Stocktaking) AddLine(productID id.ID, expected types.Quantity) *Line {
	line := Line{
		LineID:           id.New(),
		LineNo:           len(st.Lines) + 1,
		ProductID:        productID,
		ExpectedQuantity: expected,
	}
	st.Lines = append(st.Lines, line)
	return &st.Lines[len(st.Lines)-1]
}

// CanModify returns an error when the session is in a terminal state.
func (st *Stocktaking) CanModify() error {
	if st.Status.IsTerminal() {
		return apperror.NewInvalidState("stocktaking", st.ID.String(), string(st.Status), "modify")
	}
	return nil
}

// Validate implements entity.Validatable.
func (st *Stocktaking) Validate(ctx context.Context) error {
	if err := st.Document.Validate(ctx); err != nil {
		return err
	}
	if st.Status == "" {
		return apperror.NewValidation("status is required").
			WithDetail("field", "status")
	}
	for _, line := range st.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
		if line.CountedQuantity != nil && *line.CountedQuantity < 0 {
			return apperror.NewValidation("counted quantity cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
	}
	return nil
}
