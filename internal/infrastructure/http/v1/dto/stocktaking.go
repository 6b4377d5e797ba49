package dto

import (
	"time"

	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
	"stockwise/internal/domain/documents/stocktaking"
)

// --- Request DTOs ---

// CreateStocktakingRequest represents a request to open a count session.
type CreateStocktakingRequest struct {
	Date            *time.Time `json:"date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedByUserID string     `json:"createdByUserId,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateStocktakingRequest) ToEntity() *stocktaking.Stocktaking {
	doc := stocktaking.New(r.CreatedByUserID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Notes = r.Notes
	return doc
}

// UpdateStocktakingRequest patches session header fields.
type UpdateStocktakingRequest struct {
	Date  *time.Time `json:"date,omitempty"`
	Notes *string    `json:"notes,omitempty"`
}

// ToPatch converts the request to a service-level patch.
func (r *UpdateStocktakingRequest) ToPatch() stocktaking.HeaderPatch {
	return stocktaking.HeaderPatch{
		Date:  r.Date,
		Notes: r.Notes,
	}
}

// CountRequest records one physical count.
type CountRequest struct {
	ProductID       string         `json:"productId" binding:"required"`
	CountedQuantity types.Quantity `json:"countedQuantity" binding:"gte=0"`
	Notes           string         `json:"notes,omitempty"`
}

// RecordCountsRequest records counts for several products at once.
type RecordCountsRequest struct {
	Counts []CountRequest `json:"counts" binding:"required,min=1,dive"`
}

// ToInputs converts the request to service-level inputs.
func (r *RecordCountsRequest) ToInputs() ([]stocktaking.CountInput, error) {
	inputs := make([]stocktaking.CountInput, 0, len(r.Counts))
	for _, c := range r.Counts {
		productID, err := id.Parse(c.ProductID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, stocktaking.CountInput{
			ProductID:       productID,
			CountedQuantity: c.CountedQuantity,
			Notes:           c.Notes,
		})
	}
	return inputs, nil
}

// CompleteStocktakingRequest closes a session.
type CompleteStocktakingRequest struct {
	ApplyDifferences bool   `json:"applyDifferences"`
	Notes            string `json:"notes,omitempty"`
}

// --- Response DTOs ---

// StocktakingResponse represents a count session in API responses.
type StocktakingResponse struct {
	ID              string                    `json:"id"`
	Number          string                    `json:"number"`
	Date            time.Time                 `json:"date"`
	Status          string                    `json:"status"`
	CreatedByUserID string                    `json:"createdByUserId,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	CompletedAt     *time.Time                `json:"completedAt,omitempty"`
	Lines           []StocktakingLineResponse `json:"lines"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

// StocktakingLineResponse represents a counted position.
type StocktakingLineResponse struct {
	LineID           string          `json:"lineId"`
	LineNo           int             `json:"lineNo"`
	ProductID        string          `json:"productId"`
	ExpectedQuantity types.Quantity  `json:"expectedQuantity"`
	CountedQuantity  *types.Quantity `json:"countedQuantity,omitempty"`
	Difference       *types.Quantity `json:"difference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// FromStocktaking converts domain entity to response DTO.
func FromStocktaking(doc *stocktaking.Stocktaking) *StocktakingResponse {
	resp := &StocktakingResponse{
		ID:              doc.ID.String(),
		Number:          doc.Number,
		Date:            doc.Date,
		Status:          string(doc.Status),
		CreatedByUserID: doc.CreatedByUserID,
		Notes:           doc.Notes,
		CompletedAt:     doc.CompletedAt,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}

	resp.Lines = make([]StocktakingLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = StocktakingLineResponse{
			LineID:           line.LineID.String(),
			LineNo:           line.LineNo,
			ProductID:        line.ProductID.String(),
			ExpectedQuantity: line.ExpectedQuantity,
			CountedQuantity:  line.CountedQuantity,
			Difference:       line.Difference,
			Notes:            line.Notes,
		}
	}

	return resp
}

// StocktakingListResponse represents a paginated session list.
type StocktakingListResponse struct {
	Items      []*StocktakingResponse `json:"items"`
	TotalCount int                    `json:"totalCount"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

// SessionSummaryResponse is one row of the stocktaking history summary.
type SessionSummaryResponse struct {
	ID            string    `json:"id"`
	Number        string    `json:"number"`
	Date          time.Time `json:"date"`
	ProductsCount int       `json:"productsCount"`
	ShortageCount int       `json:"shortageCount"`
	OverageCount  int       `json:"overageCount"`
	MatchedCount  int       `json:"matchedCount"`
}

// FromSessionSummary converts a domain summary row.
func FromSessionSummary(s stocktaking.SessionSummary) SessionSummaryResponse {
	return SessionSummaryResponse{
		ID:            s.ID.String(),
		Number:        s.Number,
		Date:          s.Date,
		ProductsCount: s.ProductsCount,
		ShortageCount: s.ShortageCount,
		OverageCount:  s.OverageCount,
		MatchedCount:  s.MatchedCount,
	}
}
