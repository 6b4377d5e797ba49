package dto

import (
	"time"

	"stockwise/internal/core/types"
	"stockwise/internal/domain/registers/stock"
)

// --- Request DTOs ---

// AdjustStockRequest applies a manual correction to a product balance.
type AdjustStockRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Delta     types.Quantity `json:"delta" binding:"required"`
	Reason    string         `json:"reason,omitempty"`
}

// --- Response DTOs ---

// StockResponse reports the on-hand balance of a product.
type StockResponse struct {
	ProductID string         `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// MovementResponse is one journal entry in API responses.
type MovementResponse struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"productId"`
	Type           string         `json:"type"`
	Quantity       types.Quantity `json:"quantity"`
	QuantityBefore types.Quantity `json:"quantityBefore"`
	QuantityAfter  types.Quantity `json:"quantityAfter"`
	DocumentID     string         `json:"documentId,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// FromMovement converts a journal entry to a response DTO.
func FromMovement(m *stock.Movement) MovementResponse {
	resp := MovementResponse{
		ID:             m.ID.String(),
		ProductID:      m.ProductID.String(),
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
	}
	if m.DocumentID != nil {
		resp.DocumentID = m.DocumentID.String()
	}
	return resp
}

// MovementListResponse is the journal history for one product.
type MovementListResponse struct {
	ProductID string             `json:"productId"`
	Items     []MovementResponse `json:"items"`
}
