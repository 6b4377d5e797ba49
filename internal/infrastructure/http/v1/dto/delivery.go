package dto

import (
	"time"

	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
	"stockwise/internal/domain/documents/delivery"
)

// --- Request DTOs ---

// CreateDeliveryRequest represents a request to create a delivery.
type CreateDeliveryRequest struct {
	SupplierID    string                `json:"supplierId,omitempty"`
	Date          *time.Time            `json:"date,omitempty"`
	InvoiceNumber string                `json:"invoiceNumber,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Status        string                `json:"status,omitempty"`
	Lines         []DeliveryLineRequest `json:"lines,omitempty"`
}

// DeliveryLineRequest represents a line in a create request.
type DeliveryLineRequest struct {
	ProductID   string         `json:"productId" binding:"required"`
	Quantity    types.Quantity `json:"quantity" binding:"required,gt=0"`
	UnitCost    types.Money    `json:"unitCost"`
	BatchNumber string         `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time     `json:"expiryDate,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateDeliveryRequest) ToEntity() (*delivery.Delivery, error) {
	var supplierID *id.ID
	if r.SupplierID != "" {
		parsed, err := id.Parse(r.SupplierID)
		if err != nil {
			return nil, err
		}
		supplierID = &parsed
	}

	doc := delivery.New(supplierID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.InvoiceNumber = r.InvoiceNumber
	doc.Notes = r.Notes
	if r.Status != "" {
		doc.Status = delivery.Status(r.Status)
	}

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, err
		}
		l := doc.AddLine(productID, line.Quantity, line.UnitCost)
		l.BatchNumber = line.BatchNumber
		l.ExpiryDate = line.ExpiryDate
	}

	return doc, nil
}

// UpdateDeliveryRequest patches delivery header fields.
type UpdateDeliveryRequest struct {
	SupplierID    *string    `json:"supplierId,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	InvoiceNumber *string    `json:"invoiceNumber,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	Status        *string    `json:"status,omitempty"`
}

// ToPatch converts the request to a service-level patch.
func (r *UpdateDeliveryRequest) ToPatch() (delivery.HeaderPatch, error) {
	patch := delivery.HeaderPatch{
		Date:          r.Date,
		InvoiceNumber: r.InvoiceNumber,
		Notes:         r.Notes,
	}
	if r.SupplierID != nil {
		parsed, err := id.Parse(*r.SupplierID)
		if err != nil {
			return patch, err
		}
		patch.SupplierID = &parsed
	}
	if r.Status != nil {
		status := delivery.Status(*r.Status)
		patch.Status = &status
	}
	return patch, nil
}

// AddDeliveryItemRequest appends a line to a delivery.
type AddDeliveryItemRequest struct {
	ProductID   string         `json:"productId" binding:"required"`
	Quantity    types.Quantity `json:"quantity" binding:"required,gt=0"`
	UnitCost    types.Money    `json:"unitCost"`
	BatchNumber string         `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time     `json:"expiryDate,omitempty"`
}

// UpdateDeliveryItemRequest patches an existing line.
type UpdateDeliveryItemRequest struct {
	Quantity    *types.Quantity `json:"quantity,omitempty"`
	UnitCost    *types.Money    `json:"unitCost,omitempty"`
	BatchNumber *string         `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time      `json:"expiryDate,omitempty"`
}

// ReceiveDeliveryRequest confirms goods arrival.
type ReceiveDeliveryRequest struct {
	Notes string `json:"notes,omitempty"`
}

// --- Response DTOs ---

// DeliveryResponse represents a delivery in API responses.
type DeliveryResponse struct {
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	Date          time.Time              `json:"date"`
	Status        string                 `json:"status"`
	SupplierID    string                 `json:"supplierId,omitempty"`
	InvoiceNumber string                 `json:"invoiceNumber,omitempty"`
	TotalCost     types.Money            `json:"totalCost"`
	Notes         string                 `json:"notes,omitempty"`
	ReceivedAt    *time.Time             `json:"receivedAt,omitempty"`
	Lines         []DeliveryLineResponse `json:"lines"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// DeliveryLineResponse represents a line in API responses.
type DeliveryLineResponse struct {
	LineID      string         `json:"lineId"`
	LineNo      int            `json:"lineNo"`
	ProductID   string         `json:"productId"`
	Quantity    types.Quantity `json:"quantity"`
	UnitCost    types.Money    `json:"unitCost"`
	TotalCost   types.Money    `json:"totalCost"`
	BatchNumber string         `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time     `json:"expiryDate,omitempty"`
}

// FromDelivery converts domain entity to response DTO.
func FromDelivery(doc *delivery.Delivery) *DeliveryResponse {
	resp := &DeliveryResponse{
		ID:            doc.ID.String(),
		Number:        doc.Number,
		Date:          doc.Date,
		Status:        string(doc.Status),
		InvoiceNumber: doc.InvoiceNumber,
		TotalCost:     doc.TotalCost,
		Notes:         doc.Notes,
		ReceivedAt:    doc.ReceivedAt,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	if doc.SupplierID != nil {
		resp.SupplierID = doc.SupplierID.String()
	}

	resp.Lines = make([]DeliveryLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = DeliveryLineResponse{
			LineID:      line.LineID.String(),
			LineNo:      line.LineNo,
			ProductID:   line.ProductID.String(),
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			TotalCost:   line.TotalCost,
			BatchNumber: line.BatchNumber,
			ExpiryDate:  line.ExpiryDate,
		}
	}

	return resp
}

// DeliveryListResponse represents a paginated delivery list.
type DeliveryListResponse struct {
	Items      []*DeliveryResponse `json:"items"`
	TotalCount int                 `json:"totalCount"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}
