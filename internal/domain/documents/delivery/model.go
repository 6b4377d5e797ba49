// Package delivery provides the supplier delivery document and its
// receive workflow.
package delivery

import (
	"context"
	"time"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
)

// Status is the delivery workflow state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusReceived || s == StatusCancelled
}

// Delivery represents incoming goods from a supplier.
// Stock changes only on Receive; until then the document is a plan.
type Delivery struct {
	entity.Document

	// SupplierID is the sending counterparty (nullable for walk-in purchases)
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	Status Status `db:"status" json:"status"`

	// InvoiceNumber is the supplier's invoice reference
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber,omitempty"`

	// TotalCost is the sum of line totals, fixed at receive time
	TotalCost types.Money `db:"total_cost" json:"totalCost"`

	// ReceivedAt marks when stock was posted (nil until received)
	ReceivedAt *time.Time `db:"received_at" json:"receivedAt,omitempty"`

	// Table part: expected goods
	Lines []Line `db:"-" json:"lines"`
}

// Line is one expected product position of a delivery.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity in whole units, always positive
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitCost is the purchase price per unit
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	// TotalCost = Quantity * UnitCost
	TotalCost types.Money `db:"total_cost" json:"totalCost"`

	// BatchNumber is the supplier's lot reference (optional)
	BatchNumber string `db:"batch_number" json:"batchNumber,omitempty"`

	// ExpiryDate for perishable goods (optional)
	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
}

// New creates a draft delivery.
func New(supplierID *id.ID) *Delivery {
	return &Delivery{
		Document:   entity.NewDocument(),
		SupplierID: supplierID,
		Status:     StatusDraft,
		TotalCost:  types.Zero(),
		Lines:      make([]Line, 0),
	}
}

// AddLine appends a line and recalculates the document total.
func (d *Delivery) AddLine(productID id.ID, quantity types.Quantity, unitCost types.Money) *Line {
	line := Line{
		LineID:    id.New(),
		LineNo:    d.nextLineNo(),
		ProductID: productID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		TotalCost: types.MoneyFromUnits(unitCost, quantity),
	}
	d.Lines = append(d.Lines, line)
	d.RecalculateTotal()
	return &d.Lines[len(d.Lines)-1]
}

// FindLine returns the line with the given number or nil.
func (d *Delivery) FindLine(lineNo int) *Line {
	for i := range d.Lines {
		if d.Lines[i].LineNo == lineNo {
			return &d.Lines[i]
		}
	}
	return nil
}

// RemoveLine deletes a line by number. Remaining line numbers keep their
// values so references stay stable.
func (d *Delivery) RemoveLine(lineNo int) bool {
	for i := range d.Lines {
		if d.Lines[i].LineNo == lineNo {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			d.RecalculateTotal()
			return true
		}
	}
	return false
}

// RecalculateTotal updates the document total from lines.
func (d *Delivery) RecalculateTotal() {
	total := types.Zero()
	for i := range d.Lines {
		d.Lines[i].TotalCost = types.MoneyFromUnits(d.Lines[i].UnitCost, d.Lines[i].Quantity)
		total = total.Add(d.Lines[i].TotalCost)
	}
	d.TotalCost = total
}

func (d *Delivery) nextLineNo() int {
	max := 0
	for i := range d.Lines {
		if d.Lines[i].LineNo > max {
			max = d.Lines[i].LineNo
		}
	}
	return max + 1
}

// CanModify returns an error when the document is in a terminal state.
func (d *Delivery) CanModify() error {
	if d.Status.IsTerminal() {
		return apperror.NewInvalidState("delivery", d.ID.String(), string(d.Status), "modify")
	}
	return nil
}

// Validate implements entity.Validatable.
func (d *Delivery) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}
	if d.Status == "" {
		return apperror.NewValidation("status is required").
			WithDetail("field", "status")
	}
	for _, line := range d.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
	}
	return nil
}
