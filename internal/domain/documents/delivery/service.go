package delivery

import (
	"context"
	"fmt"
	"time"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/numerator"
	"stockwise/internal/core/tx"
	"stockwise/internal/core/types"
	"stockwise/internal/domain"
	"stockwise/internal/domain/registers/stock"
	"stockwise/pkg/logger"
)

// NumberPrefix for generated delivery numbers (DLV-2026-00001).
const NumberPrefix = "DLV"

// Ledger posts stock changes when a delivery is received.
type Ledger interface {
	BatchAdjust(ctx context.Context, adjustments []stock.Adjustment) error
}

// ItemInput describes a new delivery line.
type ItemInput struct {
	ProductID   id.ID
	Quantity    types.Quantity
	UnitCost    types.Money
	BatchNumber string
	ExpiryDate  *time.Time
}

// ItemPatch updates an existing line; nil fields stay unchanged.
type ItemPatch struct {
	Quantity    *types.Quantity
	UnitCost    *types.Money
	BatchNumber *string
	ExpiryDate  *time.Time
}

// HeaderPatch updates document header fields; nil fields stay unchanged.
type HeaderPatch struct {
	SupplierID    *id.ID
	Date          *time.Time
	InvoiceNumber *string
	Notes         *string
	Status        *Status
}

// Service provides business operations for delivery documents.
type Service struct {
	repo      Repository
	products  ProductChecker
	ledger    Ledger
	numerator numerator.Generator
	txm       tx.Manager
	hooks     *domain.HookRegistry[*Delivery]
}

// NewService creates a delivery service.
func NewService(
	repo Repository,
	products ProductChecker,
	ledger Ledger,
	gen numerator.Generator,
	txm tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		ledger:    ledger,
		numerator: gen,
		txm:       txm,
		hooks:     domain.NewHookRegistry[*Delivery](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Delivery] {
	return s.hooks
}

// Create persists a new draft delivery, assigning a document number.
func (s *Service) Create(ctx context.Context, doc *Delivery) error {
	if err := s.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
		return err
	}

	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if doc.Status != StatusDraft && doc.Status != StatusPending {
		return apperror.NewValidation("new delivery must be draft or pending").
			WithDetail("status", string(doc.Status))
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkProducts(ctx, doc.Lines); err != nil {
		return err
	}
	doc.RecalculateTotal()

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "delivery created",
		"id", doc.ID,
		"number", doc.Number,
		"lines", len(doc.Lines))
	return nil
}

// GetByID retrieves a delivery with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Delivery, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines
	return doc, nil
}

// Update patches header fields of a non-terminal delivery.
// Status may only move between draft and pending here; terminal states
// are reached through Receive and Cancel.
func (s *Service) Update(ctx context.Context, docID id.ID, patch HeaderPatch) (*Delivery, error) {
	if patch.Status != nil && *patch.Status != StatusDraft && *patch.Status != StatusPending {
		return nil, apperror.NewValidation("status can only change to draft or pending").
			WithDetail("status", string(*patch.Status))
	}

	var doc *Delivery
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(); err != nil {
			return err
		}

		if patch.SupplierID != nil {
			doc.SupplierID = patch.SupplierID
		}
		if patch.Date != nil {
			doc.Date = *patch.Date
		}
		if patch.InvoiceNumber != nil {
			doc.InvoiceNumber = *patch.InvoiceNumber
		}
		if patch.Notes != nil {
			doc.Notes = *patch.Notes
		}
		if patch.Status != nil {
			doc.Status = *patch.Status
		}

		doc.Touch()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, docID)
}

// AddItem appends a line to a non-terminal delivery.
func (s *Service) AddItem(ctx context.Context, docID id.ID, input ItemInput) (*Delivery, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if input.UnitCost.IsNegative() {
		return nil, apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	exists, err := s.products.Exists(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, apperror.NewNotFound("product", input.ProductID.String())
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.loadForModify(ctx, docID)
		if err != nil {
			return err
		}

		line := doc.AddLine(input.ProductID, input.Quantity, input.UnitCost)
		line.BatchNumber = input.BatchNumber
		line.ExpiryDate = input.ExpiryDate

		return s.saveWithLines(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, docID)
}

// UpdateItem patches a line of a non-terminal delivery.
func (s *Service) UpdateItem(ctx context.Context, docID id.ID, lineNo int, patch ItemPatch) (*Delivery, error) {
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if patch.UnitCost != nil && patch.UnitCost.IsNegative() {
		return nil, apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.loadForModify(ctx, docID)
		if err != nil {
			return err
		}

		line := doc.FindLine(lineNo)
		if line == nil {
			return apperror.NewNotFound("delivery line", lineNo)
		}

		if patch.Quantity != nil {
			line.Quantity = *patch.Quantity
		}
		if patch.UnitCost != nil {
			line.UnitCost = *patch.UnitCost
		}
		if patch.BatchNumber != nil {
			line.BatchNumber = *patch.BatchNumber
		}
		if patch.ExpiryDate != nil {
			line.ExpiryDate = patch.ExpiryDate
		}
		doc.RecalculateTotal()

		return s.saveWithLines(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, docID)
}

// RemoveItem deletes a line from a non-terminal delivery.
func (s *Service) RemoveItem(ctx context.Context, docID id.ID, lineNo int) (*Delivery, error) {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.loadForModify(ctx, docID)
		if err != nil {
			return err
		}
		if !doc.RemoveLine(lineNo) {
			return apperror.NewNotFound("delivery line", lineNo)
		}
		return s.saveWithLines(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, docID)
}

// Receive posts the delivery to the stock ledger and marks it received.
// The document is re-read with a row lock inside the transaction, so of
// two concurrent calls exactly one succeeds; the loser gets InvalidState.
func (s *Service) Receive(ctx context.Context, docID id.ID, notes string) (*Delivery, error) {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status.IsTerminal() {
			return apperror.NewInvalidState("delivery", docID.String(), string(doc.Status), "receive")
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		if len(lines) == 0 {
			return apperror.NewValidation("delivery must contain at least one item").
				WithDetail("delivery_id", docID.String())
		}
		doc.Lines = lines

		adjustments := make([]stock.Adjustment, 0, len(lines))
		deliveryID := doc.ID
		for _, line := range lines {
			adjustments = append(adjustments, stock.Adjustment{
				ProductID:  line.ProductID,
				Delta:      line.Quantity,
				Type:       stock.MovementDelivery,
				DocumentID: &deliveryID,
				Reason:     fmt.Sprintf("delivery %s", doc.Number),
			})
		}
		if err := s.ledger.BatchAdjust(ctx, adjustments); err != nil {
			return err
		}

		now := time.Now().UTC()
		doc.Status = StatusReceived
		doc.ReceivedAt = &now
		doc.RecalculateTotal()
		if notes != "" {
			if doc.Notes != "" {
				doc.Notes += "\n"
			}
			doc.Notes += notes
		}
		doc.Touch()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "delivery received", "id", docID)
	return s.GetByID(ctx, docID)
}

// Cancel marks a non-received delivery as cancelled.
// Cancelling an already cancelled delivery is a no-op.
func (s *Service) Cancel(ctx context.Context, docID id.ID) (*Delivery, error) {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status == StatusCancelled {
			return nil
		}
		if doc.Status == StatusReceived {
			return apperror.NewInvalidState("delivery", docID.String(), string(doc.Status), "cancel")
		}

		doc.Status = StatusCancelled
		doc.Touch()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "delivery cancelled", "id", docID)
	return s.GetByID(ctx, docID)
}

// Delete removes a draft delivery with its lines.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status != StatusDraft {
			return apperror.NewInvalidState("delivery", docID.String(), string(doc.Status), "delete")
		}
		return s.repo.Delete(ctx, docID)
	})
}

// List retrieves deliveries with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Delivery], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) loadForModify(ctx context.Context, docID id.ID) (*Delivery, error) {
	doc, err := s.repo.GetByIDForUpdate(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := doc.CanModify(); err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines
	return doc, nil
}

func (s *Service) saveWithLines(ctx context.Context, doc *Delivery) error {
	doc.Touch()
	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
}

func (s *Service) checkProducts(ctx context.Context, lines []Line) error {
	for _, line := range lines {
		exists, err := s.products.Exists(ctx, line.ProductID)
		if err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if !exists {
			return apperror.NewNotFound("product", line.ProductID.String())
		}
	}
	return nil
}
