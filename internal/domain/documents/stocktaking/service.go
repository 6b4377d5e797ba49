package stocktaking

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
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/registers/stock"
	"stockwise/pkg/logger"
)

// NumberPrefix for generated stocktaking numbers (STK-2026-00001).
const NumberPrefix = "STK"

// ProductSource supplies the product population for snapshots.
type ProductSource interface {
	ListActiveTracked(ctx context.Context) ([]*product.Product, error)
	Exists(ctx context.Context, productID id.ID) (bool, error)
}

// Ledger reconciles balances when a session completes.
type Ledger interface {
	GetStock(ctx context.Context, productID id.ID) (types.Quantity, error)
	SetStock(ctx context.Context, productID id.ID, target types.Quantity, mt stock.MovementType, documentID *id.ID) (types.Quantity, error)
}

// CountInput records a physical count for one product.
type CountInput struct {
	ProductID       id.ID
	CountedQuantity types.Quantity
	Notes           string
}

// HeaderPatch updates header fields; nil fields stay unchanged.
type HeaderPatch struct {
	Date  *time.Time
	Notes *string
}

// Service provides business operations for stocktaking documents.
type Service struct {
	repo      Repository
	products  ProductSource
	ledger    Ledger
	numerator numerator.Generator
	txm       tx.Manager
	hooks     *domain.HookRegistry[*Stocktaking]
}

// NewService creates a stocktaking service.
func NewService(
	repo Repository,
	products ProductSource,
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
		hooks:     domain.NewHookRegistry[*Stocktaking](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Stocktaking] {
	return s.hooks
}

// Create persists a new draft session, assigning a document number.
func (s *Service) Create(ctx context.Context, doc *Stocktaking) error {
	if err := s.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
		return err
	}

	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if doc.Status != StatusDraft {
		return apperror.NewValidation("new stocktaking must be draft").
			WithDetail("status", string(doc.Status))
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "stocktaking created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves a session with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Stocktaking, error) {
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

// Update patches header fields of a non-terminal session.
func (s *Service) Update(ctx context.Context, docID id.ID, patch HeaderPatch) (*Stocktaking, error) {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(); err != nil {
			return err
		}

		if patch.Date != nil {
			doc.Date = *patch.Date
		}
		if patch.Notes != nil {
			doc.Notes = *patch.Notes
		}

		doc.Touch()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, docID)
}

// Start snapshots expected quantities for every active tracked product
// and moves the session to in_progress. Allowed only from draft.
// The snapshot is taken once and never refreshed.
func (s *Service) Start(ctx context.Context, docID id.ID) (*Stocktaking, error) {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status != StatusDraft {
			return apperror.NewInvalidState("stocktaking", docID.String(), string(doc.Status), "start")
		}

		products, err := s.products.ListActiveTracked(ctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}

		for _, p := range products {
			doc.AddLine(p.ID, p.StockQuantity)
		}
		if err := s.repo.SaveLines(ctx, docID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		doc.Status = StatusInProgress
		doc.Touch()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stocktaking started", "id", docID)
	return s.GetByID(ctx, docID)
}

// RecordCounts upserts physical counts for an in-progress session.
// Counting a product outside the snapshot appends a line whose expected
// quantity is the live balance at recording time.
func (s *Service) RecordCounts(ctx context.Context, docID id.ID, counts []CountInput) (*Stocktaking, error) {
	for i, c := range counts {
		if c.CountedQuantity < 0 {
			return nil, apperror.NewValidation(fmt.Sprintf("count %d: counted quantity cannot be negative", i)).
				WithDetail("product_id", c.ProductID.String())
		}
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status != StatusInProgress {
			return apperror.NewInvalidState("stocktaking", docID.String(), string(doc.Status), "record counts")
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		for _, c := range counts {
			line := doc.FindLineByProduct(c.ProductID)
			if line == nil {
				exists, err := s.products.Exists(ctx, c.ProductID)
				if err != nil {
					return fmt.Errorf("check product: %w", err)
				}
				if !exists {
					return apperror.NewNotFound("product", c.ProductID.String())
				}
				expected, err := s.ledger.GetStock(ctx, c.ProductID)
				if err != nil {
					return fmt.Errorf("get stock: %w", err)
				}
				line = doc.AddLine(c.ProductID, expected)
			}
			line.SetCount(c.CountedQuantity)
			if c.Notes != "" {
				line.Notes = c.Notes
			}
		}

		if err := s.repo.SaveLines(ctx, docID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		doc.Touch()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, docID)
}

// Complete closes an in-progress session. With applyDifferences the
// ledger is reconciled to each counted value; the physical count is
// truth even when stock moved after the snapshot. Uncounted positions
// are skipped. Of two concurrent calls exactly one succeeds.
func (s *Service) Complete(ctx context.Context, docID id.ID, applyDifferences bool, notes string) (*Stocktaking, error) {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status != StatusInProgress {
			return apperror.NewInvalidState("stocktaking", docID.String(), string(doc.Status), "complete")
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		if applyDifferences {
			stocktakingID := doc.ID
			for i := range doc.Lines {
				line := &doc.Lines[i]
				if !line.IsCounted() {
					continue
				}
				_, err := s.ledger.SetStock(ctx, line.ProductID, *line.CountedQuantity,
					stock.MovementStocktaking, &stocktakingID)
				if err != nil {
					return err
				}
			}
		}

		now := time.Now().UTC()
		doc.Status = StatusCompleted
		doc.CompletedAt = &now
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

	logger.Info(ctx, "stocktaking completed",
		"id", docID,
		"apply_differences", applyDifferences)
	return s.GetByID(ctx, docID)
}

// Cancel marks a non-completed session as cancelled without touching
// the ledger. Cancelling an already cancelled session is a no-op.
func (s *Service) Cancel(ctx context.Context, docID id.ID) (*Stocktaking, error) {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status == StatusCancelled {
			return nil
		}
		if doc.Status == StatusCompleted {
			return apperror.NewInvalidState("stocktaking", docID.String(), string(doc.Status), "cancel")
		}

		doc.Status = StatusCancelled
		doc.Touch()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stocktaking cancelled", "id", docID)
	return s.GetByID(ctx, docID)
}

// Delete removes a draft session with its lines.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByIDForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Status != StatusDraft {
			return apperror.NewInvalidState("stocktaking", docID.String(), string(doc.Status), "delete")
		}
		return s.repo.Delete(ctx, docID)
	})
}

// List retrieves sessions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Stocktaking], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// HistorySummary returns per-session shortage/overage/match counts.
func (s *Service) HistorySummary(ctx context.Context) ([]SessionSummary, error) {
	return s.repo.HistorySummary(ctx)
}
