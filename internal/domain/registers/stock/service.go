package stock

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/tx"
	"stockwise/internal/core/types"
	"stockwise/pkg/logger"
)

// Adjustment is a single requested delta against a product balance.
type Adjustment struct {
	ProductID  id.ID
	Delta      types.Quantity
	Type       MovementType
	DocumentID *id.ID
	Reason     string
}

// Service provides business operations for the stock ledger.
// All mutations run inside a transaction; nested calls from document
// workflows reuse the caller's transaction.
type Service struct {
	repo Repository
	txm  tx.Manager
}

// NewService creates a stock ledger service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		repo: repo,
		txm:  txm,
	}
}

// GetStock returns the current on-hand quantity for a product.
func (s *Service) GetStock(ctx context.Context, productID id.ID) (types.Quantity, error) {
	qty, err := s.repo.GetQuantity(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get quantity: %w", err)
	}
	return qty, nil
}

// AdjustStock applies a signed delta to a product balance.
// Fails with InsufficientStock if the result would be negative.
// Returns the new balance.
func (s *Service) AdjustStock(ctx context.Context, adj Adjustment) (types.Quantity, error) {
	if adj.Delta == 0 {
		return 0, apperror.NewValidation("delta must be non-zero").
			WithDetail("product_id", adj.ProductID.String())
	}
	if adj.Type == "" {
		adj.Type = MovementAdjustment
	}

	var after types.Quantity
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		movements, err := s.applyAdjustments(ctx, []Adjustment{adj})
		if err != nil {
			return err
		}
		after = movements[0].QuantityAfter
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", adj.ProductID,
		"delta", adj.Delta,
		"balance", after,
	)
	return after, nil
}

// SetStock overwrites a product balance with an absolute value.
// Used by stocktaking reconciliation where the physical count is truth.
// Returns the applied delta (zero when the balance already matches).
func (s *Service) SetStock(ctx context.Context, productID id.ID, target types.Quantity, mt MovementType, documentID *id.ID) (types.Quantity, error) {
	if target < 0 {
		return 0, apperror.NewValidation("target quantity cannot be negative").
			WithDetail("product_id", productID.String()).
			WithDetail("target", target)
	}
	if mt == "" {
		mt = MovementAdjustment
	}

	var delta types.Quantity
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		before, err := s.repo.GetQuantityForUpdate(ctx, productID)
		if err != nil {
			return fmt.Errorf("lock quantity: %w", err)
		}

		delta = target - before
		if delta == 0 {
			return nil
		}

		if err := s.repo.SetQuantity(ctx, productID, target); err != nil {
			return fmt.Errorf("set quantity: %w", err)
		}

		m := NewMovement(productID, mt, delta, before)
		m.DocumentID = documentID
		return s.repo.AppendMovements(ctx, []*Movement{m})
	})
	if err != nil {
		return 0, err
	}

	if delta != 0 {
		logger.Info(ctx, "stock set",
			"product_id", productID,
			"target", target,
			"delta", delta,
		)
	}
	return delta, nil
}

// BatchAdjust applies several deltas atomically: either every adjustment
// lands or none does. Product rows are locked in id order so concurrent
// batches cannot deadlock.
func (s *Service) BatchAdjust(ctx context.Context, adjustments []Adjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	for i, adj := range adjustments {
		if adj.Delta == 0 {
			return apperror.NewValidation(fmt.Sprintf("adjustment %d: delta must be non-zero", i)).
				WithDetail("product_id", adj.ProductID.String())
		}
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := s.applyAdjustments(ctx, adjustments)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock batch adjusted", "count", len(adjustments))
	return nil
}

// ListMovements returns journal history for a product.
func (s *Service) ListMovements(ctx context.Context, productID id.ID, filter MovementFilter) ([]*Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.ListMovements(ctx, productID, filter)
}

// applyAdjustments locks, validates and applies deltas within the
// caller's transaction. Rows are locked in product id order; repeated
// products are applied sequentially against the cached balance.
func (s *Service) applyAdjustments(ctx context.Context, adjustments []Adjustment) ([]*Movement, error) {
	ordered := make([]Adjustment, len(adjustments))
	copy(ordered, adjustments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].ProductID[:], ordered[j].ProductID[:]) < 0
	})

	balances := make(map[id.ID]types.Quantity, len(ordered))
	movements := make([]*Movement, 0, len(ordered))

	for _, adj := range ordered {
		before, seen := balances[adj.ProductID]
		if !seen {
			var err error
			before, err = s.repo.GetQuantityForUpdate(ctx, adj.ProductID)
			if err != nil {
				return nil, fmt.Errorf("lock quantity for %s: %w", adj.ProductID, err)
			}
		}

		after := before + adj.Delta
		if after < 0 {
			return nil, apperror.NewInsufficientStock(adj.ProductID.String(), -adj.Delta, before)
		}
		balances[adj.ProductID] = after

		mt := adj.Type
		if mt == "" {
			mt = MovementAdjustment
		}
		m := NewMovement(adj.ProductID, mt, adj.Delta, before)
		m.DocumentID = adj.DocumentID
		m.Reason = adj.Reason
		movements = append(movements, m)
	}

	for productID, qty := range balances {
		if err := s.repo.SetQuantity(ctx, productID, qty); err != nil {
			return nil, fmt.Errorf("set quantity for %s: %w", productID, err)
		}
	}

	if err := s.repo.AppendMovements(ctx, movements); err != nil {
		return nil, fmt.Errorf("append movements: %w", err)
	}
	return movements, nil
}
