package stock

import (
	"context"
	"sync"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
)

// MemoryRepository is an in-memory ledger store for unit tests.
// Pair with tx.NoopManager; locking semantics are a single mutex.
type MemoryRepository struct {
	mu        sync.Mutex
	balances  map[id.ID]types.Quantity
	movements []*Movement
}

// NewMemoryRepository creates an empty in-memory ledger.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		balances: make(map[id.ID]types.Quantity),
	}
}

// Seed registers a product with an initial balance.
func (r *MemoryRepository) Seed(productID id.ID, qty types.Quantity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[productID] = qty
}

// GetQuantity implements Repository.
func (r *MemoryRepository) GetQuantity(ctx context.Context, productID id.ID) (types.Quantity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	qty, ok := r.balances[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	return qty, nil
}

// GetQuantityForUpdate implements Repository.
func (r *MemoryRepository) GetQuantityForUpdate(ctx context.Context, productID id.ID) (types.Quantity, error) {
	return r.GetQuantity(ctx, productID)
}

// SetQuantity implements Repository.
func (r *MemoryRepository) SetQuantity(ctx context.Context, productID id.ID, qty types.Quantity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.balances[productID]; !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	r.balances[productID] = qty
	return nil
}

// AppendMovements implements Repository.
func (r *MemoryRepository) AppendMovements(ctx context.Context, movements []*Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, movements...)
	return nil
}

// ListMovements implements Repository.
func (r *MemoryRepository) ListMovements(ctx context.Context, productID id.ID, filter MovementFilter) ([]*Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Movement
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if m.ProductID != productID {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		if filter.FromDate != nil && m.CreatedAt.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && m.CreatedAt.After(*filter.ToDate) {
			continue
		}
		out = append(out, m)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Movements returns the full journal (test inspection).
func (r *MemoryRepository) Movements() []*Movement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Movement, len(r.movements))
	copy(out, r.movements)
	return out
}

var _ Repository = (*MemoryRepository)(nil)
