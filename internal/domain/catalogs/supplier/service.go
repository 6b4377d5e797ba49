package supplier

import (
	"context"
	"fmt"

	"stockwise/internal/core/id"
	"stockwise/internal/domain"
)

// Service is a thin read facade over the supplier catalog.
type Service struct {
	repo Repository
}

// NewService creates a supplier read service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a supplier.
func (s *Service) GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	sup, err := s.repo.GetByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return sup, nil
}

// List retrieves suppliers with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Supplier], error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// GetMany resolves suppliers by id, skipping unknown ids.
func (s *Service) GetMany(ctx context.Context, ids []id.ID) ([]*Supplier, error) {
	return s.repo.GetMany(ctx, ids)
}
