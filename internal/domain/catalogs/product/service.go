package product

import (
	"context"
	"fmt"

	"stockwise/internal/core/id"
	"stockwise/internal/domain"
)

// Service is a thin read facade over the product catalog.
type Service struct {
	repo Repository
}

// NewService creates a product read service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List retrieves products with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// ListActiveTracked returns active products with stock tracking on.
func (s *Service) ListActiveTracked(ctx context.Context) ([]*Product, error) {
	return s.repo.ListActiveTracked(ctx)
}

// CountActive counts all active products, tracked or not.
func (s *Service) CountActive(ctx context.Context) (int, error) {
	return s.repo.CountActive(ctx)
}
