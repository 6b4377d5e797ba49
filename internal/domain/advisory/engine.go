package advisory

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/supplier"
)

// ProductReader supplies the product population for alert computation.
type ProductReader interface {
	ListActiveTracked(ctx context.Context) ([]*product.Product, error)

	// CountActive counts all active products, tracked or not.
	CountActive(ctx context.Context) (int, error)
}

// SupplierReader resolves supplier names for suggestions.
type SupplierReader interface {
	GetMany(ctx context.Context, ids []id.ID) ([]*supplier.Supplier, error)
}

// Options tune the advisory thresholds.
type Options struct {
	// LowBufferFactor bounds the early-warning band above minQuantity.
	// Default 1.2: minQuantity <= stock < 1.2*minQuantity reports Low.
	LowBufferFactor float64

	// IncludeLow adds the early-warning band to suggestions.
	// Off by default: products at or above minQuantity are healthy.
	IncludeLow bool
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{LowBufferFactor: 1.2}
}

// Engine classifies products by restock urgency.
type Engine struct {
	products  ProductReader
	suppliers SupplierReader
	opts      Options
}

// NewEngine creates an advisory engine.
func NewEngine(products ProductReader, suppliers SupplierReader, opts Options) *Engine {
	if opts.LowBufferFactor <= 1 {
		opts.LowBufferFactor = DefaultOptions().LowBufferFactor
	}
	return &Engine{
		products:  products,
		suppliers: suppliers,
		opts:      opts,
	}
}

// ComputeAlerts classifies every active tracked product with a reorder
// threshold and proposes order quantities replenishing to twice that
// threshold. Suggestions with a zero order quantity are omitted.
func (e *Engine) ComputeAlerts(ctx context.Context, filter Filter) (*AlertsResult, error) {
	products, err := e.products.ListActiveTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	result := &AlertsResult{
		Summary:     AlertSummary{TotalEstimatedCost: types.Zero()},
		Suggestions: make([]Suggestion, 0),
	}

	var supplierIDs []id.ID
	seen := make(map[id.ID]bool)

	for _, p := range products {
		if filter.ProductType != "" && p.Type != filter.ProductType {
			continue
		}
		if p.MinQuantity <= 0 {
			continue
		}

		priority, ok := e.classify(p.StockQuantity, p.MinQuantity)
		if !ok {
			continue
		}

		suggested := 2*p.MinQuantity - p.StockQuantity
		if suggested <= 0 {
			continue
		}

		sug := Suggestion{
			ProductID:              p.ID,
			ProductName:            p.Name,
			SKU:                    p.SKU,
			CurrentStock:           p.StockQuantity,
			MinQuantity:            p.MinQuantity,
			SuggestedOrderQuantity: suggested,
			Priority:               priority,
			EstimatedCost:          types.MoneyFromUnits(p.UnitCost, suggested),
			SupplierID:             p.DefaultSupplierID,
		}
		result.Suggestions = append(result.Suggestions, sug)
		result.Summary.TotalEstimatedCost = result.Summary.TotalEstimatedCost.Add(sug.EstimatedCost)

		switch priority {
		case PriorityCritical:
			result.Summary.CriticalCount++
		case PriorityHigh:
			result.Summary.HighCount++
		case PriorityMedium:
			result.Summary.MediumCount++
		case PriorityLow:
			result.Summary.LowCount++
		}

		if p.DefaultSupplierID != nil && !seen[*p.DefaultSupplierID] {
			seen[*p.DefaultSupplierID] = true
			supplierIDs = append(supplierIDs, *p.DefaultSupplierID)
		}
	}

	if err := e.fillSupplierNames(ctx, result.Suggestions, supplierIDs); err != nil {
		return nil, err
	}

	// Most urgent first, then by name for stable output
	rank := map[Priority]int{PriorityCritical: 0, PriorityHigh: 1, PriorityMedium: 2, PriorityLow: 3}
	sort.SliceStable(result.Suggestions, func(i, j int) bool {
		a, b := result.Suggestions[i], result.Suggestions[j]
		if rank[a.Priority] != rank[b.Priority] {
			return rank[a.Priority] < rank[b.Priority]
		}
		return a.ProductName < b.ProductName
	})

	return result, nil
}

// GroupBySupplier reshapes suggestions into one group per supplier.
// Products without a default supplier land in the zero-UUID group.
func (e *Engine) GroupBySupplier(suggestions []Suggestion) []SupplierGroup {
	groups := make(map[id.ID]*SupplierGroup)

	for _, sug := range suggestions {
		key := id.Nil()
		if sug.SupplierID != nil {
			key = *sug.SupplierID
		}

		g, ok := groups[key]
		if !ok {
			g = &SupplierGroup{
				SupplierID:   key,
				SupplierName: sug.SupplierName,
				TotalCost:    types.Zero(),
			}
			groups[key] = g
		}
		g.Suggestions = append(g.Suggestions, sug)
		g.TotalCost = g.TotalCost.Add(sug.EstimatedCost)
	}

	out := make([]SupplierGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SupplierName != out[j].SupplierName {
			return out[i].SupplierName < out[j].SupplierName
		}
		return bytes.Compare(out[i].SupplierID[:], out[j].SupplierID[:]) < 0
	})
	return out
}

// StockSummary returns headline stock counts. TotalProducts spans the
// whole active catalog; the stock partitions cover the tracked subset.
func (e *Engine) StockSummary(ctx context.Context) (*StockSummary, error) {
	total, err := e.products.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	products, err := e.products.ListActiveTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	summary := &StockSummary{TotalProducts: total}
	for _, p := range products {
		if p.MinQuantity <= 0 {
			continue
		}
		summary.TrackedProducts++
		switch {
		case p.StockQuantity == 0:
			summary.OutOfStockCount++
		case p.StockQuantity < p.MinQuantity:
			summary.LowStockCount++
		default:
			summary.HealthyStockCount++
		}
	}
	return summary, nil
}

// classify maps a balance to a priority tier.
// Returns false for healthy products.
func (e *Engine) classify(stock, min types.Quantity) (Priority, bool) {
	switch {
	case stock == 0:
		return PriorityCritical, true
	case 2*stock < min:
		return PriorityHigh, true
	case stock < min:
		return PriorityMedium, true
	case e.opts.IncludeLow && float64(stock) < e.opts.LowBufferFactor*float64(min):
		return PriorityLow, true
	default:
		return "", false
	}
}

func (e *Engine) fillSupplierNames(ctx context.Context, suggestions []Suggestion, ids []id.ID) error {
	if len(ids) == 0 || e.suppliers == nil {
		return nil
	}
	suppliers, err := e.suppliers.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve suppliers: %w", err)
	}
	names := make(map[id.ID]string, len(suppliers))
	for _, s := range suppliers {
		names[s.ID] = s.Name
	}
	for i := range suggestions {
		if suggestions[i].SupplierID != nil {
			suggestions[i].SupplierName = names[*suggestions[i].SupplierID]
		}
	}
	return nil
}
