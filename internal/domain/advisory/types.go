// Package advisory computes reorder suggestions from current catalog
// and ledger state. It never writes; every result is recomputed per query.
package advisory

import (
	"stockwise/internal/core/id"
	"stockwise/internal/core/types"
)

// Priority is the restock urgency tier.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Suggestion is a derived reorder recommendation. Not persisted.
type Suggestion struct {
	ProductID   id.ID  `json:"productId"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`

	CurrentStock types.Quantity `json:"currentStock"`
	MinQuantity  types.Quantity `json:"minQuantity"`

	// SuggestedOrderQuantity replenishes to twice the threshold
	SuggestedOrderQuantity types.Quantity `json:"suggestedOrderQuantity"`

	Priority      Priority    `json:"priority"`
	EstimatedCost types.Money `json:"estimatedCost"`

	SupplierID   *id.ID `json:"supplierId,omitempty"`
	SupplierName string `json:"supplierName,omitempty"`
}

// AlertSummary aggregates suggestion counts per tier.
type AlertSummary struct {
	CriticalCount      int         `json:"criticalCount"`
	HighCount          int         `json:"highCount"`
	MediumCount        int         `json:"mediumCount"`
	LowCount           int         `json:"lowCount"`
	TotalEstimatedCost types.Money `json:"totalEstimatedCost"`
}

// AlertsResult is the ComputeAlerts response.
type AlertsResult struct {
	Summary     AlertSummary `json:"summary"`
	Suggestions []Suggestion `json:"suggestions"`
}

// SupplierGroup bundles suggestions for one purchase order.
// The zero UUID marks products without a default supplier.
type SupplierGroup struct {
	SupplierID   id.ID        `json:"supplierId"`
	SupplierName string       `json:"supplierName"`
	Suggestions  []Suggestion `json:"suggestions"`
	TotalCost    types.Money  `json:"totalCost"`
}

// StockSummary gives headline counts for dashboards.
// Tracked means minQuantity > 0; low/out/healthy partition the tracked set.
type StockSummary struct {
	TotalProducts     int `json:"totalProducts"`
	TrackedProducts   int `json:"trackedProducts"`
	HealthyStockCount int `json:"healthyStockCount"`
	LowStockCount     int `json:"lowStockCount"`
	OutOfStockCount   int `json:"outOfStockCount"`
}

// Filter narrows ComputeAlerts to a product subset.
type Filter struct {
	// ProductType limits alerts to one product type (empty = all)
	ProductType string
}
