package handlers

import (
	"github.com/gin-gonic/gin"

	"stockwise/internal/domain/advisory"
)

// AdvisoryHandler handles HTTP requests for reorder suggestions.
type AdvisoryHandler struct {
	*BaseHandler
	engine *advisory.Engine
}

// NewAdvisoryHandler creates a new advisory handler.
func NewAdvisoryHandler(base *BaseHandler, engine *advisory.Engine) *AdvisoryHandler {
	return &AdvisoryHandler{
		BaseHandler: base,
		engine:      engine,
	}
}

// Alerts handles GET /advisory/alerts - classified reorder suggestions.
func (h *AdvisoryHandler) Alerts(c *gin.Context) {
	filter := advisory.Filter{
		ProductType: c.Query("productType"),
	}

	result, err := h.engine.ComputeAlerts(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// BySupplier handles GET /advisory/by-supplier - suggestions grouped
// for purchase orders.
func (h *AdvisoryHandler) BySupplier(c *gin.Context) {
	filter := advisory.Filter{
		ProductType: c.Query("productType"),
	}

	result, err := h.engine.ComputeAlerts(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	groups := h.engine.GroupBySupplier(result.Suggestions)
	h.OK(c, gin.H{"groups": groups})
}

// Summary handles GET /advisory/summary - headline stock counts.
func (h *AdvisoryHandler) Summary(c *gin.Context) {
	summary, err := h.engine.StockSummary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// RegisterRoutes registers advisory routes.
func (h *AdvisoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/alerts", h.Alerts)
	rg.GET("/by-supplier", h.BySupplier)
	rg.GET("/summary", h.Summary)
}
