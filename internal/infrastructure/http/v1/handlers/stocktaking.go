package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockwise/internal/core/apperror"
	"stockwise/internal/domain"
	"stockwise/internal/domain/documents/stocktaking"
	"stockwise/internal/infrastructure/http/v1/dto"
)

// StocktakingHandler handles HTTP requests for stocktaking sessions.
type StocktakingHandler struct {
	*BaseHandler
	service *stocktaking.Service
}

// NewStocktakingHandler creates a new stocktaking handler.
func NewStocktakingHandler(base *BaseHandler, service *stocktaking.Service) *StocktakingHandler {
	return &StocktakingHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /document/stocktaking.
func (h *StocktakingHandler) Create(c *gin.Context) {
	var req dto.CreateStocktakingRequest
	// Body is optional for a bare draft
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromStocktaking(doc))
}

// Get handles GET /document/stocktaking/:id.
func (h *StocktakingHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStocktaking(doc))
}

// Update handles PUT /document/stocktaking/:id - header patch.
func (h *StocktakingHandler) Update(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStocktakingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Update(c.Request.Context(), docID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStocktaking(doc))
}

// Delete handles DELETE /document/stocktaking/:id - draft only.
func (h *StocktakingHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /document/stocktaking - list with filtering.
func (h *StocktakingHandler) List(c *gin.Context) {
	filter := stocktaking.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if status := c.Query("status"); status != "" {
		s := stocktaking.Status(status)
		filter.Status = &s
	}
	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.FromDate = &parsed
		}
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.ToDate = &parsed
		}
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.respondList(c, result)
}

// Start handles POST /document/stocktaking/:id/start - snapshots stock.
func (h *StocktakingHandler) Start(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Start(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStocktaking(doc))
}

// RecordCounts handles POST /document/stocktaking/:id/counts.
func (h *StocktakingHandler) RecordCounts(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordCountsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inputs, err := req.ToInputs()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").WithCause(err))
		return
	}

	doc, err := h.service.RecordCounts(c.Request.Context(), docID, inputs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStocktaking(doc))
}

// Complete handles POST /document/stocktaking/:id/complete.
func (h *StocktakingHandler) Complete(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CompleteStocktakingRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Complete(c.Request.Context(), docID, req.ApplyDifferences, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStocktaking(doc))
}

// Cancel handles POST /document/stocktaking/:id/cancel.
func (h *StocktakingHandler) Cancel(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Cancel(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStocktaking(doc))
}

// HistorySummary handles GET /document/stocktaking/history/summary.
func (h *StocktakingHandler) HistorySummary(c *gin.Context) {
	summaries, err := h.service.HistorySummary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.SessionSummaryResponse, len(summaries))
	for i, s := range summaries {
		items[i] = dto.FromSessionSummary(s)
	}

	h.OK(c, gin.H{"items": items})
}

// RegisterRoutes registers stocktaking routes.
func (h *StocktakingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/history/summary", h.HistorySummary)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/start", h.Start)
	rg.POST("/:id/counts", h.RecordCounts)
	rg.POST("/:id/complete", h.Complete)
	rg.POST("/:id/cancel", h.Cancel)
}

func (h *StocktakingHandler) respondList(c *gin.Context, result domain.ListResult[*stocktaking.Stocktaking]) {
	items := make([]*dto.StocktakingResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromStocktaking(doc)
	}

	c.JSON(http.StatusOK, dto.StocktakingListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
