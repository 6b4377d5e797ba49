package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock ledger.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStock handles GET /stock/:productId - current balance.
func (h *StockHandler) GetStock(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	qty, err := h.service.GetStock(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.StockResponse{
		ProductID: productID.String(),
		Quantity:  qty,
	})
}

// GetMovements handles GET /stock/movements/:productId - journal history.
func (h *StockHandler) GetMovements(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	filter := stock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if mt := c.Query("type"); mt != "" {
		t := stock.MovementType(mt)
		filter.Type = &t
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

	movements, err := h.service.ListMovements(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromMovement(m)
	}

	h.OK(c, dto.MovementListResponse{
		ProductID: productID.String(),
		Items:     items,
	})
}

// Adjust handles POST /stock/adjust - manual correction.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").WithCause(err))
		return
	}

	balance, err := h.service.AdjustStock(c.Request.Context(), stock.Adjustment{
		ProductID: productID,
		Delta:     req.Delta,
		Type:      stock.MovementAdjustment,
		Reason:    req.Reason,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.StockResponse{
		ProductID: productID.String(),
		Quantity:  balance,
	})
}

// RegisterRoutes registers stock ledger routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/movements/:productId", h.GetMovements)
	rg.POST("/adjust", h.Adjust)
	rg.GET("/:productId", h.GetStock)
}
