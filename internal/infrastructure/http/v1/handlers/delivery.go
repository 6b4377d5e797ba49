package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/domain"
	"stockwise/internal/domain/documents/delivery"
	"stockwise/internal/infrastructure/http/v1/dto"
)

// DeliveryHandler handles HTTP requests for delivery documents.
type DeliveryHandler struct {
	*BaseHandler
	service *delivery.Service
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(base *BaseHandler, service *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /document/delivery.
func (h *DeliveryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithCause(err))
		return
	}

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromDelivery(doc))
}

// Get handles GET /document/delivery/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDelivery(doc))
}

// Update handles PUT /document/delivery/:id - header patch.
func (h *DeliveryHandler) Update(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithCause(err))
		return
	}

	doc, err := h.service.Update(c.Request.Context(), docID, patch)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDelivery(doc))
}

// Delete handles DELETE /document/delivery/:id - draft only.
func (h *DeliveryHandler) Delete(c *gin.Context) {
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

// List handles GET /document/delivery - list with filtering.
func (h *DeliveryHandler) List(c *gin.Context) {
	filter := delivery.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if status := c.Query("status"); status != "" {
		s := delivery.Status(status)
		filter.Status = &s
	}
	if supplierID := c.Query("supplierId"); supplierID != "" {
		if parsed, err := id.Parse(supplierID); err == nil {
			filter.SupplierID = &parsed
		}
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

// AddItem handles POST /document/delivery/:id/items.
func (h *DeliveryHandler) AddItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AddDeliveryItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").WithCause(err))
		return
	}

	doc, err := h.service.AddItem(c.Request.Context(), docID, delivery.ItemInput{
		ProductID:   productID,
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
		BatchNumber: req.BatchNumber,
		ExpiryDate:  req.ExpiryDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDelivery(doc))
}

// UpdateItem handles PUT /document/delivery/:id/items/:lineNo.
func (h *DeliveryHandler) UpdateItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineNo, ok := h.parseLineNo(c)
	if !ok {
		return
	}

	var req dto.UpdateDeliveryItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.UpdateItem(c.Request.Context(), docID, lineNo, delivery.ItemPatch{
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
		BatchNumber: req.BatchNumber,
		ExpiryDate:  req.ExpiryDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDelivery(doc))
}

// RemoveItem handles DELETE /document/delivery/:id/items/:lineNo.
func (h *DeliveryHandler) RemoveItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineNo, ok := h.parseLineNo(c)
	if !ok {
		return
	}

	doc, err := h.service.RemoveItem(c.Request.Context(), docID, lineNo)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDelivery(doc))
}

// Receive handles POST /document/delivery/:id/receive - posts stock.
func (h *DeliveryHandler) Receive(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	// Body is optional
	var req dto.ReceiveDeliveryRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Receive(c.Request.Context(), docID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDelivery(doc))
}

// Cancel handles POST /document/delivery/:id/cancel.
func (h *DeliveryHandler) Cancel(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Cancel(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDelivery(doc))
}

// RegisterRoutes registers delivery routes.
func (h *DeliveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/items", h.AddItem)
	rg.PUT("/:id/items/:lineNo", h.UpdateItem)
	rg.DELETE("/:id/items/:lineNo", h.RemoveItem)
	rg.POST("/:id/receive", h.Receive)
	rg.POST("/:id/cancel", h.Cancel)
}

func (h *DeliveryHandler) parseLineNo(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("lineNo"))
	if err != nil || n <= 0 {
		h.Error(c, apperror.NewValidation("invalid line number").WithDetail("lineNo", c.Param("lineNo")))
		return 0, false
	}
	return n, true
}

func (h *DeliveryHandler) respondList(c *gin.Context, result domain.ListResult[*delivery.Delivery]) {
	items := make([]*dto.DeliveryResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromDelivery(doc)
	}

	c.JSON(http.StatusOK, dto.DeliveryListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
