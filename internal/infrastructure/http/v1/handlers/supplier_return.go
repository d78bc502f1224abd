package handlers

import (
	"github.com/gin-gonic/gin"

	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/documents/supplier_return"
	"agroshop/internal/infrastructure/http/v1/dto"
)

// SupplierReturnHandler handles HTTP requests for supplier return documents.
type SupplierReturnHandler struct {
	*BaseHandler
	service *supplier_return.Service
}

// NewSupplierReturnHandler creates a new supplier return handler.
func NewSupplierReturnHandler(base *BaseHandler, service *supplier_return.Service) *SupplierReturnHandler {
	return &SupplierReturnHandler{BaseHandler: base, service: service}
}

// Create handles POST /documents/supplier-returns
func (h *SupplierReturnHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSupplierReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()
	if err := h.service.Create(ctx, doc, h.Actor(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSupplierReturn(doc))
}

// Get handles GET /documents/supplier-returns/:id
func (h *SupplierReturnHandler) Get(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplierReturn(doc))
}

// GetByNumber handles GET /documents/supplier-returns/by-number/:number
func (h *SupplierReturnHandler) GetByNumber(c *gin.Context) {
	doc, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplierReturn(doc))
}

// Update handles PUT /documents/supplier-returns/:id
func (h *SupplierReturnHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateSupplierReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(doc)

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplierReturn(doc))
}

// Delete handles DELETE /documents/supplier-returns/:id
func (h *SupplierReturnHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Approve handles POST /documents/supplier-returns/:id/approve
func (h *SupplierReturnHandler) Approve(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.service.Approve(c.Request.Context(), docID, h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplierReturn(doc))
}

// Reject handles POST /documents/supplier-returns/:id/reject
func (h *SupplierReturnHandler) Reject(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Reject(c.Request.Context(), docID, h.Actor(c), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplierReturn(doc))
}

// Cancel handles POST /documents/supplier-returns/:id/cancel
func (h *SupplierReturnHandler) Cancel(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.service.Cancel(c.Request.Context(), docID, h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplierReturn(doc))
}

// List handles GET /documents/supplier-returns
func (h *SupplierReturnHandler) List(c *gin.Context) {
	filter := supplier_return.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")

	if supplierID := c.Query("supplierId"); supplierID != "" {
		if parsed, err := id.Parse(supplierID); err == nil {
			filter.SupplierID = &parsed
		}
	}
	if receiptID := c.Query("receiptId"); receiptID != "" {
		if parsed, err := id.Parse(receiptID); err == nil {
			filter.ReceiptID = &parsed
		}
	}
	if warehouseID := c.Query("warehouseId"); warehouseID != "" {
		if parsed, err := id.Parse(warehouseID); err == nil {
			filter.WarehouseID = &parsed
		}
	}
	if status := c.Query("status"); status != "" {
		s := entity.Status(status)
		filter.Status = &s
	}
	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		filter.DateFrom = &dateFrom
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		filter.DateTo = &dateTo
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, func(doc *supplier_return.SupplierReturn) any {
		return dto.FromSupplierReturn(doc)
	}))
}

// RegisterRoutes registers supplier return routes.
func (h *SupplierReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/by-number/:number", h.GetByNumber)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/approve", h.Approve)
	rg.POST("/:id/reject", h.Reject)
	rg.POST("/:id/cancel", h.Cancel)
}
