package handlers

import (
	"github.com/gin-gonic/gin"

	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/documents/customer_return"
	"agroshop/internal/infrastructure/http/v1/dto"
)

// CustomerReturnHandler handles HTTP requests for customer return documents.
type CustomerReturnHandler struct {
	*BaseHandler
	service *customer_return.Service
}

// NewCustomerReturnHandler creates a new customer return handler.
func NewCustomerReturnHandler(base *BaseHandler, service *customer_return.Service) *CustomerReturnHandler {
	return &CustomerReturnHandler{BaseHandler: base, service: service}
}

// Create handles POST /documents/customer-returns
func (h *CustomerReturnHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCustomerReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()
	if err := h.service.Create(ctx, doc, h.Actor(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromCustomerReturn(doc))
}

// Get handles GET /documents/customer-returns/:id
func (h *CustomerReturnHandler) Get(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomerReturn(doc))
}

// GetByNumber handles GET /documents/customer-returns/by-number/:number
func (h *CustomerReturnHandler) GetByNumber(c *gin.Context) {
	doc, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomerReturn(doc))
}

// Update handles PUT /documents/customer-returns/:id
func (h *CustomerReturnHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateCustomerReturnRequest
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

	h.OK(c, dto.FromCustomerReturn(doc))
}

// Delete handles DELETE /documents/customer-returns/:id
func (h *CustomerReturnHandler) Delete(c *gin.Context) {
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

// Approve handles POST /documents/customer-returns/:id/approve
func (h *CustomerReturnHandler) Approve(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.service.Approve(c.Request.Context(), docID, h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomerReturn(doc))
}

// Reject handles POST /documents/customer-returns/:id/reject
func (h *CustomerReturnHandler) Reject(c *gin.Context) {
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

	h.OK(c, dto.FromCustomerReturn(doc))
}

// Cancel handles POST /documents/customer-returns/:id/cancel
func (h *CustomerReturnHandler) Cancel(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.service.Cancel(c.Request.Context(), docID, h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCustomerReturn(doc))
}

// List handles GET /documents/customer-returns
func (h *CustomerReturnHandler) List(c *gin.Context) {
	filter := customer_return.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")

	if customerID := c.Query("customerId"); customerID != "" {
		if parsed, err := id.Parse(customerID); err == nil {
			filter.CustomerID = &parsed
		}
	}
	if orderID := c.Query("orderId"); orderID != "" {
		if parsed, err := id.Parse(orderID); err == nil {
			filter.OrderID = &parsed
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

	h.OK(c, dto.NewListResponse(result, func(doc *customer_return.CustomerReturn) any {
		return dto.FromCustomerReturn(doc)
	}))
}

// RegisterRoutes registers customer return routes.
func (h *CustomerReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
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
