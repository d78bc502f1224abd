package handlers

import (
	"github.com/gin-gonic/gin"

	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/orders"
	"agroshop/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles HTTP requests for sales orders.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders. Works for both authenticated buyers and
// guests; guests must supply delivery contact fields.
func (h *OrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order := req.ToEntity()
	if err := h.service.Create(ctx, order, req.CouponCode, h.Actor(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOrder(order))
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// GetByNumber handles GET /orders/by-number/:number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// UpdateStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), orderID, orders.Status(req.Status), req.Notes, h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// My handles GET /orders/my - orders of the authenticated buyer.
func (h *OrderHandler) My(c *gin.Context) {
	filter := h.parseListFilter(c)

	result, err := h.service.FindMyOrders(c.Request.Context(), h.Actor(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, func(order *orders.Order) any {
		return dto.FromOrder(order)
	}))
}

// List handles GET /orders - back-office listing across all buyers.
func (h *OrderHandler) List(c *gin.Context) {
	filter := h.parseListFilter(c)

	if buyerID := c.Query("buyerId"); buyerID != "" {
		if parsed, err := id.Parse(buyerID); err == nil {
			filter.BuyerID = &parsed
		}
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, func(order *orders.Order) any {
		return dto.FromOrder(order)
	}))
}

func (h *OrderHandler) parseListFilter(c *gin.Context) orders.ListFilter {
	filter := orders.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")

	if status := c.Query("status"); status != "" {
		s := orders.Status(status)
		filter.Status = &s
	}
	if isOnline := c.Query("isOnline"); isOnline != "" {
		val := isOnline == "true"
		filter.IsOnline = &val
	}
	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		filter.DateFrom = &dateFrom
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		filter.DateTo = &dateTo
	}
	return filter
}

// RegisterStorefrontRoutes registers routes available to buyers (guests
// included, via optional auth).
func (h *OrderHandler) RegisterStorefrontRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/by-number/:number", h.GetByNumber)
}

// RegisterBuyerRoutes registers routes that require an authenticated buyer.
func (h *OrderHandler) RegisterBuyerRoutes(rg *gin.RouterGroup) {
	rg.GET("/my", h.My)
}

// RegisterBackofficeRoutes registers staff-only order routes.
func (h *OrderHandler) RegisterBackofficeRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id/status", h.UpdateStatus)
}
