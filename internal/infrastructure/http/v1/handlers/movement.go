package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/ledger"
	"agroshop/internal/infrastructure/http/v1/dto"
)

// MovementHandler exposes the stock movement ledger. Movements are written
// only by document transitions, so the API surface is read-only.
type MovementHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *ledger.Service) *MovementHandler {
	return &MovementHandler{BaseHandler: base, service: service}
}

// List handles GET /movements
func (h *MovementHandler) List(c *gin.Context) {
	filter := ledger.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-created_at")
	filter.RefTable = c.Query("refTable")

	if productUnitID := c.Query("productUnitId"); productUnitID != "" {
		if parsed, err := id.Parse(productUnitID); err == nil {
			filter.ProductUnitID = &parsed
		}
	}
	if warehouseID := c.Query("warehouseId"); warehouseID != "" {
		if parsed, err := id.Parse(warehouseID); err == nil {
			filter.WarehouseID = &parsed
		}
	}
	if movementType := c.Query("type"); movementType != "" {
		t := ledger.MovementType(movementType)
		filter.Type = &t
	}
	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, func(m ledger.Movement) any {
		return dto.FromMovement(m)
	}))
}

// GetByRef handles GET /movements/by-ref/:table/:id - all movements emitted
// by one source document.
func (h *MovementHandler) GetByRef(c *gin.Context) {
	refID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	movements, err := h.service.GetByRef(c.Request.Context(), c.Param("table"), refID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromMovement(m)
	}
	h.OK(c, items)
}

// RegisterRoutes registers movement routes.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/by-ref/:table/:id", h.GetByRef)
}
