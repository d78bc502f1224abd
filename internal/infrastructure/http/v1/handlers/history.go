package handlers

import (
	"github.com/gin-gonic/gin"

	"agroshop/internal/infrastructure/http/v1/dto"
	"agroshop/internal/infrastructure/storage/postgres"
)

// HistoryHandler serves the status transition trail of documents.
type HistoryHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(base *BaseHandler, audit *postgres.AuditService) *HistoryHandler {
	return &HistoryHandler{BaseHandler: base, audit: audit}
}

// For returns a handler serving GET <group>/:id/history for one document kind.
func (h *HistoryHandler) For(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, ok := h.ParseIDParam(c)
		if !ok {
			return
		}

		limit := h.ParseIntQuery(c, "limit", 50)
		records, err := h.audit.GetHistory(c.Request.Context(), kind, docID, limit)
		if err != nil {
			h.Error(c, err)
			return
		}

		items := make([]dto.TransitionResponse, len(records))
		for i, rec := range records {
			items[i] = dto.FromTransition(rec)
		}
		h.OK(c, items)
	}
}
