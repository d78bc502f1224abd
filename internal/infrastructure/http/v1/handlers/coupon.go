package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"agroshop/internal/core/apperror"
	"agroshop/internal/domain/pricing"
	"agroshop/internal/infrastructure/http/v1/dto"
)

// CouponHandler exposes stateless coupon validation for checkout previews.
// Nothing here consumes a use; the usage decrement happens only inside the
// order transaction.
type CouponHandler struct {
	*BaseHandler
	engine *pricing.Engine
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(base *BaseHandler, engine *pricing.Engine) *CouponHandler {
	return &CouponHandler{BaseHandler: base, engine: engine}
}

// Validate handles POST /coupons/validate
func (h *CouponHandler) Validate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ValidateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp := dto.ValidateCouponResponse{
		Code:    req.Code,
		Payable: req.OrderAmount,
	}

	coupon, err := h.engine.Lookup(ctx, req.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			resp.Reason = "not_found"
			h.OK(c, resp)
			return
		}
		h.Error(c, err)
		return
	}

	discount, err := h.engine.Apply(coupon, req.OrderAmount, time.Now())
	if err != nil {
		resp.Reason = couponReason(err)
		h.OK(c, resp)
		return
	}

	resp.Valid = true
	resp.Code = coupon.Code
	resp.Discount = discount
	resp.Payable = req.OrderAmount.Sub(discount)
	h.OK(c, resp)
}

// couponReason pulls the failure reason out of a COUPON_INVALID error.
func couponReason(err error) string {
	if appErr, ok := err.(*apperror.AppError); ok {
		if reason, ok := appErr.Details["reason"].(string); ok {
			return reason
		}
	}
	return "invalid"
}

// RegisterRoutes registers coupon routes.
func (h *CouponHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/validate", h.Validate)
}
