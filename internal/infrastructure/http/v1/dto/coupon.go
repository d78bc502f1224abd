package dto

import (
	"agroshop/internal/core/types"
)

// ValidateCouponRequest checks a coupon against an order amount without
// consuming a use.
type ValidateCouponRequest struct {
	Code        string      `json:"code" binding:"required"`
	OrderAmount types.Money `json:"orderAmount" binding:"required"`
}

// ValidateCouponResponse reports the outcome of a stateless validation.
type ValidateCouponResponse struct {
	Valid    bool        `json:"valid"`
	Code     string      `json:"code"`
	Reason   string      `json:"reason,omitempty"`
	Discount types.Money `json:"discount"`
	Payable  types.Money `json:"payable"`
}
