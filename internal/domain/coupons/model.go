// Package coupons provides the discount coupon reference entity.
// Coupon CRUD lives outside the core; the order pipeline only reads coupons
// and decrements their usage counter.
package coupons

import (
	"strings"
	"time"

	"agroshop/internal/core/entity"
	"agroshop/internal/core/types"
)

// Discount types. Compared case-insensitively when applying.
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Coupon is a discount code.
type Coupon struct {
	entity.BaseEntity

	// Code is unique, matched case-insensitively
	Code string `db:"code" json:"code"`

	// DiscountType is "percent" or "fixed"
	DiscountType string `db:"discount_type" json:"discountType"`

	// DiscountValue is a percentage for percent coupons, an absolute
	// amount for fixed ones
	DiscountValue types.Money `db:"discount_value" json:"discountValue"`

	// MinOrderTotal is the minimum order amount required (nil = none)
	MinOrderTotal *types.Money `db:"min_order_total" json:"minOrderTotal,omitempty"`

	// ExpiryDate is the last day the coupon is valid (nil = never expires)
	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// UsageLimit caps remaining applications (nil = unlimited)
	UsageLimit *int `db:"usage_limit" json:"usageLimit,omitempty"`

	// IsActive doubles as the soft-delete flag for coupons
	IsActive bool `db:"is_active" json:"isActive"`
}

// IsPercent reports whether the coupon discounts by percentage.
func (c *Coupon) IsPercent() bool {
	return strings.EqualFold(c.DiscountType, DiscountPercent)
}

// IsLimited reports whether the coupon has a usage cap.
func (c *Coupon) IsLimited() bool {
	return c.UsageLimit != nil
}
