// Package pricing validates coupons and computes order discounts.
// All money math is server-side over decimals; client-supplied discount
// values are never trusted.
package pricing

import (
	"context"
	"time"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/types"
	"agroshop/internal/domain/coupons"
)

// Engine implements coupon validation and discount computation.
// It is stateless; the atomic usage decrement lives in the coupon repository
// because it must happen inside the order's transaction.
type Engine struct {
	repo coupons.Repository
}

// NewEngine creates a new pricing engine.
func NewEngine(repo coupons.Repository) *Engine {
	return &Engine{repo: repo}
}

// Lookup resolves a coupon by code (case-insensitive).
func (e *Engine) Lookup(ctx context.Context, code string) (*coupons.Coupon, error) {
	return e.repo.GetByCode(ctx, code)
}

// Validate checks whether the coupon may be applied to an order of the given
// amount on the given day. Returns a COUPON_INVALID error naming the specific
// reason, or nil when the coupon is applicable.
func Validate(c *coupons.Coupon, orderAmount types.Money, today time.Time) error {
	if !c.IsActive {
		return apperror.NewCouponInvalid(c.Code, apperror.CouponInactive)
	}

	if c.ExpiryDate != nil {
		expiry := dateOnly(*c.ExpiryDate)
		if expiry.Before(dateOnly(today)) {
			return apperror.NewCouponInvalid(c.Code, apperror.CouponExpired)
		}
	}

	if c.UsageLimit != nil && *c.UsageLimit <= 0 {
		return apperror.NewCouponInvalid(c.Code, apperror.CouponExhausted)
	}

	if c.MinOrderTotal != nil && c.MinOrderTotal.GreaterThan(orderAmount) {
		return apperror.NewCouponInvalid(c.Code, apperror.CouponMinNotMet).
			WithDetail("minOrderTotal", c.MinOrderTotal.String())
	}

	return nil
}

// ComputeDiscount returns the discount amount the coupon grants on the given
// order amount. Percent coupons yield amount*value/100, fixed coupons yield
// the value itself. The result is clamped to [0, orderAmount].
func ComputeDiscount(c *coupons.Coupon, orderAmount types.Money) types.Money {
	var discount types.Money
	if c.IsPercent() {
		discount = orderAmount.Mul(c.DiscountValue).Div(types.Hundred)
	} else {
		discount = c.DiscountValue
	}

	if discount.IsNegative() {
		return types.Zero()
	}
	if discount.GreaterThan(orderAmount) {
		return orderAmount
	}
	return discount
}

// Apply validates the coupon and, on success, returns the computed discount.
func (e *Engine) Apply(c *coupons.Coupon, orderAmount types.Money, today time.Time) (types.Money, error) {
	if err := Validate(c, orderAmount, today); err != nil {
		return types.Zero(), err
	}
	return ComputeDiscount(c, orderAmount), nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
