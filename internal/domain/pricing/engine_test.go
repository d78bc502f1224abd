package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/types"
	"agroshop/internal/domain/coupons"
)

func money(v int64) types.Money {
	return decimal.NewFromInt(v)
}

func percentCoupon(code string, value int64) *coupons.Coupon {
	return &coupons.Coupon{
		Code:          code,
		DiscountType:  coupons.DiscountPercent,
		DiscountValue: money(value),
		IsActive:      true,
	}
}

func fixedCoupon(code string, value int64) *coupons.Coupon {
	return &coupons.Coupon{
		Code:          code,
		DiscountType:  coupons.DiscountFixed,
		DiscountValue: money(value),
		IsActive:      true,
	}
}

func assertCouponReason(t *testing.T, err error, reason apperror.CouponReason) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperror.IsCouponInvalid(err), "expected COUPON_INVALID, got %v", err)
	appErr := err.(*apperror.AppError)
	assert.Equal(t, string(reason), appErr.Details["reason"])
}

func TestValidate_ActiveCoupon(t *testing.T) {
	c := percentCoupon("SALE10", 10)
	err := Validate(c, money(200000), time.Now())
	assert.NoError(t, err)
}

func TestValidate_Inactive(t *testing.T) {
	c := percentCoupon("SALE10", 10)
	c.IsActive = false

	err := Validate(c, money(200000), time.Now())
	assertCouponReason(t, err, apperror.CouponInactive)
}

func TestValidate_Expired(t *testing.T) {
	c := percentCoupon("SALE10", 10)
	yesterday := time.Now().AddDate(0, 0, -1)
	c.ExpiryDate = &yesterday

	err := Validate(c, money(200000), time.Now())
	assertCouponReason(t, err, apperror.CouponExpired)
}

func TestValidate_ExpiresToday_StillValid(t *testing.T) {
	c := percentCoupon("SALE10", 10)
	today := time.Now()
	c.ExpiryDate = &today

	// Expiry is inclusive: the coupon works through the end of its last day.
	err := Validate(c, money(200000), today)
	assert.NoError(t, err)
}

func TestValidate_Exhausted(t *testing.T) {
	c := percentCoupon("SALE10", 10)
	zero := 0
	c.UsageLimit = &zero

	err := Validate(c, money(200000), time.Now())
	assertCouponReason(t, err, apperror.CouponExhausted)
}

func TestValidate_MinOrderTotalNotMet(t *testing.T) {
	c := percentCoupon("SALE10", 10)
	min := money(100000)
	c.MinOrderTotal = &min

	err := Validate(c, money(99999), time.Now())
	assertCouponReason(t, err, apperror.CouponMinNotMet)

	// Exactly the minimum qualifies.
	assert.NoError(t, Validate(c, money(100000), time.Now()))
}

func TestComputeDiscount_Percent(t *testing.T) {
	c := percentCoupon("SALE10", 10)

	discount := ComputeDiscount(c, money(200000))
	assert.True(t, discount.Equal(money(20000)), "got %s", discount)
}

func TestComputeDiscount_Fixed(t *testing.T) {
	c := fixedCoupon("MINUS5K", 5000)

	discount := ComputeDiscount(c, money(200000))
	assert.True(t, discount.Equal(money(5000)), "got %s", discount)
}

func TestComputeDiscount_ClampedToOrderAmount(t *testing.T) {
	c := fixedCoupon("BIG", 500000)

	discount := ComputeDiscount(c, money(200000))
	assert.True(t, discount.Equal(money(200000)), "got %s", discount)
}

func TestComputeDiscount_NegativeValueClampedToZero(t *testing.T) {
	c := fixedCoupon("WEIRD", -100)

	discount := ComputeDiscount(c, money(200000))
	assert.True(t, discount.IsZero(), "got %s", discount)
}

func TestComputeDiscount_DiscountTypeCaseInsensitive(t *testing.T) {
	c := percentCoupon("SALE10", 10)
	c.DiscountType = "PERCENT"

	discount := ComputeDiscount(c, money(200000))
	assert.True(t, discount.Equal(money(20000)), "got %s", discount)
}

func TestApply_ValidCoupon(t *testing.T) {
	e := NewEngine(nil)
	min := money(100000)
	c := percentCoupon("SALE10", 10)
	c.MinOrderTotal = &min

	discount, err := e.Apply(c, money(200000), time.Now())
	require.NoError(t, err)
	assert.True(t, discount.Equal(money(20000)), "got %s", discount)
}

func TestApply_InvalidCouponYieldsZero(t *testing.T) {
	e := NewEngine(nil)
	c := percentCoupon("SALE10", 10)
	c.IsActive = false

	discount, err := e.Apply(c, money(200000), time.Now())
	require.Error(t, err)
	assert.True(t, discount.IsZero())
}
