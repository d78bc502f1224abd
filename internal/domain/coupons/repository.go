package coupons

import (
	"context"

	"agroshop/internal/core/id"
)

// Repository defines the read + decrement surface the order pipeline needs.
// Administrative coupon CRUD is out of scope here.
type Repository interface {
	// GetByID retrieves a coupon.
	GetByID(ctx context.Context, couponID id.ID) (*Coupon, error)

	// GetByCode retrieves a coupon by code (case-insensitive match).
	GetByCode(ctx context.Context, code string) (*Coupon, error)

	// DecrementUsage atomically decrements the usage counter of a limited
	// coupon: "UPDATE ... SET usage_limit = usage_limit - 1 WHERE id = ?
	// AND usage_limit > 0". Returns a CONCURRENT_MODIFICATION error when no
	// row was affected (counter already exhausted by a concurrent checkout).
	//
	// Must be called inside the transaction that persists the order, so a
	// lost race aborts the whole order creation.
	DecrementUsage(ctx context.Context, couponID id.ID) error
}
