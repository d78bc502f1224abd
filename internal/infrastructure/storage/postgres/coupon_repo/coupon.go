// Package coupon_repo provides the PostgreSQL repository for coupons.
package coupon_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/id"
	"agroshop/internal/domain/coupons"
	"agroshop/internal/infrastructure/storage/postgres"
)

const couponsTable = "coupons"

// CouponRepo is the PostgreSQL implementation of coupons.Repository.
type CouponRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

var _ coupons.Repository = (*CouponRepo)(nil)

func NewCouponRepo(txm *postgres.TxManager) *CouponRepo {
	return &CouponRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[coupons.Coupon](),
	}
}

func (r *CouponRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID retrieves a coupon.
func (r *CouponRepo) GetByID(ctx context.Context, couponID id.ID) (*coupons.Coupon, error) {
	coupon := &coupons.Coupon{}
	sql, args, err := r.builder().
		Select(r.selectCols...).
		From(couponsTable).
		Where(squirrel.Eq{"id": couponID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), coupon, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(couponsTable, couponID.String())
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return coupon, nil
}

// GetByCode retrieves a coupon by code, matching case-insensitively.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*coupons.Coupon, error) {
	coupon := &coupons.Coupon{}
	sql, args, err := r.builder().
		Select(r.selectCols...).
		From(couponsTable).
		Where(squirrel.Expr("LOWER(code) = LOWER(?)", code)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), coupon, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(couponsTable, code)
		}
		return nil, fmt.Errorf("get coupon by code: %w", err)
	}
	return coupon, nil
}

// DecrementUsage atomically takes one use off a limited coupon. The
// condition sits in the UPDATE itself, so two concurrent checkouts racing
// for the last use produce exactly one winner; the loser gets a
// CONCURRENT_MODIFICATION error and its enclosing transaction aborts.
func (r *CouponRepo) DecrementUsage(ctx context.Context, couponID id.ID) error {
	sql := `UPDATE coupons SET usage_limit = usage_limit - 1 WHERE id = $1 AND usage_limit > 0`

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, couponID)
	if err != nil {
		return fmt.Errorf("decrement coupon usage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(couponsTable, couponID.String())
	}
	return nil
}
