package orders

import (
	"context"
	"strings"
	"time"

	"agroshop/internal/core/apperror"
	appctx "agroshop/internal/core/context"
	"agroshop/internal/core/id"
	"agroshop/internal/core/numerator"
	"agroshop/internal/core/tx"
	"agroshop/internal/domain"
	"agroshop/internal/domain/coupons"
	"agroshop/internal/domain/pricing"
	"agroshop/pkg/logger"
)

// NumberPrefix for generated order numbers, e.g. ORD-2026-00123.
const NumberPrefix = "ORD"

// Service owns the order lifecycle.
type Service struct {
	repo       Repository
	couponRepo coupons.Repository
	numerator  numerator.Generator
	txManager  tx.Manager
}

func NewService(repo Repository, couponRepo coupons.Repository, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:       repo,
		couponRepo: couponRepo,
		numerator:  gen,
		txManager:  txManager,
	}
}

// Create places an order. Totals and discount are computed server-side;
// client-sent money values are ignored. When a coupon code is given it is
// validated against the merchandise total, and for limited coupons the
// usage decrement happens in the same transaction as the order insert, so
// an exhausted coupon aborts the whole order.
func (s *Service) Create(ctx context.Context, order *Order, couponCode string, actor *appctx.UserContext) error {
	if actor != nil {
		order.BuyerID = &actor.UserID
		if strings.TrimSpace(order.DeliveryName) == "" {
			order.DeliveryName = actor.Name
		}
	}

	order.RecalculateTotals()
	if err := order.Validate(ctx); err != nil {
		return err
	}

	var coupon *coupons.Coupon
	if couponCode != "" {
		c, err := s.couponRepo.GetByCode(ctx, couponCode)
		if err != nil {
			return err
		}
		if err := pricing.Validate(c, order.TotalAmount, time.Now()); err != nil {
			return err
		}
		order.ApplyDiscount(c.ID, pricing.ComputeDiscount(c, order.TotalAmount))
		coupon = c
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		orderNo, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), order.Date)
		if err != nil {
			return err
		}
		order.OrderNo = orderNo

		if err := s.repo.Create(ctx, order); err != nil {
			return err
		}
		if err := s.repo.SaveItems(ctx, order.ID, order.Items); err != nil {
			return err
		}

		if coupon != nil && coupon.IsLimited() {
			if err := s.couponRepo.DecrementUsage(ctx, coupon.ID); err != nil {
				// Lost the race for the last use: abort the order.
				if apperror.IsConcurrentModification(err) {
					return apperror.NewCouponInvalid(coupon.Code, apperror.CouponExhausted)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "order created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"guest", order.IsGuest(),
		"total_pay", order.TotalPay,
		"coupon", couponCode,
	)
	return nil
}

// GetByID loads the order with its items.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// GetByNumber loads the order by its public order number.
func (s *Service) GetByNumber(ctx context.Context, orderNo string) (*Order, error) {
	order, err := s.repo.GetByNumber(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// UpdateStatus moves the order along its lifecycle, optionally replacing the
// notes. Only status and notes are mutable after creation. Resubmitting the
// current status is a notes-only update. The swap is a conditional update,
// so a concurrent transition leaves exactly one winner.
func (s *Service) UpdateStatus(ctx context.Context, orderID id.ID, to Status, notes *string, actor *appctx.UserContext) (*Order, error) {
	if !to.IsValid() {
		return nil, apperror.NewValidation("unknown order status").
			WithDetail("status", string(to))
	}

	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if to != order.Status && !CanTransition(order.Status, to) {
		return nil, apperror.NewInvalidState(string(order.Status), string(to))
	}

	swapped, err := s.repo.UpdateStatus(ctx, orderID, order.Status, to, notes)
	if err != nil {
		return nil, err
	}
	if !swapped {
		actual, err := s.repo.CurrentStatus(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, apperror.NewInvalidState(string(actual), string(to))
	}

	order.Status = to
	if notes != nil {
		order.Notes = *notes
	}
	order.Touch()

	fields := []any{
		"order_id", orderID,
		"order_no", order.OrderNo,
		"status", to,
	}
	if actor != nil {
		fields = append(fields, "actor_id", actor.UserID)
	}
	logger.Info(ctx, "order status changed", fields...)
	return order, nil
}

// FindMyOrders lists the calling buyer's own orders. Guests have no order
// history to query.
func (s *Service) FindMyOrders(ctx context.Context, actor *appctx.UserContext, filter ListFilter) (domain.ListResult[*Order], error) {
	if actor == nil {
		return domain.ListResult[*Order]{}, apperror.NewUnauthorized("authentication required")
	}
	filter.BuyerID = &actor.UserID
	return s.repo.List(ctx, filter)
}

// List returns orders matching the filter (back-office use).
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.List(ctx, filter)
}
