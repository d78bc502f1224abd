package orders

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroshop/internal/core/apperror"
	appctx "agroshop/internal/core/context"
	"agroshop/internal/core/id"
	"agroshop/internal/core/numerator"
	"agroshop/internal/core/types"
	"agroshop/internal/domain"
	"agroshop/internal/domain/coupons"
)

// --- fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[id.ID]*Order
	items  map[id.ID][]Item
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[id.ID]*Order),
		items:  make(map[id.ID][]Item),
	}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) GetByNumber(ctx context.Context, orderNo string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.OrderNo == orderNo {
			cp := *order
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("order", orderNo)
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, from, to Status, notes *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	if notes != nil {
		order.Notes = *notes
	}
	return true, nil
}

func (r *fakeOrderRepo) CurrentStatus(ctx context.Context, orderID id.ID) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return "", apperror.NewNotFound("order", orderID)
	}
	return order.Status, nil
}

func (r *fakeOrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[orderID], nil
}

func (r *fakeOrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[orderID] = items
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := domain.ListResult[*Order]{Limit: filter.Limit, Offset: filter.Offset}
	for _, order := range r.orders {
		if filter.BuyerID != nil && (order.BuyerID == nil || *order.BuyerID != *filter.BuyerID) {
			continue
		}
		cp := *order
		result.Items = append(result.Items, &cp)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

// fakeCouponRepo simulates the conditional decrement: the counter only goes
// down while it is positive, concurrent losers get CONCURRENT_MODIFICATION.
type fakeCouponRepo struct {
	mu      sync.Mutex
	coupons map[id.ID]*coupons.Coupon
}

func newFakeCouponRepo(list ...*coupons.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{coupons: make(map[id.ID]*coupons.Coupon)}
	for _, c := range list {
		r.coupons[c.ID] = c
	}
	return r
}

func (r *fakeCouponRepo) GetByID(ctx context.Context, couponID id.ID) (*coupons.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[couponID]
	if !ok {
		return nil, apperror.NewNotFound("coupon", couponID)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*coupons.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			if c.UsageLimit != nil {
				limit := *c.UsageLimit
				cp.UsageLimit = &limit
			}
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("coupon", code)
}

func (r *fakeCouponRepo) DecrementUsage(ctx context.Context, couponID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[couponID]
	if !ok || c.UsageLimit == nil || *c.UsageLimit <= 0 {
		return apperror.NewConcurrentModification("coupons", couponID)
	}
	*c.UsageLimit--
	return nil
}

// --- helpers ---

func money(v int64) types.Money {
	return decimal.NewFromInt(v)
}

func newTestService(couponRepo coupons.Repository) (*Service, *fakeOrderRepo) {
	repo := newFakeOrderRepo()
	svc := NewService(repo, couponRepo, &numerator.MockGenerator{}, fakeTxManager{})
	return svc, repo
}

func guestOrder() *Order {
	order := New()
	order.DeliveryName = "Nguyen Van A"
	order.DeliveryPhone = "0901234567"
	order.DeliveryAddress = "12 Le Loi, Da Nang"
	order.IsOnline = true
	order.AddItem(id.New(), 2, money(54000), money(0), money(8))
	return order
}

func buyer() *appctx.UserContext {
	return &appctx.UserContext{
		UserID: id.New(),
		Email:  "buyer@example.com",
		Name:   "Tran Thi B",
		Roles:  []string{"buyer"},
	}
}

// --- tests ---

func TestCreate_GuestOrder(t *testing.T) {
	svc, repo := newTestService(newFakeCouponRepo())
	order := guestOrder()

	err := svc.Create(context.Background(), order, "", nil)
	require.NoError(t, err)

	assert.True(t, order.IsGuest())
	assert.Equal(t, "ORD-"+time.Now().Format("2006")+"-00001", order.OrderNo)
	assert.True(t, order.TotalAmount.Equal(money(108000)), "got %s", order.TotalAmount)
	assert.True(t, order.TotalVat.Equal(money(8000)), "VAT contained in the total, got %s", order.TotalVat)
	assert.True(t, order.TotalPay.Equal(order.TotalAmount.Sub(order.DiscountTotal)), "got %s", order.TotalPay)
	assert.True(t, order.TotalPay.Equal(money(108000)), "got %s", order.TotalPay)

	saved, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, saved.Status)
}

func TestCreate_GuestWithoutContactRejected(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())

	order := New()
	order.AddItem(id.New(), 1, money(50000), money(0), money(0))

	err := svc.Create(context.Background(), order, "", nil)
	require.Error(t, err)
	appErr := err.(*apperror.AppError)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "deliveryName", appErr.Details["field"])
}

func TestCreate_AuthenticatedBuyerAttached(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())
	actor := buyer()

	order := New()
	order.AddItem(id.New(), 1, money(50000), money(0), money(0))

	err := svc.Create(context.Background(), order, "", actor)
	require.NoError(t, err)

	require.NotNil(t, order.BuyerID)
	assert.Equal(t, actor.UserID, *order.BuyerID)
	assert.Equal(t, actor.Name, order.DeliveryName, "delivery name defaults from the profile")
}

func TestCreate_EmptyOrderRejected(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())

	err := svc.Create(context.Background(), New(), "", buyer())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, err.(*apperror.AppError).Code)
}

func TestCreate_WithPercentCoupon(t *testing.T) {
	coupon := &coupons.Coupon{
		Code:          "SALE10",
		DiscountType:  coupons.DiscountPercent,
		DiscountValue: money(10),
		IsActive:      true,
	}
	coupon.ID = id.New()

	svc, _ := newTestService(newFakeCouponRepo(coupon))
	order := guestOrder()

	err := svc.Create(context.Background(), order, "sale10", nil)
	require.NoError(t, err)

	require.NotNil(t, order.CouponID)
	assert.Equal(t, coupon.ID, *order.CouponID)
	assert.True(t, order.DiscountTotal.Equal(money(10800)), "10%% of merchandise total, got %s", order.DiscountTotal)
	assert.True(t, order.TotalPay.Equal(money(97200)), "got %s", order.TotalPay)
	assert.True(t, order.TotalPay.Equal(order.TotalAmount.Sub(order.DiscountTotal)))
}

func TestCreate_ExpiredCouponAbortsOrder(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	coupon := &coupons.Coupon{
		Code:          "OLD",
		DiscountType:  coupons.DiscountFixed,
		DiscountValue: money(5000),
		ExpiryDate:    &yesterday,
		IsActive:      true,
	}
	coupon.ID = id.New()

	svc, repo := newTestService(newFakeCouponRepo(coupon))
	order := guestOrder()

	err := svc.Create(context.Background(), order, "OLD", nil)
	require.True(t, apperror.IsCouponInvalid(err))

	_, err = repo.GetByID(context.Background(), order.ID)
	assert.True(t, apperror.IsNotFound(err), "order must not be persisted")
}

func TestCreate_LimitedCouponDecrements(t *testing.T) {
	limit := 3
	coupon := &coupons.Coupon{
		Code:          "LIM",
		DiscountType:  coupons.DiscountFixed,
		DiscountValue: money(5000),
		UsageLimit:    &limit,
		IsActive:      true,
	}
	coupon.ID = id.New()
	couponRepo := newFakeCouponRepo(coupon)

	svc, _ := newTestService(couponRepo)

	err := svc.Create(context.Background(), guestOrder(), "LIM", nil)
	require.NoError(t, err)

	stored, err := couponRepo.GetByID(context.Background(), coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, *stored.UsageLimit)
}

func TestCreate_ConcurrentCheckouts_LastUseSingleWinner(t *testing.T) {
	limit := 1
	coupon := &coupons.Coupon{
		Code:          "LAST",
		DiscountType:  coupons.DiscountFixed,
		DiscountValue: money(5000),
		UsageLimit:    &limit,
		IsActive:      true,
	}
	coupon.ID = id.New()
	couponRepo := newFakeCouponRepo(coupon)
	svc, _ := newTestService(couponRepo)

	const n = 10
	errs := make(chan error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- svc.Create(context.Background(), guestOrder(), "LAST", nil)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var winners, exhausted int
	for err := range errs {
		switch {
		case err == nil:
			winners++
		case apperror.IsCouponInvalid(err):
			appErr := err.(*apperror.AppError)
			assert.Equal(t, string(apperror.CouponExhausted), appErr.Details["reason"])
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, winners, "exactly one checkout takes the last use")
	assert.Equal(t, n-1, exhausted)

	stored, err := couponRepo.GetByID(context.Background(), coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *stored.UsageLimit, "counter never goes negative")
}

func TestTotals_PayExcludesVat(t *testing.T) {
	order := New()
	order.AddItem(id.New(), 2, money(100000), money(0), money(8))

	assert.True(t, order.TotalAmount.Equal(money(200000)), "got %s", order.TotalAmount)
	assert.True(t, order.TotalPay.Equal(money(200000)),
		"payable amount is the merchandise total, got %s", order.TotalPay)
	assert.True(t, order.TotalPay.Equal(order.TotalAmount.Sub(order.DiscountTotal)))
	assert.True(t, order.TotalVat.LessThan(order.TotalAmount),
		"VAT is a breakdown of the total, not an addition")
}

func TestAddItem_LineDiscount(t *testing.T) {
	order := New()
	order.AddItem(id.New(), 2, money(60000), money(12000), money(8))

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.True(t, item.DiscountAmount.Equal(money(12000)))
	assert.True(t, item.Amount.Equal(money(108000)), "qty*price minus line discount, got %s", item.Amount)
	assert.True(t, item.VatAmount.Equal(money(8000)), "got %s", item.VatAmount)
	assert.True(t, order.TotalAmount.Equal(money(108000)))
	assert.True(t, order.TotalPay.Equal(money(108000)))
}

func TestCreate_LineDiscountValidation(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())

	negative := guestOrder()
	negative.AddItem(id.New(), 1, money(50000), money(-1000), money(0))
	err := svc.Create(context.Background(), negative, "", nil)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, err.(*apperror.AppError).Code)

	excessive := guestOrder()
	excessive.AddItem(id.New(), 1, money(50000), money(60000), money(0))
	err = svc.Create(context.Background(), excessive, "", nil)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, err.(*apperror.AppError).Code)
}

func TestUpdateStatus_LegalTransitions(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())
	order := guestOrder()
	require.NoError(t, svc.Create(context.Background(), order, "", nil))

	updated, err := svc.UpdateStatus(context.Background(), order.ID, StatusConfirmed, nil, buyer())
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)

	notes := "delivered by courier"
	updated, err = svc.UpdateStatus(context.Background(), order.ID, StatusCompleted, &notes, buyer())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, notes, updated.Notes)
}

func TestUpdateStatus_NotesOnlyKeepsStatus(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())
	order := guestOrder()
	require.NoError(t, svc.Create(context.Background(), order, "", nil))

	notes := "call before delivery"
	updated, err := svc.UpdateStatus(context.Background(), order.ID, StatusPending, &notes, buyer())
	require.NoError(t, err, "resubmitting the current status is a notes-only update")
	assert.Equal(t, StatusPending, updated.Status)
	assert.Equal(t, notes, updated.Notes)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())
	order := guestOrder()
	require.NoError(t, svc.Create(context.Background(), order, "", nil))

	_, err := svc.UpdateStatus(context.Background(), order.ID, StatusCompleted, nil, buyer())
	require.True(t, apperror.IsInvalidState(err), "PENDING cannot jump to COMPLETED")
}

func TestUpdateStatus_TerminalStateFrozen(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())
	order := guestOrder()
	require.NoError(t, svc.Create(context.Background(), order, "", nil))

	_, err := svc.UpdateStatus(context.Background(), order.ID, StatusCancelled, nil, buyer())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, StatusConfirmed, nil, buyer())
	assert.True(t, apperror.IsInvalidState(err))
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())

	_, err := svc.UpdateStatus(context.Background(), id.New(), Status("SHIPPED"), nil, buyer())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, err.(*apperror.AppError).Code)
}

func TestUpdateStatus_ConcurrentCancel_OneWinner(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())
	order := guestOrder()
	require.NoError(t, svc.Create(context.Background(), order, "", nil))

	const n = 6
	errs := make(chan error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.UpdateStatus(context.Background(), order.ID, StatusCancelled, nil, buyer())
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var winners int
	for err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, apperror.IsInvalidState(err))
		}
	}
	assert.Equal(t, 1, winners)
}

func TestFindMyOrders(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())
	actor := buyer()

	mine := New()
	mine.AddItem(id.New(), 1, money(50000), money(0), money(0))
	require.NoError(t, svc.Create(context.Background(), mine, "", actor))
	require.NoError(t, svc.Create(context.Background(), guestOrder(), "", nil))

	result, err := svc.FindMyOrders(context.Background(), actor, ListFilter{ListFilter: domain.DefaultListFilter()})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, mine.ID, result.Items[0].ID)
}

func TestFindMyOrders_GuestRejected(t *testing.T) {
	svc, _ := newTestService(newFakeCouponRepo())

	_, err := svc.FindMyOrders(context.Background(), nil, ListFilter{})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeUnauthorized, err.(*apperror.AppError).Code)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))

	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusPending))
}
