package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
)

type fakeMovementRepo struct {
	mu       sync.Mutex
	appended []Movement
}

func (r *fakeMovementRepo) CreateBatch(_ context.Context, movements []Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, movements...)
	return nil
}

func (r *fakeMovementRepo) GetByRef(_ context.Context, refTable string, refID id.ID) ([]Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Movement
	for _, m := range r.appended {
		if m.RefTable == refTable && m.RefID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) List(_ context.Context, filter ListFilter) (domain.ListResult[Movement], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]Movement, len(r.appended))
	copy(items, r.appended)
	return domain.ListResult[Movement]{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func validMovement() Movement {
	return NewMovement(id.New(), id.New(), MovementPurchase, 5, "goods_receipts", id.New())
}

func TestAppendValid(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo)

	err := svc.Append(context.Background(), []Movement{validMovement(), validMovement()})
	require.NoError(t, err)
	assert.Len(t, repo.appended, 2)
}

func TestAppendRejectsUnknownType(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo)

	m := validMovement()
	m.Type = MovementType("teleport")

	err := svc.Append(context.Background(), []Movement{m})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "teleport", appErr.Details["type"])
	assert.Empty(t, repo.appended, "invalid batch must not be written")
}

func TestAppendRejectsNonPositiveQuantity(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo)

	for _, qty := range []int{0, -3} {
		m := validMovement()
		m.Quantity = qty
		err := svc.Append(context.Background(), []Movement{m})
		require.Error(t, err)
	}
	assert.Empty(t, repo.appended)
}

func TestAppendRejectsNilIDs(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo)

	noProduct := validMovement()
	noProduct.ProductUnitID = id.Nil()

	noWarehouse := validMovement()
	noWarehouse.WarehouseID = id.Nil()

	for _, m := range []Movement{noProduct, noWarehouse} {
		err := svc.Append(context.Background(), []Movement{m})
		require.Error(t, err)
	}
	assert.Empty(t, repo.appended)
}

func TestAppendRejectsMissingRef(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo)

	noTable := validMovement()
	noTable.RefTable = ""

	noRefID := validMovement()
	noRefID.RefID = id.Nil()

	for _, m := range []Movement{noTable, noRefID} {
		err := svc.Append(context.Background(), []Movement{m})
		require.Error(t, err)
	}
	assert.Empty(t, repo.appended)
}

func TestAppendRejectsWholeBatchOnSingleBadEntry(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo)

	bad := validMovement()
	bad.Quantity = 0

	err := svc.Append(context.Background(), []Movement{validMovement(), bad})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 1, appErr.Details["index"])
	assert.Empty(t, repo.appended)
}

func TestGetByRef(t *testing.T) {
	repo := &fakeMovementRepo{}
	svc := NewService(repo)

	refID := id.New()
	mine := NewMovement(id.New(), id.New(), MovementReturnIn, 2, "customer_returns", refID)
	other := validMovement()

	require.NoError(t, svc.Append(context.Background(), []Movement{mine, other}))

	got, err := svc.GetByRef(context.Background(), "customer_returns", refID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, refID, got[0].RefID)
	assert.Equal(t, MovementReturnIn, got[0].Type)
}

func TestMovementDirections(t *testing.T) {
	assert.Equal(t, 1, MovementPurchase.Direction())
	assert.Equal(t, 1, MovementReturnIn.Direction())
	assert.Equal(t, -1, MovementSale.Direction())
	assert.Equal(t, -1, MovementReturnOut.Direction())
	assert.Equal(t, 1, MovementTransferIn.Direction())
	assert.Equal(t, -1, MovementTransferOut.Direction())
}

func TestMovementTypeIsValid(t *testing.T) {
	assert.True(t, MovementAdjustmentNeg.IsValid())
	assert.True(t, MovementConversionOut.IsValid())
	assert.False(t, MovementType("").IsValid())
	assert.False(t, MovementType("teleport").IsValid())
}

func TestNewMovementStampsCreatedAt(t *testing.T) {
	m := validMovement()
	assert.False(t, id.IsNil(m.ID))
	assert.WithinDuration(t, time.Now(), m.CreatedAt, 5*time.Second)
}
