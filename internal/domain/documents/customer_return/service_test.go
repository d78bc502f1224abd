package customer_return

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroshop/internal/core/apperror"
	appctx "agroshop/internal/core/context"
	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/core/numerator"
	"agroshop/internal/core/types"
	"agroshop/internal/domain"
	"agroshop/internal/domain/docflow"
	"agroshop/internal/domain/ledger"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	mu    sync.Mutex
	docs  map[id.ID]*CustomerReturn
	items map[id.ID][]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*CustomerReturn),
		items: make(map[id.ID][]Item),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *CustomerReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*CustomerReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("customer_returns", docID)
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*CustomerReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("customer_returns", number)
}

func (r *fakeRepo) Update(ctx context.Context, doc *CustomerReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, docID id.ID, allowed []entity.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok {
		return false, apperror.NewNotFound("customer_returns", docID)
	}
	for _, s := range allowed {
		if doc.Status == s {
			delete(r.docs, docID)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CompareAndSetStatus(ctx context.Context, docID id.ID, from, to entity.Status, approvedBy *id.ID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok || doc.Status != from {
		return false, nil
	}
	doc.Status = to
	if approvedBy != nil {
		doc.ApprovedByID = approvedBy
	}
	if reason != "" {
		doc.RejectionReason = reason
	}
	return true, nil
}

func (r *fakeRepo) CurrentStatus(ctx context.Context, docID id.ID) (entity.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok {
		return "", apperror.NewNotFound("customer_returns", docID)
	}
	return doc.Status, nil
}

func (r *fakeRepo) GetItems(ctx context.Context, docID id.ID) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[docID], nil
}

func (r *fakeRepo) SaveItems(ctx context.Context, docID id.ID, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[docID] = items
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*CustomerReturn], error) {
	return domain.ListResult[*CustomerReturn]{}, nil
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []ledger.Movement
}

func (r *fakeMovementRepo) CreateBatch(ctx context.Context, movements []ledger.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeMovementRepo) GetByRef(ctx context.Context, refTable string, refID id.ID) ([]ledger.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Movement
	for _, m := range r.movements {
		if m.RefTable == refTable && m.RefID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) List(ctx context.Context, filter ledger.ListFilter) (domain.ListResult[ledger.Movement], error) {
	return domain.ListResult[ledger.Movement]{}, nil
}

func money(v int64) types.Money {
	return decimal.NewFromInt(v)
}

func newTestService() (*Service, *fakeRepo, *fakeMovementRepo) {
	repo := newFakeRepo()
	movements := &fakeMovementRepo{}
	engine := docflow.NewEngine(fakeTxManager{}, ledger.NewService(movements), nil)
	svc := NewService(repo, engine, &numerator.MockGenerator{}, fakeTxManager{})
	return svc, repo, movements
}

func pendingReturn() *CustomerReturn {
	doc := New(id.New(), id.New())
	doc.AddItem(id.New(), 2, money(45000))
	return doc
}

func staff() *appctx.UserContext {
	return &appctx.UserContext{
		UserID: id.New(),
		Email:  "returns@example.com",
		Roles:  []string{"manager"},
	}
}

func TestNew_StartsPending(t *testing.T) {
	doc := pendingReturn()
	assert.Equal(t, entity.StatusPending, doc.Status)
	assert.True(t, doc.TotalRefund.Equal(money(90000)), "got %s", doc.TotalRefund)
}

func TestWorkflow_Shape(t *testing.T) {
	wf := Workflow()

	assert.Equal(t, Table, wf.Kind)
	assert.Equal(t, entity.StatusPending, wf.Initial)
	assert.Equal(t, docflow.ActionApprove, wf.EmitAction)
	assert.Equal(t, ledger.MovementReturnIn, wf.EmitType)
	assert.True(t, wf.RecordApprover)

	edge, ok := wf.EdgeFor(docflow.ActionApprove)
	require.True(t, ok)
	assert.Equal(t, entity.StatusApproved, edge.To)
	_, ok = wf.EdgeFor(docflow.ActionConfirm)
	assert.False(t, ok, "returns are approved, not confirmed")
}

func TestApprove_EmitsReturnInAndRecordsApprover(t *testing.T) {
	svc, repo, movements := newTestService()
	doc := pendingReturn()
	actor := staff()
	require.NoError(t, svc.Create(context.Background(), doc, actor))

	approved, err := svc.Approve(context.Background(), doc.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, actor.UserID, *approved.ApprovedByID)

	saved, err := repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.ApprovedByID)
	assert.Equal(t, actor.UserID, *saved.ApprovedByID)

	posted, err := movements.GetByRef(context.Background(), Table, doc.ID)
	require.NoError(t, err)
	require.Len(t, posted, 1)
	assert.Equal(t, ledger.MovementReturnIn, posted[0].Type)
	assert.Equal(t, 1, posted[0].Type.Direction(), "restock is incoming")
	assert.Equal(t, 2, posted[0].Quantity)
}

func TestReject_RequiresReasonAndEmitsNothing(t *testing.T) {
	svc, _, movements := newTestService()
	doc := pendingReturn()
	require.NoError(t, svc.Create(context.Background(), doc, staff()))

	_, err := svc.Reject(context.Background(), doc.ID, staff(), "")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, err.(*apperror.AppError).Code)

	rejected, err := svc.Reject(context.Background(), doc.ID, staff(), "items damaged in transit")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, rejected.Status)
	assert.Equal(t, "items damaged in transit", rejected.RejectionReason)

	posted, _ := movements.GetByRef(context.Background(), Table, doc.ID)
	assert.Empty(t, posted, "rejected returns never touch stock")
}

func TestApprove_AfterReject_InvalidState(t *testing.T) {
	svc, _, _ := newTestService()
	doc := pendingReturn()
	require.NoError(t, svc.Create(context.Background(), doc, staff()))

	_, err := svc.Reject(context.Background(), doc.ID, staff(), "wrong items")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), doc.ID, staff())
	require.True(t, apperror.IsInvalidState(err))
	appErr := err.(*apperror.AppError)
	assert.Equal(t, string(entity.StatusRejected), appErr.Details["current"])
}

func TestDelete_NotFromApproved(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	pending := pendingReturn()
	require.NoError(t, svc.Create(ctx, pending, staff()))
	require.NoError(t, svc.Delete(ctx, pending.ID))

	approved := pendingReturn()
	require.NoError(t, svc.Create(ctx, approved, staff()))
	_, err := svc.Approve(ctx, approved.ID, staff())
	require.NoError(t, err)

	err = svc.Delete(ctx, approved.ID)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestUpdate_OnlyWhilePending(t *testing.T) {
	svc, _, _ := newTestService()
	doc := pendingReturn()
	require.NoError(t, svc.Create(context.Background(), doc, staff()))

	approved, err := svc.Approve(context.Background(), doc.ID, staff())
	require.NoError(t, err)

	err = svc.Update(context.Background(), approved)
	assert.True(t, apperror.IsInvalidState(err))
}
