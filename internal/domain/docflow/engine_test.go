package docflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "agroshop/internal/core/context"
	"agroshop/internal/core/apperror"
	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/ledger"
)

// --- fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeStore struct {
	mu     sync.Mutex
	status entity.Status

	approvedBy *id.ID
	reason     string
	casCalls   int
}

func (s *fakeStore) CompareAndSetStatus(ctx context.Context, docID id.ID, from, to entity.Status, approvedBy *id.ID, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.casCalls++
	if s.status != from {
		return false, nil
	}
	s.status = to
	s.approvedBy = approvedBy
	s.reason = reason
	return true, nil
}

func (s *fakeStore) CurrentStatus(ctx context.Context, docID id.ID) (entity.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

type fakeMovementRepo struct {
	mu      sync.Mutex
	batches [][]ledger.Movement
}

func (r *fakeMovementRepo) CreateBatch(ctx context.Context, movements []ledger.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, movements)
	return nil
}

func (r *fakeMovementRepo) GetByRef(ctx context.Context, refTable string, refID id.ID) ([]ledger.Movement, error) {
	return nil, nil
}

func (r *fakeMovementRepo) List(ctx context.Context, filter ledger.ListFilter) (domain.ListResult[ledger.Movement], error) {
	return domain.ListResult[ledger.Movement]{}, nil
}

func (r *fakeMovementRepo) written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}

type fakeDoc struct {
	entity.Document
	warehouseID id.ID
	items       int
}

func newFakeDoc(initial entity.Status, items int) *fakeDoc {
	return &fakeDoc{
		Document:    entity.NewDocument(initial),
		warehouseID: id.New(),
		items:       items,
	}
}

func (d *fakeDoc) Movements() []ledger.Movement {
	movements := make([]ledger.Movement, 0, d.items)
	for i := 0; i < d.items; i++ {
		movements = append(movements, ledger.NewMovement(
			id.New(), d.warehouseID, ledger.MovementPurchase, i+1, "fake_docs", d.GetID()))
	}
	return movements
}

func testWorkflow() Workflow {
	return Workflow{
		Kind:    "fake_docs",
		Initial: entity.StatusDraft,
		Transitions: map[Action]Edge{
			ActionConfirm: {From: entity.StatusDraft, To: entity.StatusConfirmed},
			ActionCancel:  {From: entity.StatusDraft, To: entity.StatusCancelled},
		},
		Deletable:  []entity.Status{entity.StatusDraft, entity.StatusCancelled},
		EmitAction: ActionConfirm,
		EmitType:   ledger.MovementPurchase,
	}
}

func approvalWorkflow() Workflow {
	return Workflow{
		Kind:    "fake_returns",
		Initial: entity.StatusPending,
		Transitions: map[Action]Edge{
			ActionApprove: {From: entity.StatusPending, To: entity.StatusApproved},
			ActionReject:  {From: entity.StatusPending, To: entity.StatusRejected},
			ActionCancel:  {From: entity.StatusPending, To: entity.StatusCancelled},
		},
		Deletable:      []entity.Status{entity.StatusPending, entity.StatusCancelled},
		EmitAction:     ActionApprove,
		EmitType:       ledger.MovementReturnIn,
		RecordApprover: true,
	}
}

func newTestEngine(store *fakeStore) (*Engine, *fakeMovementRepo) {
	repo := &fakeMovementRepo{}
	return NewEngine(fakeTxManager{}, ledger.NewService(repo), nil), repo
}

func testActor() *appctx.UserContext {
	return &appctx.UserContext{
		UserID: id.New(),
		Email:  "manager@example.com",
		Roles:  []string{"manager"},
	}
}

// --- tests ---

func TestTransition_ConfirmEmitsMovements(t *testing.T) {
	store := &fakeStore{status: entity.StatusDraft}
	engine, repo := newTestEngine(store)
	doc := newFakeDoc(entity.StatusDraft, 3)

	err := engine.Transition(context.Background(), testWorkflow(), store, doc, ActionConfirm, testActor(), "")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusConfirmed, doc.CurrentStatus())
	assert.Equal(t, entity.StatusConfirmed, store.status)
	assert.Equal(t, 3, repo.written(), "one movement per item")
}

func TestTransition_CancelEmitsNothing(t *testing.T) {
	store := &fakeStore{status: entity.StatusDraft}
	engine, repo := newTestEngine(store)
	doc := newFakeDoc(entity.StatusDraft, 3)

	err := engine.Transition(context.Background(), testWorkflow(), store, doc, ActionCancel, testActor(), "")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCancelled, doc.CurrentStatus())
	assert.Zero(t, repo.written())
}

func TestTransition_UnknownAction(t *testing.T) {
	store := &fakeStore{status: entity.StatusDraft}
	engine, _ := newTestEngine(store)
	doc := newFakeDoc(entity.StatusDraft, 1)

	err := engine.Transition(context.Background(), testWorkflow(), store, doc, ActionApprove, testActor(), "")
	assert.True(t, apperror.IsInvalidState(err))
}

func TestTransition_WrongCurrentState(t *testing.T) {
	store := &fakeStore{status: entity.StatusConfirmed}
	engine, repo := newTestEngine(store)
	doc := newFakeDoc(entity.StatusConfirmed, 1)

	err := engine.Transition(context.Background(), testWorkflow(), store, doc, ActionConfirm, testActor(), "")
	require.True(t, apperror.IsInvalidState(err))

	assert.Zero(t, store.casCalls, "no store write for an edge that does not apply")
	assert.Zero(t, repo.written())
}

func TestTransition_LostRace(t *testing.T) {
	// The in-memory copy still says DRAFT, but another request already
	// confirmed the document.
	store := &fakeStore{status: entity.StatusConfirmed}
	engine, repo := newTestEngine(store)
	doc := newFakeDoc(entity.StatusDraft, 2)

	err := engine.Transition(context.Background(), testWorkflow(), store, doc, ActionConfirm, testActor(), "")
	require.True(t, apperror.IsInvalidState(err))

	appErr := err.(*apperror.AppError)
	assert.Equal(t, string(entity.StatusConfirmed), appErr.Details["current"],
		"loser sees the state the winner left behind")
	assert.Zero(t, repo.written(), "loser causes no ledger writes")
	assert.Equal(t, entity.StatusDraft, doc.CurrentStatus(), "in-memory copy untouched on failure")
}

func TestTransition_ConcurrentConfirm_OneWinner(t *testing.T) {
	store := &fakeStore{status: entity.StatusDraft}
	engine, repo := newTestEngine(store)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})

	docID := id.New()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := newFakeDoc(entity.StatusDraft, 2)
			doc.ID = docID
			<-start
			errs <- engine.Transition(context.Background(), testWorkflow(), store, doc, ActionConfirm, testActor(), "")
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var winners, losers int
	for err := range errs {
		if err == nil {
			winners++
		} else if apperror.IsInvalidState(err) {
			losers++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, winners, "exactly one request wins the race")
	assert.Equal(t, n-1, losers)
	assert.Equal(t, 2, repo.written(), "exactly one set of movements is written")
}

func TestTransition_RejectRequiresReason(t *testing.T) {
	store := &fakeStore{status: entity.StatusPending}
	engine, _ := newTestEngine(store)
	doc := newFakeDoc(entity.StatusPending, 1)

	err := engine.Transition(context.Background(), approvalWorkflow(), store, doc, ActionReject, testActor(), "")
	require.Error(t, err)
	appErr := err.(*apperror.AppError)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	err = engine.Transition(context.Background(), approvalWorkflow(), store, doc, ActionReject, testActor(), "damaged packaging")
	require.NoError(t, err)
	assert.Equal(t, "damaged packaging", store.reason)
	assert.Equal(t, entity.StatusRejected, doc.CurrentStatus())
}

func TestTransition_ApproveRecordsApprover(t *testing.T) {
	store := &fakeStore{status: entity.StatusPending}
	engine, repo := newTestEngine(store)
	doc := newFakeDoc(entity.StatusPending, 2)
	actor := testActor()

	err := engine.Transition(context.Background(), approvalWorkflow(), store, doc, ActionApprove, actor, "")
	require.NoError(t, err)

	require.NotNil(t, store.approvedBy)
	assert.Equal(t, actor.UserID, *store.approvedBy)
	require.NotNil(t, doc.ApprovedByID)
	assert.Equal(t, actor.UserID, *doc.ApprovedByID)
	assert.Equal(t, 2, repo.written())
}

func TestTransition_RejectDoesNotRecordApprover(t *testing.T) {
	store := &fakeStore{status: entity.StatusPending}
	engine, repo := newTestEngine(store)
	doc := newFakeDoc(entity.StatusPending, 2)

	err := engine.Transition(context.Background(), approvalWorkflow(), store, doc, ActionReject, testActor(), "wrong item")
	require.NoError(t, err)

	assert.Nil(t, store.approvedBy)
	assert.Zero(t, repo.written(), "reject emits no movements")
}

func TestEnsureUpdatable(t *testing.T) {
	engine, _ := newTestEngine(&fakeStore{})
	wf := testWorkflow()

	assert.NoError(t, engine.EnsureUpdatable(wf, newFakeDoc(entity.StatusDraft, 0)))

	err := engine.EnsureUpdatable(wf, newFakeDoc(entity.StatusConfirmed, 0))
	assert.True(t, apperror.IsInvalidState(err))
}

func TestEnsureDeletable(t *testing.T) {
	engine, _ := newTestEngine(&fakeStore{})
	wf := testWorkflow()

	assert.NoError(t, engine.EnsureDeletable(wf, newFakeDoc(entity.StatusDraft, 0)))
	assert.NoError(t, engine.EnsureDeletable(wf, newFakeDoc(entity.StatusCancelled, 0)))

	err := engine.EnsureDeletable(wf, newFakeDoc(entity.StatusConfirmed, 0))
	assert.True(t, apperror.IsInvalidState(err))
}
