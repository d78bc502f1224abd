package docflow

import (
	"context"
	"fmt"

	appctx "agroshop/internal/core/context"
	"agroshop/internal/core/apperror"
	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/core/tx"
	"agroshop/internal/domain/ledger"
	"agroshop/pkg/logger"
)

// AuditRecorder receives successful transitions for the audit trail.
// Implementations must tolerate being called outside a transaction; failures
// are logged, never propagated.
type AuditRecorder interface {
	RecordTransition(ctx context.Context, kind string, docID id.ID, action string, from, to entity.Status, actor *appctx.UserContext, reason string) error
}

// Engine drives document transitions. One engine instance serves all
// document kinds; the kind-specific behavior comes from the Workflow.
type Engine struct {
	txManager tx.Manager
	ledger    *ledger.Service
	audit     AuditRecorder // optional
}

// NewEngine creates a transition engine.
func NewEngine(txManager tx.Manager, ledgerSvc *ledger.Service, audit AuditRecorder) *Engine {
	return &Engine{
		txManager: txManager,
		ledger:    ledgerSvc,
		audit:     audit,
	}
}

// Transition moves doc along the workflow edge for action.
//
// The status write and any resulting ledger writes commit or abort together.
// A caller that loses the race against a concurrent transition receives an
// INVALID_STATE error and causes no ledger writes.
func (e *Engine) Transition(ctx context.Context, wf Workflow, store StatusStore, doc Document, action Action, actor *appctx.UserContext, reason string) error {
	edge, ok := wf.EdgeFor(action)
	if !ok {
		return apperror.NewInvalidState(string(doc.CurrentStatus()), string(action))
	}

	current := doc.CurrentStatus()
	if current != edge.From {
		return apperror.NewInvalidState(string(current), string(action))
	}

	if action == ActionReject && reason == "" {
		return apperror.NewValidation("rejection reason is required").
			WithDetail("field", "reason")
	}

	emits := action == wf.EmitAction

	var approver *id.ID
	if emits && wf.RecordApprover && actor != nil {
		actorID := actor.UserID
		approver = &actorID
	}

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		swapped, err := store.CompareAndSetStatus(ctx, doc.GetID(), edge.From, edge.To, approver, reason)
		if err != nil {
			return fmt.Errorf("transition %s %s: %w", wf.Kind, action, err)
		}
		if !swapped {
			// Lost the race: report the state the winner left behind.
			actual, serr := store.CurrentStatus(ctx, doc.GetID())
			if serr != nil {
				actual = current
			}
			return apperror.NewInvalidState(string(actual), string(action))
		}

		if emits {
			if err := e.ledger.Append(ctx, doc.Movements()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	doc.SetStatus(edge.To)
	if approver != nil {
		doc.SetApprover(*approver)
	}

	if e.audit != nil {
		if err := e.audit.RecordTransition(ctx, wf.Kind, doc.GetID(), string(action), edge.From, edge.To, actor, reason); err != nil {
			logger.Warn(ctx, "transition audit failed",
				"kind", wf.Kind,
				"document_id", doc.GetID(),
				"error", err)
		}
	}

	logger.Info(ctx, "document transitioned",
		"kind", wf.Kind,
		"document_id", doc.GetID(),
		"action", string(action),
		"from", string(edge.From),
		"to", string(edge.To))

	return nil
}

// EnsureUpdatable guards document updates: only a document still in its
// initial state may be modified.
func (e *Engine) EnsureUpdatable(wf Workflow, doc Document) error {
	if doc.CurrentStatus() != wf.Initial {
		return apperror.NewInvalidState(string(doc.CurrentStatus()), string(ActionUpdate))
	}
	return nil
}

// EnsureDeletable guards hard deletes: documents that reached an
// approved/confirmed terminal state can never be removed.
func (e *Engine) EnsureDeletable(wf Workflow, doc Document) error {
	if !wf.CanDelete(doc.CurrentStatus()) {
		return apperror.NewInvalidState(string(doc.CurrentStatus()), string(ActionDelete))
	}
	return nil
}
