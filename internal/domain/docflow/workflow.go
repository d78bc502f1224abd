// Package docflow provides the shared approval state machine for warehouse
// documents (goods receipts, customer returns, supplier returns).
//
// Each document kind declares its workflow as data (initial state, allowed
// edges, which edge emits ledger movements); the engine enforces the edges
// and makes the terminal side effects atomic with the status write.
package docflow

import (
	"context"

	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain/ledger"
)

// Action is an operation requested on a document.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
)

// Edge is a single allowed transition.
type Edge struct {
	From entity.Status
	To   entity.Status
}

// Workflow describes the state machine of one document kind.
type Workflow struct {
	// Kind is the document's ref-table name used in ledger back-references
	// and audit entries (e.g. "goods_receipts").
	Kind string

	// Initial is the status assigned at creation. Update is only permitted
	// while the document is still in this state.
	Initial entity.Status

	// Transitions maps actions to their single allowed edge.
	Transitions map[Action]Edge

	// Deletable lists the states from which hard delete is allowed.
	Deletable []entity.Status

	// EmitAction names the transition that appends ledger movements.
	EmitAction Action

	// EmitType is the movement type written for every document item.
	EmitType ledger.MovementType

	// RecordApprover stores the acting user as approver on EmitAction.
	RecordApprover bool
}

// EdgeFor returns the edge for an action, or false if the action does not
// exist in this workflow at all.
func (w Workflow) EdgeFor(action Action) (Edge, bool) {
	e, ok := w.Transitions[action]
	return e, ok
}

// CanDelete reports whether a document in the given status may be deleted.
func (w Workflow) CanDelete(status entity.Status) bool {
	for _, s := range w.Deletable {
		if s == status {
			return true
		}
	}
	return false
}

// Document is the contract a concrete document type implements to be driven
// by the engine.
type Document interface {
	GetID() id.ID
	CurrentStatus() entity.Status
	SetStatus(entity.Status)
	SetApprover(id.ID)

	// Movements builds one ledger entry per item for the emitting
	// transition. Called only when the workflow's EmitAction fires.
	Movements() []ledger.Movement
}

// StatusStore is the persistence surface the engine requires.
//
// CompareAndSetStatus must be implemented as a conditional UPDATE
// ("... WHERE id = $1 AND status = $2") so that of two concurrent callers
// exactly one observes a swapped row; the loser gets false, never a second
// side effect.
type StatusStore interface {
	CompareAndSetStatus(ctx context.Context, docID id.ID, from, to entity.Status, approvedBy *id.ID, reason string) (bool, error)
	CurrentStatus(ctx context.Context, docID id.ID) (entity.Status, error)
}
