package entity

import (
	"context"
	"time"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/id"
)

// Status is a warehouse document lifecycle state.
type Status string

const (
	// StatusDraft is the initial state of goods receipts.
	StatusDraft Status = "DRAFT"
	// StatusPending is the initial state of return documents.
	StatusPending Status = "PENDING"
	// StatusConfirmed is the approved terminal state of goods receipts.
	StatusConfirmed Status = "CONFIRMED"
	// StatusApproved is the approved terminal state of return documents.
	StatusApproved Status = "APPROVED"
	// StatusRejected is reached from PENDING with a mandatory reason.
	StatusRejected Status = "REJECTED"
	// StatusCancelled is reached from the initial state only.
	StatusCancelled Status = "CANCELLED"
)

// Document is the base type for warehouse paper-trail documents
// (goods receipts, customer returns, supplier returns).
type Document struct {
	BaseDocument

	// Number is the document number, issued by the identifier generator
	// inside the creating transaction. Immutable afterwards.
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Status drives the approval state machine
	Status Status `db:"status" json:"status"`

	// Notes is an optional free-form comment; for returns it carries the
	// return or rejection reason.
	Notes string `db:"notes" json:"notes,omitempty"`

	// CreatedByID references the profile that created the document (optional)
	CreatedByID *id.ID `db:"created_by" json:"createdBy,omitempty"`

	// ApprovedByID references the profile that approved/confirmed it (optional)
	ApprovedByID *id.ID `db:"approved_by" json:"approvedBy,omitempty"`
}

// NewDocument creates a new Document in the given initial status.
func NewDocument(initial Status) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		Status:       initial,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// CurrentStatus returns the document status (state machine contract).
func (d *Document) CurrentStatus() Status {
	return d.Status
}

// SetStatus records a status change.
func (d *Document) SetStatus(s Status) {
	d.Status = s
	d.Touch()
}

// SetApprover records the approving actor.
func (d *Document) SetApprover(actorID id.ID) {
	d.ApprovedByID = &actorID
}

// GetID returns the document ID (state machine contract).
func (d *Document) GetID() id.ID {
	return d.ID
}
