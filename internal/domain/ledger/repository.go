package ledger

import (
	"context"
	"time"

	"agroshop/internal/core/id"
	"agroshop/internal/domain"
)

// Repository defines operations on the movement register.
// The contract is intentionally append-only: there is no update or delete.
type Repository interface {
	// CreateBatch inserts movements. Must be called inside the transaction
	// that performs the originating document's terminal transition.
	CreateBatch(ctx context.Context, movements []Movement) error

	// GetByRef retrieves movements created by a specific document.
	GetByRef(ctx context.Context, refTable string, refID id.ID) ([]Movement, error)

	// List retrieves movements with filtering.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[Movement], error)
}

// ListFilter for browsing the register.
type ListFilter struct {
	domain.ListFilter

	ProductUnitID *id.ID
	WarehouseID   *id.ID
	Type          *MovementType
	RefTable      string
	DateFrom      *time.Time
	DateTo        *time.Time
}
