package orders

import (
	"context"

	"agroshop/internal/core/id"
	"agroshop/internal/domain"
)

// ListFilter narrows order listings.
type ListFilter struct {
	domain.ListFilter

	BuyerID  *id.ID
	Status   *Status
	IsOnline *bool
	DateFrom *string
	DateTo   *string
}

// Repository is the persistence port for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	GetByNumber(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus performs a conditional status swap
	// (UPDATE ... WHERE id = $1 AND status = $2). Returns false when the
	// row was not in the expected status.
	UpdateStatus(ctx context.Context, orderID id.ID, from, to Status, notes *string) (bool, error)

	// CurrentStatus reads the live status, used to report the actual state
	// after a lost conditional update.
	CurrentStatus(ctx context.Context, orderID id.ID) (Status, error)

	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, orderID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)
}
