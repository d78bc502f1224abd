package customer_return

import (
	"context"

	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/docflow"
)

// ListFilter narrows customer return listings.
type ListFilter struct {
	domain.ListFilter

	CustomerID  *id.ID
	OrderID     *id.ID
	WarehouseID *id.ID
	Status      *entity.Status
	DateFrom    *string
	DateTo      *string
}

// Repository is the persistence port for customer returns.
type Repository interface {
	docflow.StatusStore

	Create(ctx context.Context, doc *CustomerReturn) error
	GetByID(ctx context.Context, docID id.ID) (*CustomerReturn, error)
	GetByNumber(ctx context.Context, number string) (*CustomerReturn, error)
	Update(ctx context.Context, doc *CustomerReturn) error

	// Delete removes the document only when its status is one of allowed.
	Delete(ctx context.Context, docID id.ID, allowed []entity.Status) (bool, error)

	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*CustomerReturn], error)
}
