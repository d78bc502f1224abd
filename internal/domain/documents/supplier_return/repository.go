package supplier_return

import (
	"context"

	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/docflow"
)

// ListFilter narrows supplier return listings.
type ListFilter struct {
	domain.ListFilter

	SupplierID  *id.ID
	ReceiptID   *id.ID
	WarehouseID *id.ID
	Status      *entity.Status
	DateFrom    *string
	DateTo      *string
}

// Repository is the persistence port for supplier returns.
type Repository interface {
	docflow.StatusStore

	Create(ctx context.Context, doc *SupplierReturn) error
	GetByID(ctx context.Context, docID id.ID) (*SupplierReturn, error)
	GetByNumber(ctx context.Context, number string) (*SupplierReturn, error)
	Update(ctx context.Context, doc *SupplierReturn) error

	// Delete removes the document only when its status is one of allowed.
	Delete(ctx context.Context, docID id.ID, allowed []entity.Status) (bool, error)

	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SupplierReturn], error)
}
