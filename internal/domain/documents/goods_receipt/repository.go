package goods_receipt

import (
	"context"

	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/docflow"
)

// ListFilter narrows goods receipt listings.
type ListFilter struct {
	domain.ListFilter

	SupplierID  *id.ID
	WarehouseID *id.ID
	Status      *entity.Status
	DateFrom    *string
	DateTo      *string
}

// Repository is the persistence port for goods receipts. Status changes go
// through the embedded docflow.StatusStore so they stay atomic.
type Repository interface {
	docflow.StatusStore

	Create(ctx context.Context, doc *GoodsReceipt) error
	GetByID(ctx context.Context, docID id.ID) (*GoodsReceipt, error)
	GetByNumber(ctx context.Context, number string) (*GoodsReceipt, error)
	Update(ctx context.Context, doc *GoodsReceipt) error

	// Delete removes the document only when its status is one of allowed.
	// Returns false when the row exists but the status did not match.
	Delete(ctx context.Context, docID id.ID, allowed []entity.Status) (bool, error)

	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	// SaveItems replaces the full line collection of the document.
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*GoodsReceipt], error)
}
