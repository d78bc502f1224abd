package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/documents/customer_return"
	"agroshop/internal/infrastructure/storage/postgres"
)

const (
	customerReturnItemsTable = "customer_return_items"
	customerReturnFK         = "return_id"
)

var customerReturnItemCols = append(
	[]string{customerReturnFK},
	postgres.ExtractDBColumns[customer_return.Item]()...,
)

// CustomerReturnRepo is the PostgreSQL implementation of customer_return.Repository.
type CustomerReturnRepo struct {
	*baseDocumentRepo[*customer_return.CustomerReturn]
}

var _ customer_return.Repository = (*CustomerReturnRepo)(nil)

func NewCustomerReturnRepo(txm *postgres.TxManager) *CustomerReturnRepo {
	return &CustomerReturnRepo{
		baseDocumentRepo: newBaseDocumentRepo(txm, customer_return.Table, func() *customer_return.CustomerReturn {
			return &customer_return.CustomerReturn{}
		}),
	}
}

// GetItems loads the line collection ordered by line number.
func (r *CustomerReturnRepo) GetItems(ctx context.Context, docID id.ID) ([]customer_return.Item, error) {
	return getLines[customer_return.Item](ctx, r.txm, customerReturnItemsTable, customerReturnFK, docID)
}

// SaveItems replaces the full line collection.
func (r *CustomerReturnRepo) SaveItems(ctx context.Context, docID id.ID, items []customer_return.Item) error {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{docID, it.ItemID, it.LineNo, it.ProductUnitID, it.Quantity, it.UnitPrice, it.Amount})
	}
	return r.replaceLines(ctx, customerReturnItemsTable, customerReturnFK, docID, customerReturnItemCols, rows)
}

// List returns customer returns matching the filter.
func (r *CustomerReturnRepo) List(ctx context.Context, filter customer_return.ListFilter) (domain.ListResult[*customer_return.CustomerReturn], error) {
	q := r.baseSelect()

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.OrderID != nil {
		q = q.Where(squirrel.Eq{"order_id": *filter.OrderID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	return r.list(ctx, q, filter.ListFilter)
}
