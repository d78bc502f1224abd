package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/documents/supplier_return"
	"agroshop/internal/infrastructure/storage/postgres"
)

const (
	supplierReturnItemsTable = "supplier_return_items"
	supplierReturnFK         = "return_id"
)

var supplierReturnItemCols = append(
	[]string{supplierReturnFK},
	postgres.ExtractDBColumns[supplier_return.Item]()...,
)

// SupplierReturnRepo is the PostgreSQL implementation of supplier_return.Repository.
type SupplierReturnRepo struct {
	*baseDocumentRepo[*supplier_return.SupplierReturn]
}

var _ supplier_return.Repository = (*SupplierReturnRepo)(nil)

func NewSupplierReturnRepo(txm *postgres.TxManager) *SupplierReturnRepo {
	return &SupplierReturnRepo{
		baseDocumentRepo: newBaseDocumentRepo(txm, supplier_return.Table, func() *supplier_return.SupplierReturn {
			return &supplier_return.SupplierReturn{}
		}),
	}
}

// GetItems loads the line collection ordered by line number.
func (r *SupplierReturnRepo) GetItems(ctx context.Context, docID id.ID) ([]supplier_return.Item, error) {
	return getLines[supplier_return.Item](ctx, r.txm, supplierReturnItemsTable, supplierReturnFK, docID)
}

// SaveItems replaces the full line collection.
func (r *SupplierReturnRepo) SaveItems(ctx context.Context, docID id.ID, items []supplier_return.Item) error {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{docID, it.ItemID, it.LineNo, it.ProductUnitID, it.Quantity, it.UnitPrice, it.Amount})
	}
	return r.replaceLines(ctx, supplierReturnItemsTable, supplierReturnFK, docID, supplierReturnItemCols, rows)
}

// List returns supplier returns matching the filter.
func (r *SupplierReturnRepo) List(ctx context.Context, filter supplier_return.ListFilter) (domain.ListResult[*supplier_return.SupplierReturn], error) {
	q := r.baseSelect()

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.ReceiptID != nil {
		q = q.Where(squirrel.Eq{"receipt_id": *filter.ReceiptID})
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
