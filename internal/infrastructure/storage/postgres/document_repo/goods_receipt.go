package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/documents/goods_receipt"
	"agroshop/internal/infrastructure/storage/postgres"
)

const (
	goodsReceiptItemsTable = "goods_receipt_items"
	goodsReceiptFK         = "receipt_id"
)

var goodsReceiptItemCols = append(
	[]string{goodsReceiptFK},
	postgres.ExtractDBColumns[goods_receipt.Item]()...,
)

// GoodsReceiptRepo is the PostgreSQL implementation of goods_receipt.Repository.
type GoodsReceiptRepo struct {
	*baseDocumentRepo[*goods_receipt.GoodsReceipt]
}

var _ goods_receipt.Repository = (*GoodsReceiptRepo)(nil)

func NewGoodsReceiptRepo(txm *postgres.TxManager) *GoodsReceiptRepo {
	return &GoodsReceiptRepo{
		baseDocumentRepo: newBaseDocumentRepo(txm, goods_receipt.Table, func() *goods_receipt.GoodsReceipt {
			return &goods_receipt.GoodsReceipt{}
		}),
	}
}

// GetItems loads the line collection ordered by line number.
func (r *GoodsReceiptRepo) GetItems(ctx context.Context, docID id.ID) ([]goods_receipt.Item, error) {
	return getLines[goods_receipt.Item](ctx, r.txm, goodsReceiptItemsTable, goodsReceiptFK, docID)
}

// SaveItems replaces the full line collection.
func (r *GoodsReceiptRepo) SaveItems(ctx context.Context, docID id.ID, items []goods_receipt.Item) error {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{docID, it.ItemID, it.LineNo, it.ProductUnitID, it.Quantity, it.UnitPrice, it.Amount})
	}
	return r.replaceLines(ctx, goodsReceiptItemsTable, goodsReceiptFK, docID, goodsReceiptItemCols, rows)
}

// List returns receipts matching the filter.
func (r *GoodsReceiptRepo) List(ctx context.Context, filter goods_receipt.ListFilter) (domain.ListResult[*goods_receipt.GoodsReceipt], error) {
	q := r.baseSelect()

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
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
