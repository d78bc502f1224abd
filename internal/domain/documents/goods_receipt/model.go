// Package goods_receipt provides the goods receipt document: incoming goods
// from a supplier into a warehouse.
package goods_receipt

import (
	"context"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/core/types"
	"agroshop/internal/domain/docflow"
	"agroshop/internal/domain/ledger"
)

// Table is the ref-table name used in ledger back-references.
const Table = "goods_receipts"

// Payment states of a receipt toward the supplier.
const (
	PaymentUnpaid  = "UNPAID"
	PaymentPartial = "PARTIAL"
	PaymentPaid    = "PAID"
)

// GoodsReceipt records incoming goods from a supplier.
// Lifecycle: DRAFT -confirm-> CONFIRMED (emits one purchase movement per
// item) or DRAFT -cancel-> CANCELLED.
type GoodsReceipt struct {
	entity.Document

	// SupplierID references the supplier profile
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// WarehouseID is the receiving warehouse
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// PaymentStatus tracks settlement with the supplier
	PaymentStatus string `db:"payment_status" json:"paymentStatus,omitempty"`

	// TotalAmount is always recomputed from items; client totals are ignored
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Items is the owned line collection
	Items []Item `db:"-" json:"items"`
}

// Item is a single received product line.
type Item struct {
	ItemID        id.ID       `db:"item_id" json:"itemId"`
	LineNo        int         `db:"line_no" json:"lineNo"`
	ProductUnitID id.ID       `db:"product_unit_id" json:"productUnitId"`
	Quantity      int         `db:"quantity" json:"quantity"`
	UnitPrice     types.Money `db:"unit_price" json:"unitPrice"`
	Amount        types.Money `db:"amount" json:"amount"`
}

// New creates a goods receipt in DRAFT.
func New(supplierID, warehouseID id.ID) *GoodsReceipt {
	return &GoodsReceipt{
		Document:      entity.NewDocument(entity.StatusDraft),
		SupplierID:    supplierID,
		WarehouseID:   warehouseID,
		PaymentStatus: PaymentUnpaid,
		TotalAmount:   types.Zero(),
		Items:         make([]Item, 0),
	}
}

// AddItem appends a line and recalculates the total.
func (g *GoodsReceipt) AddItem(productUnitID id.ID, quantity int, unitPrice types.Money) {
	amount := unitPrice.Mul(types.NewMoneyFromInt(int64(quantity)))
	g.Items = append(g.Items, Item{
		ItemID:        id.New(),
		LineNo:        len(g.Items) + 1,
		ProductUnitID: productUnitID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Amount:        amount,
	})
	g.RecalculateTotal()
}

// ReplaceItems swaps the whole item collection (clear-then-add) and
// recomputes the total. Line identifiers and amounts are regenerated.
func (g *GoodsReceipt) ReplaceItems(items []Item) {
	replacement := make([]Item, len(items))
	copy(replacement, items)

	g.Items = make([]Item, 0, len(replacement))
	for _, it := range replacement {
		g.AddItem(it.ProductUnitID, it.Quantity, it.UnitPrice)
	}
}

// RecalculateTotal updates the document total from its items.
func (g *GoodsReceipt) RecalculateTotal() {
	total := types.Zero()
	for _, it := range g.Items {
		total = total.Add(it.Amount)
	}
	g.TotalAmount = total
}

// Validate implements entity.Validatable.
func (g *GoodsReceipt) Validate(ctx context.Context) error {
	if err := g.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(g.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if id.IsNil(g.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(g.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, it := range g.Items {
		if id.IsNil(it.ProductUnitID) {
			return apperror.NewValidation("product unit is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// Movements builds one purchase movement per item (docflow.Document).
func (g *GoodsReceipt) Movements() []ledger.Movement {
	movements := make([]ledger.Movement, 0, len(g.Items))
	for _, it := range g.Items {
		movements = append(movements, ledger.NewMovement(
			it.ProductUnitID,
			g.WarehouseID,
			ledger.MovementPurchase,
			it.Quantity,
			Table,
			g.ID,
		))
	}
	return movements
}

// Workflow declares the goods receipt state machine.
//
// CONFIRMED is strictly terminal here; whether a confirmed receipt should
// ever be cancellable is an unresolved question with the business.
func Workflow() docflow.Workflow {
	return docflow.Workflow{
		Kind:    Table,
		Initial: entity.StatusDraft,
		Transitions: map[docflow.Action]docflow.Edge{
			docflow.ActionConfirm: {From: entity.StatusDraft, To: entity.StatusConfirmed},
			docflow.ActionCancel:  {From: entity.StatusDraft, To: entity.StatusCancelled},
		},
		Deletable:  []entity.Status{entity.StatusDraft, entity.StatusCancelled},
		EmitAction: docflow.ActionConfirm,
		EmitType:   ledger.MovementPurchase,
	}
}

// Ensure interface compliance at compile time.
var _ docflow.Document = (*GoodsReceipt)(nil)
