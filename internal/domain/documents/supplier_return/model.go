// Package supplier_return provides the supplier return document: goods sent
// back to a supplier, leaving the warehouse once approved.
package supplier_return

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
const Table = "supplier_returns"

// SupplierReturn tracks goods going back to a supplier.
// Lifecycle: PENDING -approve-> APPROVED (emits one return-out movement per
// item), PENDING -reject-> REJECTED, PENDING -cancel-> CANCELLED.
type SupplierReturn struct {
	entity.Document

	// SupplierID references the supplier profile
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// ReceiptID optionally links the return to the originating goods receipt
	ReceiptID *id.ID `db:"receipt_id" json:"receiptId,omitempty"`

	// WarehouseID is the warehouse the goods leave from
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// TotalReturn is always recomputed from items; client totals are ignored
	TotalReturn types.Money `db:"total_return" json:"totalReturn"`

	// RejectionReason is set by the reject transition
	RejectionReason string `db:"rejection_reason" json:"rejectionReason,omitempty"`

	// Items is the owned line collection
	Items []Item `db:"-" json:"items"`
}

// Item is a single product line being returned to the supplier.
type Item struct {
	ItemID        id.ID       `db:"item_id" json:"itemId"`
	LineNo        int         `db:"line_no" json:"lineNo"`
	ProductUnitID id.ID       `db:"product_unit_id" json:"productUnitId"`
	Quantity      int         `db:"quantity" json:"quantity"`
	UnitPrice     types.Money `db:"unit_price" json:"unitPrice"`
	Amount        types.Money `db:"amount" json:"amount"`
}

// New creates a supplier return in PENDING.
func New(supplierID, warehouseID id.ID) *SupplierReturn {
	return &SupplierReturn{
		Document:    entity.NewDocument(entity.StatusPending),
		SupplierID:  supplierID,
		WarehouseID: warehouseID,
		TotalReturn: types.Zero(),
		Items:       make([]Item, 0),
	}
}

// AddItem appends a line and recalculates the return total.
func (r *SupplierReturn) AddItem(productUnitID id.ID, quantity int, unitPrice types.Money) {
	amount := unitPrice.Mul(types.NewMoneyFromInt(int64(quantity)))
	r.Items = append(r.Items, Item{
		ItemID:        id.New(),
		LineNo:        len(r.Items) + 1,
		ProductUnitID: productUnitID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Amount:        amount,
	})
	r.RecalculateTotal()
}

// ReplaceItems swaps the whole item collection and recomputes the total.
func (r *SupplierReturn) ReplaceItems(items []Item) {
	replacement := make([]Item, len(items))
	copy(replacement, items)

	r.Items = make([]Item, 0, len(replacement))
	for _, it := range replacement {
		r.AddItem(it.ProductUnitID, it.Quantity, it.UnitPrice)
	}
}

// RecalculateTotal updates the return total from items.
func (r *SupplierReturn) RecalculateTotal() {
	total := types.Zero()
	for _, it := range r.Items {
		total = total.Add(it.Amount)
	}
	r.TotalReturn = total
}

// Validate implements entity.Validatable.
func (r *SupplierReturn) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if id.IsNil(r.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(r.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, it := range r.Items {
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

// Movements builds one return-out movement per item (docflow.Document).
func (r *SupplierReturn) Movements() []ledger.Movement {
	movements := make([]ledger.Movement, 0, len(r.Items))
	for _, it := range r.Items {
		movements = append(movements, ledger.NewMovement(
			it.ProductUnitID,
			r.WarehouseID,
			ledger.MovementReturnOut,
			it.Quantity,
			Table,
			r.ID,
		))
	}
	return movements
}

// Workflow declares the supplier return state machine. Approving records the
// acting user as approver on the document.
func Workflow() docflow.Workflow {
	return docflow.Workflow{
		Kind:    Table,
		Initial: entity.StatusPending,
		Transitions: map[docflow.Action]docflow.Edge{
			docflow.ActionApprove: {From: entity.StatusPending, To: entity.StatusApproved},
			docflow.ActionReject:  {From: entity.StatusPending, To: entity.StatusRejected},
			docflow.ActionCancel:  {From: entity.StatusPending, To: entity.StatusCancelled},
		},
		Deletable:      []entity.Status{entity.StatusPending, entity.StatusCancelled},
		EmitAction:     docflow.ActionApprove,
		EmitType:       ledger.MovementReturnOut,
		RecordApprover: true,
	}
}

var _ docflow.Document = (*SupplierReturn)(nil)
