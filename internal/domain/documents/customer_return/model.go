// Package customer_return provides the customer return document: goods a
// customer sends back, restocked into a warehouse once approved.
package customer_return

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
const Table = "customer_returns"

// CustomerReturn tracks goods coming back from a customer.
// Lifecycle: PENDING -approve-> APPROVED (emits one return-in movement per
// item), PENDING -reject-> REJECTED, PENDING -cancel-> CANCELLED.
type CustomerReturn struct {
	entity.Document

	// CustomerID references the customer profile
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// OrderID optionally links the return to the originating sales order
	OrderID *id.ID `db:"order_id" json:"orderId,omitempty"`

	// WarehouseID is the warehouse the goods are restocked into
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// TotalRefund is always recomputed from items; client totals are ignored
	TotalRefund types.Money `db:"total_refund" json:"totalRefund"`

	// RejectionReason is set by the reject transition
	RejectionReason string `db:"rejection_reason" json:"rejectionReason,omitempty"`

	// Items is the owned line collection
	Items []Item `db:"-" json:"items"`
}

// Item is a single returned product line.
type Item struct {
	ItemID        id.ID       `db:"item_id" json:"itemId"`
	LineNo        int         `db:"line_no" json:"lineNo"`
	ProductUnitID id.ID       `db:"product_unit_id" json:"productUnitId"`
	Quantity      int         `db:"quantity" json:"quantity"`
	UnitPrice     types.Money `db:"unit_price" json:"unitPrice"`
	Amount        types.Money `db:"amount" json:"amount"`
}

// New creates a customer return in PENDING.
func New(customerID, warehouseID id.ID) *CustomerReturn {
	return &CustomerReturn{
		Document:    entity.NewDocument(entity.StatusPending),
		CustomerID:  customerID,
		WarehouseID: warehouseID,
		TotalRefund: types.Zero(),
		Items:       make([]Item, 0),
	}
}

// AddItem appends a line and recalculates the refund total.
func (r *CustomerReturn) AddItem(productUnitID id.ID, quantity int, unitPrice types.Money) {
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
func (r *CustomerReturn) ReplaceItems(items []Item) {
	replacement := make([]Item, len(items))
	copy(replacement, items)

	r.Items = make([]Item, 0, len(replacement))
	for _, it := range replacement {
		r.AddItem(it.ProductUnitID, it.Quantity, it.UnitPrice)
	}
}

// RecalculateTotal updates the refund total from items.
func (r *CustomerReturn) RecalculateTotal() {
	total := types.Zero()
	for _, it := range r.Items {
		total = total.Add(it.Amount)
	}
	r.TotalRefund = total
}

// Validate implements entity.Validatable.
func (r *CustomerReturn) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
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

// Movements builds one return-in movement per item (docflow.Document).
func (r *CustomerReturn) Movements() []ledger.Movement {
	movements := make([]ledger.Movement, 0, len(r.Items))
	for _, it := range r.Items {
		movements = append(movements, ledger.NewMovement(
			it.ProductUnitID,
			r.WarehouseID,
			ledger.MovementReturnIn,
			it.Quantity,
			Table,
			r.ID,
		))
	}
	return movements
}

// Workflow declares the customer return state machine. Approving records the
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
		EmitType:       ledger.MovementReturnIn,
		RecordApprover: true,
	}
}

var _ docflow.Document = (*CustomerReturn)(nil)
