// Package ledger provides the append-only inventory movement register.
package ledger

import (
	"time"

	"agroshop/internal/core/id"
)

// MovementType classifies a stock quantity change by its cause.
type MovementType string

const (
	MovementPurchase      MovementType = "purchase"
	MovementSale          MovementType = "sale"
	MovementReturnIn      MovementType = "return_in"
	MovementReturnOut     MovementType = "return_out"
	MovementAdjustmentPos MovementType = "adjustment_pos"
	MovementAdjustmentNeg MovementType = "adjustment_neg"
	MovementTransferIn    MovementType = "transfer_in"
	MovementTransferOut   MovementType = "transfer_out"
	MovementConversionIn  MovementType = "conversion_in"
	MovementConversionOut MovementType = "conversion_out"
)

// Direction returns +1 for incoming stock and -1 for outgoing stock.
func (t MovementType) Direction() int {
	switch t {
	case MovementPurchase, MovementReturnIn, MovementAdjustmentPos,
		MovementTransferIn, MovementConversionIn:
		return 1
	default:
		return -1
	}
}

// IsValid reports whether t is a known movement type.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementReturnIn, MovementReturnOut,
		MovementAdjustmentPos, MovementAdjustmentNeg,
		MovementTransferIn, MovementTransferOut,
		MovementConversionIn, MovementConversionOut:
		return true
	}
	return false
}

// Movement is a single immutable ledger entry. Movements are written only as
// part of a document's terminal transition and are never updated or deleted.
type Movement struct {
	ID id.ID `db:"id" json:"id"`

	ProductUnitID id.ID `db:"product_unit_id" json:"productUnitId"`
	WarehouseID   id.ID `db:"warehouse_id" json:"warehouseId"`

	Type     MovementType `db:"type" json:"type"`
	Quantity int          `db:"quantity" json:"quantity"`

	// Back-reference to the originating document
	RefTable string `db:"ref_table" json:"refTable"`
	RefID    id.ID  `db:"ref_id" json:"refId"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a ledger entry for the given document reference.
func NewMovement(productUnitID, warehouseID id.ID, typ MovementType, quantity int, refTable string, refID id.ID) Movement {
	return Movement{
		ID:            id.New(),
		ProductUnitID: productUnitID,
		WarehouseID:   warehouseID,
		Type:          typ,
		Quantity:      quantity,
		RefTable:      refTable,
		RefID:         refID,
		CreatedAt:     time.Now().UTC(),
	}
}
