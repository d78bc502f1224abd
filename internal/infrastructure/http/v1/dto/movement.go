package dto

import (
	"time"

	"agroshop/internal/domain/ledger"
)

// MovementResponse represents an inventory movement in API responses.
// The register is read-only over HTTP; there is no request DTO.
type MovementResponse struct {
	ID            string    `json:"id"`
	ProductUnitID string    `json:"productUnitId"`
	WarehouseID   string    `json:"warehouseId"`
	Type          string    `json:"type"`
	Direction     int       `json:"direction"`
	Quantity      int       `json:"quantity"`
	RefTable      string    `json:"refTable"`
	RefID         string    `json:"refId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromMovement converts a domain movement to the response DTO.
func FromMovement(m ledger.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID.String(),
		ProductUnitID: m.ProductUnitID.String(),
		WarehouseID:   m.WarehouseID.String(),
		Type:          string(m.Type),
		Direction:     m.Type.Direction(),
		Quantity:      m.Quantity,
		RefTable:      m.RefTable,
		RefID:         m.RefID.String(),
		CreatedAt:     m.CreatedAt,
	}
}
