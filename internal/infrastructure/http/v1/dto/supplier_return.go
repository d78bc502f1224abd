package dto

import (
	"time"

	"agroshop/internal/core/id"
	"agroshop/internal/core/types"
	"agroshop/internal/domain/documents/supplier_return"
)

// CreateSupplierReturnRequest represents a request to create a supplier return.
type CreateSupplierReturnRequest struct {
	Date        *time.Time                  `json:"date,omitempty"`
	SupplierID  string                      `json:"supplierId" binding:"required,uuid"`
	ReceiptID   *string                     `json:"receiptId,omitempty"`
	WarehouseID string                      `json:"warehouseId" binding:"required,uuid"`
	Notes       string                      `json:"notes,omitempty"`
	Items       []SupplierReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SupplierReturnItemRequest represents a line in create/update requests.
type SupplierReturnItemRequest struct {
	ProductUnitID string      `json:"productUnitId" binding:"required,uuid"`
	Quantity      int         `json:"quantity" binding:"required,gt=0"`
	UnitPrice     types.Money `json:"unitPrice"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateSupplierReturnRequest) ToEntity() *supplier_return.SupplierReturn {
	supplierID, _ := id.Parse(r.SupplierID)
	warehouseID, _ := id.Parse(r.WarehouseID)

	doc := supplier_return.New(supplierID, warehouseID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.ReceiptID != nil {
		if receiptID, err := id.Parse(*r.ReceiptID); err == nil {
			doc.ReceiptID = &receiptID
		}
	}
	doc.Notes = r.Notes

	for _, item := range r.Items {
		productUnitID, _ := id.Parse(item.ProductUnitID)
		doc.AddItem(productUnitID, item.Quantity, item.UnitPrice)
	}
	return doc
}

// UpdateSupplierReturnRequest represents a request to update a supplier
// return. Only PENDING documents accept updates.
type UpdateSupplierReturnRequest struct {
	Date        *time.Time                  `json:"date,omitempty"`
	SupplierID  *string                     `json:"supplierId,omitempty"`
	WarehouseID *string                     `json:"warehouseId,omitempty"`
	Notes       *string                     `json:"notes,omitempty"`
	Items       []SupplierReturnItemRequest `json:"items,omitempty"`
}

// ApplyTo applies updates onto an existing entity.
func (r *UpdateSupplierReturnRequest) ApplyTo(doc *supplier_return.SupplierReturn) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.SupplierID != nil {
		supplierID, _ := id.Parse(*r.SupplierID)
		doc.SupplierID = supplierID
	}
	if r.WarehouseID != nil {
		warehouseID, _ := id.Parse(*r.WarehouseID)
		doc.WarehouseID = warehouseID
	}
	if r.Notes != nil {
		doc.Notes = *r.Notes
	}

	if r.Items != nil {
		items := make([]supplier_return.Item, 0, len(r.Items))
		for _, item := range r.Items {
			productUnitID, _ := id.Parse(item.ProductUnitID)
			items = append(items, supplier_return.Item{
				ProductUnitID: productUnitID,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
			})
		}
		doc.ReplaceItems(items)
	}
}

// SupplierReturnResponse represents a supplier return in API responses.
type SupplierReturnResponse struct {
	ID              string                       `json:"id"`
	Number          string                       `json:"number"`
	Date            time.Time                    `json:"date"`
	Status          string                       `json:"status"`
	SupplierID      string                       `json:"supplierId"`
	ReceiptID       *string                      `json:"receiptId,omitempty"`
	WarehouseID     string                       `json:"warehouseId"`
	TotalReturn     types.Money                  `json:"totalReturn"`
	RejectionReason string                       `json:"rejectionReason,omitempty"`
	Notes           string                       `json:"notes,omitempty"`
	CreatedBy       *string                      `json:"createdBy,omitempty"`
	ApprovedBy      *string                      `json:"approvedBy,omitempty"`
	Items           []SupplierReturnItemResponse `json:"items,omitempty"`
	Version         int                          `json:"version"`
	CreatedAt       time.Time                    `json:"createdAt"`
	UpdatedAt       time.Time                    `json:"updatedAt"`
}

// SupplierReturnItemResponse represents a line in API responses.
type SupplierReturnItemResponse struct {
	ItemID        string      `json:"itemId"`
	LineNo        int         `json:"lineNo"`
	ProductUnitID string      `json:"productUnitId"`
	Quantity      int         `json:"quantity"`
	UnitPrice     types.Money `json:"unitPrice"`
	Amount        types.Money `json:"amount"`
}

// FromSupplierReturn converts a domain entity to the response DTO.
func FromSupplierReturn(doc *supplier_return.SupplierReturn) *SupplierReturnResponse {
	resp := &SupplierReturnResponse{
		ID:              doc.ID.String(),
		Number:          doc.Number,
		Date:            doc.Date,
		Status:          string(doc.Status),
		SupplierID:      doc.SupplierID.String(),
		ReceiptID:       idToString(doc.ReceiptID),
		WarehouseID:     doc.WarehouseID.String(),
		TotalReturn:     doc.TotalReturn,
		RejectionReason: doc.RejectionReason,
		Notes:           doc.Notes,
		CreatedBy:       idToString(doc.CreatedByID),
		ApprovedBy:      idToString(doc.ApprovedByID),
		Version:         doc.Version,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}

	resp.Items = make([]SupplierReturnItemResponse, len(doc.Items))
	for i, item := range doc.Items {
		resp.Items[i] = SupplierReturnItemResponse{
			ItemID:        item.ItemID.String(),
			LineNo:        item.LineNo,
			ProductUnitID: item.ProductUnitID.String(),
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			Amount:        item.Amount,
		}
	}
	return resp
}
