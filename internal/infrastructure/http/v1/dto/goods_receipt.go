package dto

import (
	"time"

	"agroshop/internal/core/id"
	"agroshop/internal/core/types"
	"agroshop/internal/domain/documents/goods_receipt"
)

// --- Request DTOs ---

// CreateGoodsReceiptRequest represents a request to create a goods receipt.
type CreateGoodsReceiptRequest struct {
	Date        *time.Time               `json:"date,omitempty"`
	SupplierID  string                   `json:"supplierId" binding:"required,uuid"`
	WarehouseID string                   `json:"warehouseId" binding:"required,uuid"`
	Notes       string                   `json:"notes,omitempty"`
	Items       []GoodsReceiptItemRequest `json:"items" binding:"required,min=1,dive"`
}

// GoodsReceiptItemRequest represents a line in create/update requests.
// Totals are recomputed server-side; client amounts are ignored.
type GoodsReceiptItemRequest struct {
	ProductUnitID string      `json:"productUnitId" binding:"required,uuid"`
	Quantity      int         `json:"quantity" binding:"required,gt=0"`
	UnitPrice     types.Money `json:"unitPrice"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateGoodsReceiptRequest) ToEntity() *goods_receipt.GoodsReceipt {
	supplierID, _ := id.Parse(r.SupplierID)
	warehouseID, _ := id.Parse(r.WarehouseID)

	doc := goods_receipt.New(supplierID, warehouseID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Notes = r.Notes

	for _, item := range r.Items {
		productUnitID, _ := id.Parse(item.ProductUnitID)
		doc.AddItem(productUnitID, item.Quantity, item.UnitPrice)
	}
	return doc
}

// UpdateGoodsReceiptRequest represents a request to update a goods receipt.
// Only DRAFT documents accept updates.
type UpdateGoodsReceiptRequest struct {
	Date        *time.Time                `json:"date,omitempty"`
	SupplierID  *string                   `json:"supplierId,omitempty"`
	WarehouseID *string                   `json:"warehouseId,omitempty"`
	Notes       *string                   `json:"notes,omitempty"`
	Items       []GoodsReceiptItemRequest `json:"items,omitempty"`
}

// ApplyTo applies updates onto an existing entity.
func (r *UpdateGoodsReceiptRequest) ApplyTo(doc *goods_receipt.GoodsReceipt) {
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
		items := make([]goods_receipt.Item, 0, len(r.Items))
		for _, item := range r.Items {
			productUnitID, _ := id.Parse(item.ProductUnitID)
			items = append(items, goods_receipt.Item{
				ProductUnitID: productUnitID,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
			})
		}
		doc.ReplaceItems(items)
	}
}

// MarkPaidRequest updates the supplier payment status.
type MarkPaidRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

// --- Response DTOs ---

// GoodsReceiptResponse represents a goods receipt in API responses.
type GoodsReceiptResponse struct {
	ID            string                     `json:"id"`
	Number        string                     `json:"number"`
	Date          time.Time                  `json:"date"`
	Status        string                     `json:"status"`
	SupplierID    string                     `json:"supplierId"`
	WarehouseID   string                     `json:"warehouseId"`
	PaymentStatus string                     `json:"paymentStatus"`
	TotalAmount   types.Money                `json:"totalAmount"`
	Notes         string                     `json:"notes,omitempty"`
	CreatedBy     *string                    `json:"createdBy,omitempty"`
	ApprovedBy    *string                    `json:"approvedBy,omitempty"`
	Items         []GoodsReceiptItemResponse `json:"items,omitempty"`
	Version       int                        `json:"version"`
	CreatedAt     time.Time                  `json:"createdAt"`
	UpdatedAt     time.Time                  `json:"updatedAt"`
}

// GoodsReceiptItemResponse represents a line in API responses.
type GoodsReceiptItemResponse struct {
	ItemID        string      `json:"itemId"`
	LineNo        int         `json:"lineNo"`
	ProductUnitID string      `json:"productUnitId"`
	Quantity      int         `json:"quantity"`
	UnitPrice     types.Money `json:"unitPrice"`
	Amount        types.Money `json:"amount"`
}

// FromGoodsReceipt converts a domain entity to the response DTO.
func FromGoodsReceipt(doc *goods_receipt.GoodsReceipt) *GoodsReceiptResponse {
	resp := &GoodsReceiptResponse{
		ID:            doc.ID.String(),
		Number:        doc.Number,
		Date:          doc.Date,
		Status:        string(doc.Status),
		SupplierID:    doc.SupplierID.String(),
		WarehouseID:   doc.WarehouseID.String(),
		PaymentStatus: doc.PaymentStatus,
		TotalAmount:   doc.TotalAmount,
		Notes:         doc.Notes,
		CreatedBy:     idToString(doc.CreatedByID),
		ApprovedBy:    idToString(doc.ApprovedByID),
		Version:       doc.Version,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}

	resp.Items = make([]GoodsReceiptItemResponse, len(doc.Items))
	for i, item := range doc.Items {
		resp.Items[i] = GoodsReceiptItemResponse{
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

func idToString(i *id.ID) *string {
	if i == nil {
		return nil
	}
	s := i.String()
	return &s
}
