package dto

import (
	"time"

	"agroshop/internal/core/id"
	"agroshop/internal/core/types"
	"agroshop/internal/domain/documents/customer_return"
)

// CreateCustomerReturnRequest represents a request to create a customer return.
type CreateCustomerReturnRequest struct {
	Date        *time.Time                  `json:"date,omitempty"`
	CustomerID  string                      `json:"customerId" binding:"required,uuid"`
	OrderID     *string                     `json:"orderId,omitempty"`
	WarehouseID string                      `json:"warehouseId" binding:"required,uuid"`
	Notes       string                      `json:"notes,omitempty"`
	Items       []CustomerReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CustomerReturnItemRequest represents a line in create/update requests.
type CustomerReturnItemRequest struct {
	ProductUnitID string      `json:"productUnitId" binding:"required,uuid"`
	Quantity      int         `json:"quantity" binding:"required,gt=0"`
	UnitPrice     types.Money `json:"unitPrice"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateCustomerReturnRequest) ToEntity() *customer_return.CustomerReturn {
	customerID, _ := id.Parse(r.CustomerID)
	warehouseID, _ := id.Parse(r.WarehouseID)

	doc := customer_return.New(customerID, warehouseID)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.OrderID != nil {
		if orderID, err := id.Parse(*r.OrderID); err == nil {
			doc.OrderID = &orderID
		}
	}
	doc.Notes = r.Notes

	for _, item := range r.Items {
		productUnitID, _ := id.Parse(item.ProductUnitID)
		doc.AddItem(productUnitID, item.Quantity, item.UnitPrice)
	}
	return doc
}

// UpdateCustomerReturnRequest represents a request to update a customer
// return. Only PENDING documents accept updates.
type UpdateCustomerReturnRequest struct {
	Date        *time.Time                  `json:"date,omitempty"`
	CustomerID  *string                     `json:"customerId,omitempty"`
	WarehouseID *string                     `json:"warehouseId,omitempty"`
	Notes       *string                     `json:"notes,omitempty"`
	Items       []CustomerReturnItemRequest `json:"items,omitempty"`
}

// ApplyTo applies updates onto an existing entity.
func (r *UpdateCustomerReturnRequest) ApplyTo(doc *customer_return.CustomerReturn) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.CustomerID != nil {
		customerID, _ := id.Parse(*r.CustomerID)
		doc.CustomerID = customerID
	}
	if r.WarehouseID != nil {
		warehouseID, _ := id.Parse(*r.WarehouseID)
		doc.WarehouseID = warehouseID
	}
	if r.Notes != nil {
		doc.Notes = *r.Notes
	}

	if r.Items != nil {
		items := make([]customer_return.Item, 0, len(r.Items))
		for _, item := range r.Items {
			productUnitID, _ := id.Parse(item.ProductUnitID)
			items = append(items, customer_return.Item{
				ProductUnitID: productUnitID,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
			})
		}
		doc.ReplaceItems(items)
	}
}

// CustomerReturnResponse represents a customer return in API responses.
type CustomerReturnResponse struct {
	ID              string                       `json:"id"`
	Number          string                       `json:"number"`
	Date            time.Time                    `json:"date"`
	Status          string                       `json:"status"`
	CustomerID      string                       `json:"customerId"`
	OrderID         *string                      `json:"orderId,omitempty"`
	WarehouseID     string                       `json:"warehouseId"`
	TotalRefund     types.Money                  `json:"totalRefund"`
	RejectionReason string                       `json:"rejectionReason,omitempty"`
	Notes           string                       `json:"notes,omitempty"`
	CreatedBy       *string                      `json:"createdBy,omitempty"`
	ApprovedBy      *string                      `json:"approvedBy,omitempty"`
	Items           []CustomerReturnItemResponse `json:"items,omitempty"`
	Version         int                          `json:"version"`
	CreatedAt       time.Time                    `json:"createdAt"`
	UpdatedAt       time.Time                    `json:"updatedAt"`
}

// CustomerReturnItemResponse represents a line in API responses.
type CustomerReturnItemResponse struct {
	ItemID        string      `json:"itemId"`
	LineNo        int         `json:"lineNo"`
	ProductUnitID string      `json:"productUnitId"`
	Quantity      int         `json:"quantity"`
	UnitPrice     types.Money `json:"unitPrice"`
	Amount        types.Money `json:"amount"`
}

// FromCustomerReturn converts a domain entity to the response DTO.
func FromCustomerReturn(doc *customer_return.CustomerReturn) *CustomerReturnResponse {
	resp := &CustomerReturnResponse{
		ID:              doc.ID.String(),
		Number:          doc.Number,
		Date:            doc.Date,
		Status:          string(doc.Status),
		CustomerID:      doc.CustomerID.String(),
		OrderID:         idToString(doc.OrderID),
		WarehouseID:     doc.WarehouseID.String(),
		TotalRefund:     doc.TotalRefund,
		RejectionReason: doc.RejectionReason,
		Notes:           doc.Notes,
		CreatedBy:       idToString(doc.CreatedByID),
		ApprovedBy:      idToString(doc.ApprovedByID),
		Version:         doc.Version,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}

	resp.Items = make([]CustomerReturnItemResponse, len(doc.Items))
	for i, item := range doc.Items {
		resp.Items[i] = CustomerReturnItemResponse{
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
