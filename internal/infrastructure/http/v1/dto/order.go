package dto

import (
	"time"

	"agroshop/internal/core/id"
	"agroshop/internal/core/types"
	"agroshop/internal/domain/orders"
)

// CreateOrderRequest represents a checkout request. Money totals are never
// taken from the client; everything is recomputed from items server-side.
type CreateOrderRequest struct {
	Date            *time.Time         `json:"date,omitempty"`
	CouponCode      string             `json:"couponCode,omitempty"`
	DeliveryName    string             `json:"deliveryName,omitempty"`
	DeliveryPhone   string             `json:"deliveryPhone,omitempty"`
	DeliveryAddress string             `json:"deliveryAddress,omitempty"`
	PaymentMethodID *string            `json:"paymentMethodId,omitempty"`
	PaymentTerm     string             `json:"paymentTerm,omitempty"`
	IsOnline        bool               `json:"isOnline,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest represents an order line in the checkout request.
type OrderItemRequest struct {
	ProductUnitID  string      `json:"productUnitId" binding:"required,uuid"`
	Quantity       int         `json:"quantity" binding:"required,gt=0"`
	Price          types.Money `json:"price"`
	DiscountAmount types.Money `json:"discountAmount"`
	VatRate        types.Money `json:"vatRate"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateOrderRequest) ToEntity() *orders.Order {
	order := orders.New()
	if r.Date != nil {
		order.Date = *r.Date
	}
	order.DeliveryName = r.DeliveryName
	order.DeliveryPhone = r.DeliveryPhone
	order.DeliveryAddress = r.DeliveryAddress
	order.PaymentTerm = r.PaymentTerm
	order.IsOnline = r.IsOnline
	order.Notes = r.Notes

	if r.PaymentMethodID != nil {
		if paymentMethodID, err := id.Parse(*r.PaymentMethodID); err == nil {
			order.PaymentMethodID = &paymentMethodID
		}
	}

	for _, item := range r.Items {
		productUnitID, _ := id.Parse(item.ProductUnitID)
		order.AddItem(productUnitID, item.Quantity, item.Price, item.DiscountAmount, item.VatRate)
	}
	return order
}

// UpdateOrderStatusRequest moves an order along its lifecycle. Status and
// notes are the only mutable order fields after creation.
type UpdateOrderStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNo         string              `json:"orderNo"`
	Date            time.Time           `json:"date"`
	Status          string              `json:"status"`
	BuyerID         *string             `json:"buyerId,omitempty"`
	DeliveryName    string              `json:"deliveryName"`
	DeliveryPhone   string              `json:"deliveryPhone"`
	DeliveryAddress string              `json:"deliveryAddress"`
	TotalAmount     types.Money         `json:"totalAmount"`
	TotalVat        types.Money         `json:"totalVat"`
	DiscountTotal   types.Money         `json:"discountTotal"`
	TotalPay        types.Money         `json:"totalPay"`
	CouponID        *string             `json:"couponId,omitempty"`
	PaymentMethodID *string             `json:"paymentMethodId,omitempty"`
	PaymentTerm     string              `json:"paymentTerm,omitempty"`
	IsOnline        bool                `json:"isOnline"`
	Notes           string              `json:"notes,omitempty"`
	Items           []OrderItemResponse `json:"items,omitempty"`
	Version         int                 `json:"version"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// OrderItemResponse represents an order line in API responses.
type OrderItemResponse struct {
	ItemID         string      `json:"itemId"`
	LineNo         int         `json:"lineNo"`
	ProductUnitID  string      `json:"productUnitId"`
	Quantity       int         `json:"quantity"`
	Price          types.Money `json:"price"`
	DiscountAmount types.Money `json:"discountAmount"`
	VatRate        types.Money `json:"vatRate"`
	VatAmount      types.Money `json:"vatAmount"`
	Amount         types.Money `json:"amount"`
}

// FromOrder converts a domain entity to the response DTO.
func FromOrder(order *orders.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:              order.ID.String(),
		OrderNo:         order.OrderNo,
		Date:            order.Date,
		Status:          string(order.Status),
		BuyerID:         idToString(order.BuyerID),
		DeliveryName:    order.DeliveryName,
		DeliveryPhone:   order.DeliveryPhone,
		DeliveryAddress: order.DeliveryAddress,
		TotalAmount:     order.TotalAmount,
		TotalVat:        order.TotalVat,
		DiscountTotal:   order.DiscountTotal,
		TotalPay:        order.TotalPay,
		CouponID:        idToString(order.CouponID),
		PaymentMethodID: idToString(order.PaymentMethodID),
		PaymentTerm:     order.PaymentTerm,
		IsOnline:        order.IsOnline,
		Notes:           order.Notes,
		Version:         order.Version,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}

	resp.Items = make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		resp.Items[i] = OrderItemResponse{
			ItemID:         item.ItemID.String(),
			LineNo:         item.LineNo,
			ProductUnitID:  item.ProductUnitID.String(),
			Quantity:       item.Quantity,
			Price:          item.Price,
			DiscountAmount: item.DiscountAmount,
			VatRate:        item.VatRate,
			VatAmount:      item.VatAmount,
			Amount:         item.Amount,
		}
	}
	return resp
}
