// Package orders provides the sales order and its lifecycle.
package orders

import (
	"context"
	"strings"
	"time"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/core/types"
)

// Status is an order lifecycle state. Orders have their own machine,
// separate from warehouse documents.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the order state machine: COMPLETED and CANCELLED are
// terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal order status change.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known order status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is a sales order, placed either by an authenticated buyer or a
// guest providing delivery contact details.
type Order struct {
	entity.BaseDocument

	// OrderNo is issued by the identifier generator inside the creating
	// transaction, e.g. ORD-2026-00123. Immutable afterwards.
	OrderNo string `db:"order_no" json:"orderNo"`

	// Date is the business date of the order
	Date time.Time `db:"date" json:"date"`

	// Status drives the order lifecycle
	Status Status `db:"status" json:"status"`

	// BuyerID is nil for guest checkouts
	BuyerID *id.ID `db:"buyer_id" json:"buyerId,omitempty"`

	// Delivery contact; mandatory for guests, defaulted from the buyer
	// profile otherwise
	DeliveryName    string `db:"delivery_name" json:"deliveryName"`
	DeliveryPhone   string `db:"delivery_phone" json:"deliveryPhone"`
	DeliveryAddress string `db:"delivery_address" json:"deliveryAddress"`

	// Totals are always recomputed server-side from items. Prices are
	// VAT-inclusive, so TotalVat is a breakdown of TotalAmount, not an
	// addition to it.
	TotalAmount   types.Money `db:"total_amount" json:"totalAmount"`
	TotalVat      types.Money `db:"total_vat" json:"totalVat"`
	DiscountTotal types.Money `db:"discount_total" json:"discountTotal"`
	// TotalPay = TotalAmount - DiscountTotal
	TotalPay types.Money `db:"total_pay" json:"totalPay"`

	// CouponID is set when a coupon was applied at checkout
	CouponID *id.ID `db:"coupon_id" json:"couponId,omitempty"`

	// Payment reference data, carried as-is
	PaymentMethodID *id.ID `db:"payment_method_id" json:"paymentMethodId,omitempty"`
	PaymentTerm     string `db:"payment_term" json:"paymentTerm,omitempty"`

	// IsOnline flags orders placed through the storefront
	IsOnline bool `db:"is_online" json:"isOnline"`

	Notes string `db:"notes" json:"notes,omitempty"`

	// Items is the owned line collection
	Items []Item `db:"-" json:"items"`
}

// Item is a single order line.
type Item struct {
	ItemID        id.ID       `db:"item_id" json:"itemId"`
	LineNo        int         `db:"line_no" json:"lineNo"`
	ProductUnitID id.ID       `db:"product_unit_id" json:"productUnitId"`
	Quantity      int         `db:"quantity" json:"quantity"`
	Price         types.Money `db:"price" json:"price"`
	// DiscountAmount is a per-line markdown subtracted from Quantity*Price
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	// VatRate is a percentage, e.g. 8 for 8%. VatAmount is the VAT portion
	// contained in Amount, since prices are VAT-inclusive.
	VatRate   types.Money `db:"vat_rate" json:"vatRate"`
	VatAmount types.Money `db:"vat_amount" json:"vatAmount"`
	Amount    types.Money `db:"amount" json:"amount"`
}

// New creates an order in PENDING.
func New() *Order {
	return &Order{
		BaseDocument:  entity.NewBaseDocument(),
		Date:          time.Now().UTC(),
		Status:        StatusPending,
		TotalAmount:   types.Zero(),
		TotalVat:      types.Zero(),
		DiscountTotal: types.Zero(),
		TotalPay:      types.Zero(),
		Items:         make([]Item, 0),
	}
}

// AddItem appends a line, computing its amount and included VAT, and
// recalculates totals. The line amount is Quantity*Price minus the optional
// per-line discount.
func (o *Order) AddItem(productUnitID id.ID, quantity int, price, discountAmount, vatRate types.Money) {
	amount := price.Mul(types.NewMoneyFromInt(int64(quantity))).Sub(discountAmount)
	vatAmount := amount.Mul(vatRate).Div(types.Hundred.Add(vatRate))
	o.Items = append(o.Items, Item{
		ItemID:         id.New(),
		LineNo:         len(o.Items) + 1,
		ProductUnitID:  productUnitID,
		Quantity:       quantity,
		Price:          price,
		DiscountAmount: discountAmount,
		VatRate:        vatRate,
		VatAmount:      vatAmount,
		Amount:         amount,
	})
	o.RecalculateTotals()
}

// RecalculateTotals rebuilds TotalAmount, TotalVat and TotalPay from items.
// DiscountTotal is left alone; ApplyDiscount owns it.
func (o *Order) RecalculateTotals() {
	total := types.Zero()
	vat := types.Zero()
	for _, it := range o.Items {
		total = total.Add(it.Amount)
		vat = vat.Add(it.VatAmount)
	}
	o.TotalAmount = total
	o.TotalVat = vat
	o.TotalPay = total.Sub(o.DiscountTotal)
}

// ApplyDiscount records a coupon discount and refreshes TotalPay.
func (o *Order) ApplyDiscount(couponID id.ID, discount types.Money) {
	o.CouponID = &couponID
	o.DiscountTotal = discount
	o.TotalPay = o.TotalAmount.Sub(discount)
}

// IsGuest reports whether the order was placed without an account.
func (o *Order) IsGuest() bool {
	return o.BuyerID == nil
}

// Validate implements entity.Validatable. Guest orders must carry full
// delivery contact details.
func (o *Order) Validate(ctx context.Context) error {
	if o.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, it := range o.Items {
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
		if it.Price.IsNegative() {
			return apperror.NewValidation("price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.DiscountAmount.IsNegative() {
			return apperror.NewValidation("line discount must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.Amount.IsNegative() {
			return apperror.NewValidation("line discount must not exceed the line total").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	if o.IsGuest() {
		if strings.TrimSpace(o.DeliveryName) == "" {
			return apperror.NewValidation("delivery name is required for guest orders").
				WithDetail("field", "deliveryName")
		}
		if strings.TrimSpace(o.DeliveryPhone) == "" {
			return apperror.NewValidation("delivery phone is required for guest orders").
				WithDetail("field", "deliveryPhone")
		}
		if strings.TrimSpace(o.DeliveryAddress) == "" {
			return apperror.NewValidation("delivery address is required for guest orders").
				WithDetail("field", "deliveryAddress")
		}
	}

	return nil
}
