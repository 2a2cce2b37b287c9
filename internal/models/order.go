package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentStatusSucceeded is written to the payment info on delivery.
const PaymentStatusSucceeded = "succeeded"

// OrderLine is a product and quantity recorded on an order.
type OrderLine struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type ShippingAddress struct {
	FullName        string `json:"fullname" validate:"required"`
	Address1        string `json:"address1" validate:"required"`
	Address2        string `json:"address2" validate:"required"`
	Address3        string `json:"address3,omitempty"`
	State           string `json:"state" validate:"required"`
	Zipcode         string `json:"zipcode" validate:"required"`
	Country         string `json:"country" validate:"required"`
	PrimaryNumber   string `json:"primaryNumber" validate:"required"`
	AlternateNumber string `json:"alternateNumber" validate:"required"`
}

type PaymentInfo struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status" validate:"required"`
	Method string `json:"paymentMethod" validate:"required"`
}

// Order is the immutable financial record of one shop's share of a
// checkout. Only status-driven fields change after creation.
type Order struct {
	ID              string          `json:"id"`
	ShopID          string          `json:"shop"`
	UserID          string          `json:"user"`
	Cart            []OrderLine     `json:"cart"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          OrderStatus     `json:"orderStatus"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
	PaidAt          *time.Time      `json:"paidAt"`
	DeliveredAt     *time.Time      `json:"deliveredAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CheckoutRequest is the body of POST /orders. The cart itself is read
// from the caller's persisted cart.
type CheckoutRequest struct {
	ShippingAddress *ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentInfo     *PaymentInfo     `json:"paymentInfo" validate:"required"`
	PaidPrice       *decimal.Decimal `json:"paidPrice,omitempty"`
	CouponID        string           `json:"couponId,omitempty"`
}

// CheckoutResult is returned by a successful checkout.
type CheckoutResult struct {
	Orders     []Order         `json:"orders"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	IsPaid     bool            `json:"isPaid"`
}

// UpdateOrderStatusRequest is the body of the seller status update call.
type UpdateOrderStatusRequest struct {
	OrderStatus OrderStatus `json:"orderStatus" validate:"required"`
}
