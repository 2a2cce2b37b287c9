package models

import "github.com/shopspring/decimal"

// CartLine is one product entry of a cart. A cart never holds two lines
// for the same product.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the single active cart of a user. TotalPrice is the sum of
// effective unit prices times quantities, without shipping or coupons.
type Cart struct {
	UserID     string          `json:"userId"`
	Items      []CartLine      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// CartItemRequest is the body of add-to-cart and update-quantity calls.
type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}
