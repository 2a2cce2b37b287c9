package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a percentage discount issued by a shop.
type Coupon struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Value           decimal.Decimal  `json:"value"`
	MinAmount       *decimal.Decimal `json:"minAmount,omitempty"`
	SelectedProduct string           `json:"selectedProduct,omitempty"`
	ShopID          string           `json:"shopId"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// CreateCouponRequest is the body of a seller's coupon creation call.
type CreateCouponRequest struct {
	Name            string           `json:"name" validate:"required"`
	Value           decimal.Decimal  `json:"value"`
	MinAmount       *decimal.Decimal `json:"minAmount,omitempty"`
	SelectedProduct string           `json:"selectedProduct,omitempty"`
}

// VerifyCouponRequest previews a coupon against a caller-supplied bill.
type VerifyCouponRequest struct {
	CouponCode string          `json:"couponCode" validate:"required"`
	TotalBill  decimal.Decimal `json:"totalBill"`
}
