package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog view of a sellable item. Prices are in minor
// currency units (paise).
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Stock         int              `json:"stock"`
	SoldOut       int              `json:"soldOut"`
	ShopID        string           `json:"shopId"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// EffectivePrice is the discount price when set and nonzero, else the
// list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && !p.DiscountPrice.IsZero() {
		return *p.DiscountPrice
	}
	return p.Price
}

// Inventory returns stock + soldOut, which shipment bookkeeping keeps constant.
func (p Product) Inventory() int {
	return p.Stock + p.SoldOut
}
