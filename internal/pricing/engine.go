// Package pricing computes authoritative cart totals from resolved catalog
// products: effective unit prices, the flat shipping surcharge and at most
// one shop-scoped percentage coupon.
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/coupon"
	"github.com/shopwise/checkout/internal/models"
)

// Default amounts in minor currency units.
const (
	DefaultFreeShippingThreshold = 150000
	DefaultShippingFlatFee       = 15000
)

var hundred = decimal.NewFromInt(100)

// Line is a cart line joined with its resolved product.
type Line struct {
	Product  models.Product
	Quantity int
}

// Amount is the line value at the effective unit price.
func (l Line) Amount() decimal.Decimal {
	return l.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ShopQuote is the per-shop slice of a quote, in first-seen shop order.
type ShopQuote struct {
	ShopID   string
	Subtotal decimal.Decimal
	Discount decimal.Decimal
}

// Net is the shop's line value after its coupon discount.
func (s ShopQuote) Net() decimal.Decimal {
	return s.Subtotal.Sub(s.Discount)
}

// Quote is the priced result for a set of lines.
type Quote struct {
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	CouponApplied bool
	Shops         []ShopQuote
}

// Engine prices carts. It holds no state besides its thresholds and is
// safe for concurrent use.
type Engine struct {
	freeShippingThreshold decimal.Decimal
	shippingFee           decimal.Decimal
}

// NewEngine creates an engine with the given threshold and flat fee.
func NewEngine(freeShippingThreshold, shippingFee int64) *Engine {
	return &Engine{
		freeShippingThreshold: decimal.NewFromInt(freeShippingThreshold),
		shippingFee:           decimal.NewFromInt(shippingFee),
	}
}

// NewDefaultEngine creates an engine with the standard ₹1500 threshold and ₹150 fee.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultFreeShippingThreshold, DefaultShippingFlatFee)
}

// Subtotal sums effective unit price times quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Shipping returns the flat fee when subtotal is strictly below the
// free-shipping threshold, else zero.
func (e *Engine) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(e.freeShippingThreshold) {
		return e.shippingFee
	}
	return decimal.Zero
}

// Price computes the quote for lines with an optional coupon.
//
// The coupon minimum is compared against the shipping-inclusive total. A
// coupon below its minimum is ignored, not rejected. The discount is the
// coupon percentage of the eligible subtotal, rounded to whole minor units.
func (e *Engine) Price(lines []Line, c *models.Coupon) Quote {
	q := Quote{Discount: decimal.Zero}

	shopIndex := make(map[string]int)
	for _, l := range lines {
		idx, ok := shopIndex[l.Product.ShopID]
		if !ok {
			idx = len(q.Shops)
			shopIndex[l.Product.ShopID] = idx
			q.Shops = append(q.Shops, ShopQuote{
				ShopID:   l.Product.ShopID,
				Subtotal: decimal.Zero,
				Discount: decimal.Zero,
			})
		}
		q.Shops[idx].Subtotal = q.Shops[idx].Subtotal.Add(l.Amount())
	}

	q.Subtotal = Subtotal(lines)
	q.Shipping = e.Shipping(q.Subtotal)
	q.Total = q.Subtotal.Add(q.Shipping)

	if c != nil && coupon.MeetsMinimum(c, q.Total) {
		eligible := decimal.Zero
		for _, l := range lines {
			if coupon.Applies(c, l.Product) {
				eligible = eligible.Add(l.Amount())
			}
		}

		// No eligible line means nothing to apply the coupon to.
		if eligible.IsPositive() {
			q.Discount = eligible.Mul(c.Value).Div(hundred).Round(0)
			q.Total = q.Total.Sub(q.Discount)
			q.CouponApplied = true

			if idx, ok := shopIndex[c.ShopID]; ok {
				q.Shops[idx].Discount = q.Discount
			}
		}
	}

	if q.Total.IsNegative() {
		q.Total = decimal.Zero
	}

	return q
}
