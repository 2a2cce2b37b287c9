// Package order partitions priced carts into per-shop orders and owns the
// order status state machine.
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/pricing"
)

// SplitMode selects how the paid total is attached to split orders.
type SplitMode string

const (
	// SplitProportional gives each shop order its share of the paid total,
	// weighted by the shop's net line value.
	SplitProportional SplitMode = "proportional"
	// SplitLegacy attaches the full paid total to every shop order.
	SplitLegacy SplitMode = "legacy"
)

// Bucket holds the cart lines of one shop.
type Bucket struct {
	ShopID string
	Lines  []models.OrderLine
}

// Group buckets lines by owning shop in first-seen order. Quantities are
// carried over unchanged.
func Group(lines []pricing.Line) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)

	for _, l := range lines {
		shop := l.Product.ShopID
		idx, ok := index[shop]
		if !ok {
			idx = len(buckets)
			index[shop] = idx
			buckets = append(buckets, Bucket{ShopID: shop})
		}
		buckets[idx].Lines = append(buckets[idx].Lines, models.OrderLine{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
		})
	}

	return buckets
}

// Allocate splits total across weights. Each share is floored to whole
// minor units and the remainder goes to the first share, so the shares
// always sum to total. With no positive weight the first share takes it all.
func Allocate(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	if len(weights) == 0 {
		return shares
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}

	allocated := decimal.Zero
	for i, w := range weights {
		if !sum.IsPositive() {
			shares[i] = decimal.Zero
			continue
		}
		shares[i] = total.Mul(w).Div(sum).Floor()
		allocated = allocated.Add(shares[i])
	}

	shares[0] = shares[0].Add(total.Sub(allocated))
	return shares
}

// Request carries everything needed to turn a priced cart into orders.
type Request struct {
	UserID          string
	Lines           []pricing.Line
	Quote           pricing.Quote
	Total           decimal.Decimal
	ShippingAddress models.ShippingAddress
	PaymentInfo     models.PaymentInfo
	PaidAt          *time.Time
}

// Splitter builds one Processing order per shop.
type Splitter struct {
	mode  SplitMode
	newID func() string
	now   func() time.Time
}

// NewSplitter creates a splitter. Unknown modes fall back to proportional.
func NewSplitter(mode SplitMode) *Splitter {
	if mode != SplitLegacy {
		mode = SplitProportional
	}
	return &Splitter{
		mode:  mode,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Mode returns the active split mode.
func (s *Splitter) Mode() SplitMode {
	return s.mode
}

// Split returns the orders for req in first-seen shop order.
func (s *Splitter) Split(req Request) []models.Order {
	buckets := Group(req.Lines)
	if len(buckets) == 0 {
		return nil
	}

	totals := s.totals(buckets, req)
	now := s.now().UTC()

	orders := make([]models.Order, 0, len(buckets))
	for i, b := range buckets {
		orders = append(orders, models.Order{
			ID:              s.newID(),
			ShopID:          b.ShopID,
			UserID:          req.UserID,
			Cart:            b.Lines,
			ShippingAddress: req.ShippingAddress,
			TotalPrice:      totals[i],
			Status:          models.OrderStatusProcessing,
			PaymentInfo:     req.PaymentInfo,
			PaidAt:          req.PaidAt,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	return orders
}

func (s *Splitter) totals(buckets []Bucket, req Request) []decimal.Decimal {
	if s.mode == SplitLegacy {
		totals := make([]decimal.Decimal, len(buckets))
		for i := range totals {
			totals[i] = req.Total
		}
		return totals
	}

	net := make(map[string]decimal.Decimal, len(req.Quote.Shops))
	for _, sq := range req.Quote.Shops {
		net[sq.ShopID] = sq.Net()
	}

	weights := make([]decimal.Decimal, len(buckets))
	for i, b := range buckets {
		w, ok := net[b.ShopID]
		if !ok {
			w = decimal.Zero
		}
		weights[i] = w
	}

	return Allocate(req.Total, weights)
}
