package service

import (
	"context"
	"time"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/notifier"
	"github.com/shopwise/checkout/internal/order"
	"github.com/shopwise/checkout/internal/pricing"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CheckoutDeps are the collaborators of a CheckoutService.
type CheckoutDeps struct {
	Carts        repository.CartRepository
	Orders       repository.OrderRepository
	Transactor   repository.Transactor
	Catalog      *CatalogService
	Engine       *pricing.Engine
	Splitter     *order.Splitter
	Notifier     notifier.Notifier
	EnforceStock bool
	Logger       *logrus.Logger
}

// CheckoutService turns a user's cart into one order per shop.
type CheckoutService struct {
	carts        repository.CartRepository
	orders       repository.OrderRepository
	tx           repository.Transactor
	catalog      *CatalogService
	engine       *pricing.Engine
	splitter     *order.Splitter
	notifier     notifier.Notifier
	enforceStock bool
	log          *logrus.Logger
	now          func() time.Time
}

func NewCheckoutService(d CheckoutDeps) *CheckoutService {
	return &CheckoutService{
		carts:        d.Carts,
		orders:       d.Orders,
		tx:           d.Transactor,
		catalog:      d.Catalog,
		engine:       d.Engine,
		splitter:     d.Splitter,
		notifier:     d.Notifier,
		enforceStock: d.EnforceStock,
		log:          d.Logger,
		now:          time.Now,
	}
}

// Checkout prices the persisted cart of userID, persists one order per shop
// in a single transaction and removes the checked-out lines from the cart.
//
// A supplied paid price replaces the computed total and marks the orders
// paid now. Cart cleanup and notifying happen after commit; their
// failures are logged and do not fail the checkout.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	if req.ShippingAddress == nil || req.PaymentInfo == nil {
		return nil, apperr.InvalidRequest("Shipping address and payment info are required")
	}
	if req.PaidPrice != nil && req.PaidPrice.IsNegative() {
		return nil, apperr.InvalidRequest("Paid price cannot be negative")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperr.InvalidRequest("Cart is empty")
	}

	var (
		lines []pricing.Line
		c     *models.Coupon
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = s.catalog.ResolveLines(gctx, cart.Items)
		return err
	})
	if req.CouponID != "" {
		g.Go(func() error {
			var err error
			c, err = s.catalog.FindCouponByID(gctx, req.CouponID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.enforceStock {
		if err := checkStock(lines); err != nil {
			return nil, err
		}
	}

	quote := s.engine.Price(lines, c)

	total := quote.Total
	isPaid := false
	var paidAt *time.Time
	if req.PaidPrice != nil {
		total = *req.PaidPrice
		isPaid = true
		now := s.now().UTC()
		paidAt = &now
	}

	orders := s.splitter.Split(order.Request{
		UserID:          userID,
		Lines:           lines,
		Quote:           quote,
		Total:           total,
		ShippingAddress: *req.ShippingAddress,
		PaymentInfo:     *req.PaymentInfo,
		PaidAt:          paidAt,
	})

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.orders.Create(ctx, orders)
	})
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"user_id": userID, "orders": len(orders)})

	// Only the checked-out quantities leave the cart; lines added while
	// this checkout ran stay for the next one.
	remaining, err := s.carts.RemoveLines(ctx, userID, cart.Items)
	if err == nil {
		_, err = repriceCart(ctx, s.carts, s.catalog, s.log, remaining)
	}
	if err != nil {
		log.WithError(err).Error("failed to clear cart after checkout")
	}
	if err := s.notifier.OrdersPlaced(ctx, orders); err != nil {
		log.WithError(err).Warn("failed to publish order events")
	}

	log.WithFields(logrus.Fields{
		"total_price":    total.String(),
		"coupon_applied": quote.CouponApplied,
		"is_paid":        isPaid,
	}).Info("checkout completed")

	return &models.CheckoutResult{
		Orders:     orders,
		TotalPrice: total,
		IsPaid:     isPaid,
	}, nil
}

func checkStock(lines []pricing.Line) error {
	for _, l := range lines {
		if l.Quantity > l.Product.Stock {
			return apperr.Newf(apperr.KindInvalidRequest,
				"Only %d of %s left in stock", l.Product.Stock, l.Product.Name)
		}
	}
	return nil
}
