package service

import (
	"context"
	"time"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/notifier"
	"github.com/shopwise/checkout/internal/order"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/sirupsen/logrus"
)

// OrderService handles order reads and the seller-driven status lifecycle
type OrderService struct {
	orders   repository.OrderRepository
	catalog  *CatalogService
	tx       repository.Transactor
	notifier notifier.Notifier
	log      *logrus.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(orders repository.OrderRepository, catalog *CatalogService, tx repository.Transactor, n notifier.Notifier, log *logrus.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		catalog:  catalog,
		tx:       tx,
		notifier: n,
		log:      log,
		now:      time.Now,
	}
}

// Get returns an order owned by userID.
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apperr.Unauthorized("You are not allowed to view this order")
	}
	return o, nil
}

// List returns all orders
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}

// ListByShop returns the orders of one shop
func (s *OrderService) ListByShop(ctx context.Context, shopID string) ([]models.Order, error) {
	return s.orders.ListByShop(ctx, shopID)
}

// UpdateStatus moves an order of shopID to status.
//
// Entering Shipped takes every line's quantity out of stock and into
// soldOut. The stock changes and the status write commit together, and the
// write only succeeds if nobody changed the status in between, so stock is
// adjusted exactly once per order.
func (s *OrderService) UpdateStatus(ctx context.Context, shopID, orderID string, status models.OrderStatus) (*models.Order, error) {
	var (
		updated models.Order
		from    models.OrderStatus
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.ShopID != shopID {
			return apperr.Unauthorized("You are not allowed to update this order")
		}
		if err := order.ValidateTransition(o.Status, status); err != nil {
			return err
		}

		from = o.Status
		if order.ReleasesStock(status) {
			for _, line := range o.Cart {
				if _, err := s.catalog.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
					return err
				}
			}
		}

		order.Apply(o, status, s.now().UTC())
		if err := s.orders.UpdateStatus(ctx, o, from); err != nil {
			return err
		}
		updated = *o
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"shop_id":  shopID,
		"from":     from,
		"to":       status,
	})
	if err := s.notifier.OrderStatusChanged(ctx, updated, from); err != nil {
		log.WithError(err).Warn("failed to publish status change")
	}
	log.Info("order status updated")

	return &updated, nil
}
