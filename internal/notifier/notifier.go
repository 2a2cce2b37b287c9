// Package notifier publishes order lifecycle events.
package notifier

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/models"
	"github.com/sirupsen/logrus"
)

// Event types.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Notifier is told about persisted orders. Callers log failures and never
// roll back on them.
type Notifier interface {
	OrdersPlaced(ctx context.Context, orders []models.Order) error
	OrderStatusChanged(ctx context.Context, o models.Order, from models.OrderStatus) error
}

// Event is the payload published for each order.
type Event struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"orderId"`
	ShopID     string             `json:"shopId"`
	UserID     string             `json:"userId"`
	Status     models.OrderStatus `json:"orderStatus"`
	FromStatus models.OrderStatus `json:"fromStatus,omitempty"`
	TotalPrice decimal.Decimal    `json:"totalPrice"`
	Lines      []models.OrderLine `json:"cart"`
	OccurredAt time.Time          `json:"occurredAt"`
}

func newEvent(eventType string, o models.Order, from models.OrderStatus, at time.Time) Event {
	return Event{
		Type:       eventType,
		OrderID:    o.ID,
		ShopID:     o.ShopID,
		UserID:     o.UserID,
		Status:     o.Status,
		FromStatus: from,
		TotalPrice: o.TotalPrice,
		Lines:      o.Cart,
		OccurredAt: at,
	}
}

// LogNotifier writes events to the application log.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) OrdersPlaced(ctx context.Context, orders []models.Order) error {
	for _, o := range orders {
		n.logger.WithFields(logrus.Fields{
			"event":       EventOrderCreated,
			"order_id":    o.ID,
			"shop_id":     o.ShopID,
			"user_id":     o.UserID,
			"total_price": o.TotalPrice.String(),
		}).Info("order placed")
	}
	return nil
}

func (n *LogNotifier) OrderStatusChanged(ctx context.Context, o models.Order, from models.OrderStatus) error {
	n.logger.WithFields(logrus.Fields{
		"event":    EventOrderStatusChanged,
		"order_id": o.ID,
		"shop_id":  o.ShopID,
		"from":     from,
		"to":       o.Status,
	}).Info("order status changed")
	return nil
}
