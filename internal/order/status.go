package order

import (
	"time"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
)

// Status only advances. Delivered and Cancelled are terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns InvalidRequest for an unknown target status
// and InvalidTransition for a no-op or disallowed move.
func ValidateTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return apperr.Newf(apperr.KindInvalidRequest, "Invalid order status %q", to)
	}
	if from == to {
		return apperr.Newf(apperr.KindInvalidTransition, "Order is already in %q", to)
	}
	if !CanTransition(from, to) {
		return apperr.Newf(apperr.KindInvalidTransition, "Cannot move order from %q to %q", from, to)
	}
	return nil
}

// ReleasesStock reports whether entering status takes the order's units out
// of stock. Only shipment does, which keeps the adjustment to once per order.
func ReleasesStock(to models.OrderStatus) bool {
	return to == models.OrderStatusShipped
}

// Apply writes the new status and its side fields onto o. It does not
// validate the move; call ValidateTransition first.
func Apply(o *models.Order, to models.OrderStatus, now time.Time) {
	o.Status = to
	o.UpdatedAt = now

	if to == models.OrderStatusDelivered {
		if o.DeliveredAt == nil {
			delivered := now
			o.DeliveredAt = &delivered
		}
		o.PaymentInfo.Status = models.PaymentStatusSucceeded
	}
}
