package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopwise/checkout/internal/models"
	"github.com/sirupsen/logrus"
)

type checkoutService interface {
	Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CheckoutResult, error)
}

type orderService interface {
	Get(ctx context.Context, userID, orderID string) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByShop(ctx context.Context, shopID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, shopID, orderID string, status models.OrderStatus) (*models.Order, error)
}

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	checkout checkoutService
	orders   orderService
	log      *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(checkout checkoutService, orders orderService, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		orders:   orders,
		log:      log,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	var req models.CheckoutRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	res, err := h.checkout.Checkout(r.Context(), p.ID, req)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	WriteSuccess(w, http.StatusCreated, envelope{
		"orders":     res.Orders,
		"totalPrice": res.TotalPrice,
		"isPaid":     res.IsPaid,
	}, h.log)
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"orders": orders}, h.log)
}

// GetOrder handles GET /orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	o, err := h.orders.Get(r.Context(), p.ID, chi.URLParam(r, "orderId"))
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"order": o}, h.log)
}

// ListShopOrders handles GET /shops/{shopId}/orders
func (h *OrderHandler) ListShopOrders(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopFromPath(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	orders, err := h.orders.ListByShop(r.Context(), shopID)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"orders": orders}, h.log)
}

// UpdateOrderStatus handles PUT /shops/{shopId}/orders/{orderId}
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopFromPath(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), shopID, chi.URLParam(r, "orderId"), req.OrderStatus)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"order": o}, h.log)
}
