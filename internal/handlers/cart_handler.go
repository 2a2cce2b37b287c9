package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopwise/checkout/internal/models"
	"github.com/sirupsen/logrus"
)

type cartService interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID string, req models.CartItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID string, req models.CartItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error)
}

// CartHandler serves the caller's cart.
type CartHandler struct {
	carts cartService
	log   *logrus.Logger
}

func NewCartHandler(carts cartService, log *logrus.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	cart, err := h.carts.Get(r.Context(), p.ID)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"cart": cart}, h.log)
}

// AddItem handles POST /cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.carts.AddItem)
}

// UpdateQuantity handles PUT /cart/update-quantity
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.carts.UpdateQuantity)
}

// RemoveItem handles DELETE /cart/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), p.ID, chi.URLParam(r, "productId"))
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"cart": cart}, h.log)
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request,
	op func(context.Context, string, models.CartItemRequest) (*models.Cart, error)) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	var req models.CartItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	cart, err := op(r.Context(), p.ID, req)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"cart": cart}, h.log)
}
