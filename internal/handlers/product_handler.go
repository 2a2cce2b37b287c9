package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopwise/checkout/internal/models"
	"github.com/sirupsen/logrus"
)

type catalogService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	catalog catalogService
	log     *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog catalogService, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		log:     log,
	}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"products": products}, h.log)
}

// GetProduct handles GET /products/{productId}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"product": p}, h.log)
}
