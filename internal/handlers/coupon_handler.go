package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopwise/checkout/internal/models"
	"github.com/sirupsen/logrus"
)

type couponService interface {
	Verify(ctx context.Context, req models.VerifyCouponRequest) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	ListByShop(ctx context.Context, shopID string) ([]models.Coupon, error)
	Create(ctx context.Context, shopID string, req models.CreateCouponRequest) (*models.Coupon, error)
	Delete(ctx context.Context, shopID, couponID string) error
}

// CouponHandler handles coupon previews and seller coupon administration
type CouponHandler struct {
	coupons couponService
	log     *logrus.Logger
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(coupons couponService, log *logrus.Logger) *CouponHandler {
	return &CouponHandler{coupons: coupons, log: log}
}

// VerifyCoupon handles POST /coupons
func (h *CouponHandler) VerifyCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCouponRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	c, err := h.coupons.Verify(r.Context(), req)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"couponCode": c}, h.log)
}

// ListCoupons handles GET /coupons
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"couponCodes": coupons}, h.log)
}

// ListShopCoupons handles GET /shops/{shopId}/coupons
func (h *CouponHandler) ListShopCoupons(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopFromPath(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	coupons, err := h.coupons.ListByShop(r.Context(), shopID)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"couponCodes": coupons}, h.log)
}

// CreateCoupon handles POST /shops/{shopId}/coupons
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopFromPath(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	var req models.CreateCouponRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	c, err := h.coupons.Create(r.Context(), shopID, req)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusCreated, envelope{"couponCode": c}, h.log)
}

// DeleteCoupon handles DELETE /shops/{shopId}/coupons/{couponId}
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopFromPath(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	if err := h.coupons.Delete(r.Context(), shopID, chi.URLParam(r, "couponId")); err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"message": "Coupon code deleted successfully!"}, h.log)
}
