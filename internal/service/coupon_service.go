package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/coupon"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/sirupsen/logrus"
)

// CouponService handles coupon previews and seller coupon administration.
type CouponService struct {
	coupons repository.CouponRepository
	catalog *CatalogService
	log     *logrus.Logger
	now     func() time.Time
}

// NewCouponService creates a new coupon service
func NewCouponService(coupons repository.CouponRepository, catalog *CatalogService, log *logrus.Logger) *CouponService {
	return &CouponService{coupons: coupons, catalog: catalog, log: log, now: time.Now}
}

// Verify previews a coupon against a caller-supplied bill. It does not look
// at the caller's cart; checkout always recomputes the discount.
func (s *CouponService) Verify(ctx context.Context, req models.VerifyCouponRequest) (*models.Coupon, error) {
	code := coupon.NormalizeCode(req.CouponCode)
	if code == "" {
		return nil, apperr.InvalidRequest("Coupon code is required")
	}

	c, err := s.catalog.FindCouponByName(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := coupon.Verify(c, req.TotalBill); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.List(ctx)
}

func (s *CouponService) ListByShop(ctx context.Context, shopID string) ([]models.Coupon, error) {
	return s.coupons.ListByShop(ctx, shopID)
}

// Create issues a coupon for shopID. A selected product must belong to the shop.
func (s *CouponService) Create(ctx context.Context, shopID string, req models.CreateCouponRequest) (*models.Coupon, error) {
	if err := coupon.ValidateNew(req); err != nil {
		return nil, err
	}

	if err := s.checkSelectedProduct(ctx, shopID, req.SelectedProduct); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &models.Coupon{
		ID:              uuid.NewString(),
		Name:            coupon.NormalizeCode(req.Name),
		Value:           req.Value,
		MinAmount:       req.MinAmount,
		SelectedProduct: req.SelectedProduct,
		ShopID:          shopID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"coupon_id": c.ID, "shop_id": shopID, "name": c.Name}).Info("coupon created")
	return c, nil
}

// Delete removes a coupon issued by shopID.
func (s *CouponService) Delete(ctx context.Context, shopID, couponID string) error {
	c, err := s.coupons.FindByID(ctx, couponID)
	if err != nil {
		return err
	}
	if c.ShopID != shopID {
		return apperr.Unauthorized("You are not allowed to delete this coupon")
	}
	return s.coupons.Delete(ctx, couponID)
}

func (s *CouponService) checkSelectedProduct(ctx context.Context, shopID, productID string) error {
	if productID == "" {
		return nil
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.ShopID != shopID {
		return apperr.InvalidRequest("Selected product does not belong to this shop")
	}
	return nil
}

// Import stores coupons, skipping names that already exist. It returns
// the number stored.
func (s *CouponService) Import(ctx context.Context, coupons []models.Coupon) (int, error) {
	stored := 0
	for i := range coupons {
		c := coupons[i]
		if err := coupon.ValidateNew(models.CreateCouponRequest{Name: c.Name, Value: c.Value, MinAmount: c.MinAmount}); err != nil {
			return stored, err
		}
		if err := s.checkSelectedProduct(ctx, c.ShopID, c.SelectedProduct); err != nil {
			return stored, fmt.Errorf("coupon %s: %w", c.Name, err)
		}
		now := s.now().UTC()
		if c.CreatedAt.IsZero() {
			c.CreatedAt, c.UpdatedAt = now, now
		}

		err := s.coupons.Create(ctx, &c)
		if errors.Is(err, repository.ErrCouponExists) {
			s.log.WithField("name", c.Name).Debug("coupon already exists, skipping")
			continue
		}
		if err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}
