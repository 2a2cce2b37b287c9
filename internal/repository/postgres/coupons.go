package postgres

import (
	"context"
	"errors"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/repository"
	"gorm.io/gorm"
)

// CouponRepository implements repository.CouponRepository.
type CouponRepository struct {
	store *Store
}

func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	return r.find(ctx, r.store.conn(ctx))
}

func (r *CouponRepository) ListByShop(ctx context.Context, shopID string) ([]models.Coupon, error) {
	return r.find(ctx, r.store.conn(ctx).Where("shop_id = ?", shopID))
}

func (r *CouponRepository) find(ctx context.Context, q *gorm.DB) ([]models.Coupon, error) {
	var records []couponRecord
	if err := q.Order("created_at, id").Find(&records).Error; err != nil {
		return nil, apperr.Internal("Failed to list coupons", err)
	}
	coupons := make([]models.Coupon, 0, len(records))
	for _, rec := range records {
		coupons = append(coupons, rec.toModel())
	}
	return coupons, nil
}

func (r *CouponRepository) FindByName(ctx context.Context, name string) (*models.Coupon, error) {
	var rec couponRecord
	err := r.store.conn(ctx).Where("name = ?", name).First(&rec).Error
	if err != nil {
		return nil, translate(err, repository.ErrCouponNotFound, "Failed to load coupon")
	}
	c := rec.toModel()
	return &c, nil
}

func (r *CouponRepository) FindByID(ctx context.Context, id string) (*models.Coupon, error) {
	var rec couponRecord
	err := r.store.conn(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		return nil, translate(err, repository.ErrCouponNotFound, "Failed to load coupon")
	}
	c := rec.toModel()
	return &c, nil
}

func (r *CouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	rec := toCouponRecord(*c)
	err := r.store.conn(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrCouponExists
	}
	if err != nil {
		return apperr.Internal("Failed to create coupon", err)
	}
	c.CreatedAt, c.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	res := r.store.conn(ctx).Where("id = ?", id).Delete(&couponRecord{})
	if res.Error != nil {
		return apperr.Internal("Failed to delete coupon", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrCouponNotFound
	}
	return nil
}
