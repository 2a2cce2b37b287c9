package postgres

import (
	"context"
	"time"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/repository"
	"gorm.io/gorm"
)

// ProductRepository implements repository.ProductRepository.
type ProductRepository struct {
	store *Store
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var records []productRecord
	if err := r.store.conn(ctx).Order("created_at, id").Find(&records).Error; err != nil {
		return nil, apperr.Internal("Failed to list products", err)
	}
	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toModel())
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var rec productRecord
	err := r.store.conn(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		return nil, translate(err, repository.ErrProductNotFound, "Failed to load product")
	}
	p := rec.toModel()
	return &p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var records []productRecord
	if err := r.store.conn(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, apperr.Internal("Failed to load products", err)
	}
	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toModel())
	}
	return products, nil
}

// AdjustStock applies delta in a single guarded UPDATE so concurrent
// shipments cannot push stock below zero or break stock+soldOut.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	res := r.store.conn(ctx).Model(&productRecord{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"sold_out":   gorm.Expr("sold_out - ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, apperr.Internal("Failed to update stock", res.Error)
	}

	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, repository.ErrStockExhausted
	}

	return r.GetByID(ctx, id)
}
