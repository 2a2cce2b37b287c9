package postgres

import (
	"context"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository implements repository.OrderRepository.
type OrderRepository struct {
	store *Store
}

// Create inserts all orders in one statement.
func (r *OrderRepository) Create(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	records := make([]orderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, toOrderRecord(o))
	}
	if err := r.store.conn(ctx).Create(&records).Error; err != nil {
		return apperr.Internal("Failed to create orders", err)
	}
	return nil
}

// GetByID loads an order. Inside a transaction the row is locked until
// commit so a concurrent status update waits rather than racing.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	q := r.store.conn(ctx)
	if inTransaction(ctx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rec orderRecord
	if err := q.Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err, repository.ErrOrderNotFound, "Failed to load order")
	}
	o := rec.toModel()
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	return r.find(r.store.conn(ctx))
}

func (r *OrderRepository) ListByShop(ctx context.Context, shopID string) ([]models.Order, error) {
	return r.find(r.store.conn(ctx).Where("shop_id = ?", shopID))
}

func (r *OrderRepository) find(q *gorm.DB) ([]models.Order, error) {
	var records []orderRecord
	if err := q.Order("created_at, id").Find(&records).Error; err != nil {
		return nil, apperr.Internal("Failed to list orders", err)
	}
	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, rec.toModel())
	}
	return orders, nil
}

// UpdateStatus writes the status-driven fields guarded by the previous status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error {
	rec := toOrderRecord(*o)
	res := r.store.conn(ctx).Model(&rec).
		Where("order_status = ?", string(from)).
		Select("order_status", "payment_info", "delivered_at", "updated_at").
		Updates(&rec)
	if res.Error != nil {
		return apperr.Internal("Failed to update order", res.Error)
	}

	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, o.ID); err != nil {
			return err
		}
		return repository.ErrStatusConflict
	}
	return nil
}
