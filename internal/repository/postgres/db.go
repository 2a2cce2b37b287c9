// Package postgres stores products, coupons and orders in PostgreSQL
// through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Open connects to dsn. Driver errors are translated so duplicate keys
// surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema. It is idempotent.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&productRecord{}, &couponRecord{}, &orderRecord{})
}

type txKey struct{}

// Store groups the repositories sharing one connection pool.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithinTransaction runs fn in a database transaction. Repository calls that
// receive the context passed to fn join that transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or the pool.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

func inTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// SeedProducts inserts products that do not exist yet.
func (s *Store) SeedProducts(ctx context.Context, products ...models.Product) error {
	if len(products) == 0 {
		return nil
	}
	records := make([]productRecord, 0, len(products))
	for _, p := range products {
		records = append(records, toProductRecord(p))
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
	if err != nil {
		return apperr.Internal("Failed to seed products", err)
	}
	return nil
}

// Products returns the product repository.
func (s *Store) Products() *ProductRepository { return &ProductRepository{store: s} }

// Coupons returns the coupon repository.
func (s *Store) Coupons() *CouponRepository { return &CouponRepository{store: s} }

// Orders returns the order repository.
func (s *Store) Orders() *OrderRepository { return &OrderRepository{store: s} }

// translate maps gorm errors onto the repository's typed errors.
func translate(err error, notFound error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperr.Internal(action, err)
}

var (
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.CouponRepository  = (*CouponRepository)(nil)
	_ repository.OrderRepository   = (*OrderRepository)(nil)
	_ repository.Transactor        = (*Store)(nil)
)
