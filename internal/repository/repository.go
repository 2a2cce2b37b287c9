// Package repository defines the storage contracts used by the services and
// an in-memory implementation of all of them.
package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
)

var (
	ErrProductNotFound = apperr.NotFound("Product not found")
	ErrCouponNotFound  = apperr.NotFound("Coupon code doesn't exist")
	ErrOrderNotFound   = apperr.NotFound("Order not found with this id")
	ErrCartNotFound    = apperr.NotFound("Cart not found")
	ErrCartItemMissing = apperr.NotFound("Product is not in the cart")
	ErrCouponExists    = apperr.InvalidRequest("Coupon code already exists")
	ErrStockExhausted  = apperr.InvalidState("Not enough stock")
	ErrStatusConflict  = apperr.InvalidTransition("Order status changed concurrently")
)

// ProductRepository is the catalog view of products.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// FindByIDs returns the known products among ids in no particular order.
	// Unknown ids are skipped, not reported.
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	// AdjustStock adds delta to stock and subtracts it from soldOut in one
	// step. It fails with ErrStockExhausted if stock would go negative.
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)
}

// CouponRepository stores shop coupons. Names are unique.
type CouponRepository interface {
	List(ctx context.Context) ([]models.Coupon, error)
	ListByShop(ctx context.Context, shopID string) ([]models.Coupon, error)
	FindByName(ctx context.Context, name string) (*models.Coupon, error)
	FindByID(ctx context.Context, id string) (*models.Coupon, error)
	// Create fails with ErrCouponExists when the name is taken.
	Create(ctx context.Context, c *models.Coupon) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository stores orders. Lists are ordered by creation time.
type OrderRepository interface {
	Create(ctx context.Context, orders []models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByShop(ctx context.Context, shopID string) ([]models.Order, error)
	// UpdateStatus persists o only if the stored status is still from,
	// otherwise it fails with ErrStatusConflict.
	UpdateStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error
}

// CartRepository stores the single active cart of each user. Line order is
// the order in which products were first added.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	// AddItem creates the cart if needed and increments an existing line.
	AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	// SetQuantity fails with ErrCartItemMissing when the line does not exist.
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error)
	SetTotal(ctx context.Context, userID string, total decimal.Decimal) error
	// RemoveLines subtracts each line's quantity from the cart and drops
	// lines that reach zero, in one atomic step. Lines not in the cart are
	// ignored, and quantities added since the caller read the cart are kept.
	// The stored total is left for the caller to recompute.
	RemoveLines(ctx context.Context, userID string, lines []models.CartLine) (*models.Cart, error)
}

// Transactor runs fn so that every repository call made with the supplied
// context commits or rolls back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
