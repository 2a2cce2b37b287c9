package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/order"
	"github.com/shopwise/checkout/internal/pricing"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/shopwise/checkout/pkg/logger"
)

type statusChange struct {
	order models.Order
	from  models.OrderStatus
}

type recordingNotifier struct {
	mu      sync.Mutex
	placed  [][]models.Order
	changes []statusChange
	err     error
}

func (n *recordingNotifier) OrdersPlaced(ctx context.Context, orders []models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, orders)
	return n.err
}

func (n *recordingNotifier) OrderStatusChanged(ctx context.Context, o models.Order, from models.OrderStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, statusChange{order: o, from: from})
	return n.err
}

type fixture struct {
	store    *repository.MemoryStore
	carts    *repository.MemoryCartRepository
	catalog  *CatalogService
	notifier *recordingNotifier
}

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func moneyPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// newFixture seeds P1 (shop s1, 10000 discounted to 8000), P2 (shop s2,
// 5000) and P3 (shop s1, 4000, one left).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	store.SeedProducts(
		models.Product{ID: "p1", Name: "Kurta", Price: money(10000), DiscountPrice: moneyPtr(8000), Stock: 10, ShopID: "s1"},
		models.Product{ID: "p2", Name: "Saree", Price: money(5000), Stock: 5, ShopID: "s2"},
		models.Product{ID: "p3", Name: "Dupatta", Price: money(4000), Stock: 1, ShopID: "s1"},
	)
	return &fixture{
		store:    store,
		carts:    repository.NewMemoryCartRepository(),
		catalog:  NewCatalogService(store.Products(), store.Coupons()),
		notifier: &recordingNotifier{},
	}
}

func (f *fixture) checkout(mode order.SplitMode, enforceStock bool) *CheckoutService {
	return NewCheckoutService(CheckoutDeps{
		Carts:        f.carts,
		Orders:       f.store.Orders(),
		Transactor:   f.store,
		Catalog:      f.catalog,
		Engine:       pricing.NewDefaultEngine(),
		Splitter:     order.NewSplitter(mode),
		Notifier:     f.notifier,
		EnforceStock: enforceStock,
		Logger:       logger.Discard(),
	})
}

func (f *fixture) orders() *OrderService {
	return NewOrderService(f.store.Orders(), f.catalog, f.store, f.notifier, logger.Discard())
}

func (f *fixture) fillCart(t *testing.T, userID string, lines ...models.CartLine) {
	t.Helper()
	for _, l := range lines {
		if _, err := f.carts.AddItem(context.Background(), userID, l.ProductID, l.Quantity); err != nil {
			t.Fatalf("fill cart: %v", err)
		}
	}
}

func checkoutRequest() models.CheckoutRequest {
	return models.CheckoutRequest{
		ShippingAddress: &models.ShippingAddress{
			FullName: "Asha Rao", Address1: "12 MG Road", Address2: "Indiranagar",
			State: "KA", Zipcode: "560038", Country: "IN",
			PrimaryNumber: "9000000001", AlternateNumber: "9000000002",
		},
		PaymentInfo: &models.PaymentInfo{Status: "pending", Method: "card"},
	}
}
