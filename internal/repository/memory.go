package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
)

// MemoryStore keeps products, coupons and orders in process memory. Each
// call is atomic under a single lock; WithinTransaction additionally
// serializes transactions and undoes their writes when fn fails.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products     map[string]models.Product
	productOrder []string
	coupons      map[string]models.Coupon
	couponOrder  []string
	orders       map[string]models.Order
	orderOrder   []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]models.Product),
		coupons:  make(map[string]models.Coupon),
		orders:   make(map[string]models.Order),
	}
}

// NewSeededMemoryStore creates a store holding the demo catalog.
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.SeedProducts(SeedProducts(time.Now().UTC())...)
	return s
}

// SeedProducts returns a demo catalog spread over two shops. Prices are in paise.
func SeedProducts(now time.Time) []models.Product {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	discount := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	products := []models.Product{
		{ID: "1", Name: "Chicken Waffle", Category: "Waffle", Price: price(129900), DiscountPrice: discount(109900), Stock: 40, ShopID: "shop-1"},
		{ID: "2", Name: "Belgian Waffle", Category: "Waffle", Price: price(109900), Stock: 40, ShopID: "shop-1"},
		{ID: "3", Name: "Chocolate Waffle", Category: "Waffle", Price: price(119900), DiscountPrice: discount(99900), Stock: 25, ShopID: "shop-1"},
		{ID: "4", Name: "Caesar Salad", Category: "Salad", Price: price(89900), Stock: 30, ShopID: "shop-1"},
		{ID: "5", Name: "Greek Salad", Category: "Salad", Price: price(94900), Stock: 30, ShopID: "shop-1"},
		{ID: "6", Name: "Garden Salad", Category: "Salad", Price: price(79900), Stock: 30, ShopID: "shop-2"},
		{ID: "7", Name: "Margherita Pizza", Category: "Pizza", Price: price(149900), Stock: 20, ShopID: "shop-2"},
		{ID: "8", Name: "Pepperoni Pizza", Category: "Pizza", Price: price(169900), DiscountPrice: discount(149900), Stock: 20, ShopID: "shop-2"},
		{ID: "9", Name: "Veggie Pizza", Category: "Pizza", Price: price(154900), Stock: 20, ShopID: "shop-2"},
		{ID: "10", Name: "Classic Burger", Category: "Burger", Price: price(139900), Stock: 50, ShopID: "shop-2"},
	}
	for i := range products {
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
	}
	return products
}

// SeedProducts inserts or replaces products.
func (s *MemoryStore) SeedProducts(products ...models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		if _, ok := s.products[p.ID]; !ok {
			s.productOrder = append(s.productOrder, p.ID)
		}
		s.products[p.ID] = p
	}
}

// Products returns the product repository view of the store.
func (s *MemoryStore) Products() *MemoryProductRepository {
	return &MemoryProductRepository{store: s}
}

// Coupons returns the coupon repository view of the store.
func (s *MemoryStore) Coupons() *MemoryCouponRepository {
	return &MemoryCouponRepository{store: s}
}

// Orders returns the order repository view of the store.
func (s *MemoryStore) Orders() *MemoryOrderRepository {
	return &MemoryOrderRepository{store: s}
}

type memoryTxKey struct{}

// memoryTx collects compensating actions for the writes made inside one
// WithinTransaction call. Undo funcs run with the store lock held.
type memoryTx struct {
	store *MemoryStore
	undo  []func()
}

// WithinTransaction implements Transactor. Transactions are serialized and a
// failed fn reverses only the writes it made; writes made outside the
// transaction are never undone. A nested call joins the outer one.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok && tx.store == s {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(context.WithValue(ctx, memoryTxKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// onRollback registers undo for the transaction carried by ctx, if any.
// Callers hold s.mu.
func (s *MemoryStore) onRollback(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok && tx.store == s {
		tx.undo = append(tx.undo, undo)
	}
}

func cloneOrder(o models.Order) models.Order {
	o.Cart = append([]models.OrderLine(nil), o.Cart...)
	return o
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

// MemoryProductRepository implements ProductRepository on a MemoryStore.
type MemoryProductRepository struct {
	store *MemoryStore
}

func (r *MemoryProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]models.Product, 0, len(r.store.productOrder))
	for _, id := range r.store.productOrder {
		products = append(products, r.store.products[id])
	}
	return products, nil
}

func (r *MemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, exists := r.store.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

func (r *MemoryProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.store.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *MemoryProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, exists := r.store.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	if product.Stock+delta < 0 {
		return nil, ErrStockExhausted
	}

	product.Stock += delta
	product.SoldOut -= delta
	product.UpdatedAt = time.Now().UTC()
	r.store.products[id] = product

	// Reverse by delta so stock moved by other callers in the meantime stays.
	r.store.onRollback(ctx, func() {
		if p, ok := r.store.products[id]; ok {
			p.Stock -= delta
			p.SoldOut += delta
			r.store.products[id] = p
		}
	})
	return &product, nil
}

// MemoryCouponRepository implements CouponRepository on a MemoryStore.
type MemoryCouponRepository struct {
	store *MemoryStore
}

func (r *MemoryCouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	coupons := make([]models.Coupon, 0, len(r.store.couponOrder))
	for _, id := range r.store.couponOrder {
		coupons = append(coupons, r.store.coupons[id])
	}
	return coupons, nil
}

func (r *MemoryCouponRepository) ListByShop(ctx context.Context, shopID string) ([]models.Coupon, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	coupons := make([]models.Coupon, 0)
	for _, id := range r.store.couponOrder {
		if c := r.store.coupons[id]; c.ShopID == shopID {
			coupons = append(coupons, c)
		}
	}
	return coupons, nil
}

func (r *MemoryCouponRepository) FindByName(ctx context.Context, name string) (*models.Coupon, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.coupons {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, ErrCouponNotFound
}

func (r *MemoryCouponRepository) FindByID(ctx context.Context, id string) (*models.Coupon, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, exists := r.store.coupons[id]
	if !exists {
		return nil, ErrCouponNotFound
	}
	return &c, nil
}

func (r *MemoryCouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.coupons {
		if existing.Name == c.Name {
			return ErrCouponExists
		}
	}
	id := c.ID
	prev, existed := r.store.coupons[id]
	if !existed {
		r.store.couponOrder = append(r.store.couponOrder, c.ID)
	}
	r.store.coupons[c.ID] = *c

	r.store.onRollback(ctx, func() {
		if existed {
			r.store.coupons[prev.ID] = prev
			return
		}
		delete(r.store.coupons, id)
		r.store.couponOrder = removeID(r.store.couponOrder, id)
	})
	return nil
}

func (r *MemoryCouponRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prev, exists := r.store.coupons[id]
	if !exists {
		return ErrCouponNotFound
	}
	delete(r.store.coupons, id)
	r.store.couponOrder = removeID(r.store.couponOrder, id)

	r.store.onRollback(ctx, func() {
		r.store.coupons[id] = prev
		r.store.couponOrder = append(r.store.couponOrder, id)
	})
	return nil
}

// MemoryOrderRepository implements OrderRepository on a MemoryStore.
type MemoryOrderRepository struct {
	store *MemoryStore
}

// Create stores all orders or none.
func (r *MemoryOrderRepository) Create(ctx context.Context, orders []models.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, o := range orders {
		if _, exists := r.store.orders[o.ID]; exists {
			return apperr.Internal("Order already exists", fmt.Errorf("duplicate order id %s", o.ID))
		}
	}
	for _, o := range orders {
		r.store.orders[o.ID] = cloneOrder(o)
		r.store.orderOrder = append(r.store.orderOrder, o.ID)
	}

	r.store.onRollback(ctx, func() {
		for _, o := range orders {
			delete(r.store.orders, o.ID)
			r.store.orderOrder = removeID(r.store.orderOrder, o.ID)
		}
	})
	return nil
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, exists := r.store.orders[id]
	if !exists {
		return nil, ErrOrderNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *MemoryOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

func (r *MemoryOrderRepository) ListByShop(ctx context.Context, shopID string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.ShopID == shopID }), nil
}

func (r *MemoryOrderRepository) filter(keep func(models.Order) bool) []models.Order {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	orders := make([]models.Order, 0)
	for _, id := range r.store.orderOrder {
		if o := r.store.orders[id]; keep(o) {
			orders = append(orders, cloneOrder(o))
		}
	}
	return orders
}

func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.orders[o.ID]
	if !exists {
		return ErrOrderNotFound
	}
	if current.Status != from {
		return ErrStatusConflict
	}
	r.store.orders[o.ID] = cloneOrder(*o)

	r.store.onRollback(ctx, func() {
		r.store.orders[current.ID] = current
	})
	return nil
}

var (
	_ ProductRepository = (*MemoryProductRepository)(nil)
	_ CouponRepository  = (*MemoryCouponRepository)(nil)
	_ OrderRepository   = (*MemoryOrderRepository)(nil)
	_ CartRepository    = (*MemoryCartRepository)(nil)
	_ Transactor        = (*MemoryStore)(nil)
)
