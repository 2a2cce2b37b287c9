package repository

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/models"
)

// MemoryCartRepository implements CartRepository in process memory.
type MemoryCartRepository struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: make(map[string]*models.Cart)}
}

func (r *MemoryCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cloneCart(cart), nil
}

func (r *MemoryCartRepository) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		cart = &models.Cart{UserID: userID, TotalPrice: decimal.Zero}
		r.carts[userID] = cart
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			return cloneCart(cart), nil
		}
	}
	cart.Items = append(cart.Items, models.CartLine{ProductID: productID, Quantity: quantity})
	return cloneCart(cart), nil
}

func (r *MemoryCartRepository) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			return cloneCart(cart), nil
		}
	}
	return nil, ErrCartItemMissing
}

func (r *MemoryCartRepository) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i:i], cart.Items[i+1:]...)
			return cloneCart(cart), nil
		}
	}
	return nil, ErrCartItemMissing
}

func (r *MemoryCartRepository) SetTotal(ctx context.Context, userID string, total decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return ErrCartNotFound
	}
	cart.TotalPrice = total
	return nil
}

func (r *MemoryCartRepository) RemoveLines(ctx context.Context, userID string, lines []models.CartLine) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}

	deduct := make(map[string]int, len(lines))
	for _, l := range lines {
		deduct[l.ProductID] += l.Quantity
	}
	kept := cart.Items[:0:0]
	for _, item := range cart.Items {
		item.Quantity -= deduct[item.ProductID]
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return cloneCart(cart), nil
}

func cloneCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = make([]models.CartLine, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
