// Package redisrepo keeps user carts in Redis.
package redisrepo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/repository"
)

// Script results below zero signal a missing cart or line.
const (
	resultNoCart = -1
	resultNoItem = -2
)

// A cart is three keys: a hash of productId to quantity, a list giving
// first-added line order, and a meta hash with the owner and total.
var (
	addItemScript = redis.NewScript(`
		if redis.call('HEXISTS', KEYS[2], 'user_id') == 0 then
			redis.call('HSET', KEYS[2], 'user_id', ARGV[1], 'total_price', '0')
		end
		if redis.call('HEXISTS', KEYS[1], ARGV[2]) == 0 then
			redis.call('RPUSH', KEYS[3], ARGV[2])
		end
		return redis.call('HINCRBY', KEYS[1], ARGV[2], ARGV[3])
	`)

	setQuantityScript = redis.NewScript(`
		if redis.call('HEXISTS', KEYS[2], 'user_id') == 0 then
			return -1
		end
		if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
			return -2
		end
		redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
		return 1
	`)

	removeItemScript = redis.NewScript(`
		if redis.call('HEXISTS', KEYS[2], 'user_id') == 0 then
			return -1
		end
		if redis.call('HDEL', KEYS[1], ARGV[1]) == 0 then
			return -2
		end
		redis.call('LREM', KEYS[3], 0, ARGV[1])
		return 1
	`)

	setTotalScript = redis.NewScript(`
		if redis.call('HEXISTS', KEYS[1], 'user_id') == 0 then
			return -1
		end
		redis.call('HSET', KEYS[1], 'total_price', ARGV[1])
		return 1
	`)

	// ARGV holds productId, quantity pairs.
	removeLinesScript = redis.NewScript(`
		if redis.call('HEXISTS', KEYS[2], 'user_id') == 0 then
			return -1
		end
		for i = 1, #ARGV, 2 do
			local id = ARGV[i]
			if redis.call('HEXISTS', KEYS[1], id) == 1 then
				local left = redis.call('HINCRBY', KEYS[1], id, -tonumber(ARGV[i + 1]))
				if left <= 0 then
					redis.call('HDEL', KEYS[1], id)
					redis.call('LREM', KEYS[3], 0, id)
				end
			end
		end
		return 1
	`)
)

func itemsKey(userID string) string { return fmt.Sprintf("cart:%s:items", userID) }
func metaKey(userID string) string  { return fmt.Sprintf("cart:%s:meta", userID) }
func orderKey(userID string) string { return fmt.Sprintf("cart:%s:order", userID) }

func cartKeys(userID string) []string {
	return []string{itemsKey(userID), metaKey(userID), orderKey(userID)}
}

// CartRepository implements repository.CartRepository on Redis.
type CartRepository struct {
	client redis.UniversalClient
}

func NewCartRepository(client redis.UniversalClient) *CartRepository {
	return &CartRepository{client: client}
}

var _ repository.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	pipe := r.client.TxPipeline()
	meta := pipe.HGetAll(ctx, metaKey(userID))
	order := pipe.LRange(ctx, orderKey(userID), 0, -1)
	items := pipe.HGetAll(ctx, itemsKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperr.Internal("Failed to load cart", err)
	}

	m := meta.Val()
	if _, ok := m["user_id"]; !ok {
		return nil, repository.ErrCartNotFound
	}

	total := decimal.Zero
	if raw := m["total_price"]; raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, apperr.Internal("Failed to load cart", fmt.Errorf("invalid total %q: %w", raw, err))
		}
		total = parsed
	}

	cart := &models.Cart{UserID: userID, Items: make([]models.CartLine, 0), TotalPrice: total}
	quantities := items.Val()
	for _, productID := range order.Val() {
		raw, ok := quantities[productID]
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperr.Internal("Failed to load cart", fmt.Errorf("invalid quantity for product %s: %w", productID, err))
		}
		if qty > 0 {
			cart.Items = append(cart.Items, models.CartLine{ProductID: productID, Quantity: qty})
		}
	}

	return cart, nil
}

func (r *CartRepository) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	err := addItemScript.Run(ctx, r.client, cartKeys(userID), userID, productID, quantity).Err()
	if err != nil {
		return nil, apperr.Internal("Failed to add item to cart", err)
	}
	return r.Get(ctx, userID)
}

func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if err := r.run(ctx, setQuantityScript, cartKeys(userID), productID, quantity); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if err := r.run(ctx, removeItemScript, cartKeys(userID), productID); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

func (r *CartRepository) SetTotal(ctx context.Context, userID string, total decimal.Decimal) error {
	return r.run(ctx, setTotalScript, []string{metaKey(userID)}, total.String())
}

func (r *CartRepository) RemoveLines(ctx context.Context, userID string, lines []models.CartLine) (*models.Cart, error) {
	args := make([]interface{}, 0, 2*len(lines))
	for _, l := range lines {
		args = append(args, l.ProductID, l.Quantity)
	}
	if err := r.run(ctx, removeLinesScript, cartKeys(userID), args...); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// run executes a guarded script and maps its status result.
func (r *CartRepository) run(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) error {
	code, err := script.Run(ctx, r.client, keys, args...).Int64()
	if err != nil {
		return apperr.Internal("Cart update failed", err)
	}
	switch code {
	case resultNoCart:
		return repository.ErrCartNotFound
	case resultNoItem:
		return repository.ErrCartItemMissing
	default:
		return nil
	}
}
