package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/sirupsen/logrus"
)

// CartService manages user carts and keeps their stored total current.
type CartService struct {
	carts   repository.CartRepository
	catalog *CatalogService
	log     *logrus.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts repository.CartRepository, catalog *CatalogService, log *logrus.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, log: log}
}

func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	return s.carts.Get(ctx, userID)
}

// AddItem adds quantity of a product, incrementing an existing line.
func (s *CartService) AddItem(ctx context.Context, userID string, req models.CartItemRequest) (*models.Cart, error) {
	if req.Quantity < 1 {
		return nil, apperr.InvalidRequest("Quantity must be at least 1")
	}
	if _, err := s.catalog.GetProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	cart, err := s.carts.AddItem(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return s.refreshTotal(ctx, cart)
}

// UpdateQuantity replaces the quantity of an existing line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID string, req models.CartItemRequest) (*models.Cart, error) {
	if req.Quantity < 1 {
		return nil, apperr.InvalidRequest("Quantity must be at least 1")
	}

	cart, err := s.carts.SetQuantity(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return s.refreshTotal(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	cart, err := s.carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	return s.refreshTotal(ctx, cart)
}

func (s *CartService) refreshTotal(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	return repriceCart(ctx, s.carts, s.catalog, s.log, cart)
}

// repriceCart recomputes and stores the cart total from current catalog
// prices. Lines whose product has disappeared contribute nothing.
func repriceCart(ctx context.Context, carts repository.CartRepository, catalog *CatalogService, log *logrus.Logger, cart *models.Cart) (*models.Cart, error) {
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := catalog.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.EffectivePrice()
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			log.WithFields(logrus.Fields{"user_id": cart.UserID, "product_id": item.ProductID}).
				Warn("cart line references unknown product")
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if err := carts.SetTotal(ctx, cart.UserID, total); err != nil {
		return nil, err
	}
	cart.TotalPrice = total
	return cart, nil
}
