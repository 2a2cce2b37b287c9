package service

import (
	"context"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/pricing"
	"github.com/shopwise/checkout/internal/repository"
)

// CatalogService is the read side of products and coupons, plus the stock
// mutation used by shipments.
type CatalogService struct {
	products repository.ProductRepository
	coupons  repository.CouponRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products repository.ProductRepository, coupons repository.CouponRepository) *CatalogService {
	return &CatalogService{
		products: products,
		coupons:  coupons,
	}
}

// ListProducts returns all products
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

// GetProduct returns a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// FindProductsByIDs returns known products in no particular order.
func (s *CatalogService) FindProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	return s.products.FindByIDs(ctx, ids)
}

// FindCouponByName looks up a coupon by its normalized code
func (s *CatalogService) FindCouponByName(ctx context.Context, name string) (*models.Coupon, error) {
	return s.coupons.FindByName(ctx, name)
}

// FindCouponByID returns a coupon by ID
func (s *CatalogService) FindCouponByID(ctx context.Context, id string) (*models.Coupon, error) {
	return s.coupons.FindByID(ctx, id)
}

// AdjustStock moves delta units between stock and soldOut.
func (s *CatalogService) AdjustStock(ctx context.Context, productID string, delta int) (*models.Product, error) {
	return s.products.AdjustStock(ctx, productID, delta)
}

// ResolveLines joins cart lines with their products, keeping cart order.
// A line whose product no longer exists fails with NotFound.
func (s *CatalogService) ResolveLines(ctx context.Context, items []models.CartLine) ([]pricing.Line, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, apperr.Newf(apperr.KindNotFound, "Product %s not found", item.ProductID)
		}
		lines = append(lines, pricing.Line{Product: p, Quantity: item.Quantity})
	}
	return lines, nil
}
