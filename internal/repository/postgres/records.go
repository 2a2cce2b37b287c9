package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/models"
)

type productRecord struct {
	ID            string           `gorm:"primaryKey;type:varchar(64)"`
	Name          string           `gorm:"not null"`
	Category      string
	Price         decimal.Decimal  `gorm:"not null;type:numeric(14,2)"`
	DiscountPrice *decimal.Decimal `gorm:"type:numeric(14,2)"`
	Stock         int              `gorm:"not null;default:0"`
	SoldOut       int              `gorm:"not null;default:0"`
	ShopID        string           `gorm:"not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (productRecord) TableName() string { return "products" }

type couponRecord struct {
	ID              string           `gorm:"primaryKey;type:varchar(64)"`
	Name            string           `gorm:"not null;uniqueIndex"`
	Value           decimal.Decimal  `gorm:"not null;type:numeric(5,2)"`
	MinAmount       *decimal.Decimal `gorm:"type:numeric(14,2)"`
	SelectedProduct string
	ShopID          string `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (couponRecord) TableName() string { return "coupons" }

type orderRecord struct {
	ID              string                 `gorm:"primaryKey;type:varchar(64)"`
	ShopID          string                 `gorm:"not null;index"`
	UserID          string                 `gorm:"not null;index"`
	Cart            []models.OrderLine     `gorm:"serializer:json;type:jsonb;not null"`
	ShippingAddress models.ShippingAddress `gorm:"serializer:json;type:jsonb;not null"`
	TotalPrice      decimal.Decimal        `gorm:"not null;type:numeric(14,2)"`
	OrderStatus     string                 `gorm:"not null;index"`
	PaymentInfo     models.PaymentInfo     `gorm:"serializer:json;type:jsonb;not null"`
	PaidAt          *time.Time
	DeliveredAt     *time.Time
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (orderRecord) TableName() string { return "orders" }

func toProductRecord(p models.Product) productRecord {
	return productRecord{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Stock:         p.Stock,
		SoldOut:       p.SoldOut,
		ShopID:        p.ShopID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (r productRecord) toModel() models.Product {
	return models.Product{
		ID:            r.ID,
		Name:          r.Name,
		Category:      r.Category,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		Stock:         r.Stock,
		SoldOut:       r.SoldOut,
		ShopID:        r.ShopID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toCouponRecord(c models.Coupon) couponRecord {
	return couponRecord{
		ID:              c.ID,
		Name:            c.Name,
		Value:           c.Value,
		MinAmount:       c.MinAmount,
		SelectedProduct: c.SelectedProduct,
		ShopID:          c.ShopID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (r couponRecord) toModel() models.Coupon {
	return models.Coupon{
		ID:              r.ID,
		Name:            r.Name,
		Value:           r.Value,
		MinAmount:       r.MinAmount,
		SelectedProduct: r.SelectedProduct,
		ShopID:          r.ShopID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toOrderRecord(o models.Order) orderRecord {
	return orderRecord{
		ID:              o.ID,
		ShopID:          o.ShopID,
		UserID:          o.UserID,
		Cart:            o.Cart,
		ShippingAddress: o.ShippingAddress,
		TotalPrice:      o.TotalPrice,
		OrderStatus:     string(o.Status),
		PaymentInfo:     o.PaymentInfo,
		PaidAt:          o.PaidAt,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (r orderRecord) toModel() models.Order {
	return models.Order{
		ID:              r.ID,
		ShopID:          r.ShopID,
		UserID:          r.UserID,
		Cart:            r.Cart,
		ShippingAddress: r.ShippingAddress,
		TotalPrice:      r.TotalPrice,
		Status:          models.OrderStatus(r.OrderStatus),
		PaymentInfo:     r.PaymentInfo,
		PaidAt:          r.PaidAt,
		DeliveredAt:     r.DeliveredAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
