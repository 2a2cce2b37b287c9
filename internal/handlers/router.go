package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Guard wraps a route group with an authentication requirement.
type Guard interface {
	RequireUser(next http.Handler) http.Handler
	RequireSeller(next http.Handler) http.Handler
}

// Routes bundles the handlers mounted by Mount.
type Routes struct {
	Health   *HealthHandler
	Products *ProductHandler
	Carts    *CartHandler
	Orders   *OrderHandler
	Coupons  *CouponHandler
	Payments *PaymentHandler
	Auth     Guard
}

// Mount registers every API route on r.
func Mount(r chi.Router, h Routes) {
	r.Get("/health", h.Health.ServeHTTP)

	r.Get("/products", h.Products.ListProducts)
	r.Get("/products/{productId}", h.Products.GetProduct)

	r.Post("/coupons", h.Coupons.VerifyCoupon)
	r.Get("/coupons", h.Coupons.ListCoupons)

	r.Get("/payments/stripe-publishable-key", h.Payments.PublishableKey)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireUser)

		r.Get("/cart", h.Carts.GetCart)
		r.Post("/cart", h.Carts.AddItem)
		r.Put("/cart/update-quantity", h.Carts.UpdateQuantity)
		r.Delete("/cart/{productId}", h.Carts.RemoveItem)

		r.Post("/orders", h.Orders.CreateOrder)
		r.Get("/orders", h.Orders.ListOrders)
		r.Get("/orders/{orderId}", h.Orders.GetOrder)

		r.Post("/payments/create-payment-intent", h.Payments.CreatePaymentIntent)
	})

	r.Route("/shops/{shopId}", func(r chi.Router) {
		r.Use(h.Auth.RequireSeller)

		r.Get("/orders", h.Orders.ListShopOrders)
		r.Put("/orders/{orderId}", h.Orders.UpdateOrderStatus)

		r.Get("/coupons", h.Coupons.ListShopCoupons)
		r.Post("/coupons", h.Coupons.CreateCoupon)
		r.Delete("/coupons/{couponId}", h.Coupons.DeleteCoupon)
	})
}
