package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/identity"
	"github.com/shopwise/checkout/internal/middleware"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/notifier"
	"github.com/shopwise/checkout/internal/order"
	"github.com/shopwise/checkout/internal/payment"
	"github.com/shopwise/checkout/internal/pricing"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/shopwise/checkout/internal/service"
	"github.com/shopwise/checkout/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct{ amount int64 }

func (g *stubGateway) CreateIntent(ctx context.Context, amount int64, currency string) (payment.Intent, error) {
	g.amount = amount
	return payment.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

type testAPI struct {
	handler http.Handler
	tokens  *identity.Provider
	store   *repository.MemoryStore
	gateway *stubGateway
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := logger.Discard()
	store := repository.NewSeededMemoryStore()
	carts := repository.NewMemoryCartRepository()
	catalog := service.NewCatalogService(store.Products(), store.Coupons())
	n := notifier.NewLogNotifier(log)
	tokens := identity.NewProvider("test-secret", time.Hour)
	gw := &stubGateway{}

	checkout := service.NewCheckoutService(service.CheckoutDeps{
		Carts:      carts,
		Orders:     store.Orders(),
		Transactor: store,
		Catalog:    catalog,
		Engine:     pricing.NewDefaultEngine(),
		Splitter:   order.NewSplitter(order.SplitProportional),
		Notifier:   n,
		Logger:     log,
	})

	r := chi.NewRouter()
	Mount(r, Routes{
		Health:   NewHealthHandler(log, "test"),
		Products: NewProductHandler(catalog, log),
		Carts:    NewCartHandler(service.NewCartService(carts, catalog, log), log),
		Orders:   NewOrderHandler(checkout, service.NewOrderService(store.Orders(), catalog, store, n, log), log),
		Coupons:  NewCouponHandler(service.NewCouponService(store.Coupons(), catalog, log), log),
		Payments: NewPaymentHandler(service.NewPaymentService(carts, gw, "inr", "pk_test", log), log),
		Auth:     middleware.NewAuth(tokens, "token", "seller_token"),
	})

	return &testAPI{handler: r, tokens: tokens, store: store, gateway: gw}
}

func (a *testAPI) token(t *testing.T, subject string, role identity.Role) string {
	t.Helper()
	tok, err := a.tokens.Issue(subject, role)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(dst))
}

type errorBody struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	decode(t, w, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestProducts(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Success  bool             `json:"success"`
		Products []models.Product `json:"products"`
	}
	decode(t, w, &list)
	assert.True(t, list.Success)
	assert.Len(t, list.Products, 10)

	w = api.do(t, http.MethodGet, "/products/7", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var one struct {
		Product models.Product `json:"product"`
	}
	decode(t, w, &one)
	assert.Equal(t, "Margherita Pizza", one.Product.Name)

	w = api.do(t, http.MethodGet, "/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var e errorBody
	decode(t, w, &e)
	assert.False(t, e.Success)
	assert.Equal(t, http.StatusNotFound, e.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/orders"},
		{http.MethodGet, "/orders/abc"},
		{http.MethodPost, "/payments/create-payment-intent"},
		{http.MethodGet, "/shops/shop-1/orders"},
		{http.MethodPost, "/shops/shop-1/coupons"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := api.do(t, tc.method, tc.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestSellerRoutesRejectOtherShops(t *testing.T) {
	api := newTestAPI(t)
	seller := api.token(t, "shop-2", identity.RoleSeller)

	w := api.do(t, http.MethodGet, "/shops/shop-1/orders", seller, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	user := api.token(t, "shop-1", identity.RoleUser)
	w = api.do(t, http.MethodGet, "/shops/shop-1/orders", user, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type cartBody struct {
	Cart models.Cart `json:"cart"`
}

func TestCartLifecycle(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, "u1", identity.RoleUser)

	w := api.do(t, http.MethodPost, "/cart", user, models.CartItemRequest{ProductID: "2", Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code)
	var c cartBody
	decode(t, w, &c)
	assert.True(t, decimal.NewFromInt(219800).Equal(c.Cart.TotalPrice))

	w = api.do(t, http.MethodPut, "/cart/update-quantity", user, models.CartItemRequest{ProductID: "2", Quantity: 1})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &c)
	require.Len(t, c.Cart.Items, 1)
	assert.Equal(t, 1, c.Cart.Items[0].Quantity)

	w = api.do(t, http.MethodDelete, "/cart/2", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &c)
	assert.Empty(t, c.Cart.Items)
}

func TestCart_ValidationErrors(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, "u1", identity.RoleUser)

	w := api.do(t, http.MethodPost, "/cart", user, map[string]interface{}{"productId": "2", "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var e errorBody
	decode(t, w, &e)
	assert.Equal(t, "quantity must be at least 1", e.Message)

	w = api.do(t, http.MethodPost, "/cart", user, map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &e)
	assert.Equal(t, "productId is required", e.Message)
}

func checkoutBody() map[string]interface{} {
	return map[string]interface{}{
		"shippingAddress": models.ShippingAddress{
			FullName: "Asha Rao", Address1: "12 MG Road", Address2: "Indiranagar",
			State: "KA", Zipcode: "560038", Country: "IN",
			PrimaryNumber: "9000000001", AlternateNumber: "9000000002",
		},
		"paymentInfo": models.PaymentInfo{Status: "pending", Method: "card"},
	}
}

type checkoutResponse struct {
	Success    bool            `json:"success"`
	Orders     []models.Order  `json:"orders"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	IsPaid     bool            `json:"isPaid"`
}

func TestCheckoutAndOrderLifecycle(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, "u1", identity.RoleUser)
	seller := api.token(t, "shop-2", identity.RoleSeller)

	// One line from each shop, 109900 + 149900, which ships free.
	api.do(t, http.MethodPost, "/cart", user, models.CartItemRequest{ProductID: "2", Quantity: 1})
	api.do(t, http.MethodPost, "/cart", user, models.CartItemRequest{ProductID: "7", Quantity: 1})

	w := api.do(t, http.MethodPost, "/orders", user, checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res checkoutResponse
	decode(t, w, &res)
	assert.True(t, res.Success)
	assert.False(t, res.IsPaid)
	assert.True(t, decimal.NewFromInt(259800).Equal(res.TotalPrice))
	require.Len(t, res.Orders, 2)
	assert.Equal(t, "shop-1", res.Orders[0].ShopID)
	assert.Equal(t, "shop-2", res.Orders[1].ShopID)

	// Cart was cleared.
	w = api.do(t, http.MethodGet, "/cart", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var c cartBody
	decode(t, w, &c)
	assert.Empty(t, c.Cart.Items)

	shopOrder := res.Orders[1]

	w = api.do(t, http.MethodGet, "/orders/"+shopOrder.ID, user, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	other := api.token(t, "u2", identity.RoleUser)
	w = api.do(t, http.MethodGet, "/orders/"+shopOrder.ID, other, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodGet, "/shops/shop-2/orders", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Orders []models.Order `json:"orders"`
	}
	decode(t, w, &listed)
	require.Len(t, listed.Orders, 1)
	assert.Equal(t, shopOrder.ID, listed.Orders[0].ID)

	path := "/shops/shop-2/orders/" + shopOrder.ID
	w = api.do(t, http.MethodPut, path, seller, models.UpdateOrderStatusRequest{OrderStatus: models.OrderStatusShipped})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p, err := api.store.Products().GetByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, 19, p.Stock)
	assert.Equal(t, 1, p.SoldOut)

	w = api.do(t, http.MethodPut, path, seller, models.UpdateOrderStatusRequest{OrderStatus: models.OrderStatusShipped})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPut, path, seller, models.UpdateOrderStatusRequest{OrderStatus: models.OrderStatusDelivered})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Order models.Order `json:"order"`
	}
	decode(t, w, &updated)
	assert.Equal(t, models.OrderStatusDelivered, updated.Order.Status)
	assert.NotNil(t, updated.Order.DeliveredAt)
	assert.Equal(t, "succeeded", updated.Order.PaymentInfo.Status)
}

func TestCheckout_Errors(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, "u1", identity.RoleUser)

	w := api.do(t, http.MethodPost, "/orders", user, checkoutBody())
	assert.Equal(t, http.StatusNotFound, w.Code)

	api.do(t, http.MethodPost, "/cart", user, models.CartItemRequest{ProductID: "2", Quantity: 1})
	w = api.do(t, http.MethodPost, "/orders", user, map[string]interface{}{"paymentInfo": models.PaymentInfo{Status: "pending", Method: "card"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var e errorBody
	decode(t, w, &e)
	assert.Equal(t, "shippingAddress is required", e.Message)
}

func TestCouponAdministrationAndVerify(t *testing.T) {
	api := newTestAPI(t)
	seller := api.token(t, "shop-1", identity.RoleSeller)

	w := api.do(t, http.MethodPost, "/shops/shop-1/coupons", seller, map[string]interface{}{
		"name": "WAFFLE10", "value": 10, "minAmount": 50000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Coupon models.Coupon `json:"couponCode"`
	}
	decode(t, w, &created)
	assert.Equal(t, "shop-1", created.Coupon.ShopID)

	w = api.do(t, http.MethodPost, "/shops/shop-1/coupons", seller, map[string]interface{}{"name": "WAFFLE10", "value": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/coupons", "", models.VerifyCouponRequest{CouponCode: "WAFFLE10", TotalBill: decimal.NewFromInt(60000)})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/coupons", "", models.VerifyCouponRequest{CouponCode: "NOPE", TotalBill: decimal.NewFromInt(60000)})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/coupons", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all struct {
		Coupons []models.Coupon `json:"couponCodes"`
	}
	decode(t, w, &all)
	assert.Len(t, all.Coupons, 1)

	w = api.do(t, http.MethodGet, "/shops/shop-1/coupons", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)

	other := api.token(t, "shop-2", identity.RoleSeller)
	w = api.do(t, http.MethodDelete, "/shops/shop-2/coupons/"+created.Coupon.ID, other, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodDelete, "/shops/shop-1/coupons/"+created.Coupon.ID, seller, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPayments(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, "u1", identity.RoleUser)

	w := api.do(t, http.MethodGet, "/payments/stripe-publishable-key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var key struct {
		Key string `json:"stripeApikey"`
	}
	decode(t, w, &key)
	assert.Equal(t, "pk_test", key.Key)

	api.do(t, http.MethodPost, "/cart", user, models.CartItemRequest{ProductID: "4", Quantity: 1})
	w = api.do(t, http.MethodPost, "/payments/create-payment-intent", user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var intent struct {
		ClientSecret string `json:"client_secret"`
	}
	decode(t, w, &intent)
	assert.Equal(t, "pi_test_secret", intent.ClientSecret)
	assert.Equal(t, int64(89900), api.gateway.amount)
}
