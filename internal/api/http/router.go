package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentkart-backend/internal/security"
	"rentkart-backend/internal/service"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Payments *PaymentHandler
}

// NewHandlers builds the handler set from the service layer.
func NewHandlers(auth service.AuthService, products service.ProductService, stock service.StockService, cart service.CartService, orders service.OrderService, payments service.PaymentService) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(auth),
		Products: NewProductHandler(products, stock),
		Cart:     NewCartHandler(cart),
		Orders:   NewOrderHandler(orders),
		Payments: NewPaymentHandler(payments),
	}
}

// NewRouter mounts all API routes under /api/v1.
func NewRouter(h *Handlers, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	authn := NewAuthMiddleware(tokens)

	// Public
	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/products", h.Products.List).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.Products.Get).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/stock", h.Products.OnHand).Methods(http.MethodGet)
	api.HandleFunc("/payments/callback", h.Payments.Callback).Methods(http.MethodPost)

	// Vendor catalog management
	api.HandleFunc("/products", authn.Require(h.Products.Create)).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", authn.Require(h.Products.Update)).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", authn.Require(h.Products.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/products/{id}/movements", authn.Require(h.Products.Movements)).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/stock/adjust", authn.Require(h.Products.AdjustStock)).Methods(http.MethodPost)

	// Cart
	api.HandleFunc("/cart", authn.Require(h.Cart.Get)).Methods(http.MethodGet)
	api.HandleFunc("/cart", authn.Require(h.Cart.Clear)).Methods(http.MethodDelete)
	api.HandleFunc("/cart/lines", authn.Require(h.Cart.UpsertLine)).Methods(http.MethodPost)
	api.HandleFunc("/cart/lines/{id}", authn.Require(h.Cart.RemoveLine)).Methods(http.MethodDelete)
	api.HandleFunc("/cart/coupon", authn.Require(h.Cart.ApplyCoupon)).Methods(http.MethodPost)

	// Orders
	api.HandleFunc("/orders", authn.Require(h.Orders.Confirm)).Methods(http.MethodPost)
	api.HandleFunc("/orders", authn.Require(h.Orders.List)).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", authn.Require(h.Orders.Get)).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/pickup", authn.Require(h.Orders.Pickup)).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/return", authn.Require(h.Orders.Return)).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/cancel", authn.Require(h.Orders.Cancel)).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/payments", authn.Require(h.Payments.ListForOrder)).Methods(http.MethodGet)

	// Payments
	api.HandleFunc("/payments", authn.Require(h.Payments.CreateIntent)).Methods(http.MethodPost)

	return r
}
