// Package handler exposes the storefront REST API. Every endpoint decodes
// into a typed request struct, validates it at the boundary, delegates to a
// domain service, and encodes a typed response. Domain errors are mapped to
// HTTP status codes in exactly one place per resource.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/hollowbeak/storefront/internal/auth"
	"github.com/hollowbeak/storefront/internal/domain/cart"
	"github.com/hollowbeak/storefront/internal/domain/order"
	"github.com/hollowbeak/storefront/internal/domain/product"
	"github.com/hollowbeak/storefront/internal/domain/user"
	"github.com/hollowbeak/storefront/internal/domain/wishlist"
)

const maxBodyBytes = 1 << 20

// Handler implements the storefront HTTP API.
type Handler struct {
	products     product.Repository
	categories   product.CategoryRepository
	users        *user.Service
	orders       *order.Service
	carts        *cart.Store
	wishlists    wishlist.Repository
	tokens       *auth.Tokens
	ordersPlaced metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
// meter may be a no-op meter in tests.
func NewHandler(
	products product.Repository,
	categories product.CategoryRepository,
	users *user.Service,
	orders *order.Service,
	carts *cart.Store,
	wishlists wishlist.Repository,
	tokens *auth.Tokens,
	meter metric.Meter,
) (*Handler, error) {
	ordersPlaced, err := meter.Int64Counter("storefront.orders.placed")
	if err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}

	return &Handler{
		products:     products,
		categories:   categories,
		users:        users,
		orders:       orders,
		carts:        carts,
		wishlists:    wishlists,
		tokens:       tokens,
		ordersPlaced: ordersPlaced,
	}, nil
}

// Routes returns the API router. All paths are relative to the /api prefix
// mounted by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth, h.requireAdmin)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})

	r.Get("/categories", h.listCategories)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.register)
		r.Post("/login", h.login)
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.updateProfile)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth, h.requireAdmin)
			r.Get("/", h.listUsers)
			r.Get("/{id}", h.getUser)
			r.Put("/{id}", h.updateUser)
			r.Delete("/{id}", h.deleteUser)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/", h.getCart)
		r.Put("/items", h.putCartItem)
		r.Delete("/items/{productID}", h.removeCartItem)
		r.Put("/shipping", h.putShippingAddress)
		r.Put("/payment", h.putPaymentMethod)
	})

	r.Get("/checkout/{stage}", h.gateCheckout)

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/", h.placeOrder)
		r.Get("/myorders", h.listMyOrders)
		r.Get("/{id}", h.getOrder)
		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/", h.listOrders)
			r.Put("/{id}/pay", h.markOrderPaid)
			r.Put("/{id}/deliver", h.markOrderDelivered)
		})
	})

	r.Route("/wishlist", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/", h.listWishlist)
		r.Post("/{productID}", h.addWishlist)
		r.Delete("/{productID}", h.removeWishlist)
	})

	return r
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// decode reads the request body into v, rejecting unknown fields and
// oversized bodies, so malformed input never reaches business logic.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode body")
	}
	// Trailing garbage after the JSON value is also malformed input.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data")
	}
	return nil
}
