package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/hollowbeak/storefront/internal/domain/cart"
	"github.com/hollowbeak/storefront/internal/domain/checkout"
	"github.com/hollowbeak/storefront/internal/domain/product"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	state, err := h.carts.Get(r.Context(), claims.UserID)
	if err != nil {
		h.internalError(w, r, "get cart", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(state, true))
}

// putCartItem adds a product to the cart, or replaces the quantity of a line
// that is already present. The product's current name, image, price and
// stock are snapshotted into the line item at this point.
func (h *Handler) putCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req cartItemRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, "get product", err)
		return
	}
	if p.CountInStock < 1 {
		writeError(w, http.StatusBadRequest, "product is out of stock")
		return
	}

	state, err := h.carts.AddOrUpdateItem(r.Context(), claims.UserID, cart.LineItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Image:         p.Image,
		UnitPrice:     p.Price,
		Quantity:      req.Quantity,
		StockSnapshot: p.CountInStock,
	})
	if err != nil {
		h.internalError(w, r, "add cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(state, true))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	state, err := h.carts.RemoveItem(r.Context(), claims.UserID, chi.URLParam(r, "productID"))
	if err != nil {
		h.internalError(w, r, "remove cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(state, true))
}

func (h *Handler) putShippingAddress(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req shippingAddressRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.carts.SetShippingAddress(r.Context(), claims.UserID, cart.Address{
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		if errors.Is(err, cart.ErrIncompleteAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, "set shipping address", err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(state, true))
}

func (h *Handler) putPaymentMethod(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req paymentMethodRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.carts.SetPaymentMethod(r.Context(), claims.UserID, cart.PaymentMethod(req.PaymentMethod))
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNoShippingAddress),
			errors.Is(err, cart.ErrInvalidPaymentMethod):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, r, "set payment method", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(state, true))
}

// gateCheckout answers which checkout stage the caller may enter. The
// endpoint itself is unauthenticated: an anonymous session asking for any
// gated stage is redirected to login by the gate, exactly like the screens.
func (h *Handler) gateCheckout(w http.ResponseWriter, r *http.Request) {
	target := checkout.Stage(chi.URLParam(r, "stage"))
	if !target.Valid() {
		writeError(w, http.StatusNotFound, "unknown checkout stage")
		return
	}

	state := cart.NewState()
	authenticated := false
	if token, ok := bearerToken(r); ok {
		if claims, err := h.tokens.Verify(token); err == nil {
			authenticated = true
			loaded, err := h.carts.Get(r.Context(), claims.UserID)
			if err != nil {
				h.internalError(w, r, "get cart", err)
				return
			}
			state = loaded
		}
	}

	stage, redirected := checkout.Gate(state, authenticated, target)
	writeJSON(w, http.StatusOK, gateResponse{
		Stage:      string(stage),
		Redirected: redirected,
	})
}
