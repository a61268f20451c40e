package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/hollowbeak/storefront/internal/domain/product"
)

func (h *Handler) listWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	ids, err := h.wishlists.List(r.Context(), claims.UserID)
	if err != nil {
		h.internalError(w, r, "list wishlist", err)
		return
	}

	resp := wishlistResponse{Products: []productResponse{}}
	if len(ids) > 0 {
		products, err := h.products.GetByIDs(r.Context(), ids)
		if err != nil {
			h.internalError(w, r, "get wishlist products", err)
			return
		}
		// Preserve wishlist order; products deleted from the catalog since
		// they were saved are simply dropped.
		byID := make(map[string]product.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, id := range ids {
			if p, ok := byID[id]; ok {
				resp.Products = append(resp.Products, toProductResponse(p))
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	productID := chi.URLParam(r, "productID")

	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, "get product", err)
		return
	}

	if err := h.wishlists.Add(r.Context(), claims.UserID, productID); err != nil {
		h.internalError(w, r, "add wishlist item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeWishlist(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if err := h.wishlists.Remove(r.Context(), claims.UserID, chi.URLParam(r, "productID")); err != nil {
		h.internalError(w, r, "remove wishlist item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
