package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hollowbeak/storefront/internal/domain/product"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("pageNumber"))

	result, err := h.products.List(r.Context(), product.ListFilter{
		Keyword:  strings.TrimSpace(q.Get("keyword")),
		Category: strings.TrimSpace(q.Get("category")),
		Page:     page,
	})
	if err != nil {
		h.internalError(w, r, "list products", err)
		return
	}

	resp := productListResponse{
		Products: make([]productResponse, len(result.Products)),
		Page:     result.Page,
		Pages:    result.Pages,
		Total:    result.Total,
	}
	for i, p := range result.Products {
		resp.Products[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "name and a non-negative price are required")
		return
	}

	p := &product.Product{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Image:        req.Image,
		Brand:        req.Brand,
		Category:     req.Category,
		Description:  req.Description,
		Price:        req.Price,
		CountInStock: req.CountInStock,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		h.internalError(w, r, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "name and a non-negative price are required")
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, "get product", err)
		return
	}

	existing.Name = req.Name
	existing.Image = req.Image
	existing.Brand = req.Brand
	existing.Category = req.Category
	existing.Description = req.Description
	existing.Price = req.Price
	existing.CountInStock = req.CountInStock

	if err := h.products.Update(r.Context(), existing); err != nil {
		h.internalError(w, r, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*existing))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.products.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		h.internalError(w, r, "list categories", err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{Name: c.Name, Slug: c.Slug}
	}
	writeJSON(w, http.StatusOK, resp)
}

// internalError logs err with request context and responds with a generic
// 500 so internals never leak to clients.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	zctx.From(r.Context()).Error("Handler error", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
