package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/hollowbeak/storefront/internal/domain/cart"
	"github.com/hollowbeak/storefront/internal/domain/order"
)

// placeOrder converts the submission to a domain request, delegates to the
// order service, and maps the result (or error) back to a response. The
// optional Idempotency-Key header deduplicates double submissions.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req placeOrderRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]cart.LineItem, len(req.OrderItems))
	for i, item := range req.OrderItems {
		items[i] = cart.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		}
	}

	created, err := h.orders.PlaceOrder(r.Context(), claims.UserID, order.PlaceOrderRequest{
		Items: items,
		ShippingAddress: cart.Address{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod:  cart.PaymentMethod(req.PaymentMethod),
		Subtotal:       req.ItemsPrice,
		ShippingFee:    req.ShippingPrice,
		Tax:            req.TaxPrice,
		GrandTotal:     req.TotalPrice,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}

	h.ordersPlaced.Add(r.Context(), 1)
	zctx.From(r.Context()).Info("Order placed",
		zap.String("order_id", created.ID),
		zap.String("user_id", claims.UserID),
	)
	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.IsAdmin)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrNotOwner):
			writeError(w, http.StatusForbidden, "not authorized to view this order")
		default:
			h.internalError(w, r, "get order", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	orders, err := h.orders.ListMine(r.Context(), claims.UserID)
	if err != nil {
		h.internalError(w, r, "list my orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(orders))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.internalError(w, r, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(orders))
}

func (h *Handler) markOrderPaid(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrAlreadyPaid):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, r, "mark order paid", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) markOrderDelivered(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.MarkDelivered(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrAlreadyDelivered):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, r, "mark order delivered", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// mapOrderError converts order placement errors to HTTP responses.
// Validation failures are 400 or 422; everything unexpected is 500.
func (h *Handler) mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrMissingAddress),
		errors.Is(err, order.ErrMissingPayment),
		errors.Is(err, order.ErrPricingMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var pnfErr *order.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		writeError(w, http.StatusUnprocessableEntity, pnfErr.Error())
		return
	}

	h.internalError(w, r, "place order", err)
}

func toOrderListResponse(orders []order.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	return resp
}
