package handler

import (
	"fmt"
	"net/http"
)

// PlaceOrder submits the session's cart as a new order. On success the cart
// and customer fields are cleared; on failure they are kept for a retry.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.PlaceOrder(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	label := result.Order.Code
	if result.Order.ID != 0 {
		label = fmt.Sprintf("#%d", result.Order.ID)
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		Message:         fmt.Sprintf("Order %s placed successfully", label),
		Order:           toOrder(*result.Order),
		CustomerCreated: result.CustomerCreated,
		CodeFellBack:    result.CodeFellBack,
		Cart:            toCart(h.session.View()),
	})
}

// ListOrders returns the order history.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrder(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder returns one order.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrder(*o))
}

// DeleteOrder removes an order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
