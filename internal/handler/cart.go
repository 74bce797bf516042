package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type addItemRequest struct {
	ItemID int64 `json:"itemId"`
}

type quantityRequest struct {
	// Quantity is accepted as a JSON number or string, like a number input.
	Quantity json.RawMessage `json:"quantity"`
}

type discountRequest struct {
	Discount json.RawMessage `json:"discount"`
}

type customerEntryRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Cart returns the cart with its totals.
func (h *Handler) Cart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toCart(h.session.View()))
}

// AddItem looks the item up on the backend and adds one unit to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.catalog.GetItem(r.Context(), req.ItemID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCart(h.session.AddItem(*item)))
}

// SetQuantity changes the quantity of a cart line. Values below 1 and
// non-numeric input become 1; an unknown index leaves the cart unchanged.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req quantityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCart(h.session.SetQuantity(index, fieldText(req.Quantity))))
}

// RemoveItem removes a cart line; an unknown index leaves the cart unchanged.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCart(h.session.RemoveItem(index)))
}

// SetDiscount stores the discount field and returns the recomputed totals.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCart(h.session.SetDiscount(fieldText(req.Discount))))
}

// SetCustomer stores the customer name and contact number fields.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCart(h.session.SetCustomer(req.Name, req.Phone)))
}

// SelectCustomer fills the customer fields from an existing customer.
func (h *Handler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCart(h.session.SetCustomer(c.Name, c.Phone)))
}

func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &badRequestError{msg: "invalid index " + strconv.Quote(raw)}
	}
	return index, nil
}
