package handler

import "net/http"

// Customers lists the backend's customers for the selection dropdown.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = toCustomer(c)
	}
	writeJSON(w, http.StatusOK, resp)
}
