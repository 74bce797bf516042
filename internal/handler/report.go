package handler

import (
	"net/http"

	"github.com/xenking/pos-console/internal/domain/order"
)

type tallyResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type reportResponse struct {
	Date           string          `json:"date"`
	Daily          bool            `json:"daily"`
	TotalCustomers int             `json:"totalCustomers"`
	TotalOrders    int             `json:"totalOrders"`
	TotalRevenue   float64         `json:"totalRevenue"`
	Customers      []tallyResponse `json:"customers"`
	Items          []tallyResponse `json:"items"`
	TopCustomers   []tallyResponse `json:"topCustomers"`
	TopItems       []tallyResponse `json:"topItems"`
	Transactions   []orderResponse `json:"transactions"`
}

// Report returns the sales summary of the current day.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := h.now()
	rep := order.BuildReport(orders, now)

	transactions := make([]orderResponse, len(rep.Orders))
	for i, o := range rep.Orders {
		transactions[i] = toOrder(o)
	}

	writeJSON(w, http.StatusOK, reportResponse{
		Date:           now.Format("2006-01-02"),
		Daily:          rep.Daily,
		TotalCustomers: rep.CustomerCount,
		TotalOrders:    rep.OrderCount,
		TotalRevenue:   money(rep.Revenue),
		Customers:      toTallies(rep.CustomerOrders),
		Items:          toTallies(rep.ItemQuantities),
		TopCustomers:   toTallies(rep.TopCustomers),
		TopItems:       toTallies(rep.TopItems),
		Transactions:   transactions,
	})
}

func toTallies(in []order.Tally) []tallyResponse {
	out := make([]tallyResponse, len(in))
	for i, t := range in {
		out[i] = tallyResponse{Name: t.Name, Count: t.Count}
	}
	return out
}
