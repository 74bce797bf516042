package handler

import (
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xenking/pos-console/internal/domain/catalog"
	"github.com/xenking/pos-console/internal/domain/customer"
)

type consoleResponse struct {
	Menu       []itemResponse     `json:"menu"`
	Categories []categoryResponse `json:"categories"`
	Customers  []customerResponse `json:"customers"`
	Cart       cartResponse       `json:"cart"`
	OrderCode  orderCodeResponse  `json:"orderCode"`
}

// Console returns everything the console shows on load. The menu, category
// and customer lists are fetched from the backend concurrently.
func (h *Handler) Console(w http.ResponseWriter, r *http.Request) {
	var (
		items      []catalog.Item
		categories []catalog.Category
		customers  []customer.Customer
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		items, err = h.catalog.ListItems(ctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = h.catalog.ListCategories(ctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = h.customers.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}

	resp := consoleResponse{
		Menu:       toItems(items),
		Categories: make([]categoryResponse, len(categories)),
		Customers:  make([]customerResponse, len(customers)),
		Cart:       toCart(h.session.View()),
		OrderCode:  codeResponse(h.session.Codes()),
	}
	for i, c := range categories {
		resp.Categories[i] = toCategory(c)
	}
	for i, c := range customers {
		resp.Customers[i] = toCustomer(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Menu lists items. The category query parameter filters by category id and
// takes precedence over q, a name search. Without either the whole menu is
// returned.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	var (
		items []catalog.Item
		err   error
	)

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	switch {
	case category != "":
		id, perr := strconv.ParseInt(category, 10, 64)
		if perr != nil {
			writeError(w, r, &badRequestError{msg: "invalid category " + strconv.Quote(category)})
			return
		}
		items, err = h.catalog.ListItemsByCategory(r.Context(), id)
	case term != "":
		items, err = h.catalog.SearchItems(r.Context(), term)
	default:
		items, err = h.catalog.ListItems(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItems(items))
}

// Categories lists the menu categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategory(c)
	}
	writeJSON(w, http.StatusOK, resp)
}
