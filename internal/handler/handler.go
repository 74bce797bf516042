package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/pos-console/internal/domain/catalog"
	"github.com/xenking/pos-console/internal/domain/customer"
	"github.com/xenking/pos-console/internal/domain/order"
	"github.com/xenking/pos-console/internal/domain/ordercode"
	"github.com/xenking/pos-console/internal/session"
)

// Handler serves the console API over one session, delegating backend reads
// to the catalog, customer and order ports.
type Handler struct {
	catalog   catalog.Repository
	customers customer.Directory
	orders    order.Gateway
	session   *session.Session
	now       func() time.Time
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	catalog catalog.Repository,
	customers customer.Directory,
	orders order.Gateway,
	sess *session.Session,
) *Handler {
	return &Handler{
		catalog:   catalog,
		customers: customers,
		orders:    orders,
		session:   sess,
		now:       time.Now,
	}
}

// Routes returns the console API router. Paths are relative to the mount
// point.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/console", h.Console)
	r.Get("/menu", h.Menu)
	r.Get("/categories", h.Categories)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.Cart)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{index}", h.SetQuantity)
		r.Delete("/items/{index}", h.RemoveItem)
		r.Put("/discount", h.SetDiscount)
		r.Put("/customer", h.SetCustomer)
		r.Put("/customer/{id}", h.SelectCustomer)
	})

	r.Get("/customers", h.Customers)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.PlaceOrder)
		r.Get("/{id}", h.GetOrder)
		r.Delete("/{id}", h.DeleteOrder)
	})

	r.Get("/report", h.Report)

	r.Get("/order-code", h.OrderCode)
	r.Post("/order-code/refresh", h.RefreshOrderCode)

	return r
}

// OrderCode reports the sequencer state without advancing it.
func (h *Handler) OrderCode(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, codeResponse(h.session.Codes()))
}

// RefreshOrderCode re-seeds the sequencer from the backend.
func (h *Handler) RefreshOrderCode(w http.ResponseWriter, r *http.Request) {
	if err := h.session.SeedCode(r.Context(), h.orders); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codeResponse(h.session.Codes()))
}

type orderCodeResponse struct {
	Current string `json:"current"`
	Ready   bool   `json:"ready"`
}

func codeResponse(s *ordercode.Sequencer) orderCodeResponse {
	return orderCodeResponse{Current: s.Current(), Ready: s.Ready()}
}

// badRequestError is a malformed console API request.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string {
	return e.msg
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &badRequestError{msg: "invalid request body: " + err.Error()}
	}
	return nil
}

func intParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &badRequestError{msg: fmt.Sprintf("invalid %s %q", name, raw)}
	}
	return v, nil
}

// fieldText returns a JSON value as the text a form field would hold: strings
// are unquoted, anything else is kept as written.
func fieldText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
