package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/pos-console/internal/domain/catalog"
	"github.com/xenking/pos-console/internal/domain/customer"
	"github.com/xenking/pos-console/internal/domain/order"
	"github.com/xenking/pos-console/internal/domain/ordercode"
	"github.com/xenking/pos-console/internal/session"
)

// --- Mock implementations ---

type mockCatalog struct {
	items      []catalog.Item
	categories []catalog.Category
	listErr    error
}

func (m *mockCatalog) ListItems(_ context.Context) ([]catalog.Item, error) {
	return m.items, m.listErr
}

func (m *mockCatalog) GetItem(_ context.Context, id int64) (*catalog.Item, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			it := m.items[i]
			return &it, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *mockCatalog) ListItemsByCategory(_ context.Context, categoryID int64) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, it := range m.items {
		if it.Category.ID == categoryID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockCatalog) SearchItems(_ context.Context, term string) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, it := range m.items {
		if strings.Contains(strings.ToLower(it.Name), strings.ToLower(term)) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockCatalog) ListCategories(_ context.Context) ([]catalog.Category, error) {
	return m.categories, nil
}

type mockDirectory struct {
	mu        sync.Mutex
	byName    map[string]customer.Customer
	createErr error
	nextID    int64
}

func (m *mockDirectory) FindByName(_ context.Context, name string) (*customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byName[name]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}

func (m *mockDirectory) Create(_ context.Context, nc customer.NewCustomer) (*customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	id := m.nextID
	c := customer.Customer{ID: &id, Name: nc.Name, Phone: nc.Phone}
	m.byName[nc.Name] = c
	return &c, nil
}

func (m *mockDirectory) List(_ context.Context) ([]customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]customer.Customer, 0, len(m.byName))
	for _, c := range m.byName {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockDirectory) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byName {
		if c.ID != nil && *c.ID == id {
			return &c, nil
		}
	}
	return nil, customer.ErrNotFound
}

type mockGateway struct {
	mu        sync.Mutex
	code      string
	codeErr   error
	createErr error
	drafts    []*order.Draft
	orders    map[int64]order.Order
	history   []order.Order
	listErr   error
}

func (m *mockGateway) CurrentCode(_ context.Context) (string, error) {
	return m.code, m.codeErr
}

func (m *mockGateway) Create(_ context.Context, d *order.Draft) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.drafts = append(m.drafts, d)
	o := order.Order{
		ID:       int64(100 + len(m.drafts)),
		Code:     d.Code,
		Discount: d.Discount,
		Total:    d.Total,
	}
	m.orders[o.ID] = o
	return &o, nil
}

func (m *mockGateway) submitted() []*order.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*order.Draft(nil), m.drafts...)
}

func (m *mockGateway) List(_ context.Context) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.history != nil {
		return m.history, nil
	}
	out := make([]order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockGateway) GetByID(_ context.Context, id int64) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (m *mockGateway) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return order.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// --- Helpers ---

var testNow = time.Date(2025, 3, 14, 18, 0, 0, 0, time.Local)

type testEnv struct {
	catalog   *mockCatalog
	customers *mockDirectory
	orders    *mockGateway
	session   *session.Session
	handler   *Handler
	server    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mains := catalog.Category{ID: 1, Name: "Mains"}
	sides := catalog.Category{ID: 2, Name: "Sides"}
	env := &testEnv{
		catalog: &mockCatalog{
			items: []catalog.Item{
				{ID: 1, Code: "B1", Name: "Burger", Price: decimal.NewFromInt(500), Stock: 10, Category: mains},
				{ID: 2, Code: "F1", Name: "Fries", Price: decimal.NewFromInt(150), Stock: 20, Category: sides},
			},
			categories: []catalog.Category{mains, sides},
		},
		customers: &mockDirectory{byName: map[string]customer.Customer{}},
		orders:    &mockGateway{code: "ORD-2025-0042", orders: map[int64]order.Order{}},
	}

	assembler, err := order.NewAssembler(env.customers, env.orders, order.AssemblerConfig{
		Admin:         order.Reference{Name: "admin"},
		PaymentMethod: order.Reference{Name: "Cash"},
	})
	require.NoError(t, err)

	env.session = session.New(ordercode.NewSequencer(""), assembler)
	require.NoError(t, env.session.SeedCode(context.Background(), env.orders))

	env.handler = NewHandler(env.catalog, env.customers, env.orders, env.session)
	env.handler.now = func() time.Time { return testNow }
	env.server = httptest.NewServer(env.handler.Routes())
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeAs[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (e *testEnv) fillCart(t *testing.T) {
	t.Helper()
	status, _ := e.do(t, http.MethodPost, "/cart/items", `{"itemId":1}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodPost, "/cart/items", `{"itemId":1}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodPost, "/cart/items", `{"itemId":2}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodPatch, "/cart/items/1", `{"quantity":"2"}`)
	require.Equal(t, http.StatusOK, status)
}

// --- Tests ---

func TestConsole(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/console", "")
	require.Equal(t, http.StatusOK, status)

	resp := decodeAs[consoleResponse](t, body)
	assert.Len(t, resp.Menu, 2)
	assert.Len(t, resp.Categories, 2)
	assert.Empty(t, resp.Cart.Lines)
	assert.Equal(t, orderCodeResponse{Current: "ORD-2025-0042", Ready: true}, resp.OrderCode)
}

func TestConsole_BackendError(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.listErr = errors.New("connection refused")

	status, body := env.do(t, http.MethodGet, "/console", "")
	require.Equal(t, http.StatusBadGateway, status)

	resp := decodeAs[errorResponse](t, body)
	assert.Contains(t, resp.Message, "connection refused")
}

func TestMenu(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNames  []string
	}{
		{name: "all", query: "", wantStatus: http.StatusOK, wantNames: []string{"Burger", "Fries"}},
		{name: "blank filters mean all", query: "?category=%20&q=", wantStatus: http.StatusOK, wantNames: []string{"Burger", "Fries"}},
		{name: "by category", query: "?category=2", wantStatus: http.StatusOK, wantNames: []string{"Fries"}},
		{name: "category wins over search", query: "?category=1&q=fri", wantStatus: http.StatusOK, wantNames: []string{"Burger"}},
		{name: "search", query: "?q=burg", wantStatus: http.StatusOK, wantNames: []string{"Burger"}},
		{name: "invalid category", query: "?category=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, "/menu"+tt.query, "")
			require.Equal(t, tt.wantStatus, status, string(body))
			if tt.wantStatus != http.StatusOK {
				return
			}

			items := decodeAs[[]itemResponse](t, body)
			names := make([]string, len(items))
			for i, it := range items {
				names[i] = it.Name
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestCart_Flow(t *testing.T) {
	env := newTestEnv(t)
	env.fillCart(t)

	status, body := env.do(t, http.MethodPut, "/cart/discount", `{"discount":100}`)
	require.Equal(t, http.StatusOK, status)

	cart := decodeAs[cartResponse](t, body)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 2, cart.Lines[1].Quantity)
	assert.Equal(t, 4, cart.Count)
	assert.InDelta(t, 1300, cart.RawTotal, 0.001)
	assert.InDelta(t, 1200, cart.DiscountedTotal, 0.001)
	assert.Equal(t, "100", cart.Customer.Discount)

	status, body = env.do(t, http.MethodDelete, "/cart/items/0", "")
	require.Equal(t, http.StatusOK, status)
	cart = decodeAs[cartResponse](t, body)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Fries", cart.Lines[0].Name)
	assert.InDelta(t, 200, cart.DiscountedTotal, 0.001)
}

func TestCart_QuantityClamp(t *testing.T) {
	env := newTestEnv(t)
	env.fillCart(t)

	for _, q := range []string{`0`, `-4`, `"abc"`, `""`, `null`} {
		t.Run(q, func(t *testing.T) {
			status, body := env.do(t, http.MethodPatch, "/cart/items/0", `{"quantity":`+q+`}`)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, 1, decodeAs[cartResponse](t, body).Lines[0].Quantity)
		})
	}
}

func TestCart_OutOfRangeIndexIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.fillCart(t)

	status, body := env.do(t, http.MethodDelete, "/cart/items/9", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeAs[cartResponse](t, body).Lines, 2)

	status, _ = env.do(t, http.MethodDelete, "/cart/items/x", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCart_AddUnknownItem(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/cart/items", `{"itemId":99}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPost, "/cart/items", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCart_SelectCustomer(t *testing.T) {
	env := newTestEnv(t)
	id := int64(5)
	env.customers.byName["Ann"] = customer.Customer{ID: &id, Name: "Ann", Phone: "555"}

	status, body := env.do(t, http.MethodPut, "/cart/customer/5", "")
	require.Equal(t, http.StatusOK, status)
	cart := decodeAs[cartResponse](t, body)
	assert.Equal(t, entryResponse{Name: "Ann", Phone: "555", Discount: "0"}, cart.Customer)

	status, _ = env.do(t, http.MethodPut, "/cart/customer/6", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	env.fillCart(t)
	env.do(t, http.MethodPut, "/cart/discount", `{"discount":"100"}`)
	env.do(t, http.MethodPut, "/cart/customer", `{"name":"Ann","phone":"555"}`)

	status, body := env.do(t, http.MethodPost, "/orders", "")
	require.Equal(t, http.StatusCreated, status, string(body))

	resp := decodeAs[placeOrderResponse](t, body)
	assert.Equal(t, "Order #101 placed successfully", resp.Message)
	assert.Equal(t, "ORD-2025-0043", resp.Order.Code)
	assert.InDelta(t, 1200, resp.Order.Total, 0.001)
	assert.True(t, resp.CustomerCreated)
	assert.False(t, resp.CodeFellBack)
	assert.Empty(t, resp.Cart.Lines)
	assert.Equal(t, entryResponse{Discount: "0"}, resp.Cart.Customer)

	drafts := env.orders.submitted()
	require.Len(t, drafts, 1)
	assert.Equal(t, "Ann", drafts[0].Customer.Name)

	status, body = env.do(t, http.MethodGet, "/order-code", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ORD-2025-0043", decodeAs[orderCodeResponse](t, body).Current)
}

func TestPlaceOrder_Validation(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/orders", "")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "customerName", decodeAs[errorResponse](t, body).Field)

	env.do(t, http.MethodPut, "/cart/customer", `{"name":"Ann","phone":"555"}`)
	status, body = env.do(t, http.MethodPost, "/orders", "")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "cart", decodeAs[errorResponse](t, body).Field)

	assert.Empty(t, env.orders.submitted())
}

func TestPlaceOrder_SubmitFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	env.orders.createErr = errors.New("backend unavailable")
	env.fillCart(t)
	env.do(t, http.MethodPut, "/cart/customer", `{"name":"Bob","phone":"777"}`)

	status, body := env.do(t, http.MethodPost, "/orders", "")
	require.Equal(t, http.StatusBadGateway, status)

	resp := decodeAs[errorResponse](t, body)
	assert.Equal(t, string(order.StepSubmitOrder), resp.Step)
	assert.True(t, resp.OrphanCustomer)

	status, body = env.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, status)
	cart := decodeAs[cartResponse](t, body)
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, "Bob", cart.Customer.Name)
}

func TestOrders_GetAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.orders.orders[7] = order.Order{ID: 7, Code: "ORD-2025-0007", Total: decimal.NewFromInt(300)}

	status, body := env.do(t, http.MethodGet, "/orders/7", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ORD-2025-0007", decodeAs[orderResponse](t, body).Code)

	status, _ = env.do(t, http.MethodGet, "/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodDelete, "/orders/7", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = env.do(t, http.MethodGet, "/orders/7", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeAs[[]orderResponse](t, body))
}

func TestRefreshOrderCode(t *testing.T) {
	env := newTestEnv(t)
	env.orders.code = "ORD-2025-0100"

	status, body := env.do(t, http.MethodPost, "/order-code/refresh", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, orderCodeResponse{Current: "ORD-2025-0100", Ready: true}, decodeAs[orderCodeResponse](t, body))

	env.orders.codeErr = errors.New("timeout")
	status, _ = env.do(t, http.MethodPost, "/order-code/refresh", "")
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestFieldText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `"12"`, want: "12"},
		{raw: `12.5`, want: "12.5"},
		{raw: `null`, want: ""},
		{raw: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldText(json.RawMessage(tt.raw)))
		})
	}
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)

	ann := customer.Customer{Name: "Ann"}
	burger := catalog.Item{ID: 1, Name: "Burger"}
	fries := catalog.Item{ID: 2, Name: "Fries"}
	env.orders.mu.Lock()
	env.orders.history = []order.Order{
		{ID: 1, Code: "ORD-2025-0001", Datetime: "2025-03-13T12:00:00", Customer: ann,
			Total: decimal.NewFromInt(900), Items: []order.Item{{Item: burger, Quantity: 9}}},
		{ID: 2, Code: "ORD-2025-0002", Datetime: "2025-03-14T09:30:00", Customer: ann,
			Total: decimal.RequireFromString("650.50"), Items: []order.Item{{Item: burger, Quantity: 1}, {Item: fries, Quantity: 1}}},
		{ID: 3, Code: "ORD-2025-0003", Datetime: "2025-03-14T11:05:00",
			Total: decimal.NewFromInt(300), Items: []order.Item{{Item: fries, Quantity: 2}}},
	}
	env.orders.mu.Unlock()

	status, body := env.do(t, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, status)

	resp := decodeAs[reportResponse](t, body)
	assert.Equal(t, "2025-03-14", resp.Date)
	assert.True(t, resp.Daily)
	assert.Equal(t, 2, resp.TotalCustomers)
	assert.Equal(t, 2, resp.TotalOrders)
	assert.InDelta(t, 950.50, resp.TotalRevenue, 0.001)
	assert.Equal(t, []tallyResponse{{Name: "Ann", Count: 1}, {Name: "Unknown Customer", Count: 1}}, resp.Customers)
	assert.Equal(t, []tallyResponse{{Name: "Fries", Count: 3}, {Name: "Burger", Count: 1}}, resp.Items)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "ORD-2025-0002", resp.Transactions[0].Code)
}

func TestReport_BackendError(t *testing.T) {
	env := newTestEnv(t)
	env.orders.mu.Lock()
	env.orders.listErr = errors.New("connection refused")
	env.orders.mu.Unlock()

	status, _ := env.do(t, http.MethodGet, "/report", "")
	assert.Equal(t, http.StatusBadGateway, status)
}
