package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-console/internal/domain/catalog"
	"github.com/xenking/pos-console/internal/domain/order"
)

// DatetimeLayout is the timestamp format of the order datetime field.
const DatetimeLayout = order.DatetimeLayout

// ErrEmptyCode is returned when the order-code endpoint answers with nothing.
var ErrEmptyCode = errors.New("empty order code")

var _ order.Gateway = (*Orders)(nil)

type referenceJSON struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

type itemRefJSON struct {
	ID int64 `json:"id"`
}

type draftItemJSON struct {
	Item     itemRefJSON `json:"item"`
	Quantity int         `json:"quantity"`
}

type draftJSON struct {
	Code          string          `json:"code"`
	Datetime      string          `json:"datetime"`
	Discount      json.Number     `json:"discount"`
	Total         json.Number     `json:"total"`
	Customer      referenceJSON   `json:"customer"`
	Admin         referenceJSON   `json:"admin"`
	PaymentMethod referenceJSON   `json:"paymentmethod"`
	Items         []draftItemJSON `json:"items"`
}

func newDraftJSON(d *order.Draft) draftJSON {
	items := make([]draftItemJSON, len(d.Items))
	for i, it := range d.Items {
		items[i] = draftItemJSON{Item: itemRefJSON{ID: it.ItemID}, Quantity: it.Quantity}
	}
	return draftJSON{
		Code:          d.Code,
		Datetime:      d.Datetime.Format(DatetimeLayout),
		Discount:      json.Number(d.Discount.String()),
		Total:         json.Number(d.Total.String()),
		Customer:      referenceJSON(d.Customer),
		Admin:         referenceJSON(d.Admin),
		PaymentMethod: referenceJSON(d.PaymentMethod),
		Items:         items,
	}
}

type orderItemJSON struct {
	Item      *itemJSON           `json:"item"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.NullDecimal `json:"unitprice"`
}

type orderJSON struct {
	ID       int64           `json:"id"`
	Code     string          `json:"code"`
	Datetime string          `json:"datetime"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Customer *customerJSON   `json:"customer"`
	Items    []orderItemJSON `json:"items"`
}

func (j orderJSON) domain() order.Order {
	o := order.Order{
		ID:       j.ID,
		Code:     j.Code,
		Datetime: j.Datetime,
		Discount: j.Discount,
		Total:    j.Total,
		Items:    make([]order.Item, 0, len(j.Items)),
	}
	if j.Customer != nil {
		o.Customer = j.Customer.domain()
	}
	for _, it := range j.Items {
		var item catalog.Item
		if it.Item != nil {
			item = it.Item.domain()
		}
		price := item.Price
		if it.UnitPrice.Valid {
			price = it.UnitPrice.Decimal
		}
		o.Items = append(o.Items, order.Item{Item: item, Quantity: it.Quantity, UnitPrice: price})
	}
	return o
}

// Orders implements order.Gateway over the order endpoints.
type Orders struct {
	c *Client
}

// NewOrders returns an Orders gateway that uses the given client.
func NewOrders(c *Client) *Orders {
	return &Orders{c: c}
}

// CurrentCode returns the backend's latest order code. The endpoint answers
// with a JSON string; a bare text answer is accepted as well.
func (r *Orders) CurrentCode(ctx context.Context) (string, error) {
	body, err := r.c.raw(ctx, http.MethodGet, pathf("/orders/get-order-code"), nil)
	if err != nil {
		return "", fmt.Errorf("getting order code: %w", err)
	}
	return decodeCode(body)
}

func decodeCode(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", ErrEmptyCode
	}

	d := jx.DecodeBytes(body)
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return "", errors.Wrap(err, "decode order code")
		}
		if s == "" {
			return "", ErrEmptyCode
		}
		return s, nil
	case jx.Null:
		return "", ErrEmptyCode
	default:
		return string(body), nil
	}
}

// Create submits a new order and returns the stored order. An empty answer
// yields an order that carries only the submitted code.
func (r *Orders) Create(ctx context.Context, d *order.Draft) (*order.Order, error) {
	var j *orderJSON
	if err := r.c.post(ctx, pathf("/orders/add"), newDraftJSON(d), &j); err != nil {
		return nil, fmt.Errorf("creating order %q: %w", d.Code, err)
	}
	if j == nil {
		return &order.Order{Code: d.Code}, nil
	}
	o := j.domain()
	if o.Code == "" {
		o.Code = d.Code
	}
	return &o, nil
}

// List returns all orders.
func (r *Orders) List(ctx context.Context) ([]order.Order, error) {
	var rows []orderJSON
	if err := r.c.get(ctx, pathf("/orders/get-all/list"), &rows); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	out := make([]order.Order, len(rows))
	for i, row := range rows {
		out[i] = row.domain()
	}
	return out, nil
}

// GetByID returns one order or order.ErrNotFound.
func (r *Orders) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var j *orderJSON
	if err := r.c.get(ctx, pathf("/orders/search-by-id/%s", id), &j); err != nil {
		if IsNotFound(err) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	if j == nil {
		return nil, order.ErrNotFound
	}
	o := j.domain()
	return &o, nil
}

// Delete removes an order.
func (r *Orders) Delete(ctx context.Context, id int64) error {
	if err := r.c.do(ctx, http.MethodDelete, pathf("/orders/delete/%s", id), nil, nil); err != nil {
		if IsNotFound(err) {
			return order.ErrNotFound
		}
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	return nil
}
