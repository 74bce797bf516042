package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-console/internal/domain/catalog"
	"github.com/xenking/pos-console/internal/domain/customer"
)

// DatetimeLayout is the timestamp format of the order datetime field. It
// carries no zone.
const DatetimeLayout = "2006-01-02T15:04:05"

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Reference is an {id, name} pair the backend uses to link an order to a
// customer, admin or payment method.
type Reference struct {
	ID   *int64
	Name string
}

// Draft is the payload of a new order. It is built once per submission and
// never mutated afterwards.
type Draft struct {
	Code          string
	Datetime      time.Time
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Customer      Reference
	Admin         Reference
	PaymentMethod Reference
	Items         []DraftItem
}

// DraftItem is one cart line of a Draft.
type DraftItem struct {
	ItemID   int64
	Quantity int
}

// Order is an order as stored by the backend.
type Order struct {
	ID       int64
	Code     string
	Datetime string
	Discount decimal.Decimal
	Total    decimal.Decimal
	Customer customer.Customer
	Items    []Item
}

// Item is a line of a stored order. UnitPrice falls back to the item's
// catalog price when the backend did not record one.
type Item struct {
	Item      catalog.Item
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns the sum of the stored lines before discount.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Gateway is the backend's order endpoint set.
type Gateway interface {
	// CurrentCode returns the backend's latest order code.
	CurrentCode(ctx context.Context) (string, error)
	Create(ctx context.Context, d *Draft) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	Delete(ctx context.Context, id int64) error
}
