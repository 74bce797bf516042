package handler

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/pos-console/internal/domain/catalog"
	"github.com/xenking/pos-console/internal/domain/customer"
	"github.com/xenking/pos-console/internal/domain/order"
	"github.com/xenking/pos-console/internal/session"
)

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type itemResponse struct {
	ID       int64            `json:"id"`
	Code     string           `json:"code"`
	Name     string           `json:"name"`
	Price    float64          `json:"price"`
	Stock    int              `json:"stock"`
	DoExpire string           `json:"doexpire"`
	Category categoryResponse `json:"category"`
}

type lineResponse struct {
	Index     int     `json:"index"`
	ItemID    int64   `json:"itemId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type entryResponse struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Discount string `json:"discount"`
}

type cartResponse struct {
	Lines           []lineResponse `json:"lines"`
	Count           int            `json:"count"`
	RawTotal        float64        `json:"rawTotal"`
	Discount        float64        `json:"discount"`
	DiscountedTotal float64        `json:"discountedTotal"`
	Customer        entryResponse  `json:"customer"`
}

type customerResponse struct {
	ID            *int64 `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	LoyaltyPoints int    `json:"loyaltyPoints"`
	Preferences   string `json:"preferences,omitempty"`
}

type orderItemResponse struct {
	ItemID    int64   `json:"itemId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type orderResponse struct {
	ID       int64               `json:"id"`
	Code     string              `json:"code"`
	Datetime string              `json:"datetime"`
	Customer customerResponse    `json:"customer"`
	Items    []orderItemResponse `json:"items"`
	Subtotal float64             `json:"subtotal"`
	Discount float64             `json:"discount"`
	Total    float64             `json:"total"`
}

type placeOrderResponse struct {
	Message         string        `json:"message"`
	Order           orderResponse `json:"order"`
	CustomerCreated bool          `json:"customerCreated"`
	CodeFellBack    bool          `json:"codeFellBack"`
	Cart            cartResponse  `json:"cart"`
}

// money rounds an amount to cents for display.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toCategory(c catalog.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}

func toItem(it catalog.Item) itemResponse {
	return itemResponse{
		ID:       it.ID,
		Code:     it.Code,
		Name:     it.Name,
		Price:    money(it.Price),
		Stock:    it.Stock,
		DoExpire: it.DoExpire,
		Category: toCategory(it.Category),
	}
}

func toItems(items []catalog.Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = toItem(it)
	}
	return out
}

func toCart(v session.View) cartResponse {
	lines := make([]lineResponse, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = lineResponse{
			Index:     i,
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: money(l.UnitPrice),
			Quantity:  l.Quantity,
			LineTotal: money(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))),
		}
	}
	return cartResponse{
		Lines:           lines,
		Count:           v.Count,
		RawTotal:        money(v.RawTotal),
		Discount:        money(v.Discount),
		DiscountedTotal: money(v.DiscountedTotal),
		Customer: entryResponse{
			Name:     v.Entry.CustomerName,
			Phone:    v.Entry.Phone,
			Discount: v.Entry.Discount,
		},
	}
}

func toCustomer(c customer.Customer) customerResponse {
	return customerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		LoyaltyPoints: c.LoyaltyPoints,
		Preferences:   c.Preferences,
	}
}

func toOrder(o order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ItemID:    it.Item.ID,
			Name:      it.Item.Name,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			LineTotal: money(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		}
	}
	return orderResponse{
		ID:       o.ID,
		Code:     o.Code,
		Datetime: o.Datetime,
		Customer: toCustomer(o.Customer),
		Items:    items,
		Subtotal: money(o.Subtotal()),
		Discount: money(o.Discount),
		Total:    money(o.Total),
	}
}
