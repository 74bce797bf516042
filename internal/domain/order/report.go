package order

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Names used in a report when an order lacks a customer or a line lacks an
// item name.
const (
	UnknownCustomer = "Unknown Customer"
	UnknownItem     = "Unknown Item"
)

// reportTopN is the length of the top customers and top items lists.
const reportTopN = 5

// datetimeLayouts are tried in order when reading an order datetime.
var datetimeLayouts = []string{
	DatetimeLayout,
	time.RFC3339Nano,
	time.DateOnly,
}

// Tally is a name with its count in a report.
type Tally struct {
	Name  string
	Count int
}

// Report is the daily sales summary over the order history.
type Report struct {
	// Daily is true when orders carried dates and only today's were kept.
	Daily          bool
	CustomerCount  int
	OrderCount     int
	Revenue        decimal.Decimal
	CustomerOrders []Tally
	ItemQuantities []Tally
	TopCustomers   []Tally
	TopItems       []Tally
	Orders         []Order
}

// BuildReport summarises the orders placed on the day of now. When no order
// carries a readable datetime, all orders are summarised instead. Datetimes
// without a zone are read in now's location.
func BuildReport(orders []Order, now time.Time) Report {
	selected, daily := ordersOfDay(orders, now)

	customers := newTallies()
	items := newTallies()
	revenue := decimal.Zero

	for _, o := range selected {
		name := o.Customer.Name
		if name == "" {
			name = UnknownCustomer
		}
		customers.add(name, 1)
		revenue = revenue.Add(o.Total)

		for _, it := range o.Items {
			itemName := it.Item.Name
			if itemName == "" {
				itemName = UnknownItem
			}
			items.add(itemName, it.Quantity)
		}
	}

	byCustomer := customers.sorted()
	byItem := items.sorted()

	return Report{
		Daily:          daily,
		CustomerCount:  len(byCustomer),
		OrderCount:     len(selected),
		Revenue:        revenue,
		CustomerOrders: byCustomer,
		ItemQuantities: byItem,
		TopCustomers:   byCustomer[:min(reportTopN, len(byCustomer))],
		TopItems:       byItem[:min(reportTopN, len(byItem))],
		Orders:         selected,
	}
}

func ordersOfDay(orders []Order, now time.Time) ([]Order, bool) {
	y, m, d := now.Date()

	var (
		dated bool
		today []Order
	)
	for _, o := range orders {
		at, ok := parseDatetime(o.Datetime, now.Location())
		if !ok {
			continue
		}
		dated = true
		if ay, am, ad := at.In(now.Location()).Date(); ay == y && am == m && ad == d {
			today = append(today, o)
		}
	}
	if !dated {
		return orders, false
	}
	return today, true
}

func parseDatetime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tallies counts by name and remembers first-seen order so equal counts keep
// a stable ranking.
type tallies struct {
	index map[string]int
	list  []Tally
}

func newTallies() *tallies {
	return &tallies{index: make(map[string]int)}
}

func (t *tallies) add(name string, n int) {
	i, ok := t.index[name]
	if !ok {
		i = len(t.list)
		t.index[name] = i
		t.list = append(t.list, Tally{Name: name})
	}
	t.list[i].Count += n
}

func (t *tallies) sorted() []Tally {
	out := slices.Clone(t.list)
	slices.SortStableFunc(out, func(a, b Tally) int {
		return b.Count - a.Count
	})
	return out
}
