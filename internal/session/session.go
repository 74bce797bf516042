// Package session holds the client-side state of one console user: the cart,
// the order-code sequencer and the customer entry form.
//
// A Session lives as long as the console process. Every read and write of the
// cart and entry, including a whole order placement, happens under one lock,
// so two concurrent placements run one after the other. Cart reads and edits
// made while a placement is in flight wait for it to finish, which is bounded
// by the backend client timeout of each placement step.
package session

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/pos-console/internal/domain/cart"
	"github.com/xenking/pos-console/internal/domain/catalog"
	"github.com/xenking/pos-console/internal/domain/order"
	"github.com/xenking/pos-console/internal/domain/ordercode"
)

// CodeFetcher returns the backend's current order code.
type CodeFetcher interface {
	CurrentCode(ctx context.Context) (string, error)
}

// Placer runs an order placement.
type Placer interface {
	Place(ctx context.Context, req order.PlaceRequest) (*order.PlaceResult, error)
}

// View is a consistent snapshot of the cart with its totals.
type View struct {
	Lines           []cart.Line
	Count           int
	RawTotal        decimal.Decimal
	Discount        decimal.Decimal
	DiscountedTotal decimal.Decimal
	Entry           order.Entry
}

// Session is the owned replacement for the page-wide cart and code globals.
type Session struct {
	mu    sync.Mutex
	cart  *cart.Cart
	entry order.Entry
	codes *ordercode.Sequencer

	placer Placer
}

// New creates a session with an empty cart and an unseeded sequencer.
func New(codes *ordercode.Sequencer, placer Placer) *Session {
	s := &Session{
		cart:   cart.New(),
		codes:  codes,
		placer: placer,
	}
	s.entry.Reset()
	return s
}

// SeedCode fetches the backend's current order code and seeds the sequencer.
// A failure leaves the sequencer as it was; placements then use the fallback
// code.
func (s *Session) SeedCode(ctx context.Context, f CodeFetcher) error {
	code, err := f.CurrentCode(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch order code")
	}
	s.codes.Seed(code)
	zctx.From(ctx).Info("Order code seeded", zap.String("code", code))
	return nil
}

// Codes returns the session's sequencer.
func (s *Session) Codes() *ordercode.Sequencer {
	return s.codes
}

// View returns the cart and its totals.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view()
}

// AddItem adds one unit of item to the cart.
func (s *Session) AddItem(item catalog.Item) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Add(item)
	return s.view()
}

// SetQuantity sets a line quantity from raw input.
func (s *Session) SetQuantity(index int, value string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.SetQuantity(index, value)
	return s.view()
}

// RemoveItem removes a line.
func (s *Session) RemoveItem(index int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(index)
	return s.view()
}

// SetDiscount stores the raw discount field.
func (s *Session) SetDiscount(value string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry.Discount = value
	return s.view()
}

// SetCustomer stores the customer name and contact number fields.
func (s *Session) SetCustomer(name, phone string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry.CustomerName = name
	s.entry.Phone = phone
	return s.view()
}

// PlaceOrder runs the placement over the session state.
func (s *Session) PlaceOrder(ctx context.Context) (*order.PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.placer.Place(ctx, order.PlaceRequest{
		Cart:  s.cart,
		Codes: s.codes,
		Entry: &s.entry,
	})
}

func (s *Session) view() View {
	lines := s.cart.Snapshot()
	discount := cart.ParseDiscount(s.entry.Discount)
	return View{
		Lines:           lines,
		Count:           s.cart.Count(),
		RawTotal:        cart.RawTotal(lines),
		Discount:        discount,
		DiscountedTotal: cart.DiscountedTotal(lines, discount),
		Entry:           s.entry,
	}
}
