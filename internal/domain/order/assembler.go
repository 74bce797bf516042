package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/pos-console/internal/domain/cart"
	"github.com/xenking/pos-console/internal/domain/customer"
	"github.com/xenking/pos-console/internal/domain/ordercode"
)

// CodeSource issues the code of the next order.
type CodeSource interface {
	Next() ordercode.Result
}

// AssemblerConfig holds the fixed references stamped on every order and the
// telemetry providers. Nil providers disable telemetry.
type AssemblerConfig struct {
	Admin          Reference
	PaymentMethod  Reference
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// PlaceRequest is the client-side state a placement reads and, on success,
// clears.
type PlaceRequest struct {
	Cart  *cart.Cart
	Codes CodeSource
	Entry *Entry
}

// PlaceResult holds the outcome of a successful placement.
type PlaceResult struct {
	Order           *Order
	Draft           *Draft
	CustomerCreated bool
	CodeFellBack    bool
}

// Assembler turns a cart and a customer entry into a submitted order.
//
// Steps run strictly one after another and none is retried. Customer
// find-or-create and order submission are two separate backend writes: if
// submission fails after a customer was created, that customer stays behind
// without an order (reported through StepError.OrphanCustomer).
type Assembler struct {
	customers customer.Directory
	orders    Gateway
	admin     Reference
	payment   Reference
	now       func() time.Time

	tracer    trace.Tracer
	placed    metric.Int64Counter
	failed    metric.Int64Counter
	created   metric.Int64Counter
	fallbacks metric.Int64Counter
}

// NewAssembler creates an Assembler backed by the given customer directory
// and order gateway.
func NewAssembler(customers customer.Directory, orders Gateway, cfg AssemblerConfig) (*Assembler, error) {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	meter := mp.Meter("pos-console/order")

	a := &Assembler{
		customers: customers,
		orders:    orders,
		admin:     cfg.Admin,
		payment:   cfg.PaymentMethod,
		now:       time.Now,
		tracer:    tp.Tracer("pos-console/order"),
	}

	var err error
	if a.placed, err = meter.Int64Counter("pos.orders.placed",
		metric.WithDescription("Orders accepted by the backend")); err != nil {
		return nil, errors.Wrap(err, "orders placed counter")
	}
	if a.failed, err = meter.Int64Counter("pos.orders.failed",
		metric.WithDescription("Placements aborted at a backend step")); err != nil {
		return nil, errors.Wrap(err, "orders failed counter")
	}
	if a.created, err = meter.Int64Counter("pos.customers.created",
		metric.WithDescription("Customers created during placement")); err != nil {
		return nil, errors.Wrap(err, "customers created counter")
	}
	if a.fallbacks, err = meter.Int64Counter("pos.ordercode.fallbacks",
		metric.WithDescription("Order codes replaced by the fallback default")); err != nil {
		return nil, errors.Wrap(err, "order code fallbacks counter")
	}

	return a, nil
}

// Place validates the request, resolves the customer, builds the draft and
// submits it. On success the cart and the entry are cleared. On failure
// neither is touched.
func (a *Assembler) Place(ctx context.Context, req PlaceRequest) (*PlaceResult, error) {
	if err := req.Entry.validate(); err != nil {
		return nil, err
	}
	if req.Cart.IsEmpty() {
		return nil, &ValidationError{Field: "cart", Message: "cart is empty"}
	}

	ctx, span := a.tracer.Start(ctx, "order.Place")
	defer span.End()

	lg := zctx.From(ctx)
	name := strings.TrimSpace(req.Entry.CustomerName)
	phone := strings.TrimSpace(req.Entry.Phone)

	cust, createdCust, err := a.resolveCustomer(ctx, name, phone)
	if err != nil {
		return nil, a.fail(ctx, span, err)
	}
	if createdCust {
		a.created.Add(ctx, 1)
	}

	code := req.Codes.Next()
	if code.FellBack {
		a.fallbacks.Add(ctx, 1)
		lg.Warn("Order code fell back to default",
			zap.String("code", code.Code),
			zap.Error(code.Reason),
		)
	}
	span.SetAttributes(attribute.String("order.code", code.Code))

	draft := a.buildDraft(req, code.Code, cust, name)

	span.AddEvent("submit order")
	created, err := a.orders.Create(ctx, draft)
	if err != nil {
		stepErr := &StepError{Step: StepSubmitOrder, Err: err}
		if createdCust {
			stepErr.OrphanCustomer = cust
			lg.Warn("Customer created without order", zap.String("customer", name))
		}
		return nil, a.fail(ctx, span, stepErr)
	}
	if created == nil {
		created = &Order{Code: draft.Code}
	}

	req.Cart.Clear()
	req.Entry.Reset()
	a.placed.Add(ctx, 1)

	lg.Info("Order placed",
		zap.String("code", draft.Code),
		zap.Int64("order_id", created.ID),
		zap.Bool("customer_created", createdCust),
	)

	return &PlaceResult{
		Order:           created,
		Draft:           draft,
		CustomerCreated: createdCust,
		CodeFellBack:    code.FellBack,
	}, nil
}

// resolveCustomer looks the customer up by exact name and creates it when the
// lookup finds nothing.
func (a *Assembler) resolveCustomer(ctx context.Context, name, phone string) (*customer.Customer, bool, error) {
	span := trace.SpanFromContext(ctx)

	span.AddEvent("lookup customer")
	found, err := a.customers.FindByName(ctx, name)
	switch {
	case err == nil:
		return found, false, nil
	case !errors.Is(err, customer.ErrNotFound):
		return nil, false, &StepError{Step: StepLookupCustomer, Err: err}
	}

	span.AddEvent("create customer")
	created, err := a.customers.Create(ctx, customer.NewCustomer{Name: name, Phone: phone})
	if err != nil {
		return nil, false, &StepError{Step: StepCreateCustomer, Err: err}
	}
	if created == nil {
		// Backend accepted the customer but sent nothing back.
		created = &customer.Customer{}
	}
	if created.ID == nil {
		zctx.From(ctx).Warn("Created customer has no id", zap.String("customer", name))
	}
	return created, true, nil
}

func (a *Assembler) buildDraft(req PlaceRequest, code string, cust *customer.Customer, name string) *Draft {
	lines := req.Cart.Snapshot()
	discount := cart.ParseDiscount(req.Entry.Discount)

	items := make([]DraftItem, len(lines))
	for i, l := range lines {
		items[i] = DraftItem{ItemID: l.ItemID, Quantity: l.Quantity}
	}

	custName := cust.Name
	if custName == "" {
		custName = name
	}

	return &Draft{
		Code:          code,
		Datetime:      a.now(),
		Discount:      discount.Round(2),
		Total:         cart.DiscountedTotal(lines, discount).Round(2),
		Customer:      Reference{ID: cust.ID, Name: custName},
		Admin:         a.admin,
		PaymentMethod: a.payment,
		Items:         items,
	}
}

func (a *Assembler) fail(ctx context.Context, span trace.Span, err error) error {
	a.failed.Add(ctx, 1)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
