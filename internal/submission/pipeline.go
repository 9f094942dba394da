// Package submission turns a valid draft into a create-order call and applies
// the outcome back to the draft and the banner.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/draft"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

const (
	SuccessMessage  = "Order created successfully!"
	FallbackMessage = "Failed to create order"
)

// ErrSubmitInProgress is returned while a previous submission is awaiting the
// backend.
var ErrSubmitInProgress = errors.New("order submission already in progress")

// OrderAPI is the create-order side of the backend client.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req validation.CreateOrderRequest) (*orders.Order, error)
}

// Banner shows the outcome to the user.
type Banner interface {
	Success(msg string, dismissAfter time.Duration)
	Error(msg string)
}

// Pipeline submits one draft at a time. guard must be the lock that protects
// the draft; it is held while the draft is read or reset but released for
// the duration of the backend call.
type Pipeline struct {
	api         OrderAPI
	validator   *validation.Validator
	banner      Banner
	bannerDelay time.Duration
	guard       sync.Locker
	onSuccess   func(ctx context.Context, o *orders.Order)
	observe     func(State)

	mu    sync.Mutex
	state State
	err   string
}

type Option func(*Pipeline)

// WithRefresh registers a hook run after a successful submission, e.g. to
// reload the orders list.
func WithRefresh(fn func(ctx context.Context, o *orders.Order)) Option {
	return func(p *Pipeline) { p.onSuccess = fn }
}

// WithObserver registers a callback receiving every state the pipeline
// enters.
func WithObserver(fn func(State)) Option {
	return func(p *Pipeline) { p.observe = fn }
}

func New(api OrderAPI, v *validation.Validator, banner Banner, bannerDelay time.Duration, guard sync.Locker, opts ...Option) *Pipeline {
	p := &Pipeline{
		api:         api,
		validator:   v,
		banner:      banner,
		bannerDelay: bannerDelay,
		guard:       guard,
		state:       StateIdle,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// State reports the current state; it is StateSubmitting only while the
// backend call is in flight.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastError is the message of the most recent failed submission.
func (p *Pipeline) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pipeline) enter(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	if p.observe != nil {
		p.observe(s)
	}
}

// Submit validates d and, when valid, creates the order. A rejected draft
// yields *apperr.ValidationError and no backend call. On success the draft
// is reset; on failure it is left untouched.
func (p *Pipeline) Submit(ctx context.Context, d *draft.Draft) (*orders.Order, error) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	p.state = StateValidating
	p.err = ""
	p.mu.Unlock()
	if p.observe != nil {
		p.observe(StateValidating)
	}

	p.guard.Lock()
	if errs := p.validate(d); len(errs) > 0 {
		d.SetErrors(errs)
		fields := d.Errors()
		p.guard.Unlock()
		p.enter(StateRejected)
		p.enter(StateIdle)
		return nil, &apperr.ValidationError{Fields: fields}
	}
	req := BuildPayload(d)
	p.guard.Unlock()

	p.enter(StateSubmitting)
	order, err := p.api.CreateOrder(ctx, req)
	if err != nil {
		msg := apperr.Message(err, FallbackMessage)
		slog.Error("create order failed", "customer_id", req.CustomerID, "error", err)
		p.mu.Lock()
		p.err = msg
		p.mu.Unlock()
		p.banner.Error(msg)
		p.enter(StateFailed)
		p.enter(StateIdle)
		return nil, err
	}

	p.guard.Lock()
	d.Reset()
	p.guard.Unlock()

	slog.Info("order created", "order_id", order.OrderID, "customer_id", order.CustomerID)
	p.banner.Success(SuccessMessage, p.bannerDelay)
	p.enter(StateSucceeded)
	if p.onSuccess != nil {
		p.onSuccess(ctx, order)
	}
	p.enter(StateIdle)
	return order, nil
}

func (p *Pipeline) validate(d *draft.Draft) map[string]string {
	errs := map[string]string{}
	if res := p.validator.ValidateOrderForm(d.Form()); !res.IsValid {
		for k, v := range res.Errors {
			errs[k] = v
		}
	}
	for k, v := range d.Measurements().Validate() {
		errs["measurements."+k] = v
	}
	return errs
}

// BuildPayload converts d into the create-order request. In whole mode the
// whole-order worker is written onto every item here and nowhere else.
func BuildPayload(d *draft.Draft) validation.CreateOrderRequest {
	total := d.Total()
	paid := draft.Coerce(d.AdvancePayment())

	req := validation.CreateOrderRequest{
		DeliveryDate:   isoDate(d.DeliveryDate()),
		TotalAmount:    total.InexactFloat64(),
		PaidAmount:     paid.InexactFloat64(),
		BalanceAmount:  total.Sub(paid).InexactFloat64(),
		Notes:          strings.TrimSpace(d.Notes()),
		AssignmentMode: string(d.Mode()),
	}
	if c := d.Customer(); c != nil {
		req.CustomerID = c.CustomerID
	}
	if m := d.Measurements(); !m.IsEmpty() {
		req.Measurements = &m
	}

	whole := d.Mode() == draft.ModeWhole
	if whole {
		w := d.WholeWorker()
		req.AssignedWorker, req.WorkerName = w.ID, w.Name
	}
	for _, it := range d.Items() {
		w := it.Worker
		if whole {
			w = d.WholeWorker()
		}
		req.Items = append(req.Items, validation.OrderItem{
			Type:           strings.TrimSpace(it.Name),
			Fabric:         strings.TrimSpace(it.Fabric),
			Quantity:       int(draft.Coerce(it.Quantity).IntPart()),
			Price:          draft.Coerce(it.Price).InexactFloat64(),
			AssignedWorker: w.ID,
			WorkerName:     w.Name,
		})
	}
	return req
}

func isoDate(s string) string {
	t, ok := validation.ParseDate(s, time.Local)
	if !ok {
		return s
	}
	return t.Format(validation.DateLayout)
}
