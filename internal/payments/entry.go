// Package payments drives the record-payment form for an existing order.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

const FallbackMessage = "Failed to record payment"

var (
	ErrNotOpen          = errors.New("payment entry is not open")
	ErrExceedsBalance   = errors.New("amount exceeds remaining balance")
	ErrPaymentInFlight  = errors.New("payment submission already in progress")
	errAmountNotNumeric = errors.New("amount is not a number")
)

// PaymentAPI records a payment with the backend.
type PaymentAPI interface {
	RecordPayment(ctx context.Context, req validation.PaymentUpdateRequest) (*orders.Order, error)
}

// View is the form as rendered.
type View struct {
	Open       bool              `json:"open"`
	OrderID    string            `json:"orderId,omitempty"`
	Balance    float64           `json:"balance"`
	Amount     string            `json:"amount"`
	Method     string            `json:"paymentMethod"`
	Date       string            `json:"paymentDate"`
	Note       string            `json:"paymentNote"`
	Errors     map[string]string `json:"errors,omitempty"`
	Error      string            `json:"error,omitempty"`
	Submitting bool              `json:"submitting"`
}

// Entry is the payment form for one order at a time.
type Entry struct {
	api       PaymentAPI
	validator *validation.Validator
	nowFunc   func() time.Time

	mu         sync.Mutex
	open       bool
	order      orders.Order
	amount     string
	method     string
	date       string
	note       string
	errors     map[string]string
	failure    string
	submitting bool
}

func NewEntry(api PaymentAPI, v *validation.Validator) *Entry {
	return &Entry{api: api, validator: v, nowFunc: time.Now, errors: map[string]string{}}
}

// Open shows the form for o with defaults: no amount, cash, today.
func (e *Entry) Open(o orders.Order) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = true
	e.order = o
	e.amount = ""
	e.method = validation.MethodCash
	e.date = e.nowFunc().Format(validation.DateLayout)
	e.note = ""
	e.errors = map[string]string{}
	e.failure = ""
	e.submitting = false
}

// Close hides the form.
func (e *Entry) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = false
	e.order = orders.Order{}
}

func (e *Entry) balance() decimal.Decimal {
	return decimal.NewFromFloat(e.order.TotalAmount).Sub(decimal.NewFromFloat(e.order.PaidAmount))
}

func (e *Entry) exceedsMessage() string {
	return "Amount cannot exceed the remaining balance of " + FormatINR(e.balance())
}

// TypeAmount handles a keystroke in the amount field. A value above the
// remaining balance is refused: the previous amount stays and an inline
// error is shown.
func (e *Entry) TypeAmount(s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return ErrNotOpen
	}
	if v, err := parseAmount(s); err == nil && v.GreaterThan(e.balance()) {
		e.errors["additionalPayment"] = e.exceedsMessage()
		return ErrExceedsBalance
	}
	e.amount = s
	delete(e.errors, "additionalPayment")
	return nil
}

// SetAmount writes the amount without the keystroke check, as a paste or
// programmatic fill would.
func (e *Entry) SetAmount(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.amount = s
	delete(e.errors, "additionalPayment")
}

// Blur clamps an amount above the remaining balance down to it.
func (e *Entry) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, err := parseAmount(e.amount); err == nil && v.GreaterThan(e.balance()) {
		e.amount = e.balance().String()
		delete(e.errors, "additionalPayment")
	}
}

func (e *Entry) SetMethod(m string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.method = m
	delete(e.errors, "paymentMethod")
}

func (e *Entry) SetDate(d string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.date = d
	delete(e.errors, "paymentDate")
}

func (e *Entry) SetNote(n string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.note = n
	delete(e.errors, "paymentNote")
}

func (e *Entry) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := View{
		Open:       e.open,
		OrderID:    e.order.OrderID,
		Balance:    e.balance().InexactFloat64(),
		Amount:     e.amount,
		Method:     e.method,
		Date:       e.date,
		Note:       e.note,
		Error:      e.failure,
		Submitting: e.submitting,
	}
	if len(e.errors) > 0 {
		v.Errors = make(map[string]string, len(e.errors))
		for k, m := range e.errors {
			v.Errors[k] = m
		}
	}
	return v
}

// Submit re-checks the form and records the payment. On success the form
// closes and the updated order is returned; on failure it stays open with the
// error shown inline.
func (e *Entry) Submit(ctx context.Context) (*orders.Order, error) {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return nil, ErrNotOpen
	}
	if e.submitting {
		e.mu.Unlock()
		return nil, ErrPaymentInFlight
	}
	req, errs := e.build()
	if len(errs) > 0 {
		e.errors = errs
		e.mu.Unlock()
		return nil, &apperr.ValidationError{Fields: errs}
	}
	e.failure = ""
	e.submitting = true
	e.mu.Unlock()

	o, err := e.api.RecordPayment(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitting = false
	if err != nil {
		e.failure = apperr.Message(err, FallbackMessage)
		slog.Error("record payment failed", "order_id", req.OrderID, "error", err)
		return nil, err
	}
	slog.Info("payment recorded", "order_id", req.OrderID, "amount", req.AdditionalPayment)
	e.open = false
	e.order = orders.Order{}
	return o, nil
}

// build validates the form and returns the request. Caller holds e.mu.
func (e *Entry) build() (validation.PaymentUpdateRequest, map[string]string) {
	errs := map[string]string{}
	amount, err := parseAmount(e.amount)
	switch {
	case err != nil:
		errs["additionalPayment"] = "Please enter a valid amount"
	case !amount.IsPositive():
		errs["additionalPayment"] = "Amount must be greater than 0"
	case amount.GreaterThan(e.balance()):
		errs["additionalPayment"] = e.exceedsMessage()
	}

	req := validation.PaymentUpdateRequest{
		OrderID:           e.order.OrderID,
		AdditionalPayment: amount.InexactFloat64(),
		PaymentMethod:     e.method,
		PaymentNote:       strings.TrimSpace(e.note),
	}
	if t, ok := validation.ParseDate(e.date, time.Local); ok {
		req.PaymentDate = t.Format(validation.DateLayout)
	} else {
		req.PaymentDate = e.date
	}

	if res := e.validator.Check(req); !res.IsValid {
		for k, m := range res.Errors {
			if _, seen := errs[k]; !seen {
				errs[k] = m
			}
		}
	}
	return req, errs
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errAmountNotNumeric
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errAmountNotNumeric, err)
	}
	return d, nil
}
