package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

type mockPaymentAPI struct {
	calls []validation.PaymentUpdateRequest
	err   error
}

func (m *mockPaymentAPI) RecordPayment(ctx context.Context, req validation.PaymentUpdateRequest) (*orders.Order, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return &orders.Order{OrderID: req.OrderID, PaidAmount: 2000 + req.AdditionalPayment}, nil
}

func newTestEntry(api PaymentAPI) *Entry {
	now := func() time.Time { return time.Date(2026, 10, 19, 15, 0, 0, 0, time.Local) }
	e := NewEntry(api, validation.NewWithClock(now))
	e.nowFunc = now
	return e
}

// balance 3000
var testOrder = orders.Order{OrderID: "o-1", TotalAmount: 5000, PaidAmount: 2000}

func TestOpen_Defaults(t *testing.T) {
	e := newTestEntry(&mockPaymentAPI{})
	e.Open(testOrder)
	v := e.View()
	if !v.Open || v.Method != validation.MethodCash || v.Date != "2026-10-19" || v.Amount != "" || v.Balance != 3000 {
		t.Fatalf("unexpected defaults %+v", v)
	}

	e.SetMethod(validation.MethodUPI)
	e.SetNote("partial")
	e.Open(testOrder)
	if v := e.View(); v.Method != validation.MethodCash || v.Note != "" {
		t.Fatalf("reopen should reset, got %+v", v)
	}
}

func TestTypeAmount_RejectsAboveBalance(t *testing.T) {
	e := newTestEntry(&mockPaymentAPI{})
	e.Open(testOrder)
	if err := e.TypeAmount("300"); err != nil {
		t.Fatal(err)
	}
	if err := e.TypeAmount("3001"); !errors.Is(err, ErrExceedsBalance) {
		t.Fatalf("expected ErrExceedsBalance, got %v", err)
	}
	v := e.View()
	if v.Amount != "300" {
		t.Fatalf("keystroke should be refused, amount = %q", v.Amount)
	}
	if !strings.Contains(v.Errors["additionalPayment"], "₹3,000") {
		t.Fatalf("error should quote the maximum: %v", v.Errors)
	}
	if err := e.TypeAmount("3000"); err != nil {
		t.Fatal(err)
	}
	if len(e.View().Errors) != 0 {
		t.Fatalf("error should clear, got %v", e.View().Errors)
	}
}

func TestEdits_ClearFieldErrors(t *testing.T) {
	api := &mockPaymentAPI{}
	e := newTestEntry(api)
	e.Open(testOrder)

	_ = e.TypeAmount("5000")
	e.SetAmount("100")
	if _, ok := e.View().Errors["additionalPayment"]; ok {
		t.Fatalf("amount error should clear on edit: %v", e.View().Errors)
	}

	e.SetNote(strings.Repeat("x", 501))
	if _, err := e.Submit(context.Background()); err == nil {
		t.Fatalf("long note should be rejected")
	}
	if e.View().Errors["paymentNote"] == "" {
		t.Fatalf("note error expected, got %v", e.View().Errors)
	}
	e.SetNote("ok")
	if len(e.View().Errors) != 0 {
		t.Fatalf("note error should clear on edit: %v", e.View().Errors)
	}
	if len(api.calls) != 0 {
		t.Fatalf("rejected form reached the backend")
	}
}

func TestBlur_ClampsSilently(t *testing.T) {
	e := newTestEntry(&mockPaymentAPI{})
	e.Open(testOrder)
	e.SetAmount("4500")
	e.Blur()
	v := e.View()
	if v.Amount != "3000" || len(v.Errors) != 0 {
		t.Fatalf("expected silent clamp to 3000, got %+v", v)
	}
}

func TestSubmit_OverBalanceNeverCallsBackend(t *testing.T) {
	api := &mockPaymentAPI{}
	e := newTestEntry(api)
	e.Open(testOrder)
	e.SetAmount("5000")

	_, err := e.Submit(context.Background())
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(ve.Fields["additionalPayment"], "₹3,000") {
		t.Fatalf("message should quote ₹3,000: %q", ve.Fields["additionalPayment"])
	}
	if len(api.calls) != 0 {
		t.Fatal("backend must not be called")
	}
	if !e.View().Open {
		t.Fatal("form should stay open")
	}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		date   string
		method string
		field  string
	}{
		{"zero amount", "0", "2026-10-19", validation.MethodCash, "additionalPayment"},
		{"blank amount", "", "2026-10-19", validation.MethodCash, "additionalPayment"},
		{"future date", "100", "2026-10-20", validation.MethodCash, "paymentDate"},
		{"unknown method", "100", "2026-10-19", "CHEQUE", "paymentMethod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockPaymentAPI{}
			e := newTestEntry(api)
			e.Open(testOrder)
			e.SetAmount(tt.amount)
			e.SetDate(tt.date)
			e.SetMethod(tt.method)
			_, err := e.Submit(context.Background())
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) || ve.Fields[tt.field] == "" {
				t.Fatalf("expected %s error, got %v", tt.field, err)
			}
			if len(api.calls) != 0 {
				t.Fatal("backend must not be called")
			}
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	api := &mockPaymentAPI{}
	e := newTestEntry(api)
	e.Open(testOrder)
	_ = e.TypeAmount("1500")
	e.SetMethod(validation.MethodUPI)
	e.SetNote("  second instalment ")

	o, err := e.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if o.PaidAmount != 3500 {
		t.Fatalf("unexpected order %+v", o)
	}
	want := validation.PaymentUpdateRequest{
		OrderID:           "o-1",
		AdditionalPayment: 1500,
		PaymentMethod:     "UPI",
		PaymentDate:       "2026-10-19",
		PaymentNote:       "second instalment",
	}
	if len(api.calls) != 1 || api.calls[0] != want {
		t.Fatalf("unexpected calls %+v", api.calls)
	}
	if e.View().Open {
		t.Fatal("form should close on success")
	}
}

func TestSubmit_FailureKeepsFormOpen(t *testing.T) {
	api := &mockPaymentAPI{err: &apperr.NetworkError{Op: "record payment", StatusCode: 409, Message: "Payment exceeds balance"}}
	e := newTestEntry(api)
	e.Open(testOrder)
	_ = e.TypeAmount("100")

	if _, err := e.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	v := e.View()
	if !v.Open || v.Error != "Payment exceeds balance" || v.Amount != "100" {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestSubmit_NotOpen(t *testing.T) {
	e := newTestEntry(&mockPaymentAPI{})
	if _, err := e.Submit(context.Background()); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
}
