package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", StaticToken("tok"), 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateOrder_SendsHeadersAndDecodes(t *testing.T) {
	var got validation.CreateOrderRequest
	var keys []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "o-1", "customerId": got.CustomerID, "totalAmount": got.TotalAmount},
		})
	})

	req := validation.CreateOrderRequest{CustomerID: "c-1", TotalAmount: 2000}
	o, err := c.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if o.OrderID != "o-1" || o.TotalAmount != 2000 || got.CustomerID != "c-1" {
		t.Fatalf("unexpected order %+v / request %+v", o, got)
	}
	if _, err := c.CreateOrder(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] == "" || keys[0] == keys[1] {
		t.Fatalf("each call needs a fresh idempotency key, got %v", keys)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      any
		check     func(error) bool
		retryable bool
	}{
		{
			name:   "success false",
			status: http.StatusBadRequest,
			body:   map[string]any{"success": false, "error": "validation_failed", "message": "Customer not found"},
			check: func(err error) bool {
				var ne *apperr.NetworkError
				return errors.As(err, &ne) && ne.Message == "Customer not found" && ne.StatusCode == 400
			},
			retryable: true,
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   map[string]any{"success": false, "message": "invalid or expired token"},
			check: func(err error) bool {
				var ae *apperr.AuthError
				return errors.As(err, &ae)
			},
		},
		{
			name:   "ok status but success false",
			status: http.StatusOK,
			body:   map[string]any{"success": false, "message": "nope"},
			check: func(err error) bool {
				return apperr.Message(err, "fallback") == "nope"
			},
			retryable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.ListCustomers(context.Background())
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if apperr.IsRetryable(err) != tt.retryable {
				t.Fatalf("retryable = %v, want %v", apperr.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestMutationNotRetryable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "Payment exceeds balance"})
	})
	_, err := c.RecordPayment(context.Background(), validation.PaymentUpdateRequest{OrderID: "o-1", AdditionalPayment: 10})
	if err == nil || apperr.IsRetryable(err) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
	if apperr.Message(err, "") != "Payment exceeds balance" {
		t.Fatalf("unexpected message %q", apperr.Message(err, ""))
	}
}

func TestRecordPayment_Path(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/orders/o-7/payment" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "o-7", "paidAmount": 500}})
	})
	o, err := c.RecordPayment(context.Background(), validation.PaymentUpdateRequest{OrderID: "o-7", AdditionalPayment: 500})
	if err != nil || o.PaidAmount != 500 {
		t.Fatalf("order %+v, err %v", o, err)
	}
}

type failingTokens struct{}

func (failingTokens) Token() (string, error) {
	return "", &apperr.AuthError{Reason: "no session token"}
}

func TestTokenFailureStopsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()
	c := New(srv.URL, failingTokens{}, time.Second)

	_, err := c.DashboardStats(context.Background())
	var ae *apperr.AuthError
	if !errors.As(err, &ae) || called {
		t.Fatalf("expected auth error without a call, got %v (called=%v)", err, called)
	}
}
