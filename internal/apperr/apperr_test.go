package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", &NetworkError{Op: "POST /orders", StatusCode: 409, Message: "Customer not found"})
	if got := Message(wrapped, "Failed to create order"); got != "Customer not found" {
		t.Fatalf("got %q", got)
	}
	if got := Message(&NetworkError{Op: "POST /orders", Err: errors.New("dial tcp: refused")}, "Failed to create order"); got != "Failed to create order" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := Message(&AuthError{Reason: "no token"}, "x"); got == "x" {
		t.Fatalf("auth errors carry their own text")
	}
	if Message(nil, "x") != "" {
		t.Fatalf("nil error has no message")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("list: %w", &NetworkError{Op: "GET /orders", Retryable: true})) {
		t.Fatal("expected retryable")
	}
	if IsRetryable(&NetworkError{Op: "POST /orders"}) {
		t.Fatal("mutations are not retryable by default")
	}
}

func TestPartialDataError(t *testing.T) {
	err := &PartialDataError{Failed: map[string]error{"stats": errors.New("boom"), "activities": errors.New("boom")}}
	if err.Error() != "partial data: failed to load activities, stats" {
		t.Fatalf("got %q", err.Error())
	}
}
