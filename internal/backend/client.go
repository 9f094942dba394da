// Package backend is the desk's HTTP client for the shop API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	"github.com/imrishuroy/go-tailor-orderflow/internal/dashboard"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

// TokenSource yields the bearer token for each call.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed token.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// envelope is the response shape of every API endpoint.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// Client calls the shop API. Mutations carry a fresh Idempotency-Key; no
// call is retried.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	newKey  func() string
}

func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		newKey:  uuid.NewString,
	}
}

func (c *Client) ListCustomers(ctx context.Context) ([]customers.Customer, error) {
	var out []customers.Customer
	err := c.do(ctx, "list customers", http.MethodGet, "/customers", nil, false, &out)
	return out, err
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*customers.Customer, error) {
	var out customers.Customer
	if err := c.do(ctx, "get customer", http.MethodGet, "/customers/"+url.PathEscape(id), nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req validation.CreateCustomerRequest) (*customers.Customer, error) {
	var out customers.Customer
	if err := c.do(ctx, "create customer", http.MethodPost, "/customers", req, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the newest orders first; limit <= 0 means the server
// default.
func (c *Client) ListOrders(ctx context.Context, limit int) ([]orders.Order, error) {
	path := "/orders"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []orders.Order
	err := c.do(ctx, "list orders", http.MethodGet, path, nil, false, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	var out orders.Order
	if err := c.do(ctx, "get order", http.MethodGet, "/orders/"+url.PathEscape(id), nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req validation.CreateOrderRequest) (*orders.Order, error) {
	var out orders.Order
	if err := c.do(ctx, "create order", http.MethodPost, "/orders", req, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecordPayment(ctx context.Context, req validation.PaymentUpdateRequest) (*orders.Order, error) {
	var out orders.Order
	path := "/orders/" + url.PathEscape(req.OrderID) + "/payment"
	if err := c.do(ctx, "record payment", http.MethodPatch, path, req, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, orderID, from, to string) (*orders.Order, error) {
	var out orders.Order
	path := "/orders/" + url.PathEscape(orderID) + "/status"
	body := validation.StatusUpdateRequest{From: from, To: to}
	if err := c.do(ctx, "update order status", http.MethodPatch, path, body, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DashboardStats(ctx context.Context) (*dashboard.Stats, error) {
	var out dashboard.Stats
	if err := c.do(ctx, "dashboard stats", http.MethodGet, "/dashboard/stats", nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecentActivities(ctx context.Context, limit int) ([]dashboard.Activity, error) {
	path := "/dashboard/activities"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []dashboard.Activity
	err := c.do(ctx, "dashboard activities", http.MethodGet, path, nil, false, &out)
	return out, err
}

// do performs one call. GETs are marked retryable in the returned
// NetworkError; mutations are not.
func (c *Client) do(ctx context.Context, op, method, path string, body any, idempotent bool, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotent {
		req.Header.Set("Idempotency-Key", c.newKey())
	}

	retryable := method == http.MethodGet
	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.NetworkError{Op: op, Retryable: retryable, Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode == http.StatusUnauthorized {
		reason := env.Message
		if reason == "" {
			reason = "token rejected"
		}
		return &apperr.AuthError{Reason: reason}
	}
	if decodeErr != nil {
		return &apperr.NetworkError{Op: op, StatusCode: resp.StatusCode, Retryable: retryable, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &apperr.NetworkError{Op: op, StatusCode: resp.StatusCode, Message: env.Message, Retryable: retryable}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &apperr.NetworkError{Op: op, StatusCode: resp.StatusCode, Retryable: retryable, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}
