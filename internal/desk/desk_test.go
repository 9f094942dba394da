package desk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	"github.com/imrishuroy/go-tailor-orderflow/internal/dashboard"
	"github.com/imrishuroy/go-tailor-orderflow/internal/measurements"
	"github.com/imrishuroy/go-tailor-orderflow/internal/notify"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

type fakeBackend struct {
	mu        sync.Mutex
	customers []customers.Customer
	orders    map[string]*orders.Order
	created   []validation.CreateOrderRequest
	payments  []validation.PaymentUpdateRequest
	listCalls int
	statsErr  error
	ordersErr error
	createErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		customers: []customers.Customer{{
			CustomerID: "c-1",
			Name:       "Asha Rao",
			Phone:      "9876543210",
			Measurements: &measurements.Set{
				Shirt: &measurements.Shirt{Chest: 40},
			},
		}},
		orders: map[string]*orders.Order{},
	}
}

func (f *fakeBackend) CreateOrder(ctx context.Context, req validation.CreateOrderRequest) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	o := &orders.Order{
		OrderID:       "o-1",
		CustomerID:    req.CustomerID,
		Status:        orders.StatusPending,
		TotalAmount:   req.TotalAmount,
		PaidAmount:    req.PaidAmount,
		BalanceAmount: req.BalanceAmount,
	}
	f.orders[o.OrderID] = o
	return o, nil
}

func (f *fakeBackend) RecordPayment(ctx context.Context, req validation.PaymentUpdateRequest) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, req)
	o, ok := f.orders[req.OrderID]
	if !ok {
		return nil, &apperr.NetworkError{Op: "PATCH /orders/:id/payment", StatusCode: 404, Message: "Order not found"}
	}
	o.PaidAmount += req.AdditionalPayment
	o.BalanceAmount -= req.AdditionalPayment
	cp := *o
	return &cp, nil
}

func (f *fakeBackend) CreateCustomer(ctx context.Context, req validation.CreateCustomerRequest) (*customers.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := customers.Customer{CustomerID: "c-new", Name: req.User.Name, Phone: req.User.ContactNumber, Email: req.User.Email}
	f.customers = append(f.customers, c)
	return &c, nil
}

func (f *fakeBackend) ListCustomers(ctx context.Context) ([]customers.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]customers.Customer(nil), f.customers...), nil
}

func (f *fakeBackend) GetCustomer(ctx context.Context, id string) (*customers.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.CustomerID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, &apperr.NetworkError{Op: "GET /orders/:id", StatusCode: 404, Message: "Order not found"}
	}
	cp := *o
	return &cp, nil
}

func (f *fakeBackend) DashboardStats(ctx context.Context) (*dashboard.Stats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &dashboard.Stats{TotalOrders: len(f.orders)}, nil
}

func (f *fakeBackend) ListOrders(ctx context.Context, limit int) ([]orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	var out []orders.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeBackend) RecentActivities(ctx context.Context, limit int) ([]dashboard.Activity, error) {
	return []dashboard.Activity{}, nil
}

func newTestDesk(t *testing.T, api *fakeBackend) (*Desk, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := New(api, validation.New(), notify.New(), Config{
		OrderBannerDelay:    5 * time.Second,
		CustomerBannerDelay: 3 * time.Second,
		DefaultPassword:     "changeme123",
		RecentOrders:        10,
	})
	t.Cleanup(d.Close)
	if err := d.Customers.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	return d, NewRouter(d)
}

type envelope struct {
	Success   bool              `json:"success"`
	Retryable bool              `json:"retryable"`
	Data      json.RawMessage   `json:"data"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields"`
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code, env
}

func decodeView(t *testing.T, env envelope) View {
	t.Helper()
	var v View
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestAddNewCustomerOption_OpensQuickCreateWithoutTouchingDraft(t *testing.T) {
	api := newFakeBackend()
	d, r := newTestDesk(t, api)
	ws := d.OpenDraft()
	if _, err := ws.SelectCustomer(context.Background(), "c-1"); err != nil {
		t.Fatal(err)
	}
	id := ws.View().Items[0].ID
	if _, err := ws.UpdateItem(id, "name", "Kurta"); err != nil {
		t.Fatal(err)
	}
	before := ws.View()

	code, env := do(t, r, http.MethodPut, "/drafts/"+ws.ID+"/customer", selectCustomerRequest{CustomerID: AddNewCustomerOption})
	if code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	after := decodeView(t, env)
	if !after.QuickCreate {
		t.Fatalf("quick-create should be open")
	}
	if after.Customer == nil || after.Customer.CustomerID != before.Customer.CustomerID {
		t.Fatalf("customer changed: %+v", after.Customer)
	}
	if len(after.Items) != 1 || after.Items[0].Name != "Kurta" {
		t.Fatalf("items changed: %+v", after.Items)
	}
}

func TestSelectCustomer_MergesMeasurements(t *testing.T) {
	api := newFakeBackend()
	d, _ := newTestDesk(t, api)
	ws := d.OpenDraft()
	v, err := ws.SelectCustomer(context.Background(), "c-1")
	if err != nil {
		t.Fatal(err)
	}
	if v.Measurements.Shirt == nil || v.Measurements.Shirt.Chest != 40 {
		t.Fatalf("measurements not merged: %+v", v.Measurements)
	}

	if _, err := ws.SelectCustomer(context.Background(), "missing"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestSubmitDraft_OverHTTP(t *testing.T) {
	api := newFakeBackend()
	d, r := newTestDesk(t, api)

	code, env := do(t, r, http.MethodPost, "/drafts", nil)
	if code != http.StatusCreated {
		t.Fatalf("open status=%d", code)
	}
	v := decodeView(t, env)
	base := "/drafts/" + v.ID
	itemID := v.Items[0].ID

	do(t, r, http.MethodPut, base+"/customer", selectCustomerRequest{CustomerID: "c-1"})
	name, qty, price := "Formal Shirt", "2", "1000"
	do(t, r, http.MethodPatch, base+"/items/"+itemID, itemRequest{Name: &name, Quantity: &qty, Price: &price})
	date, advance := "2099-12-31", "500"
	code, env = do(t, r, http.MethodPatch, base+"/fields", fieldsRequest{DeliveryDate: &date, AdvancePayment: &advance})
	if code != http.StatusOK {
		t.Fatalf("fields status=%d %s", code, env.Message)
	}
	v = decodeView(t, env)
	if v.Total != 2000 || v.Balance != 1500 {
		t.Fatalf("total=%v balance=%v", v.Total, v.Balance)
	}

	code, env = do(t, r, http.MethodPost, base+"/submit", nil)
	if code != http.StatusCreated {
		t.Fatalf("submit status=%d %+v", code, env)
	}
	if len(api.created) != 1 || api.created[0].TotalAmount != 2000 {
		t.Fatalf("created=%+v", api.created)
	}

	after := mustView(t, d, v.ID)
	if after.Customer != nil || after.Total != 0 || len(after.Items) != 1 {
		t.Fatalf("draft not reset: %+v", after)
	}
	if n := d.Notice(); n == nil || n.Kind != notify.KindSuccess {
		t.Fatalf("notice=%+v", n)
	}
	if len(d.RecentOrders()) != 1 {
		t.Fatalf("orders list not refreshed")
	}
}

func mustView(t *testing.T, d *Desk, id string) View {
	t.Helper()
	ws, err := d.Workspace(id)
	if err != nil {
		t.Fatal(err)
	}
	return ws.View()
}

func TestSubmitDraft_RejectedLocally(t *testing.T) {
	api := newFakeBackend()
	d, r := newTestDesk(t, api)
	ws := d.OpenDraft()

	code, env := do(t, r, http.MethodPost, "/drafts/"+ws.ID+"/submit", nil)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", code)
	}
	if env.Fields["customer"] == "" || env.Fields["deliveryDate"] == "" {
		t.Fatalf("fields=%v", env.Fields)
	}
	if len(api.created) != 0 {
		t.Fatalf("rejected draft reached the backend")
	}
}

func TestSubmitDraft_BackendFailureKeepsDraft(t *testing.T) {
	api := newFakeBackend()
	api.createErr = &apperr.NetworkError{Op: "POST /orders", StatusCode: 404, Message: "Customer not found"}
	d, r := newTestDesk(t, api)
	ws := d.OpenDraft()
	_, _ = ws.SelectCustomer(context.Background(), "c-1")
	id := ws.View().Items[0].ID
	_, _ = ws.UpdateItem(id, "name", "Shirt")
	_, _ = ws.UpdateItem(id, "quantity", "1")
	_, _ = ws.UpdateItem(id, "price", "800")
	_, _ = ws.SetField("deliveryDate", "2099-12-31")

	code, env := do(t, r, http.MethodPost, "/drafts/"+ws.ID+"/submit", nil)
	if code != http.StatusBadGateway || env.Message != "Customer not found" {
		t.Fatalf("status=%d message=%q", code, env.Message)
	}
	v := ws.View()
	if v.Customer == nil || v.Total != 800 || v.LastError != "Customer not found" {
		t.Fatalf("draft lost: %+v", v)
	}
	if n := d.Notice(); n == nil || n.Kind != notify.KindError {
		t.Fatalf("notice=%+v", n)
	}
}

func TestQuickCreate_SelectsNewCustomer(t *testing.T) {
	api := newFakeBackend()
	d, r := newTestDesk(t, api)
	ws := d.OpenDraft()
	_, _ = ws.SelectCustomer(context.Background(), AddNewCustomerOption)

	code, env := do(t, r, http.MethodPost, "/drafts/"+ws.ID+"/quick-customer", customerRequest{
		Name:         "John Doe",
		Phone:        "1234567890",
		Email:        "john@example.com",
		Measurements: measurements.Flat{"chest": 42},
	})
	if code != http.StatusCreated {
		t.Fatalf("status=%d %+v", code, env)
	}
	v := decodeView(t, env)
	if v.QuickCreate {
		t.Fatalf("quick-create should close")
	}
	if v.Customer == nil || v.Customer.CustomerID != "c-new" {
		t.Fatalf("customer=%+v", v.Customer)
	}
	if _, ok := d.Customers.Find("c-new"); !ok {
		t.Fatalf("new customer missing from list")
	}
}

func TestRemoveLastItem_Conflict(t *testing.T) {
	api := newFakeBackend()
	d, r := newTestDesk(t, api)
	ws := d.OpenDraft()
	id := ws.View().Items[0].ID

	code, _ := do(t, r, http.MethodDelete, "/drafts/"+ws.ID+"/items/"+id, nil)
	if code != http.StatusConflict {
		t.Fatalf("status=%d", code)
	}
}

func TestMeasurement_NegativeRefused(t *testing.T) {
	api := newFakeBackend()
	d, r := newTestDesk(t, api)
	ws := d.OpenDraft()

	code, env := do(t, r, http.MethodPatch, "/drafts/"+ws.ID+"/measurements", measurementRequest{Garment: "shirt", Field: "chest", Value: "-4"})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", code)
	}
	if env.Fields["measurements.shirt.chest"] == "" {
		t.Fatalf("fields=%v", env.Fields)
	}
	code, _ = do(t, r, http.MethodPatch, "/drafts/"+ws.ID+"/measurements", measurementRequest{Garment: "cape", Field: "chest", Value: "4"})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown garment status=%d", code)
	}
}

func TestPayment_OverBalanceKeystrokeRefused(t *testing.T) {
	api := newFakeBackend()
	api.orders["o-9"] = &orders.Order{OrderID: "o-9", TotalAmount: 5000, PaidAmount: 2000, BalanceAmount: 3000}
	d, r := newTestDesk(t, api)

	if code, _ := do(t, r, http.MethodPost, "/payments/open", openPaymentRequest{OrderID: "o-9"}); code != http.StatusOK {
		t.Fatalf("open status=%d", code)
	}
	code, env := do(t, r, http.MethodPost, "/payments/amount", map[string]string{"amount": "5000"})
	if code != http.StatusOK {
		t.Fatalf("amount status=%d", code)
	}
	var pv struct {
		Amount string            `json:"amount"`
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(env.Data, &pv); err != nil {
		t.Fatal(err)
	}
	if pv.Amount != "" {
		t.Fatalf("amount should be unchanged, got %q", pv.Amount)
	}
	if want := "Amount cannot exceed the remaining balance of ₹3,000"; pv.Errors["additionalPayment"] != want {
		t.Fatalf("error=%q", pv.Errors["additionalPayment"])
	}

	do(t, r, http.MethodPost, "/payments/amount", map[string]string{"amount": "1000"})
	code, env = do(t, r, http.MethodPost, "/payments/submit", nil)
	if code != http.StatusOK {
		t.Fatalf("submit status=%d %+v", code, env)
	}
	if len(api.payments) != 1 || api.payments[0].AdditionalPayment != 1000 {
		t.Fatalf("payments=%+v", api.payments)
	}
	if d.Payments.View().Open {
		t.Fatalf("form should close after success")
	}
}

func TestDashboard_PartialFailureStillRenders(t *testing.T) {
	api := newFakeBackend()
	api.statsErr = &apperr.NetworkError{Op: "GET /dashboard/stats", StatusCode: 500, Message: "stats unavailable"}
	_, r := newTestDesk(t, api)

	code, env := do(t, r, http.MethodGet, "/dashboard", nil)
	if code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	var snap dashboard.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Stats.Success || snap.Stats.Error != "stats unavailable" {
		t.Fatalf("stats=%+v", snap.Stats)
	}
	if !snap.Orders.Success || !snap.Activities.Success {
		t.Fatalf("other sections should load: %+v", snap)
	}
}

func TestUnknownDraft_NotFound(t *testing.T) {
	_, r := newTestDesk(t, newFakeBackend())
	if code, _ := do(t, r, http.MethodGet, "/drafts/nope", nil); code != http.StatusNotFound {
		t.Fatalf("status=%d", code)
	}
}

func TestRecentOrders_ReadFailureIsRetryable(t *testing.T) {
	api := newFakeBackend()
	api.ordersErr = &apperr.NetworkError{Op: "GET /orders", StatusCode: 503, Message: "Service unavailable", Retryable: true}
	_, r := newTestDesk(t, api)

	code, env := do(t, r, http.MethodGet, "/orders", nil)
	if code != http.StatusBadGateway {
		t.Fatalf("status=%d", code)
	}
	if !env.Retryable || env.Message != "Service unavailable" {
		t.Fatalf("envelope=%+v", env)
	}
}

func TestSubmitDraft_FailureIsNotRetryable(t *testing.T) {
	api := newFakeBackend()
	api.createErr = &apperr.NetworkError{Op: "POST /orders", StatusCode: 500, Message: "boom"}
	d, r := newTestDesk(t, api)
	ws := d.OpenDraft()
	_, _ = ws.SelectCustomer(context.Background(), "c-1")
	id := ws.View().Items[0].ID
	_, _ = ws.UpdateItem(id, "name", "Shirt")
	_, _ = ws.UpdateItem(id, "quantity", "1")
	_, _ = ws.UpdateItem(id, "price", "800")
	_, _ = ws.SetField("deliveryDate", "2099-12-31")

	code, env := do(t, r, http.MethodPost, "/drafts/"+ws.ID+"/submit", nil)
	if code != http.StatusBadGateway || env.Retryable {
		t.Fatalf("status=%d retryable=%v", code, env.Retryable)
	}
}
