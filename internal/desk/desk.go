// Package desk is the order desk: it owns open drafts, the add-customer and
// payment forms and the dashboard, and reaches the shop API only through
// the backend client.
package desk

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-tailor-orderflow/internal/customerflow"
	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	"github.com/imrishuroy/go-tailor-orderflow/internal/dashboard"
	"github.com/imrishuroy/go-tailor-orderflow/internal/draft"
	"github.com/imrishuroy/go-tailor-orderflow/internal/notify"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/payments"
	"github.com/imrishuroy/go-tailor-orderflow/internal/submission"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

// AddNewCustomerOption is the customer picker value that opens quick-create
// instead of selecting a customer.
const AddNewCustomerOption = "__add_new__"

var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// Backend is everything the desk needs from the shop API.
type Backend interface {
	submission.OrderAPI
	payments.PaymentAPI
	customerflow.CustomerAPI
	dashboard.Source
	GetCustomer(ctx context.Context, id string) (*customers.Customer, error)
	GetOrder(ctx context.Context, id string) (*orders.Order, error)
}

// Config holds the desk's per-call-site options.
type Config struct {
	OrderBannerDelay    time.Duration
	CustomerBannerDelay time.Duration
	DefaultPassword     string
	RecentOrders        int
}

// Desk is safe for concurrent use; each workspace serialises its own draft.
type Desk struct {
	api       Backend
	validator *validation.Validator
	notifier  *notify.Notifier
	cfg       Config

	Customers *customerflow.Flow
	Payments  *payments.Entry
	Dashboard *dashboard.Loader

	mu         sync.Mutex
	workspaces map[string]*Workspace
	recent     []orders.Order
}

func New(api Backend, v *validation.Validator, n *notify.Notifier, cfg Config) *Desk {
	return &Desk{
		api:       api,
		validator: v,
		notifier:  n,
		cfg:       cfg,
		Customers: customerflow.New(api, v, n, customerflow.Config{
			BannerDelay:     cfg.CustomerBannerDelay,
			DefaultPassword: cfg.DefaultPassword,
		}),
		Payments:   payments.NewEntry(api, v),
		Dashboard:  dashboard.NewLoader(api, cfg.RecentOrders),
		workspaces: map[string]*Workspace{},
	}
}

// Notice returns the banner on display, if any.
func (d *Desk) Notice() *notify.Notice { return d.notifier.Current() }

func (d *Desk) DismissNotice() { d.notifier.Dismiss() }

// Close stops pending banner timers.
func (d *Desk) Close() { d.notifier.Close() }

// OpenDraft creates an empty draft workspace.
func (d *Desk) OpenDraft() *Workspace {
	ws := &Workspace{ID: uuid.NewString(), draft: draft.New(), desk: d}
	ws.pipeline = submission.New(d.api, d.validator, d.notifier, d.cfg.OrderBannerDelay, &ws.mu,
		submission.WithRefresh(d.refreshOrders))

	d.mu.Lock()
	d.workspaces[ws.ID] = ws
	d.mu.Unlock()
	slog.Debug("draft opened", "draft_id", ws.ID)
	return ws
}

// Workspace returns the open draft with id.
func (d *Desk) Workspace(id string) (*Workspace, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ws, ok := d.workspaces[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return ws, nil
}

// CloseDraft discards the draft with id.
func (d *Desk) CloseDraft(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.workspaces[id]; !ok {
		return ErrDraftNotFound
	}
	delete(d.workspaces, id)
	slog.Debug("draft closed", "draft_id", id)
	return nil
}

// RecentOrders returns the orders list as of the last refresh.
func (d *Desk) RecentOrders() []orders.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]orders.Order(nil), d.recent...)
}

// RefreshOrders reloads the recent orders list.
func (d *Desk) RefreshOrders(ctx context.Context) error {
	list, err := d.api.ListOrders(ctx, d.cfg.RecentOrders)
	if err != nil {
		slog.Warn("orders refresh failed", "error", err)
		return err
	}
	d.mu.Lock()
	d.recent = list
	d.mu.Unlock()
	return nil
}

func (d *Desk) refreshOrders(ctx context.Context, _ *orders.Order) {
	_ = d.RefreshOrders(ctx)
}

// lookupCustomer finds a customer in the loaded list, falling back to the
// backend.
func (d *Desk) lookupCustomer(ctx context.Context, id string) (customers.Customer, error) {
	if c, ok := d.Customers.Find(id); ok {
		return c, nil
	}
	c, err := d.api.GetCustomer(ctx, id)
	if err != nil {
		return customers.Customer{}, err
	}
	if c == nil {
		return customers.Customer{}, ErrCustomerNotFound
	}
	return *c, nil
}

// OpenPayment loads the order and opens the payment form for it.
func (d *Desk) OpenPayment(ctx context.Context, orderID string) error {
	o, err := d.api.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	d.Payments.Open(*o)
	return nil
}

// SubmitPayment records the payment and refreshes the orders list.
func (d *Desk) SubmitPayment(ctx context.Context) (*orders.Order, error) {
	o, err := d.Payments.Submit(ctx)
	if err != nil {
		return nil, err
	}
	d.notifier.Success("Payment recorded successfully!", d.cfg.OrderBannerDelay)
	_ = d.RefreshOrders(ctx)
	return o, nil
}
