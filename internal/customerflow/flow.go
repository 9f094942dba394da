// Package customerflow drives the add-customer form and keeps the desk's
// customer list in step with what was created.
package customerflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	"github.com/imrishuroy/go-tailor-orderflow/internal/measurements"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

const (
	SuccessMessage  = "Customer added successfully!"
	FallbackMessage = "Failed to add customer"
)

var (
	ErrUnknownField = errors.New("unknown customer form field")
	ErrInFlight     = errors.New("customer submission already in progress")
)

// CustomerAPI is the customer side of the backend client.
type CustomerAPI interface {
	CreateCustomer(ctx context.Context, req validation.CreateCustomerRequest) (*customers.Customer, error)
	ListCustomers(ctx context.Context) ([]customers.Customer, error)
}

// Banner shows the outcome to the user.
type Banner interface {
	Success(msg string, dismissAfter time.Duration)
	Error(msg string)
}

// Config holds the per-call-site options of the flow.
type Config struct {
	BannerDelay     time.Duration
	DefaultPassword string
}

// View is the form and list as rendered.
type View struct {
	Form         validation.CustomerForm `json:"form"`
	Measurements measurements.Set        `json:"measurements"`
	Errors       map[string]string       `json:"errors,omitempty"`
	Error        string                  `json:"error,omitempty"`
	Submitting   bool                    `json:"submitting"`
	Customers    []customers.Customer    `json:"customers"`
}

// Flow is the add-customer form plus the list it appends to.
type Flow struct {
	api       CustomerAPI
	validator *validation.Validator
	banner    Banner
	cfg       Config

	mu           sync.Mutex
	form         validation.CustomerForm
	measurements measurements.Set
	errors       map[string]string
	// rejected holds measurement values refused at entry; they block
	// submission until the field is edited again.
	rejected   map[string]string
	failure    string
	submitting bool
	list       []customers.Customer
}

func New(api CustomerAPI, v *validation.Validator, banner Banner, cfg Config) *Flow {
	return &Flow{api: api, validator: v, banner: banner, cfg: cfg, errors: map[string]string{}, rejected: map[string]string{}}
}

// Refresh reloads the customer list. A failed read keeps the current list
// and is logged.
func (f *Flow) Refresh(ctx context.Context) error {
	list, err := f.api.ListCustomers(ctx)
	if err != nil {
		slog.Warn("customer list refresh failed", "error", err)
		return err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	f.mu.Lock()
	f.list = list
	f.mu.Unlock()
	return nil
}

// Customers returns a copy of the list.
func (f *Flow) Customers() []customers.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]customers.Customer(nil), f.list...)
}

// Find returns the listed customer with id.
func (f *Flow) Find(id string) (customers.Customer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.list {
		if c.CustomerID == id {
			return c, true
		}
	}
	return customers.Customer{}, false
}

// SetField edits name, phone or email and clears that field's error.
func (f *Flow) SetField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case "name":
		f.form.Name = value
	case "phone":
		f.form.Phone = value
	case "email":
		f.form.Email = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	delete(f.errors, field)
	return nil
}

// SetPhoto records the picked photo's metadata for validation.
func (f *Flow) SetPhoto(info *validation.FileInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.form.Photo = info
	delete(f.errors, "photo")
}

// SetMeasurement edits one measurement and clears its error. A negative
// value is refused and reported on the field.
func (f *Flow) SetMeasurement(g measurements.Garment, field string, v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := "measurements." + string(g) + "." + field
	delete(f.errors, key)
	delete(f.rejected, key)
	err := f.measurements.SetValue(g, field, v)
	if errors.Is(err, measurements.ErrNegative) {
		f.rejected[key] = "Measurement cannot be negative"
		f.errors[key] = f.rejected[key]
	}
	return err
}

// SetMeasurements replaces the measurement snapshot of the form.
func (f *Flow) SetMeasurements(m measurements.Set) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.measurements = m.Clone()
	f.clearMeasurementErrors()
}

// SetFlatMeasurements replaces the measurements from the flat wire shape and
// the free-text notes. Negative values are refused and reported.
func (f *Flow) SetFlatMeasurements(flat measurements.Flat, custom string) {
	m, errs := flat.Set()
	m.Custom = custom
	f.mu.Lock()
	defer f.mu.Unlock()
	f.measurements = m
	f.clearMeasurementErrors()
	for k, msg := range errs {
		f.rejected["measurements."+k] = msg
		f.errors["measurements."+k] = msg
	}
}

// clearMeasurementErrors drops every measurement error. Caller holds f.mu.
func (f *Flow) clearMeasurementErrors() {
	for k := range f.errors {
		if strings.HasPrefix(k, "measurements.") {
			delete(f.errors, k)
		}
	}
	f.rejected = map[string]string{}
}

// Reset clears the form.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Flow) reset() {
	f.form = validation.CustomerForm{}
	f.measurements = measurements.Set{}
	f.errors = map[string]string{}
	f.rejected = map[string]string{}
	f.failure = ""
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := View{
		Form:         f.form,
		Measurements: f.measurements.Clone(),
		Error:        f.failure,
		Submitting:   f.submitting,
		Customers:    append([]customers.Customer(nil), f.list...),
	}
	if len(f.errors) > 0 {
		v.Errors = make(map[string]string, len(f.errors))
		for k, m := range f.errors {
			v.Errors[k] = m
		}
	}
	return v
}

// Submit validates the form and creates the customer. On success the new
// customer is appended to the list, the form is cleared and a banner shown.
// On failure the form is kept as typed.
func (f *Flow) Submit(ctx context.Context) (*customers.Customer, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrInFlight
	}
	res := f.validator.ValidateCustomerForm(f.form)
	if res.Errors == nil {
		res.Errors = map[string]string{}
	}
	for k, m := range f.measurements.Validate() {
		res.IsValid = false
		res.Errors["measurements."+k] = m
	}
	for k, m := range f.rejected {
		res.IsValid = false
		res.Errors[k] = m
	}
	if !res.IsValid {
		f.errors = res.Errors
		f.mu.Unlock()
		return nil, &apperr.ValidationError{Fields: res.Errors}
	}
	req := f.payload()
	f.submitting = true
	f.failure = ""
	form := f.form
	f.mu.Unlock()

	created, err := f.api.CreateCustomer(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.failure = apperr.Message(err, FallbackMessage)
		slog.Error("create customer failed", "error", err)
		f.banner.Error(f.failure)
		return nil, err
	}

	c := *created
	if c.Name == "" {
		c.Name = strings.TrimSpace(form.Name)
	}
	if c.Phone == "" {
		c.Phone = strings.TrimSpace(form.Phone)
	}
	if c.Email == "" {
		c.Email = strings.TrimSpace(form.Email)
	}
	if m := req.MeasurementSet(); c.Measurements == nil && !m.IsEmpty() {
		c.Measurements = &m
	}
	f.list = append(f.list, c)
	f.reset()
	slog.Info("customer created", "customer_id", c.CustomerID)
	f.banner.Success(SuccessMessage, f.cfg.BannerDelay)
	return &c, nil
}

// payload builds the creation request. Caller holds f.mu.
func (f *Flow) payload() validation.CreateCustomerRequest {
	req := validation.CreateCustomerRequest{
		User: validation.UserPayload{
			Name:          strings.TrimSpace(f.form.Name),
			Email:         strings.TrimSpace(f.form.Email),
			Password:      f.cfg.DefaultPassword,
			ContactNumber: strings.TrimSpace(f.form.Phone),
			RoleID:        validation.RoleCustomer,
		},
	}
	if !f.measurements.IsEmpty() {
		req.Measurements = f.measurements.Flatten()
		req.CustomMeasurements = strings.TrimSpace(f.measurements.Custom)
	}
	return req
}
