package desk

import (
	"context"
	"sync"

	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	"github.com/imrishuroy/go-tailor-orderflow/internal/draft"
	"github.com/imrishuroy/go-tailor-orderflow/internal/measurements"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/submission"
)

// Workspace owns one draft. mu guards the draft and quickCreate; the
// submission pipeline takes it around its own draft access.
type Workspace struct {
	ID string

	desk        *Desk
	mu          sync.Mutex
	draft       *draft.Draft
	pipeline    *submission.Pipeline
	quickCreate bool
}

// View is the draft as rendered.
type View struct {
	ID             string               `json:"id"`
	Customer       *customers.Customer  `json:"customer"`
	DeliveryDate   string               `json:"deliveryDate"`
	AdvancePayment string               `json:"advancePayment"`
	Notes          string               `json:"notes"`
	Measurements   measurements.Set     `json:"measurements"`
	Items          []draft.LineItem     `json:"items"`
	Mode           draft.AssignmentMode `json:"assignmentMode"`
	WholeWorker    draft.Worker         `json:"wholeWorker"`
	Total          float64              `json:"total"`
	Balance        float64              `json:"balance"`
	Errors         map[string]string    `json:"errors,omitempty"`
	State          submission.State     `json:"state"`
	LastError      string               `json:"lastError,omitempty"`
	QuickCreate    bool                 `json:"quickCreate"`
}

func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Workspace) viewLocked() View {
	d := w.draft
	v := View{
		ID:             w.ID,
		Customer:       d.Customer(),
		DeliveryDate:   d.DeliveryDate(),
		AdvancePayment: d.AdvancePayment(),
		Notes:          d.Notes(),
		Measurements:   d.Measurements(),
		Items:          d.Items(),
		Mode:           d.Mode(),
		WholeWorker:    d.WholeWorker(),
		Total:          d.Total().InexactFloat64(),
		Balance:        d.Balance().InexactFloat64(),
		State:          w.pipeline.State(),
		LastError:      w.pipeline.LastError(),
		QuickCreate:    w.quickCreate,
	}
	if errs := d.Errors(); len(errs) > 0 {
		v.Errors = errs
	}
	return v
}

// edit runs fn on the draft under the lock and returns the new view.
func (w *Workspace) edit(fn func(d *draft.Draft) error) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := fn(w.draft); err != nil {
		return w.viewLocked(), err
	}
	return w.viewLocked(), nil
}

func (w *Workspace) Reset() View {
	v, _ := w.edit(func(d *draft.Draft) error {
		d.Reset()
		return nil
	})
	return v
}

// SelectCustomer handles the customer picker. The AddNewCustomerOption value
// opens quick-create and leaves the draft as it is.
func (w *Workspace) SelectCustomer(ctx context.Context, value string) (View, error) {
	if value == AddNewCustomerOption {
		w.mu.Lock()
		w.quickCreate = true
		v := w.viewLocked()
		w.mu.Unlock()
		return v, nil
	}
	if value == "" {
		return w.edit(func(d *draft.Draft) error {
			d.ClearCustomer()
			return nil
		})
	}

	c, err := w.desk.lookupCustomer(ctx, value)
	if err != nil {
		return w.View(), err
	}
	return w.edit(func(d *draft.Draft) error {
		d.SelectCustomer(c)
		return nil
	})
}

// CancelQuickCreate closes the quick-create form.
func (w *Workspace) CancelQuickCreate() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.quickCreate = false
	return w.viewLocked()
}

// QuickCreateCustomer submits the add-customer form and, on success, selects
// the new customer into this draft.
func (w *Workspace) QuickCreateCustomer(ctx context.Context) (View, error) {
	c, err := w.desk.Customers.Submit(ctx)
	if err != nil {
		return w.View(), err
	}
	return w.edit(func(d *draft.Draft) error {
		d.SelectCustomer(*c)
		w.quickCreate = false
		return nil
	})
}

func (w *Workspace) SetField(f draft.Field, value string) (View, error) {
	return w.edit(func(d *draft.Draft) error { return d.SetField(f, value) })
}

func (w *Workspace) AddItem() (View, string) {
	var id string
	v, _ := w.edit(func(d *draft.Draft) error {
		id = d.AddLineItem()
		return nil
	})
	return v, id
}

func (w *Workspace) UpdateItem(id string, f draft.ItemField, value string) (View, error) {
	return w.edit(func(d *draft.Draft) error { return d.UpdateLineItem(id, f, value) })
}

// RemoveItem reports false when id is unknown or is the last item.
func (w *Workspace) RemoveItem(id string) (View, bool) {
	var removed bool
	v, _ := w.edit(func(d *draft.Draft) error {
		removed = d.RemoveLineItem(id)
		return nil
	})
	return v, removed
}

func (w *Workspace) SetMeasurement(g measurements.Garment, field, value string) (View, error) {
	return w.edit(func(d *draft.Draft) error { return d.SetMeasurement(g, field, value) })
}

func (w *Workspace) SetCustomMeasurements(notes string) View {
	v, _ := w.edit(func(d *draft.Draft) error {
		d.SetCustomMeasurements(notes)
		return nil
	})
	return v
}

// Assign sets the mode and worker. With an itemID the worker goes on that
// item; otherwise it becomes the whole-order worker.
func (w *Workspace) Assign(mode draft.AssignmentMode, itemID string, worker draft.Worker) (View, error) {
	return w.edit(func(d *draft.Draft) error {
		if mode != "" {
			if err := d.SetMode(mode); err != nil {
				return err
			}
		}
		if itemID != "" {
			return d.AssignWorker(itemID, worker)
		}
		if mode == draft.ModeWhole || d.Mode() == draft.ModeWhole {
			d.SetWholeWorker(worker)
		}
		return nil
	})
}

// Submit runs the submission pipeline for this draft.
func (w *Workspace) Submit(ctx context.Context) (*orders.Order, View, error) {
	o, err := w.pipeline.Submit(ctx, w.draft)
	return o, w.View(), err
}
