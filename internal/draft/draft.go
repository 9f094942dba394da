// Package draft holds an in-progress order and keeps its derived values
// (total, balance, field errors) consistent as it is edited.
package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	"github.com/imrishuroy/go-tailor-orderflow/internal/measurements"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

// AssignmentMode decides how workers attach to line items.
type AssignmentMode string

const (
	// ModeIndividual lets each line item carry its own worker.
	ModeIndividual AssignmentMode = validation.ModeIndividual
	// ModeWhole applies one worker to every item when the order is submitted.
	ModeWhole AssignmentMode = validation.ModeWhole
)

// Field is an editable top-level draft field.
type Field string

const (
	FieldDeliveryDate   Field = "deliveryDate"
	FieldAdvancePayment Field = "advancePayment"
	FieldNotes          Field = "notes"
)

// ItemField is an editable line-item field.
type ItemField string

const (
	ItemName     ItemField = "name"
	ItemQuantity ItemField = "quantity"
	ItemPrice    ItemField = "price"
	ItemFabric   ItemField = "fabric"
)

var (
	ErrUnknownItem  = errors.New("line item not found")
	ErrUnknownField = errors.New("unknown field")
	ErrUnknownMode  = errors.New("unknown assignment mode")
)

// Worker is a reference to a shop worker.
type Worker struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// LineItem keeps quantity and price as typed so half-typed input survives;
// they are coerced when read.
type LineItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Fabric   string `json:"fabric,omitempty"`
	Worker   Worker `json:"worker"`
}

// Complete reports whether name, quantity and price are present and positive.
func (it LineItem) Complete() bool {
	return strings.TrimSpace(it.Name) != "" &&
		Coerce(it.Quantity).IsPositive() &&
		Coerce(it.Price).IsPositive()
}

// Subtotal is quantity * price with blanks counted as zero.
func (it LineItem) Subtotal() decimal.Decimal {
	return Coerce(it.Quantity).Mul(Coerce(it.Price))
}

// Coerce parses form input as a number. Blank or malformed input is zero.
func Coerce(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Draft is an order being composed. It is not safe for concurrent use; the
// owner serialises access.
type Draft struct {
	customer       *customers.Customer
	deliveryDate   string
	advancePayment string
	notes          string
	measurements   measurements.Set
	items          []LineItem
	mode           AssignmentMode
	wholeWorker    Worker
	errors         map[string]string
	newID          func() string
}

// New returns an empty draft with one blank line item.
func New() *Draft {
	d := &Draft{newID: uuid.NewString}
	d.Reset()
	return d
}

// Reset returns the draft to its initial empty shape.
func (d *Draft) Reset() {
	d.customer = nil
	d.deliveryDate = ""
	d.advancePayment = ""
	d.notes = ""
	d.measurements = measurements.Set{}
	d.items = []LineItem{{ID: d.newID()}}
	d.mode = ModeIndividual
	d.wholeWorker = Worker{}
	d.errors = map[string]string{}
}

// SelectCustomer sets the customer and merges their stored measurements into
// the draft per garment. The draft keeps its own copy; later edits never
// reach the customer's profile.
func (d *Draft) SelectCustomer(c customers.Customer) {
	if c.Measurements != nil {
		d.measurements = measurements.Merge(d.measurements, *c.Measurements)
		m := c.Measurements.Clone()
		c.Measurements = &m
	}
	d.customer = &c
	delete(d.errors, "customer")
}

// ClearCustomer deselects the customer; measurements stay as they are.
func (d *Draft) ClearCustomer() { d.customer = nil }

// Customer returns a copy of the selected customer, or nil.
func (d *Draft) Customer() *customers.Customer {
	if d.customer == nil {
		return nil
	}
	c := *d.customer
	if c.Measurements != nil {
		m := c.Measurements.Clone()
		c.Measurements = &m
	}
	return &c
}

// SetField edits a top-level field and clears its error.
func (d *Draft) SetField(f Field, value string) error {
	switch f {
	case FieldDeliveryDate:
		d.deliveryDate = value
	case FieldAdvancePayment:
		d.advancePayment = value
	case FieldNotes:
		d.notes = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	delete(d.errors, string(f))
	return nil
}

func (d *Draft) DeliveryDate() string   { return d.deliveryDate }
func (d *Draft) AdvancePayment() string { return d.advancePayment }
func (d *Draft) Notes() string          { return d.notes }

// AddLineItem appends a blank item and returns its id.
func (d *Draft) AddLineItem() string {
	id := d.newID()
	d.items = append(d.items, LineItem{ID: id})
	return id
}

// RemoveLineItem removes the item with id. The last remaining item is never
// removed; false is returned in that case or when id is unknown.
func (d *Draft) RemoveLineItem(id string) bool {
	if len(d.items) <= 1 {
		return false
	}
	for i, it := range d.items {
		if it.ID == id {
			d.items = append(d.items[:i:i], d.items[i+1:]...)
			d.clearItemErrors()
			return true
		}
	}
	return false
}

// UpdateLineItem sets one field of an item. Any edit clears the item-level
// errors on display.
func (d *Draft) UpdateLineItem(id string, f ItemField, value string) error {
	i := d.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	switch f {
	case ItemName:
		d.items[i].Name = value
	case ItemQuantity:
		d.items[i].Quantity = value
	case ItemPrice:
		d.items[i].Price = value
	case ItemFabric:
		d.items[i].Fabric = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	d.clearItemErrors()
	return nil
}

// Items returns a copy of the line items in order.
func (d *Draft) Items() []LineItem {
	return append([]LineItem(nil), d.items...)
}

func (d *Draft) indexOf(id string) int {
	for i, it := range d.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (d *Draft) clearItemErrors() {
	for k := range d.errors {
		if k == "items" || strings.HasPrefix(k, "items.") {
			delete(d.errors, k)
		}
	}
}

// Total is the sum of quantity * price over all items.
func (d *Draft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Balance is total minus the advance payment (blank advance counts as zero).
func (d *Draft) Balance() decimal.Decimal {
	return d.Total().Sub(Coerce(d.advancePayment))
}

// Measurements returns a copy of the draft's measurement snapshot.
func (d *Draft) Measurements() measurements.Set { return d.measurements.Clone() }

// SetMeasurement edits one measurement. Blank input stores zero. A negative
// or non-numeric value is rejected and reported on the field.
func (d *Draft) SetMeasurement(g measurements.Garment, field, value string) error {
	key := "measurements." + string(g) + "." + field
	v := decimal.Zero
	if strings.TrimSpace(value) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			d.errors[key] = "Measurement must be a number"
			return fmt.Errorf("%s: %w", key, err)
		}
		v = parsed
	}
	if err := d.measurements.SetValue(g, field, v.InexactFloat64()); err != nil {
		if errors.Is(err, measurements.ErrNegative) {
			d.errors[key] = "Measurement cannot be negative"
		}
		return err
	}
	delete(d.errors, key)
	return nil
}

// SetCustomMeasurements edits the free-text measurement notes.
func (d *Draft) SetCustomMeasurements(notes string) { d.measurements.Custom = notes }

// SetMode switches the assignment mode. Individual choices are kept so
// switching back restores them.
func (d *Draft) SetMode(m AssignmentMode) error {
	if m != ModeIndividual && m != ModeWhole {
		return fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	d.mode = m
	return nil
}

func (d *Draft) Mode() AssignmentMode { return d.mode }

// AssignWorker sets the worker of one item (individual mode).
func (d *Draft) AssignWorker(itemID string, w Worker) error {
	i := d.indexOf(itemID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	d.items[i].Worker = w
	return nil
}

// SetWholeWorker sets the worker used for every item in whole mode.
func (d *Draft) SetWholeWorker(w Worker) { d.wholeWorker = w }

func (d *Draft) WholeWorker() Worker { return d.wholeWorker }

// Form returns the order form view of the draft for validation.
func (d *Draft) Form() validation.OrderForm {
	f := validation.OrderForm{
		DeliveryDate:   d.deliveryDate,
		AdvancePayment: d.advancePayment,
		Items:          make([]validation.ItemForm, 0, len(d.items)),
		Total:          d.Total().InexactFloat64(),
	}
	if d.customer != nil {
		f.CustomerID = d.customer.CustomerID
	}
	for _, it := range d.items {
		f.Items = append(f.Items, validation.ItemForm{Name: strings.TrimSpace(it.Name), Quantity: it.Quantity, Price: it.Price})
	}
	return f
}

// SetErrors replaces the displayed errors with a validation result. Item
// keys are re-keyed from position to item id ("items[1].price" becomes
// "items.<id>.price") so they stay attached to the item if others move.
func (d *Draft) SetErrors(errs map[string]string) {
	d.errors = map[string]string{}
	for k, msg := range errs {
		d.errors[d.rekey(k)] = msg
	}
}

func (d *Draft) rekey(k string) string {
	if !strings.HasPrefix(k, "items[") {
		return k
	}
	end := strings.IndexByte(k, ']')
	if end < 0 {
		return k
	}
	var idx int
	if _, err := fmt.Sscanf(k[len("items["):end], "%d", &idx); err != nil || idx < 0 || idx >= len(d.items) {
		return k
	}
	return "items." + d.items[idx].ID + k[end+1:]
}

// Errors returns a copy of the errors on display.
func (d *Draft) Errors() map[string]string {
	out := make(map[string]string, len(d.errors))
	for k, v := range d.errors {
		out[k] = v
	}
	return out
}
