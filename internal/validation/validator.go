package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

// Validator wraps a go-playground validator with the shop's custom tags and a
// clock for the date rules.
type Validator struct {
	v       *validatorv10.Validate
	nowFunc func() time.Time
}

// New returns a configured validator using the wall clock.
func New() *Validator { return NewWithClock(time.Now) }

// NewWithClock returns a validator whose date rules compare against now().
func NewWithClock(now func() time.Time) *Validator {
	val := &Validator{v: validatorv10.New(), nowFunc: now}

	// report json names so error keys match form field names
	val.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(val.v, "person_name", func(fl validatorv10.FieldLevel) bool {
		return IsValidName(fl.Field().String())
	})
	mustRegister(val.v, "phone", func(fl validatorv10.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	mustRegister(val.v, "email_basic", func(fl validatorv10.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	mustRegister(val.v, "not_past", func(fl validatorv10.FieldLevel) bool {
		return IsFutureDate(fl.Field().String(), val.nowFunc())
	})
	mustRegister(val.v, "not_future", func(fl validatorv10.FieldLevel) bool {
		return IsNotFutureDate(fl.Field().String(), val.nowFunc())
	})
	mustRegister(val.v, "posnum", func(fl validatorv10.FieldLevel) bool {
		return IsPositiveNumber(fl.Field().Interface())
	})
	mustRegister(val.v, "nonneg", func(fl validatorv10.FieldLevel) bool {
		return IsNonNegativeNumber(fl.Field().Interface())
	})
	mustRegister(val.v, "posint", func(fl validatorv10.FieldLevel) bool {
		return IsPositiveInteger(fl.Field().Interface())
	})
	mustRegister(val.v, "qty_max", func(fl validatorv10.FieldLevel) bool {
		return IsWithinMaxQuantity(fl.Field().Interface())
	})

	val.v.RegisterStructValidation(customerFormStructValidation, CustomerForm{})
	val.v.RegisterStructValidation(orderFormStructValidation, OrderForm{})
	val.v.RegisterStructValidation(createOrderStructValidation, CreateOrderRequest{})

	return val
}

func mustRegister(v *validatorv10.Validate, tag string, fn validatorv10.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// Struct runs every rule on s and returns validator's raw error.
func (val *Validator) Struct(s interface{}) error { return val.v.Struct(s) }

// Check runs every rule on s and collects one message per failing field.
func (val *Validator) Check(s interface{}) Result {
	return toResult(val.v.Struct(s))
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

func std() *Validator {
	defaultOnce.Do(func() { defaultValidator = New() })
	return defaultValidator
}

// createOrderStructValidation checks the money fields of an order payload:
// the total equals the items sum (to the paisa), the paid amount does not
// exceed it, and the balance is what is left.
func createOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateOrderRequest)

	var sum float64
	for _, it := range req.Items {
		sum += float64(it.Quantity) * it.Price
	}

	sumPaise := int64(math.Round(sum * 100))
	totalPaise := int64(math.Round(req.TotalAmount * 100))
	paidPaise := int64(math.Round(req.PaidAmount * 100))
	balancePaise := int64(math.Round(req.BalanceAmount * 100))

	if sumPaise != totalPaise {
		sl.ReportError(req.TotalAmount, "totalAmount", "TotalAmount", "amount_match_items", fmt.Sprintf("items sum %.2f != total %.2f", sum, req.TotalAmount))
	}
	if paidPaise > totalPaise {
		sl.ReportError(req.PaidAmount, "paidAmount", "PaidAmount", "lte_total", "")
	}
	if balancePaise != totalPaise-paidPaise {
		sl.ReportError(req.BalanceAmount, "balanceAmount", "BalanceAmount", "balance_match", "")
	}
}
