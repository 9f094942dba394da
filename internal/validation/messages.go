package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	validatorv10 "github.com/go-playground/validator/v10"
)

func toResult(err error) Result {
	res := Result{IsValid: true, Errors: map[string]string{}}
	if err == nil {
		return res
	}
	res.IsValid = false

	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		res.Errors["form"] = err.Error()
		return res
	}
	for _, fe := range ve {
		key := fieldKey(fe)
		// first failure per field wins
		if _, seen := res.Errors[key]; seen {
			continue
		}
		res.Errors[key] = message(key, fe)
	}
	return res
}

// fieldKey drops the top-level struct name: "OrderForm.items[0].price" -> "items[0].price".
func fieldKey(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(key string, fe validatorv10.FieldError) string {
	field := fe.Field()
	label := humanize(field)
	if strings.HasPrefix(key, "items[") && field == "name" {
		label = "Item name"
	}

	switch fe.Tag() {
	case "posint", "posnum", "nonneg":
		if _, ok := ToNumber(fe.Value()); !ok {
			return label + " must be a number"
		}
	}

	switch fe.Tag() {
	case "required":
		switch field {
		case "customer", "customerId":
			return "Please select a customer"
		case "items":
			return "At least one item is required"
		}
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "At least one item is required"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "person_name":
		return label + " must be between 2 and 50 characters"
	case "phone":
		return "Please enter a valid phone number"
	case "email_basic", "email":
		return "Please enter a valid email address"
	case "not_past":
		return label + " cannot be in the past"
	case "not_future":
		return label + " cannot be in the future"
	case "posint":
		return label + " must be a positive whole number"
	case "qty_max":
		return fmt.Sprintf("%s must be at most %d", label, MaxQuantity)
	case "posnum", "gt":
		return label + " must be greater than 0"
	case "nonneg", "gte":
		return label + " cannot be negative"
	case "lte_total":
		return label + " cannot exceed the order total"
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "image_file":
		return "Only JPEG, PNG or GIF images are allowed"
	case "file_size":
		return "File size must be less than 5MB"
	case "amount_match_items":
		return "Total amount does not match the sum of the items"
	case "balance_match":
		return "Balance must equal total minus paid amount"
	}
	return label + " is invalid"
}

// humanize turns "deliveryDate" into "Delivery date".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
