package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// Result is the outcome of a form validation. Errors maps field name to a
// human-readable message; every failing field is reported.
type Result struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// CustomerForm is the add-customer form.
type CustomerForm struct {
	Name  string    `json:"name" validate:"required,person_name"`
	Phone string    `json:"phone" validate:"required,phone"`
	Email string    `json:"email" validate:"required,email_basic"`
	Photo *FileInfo `json:"photo,omitempty"`
}

// ItemForm is one order line as typed into the form.
type ItemForm struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity" validate:"required,posint,qty_max"`
	Price    string `json:"price" validate:"required,posnum"`
}

// OrderForm is the order form. Total is the computed order total; it is not a
// form field but the advance payment is checked against it.
type OrderForm struct {
	CustomerID     string     `json:"customer" validate:"required"`
	DeliveryDate   string     `json:"deliveryDate" validate:"required,not_past"`
	AdvancePayment string     `json:"advancePayment" validate:"omitempty,nonneg"`
	Items          []ItemForm `json:"items" validate:"required,min=1,dive"`
	Total          float64    `json:"-"`
}

// WorkerForm is the add/edit worker form.
type WorkerForm struct {
	Name           string `json:"name" validate:"required,person_name"`
	Phone          string `json:"phone" validate:"required,phone"`
	Email          string `json:"email" validate:"omitempty,email_basic"`
	Specialization string `json:"specialization" validate:"required"`
	Salary         string `json:"salary" validate:"omitempty,nonneg"`
}

// ProfileForm is the admin's own profile form.
type ProfileForm struct {
	Name            string `json:"name" validate:"required,person_name"`
	Email           string `json:"email" validate:"required,email_basic"`
	Phone           string `json:"phone" validate:"omitempty,phone"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

func (val *Validator) ValidateCustomerForm(f CustomerForm) Result { return val.Check(f) }
func (val *Validator) ValidateOrderForm(f OrderForm) Result       { return val.Check(f) }
func (val *Validator) ValidateWorkerForm(f WorkerForm) Result     { return val.Check(f) }
func (val *Validator) ValidateProfileForm(f ProfileForm) Result   { return val.Check(f) }

func ValidateCustomerForm(f CustomerForm) Result { return std().ValidateCustomerForm(f) }
func ValidateOrderForm(f OrderForm) Result       { return std().ValidateOrderForm(f) }
func ValidateWorkerForm(f WorkerForm) Result     { return std().ValidateWorkerForm(f) }
func ValidateProfileForm(f ProfileForm) Result   { return std().ValidateProfileForm(f) }

func customerFormStructValidation(sl validatorv10.StructLevel) {
	f := sl.Current().Interface().(CustomerForm)
	if f.Photo == nil {
		return
	}
	if !IsValidImageFile(*f.Photo) {
		sl.ReportError(f.Photo, "photo", "Photo", "image_file", "")
		return
	}
	if !IsValidFileSize(*f.Photo) {
		sl.ReportError(f.Photo, "photo", "Photo", "file_size", "")
	}
}

// orderFormStructValidation enforces advance <= total. It runs after the
// field rules, so a non-numeric advance keeps its own message.
func orderFormStructValidation(sl validatorv10.StructLevel) {
	f := sl.Current().Interface().(OrderForm)
	advance, ok := ToNumber(f.AdvancePayment)
	if !ok || advance < 0 {
		return
	}
	if advance > f.Total {
		sl.ReportError(f.AdvancePayment, "advancePayment", "AdvancePayment", "lte_total", "")
	}
}
