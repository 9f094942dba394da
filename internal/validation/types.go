package validation

import "github.com/imrishuroy/go-tailor-orderflow/internal/measurements"

// RoleCustomer is the roleId sent when creating a customer account.
const RoleCustomer = 3

// Assignment modes for order workers.
const (
	ModeIndividual = "individual"
	ModeWhole      = "whole"
)

// Payment methods accepted by the payment endpoint.
const (
	MethodCash         = "CASH"
	MethodCard         = "CARD"
	MethodUPI          = "UPI"
	MethodBankTransfer = "BANK_TRANSFER"
)

// UserPayload is the account half of a customer creation request.
type UserPayload struct {
	Name          string `json:"name" validate:"required,person_name"`
	Email         string `json:"email" validate:"required,email_basic"`
	Password      string `json:"password" validate:"required,min=6"`
	ContactNumber string `json:"contactNumber" validate:"required,phone"`
	RoleID        int    `json:"roleId" validate:"required"`
}

// CreateCustomerRequest is the payload for POST /customers.
type CreateCustomerRequest struct {
	User         UserPayload       `json:"user"`
	Measurements measurements.Flat `json:"measurements,omitempty" validate:"omitempty,dive,gte=0"`
	// CustomMeasurements is the free-text measurement notes.
	CustomMeasurements string `json:"customMeasurements,omitempty" validate:"max=2000"`
}

// MeasurementSet rebuilds the measurement snapshot carried by the request.
// Negative values are rejected by validation before this is called.
func (r CreateCustomerRequest) MeasurementSet() measurements.Set {
	m, _ := r.Measurements.Set()
	m.Custom = r.CustomMeasurements
	return m
}

// OrderItem is a single order line on the wire.
type OrderItem struct {
	Type           string  `json:"type" validate:"required"`
	Fabric         string  `json:"fabric,omitempty"`
	Quantity       int     `json:"quantity" validate:"required,min=1,max=10000"`
	Price          float64 `json:"price" validate:"required,gt=0"`
	AssignedWorker string  `json:"assignedWorker,omitempty"`
	WorkerName     string  `json:"workerName,omitempty"`
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	CustomerID     string            `json:"customerId" validate:"required"`
	DeliveryDate   string            `json:"deliveryDate" validate:"required,not_past"`
	Items          []OrderItem       `json:"items" validate:"required,min=1,dive"`
	TotalAmount    float64           `json:"totalAmount" validate:"gt=0"`
	PaidAmount     float64           `json:"paidAmount" validate:"gte=0"`
	BalanceAmount  float64           `json:"balanceAmount" validate:"gte=0"`
	Measurements   *measurements.Set `json:"measurements,omitempty"`
	Notes          string            `json:"notes,omitempty" validate:"max=2000"`
	AssignedWorker string            `json:"assignedWorker,omitempty"`
	WorkerName     string            `json:"workerName,omitempty"`
	AssignmentMode string            `json:"assignmentMode" validate:"required,oneof=individual whole"`
}

// PaymentUpdateRequest is the payload for PATCH /orders/:id/payment.
type PaymentUpdateRequest struct {
	OrderID           string  `json:"orderId"`
	AdditionalPayment float64 `json:"additionalPayment" validate:"gt=0"`
	PaymentMethod     string  `json:"paymentMethod" validate:"required,oneof=CASH CARD UPI BANK_TRANSFER"`
	PaymentDate       string  `json:"paymentDate" validate:"required,not_future"`
	PaymentNote       string  `json:"paymentNote,omitempty" validate:"max=500"`
}

// StatusUpdateRequest is the payload for PATCH /orders/:id/status.
type StatusUpdateRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}
