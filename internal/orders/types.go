package orders

import (
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/measurements"
)

// Order statuses
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusReady      = "READY"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
)

// transitions lists the statuses reachable from each status.
var transitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusReady, StatusCancelled},
	StatusReady:      {StatusDelivered},
}

// CanTransition reports whether an order may move from -> to.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Item is one garment line of an order.
type Item struct {
	Type           string  `dynamodbav:"type" json:"type"`
	Fabric         string  `dynamodbav:"fabric,omitempty" json:"fabric,omitempty"`
	Quantity       int     `dynamodbav:"quantity" json:"quantity"`
	Price          float64 `dynamodbav:"price" json:"price"`
	AssignedWorker string  `dynamodbav:"assigned_worker,omitempty" json:"assignedWorker,omitempty"`
	WorkerName     string  `dynamodbav:"worker_name,omitempty" json:"workerName,omitempty"`
}

// Payment is one recorded payment against an order.
type Payment struct {
	PaymentID  string    `dynamodbav:"payment_id" json:"id"`
	Amount     float64   `dynamodbav:"amount" json:"amount"`
	Method     string    `dynamodbav:"method" json:"method"`
	Date       string    `dynamodbav:"date" json:"date"`
	Note       string    `dynamodbav:"note,omitempty" json:"note,omitempty"`
	RecordedAt time.Time `dynamodbav:"recorded_at" json:"recordedAt"`
}

// Order represents the item stored in the Orders DynamoDB table.
type Order struct {
	OrderID        string            `dynamodbav:"order_id" json:"id"` // PK
	CustomerID     string            `dynamodbav:"customer_id" json:"customerId"`
	CustomerName   string            `dynamodbav:"customer_name,omitempty" json:"customerName,omitempty"`
	Status         string            `dynamodbav:"status" json:"status"`
	DeliveryDate   string            `dynamodbav:"delivery_date" json:"deliveryDate"`
	Items          []Item            `dynamodbav:"items" json:"items"`
	TotalAmount    float64           `dynamodbav:"total_amount" json:"totalAmount"`
	PaidAmount     float64           `dynamodbav:"paid_amount" json:"paidAmount"`
	BalanceAmount  float64           `dynamodbav:"balance_amount" json:"balanceAmount"`
	Measurements   *measurements.Set `dynamodbav:"measurements,omitempty" json:"measurements,omitempty"`
	Notes          string            `dynamodbav:"notes,omitempty" json:"notes,omitempty"`
	AssignedWorker string            `dynamodbav:"assigned_worker,omitempty" json:"assignedWorker,omitempty"`
	WorkerName     string            `dynamodbav:"worker_name,omitempty" json:"workerName,omitempty"`
	AssignmentMode string            `dynamodbav:"assignment_mode" json:"assignmentMode"`
	Payments       []Payment         `dynamodbav:"payments,omitempty" json:"payments,omitempty"`
	CreatedAt      time.Time         `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `dynamodbav:"updated_at" json:"updatedAt"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	CustomerID string
	Status     string
}
